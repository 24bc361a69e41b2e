package store

import (
	"context"
	"database/sql"
	"fmt"
)

// UpsertSection creates the section when its number is new. An existing
// section keeps its title and type. An empty title is stored as NULL.
func (s *Store) UpsertSection(ctx context.Context, number int, title, sectionType string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return upsertSection(ctx, tx, number, title, sectionType)
	})
}

func upsertSection(ctx context.Context, tx *sql.Tx, number int, title, sectionType string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sections (section_number, title, section_type) VALUES (?, ?, ?)`,
		number, sql.NullString{String: title, Valid: title != ""}, sectionType)
	if err != nil {
		return fmt.Errorf("store: upsert section %d: %w", number, err)
	}
	return nil
}

// InsertDocument appends a document row and returns its id. When the
// document belongs to a section, that section is created first (titled
// after the document) so the reference always holds.
func (s *Store) InsertDocument(ctx context.Context, d Document) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if d.SectionNumber != nil {
			if err := upsertSection(ctx, tx, *d.SectionNumber, d.Title, SectionTypeDocument); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO documents (source_path, title, doc_type, text_content, section_number) VALUES (?, ?, ?, ?, ?)`,
			d.SourcePath, d.Title, d.DocType, d.TextContent, nullInt(d.SectionNumber))
		if err != nil {
			return fmt.Errorf("store: insert document %s: %w", d.SourcePath, err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// InsertImage appends an image row for an existing document.
func (s *Store) InsertImage(ctx context.Context, img Image) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO images (document_id, source_path, image_path, page, width, height) VALUES (?, ?, ?, ?, ?, ?)`,
			img.DocumentID, img.SourcePath, img.ImagePath, nullInt(img.Page), nullInt(img.Width), nullInt(img.Height))
		if err != nil {
			return fmt.Errorf("store: insert image %s: %w", img.ImagePath, err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// InsertTerm appends a glossary row. Its section must already exist.
func (s *Store) InsertTerm(ctx context.Context, t Term) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO terms (source_path, section_number, section_title, item_number, term, description, abbreviation)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.SourcePath, t.SectionNumber, t.SectionTitle, t.ItemNumber, t.Term, t.Description, t.Abbreviation)
		if err != nil {
			return fmt.Errorf("store: insert term %q: %w", t.Term, err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// InsertTermDocument links a term to a document.
func (s *Store) InsertTermDocument(ctx context.Context, termID, documentID int64, note string) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO term_documents (term_id, document_id, note) VALUES (?, ?, ?)`,
			termID, documentID, note)
		if err != nil {
			return fmt.Errorf("store: link term %d to document %d: %w", termID, documentID, err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}
