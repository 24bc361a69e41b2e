package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const sectionColumns = `s.id, COALESCE(s.section_number, 0), COALESCE(s.title, ''), COALESCE(s.section_type, ''),
	(SELECT COUNT(*) FROM terms t WHERE t.section_number = s.section_number),
	(SELECT COUNT(*) FROM documents d WHERE d.section_number = s.section_number)`

func scanSection(sc interface{ Scan(...any) error }) (Section, error) {
	var sec Section
	err := sc.Scan(&sec.ID, &sec.Number, &sec.Title, &sec.Type, &sec.TermsCount, &sec.DocumentsCount)
	return sec, err
}

// ListSections returns every section ordered by number, with term and
// document counts.
func (s *Store) ListSections(ctx context.Context) ([]Section, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sectionColumns+` FROM sections s ORDER BY s.section_number`)
	if err != nil {
		return nil, fmt.Errorf("store: list sections: %w", err)
	}
	defer rows.Close()

	var out []Section
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan section: %w", err)
		}
		out = append(out, sec)
	}
	return out, rows.Err()
}

// GetSection returns the section with the given number, or nil.
func (s *Store) GetSection(ctx context.Context, number int) (*Section, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sectionColumns+` FROM sections s WHERE s.section_number = ?`, number)
	sec, err := scanSection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get section %d: %w", number, err)
	}
	return &sec, nil
}

// Numeric item numbers sort numerically, then the rest lexically.
const termOrder = `ORDER BY section_number,
	CASE WHEN item_number GLOB '[0-9]*' AND item_number NOT GLOB '*[^0-9]*' THEN 0 ELSE 1 END,
	CAST(item_number AS INTEGER),
	item_number,
	id`

// SearchTerms matches q.Text as a substring of term, description or
// abbreviation.
func (s *Store) SearchTerms(ctx context.Context, q TermQuery) (TermPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		where []string
		args  []any
	)
	if text := strings.TrimSpace(q.Text); text != "" {
		pattern := "%" + escapeLike(text) + "%"
		where = append(where, `(term LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR abbreviation LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if q.Section != nil {
		where = append(where, `section_number = ?`)
		args = append(args, *q.Section)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var page TermPage
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM terms`+clause, args...).Scan(&page.Total); err != nil {
		return TermPage{}, fmt.Errorf("store: count terms: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_path, section_number, COALESCE(section_title, ''), COALESCE(item_number, ''),
		        COALESCE(term, ''), COALESCE(description, ''), COALESCE(abbreviation, '')
		 FROM terms`+clause+" "+termOrder+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return TermPage{}, fmt.Errorf("store: search terms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.SourcePath, &t.SectionNumber, &t.SectionTitle, &t.ItemNumber,
			&t.Term, &t.Description, &t.Abbreviation); err != nil {
			return TermPage{}, fmt.Errorf("store: scan term: %w", err)
		}
		page.Terms = append(page.Terms, t)
	}
	return page, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

const documentColumns = `id, source_path, COALESCE(title, ''), doc_type, COALESCE(text_content, ''), section_number`

func scanDocument(sc interface{ Scan(...any) error }) (Document, error) {
	var (
		d       Document
		section sql.NullInt64
	)
	if err := sc.Scan(&d.ID, &d.SourcePath, &d.Title, &d.DocType, &d.TextContent, &section); err != nil {
		return Document{}, err
	}
	d.SectionNumber = intPtr(section)
	return d, nil
}

// ListDocuments returns documents in insertion order, optionally limited
// to one section. Documents whose source no longer resolves inside the
// assets directory are left out.
func (s *Store) ListDocuments(ctx context.Context, section *int) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []any
	if section != nil {
		query += ` WHERE section_number = ?`
		args = append(args, *section)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()

	var all []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan document: %w", err)
		}
		all = append(all, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []Document
	for _, d := range all {
		if _, ok := s.ResolvePath(d.SourcePath); !ok {
			continue
		}
		d.DownloadURL = downloadURL(d.ID)
		out = append(out, d)
	}
	return out, nil
}

// GetDocument returns the document with the given id, or nil. DownloadURL
// is set only when the source still resolves.
func (s *Store) GetDocument(ctx context.Context, id int64) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get document %d: %w", id, err)
	}
	if _, ok := s.ResolvePath(d.SourcePath); ok {
		d.DownloadURL = downloadURL(d.ID)
	}
	return &d, nil
}

// ListDocumentImages returns the images of a document by page, then in
// extraction order. Images without a page come first.
func (s *Store) ListDocumentImages(ctx context.Context, documentID int64) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, source_path, image_path, page, width, height
		 FROM images WHERE document_id = ? ORDER BY page, id`, documentID)
	if err != nil {
		return nil, fmt.Errorf("store: list images of %d: %w", documentID, err)
	}
	defer rows.Close()

	var out []Image
	for rows.Next() {
		var (
			img                 Image
			page, width, height sql.NullInt64
		)
		if err := rows.Scan(&img.ID, &img.DocumentID, &img.SourcePath, &img.ImagePath, &page, &width, &height); err != nil {
			return nil, fmt.Errorf("store: scan image: %w", err)
		}
		img.Page, img.Width, img.Height = intPtr(page), intPtr(width), intPtr(height)
		img.URL = s.imageURL(img.ImagePath)
		out = append(out, img)
	}
	return out, rows.Err()
}

func downloadURL(id int64) string {
	return fmt.Sprintf("/files/doc/%d", id)
}
