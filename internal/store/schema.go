package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		section_number INTEGER UNIQUE,
		title TEXT,
		section_type TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_path TEXT NOT NULL,
		title TEXT,
		doc_type TEXT NOT NULL,
		text_content TEXT,
		section_number INTEGER,
		FOREIGN KEY(section_number) REFERENCES sections(section_number)
	)`,
	`CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL,
		source_path TEXT NOT NULL,
		image_path TEXT NOT NULL,
		page INTEGER,
		width INTEGER,
		height INTEGER,
		FOREIGN KEY(document_id) REFERENCES documents(id)
	)`,
	`CREATE TABLE IF NOT EXISTS terms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_path TEXT NOT NULL,
		section_number INTEGER NOT NULL,
		section_title TEXT,
		item_number TEXT,
		term TEXT,
		description TEXT,
		abbreviation TEXT,
		FOREIGN KEY(section_number) REFERENCES sections(section_number)
	)`,
	`CREATE TABLE IF NOT EXISTS term_documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		term_id INTEGER NOT NULL,
		document_id INTEGER NOT NULL,
		note TEXT,
		FOREIGN KEY(term_id) REFERENCES terms(id),
		FOREIGN KEY(document_id) REFERENCES documents(id)
	)`,
}

// Indexes are created after column migrations so they can reference
// columns older stores lack.
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_terms_section ON terms(section_number)`,
	`CREATE INDEX IF NOT EXISTS idx_terms_term ON terms(term)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_section ON documents(section_number)`,
	`CREATE INDEX IF NOT EXISTS idx_images_document ON images(document_id)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: create schema: %w", err)
		}
	}
	if err := ensureColumn(ctx, db, "documents", "section_number"); err != nil {
		return err
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: create index: %w", err)
		}
	}
	return nil
}

// ensureColumn adds a nullable INTEGER column when table lacks it.
func ensureColumn(ctx context.Context, db *sql.DB, table, column string) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("store: table_info %s: %w", table, err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("store: scan table_info %s: %w", table, err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("store: table_info %s: %w", table, err)
	}
	rows.Close()

	if found {
		return nil
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s INTEGER", table, column)); err != nil {
		return fmt.Errorf("store: add column %s.%s: %w", table, column, err)
	}
	return nil
}
