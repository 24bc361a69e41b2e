package store

import "database/sql"

// Section types.
const (
	SectionTypeDocument = "document"
	SectionTypeTerms    = "terms"
)

// Document types.
const (
	DocTypeDocx = "docx"
	DocTypePDF  = "pdf"
)

// Section is a numbered subdivision of the glossary.
type Section struct {
	ID             int64
	Number         int
	Title          string
	Type           string
	TermsCount     int
	DocumentsCount int
}

// Document is one extracted source file. SectionNumber is nil when the
// file name carries no digits.
type Document struct {
	ID            int64
	SourcePath    string
	Title         string
	DocType       string
	TextContent   string
	SectionNumber *int
	DownloadURL   string
}

// Image is a raster image extracted from a Document. Page, Width and
// Height are nil when the source format does not expose them.
type Image struct {
	ID         int64
	DocumentID int64
	SourcePath string
	ImagePath  string
	Page       *int
	Width      *int
	Height     *int
	URL        string
}

// Term is one glossary row.
type Term struct {
	ID            int64
	SourcePath    string
	SectionNumber int
	SectionTitle  string
	ItemNumber    string
	Term          string
	Description   string
	Abbreviation  string
}

// TermQuery selects terms for SearchTerms. An empty Text matches every
// term; a nil Section searches all sections.
type TermQuery struct {
	Text    string
	Section *int
	Limit   int
	Offset  int
}

// TermPage is one page of search results plus the unpaginated total.
type TermPage struct {
	Terms []Term
	Total int
}

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
