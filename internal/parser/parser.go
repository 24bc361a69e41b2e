package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a source file kind.
type Format int

const (
	FormatUnknown Format = iota
	FormatDocx
	FormatPDF
	FormatLegacyDoc
	FormatHTML
	FormatMarkdown
)

func (f Format) String() string {
	switch f {
	case FormatDocx:
		return "docx"
	case FormatPDF:
		return "pdf"
	case FormatLegacyDoc:
		return "doc"
	case FormatHTML:
		return "html"
	case FormatMarkdown:
		return "markdown"
	}
	return "unknown"
}

// SupportedExtensions maps file extensions to their format.
var SupportedExtensions = map[string]Format{
	".docx":     FormatDocx,
	".pdf":      FormatPDF,
	".doc":      FormatLegacyDoc,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
}

// FormatOf returns the format of a filename by extension.
func FormatOf(filename string) Format {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// IsExtractable reports whether a file is a document the extractor reads.
func IsExtractable(filename string) bool {
	switch FormatOf(filename) {
	case FormatDocx, FormatPDF, FormatLegacyDoc:
		return true
	}
	return false
}

// Image is one raster image written to disk. Page, Width and Height are
// nil when the source format does not expose them.
type Image struct {
	Path   string
	Page   *int
	Width  *int
	Height *int
}

// Reader pulls plain text and embedded images out of one source format.
type Reader interface {
	Text(ctx context.Context, path string) (string, error)
	// Images writes every embedded image under outDir, which is created
	// on first use.
	Images(ctx context.Context, path, outDir string) ([]Image, error)
}

// ReaderConfig tunes the readers returned by ForFile.
type ReaderConfig struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the reader for a filename.
func ForFile(filename string, cfg ReaderConfig) (Reader, error) {
	switch f := FormatOf(filename); f {
	case FormatDocx:
		return &DOCXReader{}, nil
	case FormatPDF:
		return &PDFReader{FallbackPdftotext: cfg.PDFFallbackPdftotext}, nil
	default:
		return nil, fmt.Errorf("no reader for %s file: %s", f, filepath.Ext(filename))
	}
}

// guard converts a panic inside a third-party parser into an error.
func guard(what string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: malformed input: %v", what, r)
	}
}

func intPtr(n int) *int { return &n }
