// Package extract reads source documents into the store: one document row
// per file, its plain text, and every embedded image written to disk.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docgloss/internal/parser"
	"github.com/dgallion1/docgloss/internal/store"
)

// Status is the outcome of extracting one file.
type Status string

const (
	// StatusExtracted means text and images were read without error.
	StatusExtracted Status = "extracted"
	// StatusDegraded means the document row exists but text or images
	// could not be fully read.
	StatusDegraded Status = "degraded"
	// StatusSkipped means no row was created.
	StatusSkipped Status = "skipped"
	// StatusFailed means the store rejected a write.
	StatusFailed Status = "failed"
)

// Result describes one file's extraction.
type Result struct {
	Path       string
	Status     Status
	DocumentID int64
	Images     int
	Err        error
	Duration   time.Duration
}

// Config holds the extractor's collaborators.
type Config struct {
	// Root is the directory stored paths are made relative to.
	Root string
	// ImagesDir receives one subdirectory per document stem.
	ImagesDir string
	// Converter handles legacy .doc files. Nil skips them.
	Converter    parser.Converter
	Readers      parser.ReaderConfig
	MaxFileBytes int64
	Logger       *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxFileBytes <= 0 {
		c.MaxFileBytes = 100 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Extractor writes documents and images into a store.
type Extractor struct {
	store   *store.Store
	cfg     Config
	timings *Timings
}

func New(st *store.Store, cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{store: st, cfg: cfg, timings: NewTimings()}
}

// Timings returns the per-file durations recorded so far.
func (e *Extractor) Timings() *Timings {
	return e.timings
}

// ExtractAll extracts files in order. A failed file does not stop the
// batch; cancellation does, between files.
func (e *Extractor) ExtractAll(ctx context.Context, paths []string) []Result {
	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			e.cfg.Logger.Warn("extraction cancelled", "remaining", len(paths)-len(results))
			break
		}
		res, err := e.ExtractFile(ctx, p)
		if err != nil {
			e.cfg.Logger.Error("extract failed", "path", p, "error", err)
		}
		results = append(results, res)
	}
	return results
}

// ExtractFile extracts one file. The returned error is non-nil only when
// the store rejects a write; unreadable content degrades instead.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	res, err := e.extractFile(ctx, path)
	res.Duration = time.Since(start)
	if res.Status != StatusSkipped {
		e.timings.Record(res.Duration)
	}
	return res, err
}

func (e *Extractor) extractFile(ctx context.Context, path string) (Result, error) {
	log := e.cfg.Logger.With("path", path)
	res := Result{Path: path}

	switch parser.FormatOf(path) {
	case parser.FormatLegacyDoc:
		converted, err := e.convert(ctx, path)
		if err != nil {
			log.Warn("legacy document skipped", "error", err)
			res.Status, res.Err = StatusSkipped, err
			return res, nil
		}
		log.Info("legacy document converted", "docx", converted)
		path = converted
		res.Path = converted
	case parser.FormatDocx, parser.FormatPDF:
	default:
		res.Status = StatusSkipped
		res.Err = fmt.Errorf("unsupported file type %q", filepath.Ext(path))
		return res, nil
	}

	reader, err := parser.ForFile(path, e.cfg.Readers)
	if err != nil {
		res.Status, res.Err = StatusSkipped, err
		return res, nil
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc := store.Document{
		SourcePath: e.relative(path),
		Title:      stem,
		DocType:    docType(path),
	}
	if n, ok := SectionNumber(path); ok {
		doc.SectionNumber = &n
	}

	var (
		images []parser.Image
		causes []error
	)
	if err := e.checkSize(path); err != nil {
		causes = append(causes, err)
	} else {
		doc.TextContent, err = reader.Text(ctx, path)
		if err != nil {
			doc.TextContent = ""
			causes = append(causes, err)
		}
		images, err = reader.Images(ctx, path, filepath.Join(e.cfg.ImagesDir, stem))
		if err != nil {
			causes = append(causes, err)
		}
	}

	id, err := e.store.InsertDocument(ctx, doc)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res, err
	}
	res.DocumentID = id

	for _, img := range images {
		_, err := e.store.InsertImage(ctx, store.Image{
			DocumentID: id,
			SourcePath: doc.SourcePath,
			ImagePath:  e.relative(img.Path),
			Page:       img.Page,
			Width:      img.Width,
			Height:     img.Height,
		})
		if err != nil {
			res.Status, res.Err = StatusFailed, err
			return res, err
		}
		res.Images++
	}

	res.Status = StatusExtracted
	if len(causes) > 0 {
		res.Status, res.Err = StatusDegraded, errors.Join(causes...)
		log.Warn("document degraded", "id", id, "error", res.Err)
	} else {
		log.Info("document extracted", "id", id, "images", res.Images, "chars", len(doc.TextContent))
	}
	return res, nil
}

func (e *Extractor) convert(ctx context.Context, path string) (string, error) {
	if e.cfg.Converter == nil {
		return "", parser.ErrConverterUnavailable
	}
	return e.cfg.Converter.Convert(ctx, path)
}

func (e *Extractor) checkSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	if info.Size() > e.cfg.MaxFileBytes {
		return fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), e.cfg.MaxFileBytes)
	}
	return nil
}

// relative returns p relative to the root when it lies inside it, so a
// store can move between machines with its files.
func (e *Extractor) relative(p string) string {
	return store.Relative(e.cfg.Root, p)
}

func docType(path string) string {
	if parser.FormatOf(path) == parser.FormatPDF {
		return store.DocTypePDF
	}
	return store.DocTypeDocx
}
