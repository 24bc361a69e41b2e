// Package terms indexes glossary pages: one HTML page per section, named
// <section_number>.html, holding a table of numbered terms.
package terms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/docgloss/internal/store"
)

const (
	titleSelector = ".department-main-title"
	rowSelector   = "#termsTable tbody tr"
)

// Row is one glossary table row.
type Row struct {
	ItemNumber   string
	Term         string
	Description  string
	Abbreviation string
}

// Page is the parsed content of a glossary page.
type Page struct {
	Title string
	Rows  []Row
}

// ParsePage reads the page title and every table row with at least four
// cells, in document order.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse glossary page: %w", err)
	}

	page := &Page{}
	if title := doc.Find(titleSelector).First(); title.Length() > 0 {
		page.Title = strings.TrimSpace(title.Text())
	}

	doc.Find(rowSelector).Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) < 4 {
			return
		}
		page.Rows = append(page.Rows, Row{
			ItemNumber:   cells[0],
			Term:         cells[1],
			Description:  cells[2],
			Abbreviation: cells[3],
		})
	})
	return page, nil
}

// Status is the outcome of indexing one page.
type Status string

const (
	StatusIndexed Status = "indexed"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result describes one page's indexing.
type Result struct {
	Path    string
	Status  Status
	Section int
	Terms   int
	Err     error
}

// Indexer writes glossary terms into a store.
type Indexer struct {
	store  *store.Store
	root   string
	logger *slog.Logger
}

// New returns an indexer. Source paths inside root are stored relative
// to it.
func New(st *store.Store, root string, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{store: st, root: root, logger: logger}
}

// SectionNumber parses a glossary page's file stem.
func SectionNumber(path string) (int, bool) {
	base := filepath.Base(path)
	n, err := strconv.Atoi(strings.TrimSuffix(base, filepath.Ext(base)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// IndexAll indexes pages in order, continuing past failures.
func (ix *Indexer) IndexAll(ctx context.Context, paths []string) []Result {
	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			ix.logger.Warn("indexing cancelled", "remaining", len(paths)-len(results))
			break
		}
		res, err := ix.IndexFile(ctx, p)
		if err != nil {
			ix.logger.Error("index failed", "path", p, "error", err)
		}
		results = append(results, res)
	}
	return results
}

// IndexFile indexes one page. A page whose name is not a section number
// is skipped.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (Result, error) {
	res := Result{Path: path}
	n, ok := SectionNumber(path)
	if !ok {
		res.Status = StatusSkipped
		res.Err = fmt.Errorf("not a section page: %s", filepath.Base(path))
		return res, nil
	}
	res.Section = n

	f, err := os.Open(path)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res, fmt.Errorf("open glossary page: %w", err)
	}
	page, err := ParsePage(f)
	f.Close()
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res, err
	}

	// The section must exist before its terms reference it, titled or not.
	if err := ix.store.UpsertSection(ctx, n, page.Title, store.SectionTypeTerms); err != nil {
		res.Status, res.Err = StatusFailed, err
		return res, err
	}
	sec, err := ix.store.GetSection(ctx, n)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res, err
	}
	sectionTitle := page.Title
	if sec != nil && sec.Title != "" {
		sectionTitle = sec.Title
	}

	source := ix.relative(path)
	for _, row := range page.Rows {
		_, err := ix.store.InsertTerm(ctx, store.Term{
			SourcePath:    source,
			SectionNumber: n,
			SectionTitle:  sectionTitle,
			ItemNumber:    row.ItemNumber,
			Term:          row.Term,
			Description:   row.Description,
			Abbreviation:  row.Abbreviation,
		})
		if err != nil {
			res.Status, res.Err = StatusFailed, err
			return res, err
		}
		res.Terms++
	}

	res.Status = StatusIndexed
	ix.logger.Info("glossary page indexed", "path", path, "section", n, "terms", res.Terms)
	return res, nil
}

func (ix *Indexer) relative(p string) string {
	return store.Relative(ix.root, p)
}
