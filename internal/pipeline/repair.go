package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/docgloss/internal/parser"
	"github.com/dgallion1/docgloss/internal/renumber"
	"github.com/dgallion1/docgloss/internal/segment"
	"golang.org/x/net/html"
)

// Page repair outcomes.
const (
	PageChanged   = "changed"
	PageUnchanged = "unchanged"
	PageFailed    = "failed"
)

// RepairOptions selects the repairs applied to an exported page.
type RepairOptions struct {
	Renumber bool
	Labels   []string

	Segment      bool
	Segmentation segment.Options

	// Out writes the result elsewhere instead of replacing the page.
	// Markdown sources default to <stem>.html next to the source.
	Out string
}

// PageResult is the outcome of repairing one page.
type PageResult struct {
	Path     string
	Out      string
	Status   string
	Filled   int
	Sections int
	Err      error
}

// RepairPage renumbers tables and restructures sections of one HTML or
// Markdown page. The file is written only when its rendering changed.
func RepairPage(path string, opts RepairOptions) (PageResult, error) {
	res := PageResult{Path: path, Out: opts.Out}
	if res.Out == "" {
		res.Out = path
	}

	doc, fresh, err := loadPage(path)
	if err != nil {
		res.Status, res.Err = PageFailed, err
		return res, err
	}
	if fresh && opts.Out == "" {
		res.Out = filepath.Join(filepath.Dir(path), stemOf(filepath.Base(path))+".html")
	}

	before, err := parser.RenderHTML(doc)
	if err != nil {
		res.Status, res.Err = PageFailed, err
		return res, err
	}

	if opts.Renumber {
		res.Filled = renumber.Document(doc, opts.Labels).Filled
	}
	if opts.Segment {
		res.Sections = len(segment.Restructure(doc, opts.Segmentation).Sections)
	}

	after, err := parser.RenderHTML(doc)
	if err != nil {
		res.Status, res.Err = PageFailed, err
		return res, err
	}

	if before == after && !fresh && res.Out == path {
		res.Status = PageUnchanged
		return res, nil
	}
	if err := parser.SaveHTML(res.Out, doc); err != nil {
		res.Status, res.Err = PageFailed, err
		return res, err
	}
	res.Status = PageChanged
	return res, nil
}

// loadPage parses an HTML page, or renders a Markdown source into a new
// page (fresh).
func loadPage(path string) (*html.Node, bool, error) {
	switch parser.FormatOf(path) {
	case parser.FormatHTML:
		doc, err := parser.LoadHTML(path)
		return doc, false, err
	case parser.FormatMarkdown:
		f, err := os.Open(path)
		if err != nil {
			return nil, false, fmt.Errorf("open markdown: %w", err)
		}
		defer f.Close()
		doc, err := parser.MarkdownToHTML(f, stemOf(filepath.Base(path)))
		return doc, true, err
	default:
		return nil, false, fmt.Errorf("not a page: %s", filepath.Base(path))
	}
}
