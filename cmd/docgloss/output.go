package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/docgloss/internal/extract"
	"github.com/dgallion1/docgloss/internal/pipeline"
	"github.com/dgallion1/docgloss/internal/store"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for summary boxes
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "extracted", "indexed", pipeline.PageChanged:
		return successStyle
	case "degraded", "skipped":
		return warnStyle
	case "failed":
		return errorStyle
	}
	return dimStyle
}

// FormatReport renders a run summary box followed by every item that did
// not succeed cleanly. timings may be nil.
func FormatReport(w io.Writer, r *pipeline.Report, timings *extract.TimingSnapshot) {
	lines := []string{
		titleStyle.Render("Run Complete"),
		fmt.Sprintf("%s %s  %s %.1fs", dimStyle.Render("Run:"), r.RunID,
			dimStyle.Render("Elapsed:"), r.Elapsed().Seconds()),
	}
	for _, c := range r.Counts() {
		lines = append(lines, fmt.Sprintf("%s %s %d",
			dimStyle.Render(string(c.Stage)+":"), statusStyle(c.Status).Render(c.Status), c.Count))
	}
	if timings != nil && timings.Count > 0 {
		lines = append(lines, fmt.Sprintf("%s p50 %.0fms  p95 %.0fms  max %dms",
			dimStyle.Render("Per file:"), timings.P50Ms, timings.P95Ms, timings.MaxMs))
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))

	for _, it := range r.Items() {
		if it.Error == "" && it.Status != "skipped" {
			continue
		}
		line := fmt.Sprintf("%s %s", statusStyle(it.Status).Render(it.Status), it.Path)
		if it.Error != "" {
			line += dimStyle.Render(": " + it.Error)
		}
		fmt.Fprintln(w, line)
	}
}

// FormatSections renders one line per section.
func FormatSections(w io.Writer, sections []store.Section) {
	if len(sections) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No sections."))
		return
	}
	for _, s := range sections {
		title := s.Title
		if title == "" {
			title = dimStyle.Render("(untitled)")
		}
		fmt.Fprintf(w, "%s %s %s\n",
			titleStyle.Render(fmt.Sprintf("%4d", s.Number)), title,
			dimStyle.Render(fmt.Sprintf("[%s, %d terms, %d documents]", s.Type, s.TermsCount, s.DocumentsCount)))
	}
}

// FormatTerms renders a page of search results.
func FormatTerms(w io.Writer, page store.TermPage, q store.TermQuery) {
	shown := len(page.Terms)
	from := q.Offset + 1
	if shown == 0 {
		from = q.Offset
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d-%d of %d terms", from, q.Offset+shown, page.Total)))
	for _, t := range page.Terms {
		head := fmt.Sprintf("%s %s", dimStyle.Render(fmt.Sprintf("%d.%s", t.SectionNumber, t.ItemNumber)), titleStyle.Render(t.Term))
		if t.Abbreviation != "" {
			head += " (" + t.Abbreviation + ")"
		}
		fmt.Fprintln(w, head)
		if t.Description != "" {
			fmt.Fprintln(w, "    "+t.Description)
		}
	}
}

// FormatDocuments renders one line per document.
func FormatDocuments(w io.Writer, docs []store.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No documents."))
		return
	}
	for _, d := range docs {
		fmt.Fprintf(w, "%s %s %s %s\n",
			dimStyle.Render(fmt.Sprintf("%5d", d.ID)), titleStyle.Render(d.Title),
			dimStyle.Render("["+d.DocType+", "+sectionLabel(d.SectionNumber)+"]"), d.SourcePath)
	}
}

// FormatDocument renders a document header box, its images and optionally
// its text.
func FormatDocument(w io.Writer, d *store.Document, images []store.Image, fullText bool) {
	download := d.DownloadURL
	if download == "" {
		download = errorStyle.Render("source unavailable")
	}
	content := fmt.Sprintf("%s\n%s %s  %s %s\n%s %s\n%s %s\n%s %d chars, %d images",
		titleStyle.Render(d.Title),
		dimStyle.Render("Type:"), d.DocType,
		dimStyle.Render("Section:"), sectionLabel(d.SectionNumber),
		dimStyle.Render("Source:"), d.SourcePath,
		dimStyle.Render("Download:"), download,
		dimStyle.Render("Content:"), utf8.RuneCountInString(d.TextContent), len(images),
	)
	fmt.Fprintln(w, boxStyle.Render(content))

	for _, img := range images {
		var meta []string
		if img.Page != nil {
			meta = append(meta, fmt.Sprintf("page %d", *img.Page))
		}
		if img.Width != nil && img.Height != nil {
			meta = append(meta, fmt.Sprintf("%dx%d", *img.Width, *img.Height))
		}
		line := img.URL
		if len(meta) > 0 {
			line += " " + dimStyle.Render(strings.Join(meta, ", "))
		}
		fmt.Fprintln(w, line)
	}

	if fullText && d.TextContent != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d.TextContent)
	}
}

func sectionLabel(n *int) string {
	if n == nil {
		return "no section"
	}
	return fmt.Sprintf("section %d", *n)
}
