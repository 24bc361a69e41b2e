// Package segment splits the flat content of an exported HTML document into
// titled, collapsible sections with a matching navigation list.
//
// Restructuring runs in three explicit passes:
//
//	Flatten: document tree  -> flat node sequence (undoing earlier sections)
//	Segment: node sequence  -> ordered sections
//	Apply:   sections       -> section blocks in <main>, links in <aside><nav>
//
// Because Flatten undoes what Apply builds, restructuring an already
// restructured page reproduces the same structure.
package segment

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docgloss/internal/doctree"
	"golang.org/x/net/html"
)

// Mode selects how section boundaries are detected.
type Mode int

const (
	// ModeHeadings starts a section at every h1/h2 element.
	ModeHeadings Mode = iota
	// ModeKnownTitles starts a section at short emphasized paragraphs whose
	// text contains an entry of Options.KnownTitles.
	ModeKnownTitles
)

func (m Mode) String() string {
	switch m {
	case ModeHeadings:
		return "headings"
	case ModeKnownTitles:
		return "known-titles"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Options configures restructuring. The zero value is heading mode with
// English defaults.
type Options struct {
	Mode Mode

	// KnownTitles is the ordered catalog used in ModeKnownTitles. The first
	// entry contained in a candidate paragraph wins.
	KnownTitles []string

	// Placeholder titles content that precedes the first boundary.
	Placeholder string

	// UntitledFormat names a section whose heading has no text. It receives
	// the section's ordinal.
	UntitledFormat string

	// MinPlaceholderLen drops a leading placeholder section with fewer
	// characters of text than this.
	MinPlaceholderLen int

	// MaxTitleLen bounds the length of a paragraph considered as a known
	// title.
	MaxTitleLen int

	// IDPrefix prefixes section ids: part1, part2, ...
	IDPrefix string

	// Expanded leaves sections open instead of collapsed.
	Expanded bool

	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Placeholder == "" {
		o.Placeholder = "Introduction"
	}
	if o.UntitledFormat == "" {
		o.UntitledFormat = "Section %d"
	}
	if o.MinPlaceholderLen <= 0 {
		o.MinPlaceholderLen = 50
	}
	if o.MaxTitleLen <= 0 {
		o.MaxTitleLen = 100
	}
	if o.IDPrefix == "" {
		o.IDPrefix = "part"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Section is a titled run of content nodes.
type Section struct {
	Title string
	Nodes []doctree.Node

	// Placeholder marks the leading section that no boundary opened.
	Placeholder bool
}

// Text returns the trimmed text of all the section's nodes.
func (s Section) Text() string {
	var b strings.Builder
	for _, n := range s.Nodes {
		b.WriteString(doctree.RawText(n.Source()))
	}
	return strings.TrimSpace(b.String())
}

func (s Section) hasContent() bool {
	for _, n := range s.Nodes {
		if doctree.HasContent(n.Source()) {
			return true
		}
	}
	return false
}

// NavEntry is one navigation link. Index is 1-based and targets the
// section with the same position.
type NavEntry struct {
	Index  int
	Title  string
	Anchor string
}

// Result is the outcome of Restructure.
type Result struct {
	Sections    []Section
	Nav         []NavEntry
	Resegmented bool
}

// Restructure flattens doc, segments its content and writes the sections
// back into doc.
func Restructure(doc *html.Node, opts Options) Result {
	opts.defaults()
	flat := Flatten(doc, opts)
	sections := Segment(doctree.ClassifyAll(flat.Nodes), opts)
	nav := Apply(doc, sections, opts)
	opts.Logger.Debug("restructured document",
		"mode", opts.Mode, "resegmented", flat.Resegmented,
		"nodes", len(flat.Nodes), "sections", len(sections))
	return Result{Sections: sections, Nav: nav, Resegmented: flat.Resegmented}
}

// Segment groups nodes into sections. Nodes that open a section are not
// part of its content. Sections without content are dropped, as is a
// leading placeholder section shorter than MinPlaceholderLen. When nothing
// survives, the single placeholder section is returned.
func Segment(nodes []doctree.Node, opts Options) []Section {
	opts.defaults()

	sections := []Section{{Title: opts.Placeholder, Placeholder: true}}
	for _, n := range nodes {
		if title, ok := opts.boundary(n, len(sections)+1); ok {
			opts.Logger.Debug("section boundary", "title", title)
			sections = append(sections, Section{Title: title})
			continue
		}

		cur := &sections[len(sections)-1]
		if b, ok := n.(doctree.Block); ok && opts.Mode == ModeHeadings && b.Tag == "div" && b.HasClass("card") {
			for _, c := range doctree.Children(b.Source()) {
				cur.Nodes = append(cur.Nodes, doctree.Classify(c))
			}
			continue
		}
		cur.Nodes = append(cur.Nodes, n)
	}

	return prune(sections, opts)
}

// boundary reports whether n opens a new section and with which title.
// ordinal is the position the new section would take.
func (o *Options) boundary(n doctree.Node, ordinal int) (string, bool) {
	switch v := n.(type) {
	case doctree.Heading:
		if v.Level > 2 {
			return "", false
		}
		if o.Mode == ModeKnownTitles {
			return o.matchTitle(strings.Join(strings.Fields(v.Text), " "))
		}
		if v.Text == "" {
			return fmt.Sprintf(o.UntitledFormat, ordinal), true
		}
		return v.Text, true
	case doctree.Paragraph:
		if o.Mode == ModeKnownTitles && v.Emphasized {
			return o.matchTitle(v.Text)
		}
	}
	return "", false
}

func (o *Options) matchTitle(text string) (string, bool) {
	if text == "" || utf8.RuneCountInString(text) >= o.MaxTitleLen {
		return "", false
	}
	for _, t := range o.KnownTitles {
		if t != "" && strings.Contains(text, t) {
			return t, true
		}
	}
	return "", false
}

func prune(sections []Section, opts Options) []Section {
	var out []Section
	for _, s := range sections {
		if s.hasContent() {
			out = append(out, s)
		}
	}
	if len(out) > 0 && out[0].Placeholder && utf8.RuneCountInString(out[0].Text()) < opts.MinPlaceholderLen {
		out = out[1:]
	}
	if len(out) == 0 {
		return sections[:1]
	}
	return out
}
