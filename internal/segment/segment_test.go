package segment

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgallion1/docgloss/internal/doctree"
	"golang.org/x/net/html"
)

const longIntro = "This introduction is deliberately long enough to survive the placeholder threshold."

func quietOpts(o Options) Options {
	o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return o
}

func parseDoc(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func titles(sections []Section) []string {
	var out []string
	for _, s := range sections {
		out = append(out, s.Title)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func bodyNodes(t *testing.T, src string) []doctree.Node {
	t.Helper()
	doc := parseDoc(t, "<html><body>"+src+"</body></html>")
	return doctree.ClassifyAll(doctree.Children(doctree.Body(doc)))
}

func TestSegment_ShortIntroDropped(t *testing.T) {
	nodes := bodyNodes(t, "<p>Intro text</p><h1>Alpha</h1><p>a1</p><h1>Beta</h1><p>b1</p>")
	sections := Segment(nodes, quietOpts(Options{}))

	if got := titles(sections); !equalStrings(got, []string{"Alpha", "Beta"}) {
		t.Fatalf("expected [Alpha Beta], got %v", got)
	}
	if sections[0].Text() != "a1" || sections[1].Text() != "b1" {
		t.Errorf("unexpected section text %q / %q", sections[0].Text(), sections[1].Text())
	}
}

func TestSegment_LongIntroKept(t *testing.T) {
	nodes := bodyNodes(t, "<p>"+longIntro+"</p><h1>Alpha</h1><p>a1</p><h1>Beta</h1><p>b1</p>")
	sections := Segment(nodes, quietOpts(Options{}))

	if got := titles(sections); !equalStrings(got, []string{"Introduction", "Alpha", "Beta"}) {
		t.Fatalf("expected [Introduction Alpha Beta], got %v", got)
	}
	if !sections[0].Placeholder {
		t.Error("expected first section to be the placeholder")
	}
}

func TestSegment_HeadingLevels(t *testing.T) {
	nodes := bodyNodes(t, "<h2>Alpha</h2><h3>Sub</h3><p>a1</p><h2>  </h2><p>b1</p>")
	sections := Segment(nodes, quietOpts(Options{}))

	if got := titles(sections); !equalStrings(got, []string{"Alpha", "Section 3"}) {
		t.Fatalf("expected [Alpha Section 3], got %v", got)
	}
	if len(sections[0].Nodes) != 2 {
		t.Errorf("expected h3 kept as content, got %d nodes", len(sections[0].Nodes))
	}
}

func TestSegment_AdjacentHeadingsDropEmptySection(t *testing.T) {
	nodes := bodyNodes(t, "<h1>Alpha</h1><h1>Beta</h1><p>b1</p>")
	sections := Segment(nodes, quietOpts(Options{}))
	if got := titles(sections); !equalStrings(got, []string{"Beta"}) {
		t.Fatalf("expected [Beta], got %v", got)
	}
}

func TestSegment_ImageOnlySectionKept(t *testing.T) {
	nodes := bodyNodes(t, `<h1>Alpha</h1><p><img src="x.png"></p><h1>Beta</h1><p>b1</p>`)
	sections := Segment(nodes, quietOpts(Options{}))
	if got := titles(sections); !equalStrings(got, []string{"Alpha", "Beta"}) {
		t.Fatalf("expected [Alpha Beta], got %v", got)
	}
}

func TestSegment_CardUnwrapped(t *testing.T) {
	nodes := bodyNodes(t, `<h1>Alpha</h1><div class="card"><p>c1</p><p>c2</p></div>`)
	sections := Segment(nodes, quietOpts(Options{}))
	if len(sections) != 1 || len(sections[0].Nodes) != 2 {
		t.Fatalf("expected card children inlined, got %+v", sections)
	}
}

func TestSegment_NoHeadingsKeepsPlaceholder(t *testing.T) {
	nodes := bodyNodes(t, "<p>short</p>")
	sections := Segment(nodes, quietOpts(Options{Placeholder: "مقدمة"}))
	if len(sections) != 1 || sections[0].Title != "مقدمة" || !sections[0].Placeholder {
		t.Fatalf("expected single placeholder section, got %+v", titles(sections))
	}
	if sections[0].Text() != "short" {
		t.Errorf("expected placeholder to keep its content, got %q", sections[0].Text())
	}
}

func TestSegment_KnownTitles(t *testing.T) {
	catalog := []string{"Weapon Symbols", "Fire Symbols"}
	src := `<p><strong>1. Weapon Symbols</strong></p><p>w1</p>` +
		`<p>Fire Symbols without emphasis</p>` +
		`<p><strong>Fire Symbols</strong> and more</p><p>f1</p>` +
		`<h1>Ignored heading</h1><p>f2</p>` +
		`<p><b>` + strings.Repeat("Fire Symbols ", 10) + `</b></p>`
	sections := Segment(bodyNodes(t, src), quietOpts(Options{Mode: ModeKnownTitles, KnownTitles: catalog}))

	if got := titles(sections); !equalStrings(got, []string{"Weapon Symbols", "Fire Symbols"}) {
		t.Fatalf("expected [Weapon Symbols Fire Symbols], got %v", got)
	}
	if n := len(sections[0].Nodes); n != 2 {
		t.Errorf("expected 2 nodes in first section (w1 and the unemphasized paragraph), got %d", n)
	}
	second := sections[1].Text()
	if strings.Contains(second, "and more") {
		t.Errorf("expected matching paragraph discarded, got %q", second)
	}
	for _, want := range []string{"f1", "Ignored heading", "f2"} {
		if !strings.Contains(second, want) {
			t.Errorf("expected %q in second section, got %q", want, second)
		}
	}
}

func TestParseCatalog(t *testing.T) {
	got, err := ParseCatalog(strings.NewReader("# comment\nWeapon  Symbols\n\n  Fire Symbols \n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalStrings(got, []string{"Weapon Symbols", "Fire Symbols"}) {
		t.Errorf("unexpected catalog %v", got)
	}
}
