package segment

import (
	"strings"
	"testing"

	"github.com/dgallion1/docgloss/internal/doctree"
	"golang.org/x/net/html"
)

func partSections(doc *html.Node) []*html.Node {
	return doctree.FindAll(doc, func(n *html.Node) bool { return doctree.IsElement(n, "section") })
}

func navTexts(doc *html.Node) []string {
	var out []string
	for _, a := range doctree.FindAll(doc, func(n *html.Node) bool {
		return doctree.IsElement(n, "a") && doctree.HasClass(n, "nav-link")
	}) {
		out = append(out, doctree.TextContent(a))
	}
	return out
}

func TestRestructure_FreshDocument(t *testing.T) {
	src := `<html><head><title>Doc</title><style>p{}</style></head><body>
<div class="doc-content">
  <p>` + longIntro + `</p>
  <h1>Alpha</h1><p>a1</p>
  <script>var x;</script>
  <h2>Beta</h2><table><tr><td>b1</td></tr></table>
</div></body></html>`
	doc := parseDoc(t, src)
	res := Restructure(doc, quietOpts(Options{}))

	if res.Resegmented {
		t.Error("expected fresh input")
	}
	if got := titles(res.Sections); !equalStrings(got, []string{"Introduction", "Alpha", "Beta"}) {
		t.Fatalf("unexpected titles %v", got)
	}
	for i, e := range res.Nav {
		if e.Index != i+1 || e.Anchor != "part"+string(rune('1'+i)) {
			t.Errorf("nav %d: unexpected entry %+v", i, e)
		}
	}

	secs := partSections(doc)
	if len(secs) != 3 {
		t.Fatalf("expected 3 sections in document, got %d", len(secs))
	}
	for i, s := range secs {
		if doctree.Attr(s, "id") != res.Nav[i].Anchor {
			t.Errorf("section %d: id %q does not match nav anchor %q", i, doctree.Attr(s, "id"), res.Nav[i].Anchor)
		}
		if !doctree.HasClass(s, "section-collapsed") {
			t.Errorf("section %d: expected collapsed", i)
		}
		if doctree.FindByClass(s, "content-block") == nil {
			t.Errorf("section %d: missing content block", i)
		}
	}
	if got := navTexts(doc); !equalStrings(got, []string{"1. Introduction", "2. Alpha", "3. Beta"}) {
		t.Errorf("unexpected nav links %v", got)
	}
	if doctree.FindByClass(doc, "doc-content") != nil {
		t.Error("expected emptied wrapper removed")
	}
	if strings.Contains(render(t, doctree.FindElement(doc, "main")), "var x") {
		t.Error("expected scripts removed from content")
	}
	if doctree.FindElement(doc, "style") == nil {
		t.Error("expected head untouched")
	}
}

func TestRestructure_UnwrapsNestedContainers(t *testing.T) {
	src := `<html><body><div><div><div><h1>Alpha</h1><p>a1</p><h1>Beta</h1><p>b1</p></div></div></div></body></html>`
	doc := parseDoc(t, src)
	res := Restructure(doc, quietOpts(Options{}))
	if got := titles(res.Sections); !equalStrings(got, []string{"Alpha", "Beta"}) {
		t.Fatalf("expected headings found through wrappers, got %v", got)
	}
	body := doctree.Body(doc)
	for _, c := range doctree.ElementChildren(body) {
		if c.Data == "div" {
			t.Error("expected emptied wrapper divs removed from body")
		}
	}
}

func TestRestructure_FixedPoint(t *testing.T) {
	src := `<html><head><title>Doc</title></head><body><main>
<p>` + longIntro + `</p>
<h1>Alpha</h1><p>a1</p><p><img src="a.png"></p>
<h2></h2><p>untitled</p>
<h1>Beta</h1><ul><li>b1</li></ul>
</main></body></html>`
	doc := parseDoc(t, src)
	first := Restructure(doc, quietOpts(Options{}))
	once := render(t, doc)

	doc2 := parseDoc(t, once)
	second := Restructure(doc2, quietOpts(Options{}))
	twice := render(t, doc2)

	if !second.Resegmented {
		t.Error("expected second pass to detect existing sections")
	}
	if !equalStrings(titles(first.Sections), titles(second.Sections)) {
		t.Fatalf("titles changed: %v -> %v", titles(first.Sections), titles(second.Sections))
	}
	for i := range first.Sections {
		if first.Sections[i].Text() != second.Sections[i].Text() {
			t.Errorf("section %d: content changed %q -> %q", i, first.Sections[i].Text(), second.Sections[i].Text())
		}
	}
	if once != twice {
		t.Errorf("expected identical output\nonce:  %s\ntwice: %s", once, twice)
	}
	for _, s := range partSections(doc2) {
		for p := s.Parent; p != nil; p = p.Parent {
			if doctree.IsElement(p, "section") {
				t.Fatalf("section %q nested inside another section", doctree.Attr(s, "id"))
			}
		}
	}
}

func TestRestructure_KnownTitlesFixedPoint(t *testing.T) {
	opts := quietOpts(Options{Mode: ModeKnownTitles, KnownTitles: []string{"Weapon Symbols", "Fire Symbols"}})
	src := `<html><body><main>
<p><strong>Weapon Symbols</strong></p><p>w1</p>
<p><strong>Fire Symbols</strong></p><p>f1</p>
</main></body></html>`
	doc := parseDoc(t, src)
	first := Restructure(doc, opts)
	once := render(t, doc)

	doc2 := parseDoc(t, once)
	second := Restructure(doc2, opts)
	if !equalStrings(titles(first.Sections), titles(second.Sections)) {
		t.Fatalf("titles changed: %v -> %v", titles(first.Sections), titles(second.Sections))
	}
	if twice := render(t, doc2); once != twice {
		t.Errorf("expected identical output\nonce:  %s\ntwice: %s", once, twice)
	}
}

func TestRestructure_KnownTitlesOverHeadingSections(t *testing.T) {
	src := `<html><body><main>
<h1>Old Export Heading</h1><p><strong>Weapon Symbols</strong></p><p>w1</p>
<h1>Second Old Heading</h1><p><strong>Fire Symbols</strong></p><p>f1</p>
</main></body></html>`
	doc := parseDoc(t, src)
	Restructure(doc, quietOpts(Options{}))
	byHeadings := render(t, doc)

	doc2 := parseDoc(t, byHeadings)
	res := Restructure(doc2, quietOpts(Options{Mode: ModeKnownTitles, KnownTitles: []string{"Weapon Symbols", "Fire Symbols"}}))
	want := []string{"Weapon Symbols", "Fire Symbols"}
	if !equalStrings(titles(res.Sections), want) {
		t.Fatalf("expected %v, got %v", want, titles(res.Sections))
	}
	out := render(t, doc2)
	for _, old := range []string{"Old Export Heading", "Second Old Heading"} {
		if strings.Contains(out, old) {
			t.Errorf("expected %q dropped, got %s", old, out)
		}
	}
}

func TestFlatten_KnownTitlesKeepsCatalogHeadings(t *testing.T) {
	src := `<html><body><aside><nav></nav></aside><main>
<section id="part1" data-title="Weapon Symbols"><div class="content-block"><p>w1</p></div></section>
<section id="part2" data-title="Leftover"><div class="content-block"><p>l1</p></div></section>
</main></body></html>`
	flat := Flatten(parseDoc(t, src), quietOpts(Options{Mode: ModeKnownTitles, KnownTitles: []string{"Weapon Symbols"}}))

	var texts []string
	for _, n := range flat.Nodes {
		if txt := strings.TrimSpace(doctree.RawText(n)); txt != "" {
			texts = append(texts, txt)
		}
	}
	want := []string{"Weapon Symbols", "w1", "l1"}
	if !equalStrings(texts, want) {
		t.Errorf("expected %v, got %v", want, texts)
	}
}

func TestFlatten_NestedSectionsInPlace(t *testing.T) {
	src := `<html><body><aside><nav></nav></aside><main>
<section id="part1"><h3 class="section-title"><div class="section-header-row"><span><span class="section-number">1</span><span>Alpha</span></span><span class="collapse-icon">▼</span></div></h3>
<div class="content-block"><p>a1</p>
  <section id="part2"><h3 class="section-title">x</h3><div class="content-block"><p>inner</p></div></section>
  <div class="doc-content"><p>wrapped</p></div>
  <p>a2</p></div></section>
</main></body></html>`
	doc := parseDoc(t, src)
	flat := Flatten(doc, quietOpts(Options{}))
	if !flat.Resegmented {
		t.Fatal("expected segmented input detected")
	}

	var texts []string
	for _, n := range flat.Nodes {
		if txt := strings.TrimSpace(doctree.RawText(n)); txt != "" {
			texts = append(texts, txt)
		}
	}
	want := []string{"Alpha", "a1", "inner", "wrapped", "a2"}
	if !equalStrings(texts, want) {
		t.Errorf("expected %v, got %v", want, texts)
	}
	if h, ok := doctree.Classify(flat.Nodes[0]).(doctree.Heading); !ok || h.Level != 2 {
		t.Errorf("expected leading level-2 title heading, got %T", doctree.Classify(flat.Nodes[0]))
	}
	if len(partSections(doc)) != 0 {
		t.Error("expected old sections detached")
	}
}

func TestFlatten_SectionsWithoutSidebarAreFresh(t *testing.T) {
	doc := parseDoc(t, `<html><body><main><section id="part1"><p>x</p></section></main></body></html>`)
	if Flatten(doc, quietOpts(Options{})).Resegmented {
		t.Error("expected input without sidebar treated as fresh")
	}
}
