package doctree

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseBody(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<html><body>" + src + "</body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return Body(doc)
}

func TestClassify_Variants(t *testing.T) {
	body := parseBody(t, `<h2> Alpha </h2><p><strong>Bold</strong> text</p><table></table><img src="a.png"><div class="card x"></div>`)
	nodes := ClassifyAll(ElementChildren(body))
	if len(nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(nodes))
	}

	h, ok := nodes[0].(Heading)
	if !ok || h.Level != 2 || h.Text != "Alpha" {
		t.Errorf("expected heading level 2 %q, got %#v", "Alpha", nodes[0])
	}
	p, ok := nodes[1].(Paragraph)
	if !ok || !p.Emphasized || p.Text != "Bold text" {
		t.Errorf("expected emphasized paragraph %q, got %#v", "Bold text", nodes[1])
	}
	if _, ok := nodes[2].(Table); !ok {
		t.Errorf("expected table, got %T", nodes[2])
	}
	if img, ok := nodes[3].(Image); !ok || img.Src != "a.png" {
		t.Errorf("expected image a.png, got %#v", nodes[3])
	}
	b, ok := nodes[4].(Block)
	if !ok || b.Tag != "div" || !b.HasClass("card") {
		t.Errorf("expected div.card block, got %#v", nodes[4])
	}
	for i, n := range nodes {
		if n.Source() == nil {
			t.Errorf("node %d: expected source html node", i)
		}
	}
}

func TestClassify_BoldStyleIsEmphasis(t *testing.T) {
	body := parseBody(t, `<p><span style="font-weight: bold">Title</span></p><p>plain</p>`)
	nodes := ClassifyAll(ElementChildren(body))
	if !nodes[0].(Paragraph).Emphasized {
		t.Error("expected bold style to count as emphasis")
	}
	if nodes[1].(Paragraph).Emphasized {
		t.Error("expected plain paragraph not emphasized")
	}
}

func TestNormalizedText(t *testing.T) {
	body := parseBody(t, "<p>  one\n two <b>three</b>\tfour </p>")
	if got := NormalizedText(body.FirstChild); got != "one two three four" {
		t.Errorf("expected %q, got %q", "one two three four", got)
	}
}

func TestHasContent(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"<p>   </p>", false},
		{"<p>x</p>", true},
		{`<div><img src="a.png"></div>`, true},
		{"<div><table><tr><td></td></tr></table></div>", true},
		{"<div><!-- note --></div>", false},
	}
	for _, tt := range tests {
		body := parseBody(t, tt.src)
		if got := HasContent(body.FirstChild); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.src, tt.want, got)
		}
	}
}

func TestAddClass(t *testing.T) {
	n := NewElement("section", "class", "a")
	if !AddClass(n, "b") {
		t.Error("expected class added")
	}
	if AddClass(n, "b") {
		t.Error("expected second add to be a no-op")
	}
	if got := Attr(n, "class"); got != "a b" {
		t.Errorf("expected %q, got %q", "a b", got)
	}
}
