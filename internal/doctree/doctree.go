// Package doctree classifies HTML content nodes into a closed set of
// variants so restructuring code can switch on node kinds instead of
// probing tag names and attributes everywhere.
package doctree

import (
	"strings"

	"golang.org/x/net/html"
)

// Node is one content node. The set of implementations is closed:
// Heading, Paragraph, Table, Image, Block and Text.
type Node interface {
	// Source returns the underlying HTML node, which is what gets moved
	// around when content is restructured.
	Source() *html.Node
	node()
}

// Heading is an h1..h6 element.
type Heading struct {
	Level int
	Text  string
	n     *html.Node
}

// Paragraph is a p element. Emphasized is set when the paragraph carries
// bold formatting (strong/b descendants or a bold inline style).
type Paragraph struct {
	Text       string
	Emphasized bool
	n          *html.Node
}

// Table is a table element.
type Table struct {
	n *html.Node
}

// Image is an img element.
type Image struct {
	Src string
	n   *html.Node
}

// Block is any other element.
type Block struct {
	Tag     string
	Classes []string
	n       *html.Node
}

// Text is a bare text or comment node.
type Text struct {
	Data    string
	Comment bool
	n       *html.Node
}

func (h Heading) Source() *html.Node   { return h.n }
func (p Paragraph) Source() *html.Node { return p.n }
func (t Table) Source() *html.Node     { return t.n }
func (i Image) Source() *html.Node     { return i.n }
func (b Block) Source() *html.Node     { return b.n }
func (t Text) Source() *html.Node      { return t.n }

func (Heading) node()   {}
func (Paragraph) node() {}
func (Table) node()     {}
func (Image) node()     {}
func (Block) node()     {}
func (Text) node()      {}

// HasClass reports whether the block carries the given class.
func (b Block) HasClass(class string) bool {
	for _, c := range b.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Classify wraps an HTML node in its variant.
func Classify(n *html.Node) Node {
	switch n.Type {
	case html.TextNode:
		return Text{Data: n.Data, n: n}
	case html.CommentNode:
		return Text{Data: n.Data, Comment: true, n: n}
	case html.ElementNode:
	default:
		return Block{Tag: n.Data, n: n}
	}

	if level := HeadingLevel(n.Data); level > 0 {
		return Heading{Level: level, Text: TextContent(n), n: n}
	}
	switch n.Data {
	case "p":
		return Paragraph{Text: NormalizedText(n), Emphasized: isEmphasized(n), n: n}
	case "table":
		return Table{n: n}
	case "img":
		return Image{Src: Attr(n, "src"), n: n}
	}
	return Block{Tag: n.Data, Classes: Classes(n), n: n}
}

// ClassifyAll classifies a node sequence in order.
func ClassifyAll(nodes []*html.Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Classify(n))
	}
	return out
}

func HeadingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func isEmphasized(n *html.Node) bool {
	if FindFirst(n, func(c *html.Node) bool {
		return c != n && c.Type == html.ElementNode && (c.Data == "strong" || c.Data == "b")
	}) != nil {
		return true
	}
	return FindFirst(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && strings.Contains(strings.ToLower(Attr(c, "style")), "bold")
	}) != nil
}

// HasContent reports whether a node carries visible content: non-blank
// text, an image or a table.
func HasContent(n *html.Node) bool {
	if strings.TrimSpace(RawText(n)) != "" {
		return true
	}
	return FindFirst(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && (c.Data == "img" || c.Data == "table")
	}) != nil
}
