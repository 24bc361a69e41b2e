package doctree

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RawText concatenates all text node data below n, comments excluded.
func RawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

// TextContent is RawText with surrounding whitespace trimmed.
func TextContent(n *html.Node) string {
	return strings.TrimSpace(RawText(n))
}

// NormalizedText joins the text of each text node with single spaces and
// collapses internal whitespace runs.
func NormalizedText(n *html.Node) string {
	var parts []string
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(parts, " ")
}

func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func HasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends class unless already present. It reports whether the
// node changed.
func AddClass(n *html.Node, class string) bool {
	if HasClass(n, class) {
		return false
	}
	SetAttr(n, "class", strings.TrimSpace(Attr(n, "class")+" "+class))
	return true
}

// IsElement reports whether n is an element with one of the given tags.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// FindFirst returns the first node in document order (n included) that
// matches pred, or nil.
func FindFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := FindFirst(c, pred); f != nil {
			return f
		}
	}
	return nil
}

// FindAll returns every matching node in document order (n included).
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// FindElement returns the first element with the given tag.
func FindElement(n *html.Node, tag string) *html.Node {
	return FindFirst(n, func(c *html.Node) bool { return IsElement(c, tag) })
}

// FindByClass returns the first element carrying class.
func FindByClass(n *html.Node, class string) *html.Node {
	return FindFirst(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && HasClass(c, class)
	})
}

// Children returns a snapshot of n's children, safe to iterate while
// detaching them.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ElementChildren returns n's direct element children.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// RemoveChildren detaches all children of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// SetText replaces n's children with a single text node.
func SetText(n *html.Node, text string) {
	RemoveChildren(n)
	n.AppendChild(NewText(text))
}

func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// NewElement builds an element from a tag and alternating key/value
// attribute pairs.
func NewElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func Body(doc *html.Node) *html.Node {
	return FindElement(doc, "body")
}

// Title returns the text of the first title element, or "".
func Title(doc *html.Node) string {
	if t := FindElement(doc, "title"); t != nil {
		return TextContent(t)
	}
	return ""
}
