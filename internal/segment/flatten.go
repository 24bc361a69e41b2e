package segment

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docgloss/internal/doctree"
	"golang.org/x/net/html"
)

// Flattened is the flat content of a document, detached from the tree.
type Flattened struct {
	Nodes []*html.Node

	// Resegmented is set when the document already carried sections.
	Resegmented bool
}

// Flatten extracts the document's content as a flat node sequence.
//
// A document counts as already segmented when it has sections whose id is
// IDPrefix followed by digits and a navigation sidebar (an aside element).
// Their content blocks are concatenated in order, nested sections are
// flattened into their parent's position, and every non-placeholder
// section contributes a level-2 heading carrying its title so the next
// Segment pass opens the same section again. In ModeKnownTitles only
// titles found in the catalog get a heading; the others would not open a
// section and would otherwise end up as body text.
//
// Otherwise the content wrapper (.doc-content, main or body) is read and up
// to three levels of single-container wrapping are unwrapped.
//
// Returned nodes are detached from doc, and emptied wrappers are removed.
func Flatten(doc *html.Node, opts Options) Flattened {
	opts.defaults()
	if existing := existingSections(doc, opts.IDPrefix); len(existing) > 0 && doctree.FindElement(doc, "aside") != nil {
		return Flattened{Nodes: flattenSections(existing, opts), Resegmented: true}
	}
	return Flattened{Nodes: flattenFresh(doc)}
}

func existingSections(doc *html.Node, prefix string) []*html.Node {
	idRe := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `\d+$`)
	isPart := func(n *html.Node) bool {
		return doctree.IsElement(n, "section") && idRe.MatchString(doctree.Attr(n, "id"))
	}

	var out []*html.Node
	for _, s := range doctree.FindAll(doc, isPart) {
		nested := false
		for p := s.Parent; p != nil; p = p.Parent {
			if isPart(p) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, s)
		}
	}
	return out
}

func flattenSections(sections []*html.Node, opts Options) []*html.Node {
	var nodes []*html.Node
	for _, sec := range sections {
		title, placeholder := sectionTitle(sec, opts)
		if !placeholder && opts.reopens(title) {
			h := doctree.NewElement("h2")
			h.AppendChild(doctree.NewText(title))
			nodes = append(nodes, h)
		}

		queue := sectionBody(sec)
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]

			switch {
			case doctree.IsElement(c, "section"):
				queue = append(sectionBody(c), queue...)
			case doctree.IsElement(c, "div") && strings.Join(doctree.Classes(c), " ") == "doc-content":
				queue = append(doctree.Children(c), queue...)
			default:
				doctree.Detach(c)
				nodes = append(nodes, c)
			}
		}
		doctree.Detach(sec)
	}
	return nodes
}

// reopens reports whether a heading carrying title would start a section
// again under opts.
func (o *Options) reopens(title string) bool {
	if o.Mode != ModeKnownTitles {
		return true
	}
	_, ok := o.matchTitle(title)
	return ok
}

// sectionBody returns the children of a section's content block, or the
// section's own children minus its title header when it has no block.
func sectionBody(sec *html.Node) []*html.Node {
	var block *html.Node
	for _, c := range doctree.ElementChildren(sec) {
		if doctree.HasClass(c, "content-block") {
			block = c
			break
		}
	}
	if block == nil {
		block = doctree.FindByClass(sec, "content-block")
	}
	if block != nil {
		return doctree.Children(block)
	}

	var out []*html.Node
	for _, c := range doctree.Children(sec) {
		if doctree.IsElement(c, "h3") && doctree.HasClass(c, "section-title") {
			continue
		}
		out = append(out, c)
	}
	return out
}

// sectionTitle reads the title Apply recorded on a section, falling back to
// the header text without its number badge and collapse icon.
func sectionTitle(sec *html.Node, opts Options) (string, bool) {
	if doctree.HasAttr(sec, "data-title") {
		return doctree.Attr(sec, "data-title"), doctree.Attr(sec, "data-placeholder") == "true"
	}

	header := doctree.FindFirst(sec, func(n *html.Node) bool {
		return doctree.IsElement(n, "h3") && doctree.HasClass(n, "section-title")
	})
	if header == nil {
		return "", false
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (doctree.HasClass(n, "section-number") || doctree.HasClass(n, "collapse-icon")) {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(header)
	title := strings.Join(strings.Fields(b.String()), " ")
	return title, title == opts.Placeholder
}

func flattenFresh(doc *html.Node) []*html.Node {
	body := doctree.Body(doc)
	if body == nil {
		body = doc
	}

	wrapper := doctree.FindByClass(doc, "doc-content")
	if wrapper == nil {
		wrapper = doctree.FindElement(doc, "main")
	}
	if wrapper == nil {
		wrapper = body
	}

	for _, n := range doctree.FindAll(wrapper, func(n *html.Node) bool {
		return doctree.IsElement(n, "script", "style", "meta", "link", "title")
	}) {
		doctree.Detach(n)
	}

	elements := contentChildren(wrapper)
	if len(elements) == 0 && doctree.FindElement(wrapper, "p") == nil {
		wrapper = body
		elements = contentChildren(body)
	}

	var containers []*html.Node
	for range 3 {
		if len(elements) != 1 || !doctree.IsElement(elements[0], "div", "article") {
			break
		}
		containers = append(containers, elements[0])
		elements = contentChildren(elements[0])
	}

	for _, n := range elements {
		doctree.Detach(n)
	}
	for _, c := range containers {
		doctree.Detach(c)
	}
	if wrapper != body && !doctree.IsElement(wrapper, "main") && !doctree.HasContent(wrapper) {
		doctree.Detach(wrapper)
	}
	return elements
}

// contentChildren returns element children plus non-blank text children.
func contentChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for _, c := range doctree.Children(n) {
		switch c.Type {
		case html.ElementNode:
			out = append(out, c)
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				out = append(out, c)
			}
		}
	}
	return out
}
