package segment

import (
	"fmt"
	"strconv"

	"github.com/dgallion1/docgloss/internal/doctree"
	"golang.org/x/net/html"
)

// Apply writes sections into doc's main element and one link per section
// into the sidebar navigation, creating main, aside and nav when missing.
// Existing main content and nav links are replaced.
func Apply(doc *html.Node, sections []Section, opts Options) []NavEntry {
	opts.defaults()

	body := doctree.Body(doc)
	if body == nil {
		body = doc
	}

	main := doctree.FindElement(body, "main")
	aside := doctree.FindElement(body, "aside")
	if aside == nil {
		aside = doctree.NewElement("aside")
		if main != nil {
			main.Parent.InsertBefore(aside, main)
		} else {
			body.AppendChild(aside)
		}
	}
	nav := doctree.FindElement(aside, "nav")
	if nav == nil {
		nav = doctree.NewElement("nav")
		aside.AppendChild(nav)
	}
	doctree.RemoveChildren(nav)

	if main == nil {
		main = doctree.NewElement("main")
		body.AppendChild(main)
	}
	doctree.RemoveChildren(main)

	entries := make([]NavEntry, 0, len(sections))
	for i, s := range sections {
		entry := NavEntry{
			Index:  i + 1,
			Title:  s.Title,
			Anchor: opts.IDPrefix + strconv.Itoa(i+1),
		}
		main.AppendChild(renderSection(entry, s, opts))

		link := doctree.NewElement("a", "href", "#"+entry.Anchor, "class", "nav-link")
		link.AppendChild(doctree.NewText(fmt.Sprintf("%d. %s", entry.Index, entry.Title)))
		nav.AppendChild(link)

		entries = append(entries, entry)
	}
	return entries
}

// renderSection builds:
//
//	<section id="partN" class="section-collapsed" data-title="...">
//	  <h3 class="section-title">
//	    <div class="section-header-row" onclick="toggleSection(this)">
//	      <span><span class="section-number">N</span><span>Title</span></span>
//	      <span class="collapse-icon">▼</span>
//	    </div>
//	  </h3>
//	  <div class="content-block">...</div>
//	</section>
func renderSection(entry NavEntry, s Section, opts Options) *html.Node {
	sec := doctree.NewElement("section", "id", entry.Anchor)
	if !opts.Expanded {
		doctree.AddClass(sec, "section-collapsed")
	}
	doctree.SetAttr(sec, "data-title", s.Title)
	if s.Placeholder {
		doctree.SetAttr(sec, "data-placeholder", "true")
	}

	number := doctree.NewElement("span", "class", "section-number")
	number.AppendChild(doctree.NewText(strconv.Itoa(entry.Index)))
	title := doctree.NewElement("span")
	title.AppendChild(doctree.NewText(s.Title))
	label := doctree.NewElement("span")
	label.AppendChild(number)
	label.AppendChild(title)

	icon := doctree.NewElement("span", "class", "collapse-icon")
	icon.AppendChild(doctree.NewText("▼"))

	row := doctree.NewElement("div", "class", "section-header-row", "onclick", "toggleSection(this)")
	row.AppendChild(label)
	row.AppendChild(icon)

	header := doctree.NewElement("h3", "class", "section-title")
	header.AppendChild(row)
	sec.AppendChild(header)

	block := doctree.NewElement("div", "class", "content-block")
	for _, n := range s.Nodes {
		src := n.Source()
		doctree.Detach(src)
		block.AppendChild(src)
	}
	sec.AppendChild(block)
	return sec
}
