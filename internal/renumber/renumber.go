// Package renumber fills in missing sequential numbers in the first column
// of exported tables, skipping rows merged into a row-spanning cell above.
package renumber

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docgloss/internal/doctree"
	"golang.org/x/net/html"
)

// DefaultLabels are the header texts that mark a numbering column.
var DefaultLabels = []string{"#", "الرقم"}

// Result summarizes one repair pass.
type Result struct {
	Tables   int // tables whose header matched a numbering label
	Filled   int // cells that were empty and received a number
	Resynced int // times the counter jumped to an existing number
}

func (r *Result) add(o Result) {
	r.Tables += o.Tables
	r.Filled += o.Filled
	r.Resynced += o.Resynced
}

// Changed reports whether any cell was modified.
func (r Result) Changed() bool { return r.Filled > 0 }

// Document repairs every table in doc.
func Document(doc *html.Node, labels []string) Result {
	var total Result
	tables := doctree.FindAll(doc, func(n *html.Node) bool { return doctree.IsElement(n, "table") })
	for _, t := range tables {
		total.add(Table(t, labels))
	}
	return total
}

// Table repairs a single table in place. Tables whose header's first cell
// is not one of labels are left untouched.
func Table(table *html.Node, labels []string) Result {
	var res Result

	rows := tableRows(table)
	if len(rows) == 0 {
		return res
	}
	header := rowCells(rows[0])
	if len(header) == 0 || !isLabel(doctree.TextContent(header[0]), labels) {
		return res
	}
	res.Tables = 1

	counter := 1
	skip := 0
	for _, row := range rows[1:] {
		cells := rowCells(row)
		if len(cells) == 0 {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}

		cell := cells[0]
		if n, err := strconv.Atoi(strings.TrimSpace(doctree.Attr(cell, "rowspan"))); err == nil && n > 1 {
			skip = n - 1
		}

		text := doctree.TextContent(cell)
		switch {
		case text == "":
			doctree.SetText(cell, strconv.Itoa(counter))
			res.Filled++
			counter++
		case isDecimal(text):
			counter = decimalValue(text) + 1
			res.Resynced++
		default:
			// A label in the number column still takes a slot.
			counter++
		}
	}
	return res
}

// tableRows returns the rows belonging to table, excluding rows of nested
// tables, in document order.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case doctree.IsElement(c, "tr"):
				rows = append(rows, c)
			case doctree.IsElement(c, "table"):
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func rowCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if doctree.IsElement(c, "td", "th") {
			cells = append(cells, c)
		}
	}
	return cells
}

func isLabel(text string, labels []string) bool {
	for _, l := range labels {
		if text == l {
			return true
		}
	}
	return false
}

// digitValue maps ASCII, Arabic-Indic and Extended Arabic-Indic digits.
func digitValue(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= '٠' && r <= '٩':
		return int(r - '٠'), true
	case r >= '۰' && r <= '۹':
		return int(r - '۰'), true
	}
	return 0, false
}

func isDecimal(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > 18 {
		return false
	}
	for _, r := range s {
		if _, ok := digitValue(r); !ok {
			return false
		}
	}
	return true
}

func decimalValue(s string) int {
	n := 0
	for _, r := range s {
		d, _ := digitValue(r)
		n = n*10 + d
	}
	return n
}
