// Package renderer turns coinfolio views into markdown documents, ready to be
// printed raw or styled for the terminal.
package renderer

import (
	"strings"

	"github.com/etnz/coinfolio"
	md "github.com/nao1215/markdown"
)

const (
	favoriteMark    = "★"
	notFavoriteMark = "☆"
	infinity        = "∞"
)

// blank separates blocks that markdown would otherwise merge, like a
// paragraph followed by a table.
func blank(doc *md.Markdown) { doc.PlainText("") }

// star marks favorites.
func star(on bool) string {
	if on {
		return favoriteMark
	}
	return notFavoriteMark
}

// sortLabel decorates the header of the column the list is sorted by.
func sortLabel(label string, key coinfolio.SortKey, sort coinfolio.SortState) string {
	if sort.Key != key {
		return label
	}
	if sort.Direction == coinfolio.Descending {
		return label + " ▼"
	}
	return label + " ▲"
}

// cell escapes the characters that would break a table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// alignments builds a table alignment: the first left columns are left
// aligned, the others right aligned.
func alignments(left, total int) []md.TableAlignment {
	res := make([]md.TableAlignment, total)
	for i := range res {
		if i < left {
			res[i] = md.AlignLeft
		} else {
			res[i] = md.AlignRight
		}
	}
	return res
}
