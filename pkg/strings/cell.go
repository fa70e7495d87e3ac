// Package strings holds text helpers shared by the table printers.
package strings

import "strings"

// DefaultCellWidth is the widest a free-text table cell gets in the
// narrow output format.
const DefaultCellWidth = 60

// MinCellWidth leaves room for one rune plus the ellipsis.
const MinCellWidth = 4

// Cell flattens s onto one line, collapsing runs of whitespace, and cuts it
// to width runes with a trailing "...". Widths below MinCellWidth are raised
// to it.
func Cell(s string, width int) string {
	if width < MinCellWidth {
		width = MinCellWidth
	}
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width-3]) + "..."
	}
	return s
}
