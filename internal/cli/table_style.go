package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PlainStyle is a kubectl-like table style: upper-case headers, columns
// separated by spaces, no box drawing. Output stays copy/paste and
// grep friendly on any terminal.
var PlainStyle = func() table.Style {
	style := table.StyleDefault
	style.Name = "plain"
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = "   "
	style.Options = table.Options{}
	style.Format.Header = text.FormatUpper
	return style
}()

// NewPlainTable returns a table writer mirrored to out. Headers are omitted
// when noHeaders is set.
func NewPlainTable(out io.Writer, headers table.Row, noHeaders bool) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(PlainStyle)
	if !noHeaders {
		tw.AppendHeader(headers)
	}
	return tw
}
