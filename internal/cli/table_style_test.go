package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlainTable(t *testing.T) {
	var buf bytes.Buffer
	tw := NewPlainTable(&buf, table.Row{"name", "Status"}, false)
	tw.AppendRow(table.Row{"short", "ok"})
	tw.AppendRow(table.Row{"longer-name", "created"})
	tw.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"NAME", "STATUS"}, strings.Fields(lines[0]))
	// Columns line up on the widest cell.
	assert.Equal(t, strings.Index(lines[1], "ok"), strings.Index(lines[2], "created"))
	assert.Equal(t, strings.Index(lines[0], "STATUS"), strings.Index(lines[2], "created"))
	assert.False(t, strings.HasPrefix(lines[0], " "), "no left padding")
}

func TestNewPlainTable_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	tw := NewPlainTable(&buf, table.Row{"NAME"}, true)
	tw.AppendRow(table.Row{"only"})
	tw.Render()

	assert.Equal(t, "only", strings.TrimSpace(buf.String()))
}

func TestPlainStyle(t *testing.T) {
	assert.Equal(t, "plain", PlainStyle.Name)
	assert.False(t, PlainStyle.Options.DrawBorder)
	assert.False(t, PlainStyle.Options.SeparateColumns)
	assert.False(t, PlainStyle.Options.SeparateHeader)
}
