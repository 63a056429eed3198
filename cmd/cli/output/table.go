package output

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderTable prints a pretty table to w. Rows listed in emphasized are
// printed bold.
func RenderTable(w io.Writer, headers []string, rows [][]interface{}, emphasized ...int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	bold := map[int]bool{}
	for _, i := range emphasized {
		bold[i] = true
	}
	for i, row := range rows {
		if bold[i] {
			for j, cell := range row {
				row[j] = text.Bold.Sprint(cell)
			}
		}
		t.AppendRow(table.Row(row))
	}
	t.AppendFooter(table.Row{len(rows), "rows"})

	t.Render()
}

// RenderKeyValue prints a two-column table without a header or footer, e.g.
// the fields of one record. A non-empty title is printed above it.
func RenderKeyValue(w io.Writer, title string, rows [][]interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}
	t.Render()
}

// JSON writes v indented.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
