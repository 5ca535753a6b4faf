package datagrid

import (
	"fmt"
	"strings"
)

// Export serializes the full filtered and sorted set, before
// pagination, restricted to the active column set. Cells read the raw
// accessor value; render funcs are bypassed so the file carries the
// underlying data, not its on-screen form. Returns empty values when
// export is disabled.
func (g *Grid) Export(title string) (filename string, data []byte) {
	if !g.exportOn {
		return "", nil
	}
	d := g.current()
	view := g.View()
	return exportFilename(title, d.name), encodeCSV(view.Filtered, d.cols)
}

// encodeCSV writes a header row of export labels and one row per
// record. Every cell is double-quoted with internal quotes doubled;
// nothing else is escaped. Nil and missing fields become empty quoted
// strings.
func encodeCSV(records []Record, cols []col) []byte {
	var b strings.Builder

	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = csvCell(c.csvLabel)
	}
	b.WriteString(strings.Join(cells, ","))
	b.WriteByte('\n')

	for _, r := range records {
		for i, c := range cols {
			v := c.value(r)
			if v == nil {
				cells[i] = `""`
				continue
			}
			cells[i] = csvCell(fmt.Sprintf("%v", v))
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func csvCell(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// exportFilename derives a deterministic download name from the caller
// title and the active dataset name: lower-cased, whitespace collapsed
// to underscores.
func exportFilename(title, dataset string) string {
	name := strings.TrimSpace(title + " " + dataset)
	if name == "" {
		name = "export"
	}
	return strings.Join(strings.Fields(strings.ToLower(name)), "_") + ".csv"
}
