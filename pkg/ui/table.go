package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const columnGap = "  "

// TableColumn describes one column. Width is a minimum; MaxWidth truncates
// longer cells with an ellipsis (0 disables).
type TableColumn struct {
	Header   string
	Width    int
	MaxWidth int
	Align    string // "left" (default), "right", "center"
}

// Table renders rows as aligned plain-text columns, measured in terminal
// cells so emoji and CJK names line up
type Table struct {
	Columns []TableColumn
	Rows    [][]string
}

func NewTable(columns []TableColumn) *Table {
	return &Table{Columns: columns}
}

func (t *Table) AddRow(cells []string) {
	t.Rows = append(t.Rows, cells)
}

// Render returns the header, a rule and one line per row
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	rows := t.clippedRows()
	widths := t.widths(rows)

	var b strings.Builder

	header := make([]string, len(t.Columns))
	rule := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = padString(col.Header, widths[i], "left")
		rule[i] = strings.Repeat("─", widths[i])
	}
	b.WriteString(StyleTableHeader.Render(strings.Join(header, columnGap)))
	b.WriteByte('\n')
	b.WriteString(StyleTableBorder.Render(strings.Join(rule, columnGap)))
	b.WriteByte('\n')

	for idx, row := range rows {
		style := StyleTableRow
		if idx%2 == 1 {
			style = StyleTableRowAlt
		}
		b.WriteString(style.Render(t.line(row, widths)))
		b.WriteByte('\n')
	}
	return b.String()
}

// widths is the widest of header, cells and the column minimum
func (t *Table) widths(rows [][]string) []int {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = max(lipgloss.Width(col.Header), col.Width)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	return widths
}

func (t *Table) line(row []string, widths []int) string {
	parts := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		parts[i] = padString(cell, widths[i], col.Align)
	}
	return strings.Join(parts, columnGap)
}

// clippedRows applies each column's MaxWidth
func (t *Table) clippedRows() [][]string {
	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		rows[r] = make([]string, len(row))
		for i, cell := range row {
			if i < len(t.Columns) && t.Columns[i].MaxWidth > 0 {
				cell = Truncate(cell, t.Columns[i].MaxWidth)
			}
			rows[r][i] = cell
		}
	}
	return rows
}

// Truncate shortens s to at most width cells, ending in an ellipsis.
// Newlines are folded into spaces.
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}

	var b strings.Builder
	used := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if used+w > width-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + "…"
}

func padString(s string, width int, align string) string {
	padding := width - lipgloss.Width(s)
	if padding <= 0 {
		return s
	}

	switch align {
	case "right":
		return strings.Repeat(" ", padding) + s
	case "center":
		left := padding / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", padding-left)
	default:
		return s + strings.Repeat(" ", padding)
	}
}

// RenderKeyValue renders "Key: value" with the key padded so that
// consecutive pairs line up
func RenderKeyValue(key, value string) string {
	const keyWidth = 11
	return StyleAccent.Render(padString(key+":", keyWidth, "left")) + " " + value
}
