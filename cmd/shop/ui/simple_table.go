package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// SimpleTable renders static rows (catalog listings, cart lines) for the CLI.
type SimpleTable struct {
	Title   string
	Headers []string
	Rows    [][]string

	right    map[int]bool
	maxWidth map[int]int
}

// NewSimpleTable creates a new SimpleTable with the given title and headers.
func NewSimpleTable(title string, headers []string) *SimpleTable {
	return &SimpleTable{
		Title:    title,
		Headers:  headers,
		Rows:     make([][]string, 0),
		right:    make(map[int]bool),
		maxWidth: make(map[int]int),
	}
}

// AddRow adds a row to the table.
func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// AlignRight right-aligns the given columns (ids, quantities, money).
func (t *SimpleTable) AlignRight(cols ...int) {
	for _, c := range cols {
		t.right[c] = true
	}
}

// MaxWidth truncates a column's cells to width with an ellipsis.
func (t *SimpleTable) MaxWidth(col, width int) {
	t.maxWidth[col] = width
}

func (t *SimpleTable) cell(col int, s string) string {
	if w, ok := t.maxWidth[col]; ok && w > 1 && lipgloss.Width(s) > w {
		return ansi.Truncate(s, w, "…")
	}
	return s
}

// View renders the table using the provided styles. An empty table renders nothing.
func (t *SimpleTable) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	colWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				colWidths[i] = max(colWidths[i], lipgloss.Width(t.cell(i, cell)))
			}
		}
	}
	// Cell padding is counted inside lipgloss widths.
	for i := range colWidths {
		colWidths[i] += 2
	}

	headerStyle := styles.Bold.Padding(0, 1)
	rowStyle := styles.Body.Padding(0, 1)
	sepStyle := styles.Muted

	render := func(style lipgloss.Style, cells []string) {
		for i, cell := range cells {
			if i >= len(colWidths) {
				break
			}
			s := style.Width(colWidths[i])
			if t.right[i] {
				s = s.Align(lipgloss.Right)
			}
			sb.WriteString(s.Render(t.cell(i, cell)))
			if i < len(cells)-1 && i < len(colWidths)-1 {
				sb.WriteString(sepStyle.Render("│"))
			}
		}
		sb.WriteString("\n")
	}

	render(headerStyle, t.Headers)

	totalWidth := len(t.Headers) - 1
	for _, w := range colWidths {
		totalWidth += w
	}
	sb.WriteString(sepStyle.Render(strings.Repeat("─", totalWidth)) + "\n")

	for _, row := range t.Rows {
		render(rowStyle, row)
	}

	return sb.String()
}
