package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"storefront/internal/cart"
)

// CartPageModel lists cart lines with per-line +/-/remove and a guarded clear.
type CartPageModel struct {
	width  int
	height int
	table  table.Model

	lines      []cart.Line
	totals     cart.Totals
	confirming bool

	currency string
	styles   Styles
}

// NewCartPageModel creates an empty cart page.
func NewCartPageModel(styles Styles, currency string) CartPageModel {
	t := table.New(
		table.WithColumns(cartColumns(60)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.Bold(true).Foreground(styles.Theme.Brand)
	ts.Selected = ts.Selected.Foreground(lipgloss.Color("#ffffff")).Background(styles.Theme.Brand)
	t.SetStyles(ts)

	return CartPageModel{
		table:    t,
		currency: currency,
		styles:   styles,
	}
}

func cartColumns(width int) []table.Column {
	titleW := width - 8 - 12 - 12 - 8
	if titleW < 16 {
		titleW = 16
	}
	return []table.Column{
		{Title: "Product", Width: titleW},
		{Title: "Qty", Width: 6},
		{Title: "Price", Width: 12},
		{Title: "Total", Width: 12},
	}
}

// SetLines refreshes the table, keeping the cursor in range.
func (m *CartPageModel) SetLines(lines []cart.Line, totals cart.Totals) {
	m.lines = lines
	m.totals = totals

	rows := make([]table.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, table.Row{
			l.Title,
			strconv.Itoa(l.Quantity),
			money(m.currency, l.Price),
			money(m.currency, l.Total()),
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
	if len(lines) == 0 {
		m.confirming = false
	}
}

func (m CartPageModel) selected() (cart.Line, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.lines) {
		return cart.Line{}, false
	}
	return m.lines[c], true
}

// Confirming reports whether the clear prompt is showing.
func (m CartPageModel) Confirming() bool { return m.confirming }

// Update handles messages.
func (m CartPageModel) Update(msg tea.Msg) (CartPageModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.confirming {
		m.confirming = false
		if key.String() == "y" || key.String() == "Y" {
			return m, emit(clearRequest{})
		}
		return m, nil
	}

	switch key.String() {
	case "+", "=":
		if l, ok := m.selected(); ok {
			return m, emit(changeQtyRequest{ProductID: l.ProductID, Delta: 1})
		}
		return m, nil
	case "-", "_":
		if l, ok := m.selected(); ok {
			return m, emit(changeQtyRequest{ProductID: l.ProductID, Delta: -1})
		}
		return m, nil
	case "x", "delete":
		if l, ok := m.selected(); ok {
			return m, emit(removeRequest{ProductID: l.ProductID})
		}
		return m, nil
	case "C":
		if len(m.lines) > 0 {
			m.confirming = true
		}
		return m, nil
	case "p", "enter":
		return m, emit(checkoutRequest{})
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the page.
func (m CartPageModel) View() string {
	if len(m.lines) == 0 {
		return m.styles.Content.Render("Your cart is empty. Press esc to keep shopping.")
	}

	summary := fmt.Sprintf("%d items · subtotal %s", m.totals.ItemCount, money(m.currency, m.totals.Subtotal))
	parts := []string{
		m.styles.Title.Render("Your cart"),
		m.table.View(),
		"",
		m.styles.Bold.Render(summary),
	}
	if m.confirming {
		parts = append(parts, "", m.styles.Warning.Render("Clear cart? (y/n)"))
	}
	return m.styles.Content.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the size.
func (m *CartPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.table.SetColumns(cartColumns(w - 4))
	m.table.SetHeight(max(h-8, 3))
}
