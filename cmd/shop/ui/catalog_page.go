package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"storefront/internal/catalog"
)

// CatalogPageModel is the product listing with filtering and a sort menu.
type CatalogPageModel struct {
	width  int
	height int
	list   list.Model

	mode       catalog.SortMode
	sortOpen   bool
	sortCursor int

	currency string
	styles   Styles
}

// productItem adapts catalog.Product to list.Item
type productItem struct {
	product  catalog.Product
	currency string
}

func (i productItem) Title() string { return i.product.Title }
func (i productItem) Description() string {
	desc := money(i.currency, i.product.Price)
	if i.product.Category != "" {
		desc += " · " + i.product.Category
	}
	return desc
}
func (i productItem) FilterValue() string { return i.product.Title + " " + i.product.Category }

// NewCatalogPageModel creates an empty catalog page.
func NewCatalogPageModel(styles Styles, currency string) CatalogPageModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Catalog"
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = styles.Header
	l.SetStatusBarItemName("product", "products")

	return CatalogPageModel{
		list:     l,
		currency: currency,
		styles:   styles,
	}
}

// SetProducts replaces the listed products, keeping their order.
func (m *CatalogPageModel) SetProducts(products []catalog.Product) tea.Cmd {
	items := make([]list.Item, 0, len(products))
	for _, p := range products {
		items = append(items, productItem{product: p, currency: m.currency})
	}
	return m.list.SetItems(items)
}

// SetMode records the active sort order shown in the title.
func (m *CatalogPageModel) SetMode(mode catalog.SortMode) {
	m.mode = mode
	m.list.Title = "Catalog · " + mode.Label()
}

// Products returns the listed products in display order.
func (m CatalogPageModel) Products() []catalog.Product {
	items := m.list.Items()
	out := make([]catalog.Product, 0, len(items))
	for _, it := range items {
		out = append(out, it.(productItem).product)
	}
	return out
}

// Selected returns the highlighted product.
func (m CatalogPageModel) Selected() (catalog.Product, bool) {
	if it, ok := m.list.SelectedItem().(productItem); ok {
		return it.product, true
	}
	return catalog.Product{}, false
}

// Capturing reports whether keystrokes belong to the page (filter input or sort menu).
func (m CatalogPageModel) Capturing() bool {
	return m.list.FilterState() == list.Filtering || m.sortOpen
}

// Update handles messages.
func (m CatalogPageModel) Update(msg tea.Msg) (CatalogPageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.sortOpen {
			return m.updateSortMenu(key)
		}
		if m.list.FilterState() != list.Filtering {
			switch key.String() {
			case "s":
				m.openSortMenu()
				return m, nil
			case "enter":
				if p, ok := m.Selected(); ok {
					return m, emit(openProductRequest{ID: p.ID})
				}
				return m, nil
			case "a":
				if p, ok := m.Selected(); ok {
					return m, emit(addRequest{ProductID: p.ID, Quantity: 1})
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *CatalogPageModel) openSortMenu() {
	m.sortOpen = true
	m.sortCursor = 0
	for i, mode := range catalog.SortModes() {
		if mode == m.mode {
			m.sortCursor = i
		}
	}
}

func (m CatalogPageModel) updateSortMenu(key tea.KeyMsg) (CatalogPageModel, tea.Cmd) {
	modes := catalog.SortModes()
	switch key.String() {
	case "up", "k":
		if m.sortCursor > 0 {
			m.sortCursor--
		}
	case "down", "j":
		if m.sortCursor < len(modes)-1 {
			m.sortCursor++
		}
	case "enter":
		m.sortOpen = false
		return m, emit(sortRequest{Mode: modes[m.sortCursor]})
	case "esc", "s":
		m.sortOpen = false
	}
	return m, nil
}

// View renders the page.
func (m CatalogPageModel) View() string {
	if len(m.list.Items()) == 0 {
		return m.styles.Content.Render("No products to show. Press r to retry.")
	}
	if m.sortOpen {
		return m.renderSortMenu()
	}
	return m.list.View()
}

func (m CatalogPageModel) renderSortMenu() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Sort by"))
	b.WriteString("\n")
	for i, mode := range catalog.SortModes() {
		line := "  " + mode.Label()
		if i == m.sortCursor {
			line = m.styles.Selected.Render("› " + mode.Label())
		}
		if mode == m.mode {
			line += m.styles.Muted.Render(" (current)")
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + m.styles.Muted.Render(fmt.Sprintf("%d products · ↑/↓ choose · enter apply · esc cancel", len(m.list.Items()))))
	return m.styles.Card.Render(b.String())
}

// SetSize updates the size.
func (m *CatalogPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, h)
}
