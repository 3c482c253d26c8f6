package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"storefront/internal/cart"
	"storefront/internal/catalog"
)

// ProductPageModel is the detail view with a quantity field.
type ProductPageModel struct {
	width   int
	height  int
	product *catalog.Product
	qty     textinput.Model

	currency string
	styles   Styles
}

// NewProductPageModel creates an empty detail page.
func NewProductPageModel(styles Styles, currency string) ProductPageModel {
	qi := textinput.New()
	qi.Placeholder = "1"
	qi.CharLimit = 6
	qi.Width = 8
	qi.Prompt = "Quantity: "
	qi.PromptStyle = styles.Prompt

	return ProductPageModel{
		qty:      qi,
		currency: currency,
		styles:   styles,
	}
}

// SetProduct shows p with a fresh, focused quantity field.
func (m *ProductPageModel) SetProduct(p catalog.Product) tea.Cmd {
	m.product = &p
	m.qty.SetValue("")
	return m.qty.Focus()
}

// Product returns the product on display.
func (m ProductPageModel) Product() (catalog.Product, bool) {
	if m.product == nil {
		return catalog.Product{}, false
	}
	return *m.product, true
}

// Update handles messages.
func (m ProductPageModel) Update(msg tea.Msg) (ProductPageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if m.product == nil {
			return m, nil
		}
		req := addRequest{ProductID: m.product.ID, Quantity: cart.ParseQuantity(m.qty.Value())}
		m.qty.SetValue("")
		return m, emit(req)
	}

	var cmd tea.Cmd
	m.qty, cmd = m.qty.Update(msg)
	return m, cmd
}

// View renders the page.
func (m ProductPageModel) View() string {
	if m.product == nil {
		return m.styles.Content.Render("Loading product…")
	}
	p := m.product

	width := m.width - 8
	if width < 20 {
		width = 60
	}

	parts := []string{
		m.styles.Title.Render(p.Title),
		m.styles.Price.Render(money(m.currency, p.Price)),
	}
	if p.Category != "" {
		parts = append(parts, m.styles.Subtitle.Render(p.Category))
	}
	if p.Rating != nil {
		parts = append(parts, m.styles.Warning.Render(stars(p.Rating.Rate))+
			m.styles.Muted.Render(fmt.Sprintf(" %.1f (%d reviews)", p.Rating.Rate, p.Rating.Count)))
	}
	if p.Description != "" {
		parts = append(parts, "", m.styles.Body.Width(width).Render(p.Description))
	}
	parts = append(parts, "", m.qty.View())

	return m.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func stars(rate float64) string {
	n := int(math.Round(rate))
	n = min(max(n, 0), 5)
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// SetSize updates the size.
func (m *ProductPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}
