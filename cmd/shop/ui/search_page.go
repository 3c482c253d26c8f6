package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"storefront/internal/catalog"
)

// SearchPageModel is a search box with title suggestions that refresh once typing pauses.
type SearchPageModel struct {
	width  int
	height int
	input  textinput.Model

	suggestions []catalog.Product
	cursor      int
	debouncer   *Debouncer

	currency string
	styles   Styles
}

// NewSearchPageModel creates the search page.
func NewSearchPageModel(styles Styles, currency string) SearchPageModel {
	ti := textinput.New()
	ti.Placeholder = "Search products…"
	ti.CharLimit = 80
	ti.Width = 40
	ti.PromptStyle = styles.Prompt

	return SearchPageModel{
		input:     ti,
		debouncer: NewDebouncer("search", DefaultSearchDebounce),
		currency:  currency,
		styles:    styles,
	}
}

// Focus resets the page for a new search.
func (m *SearchPageModel) Focus() tea.Cmd {
	m.input.SetValue("")
	m.suggestions = nil
	m.cursor = 0
	m.debouncer.Cancel()
	return m.input.Focus()
}

// Query is the trimmed search text.
func (m SearchPageModel) Query() string {
	return strings.TrimSpace(m.input.Value())
}

// SetSuggestions replaces the suggestion list.
func (m *SearchPageModel) SetSuggestions(items []catalog.Product) {
	m.suggestions = items
	if m.cursor >= len(items) {
		m.cursor = 0
	}
}

// Suggestions returns the current suggestions.
func (m SearchPageModel) Suggestions() []catalog.Product { return m.suggestions }

// Settled reports whether msg is the tick that should trigger a lookup.
func (m SearchPageModel) Settled(msg tea.Msg) bool {
	return m.debouncer.Settled(msg)
}

// Update handles messages.
func (m SearchPageModel) Update(msg tea.Msg) (SearchPageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.suggestions)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if m.cursor < len(m.suggestions) {
				return m, emit(openProductRequest{ID: m.suggestions[m.cursor].ID})
			}
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		if m.Query() == "" {
			m.debouncer.Cancel()
			m.suggestions = nil
			return m, cmd
		}
		return m, tea.Batch(cmd, m.debouncer.Trigger())
	}
	return m, cmd
}

// View renders the page.
func (m SearchPageModel) View() string {
	parts := []string{m.styles.Title.Render("Search"), m.input.View(), ""}

	switch {
	case m.Query() == "":
		parts = append(parts, m.styles.Muted.Render("Type part of a product title."))
	case len(m.suggestions) == 0:
		parts = append(parts, m.styles.Muted.Render("No matches yet."))
	default:
		for i, p := range m.suggestions {
			line := p.Title + "  " + m.styles.Muted.Render(money(m.currency, p.Price))
			if i == m.cursor {
				parts = append(parts, m.styles.Selected.Render("› ")+line)
			} else {
				parts = append(parts, "  "+line)
			}
		}
	}
	return m.styles.Content.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the size.
func (m *SearchPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.input.Width = max(w-10, 20)
}
