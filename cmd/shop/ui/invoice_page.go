package ui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"storefront/internal/invoice"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// InvoicePageModel shows a rendered invoice in a scrollable viewport.
type InvoicePageModel struct {
	width    int
	height   int
	viewport viewport.Model

	invoice  *invoice.Invoice
	markdown string
	notice   string

	theme  string
	styles Styles
}

// NewInvoicePageModel creates an empty invoice page.
func NewInvoicePageModel(styles Styles, theme string) InvoicePageModel {
	vp := viewport.New(80, 20)
	vp.SetContent("No invoice yet.")
	return InvoicePageModel{
		viewport: vp,
		theme:    theme,
		styles:   styles,
	}
}

// SetInvoice renders md (the Markdown form of inv) into the viewport.
func (m *InvoicePageModel) SetInvoice(inv invoice.Invoice, md string) {
	m.invoice = &inv
	m.markdown = md
	m.notice = ""
	m.render()
}

// Invoice returns the invoice on display.
func (m InvoicePageModel) Invoice() (invoice.Invoice, bool) {
	if m.invoice == nil {
		return invoice.Invoice{}, false
	}
	return *m.invoice, true
}

// SetNotice shows a one-line message under the invoice.
func (m *InvoicePageModel) SetNotice(s string) { m.notice = s }

func (m *InvoicePageModel) render() {
	if m.markdown == "" {
		return
	}
	out, err := RenderMarkdown(m.markdown, m.theme, max(m.viewport.Width-2, 40))
	if err != nil {
		out = m.markdown
	}
	m.viewport.SetContent(out)
	m.viewport.GotoTop()
}

// Update handles messages.
func (m InvoicePageModel) Update(msg tea.Msg) (InvoicePageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && m.invoice != nil {
		switch key.String() {
		case "y":
			if err := clipboardWriteAll(m.invoice.Number); err != nil {
				m.notice = m.styles.Error.Render("Failed to copy invoice number")
			} else {
				m.notice = m.styles.Success.Render("Copied " + m.invoice.Number + " to clipboard")
			}
			return m, nil
		case "w":
			return m, emit(saveInvoiceRequest{})
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the page.
func (m InvoicePageModel) View() string {
	if m.notice == "" {
		return m.viewport.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.notice)
}

// SetSize updates the size.
func (m *InvoicePageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = max(h-1, 3)
	m.render()
}
