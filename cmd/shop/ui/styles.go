// Package ui is the terminal storefront: styles, reusable components and the
// bubbletea pages for the catalog, product detail, cart, search and invoice.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status colors shared by both themes.
var (
	colorSale    = lipgloss.Color("#43a047")
	colorDanger  = lipgloss.Color("#e53935")
	colorCaution = lipgloss.Color("#ffb300")
	colorOnBrand = lipgloss.Color("#ffffff")
)

// Theme is a storefront palette.
type Theme struct {
	Dark bool

	Brand     lipgloss.Color // header bar, titles, selection
	Highlight lipgloss.Color // prices, badge, prompts
	Text      lipgloss.Color
	Subtle    lipgloss.Color
	Edge      lipgloss.Color // borders and rules
}

// LightTheme is navy and amber on a pale background.
func LightTheme() Theme {
	return Theme{
		Brand:     "#2b4c7e",
		Highlight: "#e07a2f",
		Text:      "#1f2430",
		Subtle:    "#8a8f98",
		Edge:      "#d8dadf",
	}
}

// DarkTheme swaps the brand and highlight hues for dark terminals.
func DarkTheme() Theme {
	return Theme{
		Dark:      true,
		Brand:     "#f2a65a",
		Highlight: "#7aa2d6",
		Text:      "#eceff4",
		Subtle:    "#6b7280",
		Edge:      "#2e3440",
	}
}

// ThemeFor resolves a ui.theme setting. "auto" (or anything unknown) detects.
func ThemeFor(name string) Theme {
	switch strings.ToLower(name) {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	}
	return DetectTheme()
}

// DetectTheme guesses the terminal background from COLORFGBG ("fg;bg", or
// "fg;default;bg" in some terminals). ANSI backgrounds 0-6 and 8 are dark.
func DetectTheme() Theme {
	v := os.Getenv("COLORFGBG")
	if v == "" {
		return LightTheme()
	}
	bg, err := strconv.Atoi(v[strings.LastIndex(v, ";")+1:])
	if err != nil {
		return LightTheme()
	}
	if bg == 8 || (bg >= 0 && bg <= 6) {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles are the rendered styles for one theme.
type Styles struct {
	Theme Theme

	Header, Footer, Content lipgloss.Style

	Title, Subtitle, Body, Muted, Bold lipgloss.Style
	Price, Prompt, Selected            lipgloss.Style

	Success, Error, Warning lipgloss.Style

	Card, Divider, Badge lipgloss.Style
}

func NewStyles(t Theme) Styles {
	plain := lipgloss.NewStyle()
	text := plain.Foreground(t.Text)
	subtle := plain.Foreground(t.Subtle)
	brand := plain.Foreground(t.Brand).Bold(true)
	highlight := plain.Foreground(t.Highlight).Bold(true)

	return Styles{
		Theme: t,

		Header:  plain.Background(t.Brand).Foreground(colorOnBrand).Bold(true).Padding(0, 2),
		Footer:  subtle.Padding(0, 2),
		Content: plain.Padding(1, 2),

		Title:    brand.MarginBottom(1),
		Subtitle: subtle.Italic(true),
		Body:     text,
		Muted:    subtle,
		Bold:     text.Bold(true),

		Price:    highlight,
		Prompt:   highlight,
		Selected: brand,

		Success: plain.Foreground(colorSale).Bold(true),
		Error:   plain.Foreground(colorDanger).Bold(true),
		Warning: plain.Foreground(colorCaution).Bold(true),

		Card:    plain.Border(lipgloss.RoundedBorder()).BorderForeground(t.Edge).Padding(1, 2),
		Divider: plain.Foreground(t.Edge),
		Badge:   plain.Background(t.Highlight).Foreground(colorOnBrand).Bold(true).Padding(0, 1),
	}
}

// StylesFor returns styles for a ui.theme setting.
func StylesFor(theme string) Styles {
	return NewStyles(ThemeFor(theme))
}

func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Rule draws a horizontal line at least one cell wide.
func (s Styles) Rule(width int) string {
	return s.Divider.Render(strings.Repeat("─", max(width, 1)))
}

// CartBadge is the header cart indicator.
func (s Styles) CartBadge(count int) string {
	return s.Badge.Render("🛒 " + strconv.Itoa(count))
}
