package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders md for the terminal with the style matching a ui.theme
// setting. "auto" falls back to plain text when stdout is not a terminal.
func RenderMarkdown(md, theme string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width), glamour.WithEmoji()}
	switch theme = strings.ToLower(theme); theme {
	case "dark", "light", "notty":
		opts = append(opts, glamour.WithStylePath(theme))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
