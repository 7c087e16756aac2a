// Package formatter renders plantree data for the terminal.
package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rpggio/plantree/internal/domain/object"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

var colorEnabled = true

// SetColor turns styling on or off for every renderer in this package.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

func render(style lipgloss.Style, text string) string {
	if !colorEnabled {
		return text
	}
	return style.Render(text)
}

// StatusStyle returns the style used for an object status.
func StatusStyle(s object.Status) lipgloss.Style {
	switch s {
	case object.StatusDone:
		return StyleGreen
	case object.StatusInProgress:
		return StyleYellow
	case object.StatusClosed:
		return StyleDim
	default:
		return StyleBlue
	}
}

// Status renders a status in its color.
func Status(s object.Status) string {
	return render(StatusStyle(s), string(s))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", render(StyleHeader, upper), render(StyleDim, line))
}

// Dim renders text in the muted color.
func Dim(text string) string {
	return render(StyleDim, text)
}

// Bold renders text in bold.
func Bold(text string) string {
	return render(StyleBold, text)
}
