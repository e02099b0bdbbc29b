package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// TypeBadge renders a taxonomy type name in its own color. Hierarchical
// types are purple, flat ones blue.
func TypeBadge(typ domain.NodeType) string {
	label := strings.ReplaceAll(string(typ), "_", " ")
	if typ.Hierarchical() {
		return StylePurple.Render(label)
	}
	return StyleBlue.Render(label)
}

// RequiredMark renders the marker shown next to nodes that demand a deeper
// selection.
func RequiredMark() string {
	return StyleYellow.Render("*")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// Success, Warn and Fail color a one-line status message.
func Success(text string) string { return StyleGreen.Render("✔ " + text) }
func Warn(text string) string    { return StyleYellow.Render("! " + text) }
func Fail(text string) string    { return StyleRed.Render("✘ " + text) }
