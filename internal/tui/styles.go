package tui

import (
	"github.com/charmbracelet/lipgloss"

	"devnotes/internal/notes"
)

// palette maps note color keys to terminal colors.
var palette = map[string]lipgloss.Color{
	notes.DefaultColor: lipgloss.Color("245"),
	"Teal":             lipgloss.Color("#2AA198"),
	"Green":            lipgloss.Color("#5FAF5F"),
	"Red":              lipgloss.Color("#D75F5F"),
	"Yellow":           lipgloss.Color("#D7AF00"),
	"Purple":           lipgloss.Color("#AF87D7"),
}

type styles struct {
	header     lipgloss.Style
	pane       lipgloss.Style
	paneTitle  lipgloss.Style
	item       lipgloss.Style
	selected   lipgloss.Style
	dim        lipgloss.Style
	tag        lipgloss.Style
	errBanner  lipgloss.Style
	status     lipgloss.Style
	label      lipgloss.Style
	focusLabel lipgloss.Style
	// chroma style name used for code blocks
	codeStyle string
}

func newStyles(theme string) styles {
	fg, muted, accent, border, selBg := lipgloss.Color("252"), lipgloss.Color("241"), lipgloss.Color("#0AF"), lipgloss.Color("#334455"), lipgloss.Color("#224")
	codeStyle := "monokai"
	if theme == notes.ThemeLight {
		fg, muted, accent, border, selBg = lipgloss.Color("235"), lipgloss.Color("245"), lipgloss.Color("#0366D6"), lipgloss.Color("250"), lipgloss.Color("#DDEEFF")
		codeStyle = "github"
	}

	return styles{
		header:     lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		pane:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		paneTitle:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		item:       lipgloss.NewStyle().Foreground(fg),
		selected:   lipgloss.NewStyle().Bold(true).Foreground(accent).Background(selBg),
		dim:        lipgloss.NewStyle().Foreground(muted),
		tag:        lipgloss.NewStyle().Foreground(accent),
		errBanner:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFF")).Background(lipgloss.Color("#D75F5F")).Padding(0, 1),
		status:     lipgloss.NewStyle().Foreground(muted).Italic(true),
		label:      lipgloss.NewStyle().Foreground(muted),
		focusLabel: lipgloss.NewStyle().Bold(true).Foreground(accent),
		codeStyle:  codeStyle,
	}
}

// swatch renders the color marker shown next to a note.
func swatch(color string) string {
	c, ok := palette[color]
	if !ok {
		c = palette[notes.DefaultColor]
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}
