package display

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#F6AE2D")
	muted  = lipgloss.Color("#8CA1AE")
	text   = lipgloss.Color("#E8F0F2")
)

// Styles is the fixed set of styles the renderer draws with. Build it once
// with NewStyles and treat it as read-only.
type Styles struct {
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Title     lipgloss.Style
	Row       lipgloss.Style
	Muted     lipgloss.Style
	Frame     lipgloss.Style
}

// NewStyles builds styles bound to r, so color output matches the
// terminal r writes to.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Tab: r.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		ActiveTab: r.NewStyle().
			Foreground(accent).
			Bold(true).
			Reverse(true).
			Padding(0, 1),
		Title: r.NewStyle().
			Foreground(accent).
			Bold(true).
			MaxWidth(Width),
		Row: r.NewStyle().
			Foreground(text).
			MaxWidth(Width),
		Muted: r.NewStyle().
			Foreground(muted).
			MaxWidth(Width),
		Frame: r.NewStyle().
			Width(Width).
			Height(Height).
			MaxHeight(Height),
	}
}
