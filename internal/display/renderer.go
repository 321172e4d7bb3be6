// Package display draws the state into a fixed-size terminal frame.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/randytsao24/heisenberg/internal/state"
	"github.com/randytsao24/heisenberg/internal/weather"
)

// Frame size in terminal cells
const (
	Width  = 24
	Height = 12
)

// Rows left for content after the tab row and the blank row under it
const contentRows = Height - 2

const (
	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
)

// Renderer draws State frames to a terminal
type Renderer struct {
	out    io.Writer
	styles Styles
}

// NewRenderer creates a renderer that writes to out
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:    out,
		styles: NewStyles(lipgloss.NewRenderer(out)),
	}
}

// NewRendererWithStyles creates a renderer with prebuilt styles
func NewRendererWithStyles(out io.Writer, styles Styles) *Renderer {
	return &Renderer{out: out, styles: styles}
}

// Render clears the screen and draws s. The terminal is in raw mode, so
// lines end with CRLF.
func (r *Renderer) Render(s state.State) error {
	frame := strings.ReplaceAll(r.Frame(s), "\n", "\r\n")
	if _, err := io.WriteString(r.out, cursorHome+clearScreen+frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Frame returns the Width x Height frame for s
func (r *Renderer) Frame(s state.State) string {
	rows := []string{r.tabs(s.Mode), ""}

	var content []string
	switch s.Mode {
	case state.Transit:
		content = r.transitRows(s)
	default:
		content = r.weatherRows(s.Weather)
	}
	if len(content) > contentRows {
		content = content[:contentRows]
	}
	rows = append(rows, content...)

	return r.styles.Frame.Render(strings.Join(rows, "\n"))
}

func (r *Renderer) tabs(current state.Mode) string {
	var tabs []string
	for _, mode := range state.Modes() {
		style := r.styles.Tab
		if mode == current {
			style = r.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(mode.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (r *Renderer) transitRows(s state.State) []string {
	var rows []string
	for _, line := range s.Transit.Lines {
		rows = append(rows, r.styles.Title.Render(line.Name))
		for _, stop := range line.Stops {
			rows = append(rows, r.styles.Row.Render(fmt.Sprintf("%7s %s", stop.Countdowns, stop.Name)))
		}
	}
	return rows
}

func (r *Renderer) weatherRows(f weather.Forecast) []string {
	now, err := f.Now()
	if err != nil {
		return []string{r.styles.Muted.Render("No data")}
	}

	rows := []string{
		r.styles.Title.Render(fmt.Sprintf("Now %5s %4s", now.TemperatureLabel(), now.PrecipLabel())),
	}
	for p := range f.FuturePeriods() {
		if len(rows) == contentRows {
			break
		}
		start := f.StartIn(p).Format("Mon 3PM")
		rows = append(rows, r.styles.Row.Render(fmt.Sprintf("%-8s %4s %4s", start, p.TemperatureLabel(), p.PrecipLabel())))
	}
	return rows
}
