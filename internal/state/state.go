// Package state owns the display state and the loop that applies messages
// to it. Producers only ever send Messages; Run is the single writer.
package state

import (
	"github.com/randytsao24/heisenberg/internal/config"
	"github.com/randytsao24/heisenberg/internal/transit"
	"github.com/randytsao24/heisenberg/internal/weather"
)

// Mode is the data category currently on screen
type Mode int

const (
	Weather Mode = iota
	Transit
)

// modes is the cycle order for AdvanceMode
var modes = [...]Mode{Weather, Transit}

// Modes returns every mode in cycle order
func Modes() []Mode {
	return append([]Mode(nil), modes[:]...)
}

// Next returns the mode after m, wrapping after the last
func (m Mode) Next() Mode {
	for i, mode := range modes {
		if mode == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

func (m Mode) String() string {
	switch m {
	case Weather:
		return "Weather"
	case Transit:
		return "Transit"
	default:
		return "Unknown"
	}
}

// State is everything the renderer needs. Forecast and predictions are
// replaced wholesale on update, never merged.
type State struct {
	Mode    Mode
	Transit transit.Predictions
	Weather weather.Forecast
}

// New returns the initial state: weather mode, no forecast, and empty
// countdowns for every configured stop.
func New(lines []config.Line) State {
	return State{
		Mode:    Weather,
		Transit: transit.Empty(lines),
	}
}

// Apply returns the state after msg. The bool is false when msg asks the
// loop to stop, in which case s is returned unchanged.
func Apply(s State, msg Message) (State, bool) {
	switch msg := msg.(type) {
	case Quit:
		return s, false
	case SwitchMode:
		s.Mode = msg.Mode
	case AdvanceMode:
		s.Mode = s.Mode.Next()
	case TransitUpdated:
		s.Transit = msg.Predictions
	case WeatherUpdated:
		s.Weather = msg.Forecast
	}
	return s, true
}
