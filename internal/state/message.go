package state

import (
	"github.com/randytsao24/heisenberg/internal/transit"
	"github.com/randytsao24/heisenberg/internal/weather"
)

// Message is an update for the dispatch loop. The set of messages is closed.
type Message interface {
	message()
}

// SwitchMode jumps straight to a mode
type SwitchMode struct {
	Mode Mode
}

// AdvanceMode moves to the next mode in the cycle
type AdvanceMode struct{}

// Quit stops the dispatch loop
type Quit struct{}

// TransitUpdated replaces the transit predictions
type TransitUpdated struct {
	Predictions transit.Predictions
}

// WeatherUpdated replaces the forecast
type WeatherUpdated struct {
	Forecast weather.Forecast
}

func (SwitchMode) message()     {}
func (AdvanceMode) message()    {}
func (Quit) message()           {}
func (TransitUpdated) message() {}
func (WeatherUpdated) message() {}
