// Package transit turns raw provider arrival predictions into per-stop
// countdowns shaped like the configured lines.
package transit

import (
	"strconv"
	"strings"
	"time"
)

// MaxPredictions is the number of upcoming departures kept per stop
const MaxPredictions = 2

// Prediction is a single raw record from a transit provider. A nil Departure
// means the provider is skipping the stop.
type Prediction struct {
	RouteID   string
	StopID    string
	Departure *time.Time
}

// Predictions holds countdowns for every configured line, in config order
type Predictions struct {
	Lines []LinePredictions `json:"lines"`
}

// LinePredictions holds countdowns for every configured stop on a line
type LinePredictions struct {
	Name  string            `json:"name"`
	Stops []StopPredictions `json:"stops"`
}

// StopPredictions is the countdown list for one stop
type StopPredictions struct {
	Name       string        `json:"name"`
	Countdowns CountdownList `json:"countdowns"`
}

// Countdown is whole minutes until a departure. Negative values are
// departures that are already due.
type Countdown int

// CountdownList is sorted ascending and holds at most MaxPredictions entries
type CountdownList []Countdown

// String renders "None" for an empty list and "2,5m" otherwise.
func (l CountdownList) String() string {
	if len(l) == 0 {
		return "None"
	}
	parts := make([]string, len(l))
	for i, c := range l {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, ",") + "m"
}
