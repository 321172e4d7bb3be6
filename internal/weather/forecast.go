// Package weather models an hourly forecast and selects the periods worth
// showing on the display.
package weather

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// ErrEmptyForecast is returned by Now when the forecast has no periods.
var ErrEmptyForecast = errors.New("forecast has no periods")

// Stride is the number of future periods skipped between displayed periods
const Stride = 4

// Daytime window, inclusive, as offsets from local midnight. Future periods
// that start outside it are not shown.
const (
	DayStart = 4*time.Hour + 30*time.Minute
	DayEnd   = 22*time.Hour + 30*time.Minute
)

// Period is one forecast interval
type Period struct {
	Start       time.Time
	End         time.Time
	Temperature int
	// Percent, nil when the provider has no value
	PrecipProbability *int
}

// TemperatureLabel formats the temperature, e.g. "72°"
func (p Period) TemperatureLabel() string {
	return fmt.Sprintf("%d°", p.Temperature)
}

// PrecipLabel formats the precipitation probability, e.g. "10%". A missing
// value is shown as 0%.
func (p Period) PrecipLabel() string {
	value := 0
	if p.PrecipProbability != nil {
		value = *p.PrecipProbability
	}
	return fmt.Sprintf("%d%%", value)
}

// Forecast is an ordered, immutable list of periods. Periods[0] is the
// current one.
type Forecast struct {
	Periods []Period
	// Location is used to read wall-clock start times. Nil means time.Local.
	Location *time.Location
}

// Now returns the current period
func (f Forecast) Now() (Period, error) {
	if len(f.Periods) == 0 {
		return Period{}, ErrEmptyForecast
	}
	return f.Periods[0], nil
}

// FuturePeriods yields every Stride-th period after the current one,
// starting with the first, and drops any whose local start time is outside
// [DayStart, DayEnd]. The sequence can be ranged over more than once.
func (f Forecast) FuturePeriods() iter.Seq[Period] {
	return func(yield func(Period) bool) {
		if len(f.Periods) < 2 {
			return
		}
		for i := 1; i < len(f.Periods); i += Stride {
			p := f.Periods[i]
			if !f.inDaytime(p.Start) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// StartIn returns the period start in the forecast's display location
func (f Forecast) StartIn(p Period) time.Time {
	return p.Start.In(f.location())
}

func (f Forecast) inDaytime(t time.Time) bool {
	local := t.In(f.location())
	sinceMidnight := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second +
		time.Duration(local.Nanosecond())
	return sinceMidnight >= DayStart && sinceMidnight <= DayEnd
}

func (f Forecast) location() *time.Location {
	if f.Location != nil {
		return f.Location
	}
	return time.Local
}
