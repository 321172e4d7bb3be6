package transit

import (
	"slices"
	"time"

	"github.com/randytsao24/heisenberg/internal/config"
	"go.uber.org/zap"
)

type stopKey struct {
	route string
	stop  string
}

// Aggregate groups records by configured line and stop, keeps the earliest
// MaxPredictions departures per stop and converts them to countdowns from
// now. Records for routes or stops outside lines are dropped with a warning.
func Aggregate(lines []config.Line, records []Prediction, now time.Time, log *zap.SugaredLogger) Predictions {
	known := make(map[string]map[string]bool, len(lines))
	for _, line := range lines {
		stops, ok := known[line.RouteID()]
		if !ok {
			stops = make(map[string]bool, len(line.Stops))
			known[line.RouteID()] = stops
		}
		for _, stop := range line.Stops {
			stops[stop.ID] = true
		}
	}

	departures := make(map[stopKey][]time.Time)
	for _, rec := range records {
		if rec.Departure == nil {
			continue
		}
		stops, ok := known[rec.RouteID]
		if !ok {
			log.Warnw("unknown transit route", "route", rec.RouteID)
			continue
		}
		if !stops[rec.StopID] {
			log.Warnw("unknown stop for transit route", "route", rec.RouteID, "stop", rec.StopID)
			continue
		}
		key := stopKey{route: rec.RouteID, stop: rec.StopID}
		departures[key] = append(departures[key], *rec.Departure)
	}

	return build(lines, func(line config.Line, stop config.Stop) CountdownList {
		return countdowns(departures[stopKey{route: line.RouteID(), stop: stop.ID}], now)
	})
}

// Empty returns predictions shaped like lines with no countdowns
func Empty(lines []config.Line) Predictions {
	return build(lines, func(config.Line, config.Stop) CountdownList { return nil })
}

func build(lines []config.Line, lookup func(config.Line, config.Stop) CountdownList) Predictions {
	out := Predictions{Lines: make([]LinePredictions, 0, len(lines))}
	for _, line := range lines {
		lp := LinePredictions{
			Name:  line.Name,
			Stops: make([]StopPredictions, 0, len(line.Stops)),
		}
		for _, stop := range line.Stops {
			lp.Stops = append(lp.Stops, StopPredictions{
				Name:       stop.Name,
				Countdowns: lookup(line, stop),
			})
		}
		out.Lines = append(out.Lines, lp)
	}
	return out
}

func countdowns(times []time.Time, now time.Time) CountdownList {
	if len(times) == 0 {
		return nil
	}
	sorted := slices.Clone(times)
	slices.SortFunc(sorted, time.Time.Compare)
	if len(sorted) > MaxPredictions {
		sorted = sorted[:MaxPredictions]
	}

	list := make(CountdownList, len(sorted))
	for i, t := range sorted {
		list[i] = Countdown(t.Sub(now) / time.Minute)
	}
	return list
}
