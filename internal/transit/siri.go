package transit

import (
	"context"
	"net/url"
	"time"

	"github.com/randytsao24/heisenberg/internal/fetch"
	"golang.org/x/sync/errgroup"
)

// BusTimeHost is the MTA Bus Time API root
const BusTimeHost = "https://bustime.mta.info"

// maxConcurrentStops bounds parallel StopMonitoring requests
const maxConcurrentStops = 4

// SIRISource reads bus predictions from the MTA Bus Time SIRI StopMonitoring
// API, one request per stop.
type SIRISource struct {
	client  *fetch.Client
	host    string
	apiKey  string
	stopIDs []string
}

// NewSIRISource creates a source for the given stops
func NewSIRISource(host, apiKey string, stopIDs []string, client *fetch.Client) *SIRISource {
	return &SIRISource{
		client:  client,
		host:    host,
		apiKey:  apiKey,
		stopIDs: stopIDs,
	}
}

// Name returns the provider name
func (s *SIRISource) Name() string { return "siri" }

// Predictions fetches arrivals for every stop. A failure for any stop makes
// the whole cycle unavailable.
func (s *SIRISource) Predictions(ctx context.Context) ([]Prediction, error) {
	results := make([][]Prediction, len(s.stopIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentStops)
	for i, stopID := range s.stopIDs {
		g.Go(func() error {
			resp, err := fetch.GetJSON[siriResponse](ctx, s.client, s.stopURL(stopID))
			if err != nil {
				return err
			}
			results[i] = parseStopVisits(resp, stopID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []Prediction
	for _, r := range results {
		records = append(records, r...)
	}
	return records, nil
}

func (s *SIRISource) stopURL(stopID string) string {
	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("MonitoringRef", stopID)
	params.Set("version", "2")
	return s.host + "/api/siri/stop-monitoring.json?" + params.Encode()
}

func parseStopVisits(resp siriResponse, stopID string) []Prediction {
	delivery := resp.Siri.ServiceDelivery.StopMonitoringDelivery
	if len(delivery) == 0 {
		return nil
	}

	var records []Prediction
	for _, visit := range delivery[0].MonitoredStopVisit {
		journey := visit.MonitoredVehicleJourney

		route := getFirstString(journey.PublishedLineName)
		if route == "" {
			route = journey.LineRef
		}

		expected := journey.MonitoredCall.ExpectedDepartureTime
		if expected.IsZero() {
			expected = journey.MonitoredCall.ExpectedArrivalTime
		}

		var departure *time.Time
		if !expected.IsZero() {
			departure = &expected
		}

		records = append(records, Prediction{
			RouteID:   route,
			StopID:    stopID,
			Departure: departure,
		})
	}

	return records
}

// getFirstString handles fields that can be string or []string
func getFirstString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

type siriResponse struct {
	Siri struct {
		ServiceDelivery struct {
			StopMonitoringDelivery []struct {
				MonitoredStopVisit []struct {
					MonitoredVehicleJourney monitoredVehicleJourney `json:"MonitoredVehicleJourney"`
				} `json:"MonitoredStopVisit"`
			} `json:"StopMonitoringDelivery"`
		} `json:"ServiceDelivery"`
	} `json:"Siri"`
}

type monitoredVehicleJourney struct {
	LineRef           string `json:"LineRef"`
	PublishedLineName any    `json:"PublishedLineName"`
	MonitoredCall     struct {
		ExpectedArrivalTime   time.Time `json:"ExpectedArrivalTime"`
		ExpectedDepartureTime time.Time `json:"ExpectedDepartureTime"`
	} `json:"MonitoredCall"`
}
