package transit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/randytsao24/heisenberg/internal/fetch"
)

// MBTAHost is the MBTA v3 API root
const MBTAHost = "https://api-v3.mbta.com"

// MBTASource reads predictions from the MBTA v3 JSON:API
type MBTASource struct {
	client *fetch.Client
	url    string
}

// NewMBTASource creates a source that queries every stop in one request
func NewMBTASource(host, apiKey string, stopIDs []string, client *fetch.Client) *MBTASource {
	return &MBTASource{
		client: client.With("x-api-key", apiKey),
		url:    fmt.Sprintf("%s/predictions?filter[stop]=%s", host, strings.Join(stopIDs, ",")),
	}
}

// Name returns the provider name
func (s *MBTASource) Name() string { return "mbta" }

// Predictions fetches the current predictions for the configured stops
func (s *MBTASource) Predictions(ctx context.Context) ([]Prediction, error) {
	resp, err := fetch.GetJSON[mbtaResponse](ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}

	records := make([]Prediction, 0, len(resp.Data))
	for _, p := range resp.Data {
		records = append(records, Prediction{
			RouteID:   p.Relationships.Route.Data.ID,
			StopID:    p.Relationships.Stop.Data.ID,
			Departure: p.Attributes.DepartureTime,
		})
	}
	return records, nil
}

// https://api-v3.mbta.com/docs/swagger/index.html#/Prediction/ApiWeb_PredictionController_index
type mbtaResponse struct {
	Data []struct {
		Attributes struct {
			// Null when the stop is being skipped
			DepartureTime *time.Time `json:"departure_time"`
		} `json:"attributes"`
		Relationships struct {
			Route mbtaRelationship `json:"route"`
			Stop  mbtaRelationship `json:"stop"`
		} `json:"relationships"`
	} `json:"data"`
}

type mbtaRelationship struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}
