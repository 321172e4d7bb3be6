package transit

import (
	"context"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/randytsao24/heisenberg/internal/fetch"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GTFSRTSource reads TripUpdates from one or more GTFS-Realtime feeds, such
// as the MTA subway feeds split by line group.
type GTFSRTSource struct {
	client   *fetch.Client
	feedURLs []string
	stops    map[string]bool
	log      *zap.SugaredLogger
}

// NewGTFSRTSource creates a source that keeps stop time updates for stopIDs
// only. Feeds carry every stop in the system.
func NewGTFSRTSource(feedURLs []string, apiKey string, stopIDs []string, client *fetch.Client, log *zap.SugaredLogger) *GTFSRTSource {
	stops := make(map[string]bool, len(stopIDs))
	for _, id := range stopIDs {
		stops[id] = true
	}
	return &GTFSRTSource{
		client:   client.With("x-api-key", apiKey),
		feedURLs: feedURLs,
		stops:    stops,
		log:      log,
	}
}

// Name returns the provider name
func (s *GTFSRTSource) Name() string { return "gtfsrt" }

// Predictions fetches all feeds concurrently. If any feed fails the whole
// cycle is unavailable.
func (s *GTFSRTSource) Predictions(ctx context.Context) ([]Prediction, error) {
	results := make([][]Prediction, len(s.feedURLs))

	g, ctx := errgroup.WithContext(ctx)
	for i, url := range s.feedURLs {
		g.Go(func() error {
			feed := &gtfs.FeedMessage{}
			if err := fetch.GetProto(ctx, s.client, url, feed); err != nil {
				return err
			}
			results[i] = s.parseFeed(feed)
			s.log.Debugw("decoded gtfs-rt feed", "url", url, "entities", len(feed.GetEntity()), "records", len(results[i]))
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

func (s *GTFSRTSource) parseFeed(feed *gtfs.FeedMessage) []Prediction {
	var records []Prediction

	for _, entity := range feed.GetEntity() {
		tripUpdate := entity.GetTripUpdate()
		if tripUpdate == nil {
			continue
		}

		routeID := tripUpdate.GetTrip().GetRouteId()

		for _, stopTimeUpdate := range tripUpdate.GetStopTimeUpdate() {
			stopID := stopTimeUpdate.GetStopId()
			if !s.stops[stopID] {
				continue
			}

			records = append(records, Prediction{
				RouteID:   routeID,
				StopID:    stopID,
				Departure: departureTime(stopTimeUpdate),
			})
		}
	}

	return records
}

// departureTime prefers the departure event and falls back to the arrival.
// Skipped stops and updates without either time return nil.
func departureTime(update *gtfs.TripUpdate_StopTimeUpdate) *time.Time {
	if update.GetScheduleRelationship() == gtfs.TripUpdate_StopTimeUpdate_SKIPPED {
		return nil
	}

	unix := update.GetDeparture().GetTime()
	if unix == 0 {
		unix = update.GetArrival().GetTime()
	}
	if unix == 0 {
		return nil
	}

	t := time.Unix(unix, 0)
	return &t
}
