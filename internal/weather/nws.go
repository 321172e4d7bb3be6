package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/randytsao24/heisenberg/internal/cache"
	"github.com/randytsao24/heisenberg/internal/config"
	"github.com/randytsao24/heisenberg/internal/fetch"
)

// NWSHost is the National Weather Service API root
const NWSHost = "https://api.weather.gov"

// pointTTL is how long a lat/lon to gridpoint lookup is reused
const pointTTL = 24 * time.Hour

// NWSSource fetches the hourly forecast for one gridpoint
type NWSSource struct {
	client *fetch.Client
	host   string
	cfg    config.WeatherConfig
	points *cache.Cache[string, string]
}

// NewNWSSource creates a forecast source. When cfg has no office, the
// gridpoint is resolved from latitude/longitude through the points endpoint.
func NewNWSSource(host string, cfg config.WeatherConfig, client *fetch.Client) *NWSSource {
	return &NWSSource{
		client: client.With("Accept", "application/geo+json"),
		host:   host,
		cfg:    cfg,
		points: cache.New[string, string](pointTTL),
	}
}

// Name returns the provider name
func (s *NWSSource) Name() string { return "nws" }

// Forecast fetches the current hourly forecast
func (s *NWSSource) Forecast(ctx context.Context) (Forecast, error) {
	url, err := s.forecastURL(ctx)
	if err != nil {
		return Forecast{}, err
	}

	resp, err := fetch.GetJSON[nwsForecast](ctx, s.client, url)
	if err != nil {
		return Forecast{}, err
	}

	periods := make([]Period, 0, len(resp.Properties.Periods))
	for _, p := range resp.Properties.Periods {
		periods = append(periods, Period{
			Start:             p.StartTime,
			End:               p.EndTime,
			Temperature:       p.Temperature,
			PrecipProbability: p.ProbabilityOfPrecipitation.Value,
		})
	}
	return Forecast{Periods: periods}, nil
}

func (s *NWSSource) forecastURL(ctx context.Context) (string, error) {
	if s.cfg.HasGridpoint() {
		return fmt.Sprintf("%s/gridpoints/%s/%d,%d/forecast/hourly", s.host, s.cfg.Office, s.cfg.GridX, s.cfg.GridY), nil
	}

	// The points endpoint rejects more than four decimal places
	pointURL := fmt.Sprintf("%s/points/%.4f,%.4f", s.host, *s.cfg.Latitude, *s.cfg.Longitude)
	return s.points.GetOrLoad(pointURL, func() (string, error) {
		resp, err := fetch.GetJSON[nwsPoint](ctx, s.client, pointURL)
		if err != nil {
			return "", err
		}
		if resp.Properties.ForecastHourly == "" {
			return "", fmt.Errorf("point %s has no hourly forecast: %w", pointURL, fetch.ErrUnavailable)
		}
		return resp.Properties.ForecastHourly, nil
	})
}

// https://www.weather.gov/documentation/services-web-api#/default/gridpoint_forecast
type nwsForecast struct {
	Properties struct {
		Periods []struct {
			StartTime                  time.Time `json:"startTime"`
			EndTime                    time.Time `json:"endTime"`
			Temperature                int       `json:"temperature"`
			ProbabilityOfPrecipitation struct {
				Value *int `json:"value"`
			} `json:"probabilityOfPrecipitation"`
		} `json:"periods"`
	} `json:"properties"`
}

// https://www.weather.gov/documentation/services-web-api#/default/point
type nwsPoint struct {
	Properties struct {
		ForecastHourly string `json:"forecastHourly"`
	} `json:"properties"`
}
