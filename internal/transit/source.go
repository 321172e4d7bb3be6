package transit

import (
	"context"
	"fmt"

	"github.com/randytsao24/heisenberg/internal/config"
	"github.com/randytsao24/heisenberg/internal/fetch"
	"go.uber.org/zap"
)

// Source fetches raw predictions for the configured stops. Any failure is
// reported as fetch.ErrUnavailable. Predictions returns early when ctx is
// done.
type Source interface {
	Name() string
	Predictions(ctx context.Context) ([]Prediction, error)
}

// NewSource builds the provider selected in cfg
func NewSource(cfg config.TransitConfig, client *fetch.Client, log *zap.SugaredLogger) (Source, error) {
	switch cfg.Provider {
	case config.ProviderMBTA:
		return NewMBTASource(MBTAHost, cfg.APIKey, cfg.StopIDs(), client), nil
	case config.ProviderGTFSRT:
		return NewGTFSRTSource(cfg.FeedURLs, cfg.APIKey, cfg.StopIDs(), client, log), nil
	case config.ProviderSIRI:
		return NewSIRISource(BusTimeHost, cfg.APIKey, cfg.StopIDs(), client), nil
	default:
		return nil, fmt.Errorf("unknown transit provider %q", cfg.Provider)
	}
}
