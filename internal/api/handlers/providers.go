package handlers

import "github.com/randytsao24/heisenberg/internal/poller"

// SourceProvider exposes poller health for the diagnostics endpoints.
type SourceProvider interface {
	Snapshot() []poller.Status
}
