// Package poller runs a fetch on a fixed interval and forwards each result
// to the dispatch loop.
package poller

import (
	"context"
	"time"

	"github.com/randytsao24/heisenberg/internal/state"
	"go.uber.org/zap"
)

// Poller fetches a T every interval and sends it as a Message. A failed
// fetch skips the send; the next attempt happens after the same interval.
type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    func(context.Context) (T, error)
	message  func(T) state.Message
	tracker  *Tracker
	log      *zap.SugaredLogger
}

// New creates a poller. fetch must return once its context is done.
// message turns a successful fetch into the Message to send.
func New[T any](name string, interval time.Duration, fetch func(context.Context) (T, error), message func(T) state.Message, tracker *Tracker, log *zap.SugaredLogger) *Poller[T] {
	tracker.Register(name, interval)
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		message:  message,
		tracker:  tracker,
		log:      log.With("poller", name),
	}
}

// Run polls until ctx is done or out stops accepting messages. The first
// fetch happens immediately.
func (p *Poller[T]) Run(ctx context.Context, out state.Sender) {
	p.log.Infow("poller started", "interval", p.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Infow("poller stopped", "reason", ctx.Err())
			return
		case <-timer.C:
		}

		value, err := p.fetch(ctx)
		if ctx.Err() != nil {
			p.log.Infow("poller stopped", "reason", ctx.Err())
			return
		}
		if err != nil {
			p.tracker.RecordFailure(p.name, err)
			p.log.Debugw("poll skipped", "error", err)
		} else {
			p.tracker.RecordSuccess(p.name)
			if !out.Send(p.message(value)) {
				p.log.Infow("poller stopped", "reason", "mailbox closed")
				return
			}
		}

		timer.Reset(p.interval)
	}
}
