package poller

import (
	"sync"
	"time"
)

// Status is the health of one poller
type Status struct {
	Name                string     `json:"name"`
	Interval            string     `json:"interval"`
	Polls               int        `json:"polls"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastFailure         *time.Time `json:"last_failure,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
}

// Tracker records poll outcomes for the diagnostics server. It is safe for
// concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	sources map[string]*Status
	order   []string
	now     func() time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		sources: make(map[string]*Status),
		now:     time.Now,
	}
}

// Register adds a poller so it is listed before its first poll completes
func (t *Tracker) Register(name string, interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entryLocked(name).Interval = interval.String()
}

// RecordSuccess marks a successful poll
func (t *Tracker) RecordSuccess(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	s := t.entryLocked(name)
	s.Polls++
	s.ConsecutiveFailures = 0
	s.LastSuccess = &now
}

// RecordFailure marks a failed poll
func (t *Tracker) RecordFailure(name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	s := t.entryLocked(name)
	s.Polls++
	s.ConsecutiveFailures++
	s.LastFailure = &now
	s.LastError = err.Error()
}

// Snapshot returns a copy of every status in registration order
func (t *Tracker) Snapshot() []Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Status, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.sources[name])
	}
	return out
}

func (t *Tracker) entryLocked(name string) *Status {
	s, ok := t.sources[name]
	if !ok {
		s = &Status{Name: name}
		t.sources[name] = s
		t.order = append(t.order, name)
	}
	return s
}
