// Package eventstest provides an in-memory events.Publisher for tests.
package eventstest

import (
	"context"
	"sync"

	"github.com/Skotchmaster/tienda/internal/events"
)

type Recorded struct {
	Topic string
	Key   string
	Event any
}

// Recorder keeps published events in memory. A non-nil Err is returned from
// every publish instead of recording.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
	Err    error
}

var _ events.Publisher = (*Recorder)(nil)

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, Recorded{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Snapshot() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.Events...)
}
