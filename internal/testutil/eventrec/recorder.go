package eventrec

import (
	"context"
	"sync"

	"bloodbank-service/internal/domain/event"
)

var _ event.Emitter = (*Recorder)(nil)

// Recorder keeps every emitted event. Set Err to make Emit fail after recording.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
	Err    error
}

func New() *Recorder { return &Recorder{} }

func (r *Recorder) Emit(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.Err
}

func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Types() []event.Type {
	var out []event.Type
	for _, e := range r.Events() {
		out = append(out, e.Type)
	}
	return out
}

// Last returns the most recent event and false when nothing was emitted.
func (r *Recorder) Last() (event.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return event.Event{}, false
	}
	return r.events[len(r.events)-1], true
}

func (r *Recorder) Count(t event.Type) int {
	n := 0
	for _, e := range r.Events() {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
