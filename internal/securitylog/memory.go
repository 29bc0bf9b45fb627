package securitylog

import (
	"context"
	"sync"
	"time"
)

// MemoryRecorder is the in-process Recorder used in tests.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(ctx context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *MemoryRecorder) CountRecentFailedLogins(ctx context.Context, email string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, ev := range r.events {
		if ev.Type == EventFailedLogin && ev.UserEmail == email && !ev.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

// Events returns a snapshot for test assertions.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
