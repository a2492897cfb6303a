package memory

import (
	"context"
	"sync"
	"time"

	"github.com/isdelr/quill-be/internal/models"
)

// EventRepository keeps events in insertion order.
type EventRepository struct {
	mu     sync.RWMutex
	events []models.Event
}

// NewEventRepository creates an empty EventRepository.
func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

// Create appends an event.
func (r *EventRepository) Create(ctx context.Context, event models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Recent returns up to limit events, newest first.
func (r *EventRepository) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		return []models.Event{}, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Event, 0, min(limit, len(r.events)))
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}

// DeleteBefore drops events created before cutoff.
func (r *EventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	var removed int64
	for _, e := range r.events {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return removed, nil
}
