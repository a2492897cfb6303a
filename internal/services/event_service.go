package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/repository"
	"github.com/rs/zerolog/log"
)

// GlobalTopic receives every event.
const GlobalTopic = "global"

// ArticleTopic is the topic for activity on a single article.
func ArticleTopic(slug string) string {
	return "article:" + slug
}

// Broadcaster pushes events to live subscribers.
type Broadcaster interface {
	Publish(topic string, event models.Event)
}

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	Record(ctx context.Context, eventType string, actor models.User, subject, message string, topics ...string)
	RecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventService persists activity events and fans them out to live subscribers.
type EventService struct {
	repo        repository.EventRepository
	broadcaster Broadcaster
	now         func() time.Time
}

// NewEventService creates a new EventService. broadcaster may be nil.
func NewEventService(repo repository.EventRepository, broadcaster Broadcaster) *EventService {
	return &EventService{
		repo:        repo,
		broadcaster: broadcaster,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Record stores an event and publishes it to the global topic and any extra topics.
// It runs after the primary write succeeded, so failures are logged and never returned.
func (s *EventService) Record(ctx context.Context, eventType string, actor models.User, subject, message string, topics ...string) {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		ActorID:   actor.ID,
		Actor:     actor.Username,
		Subject:   subject,
		Message:   message,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, event); err != nil {
		log.Error().Err(err).Str("type", eventType).Str("actor_id", actor.ID).Msg("Failed to record event")
		return
	}
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(GlobalTopic, event)
	for _, topic := range topics {
		s.broadcaster.Publish(topic, event)
	}
}

// RecentEvents retrieves the most recent events.
func (s *EventService) RecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	return s.repo.Recent(ctx, limit)
}

// PruneBefore deletes events older than cutoff and returns how many were removed.
func (s *EventService) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.DeleteBefore(ctx, cutoff)
}
