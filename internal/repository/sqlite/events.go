package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/isdelr/quill-be/internal/models"
)

// EventRepository stores activity events.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create logs a new event to the database.
func (r *EventRepository) Create(ctx context.Context, event models.Event) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO events (id, type, actor_id, actor, subject, message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.ActorID, event.Actor, event.Subject, event.Message, formatTime(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Recent retrieves the most recent events from the database.
func (r *EventRepository) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		return []models.Event{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, type, actor_id, actor, subject, message, created_at FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var (
			e         models.Event
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Type, &e.ActorID, &e.Actor, &e.Subject, &e.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteBefore removes events created before cutoff.
func (r *EventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE created_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return res.RowsAffected()
}
