package services

import (
	"context"
	"time"

	"github.com/isdelr/quill-be/internal/auth"
	"github.com/isdelr/quill-be/internal/metrics"
	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/repository"
	"github.com/isdelr/quill-be/internal/result"
	"github.com/rs/zerolog/log"
)

// base holds what every use-case needs besides its own repositories.
type base struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	events  EventServiceProvider
	metrics metrics.Recorder
	now     func() time.Time
}

func newBase(store *repository.Store, events EventServiceProvider, rec metrics.Recorder) base {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if events == nil {
		events = nopEvents{}
	}
	return base{
		users:   store.Users,
		follows: store.Follows,
		events:  events,
		metrics: rec,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// finish reports the outcome of a use-case and hands the result back as a Go pair.
// Expected failures are logged at debug level, unexpected ones at error level.
func finish[T any](b base, usecase string, r result.Result[T]) (T, error) {
	v, err := r.Unwrap()
	b.metrics.RecordUseCase(usecase, err)
	if err != nil {
		if kind := models.KindOf(err); kind == models.KindInternal {
			log.Error().Err(err).Str("usecase", usecase).Msg("Use-case failed")
		} else {
			log.Debug().Err(err).Str("usecase", usecase).Str("kind", string(kind)).Msg("Use-case rejected")
		}
	}
	return v, err
}

// actor loads the user behind an identity. A missing or vanished user is unauthorized.
func (b base) actor(ctx context.Context, id auth.Identity) (models.User, error) {
	if id.Anonymous() {
		return models.User{}, models.NewUnauthorizedError("authentication required")
	}
	u, err := b.users.FindByID(ctx, id.UserID)
	if models.IsKind(err, models.KindNotFound) {
		return models.User{}, models.NewUnauthorizedError("user no longer exists")
	}
	return u, err
}

// profile projects target as seen by viewer.
func (b base) profile(ctx context.Context, viewer auth.Identity, target models.User) (models.Profile, error) {
	if viewer.Anonymous() || viewer.UserID == target.ID {
		return models.NewProfile(target, false), nil
	}
	following, err := b.follows.Exists(ctx, viewer.UserID, target.ID)
	if err != nil {
		return models.Profile{}, err
	}
	return models.NewProfile(target, following), nil
}

// nopEvents is used when no event service is wired.
type nopEvents struct{}

func (nopEvents) Record(context.Context, string, models.User, string, string, ...string) {}

func (nopEvents) RecentEvents(context.Context, int) ([]models.Event, error) {
	return []models.Event{}, nil
}

func (nopEvents) PruneBefore(context.Context, time.Time) (int64, error) { return 0, nil }
