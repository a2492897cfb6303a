// Package repository defines the persistence port used by the services.
// Every method is atomic with respect to the single record or edge it touches.
package repository

import (
	"context"
	"time"

	"github.com/isdelr/quill-be/internal/models"
)

// UserRepository stores user accounts keyed by id, email and username.
type UserRepository interface {
	// Create fails with a conflict error naming "email" or "username" on duplicates.
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	// Update applies patch and fails with a conflict error if the result collides.
	Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error)
}

// ArticleRepository stores articles keyed by slug and the favorite edges on them.
type ArticleRepository interface {
	// Create fails with a conflict error naming "slug" on duplicates.
	Create(ctx context.Context, article models.Article) (models.Article, error)
	FindBySlug(ctx context.Context, slug string) (models.Article, error)
	Update(ctx context.Context, slug string, patch models.ArticlePatch) (models.Article, error)
	// AddFavorite records the edge and increments favoritesCount; conflict if already present.
	AddFavorite(ctx context.Context, slug, userID string) (models.Article, error)
	// RemoveFavorite deletes the edge and decrements favoritesCount; not found if absent.
	RemoveFavorite(ctx context.Context, slug, userID string) (models.Article, error)
	IsFavorited(ctx context.Context, slug, userID string) (bool, error)
	Tags(ctx context.Context) ([]string, error)
}

// CommentRepository stores comments under their parent article.
type CommentRepository interface {
	// Create allocates a fresh id; the parent article must exist.
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)
	ListByArticle(ctx context.Context, slug string) ([]models.Comment, error)
}

// FollowRepository stores directed follower -> followed edges.
type FollowRepository interface {
	AddEdge(ctx context.Context, followerID, followedID string) error
	RemoveEdge(ctx context.Context, followerID, followedID string) error
	Exists(ctx context.Context, followerID, followedID string) (bool, error)
}

// EventRepository stores recorded activity.
type EventRepository interface {
	Create(ctx context.Context, event models.Event) error
	Recent(ctx context.Context, limit int) ([]models.Event, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users    UserRepository
	Articles ArticleRepository
	Comments CommentRepository
	Follows  FollowRepository
	Events   EventRepository
	closer   func() error
}

// NewStore assembles a Store. closer may be nil.
func NewStore(users UserRepository, articles ArticleRepository, comments CommentRepository,
	follows FollowRepository, events EventRepository, closer func() error) *Store {
	return &Store{
		Users:    users,
		Articles: articles,
		Comments: comments,
		Follows:  follows,
		Events:   events,
		closer:   closer,
	}
}

// Close releases the backend's resources.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
