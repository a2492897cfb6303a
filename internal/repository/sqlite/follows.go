package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/isdelr/quill-be/internal/models"
)

// FollowRepository stores follow edges in the follows table.
type FollowRepository struct {
	db *sql.DB
}

// NewFollowRepository creates a new FollowRepository.
func NewFollowRepository(db *sql.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// AddEdge records that followerID follows followedID.
func (r *FollowRepository) AddEdge(ctx context.Context, followerID, followedID string) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO follows(follower_id, followed_id) VALUES(?, ?)", followerID, followedID)
	if err == nil {
		return nil
	}
	switch kind, _ := classify(err); kind {
	case uniqueConstraint:
		return &models.AppError{Kind: models.KindConflict, Message: "already following"}
	case foreignKeyConstraint:
		return models.NewNotFoundError("user")
	case checkConstraint:
		return models.NewFieldError("username", "cannot follow yourself")
	}
	return fmt.Errorf("failed to insert follow: %w", err)
}

// RemoveEdge deletes the edge.
func (r *FollowRepository) RemoveEdge(ctx context.Context, followerID, followedID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM follows WHERE follower_id = ? AND followed_id = ?", followerID, followedID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	if n == 0 {
		return &models.AppError{Kind: models.KindNotFound, Message: "not following"}
	}
	return nil
}

// Exists reports whether the edge is present.
func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followed_id = ?", followerID, followedID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return n > 0, nil
}
