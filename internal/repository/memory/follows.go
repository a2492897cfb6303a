package memory

import (
	"context"
	"sync"

	"github.com/isdelr/quill-be/internal/models"
)

type edge struct {
	follower string
	followed string
}

// FollowRepository keeps the set of follower -> followed edges.
type FollowRepository struct {
	mu    sync.RWMutex
	edges map[edge]struct{}
}

// NewFollowRepository creates an empty FollowRepository.
func NewFollowRepository() *FollowRepository {
	return &FollowRepository{edges: make(map[edge]struct{})}
}

// AddEdge records that followerID follows followedID.
func (r *FollowRepository) AddEdge(ctx context.Context, followerID, followedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := edge{followerID, followedID}
	if _, ok := r.edges[e]; ok {
		return &models.AppError{Kind: models.KindConflict, Message: "already following"}
	}
	r.edges[e] = struct{}{}
	return nil
}

// RemoveEdge deletes the edge.
func (r *FollowRepository) RemoveEdge(ctx context.Context, followerID, followedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := edge{followerID, followedID}
	if _, ok := r.edges[e]; !ok {
		return &models.AppError{Kind: models.KindNotFound, Message: "not following"}
	}
	delete(r.edges, e)
	return nil
}

// Exists reports whether the edge is present.
func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.edges[edge{followerID, followedID}]
	return ok, nil
}
