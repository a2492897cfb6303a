// Package memory implements the persistence port with mutex-guarded maps.
// Records are copied on the way in and out so callers never hold references into the store.
package memory

import "github.com/isdelr/quill-be/internal/repository"

// NewStore creates an empty in-memory store.
func NewStore() *repository.Store {
	articles := NewArticleRepository()
	return repository.NewStore(
		NewUserRepository(),
		articles,
		NewCommentRepository(articles),
		NewFollowRepository(),
		NewEventRepository(),
		nil,
	)
}
