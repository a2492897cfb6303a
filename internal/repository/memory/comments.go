package memory

import (
	"context"
	"sync"

	"github.com/isdelr/quill-be/internal/models"
)

// CommentRepository keeps comments per article slug with a monotonically increasing id.
type CommentRepository struct {
	articles *ArticleRepository

	mu        sync.RWMutex
	nextID    int64
	byArticle map[string][]models.Comment
}

// NewCommentRepository creates a CommentRepository that checks parents in articles.
func NewCommentRepository(articles *ArticleRepository) *CommentRepository {
	return &CommentRepository{
		articles:  articles,
		byArticle: make(map[string][]models.Comment),
	}
}

// Create stores comment under its article and assigns its id.
func (r *CommentRepository) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	if !r.articles.exists(comment.ArticleSlug) {
		return models.Comment{}, models.NewNotFoundError("article")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	comment.ID = r.nextID
	comment.Author = models.Profile{}
	r.byArticle[comment.ArticleSlug] = append(r.byArticle[comment.ArticleSlug], comment)
	return comment, nil
}

// ListByArticle returns the comments of slug in creation order.
func (r *CommentRepository) ListByArticle(ctx context.Context, slug string) ([]models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Comment{}, r.byArticle[slug]...), nil
}
