package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/isdelr/quill-be/internal/models"
)

// CommentRepository stores comments; ids come from the AUTOINCREMENT rowid.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts comment; a missing parent article surfaces as not found.
func (r *CommentRepository) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comments(article_slug, author_id, body, created_at, updated_at) VALUES(?, ?, ?, ?, ?)",
		comment.ArticleSlug, comment.AuthorID, comment.Body, formatTime(comment.CreatedAt), formatTime(comment.UpdatedAt),
	)
	if err != nil {
		if kind, _ := classify(err); kind == foreignKeyConstraint {
			return models.Comment{}, models.NewNotFoundError("article")
		}
		return models.Comment{}, fmt.Errorf("failed to insert comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Comment{}, fmt.Errorf("failed to read comment id: %w", err)
	}
	comment.ID = id
	comment.Author = models.Profile{}
	return comment, nil
}

// ListByArticle returns the comments of slug in creation order.
func (r *CommentRepository) ListByArticle(ctx context.Context, slug string) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, article_slug, author_id, body, created_at, updated_at FROM comments WHERE article_slug = ? ORDER BY id",
		slug)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var (
			c                    models.Comment
			createdAt, updatedAt string
		)
		if err := rows.Scan(&c.ID, &c.ArticleSlug, &c.AuthorID, &c.Body, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
