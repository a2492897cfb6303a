package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/isdelr/quill-be/internal/models"
)

const articleColumns = "slug, title, description, body, tags_json, author_id, favorites_count, created_at, updated_at"

// ArticleRepository stores articles and their favorites.
type ArticleRepository struct {
	db *sql.DB
}

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts a new article. favoritesCount always starts at zero.
func (r *ArticleRepository) Create(ctx context.Context, article models.Article) (models.Article, error) {
	tags, err := marshalTags(article.TagList)
	if err != nil {
		return models.Article{}, err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO articles("+articleColumns+") VALUES(?, ?, ?, ?, ?, ?, 0, ?, ?)",
		article.Slug, article.Title, article.Description, article.Body, tags, article.AuthorID,
		formatTime(article.CreatedAt), formatTime(article.UpdatedAt),
	)
	if err != nil {
		switch kind, _ := classify(err); kind {
		case uniqueConstraint:
			return models.Article{}, models.NewConflictError("slug")
		case foreignKeyConstraint:
			return models.Article{}, models.NewNotFoundError("author")
		}
		return models.Article{}, fmt.Errorf("failed to insert article: %w", err)
	}
	return r.FindBySlug(ctx, article.Slug)
}

// FindBySlug retrieves a single article by its slug.
func (r *ArticleRepository) FindBySlug(ctx context.Context, slug string) (models.Article, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE slug = ?", slug)
	return scanArticle(row)
}

// Update reads, patches and writes the article inside one transaction.
func (r *ArticleRepository) Update(ctx context.Context, slug string, patch models.ArticlePatch) (models.Article, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Article{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanArticle(tx.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE slug = ?", slug))
	if err != nil {
		return models.Article{}, err
	}
	next := patch.Apply(current)
	tags, err := marshalTags(next.TagList)
	if err != nil {
		return models.Article{}, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE articles SET title = ?, description = ?, body = ?, tags_json = ?, updated_at = ? WHERE slug = ?",
		next.Title, next.Description, next.Body, tags, formatTime(next.UpdatedAt), slug,
	)
	if err != nil {
		return models.Article{}, fmt.Errorf("failed to update article: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Article{}, fmt.Errorf("failed to commit article update: %w", err)
	}
	return next, nil
}

// AddFavorite inserts the favorite edge and bumps the counter in one transaction.
func (r *ArticleRepository) AddFavorite(ctx context.Context, slug, userID string) (models.Article, error) {
	return r.changeFavorite(ctx, slug, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO favorites(article_slug, user_id) VALUES(?, ?)", slug, userID)
		if err != nil {
			if kind, _ := classify(err); kind == uniqueConstraint {
				return &models.AppError{Kind: models.KindConflict, Message: "article is already favorited"}
			}
			return fmt.Errorf("failed to insert favorite: %w", err)
		}
		_, err = tx.ExecContext(ctx, "UPDATE articles SET favorites_count = favorites_count + 1 WHERE slug = ?", slug)
		return err
	})
}

// RemoveFavorite deletes the favorite edge and decrements the counter in one transaction.
func (r *ArticleRepository) RemoveFavorite(ctx context.Context, slug, userID string) (models.Article, error) {
	return r.changeFavorite(ctx, slug, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM favorites WHERE article_slug = ? AND user_id = ?", slug, userID)
		if err != nil {
			return fmt.Errorf("failed to delete favorite: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return models.NewNotFoundError("favorite")
		}
		_, err = tx.ExecContext(ctx, "UPDATE articles SET favorites_count = favorites_count - 1 WHERE slug = ?", slug)
		return err
	})
}

func (r *ArticleRepository) changeFavorite(ctx context.Context, slug string, change func(*sql.Tx) error) (models.Article, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Article{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM articles WHERE slug = ?", slug).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Article{}, models.NewNotFoundError("article")
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("failed to look up article: %w", err)
	}

	if err := change(tx); err != nil {
		return models.Article{}, err
	}
	article, err := scanArticle(tx.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE slug = ?", slug))
	if err != nil {
		return models.Article{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Article{}, fmt.Errorf("failed to commit favorite: %w", err)
	}
	return article, nil
}

// IsFavorited reports whether userID favorited the article.
func (r *ArticleRepository) IsFavorited(ctx context.Context, slug, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM favorites WHERE article_slug = ? AND user_id = ?", slug, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return n > 0, nil
}

// Tags returns every distinct tag in use, sorted.
func (r *ArticleRepository) Tags(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT j.value FROM articles, json_each(articles.tags_json) AS j ORDER BY j.value")
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func scanArticle(scanner interface{ Scan(...any) error }) (models.Article, error) {
	var (
		a                    models.Article
		tagsJSON             string
		createdAt, updatedAt string
	)
	err := scanner.Scan(&a.Slug, &a.Title, &a.Description, &a.Body, &tagsJSON, &a.AuthorID, &a.FavoritesCount, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Article{}, models.NewNotFoundError("article")
		}
		return models.Article{}, fmt.Errorf("failed to scan article: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &a.TagList); err != nil {
		return models.Article{}, fmt.Errorf("invalid stored tag list for %s: %w", a.Slug, err)
	}
	if a.TagList == nil {
		a.TagList = []string{}
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Article{}, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Article{}, err
	}
	return a, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}
