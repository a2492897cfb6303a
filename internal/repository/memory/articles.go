package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/isdelr/quill-be/internal/models"
)

// ArticleRepository keeps articles by slug together with their favorite edges.
type ArticleRepository struct {
	mu        sync.RWMutex
	bySlug    map[string]models.Article
	favorites map[string]map[string]struct{} // slug -> set of user ids
}

// NewArticleRepository creates an empty ArticleRepository.
func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{
		bySlug:    make(map[string]models.Article),
		favorites: make(map[string]map[string]struct{}),
	}
}

// Create stores a new article.
func (r *ArticleRepository) Create(ctx context.Context, article models.Article) (models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySlug[article.Slug]; ok {
		return models.Article{}, models.NewConflictError("slug")
	}
	stored := storedArticle(article)
	stored.FavoritesCount = 0
	r.bySlug[article.Slug] = stored
	return storedArticle(stored), nil
}

// FindBySlug looks an article up by slug.
func (r *ArticleRepository) FindBySlug(ctx context.Context, slug string) (models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.bySlug[slug]
	if !ok {
		return models.Article{}, models.NewNotFoundError("article")
	}
	return storedArticle(a), nil
}

// exists reports whether slug is stored. Used by the comment repository.
func (r *ArticleRepository) exists(slug string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bySlug[slug]
	return ok
}

// Update applies patch to the article with the given slug.
func (r *ArticleRepository) Update(ctx context.Context, slug string, patch models.ArticlePatch) (models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.bySlug[slug]
	if !ok {
		return models.Article{}, models.NewNotFoundError("article")
	}
	next := storedArticle(patch.Apply(a))
	r.bySlug[slug] = next
	return storedArticle(next), nil
}

// AddFavorite marks the article as favorited by userID.
func (r *ArticleRepository) AddFavorite(ctx context.Context, slug, userID string) (models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.bySlug[slug]
	if !ok {
		return models.Article{}, models.NewNotFoundError("article")
	}
	users := r.favorites[slug]
	if users == nil {
		users = make(map[string]struct{})
		r.favorites[slug] = users
	}
	if _, dup := users[userID]; dup {
		return models.Article{}, &models.AppError{Kind: models.KindConflict, Message: "article is already favorited"}
	}
	users[userID] = struct{}{}
	a.FavoritesCount = len(users)
	r.bySlug[slug] = a
	return storedArticle(a), nil
}

// RemoveFavorite removes userID's favorite from the article.
func (r *ArticleRepository) RemoveFavorite(ctx context.Context, slug, userID string) (models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.bySlug[slug]
	if !ok {
		return models.Article{}, models.NewNotFoundError("article")
	}
	users := r.favorites[slug]
	if _, present := users[userID]; !present {
		return models.Article{}, models.NewNotFoundError("favorite")
	}
	delete(users, userID)
	a.FavoritesCount = len(users)
	r.bySlug[slug] = a
	return storedArticle(a), nil
}

// IsFavorited reports whether userID favorited the article.
func (r *ArticleRepository) IsFavorited(ctx context.Context, slug, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.favorites[slug][userID]
	return ok, nil
}

// Tags returns every distinct tag in use, sorted.
func (r *ArticleRepository) Tags(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, a := range r.bySlug {
		for _, t := range a.TagList {
			seen[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}

// storedArticle strips viewer-relative fields and copies the tag slice.
func storedArticle(a models.Article) models.Article {
	a.TagList = append([]string{}, a.TagList...)
	a.Favorited = false
	a.Author = models.Profile{}
	return a
}
