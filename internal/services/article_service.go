package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/isdelr/quill-be/internal/auth"
	"github.com/isdelr/quill-be/internal/metrics"
	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/repository"
	"github.com/isdelr/quill-be/internal/result"
	"github.com/isdelr/quill-be/internal/validation"
)

// maxSlugAttempts bounds the numeric suffixes tried when a slug is taken.
const maxSlugAttempts = 50

// ArticleServiceProvider defines the interface for article services.
type ArticleServiceProvider interface {
	CreateArticle(ctx context.Context, id auth.Identity, in models.CreateArticleInput) (models.Article, error)
	GetArticle(ctx context.Context, viewer auth.Identity, slug string) (models.Article, error)
	UpdateArticle(ctx context.Context, id auth.Identity, slug string, in models.UpdateArticleInput) (models.Article, error)
	Favorite(ctx context.Context, id auth.Identity, slug string) (models.Article, error)
	Unfavorite(ctx context.Context, id auth.Identity, slug string) (models.Article, error)
	AddComment(ctx context.Context, id auth.Identity, slug string, in models.AddCommentInput) (models.Comment, error)
	Comments(ctx context.Context, viewer auth.Identity, slug string) ([]models.Comment, error)
	Tags(ctx context.Context) ([]string, error)
}

// ArticleService provides business logic for articles, favorites and comments.
type ArticleService struct {
	base
	articles repository.ArticleRepository
	comments repository.CommentRepository
	policy   validation.Policy
}

// NewArticleService creates a new ArticleService.
func NewArticleService(store *repository.Store, policy validation.Policy, events EventServiceProvider, rec metrics.Recorder) *ArticleService {
	return &ArticleService{
		base:     newBase(store, events, rec),
		articles: store.Articles,
		comments: store.Comments,
		policy:   policy,
	}
}

// Slugify derives the base slug of a title: lower-cased words joined by hyphens.
func Slugify(title string) string {
	return slug.Make(title)
}

// slugCandidate returns the slug to try on the given attempt: base, base-2, base-3, ...
func slugCandidate(baseSlug string, attempt int) string {
	if attempt == 1 {
		return baseSlug
	}
	return baseSlug + "-" + strconv.Itoa(attempt)
}

// authored pairs an article with the user who wrote it.
type authored struct {
	article models.Article
	author  models.User
}

// CreateArticle stores a new article owned by the acting user.
// A taken slug gets the first free numeric suffix.
func (s *ArticleService) CreateArticle(ctx context.Context, id auth.Identity, in models.CreateArticleInput) (models.Article, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.TagList = normalizeTags(in.TagList)

	author := result.From(s.actor(ctx, id))
	author = result.Check(author, func(models.User) error { return s.policy.ArticleCreation(in) })
	baseSlug := result.Try(author, func(models.User) (string, error) {
		if b := Slugify(in.Title); b != "" {
			return b, nil
		}
		return "", models.NewFieldError("title", "must contain at least one letter or digit")
	})
	created := result.Try(baseSlug, func(b string) (authored, error) {
		a, _ := author.Unwrap()
		article, err := s.insertWithFreeSlug(ctx, b, a, in)
		return authored{article: article, author: a}, err
	})
	created = result.Tap(created, func(c authored) {
		s.events.Record(ctx, models.EventArticleCreate, c.author, c.article.Slug,
			c.author.Username+" published "+c.article.Title, ArticleTopic(c.article.Slug))
	})
	out := result.Map(created, func(c authored) models.Article {
		c.article.Author = models.NewProfile(c.author, false)
		c.article.Favorited = false
		return c.article
	})
	return finish(s.base, "create_article", out)
}

func (s *ArticleService) insertWithFreeSlug(ctx context.Context, baseSlug string, author models.User, in models.CreateArticleInput) (models.Article, error) {
	now := s.now()
	article := models.Article{
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		TagList:     in.TagList,
		AuthorID:    author.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		article.Slug = slugCandidate(baseSlug, attempt)
		stored, err := s.articles.Create(ctx, article)
		if models.IsKind(err, models.KindConflict) {
			continue
		}
		return stored, err
	}
	return models.Article{}, &models.AppError{
		Kind:    models.KindConflict,
		Message: "no free slug for title " + strconv.Quote(in.Title),
		Fields:  map[string]string{"title": "is used by too many articles"},
	}
}

// GetArticle returns the article as seen by viewer, who may be anonymous.
func (s *ArticleService) GetArticle(ctx context.Context, viewer auth.Identity, slug string) (models.Article, error) {
	article := result.From(s.articles.FindBySlug(ctx, slug))
	out := result.Try(article, func(a models.Article) (models.Article, error) {
		return s.decorate(ctx, viewer, a)
	})
	return finish(s.base, "get_article", out)
}

// UpdateArticle edits an article owned by the acting user. The slug never changes.
func (s *ArticleService) UpdateArticle(ctx context.Context, id auth.Identity, slug string, in models.UpdateArticleInput) (models.Article, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if in.TagList != nil {
		in.TagList = normalizeTags(in.TagList)
	}

	owner := result.From(s.actor(ctx, id))
	existing := result.Try(owner, func(models.User) (models.Article, error) {
		return s.articles.FindBySlug(ctx, slug)
	})
	existing = result.Check(existing, func(a models.Article) error {
		if a.AuthorID != id.UserID {
			return models.NewForbiddenError("only the author can edit this article")
		}
		return nil
	})
	existing = result.Check(existing, func(models.Article) error { return s.policy.ArticleUpdate(in) })
	updated := result.Try(existing, func(models.Article) (models.Article, error) {
		return s.articles.Update(ctx, slug, models.ArticlePatch{
			Title:       in.Title,
			Description: in.Description,
			Body:        in.Body,
			TagList:     in.TagList,
			UpdatedAt:   s.now(),
		})
	})
	updated = result.Tap(updated, func(a models.Article) {
		u, _ := owner.Unwrap()
		s.events.Record(ctx, models.EventArticleUpdate, u, a.Slug, u.Username+" edited "+a.Title, ArticleTopic(a.Slug))
	})
	out := result.Try(updated, func(a models.Article) (models.Article, error) {
		return s.decorate(ctx, id, a)
	})
	return finish(s.base, "update_article", out)
}

// Favorite marks the article as favorited by the acting user.
func (s *ArticleService) Favorite(ctx context.Context, id auth.Identity, slug string) (models.Article, error) {
	user := result.From(s.actor(ctx, id))
	article := result.Try(user, func(models.User) (models.Article, error) {
		return s.articles.AddFavorite(ctx, slug, id.UserID)
	})
	article = result.Tap(article, func(a models.Article) {
		u, _ := user.Unwrap()
		s.events.Record(ctx, models.EventArticleFavorite, u, a.Slug, u.Username+" favorited "+a.Title, ArticleTopic(a.Slug))
	})
	out := result.Try(article, func(a models.Article) (models.Article, error) {
		return s.decorate(ctx, id, a)
	})
	return finish(s.base, "favorite", out)
}

// Unfavorite removes the acting user's favorite from the article.
func (s *ArticleService) Unfavorite(ctx context.Context, id auth.Identity, slug string) (models.Article, error) {
	user := result.From(s.actor(ctx, id))
	article := result.Try(user, func(models.User) (models.Article, error) {
		return s.articles.RemoveFavorite(ctx, slug, id.UserID)
	})
	out := result.Try(article, func(a models.Article) (models.Article, error) {
		return s.decorate(ctx, id, a)
	})
	return finish(s.base, "unfavorite", out)
}

// AddComment attaches a comment by the acting user to an existing article.
func (s *ArticleService) AddComment(ctx context.Context, id auth.Identity, slug string, in models.AddCommentInput) (models.Comment, error) {
	in.Body = strings.TrimSpace(in.Body)

	author := result.From(s.actor(ctx, id))
	parent := result.Try(author, func(models.User) (models.Article, error) {
		return s.articles.FindBySlug(ctx, slug)
	})
	parent = result.Check(parent, func(models.Article) error { return s.policy.Comment(in) })
	stored := result.Try(parent, func(a models.Article) (models.Comment, error) {
		u, _ := author.Unwrap()
		now := s.now()
		return s.comments.Create(ctx, models.Comment{
			ArticleSlug: a.Slug,
			AuthorID:    u.ID,
			Body:        in.Body,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
	stored = result.Tap(stored, func(c models.Comment) {
		u, _ := author.Unwrap()
		s.events.Record(ctx, models.EventCommentCreate, u, c.ArticleSlug, u.Username+" commented", ArticleTopic(c.ArticleSlug))
	})
	out := result.Map(stored, func(c models.Comment) models.Comment {
		u, _ := author.Unwrap()
		c.Author = models.NewProfile(u, false)
		return c
	})
	return finish(s.base, "add_comment", out)
}

// Comments lists the comments of an existing article, oldest first.
func (s *ArticleService) Comments(ctx context.Context, viewer auth.Identity, slug string) ([]models.Comment, error) {
	parent := result.From(s.articles.FindBySlug(ctx, slug))
	list := result.Try(parent, func(models.Article) ([]models.Comment, error) {
		return s.comments.ListByArticle(ctx, slug)
	})
	out := result.Try(list, func(comments []models.Comment) ([]models.Comment, error) {
		profiles := make(map[string]models.Profile)
		for i := range comments {
			p, ok := profiles[comments[i].AuthorID]
			if !ok {
				var err error
				if p, err = s.authorProfile(ctx, viewer, comments[i].AuthorID); err != nil {
					return nil, err
				}
				profiles[comments[i].AuthorID] = p
			}
			comments[i].Author = p
		}
		return comments, nil
	})
	return finish(s.base, "list_comments", out)
}

// Tags returns every tag in use.
func (s *ArticleService) Tags(ctx context.Context) ([]string, error) {
	return finish(s.base, "tags", result.From(s.articles.Tags(ctx)))
}

// decorate fills in the viewer-relative fields of an article.
func (s *ArticleService) decorate(ctx context.Context, viewer auth.Identity, a models.Article) (models.Article, error) {
	author, err := s.authorProfile(ctx, viewer, a.AuthorID)
	if err != nil {
		return models.Article{}, err
	}
	a.Author = author
	a.Favorited = false
	if !viewer.Anonymous() {
		if a.Favorited, err = s.articles.IsFavorited(ctx, a.Slug, viewer.UserID); err != nil {
			return models.Article{}, err
		}
	}
	return a, nil
}

func (s *ArticleService) authorProfile(ctx context.Context, viewer auth.Identity, authorID string) (models.Profile, error) {
	u, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return models.Profile{}, err
	}
	return s.profile(ctx, viewer, u)
}

// normalizeTags trims tags and drops duplicates, keeping first occurrence order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
