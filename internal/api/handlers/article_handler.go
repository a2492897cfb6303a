package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/quill-be/internal/auth"
	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/services"
)

// ArticleHandler handles HTTP requests for articles, favorites, comments and tags.
type ArticleHandler struct {
	service services.ArticleServiceProvider
	guard   *auth.Guard
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(service services.ArticleServiceProvider, guard *auth.Guard) *ArticleHandler {
	return &ArticleHandler{service: service, guard: guard}
}

// ArticleResponse wraps an article in the response envelope.
type ArticleResponse struct {
	Article models.Article `json:"article"`
}

// CommentResponse wraps a comment in the response envelope.
type CommentResponse struct {
	Comment models.Comment `json:"comment"`
}

// CommentsResponse wraps a comment list in the response envelope.
type CommentsResponse struct {
	Comments []models.Comment `json:"comments"`
}

// TagsResponse wraps the tag list in the response envelope.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// Create publishes a new article by the authenticated user.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := h.guard.Require(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	var payload struct {
		Article models.CreateArticleInput `json:"article"`
	}
	if !decode(w, r, &payload) {
		return
	}

	article, err := h.service.CreateArticle(r.Context(), id, payload.Article)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, ArticleResponse{Article: article})
}

// Get returns one article. Authentication is optional.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.guard.Optional(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	article, err := h.service.GetArticle(r.Context(), viewer, chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, ArticleResponse{Article: article})
}

// Update edits an article owned by the authenticated user.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.guard.Require(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	var payload struct {
		Article models.UpdateArticleInput `json:"article"`
	}
	if !decode(w, r, &payload) {
		return
	}

	article, err := h.service.UpdateArticle(r.Context(), id, chi.URLParam(r, "slug"), payload.Article)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, ArticleResponse{Article: article})
}

// Favorite marks the article as favorited by the authenticated user.
func (h *ArticleHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	h.changeFavorite(w, r, h.service.Favorite)
}

// Unfavorite removes the authenticated user's favorite.
func (h *ArticleHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	h.changeFavorite(w, r, h.service.Unfavorite)
}

type favoriteFunc func(ctx context.Context, id auth.Identity, slug string) (models.Article, error)

func (h *ArticleHandler) changeFavorite(w http.ResponseWriter, r *http.Request, change favoriteFunc) {
	id, err := h.guard.Require(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	article, err := change(r.Context(), id, chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, ArticleResponse{Article: article})
}

// AddComment attaches a comment by the authenticated user.
func (h *ArticleHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := h.guard.Require(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	var payload struct {
		Comment models.AddCommentInput `json:"comment"`
	}
	if !decode(w, r, &payload) {
		return
	}

	comment, err := h.service.AddComment(r.Context(), id, chi.URLParam(r, "slug"), payload.Comment)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, CommentResponse{Comment: comment})
}

// Comments lists the comments of an article. Authentication is optional.
func (h *ArticleHandler) Comments(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.guard.Optional(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	comments, err := h.service.Comments(r.Context(), viewer, chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, CommentsResponse{Comments: comments})
}

// Tags lists every tag in use.
func (h *ArticleHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.Tags(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, TagsResponse{Tags: tags})
}
