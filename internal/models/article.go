package models

import "time"

// Article is a published post. Slug and AuthorID never change after creation.
type Article struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	AuthorID       string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	FavoritesCount int       `json:"favoritesCount"`
	Favorited      bool      `json:"favorited"` // Viewer-relative
	Author         Profile   `json:"author"`    // Filled in by the article service
}

// ArticlePatch is a partial update of an article's editable fields.
type ArticlePatch struct {
	Title       *string
	Description *string
	Body        *string
	TagList     []string // nil leaves tags untouched
	UpdatedAt   time.Time
}

// Apply returns a copy of a with the patch applied.
func (p ArticlePatch) Apply(a Article) Article {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Body != nil {
		a.Body = *p.Body
	}
	if p.TagList != nil {
		a.TagList = append([]string(nil), p.TagList...)
	}
	if !p.UpdatedAt.IsZero() {
		a.UpdatedAt = p.UpdatedAt
	}
	return a
}
