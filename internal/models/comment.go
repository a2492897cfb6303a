package models

import "time"

// Comment is a reply attached to an article.
type Comment struct {
	ID          int64     `json:"id"`
	ArticleSlug string    `json:"-"`
	AuthorID    string    `json:"-"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Author      Profile   `json:"author"`
}
