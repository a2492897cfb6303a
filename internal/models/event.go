package models

import "time"

// Event represents a recorded user activity.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // e.g., "article.create", "user.follow"
	ActorID   string    `json:"-"`
	Actor     string    `json:"actor"` // Username at the time of the event
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event types recorded by the services.
const (
	EventUserRegister    = "user.register"
	EventUserFollow      = "user.follow"
	EventUserUnfollow    = "user.unfollow"
	EventArticleCreate   = "article.create"
	EventArticleUpdate   = "article.update"
	EventArticleFavorite = "article.favorite"
	EventCommentCreate   = "comment.create"
)
