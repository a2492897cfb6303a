package models

// RegisterInput is the normalized payload of a registration request.
type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginInput is the normalized payload of a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserInput is a partial user update; nil fields are left unchanged.
type UpdateUserInput struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

// CreateArticleInput is the payload of a new article. The author comes from the identity.
type CreateArticleInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	TagList     []string `json:"tagList"`
}

// UpdateArticleInput is a partial article update.
type UpdateArticleInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Body        *string  `json:"body"`
	TagList     []string `json:"tagList"`
}

// AddCommentInput is the payload of a new comment.
type AddCommentInput struct {
	Body string `json:"body"`
}
