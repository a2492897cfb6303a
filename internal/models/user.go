package models

import "time"

// User represents a registered author account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Bio          string    `json:"bio"`
	Image        *string   `json:"image"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatch carries a partial update. Nil fields leave the stored value untouched.
type UserPatch struct {
	Email        *string
	Username     *string
	PasswordHash *string
	Bio          *string
	Image        *string
	UpdatedAt    time.Time // Applied only when at least one other field is set
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Username == nil && p.PasswordHash == nil && p.Bio == nil && p.Image == nil
}

// Apply returns a copy of u with the patch applied.
func (p UserPatch) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Image != nil {
		img := *p.Image
		u.Image = &img
	}
	if !p.Empty() && !p.UpdatedAt.IsZero() {
		u.UpdatedAt = p.UpdatedAt
	}
	return u
}

// AuthenticatedUser is the user projection returned together with an identity token.
type AuthenticatedUser struct {
	Email    string  `json:"email"`
	Token    string  `json:"token"`
	Username string  `json:"username"`
	Bio      string  `json:"bio"`
	Image    *string `json:"image"`
}

// NewAuthenticatedUser projects u with the given token.
func NewAuthenticatedUser(u User, token string) AuthenticatedUser {
	return AuthenticatedUser{
		Email:    u.Email,
		Token:    token,
		Username: u.Username,
		Bio:      u.Bio,
		Image:    u.Image,
	}
}

// Profile is a viewer-relative read projection of a User.
type Profile struct {
	Username  string  `json:"username"`
	Bio       string  `json:"bio"`
	Image     *string `json:"image"`
	Following bool    `json:"following"`
}

// NewProfile projects u as seen by a viewer with the given follow state.
func NewProfile(u User, following bool) Profile {
	return Profile{
		Username:  u.Username,
		Bio:       u.Bio,
		Image:     u.Image,
		Following: following,
	}
}
