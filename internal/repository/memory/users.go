package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/isdelr/quill-be/internal/models"
)

// UserRepository keeps users indexed by id, email and username.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[string]models.User
	byEmail    map[string]string // lower-cased email -> id
	byUsername map[string]string // username -> id
}

// NewUserRepository creates an empty UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]models.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(email)
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; ok {
		return models.User{}, models.NewConflictError("id")
	}
	if _, ok := r.byEmail[emailKey(user.Email)]; ok {
		return models.User{}, models.NewConflictError("email")
	}
	if _, ok := r.byUsername[user.Username]; ok {
		return models.User{}, models.NewConflictError("username")
	}

	r.byID[user.ID] = copyUser(user)
	r.byEmail[emailKey(user.Email)] = user.ID
	r.byUsername[user.Username] = user.ID
	return copyUser(user), nil
}

// FindByID looks a user up by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return models.User{}, models.NewNotFoundError("user")
	}
	return copyUser(u), nil
}

// FindByEmail looks a user up by email, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return models.User{}, models.NewNotFoundError("user")
	}
	return copyUser(r.byID[id]), nil
}

// FindByUsername looks a user up by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return models.User{}, models.NewNotFoundError("user")
	}
	return copyUser(r.byID[id]), nil
}

// Update applies patch to the user with the given id.
func (r *UserRepository) Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return models.User{}, models.NewNotFoundError("user")
	}
	next := patch.Apply(current)

	if emailKey(next.Email) != emailKey(current.Email) {
		if _, taken := r.byEmail[emailKey(next.Email)]; taken {
			return models.User{}, models.NewConflictError("email")
		}
	}
	if next.Username != current.Username {
		if _, taken := r.byUsername[next.Username]; taken {
			return models.User{}, models.NewConflictError("username")
		}
	}

	delete(r.byEmail, emailKey(current.Email))
	delete(r.byUsername, current.Username)
	r.byEmail[emailKey(next.Email)] = id
	r.byUsername[next.Username] = id
	r.byID[id] = copyUser(next)
	return copyUser(next), nil
}

func copyUser(u models.User) models.User {
	if u.Image != nil {
		img := *u.Image
		u.Image = &img
	}
	return u
}
