package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/quill-be/internal/auth"
	"github.com/isdelr/quill-be/internal/metrics"
	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/repository"
	"github.com/isdelr/quill-be/internal/result"
	"github.com/isdelr/quill-be/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, in models.RegisterInput) (models.AuthenticatedUser, error)
	Login(ctx context.Context, in models.LoginInput) (models.AuthenticatedUser, error)
	CurrentUser(ctx context.Context, id auth.Identity) (models.AuthenticatedUser, error)
	UpdateUser(ctx context.Context, id auth.Identity, in models.UpdateUserInput) (models.AuthenticatedUser, error)
	Profile(ctx context.Context, viewer auth.Identity, username string) (models.Profile, error)
	Follow(ctx context.Context, id auth.Identity, username string) (models.Profile, error)
	Unfollow(ctx context.Context, id auth.Identity, username string) (models.Profile, error)
}

// UserService provides business logic for accounts, login and follow relationships.
type UserService struct {
	base
	tokens     auth.TokenManager
	policy     validation.Policy
	bcryptCost int
	// dummyHash is compared against when the email is unknown so both login failures cost the same.
	dummyHash []byte
}

// NewUserService creates a new UserService.
func NewUserService(store *repository.Store, tokens auth.TokenManager, policy validation.Policy,
	events EventServiceProvider, rec metrics.Recorder, bcryptCost int) (*UserService, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("quill-dummy-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &UserService{
		base:       newBase(store, events, rec),
		tokens:     tokens,
		policy:     policy,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}, nil
}

// registration is a user about to be stored together with its already issued token.
type registration struct {
	user  models.User
	token string
}

// Register creates a new account and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, in models.RegisterInput) (models.AuthenticatedUser, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	valid := result.Check(result.Ok(in), s.policy.Registration)
	prepared := result.Try(valid, s.prepareRegistration)
	stored := result.Try(prepared, func(reg registration) (registration, error) {
		u, err := s.users.Create(ctx, reg.user)
		return registration{user: u, token: reg.token}, err
	})
	stored = result.Tap(stored, func(reg registration) {
		s.events.Record(ctx, models.EventUserRegister, reg.user, reg.user.Username, reg.user.Username+" joined")
	})
	out := result.Map(stored, func(reg registration) models.AuthenticatedUser {
		return models.NewAuthenticatedUser(reg.user, reg.token)
	})
	return finish(s.base, "register", out)
}

// prepareRegistration hashes the password and issues the token before anything is written.
func (s *UserService) prepareRegistration(in models.RegisterInput) (registration, error) {
	hash, err := s.hash(in.Password)
	if err != nil {
		return registration{}, err
	}
	now := s.now()
	user := models.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return registration{}, models.NewInternalError("failed to issue token", err)
	}
	return registration{user: user, token: token}, nil
}

// Login verifies credentials. Unknown emails and wrong passwords fail identically.
func (s *UserService) Login(ctx context.Context, in models.LoginInput) (models.AuthenticatedUser, error) {
	in.Email = strings.TrimSpace(in.Email)

	valid := result.Check(result.Ok(in), s.policy.Login)
	user := result.Try(valid, func(in models.LoginInput) (models.User, error) {
		return s.verifyCredentials(ctx, in)
	})
	out := result.Try(user, s.authenticated)
	return finish(s.base, "login", out)
}

func (s *UserService) verifyCredentials(ctx context.Context, in models.LoginInput) (models.User, error) {
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if !models.IsKind(err, models.KindNotFound) {
			return models.User{}, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
		return models.User{}, models.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return models.User{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, models.NewInternalError("failed to compare password hash", err)
	}
	return u, nil
}

// CurrentUser returns the user behind a verified identity, passing its token through.
func (s *UserService) CurrentUser(ctx context.Context, id auth.Identity) (models.AuthenticatedUser, error) {
	user := result.From(s.actor(ctx, id))
	out := result.Try(user, func(u models.User) (models.AuthenticatedUser, error) {
		if id.Token != "" {
			return models.NewAuthenticatedUser(u, id.Token), nil
		}
		return s.authenticated(u)
	})
	return finish(s.base, "current_user", out)
}

// UpdateUser applies a partial update and returns the user with a fresh token.
// The token is issued before the write so a successful update is never reported as a failure.
func (s *UserService) UpdateUser(ctx context.Context, id auth.Identity, in models.UpdateUserInput) (models.AuthenticatedUser, error) {
	current := result.From(s.actor(ctx, id))
	valid := result.Check(current, func(models.User) error { return s.policy.UserUpdate(in) })
	token := result.Try(valid, func(u models.User) (string, error) {
		t, err := s.tokens.Issue(u.ID)
		if err != nil {
			return "", models.NewInternalError("failed to issue token", err)
		}
		return t, nil
	})
	patch := result.Try(token, func(string) (models.UserPatch, error) {
		return s.buildPatch(in)
	})
	updated := result.Try(patch, func(p models.UserPatch) (models.User, error) {
		if p.Empty() {
			return current.Unwrap()
		}
		return s.users.Update(ctx, id.UserID, p)
	})
	out := result.Map(updated, func(u models.User) models.AuthenticatedUser {
		t, _ := token.Unwrap()
		return models.NewAuthenticatedUser(u, t)
	})
	return finish(s.base, "update_user", out)
}

func (s *UserService) buildPatch(in models.UpdateUserInput) (models.UserPatch, error) {
	patch := models.UserPatch{
		Bio:       in.Bio,
		Image:     in.Image,
		UpdatedAt: s.now(),
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		patch.Email = &email
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		patch.Username = &username
	}
	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return models.UserPatch{}, err
		}
		patch.PasswordHash = &hash
	}
	return patch, nil
}

// Profile returns the viewer-relative profile of username. viewer may be anonymous.
func (s *UserService) Profile(ctx context.Context, viewer auth.Identity, username string) (models.Profile, error) {
	target := result.From(s.users.FindByUsername(ctx, username))
	out := result.Try(target, func(u models.User) (models.Profile, error) {
		return s.profile(ctx, viewer, u)
	})
	return finish(s.base, "profile", out)
}

// followPair is the acting user and the user being followed or unfollowed.
type followPair struct {
	actor  models.User
	target models.User
}

func (s *UserService) resolvePair(ctx context.Context, id auth.Identity, username string) result.Result[followPair] {
	actor := result.From(s.actor(ctx, id))
	pair := result.Try(actor, func(a models.User) (followPair, error) {
		t, err := s.users.FindByUsername(ctx, username)
		return followPair{actor: a, target: t}, err
	})
	return result.Check(pair, func(p followPair) error {
		if p.actor.ID == p.target.ID {
			return models.NewFieldError("username", "cannot follow yourself")
		}
		return nil
	})
}

// Follow makes the acting user follow username.
func (s *UserService) Follow(ctx context.Context, id auth.Identity, username string) (models.Profile, error) {
	pair := s.resolvePair(ctx, id, username)
	pair = result.Check(pair, func(p followPair) error {
		return s.follows.AddEdge(ctx, p.actor.ID, p.target.ID)
	})
	pair = result.Tap(pair, func(p followPair) {
		s.events.Record(ctx, models.EventUserFollow, p.actor, p.target.Username, p.actor.Username+" followed "+p.target.Username)
	})
	out := result.Map(pair, func(p followPair) models.Profile {
		return models.NewProfile(p.target, true)
	})
	return finish(s.base, "follow", out)
}

// Unfollow removes the acting user's follow edge to username.
func (s *UserService) Unfollow(ctx context.Context, id auth.Identity, username string) (models.Profile, error) {
	pair := s.resolvePair(ctx, id, username)
	pair = result.Check(pair, func(p followPair) error {
		return s.follows.RemoveEdge(ctx, p.actor.ID, p.target.ID)
	})
	pair = result.Tap(pair, func(p followPair) {
		s.events.Record(ctx, models.EventUserUnfollow, p.actor, p.target.Username, p.actor.Username+" unfollowed "+p.target.Username)
	})
	out := result.Map(pair, func(p followPair) models.Profile {
		return models.NewProfile(p.target, false)
	})
	return finish(s.base, "unfollow", out)
}

func (s *UserService) authenticated(u models.User) (models.AuthenticatedUser, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return models.AuthenticatedUser{}, models.NewInternalError("failed to issue token", err)
	}
	return models.NewAuthenticatedUser(u, token), nil
}

func (s *UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", models.NewInternalError("failed to hash password", err)
	}
	return string(hashed), nil
}
