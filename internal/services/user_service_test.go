package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/isdelr/quill-be/internal/auth"
	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	ctx := context.Background()

	au, err := f.users.Register(ctx, models.RegisterInput{Email: " jake@jake.jake ", Username: "jake", Password: "jakejake"})
	require.NoError(t, err)
	assert.Equal(t, "jake@jake.jake", au.Email)
	assert.Equal(t, "jake", au.Username)
	assert.Equal(t, "", au.Bio)
	assert.Nil(t, au.Image)
	require.NotEmpty(t, au.Token)

	id, err := f.tokens.Verify(au.Token)
	require.NoError(t, err)
	stored, err := f.store.Users.FindByUsername(ctx, "jake")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, id.UserID)
	assert.NotEqual(t, "jakejake", stored.PasswordHash)

	events := f.hub.topic(GlobalTopic)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventUserRegister, events[0].Type)
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	ctx := context.Background()

	_, err := f.users.Register(ctx, models.RegisterInput{Email: "first@example.com", Username: "jake", Password: "password1"})
	require.NoError(t, err)

	_, err = f.users.Register(ctx, models.RegisterInput{Email: "second@example.com", Username: "jake", Password: "password2"})
	require.Error(t, err)
	assert.Equal(t, models.KindConflict, models.KindOf(err))

	first, err := f.store.Users.FindByUsername(ctx, "jake")
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", first.Email, "first user's record is unaffected")

	_, err = f.users.Login(ctx, models.LoginInput{Email: "first@example.com", Password: "password1"})
	assert.NoError(t, err)
}

func TestUserService_Register_ValidationShortCircuits(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	ctx := context.Background()

	_, err := f.users.Register(ctx, models.RegisterInput{Email: "not-an-email", Username: "jake", Password: "password1"})
	require.Error(t, err)
	assert.Equal(t, models.KindValidation, models.KindOf(err))

	_, err = f.store.Users.FindByUsername(ctx, "jake")
	assert.True(t, models.IsKind(err, models.KindNotFound), "nothing is written after a failed validation")
	assert.Empty(t, f.hub.topic(GlobalTopic))
}

func TestUserService_Register_Concurrent(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	ctx := context.Background()

	const n = 6
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.users.Register(ctx, models.RegisterInput{
				Email:    fmt.Sprintf("racer%d@example.com", i),
				Username: "racer",
				Password: "password1",
			})
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case models.IsKind(err, models.KindConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

func TestUserService_Login(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	ctx := context.Background()
	f.register(t, "jake")

	au, err := f.users.Login(ctx, models.LoginInput{Email: "JAKE@example.com", Password: "password-jake"})
	require.NoError(t, err)
	assert.Equal(t, "jake", au.Username)
	assert.NotEmpty(t, au.Token)

	_, wrongPassword := f.users.Login(ctx, models.LoginInput{Email: "jake@example.com", Password: "wrong-password"})
	_, unknownEmail := f.users.Login(ctx, models.LoginInput{Email: "nobody@example.com", Password: "password-jake"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, models.KindInvalidCredentials, models.KindOf(wrongPassword))
	assert.Equal(t, wrongPassword, unknownEmail, "both failures must be indistinguishable")
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestUserService_CurrentUser(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	ctx := context.Background()
	id := f.register(t, "jake")

	au, err := f.users.CurrentUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "jake", au.Username)
	assert.Equal(t, id.Token, au.Token, "token is passed through")

	_, err = f.users.CurrentUser(ctx, auth.Identity{})
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))

	_, err = f.users.CurrentUser(ctx, auth.Identity{UserID: "ghost", Token: "t"})
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))
}

func TestUserService_UpdateUser_OnlyBio(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	ctx := context.Background()
	id := f.register(t, "jake")
	before, err := f.store.Users.FindByID(ctx, id.UserID)
	require.NoError(t, err)

	au, err := f.users.UpdateUser(ctx, id, models.UpdateUserInput{Bio: ptr("new bio")})
	require.NoError(t, err)
	assert.Equal(t, "new bio", au.Bio)
	assert.NotEmpty(t, au.Token)

	after, err := f.store.Users.FindByID(ctx, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, "new bio", after.Bio)
	assert.Equal(t, before.Email, after.Email)
	assert.Equal(t, before.Username, after.Username)
	assert.Equal(t, before.Image, after.Image)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestUserService_UpdateUser_Conflict(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	ctx := context.Background()
	id := f.register(t, "jake")
	f.register(t, "anna")

	_, err := f.users.UpdateUser(ctx, id, models.UpdateUserInput{Username: ptr("anna")})
	assert.Equal(t, models.KindConflict, models.KindOf(err))
	_, err = f.users.UpdateUser(ctx, id, models.UpdateUserInput{Email: ptr("anna@example.com")})
	assert.Equal(t, models.KindConflict, models.KindOf(err))

	au, err := f.users.UpdateUser(ctx, id, models.UpdateUserInput{Username: ptr("jacob"), Image: ptr("https://example.com/j.png")})
	require.NoError(t, err)
	assert.Equal(t, "jacob", au.Username)
	require.NotNil(t, au.Image)
	assert.Equal(t, "https://example.com/j.png", *au.Image)
}

func TestUserService_UpdateUser_Password(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, validation.DefaultRules())
	id := f.register(t, "jake")
	_, err := f.users.UpdateUser(ctx, id, models.UpdateUserInput{Password: ptr("brand-new-secret")})
	require.NoError(t, err)
	_, err = f.users.Login(ctx, models.LoginInput{Email: "jake@example.com", Password: "brand-new-secret"})
	assert.NoError(t, err)

	rules := validation.DefaultRules()
	rules.AllowPasswordChange = false
	locked := newFixture(t, rules)
	id = locked.register(t, "anna")
	_, err = locked.users.UpdateUser(ctx, id, models.UpdateUserInput{Password: ptr("brand-new-secret")})
	assert.Equal(t, models.KindValidation, models.KindOf(err))
	_, err = locked.users.Login(ctx, models.LoginInput{Email: "anna@example.com", Password: "password-anna"})
	assert.NoError(t, err, "old password still works")
}

func TestUserService_UpdateUser_Unauthorized(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	_, err := f.users.UpdateUser(context.Background(), auth.Identity{}, models.UpdateUserInput{Bio: ptr("x")})
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))
}

func TestUserService_Profile(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")

	for i := 0; i < 3; i++ {
		p, err := f.users.Profile(ctx, alice, "bob")
		require.NoError(t, err)
		assert.False(t, p.Following)
		assert.Equal(t, "bob", p.Username)

		anon, err := f.users.Profile(ctx, auth.Identity{}, "bob")
		require.NoError(t, err)
		assert.False(t, anon.Following)
	}

	_, err := f.users.Profile(ctx, alice, "nobody")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestUserService_FollowUnfollow(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")

	p, err := f.users.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	assert.True(t, p.Following)

	_, err = f.users.Follow(ctx, alice, "bob")
	assert.Equal(t, models.KindConflict, models.KindOf(err))

	viewed, err := f.users.Profile(ctx, alice, "bob")
	require.NoError(t, err)
	assert.True(t, viewed.Following)

	p, err = f.users.Unfollow(ctx, alice, "bob")
	require.NoError(t, err)
	assert.False(t, p.Following)

	_, err = f.users.Unfollow(ctx, alice, "bob")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	_, err = f.users.Follow(ctx, alice, "nobody")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	_, err = f.users.Follow(ctx, auth.Identity{}, "bob")
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))

	types := []string{}
	for _, e := range f.hub.topic(GlobalTopic) {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, models.EventUserFollow)
	assert.Contains(t, types, models.EventUserUnfollow)
}

func TestUserService_SelfFollow(t *testing.T) {
	f := newFixture(t, validation.DefaultRules())
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")

	_, err := f.users.Follow(ctx, alice, "alice")
	assert.Equal(t, models.KindValidation, models.KindOf(err))

	_, err = f.users.Follow(ctx, alice, "bob")
	require.NoError(t, err)

	_, err = f.users.Follow(ctx, alice, "alice")
	assert.Equal(t, models.KindValidation, models.KindOf(err), "regardless of prior state")
	_, err = f.users.Unfollow(ctx, alice, "alice")
	assert.Equal(t, models.KindValidation, models.KindOf(err))
}
