// Package repotest holds the behaviour every persistence backend must share.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for one test.
type Factory func(t *testing.T) *repository.Store

// Run exercises a backend against the persistence contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("user update", func(t *testing.T) { testUserUpdate(t, newStore(t)) })
	t.Run("concurrent register", func(t *testing.T) { testConcurrentCreate(t, newStore(t)) })
	t.Run("articles", func(t *testing.T) { testArticles(t, newStore(t)) })
	t.Run("favorites", func(t *testing.T) { testFavorites(t, newStore(t)) })
	t.Run("comments", func(t *testing.T) { testComments(t, newStore(t)) })
	t.Run("follows", func(t *testing.T) { testFollows(t, newStore(t)) })
	t.Run("events", func(t *testing.T) { testEvents(t, newStore(t)) })
}

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// User builds a user fixture with the given id and username.
func User(id, username string) models.User {
	return models.User{
		ID:           id,
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash-" + id,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func mustUser(t *testing.T, s *repository.Store, id, username string) models.User {
	t.Helper()
	u, err := s.Users.Create(context.Background(), User(id, username))
	require.NoError(t, err)
	return u
}

func mustArticle(t *testing.T, s *repository.Store, slug, authorID string) models.Article {
	t.Helper()
	a, err := s.Articles.Create(context.Background(), models.Article{
		Slug:      slug,
		Title:     slug,
		Body:      "body of " + slug,
		TagList:   []string{"go", "dev"},
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return a
}

func testUsers(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	created := mustUser(t, s, "u1", "jake")
	assert.Equal(t, "jake", created.Username)
	assert.Equal(t, "", created.Bio)
	assert.Nil(t, created.Image)

	dupName := User("u2", "jake")
	dupName.Email = "other@example.com"
	_, err := s.Users.Create(ctx, dupName)
	assert.True(t, models.IsKind(err, models.KindConflict))

	dupEmail := User("u3", "someone")
	dupEmail.Email = "JAKE@example.com"
	_, err = s.Users.Create(ctx, dupEmail)
	assert.True(t, models.IsKind(err, models.KindConflict), "email uniqueness is case-insensitive")

	byEmail, err := s.Users.FindByEmail(ctx, "jake@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
	assert.Equal(t, "hash-u1", byEmail.PasswordHash)

	byName, err := s.Users.FindByUsername(ctx, "jake")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)
	assert.True(t, byName.CreatedAt.Equal(now))

	_, err = s.Users.FindByID(ctx, "missing")
	assert.True(t, models.IsKind(err, models.KindNotFound))
	_, err = s.Users.FindByUsername(ctx, "missing")
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func testUserUpdate(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	mustUser(t, s, "u1", "jake")
	mustUser(t, s, "u2", "anna")

	bio := "new bio"
	later := now.Add(time.Hour)
	updated, err := s.Users.Update(ctx, "u1", models.UserPatch{Bio: &bio, UpdatedAt: later})
	require.NoError(t, err)
	assert.Equal(t, "new bio", updated.Bio)
	assert.Equal(t, "jake", updated.Username)
	assert.Equal(t, "jake@example.com", updated.Email)
	assert.Nil(t, updated.Image)

	reread, err := s.Users.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new bio", reread.Bio)
	assert.True(t, reread.UpdatedAt.Equal(later))

	taken := "anna"
	_, err = s.Users.Update(ctx, "u1", models.UserPatch{Username: &taken})
	assert.True(t, models.IsKind(err, models.KindConflict))

	renamed := "jacob"
	_, err = s.Users.Update(ctx, "u1", models.UserPatch{Username: &renamed})
	require.NoError(t, err)
	_, err = s.Users.FindByUsername(ctx, "jake")
	assert.True(t, models.IsKind(err, models.KindNotFound), "old username is released")
	_, err = s.Users.FindByUsername(ctx, "jacob")
	assert.NoError(t, err)

	_, err = s.Users.Update(ctx, "missing", models.UserPatch{Bio: &bio})
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func testConcurrentCreate(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := User(fmt.Sprintf("id-%d", i), "racer")
			u.Email = fmt.Sprintf("racer%d@example.com", i)
			_, err := s.Users.Create(ctx, u)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case models.IsKind(err, models.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

func testArticles(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	mustUser(t, s, "u1", "jake")
	a := mustArticle(t, s, "hello-world", "u1")
	assert.Equal(t, 0, a.FavoritesCount)
	assert.Equal(t, []string{"go", "dev"}, a.TagList)

	_, err := s.Articles.Create(ctx, models.Article{Slug: "hello-world", Title: "x", Body: "y", AuthorID: "u1", CreatedAt: now, UpdatedAt: now})
	assert.True(t, models.IsKind(err, models.KindConflict))

	found, err := s.Articles.FindBySlug(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.AuthorID)
	assert.True(t, found.CreatedAt.Equal(found.UpdatedAt))

	_, err = s.Articles.FindBySlug(ctx, "nope")
	assert.True(t, models.IsKind(err, models.KindNotFound))

	body := "edited"
	later := now.Add(time.Minute)
	updated, err := s.Articles.Update(ctx, "hello-world", models.ArticlePatch{Body: &body, UpdatedAt: later})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Body)
	assert.Equal(t, "hello-world", updated.Title)
	assert.True(t, updated.UpdatedAt.Equal(later))
	assert.True(t, updated.CreatedAt.Equal(now))

	_, err = s.Articles.Update(ctx, "nope", models.ArticlePatch{Body: &body})
	assert.True(t, models.IsKind(err, models.KindNotFound))

	mustArticle(t, s, "second", "u1")
	tags, err := s.Articles.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "go"}, tags)
}

func testFavorites(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	mustUser(t, s, "u1", "jake")
	mustUser(t, s, "u2", "anna")
	mustArticle(t, s, "post", "u1")

	a, err := s.Articles.AddFavorite(ctx, "post", "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, a.FavoritesCount)

	_, err = s.Articles.AddFavorite(ctx, "post", "u2")
	assert.True(t, models.IsKind(err, models.KindConflict))

	fav, err := s.Articles.IsFavorited(ctx, "post", "u2")
	require.NoError(t, err)
	assert.True(t, fav)

	a, err = s.Articles.RemoveFavorite(ctx, "post", "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, a.FavoritesCount)

	_, err = s.Articles.RemoveFavorite(ctx, "post", "u2")
	assert.True(t, models.IsKind(err, models.KindNotFound))

	_, err = s.Articles.AddFavorite(ctx, "missing", "u2")
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func testComments(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	mustUser(t, s, "u1", "jake")
	mustArticle(t, s, "post", "u1")

	c1, err := s.Comments.Create(ctx, models.Comment{ArticleSlug: "post", AuthorID: "u1", Body: "first", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	c2, err := s.Comments.Create(ctx, models.Comment{ArticleSlug: "post", AuthorID: "u1", Body: "second", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.Greater(t, c2.ID, c1.ID)
	assert.Equal(t, "post", c1.ArticleSlug)

	_, err = s.Comments.Create(ctx, models.Comment{ArticleSlug: "missing", AuthorID: "u1", Body: "x", CreatedAt: now, UpdatedAt: now})
	assert.True(t, models.IsKind(err, models.KindNotFound))

	list, err := s.Comments.ListByArticle(ctx, "post")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Body)
	assert.Equal(t, "second", list[1].Body)

	empty, err := s.Comments.ListByArticle(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testFollows(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	mustUser(t, s, "a", "alice")
	mustUser(t, s, "b", "bob")

	require.NoError(t, s.Follows.AddEdge(ctx, "a", "b"))
	err := s.Follows.AddEdge(ctx, "a", "b")
	assert.True(t, models.IsKind(err, models.KindConflict))

	exists, err := s.Follows.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, exists)
	reverse, err := s.Follows.Exists(ctx, "b", "a")
	require.NoError(t, err)
	assert.False(t, reverse, "edges are directed")

	require.NoError(t, s.Follows.RemoveEdge(ctx, "a", "b"))
	err = s.Follows.RemoveEdge(ctx, "a", "b")
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func testEvents(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Events.Create(ctx, models.Event{
			ID:        fmt.Sprintf("e%d", i),
			Type:      models.EventArticleCreate,
			ActorID:   "u1",
			Actor:     "jake",
			Subject:   "post",
			Message:   "created",
			CreatedAt: now.Add(time.Duration(i) * time.Hour),
		}))
	}

	recent, err := s.Events.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "e2", recent[0].ID)
	assert.Equal(t, "e1", recent[1].ID)

	removed, err := s.Events.DeleteBefore(ctx, now.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	rest, err := s.Events.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "e2", rest[0].ID)
}
