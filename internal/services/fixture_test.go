package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/quill-be/internal/auth"
	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/repository"
	"github.com/isdelr/quill-be/internal/repository/memory"
	"github.com/isdelr/quill-be/internal/validation"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recordingBroadcaster captures published events per topic.
type recordingBroadcaster struct {
	mu        sync.Mutex
	published map[string][]models.Event
}

func (b *recordingBroadcaster) Publish(topic string, event models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.published == nil {
		b.published = make(map[string][]models.Event)
	}
	b.published[topic] = append(b.published[topic], event)
}

func (b *recordingBroadcaster) topic(name string) []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Event(nil), b.published[name]...)
}

type fixture struct {
	store    *repository.Store
	tokens   *auth.JWTManager
	events   *EventService
	hub      *recordingBroadcaster
	users    *UserService
	articles *ArticleService
}

func newFixture(t *testing.T, rules validation.Rules) *fixture {
	t.Helper()
	store := memory.NewStore()
	tokens, err := auth.NewJWTManager("test-secret", "quill-test", time.Hour)
	require.NoError(t, err)

	hub := &recordingBroadcaster{}
	events := NewEventService(store.Events, hub)
	users, err := NewUserService(store, tokens, rules, events, nil, bcrypt.MinCost)
	require.NoError(t, err)

	return &fixture{
		store:    store,
		tokens:   tokens,
		events:   events,
		hub:      hub,
		users:    users,
		articles: NewArticleService(store, rules, events, nil),
	}
}

// register creates username and returns its verified identity.
func (f *fixture) register(t *testing.T, username string) auth.Identity {
	t.Helper()
	au, err := f.users.Register(context.Background(), models.RegisterInput{
		Email:    username + "@example.com",
		Username: username,
		Password: "password-" + username,
	})
	require.NoError(t, err)
	id, err := f.tokens.Verify(au.Token)
	require.NoError(t, err)
	return id
}

func ptr(s string) *string { return &s }
