package services

import (
	"context"
	"testing"
	"time"

	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_Record(t *testing.T) {
	store := memory.NewStore()
	hub := &recordingBroadcaster{}
	svc := NewEventService(store.Events, hub)
	ctx := context.Background()

	actor := models.User{ID: "u1", Username: "jake"}
	svc.Record(ctx, models.EventCommentCreate, actor, "hello-world", "jake commented", ArticleTopic("hello-world"))

	global := hub.topic(GlobalTopic)
	require.Len(t, global, 1)
	assert.Equal(t, models.EventCommentCreate, global[0].Type)
	assert.Equal(t, "jake", global[0].Actor)
	assert.Equal(t, "u1", global[0].ActorID)
	assert.NotEmpty(t, global[0].ID)
	assert.Len(t, hub.topic("article:hello-world"), 1)

	recent, err := svc.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, global[0].ID, recent[0].ID)
}

func TestEventService_NilBroadcaster(t *testing.T) {
	store := memory.NewStore()
	svc := NewEventService(store.Events, nil)
	ctx := context.Background()

	svc.Record(ctx, models.EventUserRegister, models.User{ID: "u1", Username: "jake"}, "jake", "jake joined")

	recent, err := svc.RecentEvents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestEventService_PruneBefore(t *testing.T) {
	store := memory.NewStore()
	svc := NewEventService(store.Events, nil)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	svc.Record(ctx, models.EventUserRegister, models.User{ID: "u1", Username: "old"}, "old", "old joined")
	svc.now = func() time.Time { return base.Add(48 * time.Hour) }
	svc.Record(ctx, models.EventUserRegister, models.User{ID: "u2", Username: "new"}, "new", "new joined")

	removed, err := svc.PruneBefore(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	recent, err := svc.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].Actor)
}
