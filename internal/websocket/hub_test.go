package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/isdelr/quill-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	Action  string       `json:"action"`
	Topic   string       `json:"topic"`
	Payload models.Event `json:"payload"`
}

func runHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func join(t *testing.T, h *Hub, topic string) *Client {
	t.Helper()
	c := NewClient(h, nil, topic)
	require.True(t, c.Join())
	return c
}

func next(t *testing.T, c *Client) received {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg received
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return received{}
	}
}

func assertQuiet(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected message %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishByTopic(t *testing.T) {
	h, _ := runHub(t)
	global := join(t, h, "global")
	hello := join(t, h, "article:hello")
	other := join(t, h, "article:other")

	event := models.Event{ID: "e1", Type: models.EventCommentCreate, Actor: "jake", Subject: "hello"}
	h.Publish("global", event)
	h.Publish("article:hello", event)

	msg := next(t, global)
	assert.Equal(t, ActionEvent, msg.Action)
	assert.Equal(t, "global", msg.Topic)
	assert.Equal(t, "e1", msg.Payload.ID)
	assertQuiet(t, global)

	msg = next(t, hello)
	assert.Equal(t, "article:hello", msg.Topic)
	assert.Equal(t, "jake", msg.Payload.Actor)

	assertQuiet(t, other)
}

func TestHub_Subscribe(t *testing.T) {
	h, _ := runHub(t)
	c := join(t, h, "global")

	h.Subscribe(c, "article:hello")
	msg := next(t, c)
	assert.Equal(t, ActionSubscribed, msg.Action)
	assert.Equal(t, "article:hello", msg.Topic)

	h.Publish("global", models.Event{ID: "g"})
	h.Publish("article:hello", models.Event{ID: "a"})
	msg = next(t, c)
	assert.Equal(t, "a", msg.Payload.ID)
	assertQuiet(t, c)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h, _ := runHub(t)
	c := join(t, h, "global")

	h.leave(c)
	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, _ := runHub(t)
	c := join(t, h, "global")

	for i := 0; i < sendBuffer; i++ {
		h.Publish("global", models.Event{ID: "e"})
	}
	require.Eventually(t, func() bool { return len(c.Send) == sendBuffer }, time.Second, 5*time.Millisecond)
	h.Publish("global", models.Event{ID: "overflow"})

	delivered := 0
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-c.Send:
			if !ok {
				assert.Equal(t, sendBuffer, delivered)
				return
			}
			delivered++
		case <-timeout:
			t.Fatalf("slow client was not dropped, got %d messages", delivered)
		}
	}
}

func TestHub_StopsOnCancel(t *testing.T) {
	h, cancel := runHub(t)
	c := join(t, h, "global")

	cancel()
	<-h.done

	_, ok := <-c.Send
	assert.False(t, ok)

	h.Publish("global", models.Event{ID: "late"})
	assert.False(t, NewClient(h, nil, "global").Join())
}

func TestValidTopic(t *testing.T) {
	assert.True(t, ValidTopic("global"))
	assert.True(t, ValidTopic("article:hello-world"))
	assert.False(t, ValidTopic("article:"))
	assert.False(t, ValidTopic("server:1"))
	assert.False(t, ValidTopic(""))
}

func TestHub_Send(t *testing.T) {
	h, _ := runHub(t)
	a := join(t, h, "global")
	b := join(t, h, "global")

	h.Send(a, NewErrorMessage("nope"))
	msg := next(t, a)
	assert.Equal(t, ActionError, msg.Action)
	assertQuiet(t, b)
}
