package websocket

import (
	"encoding/json"
	"strings"

	"github.com/isdelr/quill-be/internal/models"
)

// Actions exchanged with clients.
const (
	ActionEvent      = "event"
	ActionSubscribe  = "subscribe"
	ActionSubscribed = "subscribed"
	ActionError      = "error"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string          `json:"action"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outgoing struct {
	Action  string `json:"action"`
	Topic   string `json:"topic,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// ValidTopic reports whether topic is "global" or "article:<slug>".
func ValidTopic(topic string) bool {
	if topic == "global" {
		return true
	}
	slug, ok := strings.CutPrefix(topic, "article:")
	return ok && slug != ""
}

// NewEventMessage encodes an activity event published on topic.
func NewEventMessage(topic string, event models.Event) ([]byte, error) {
	return json.Marshal(outgoing{Action: ActionEvent, Topic: topic, Payload: event})
}

// NewSubscribedMessage confirms a topic change.
func NewSubscribedMessage(topic string) []byte {
	data, _ := json.Marshal(outgoing{Action: ActionSubscribed, Topic: topic})
	return data
}

// NewErrorMessage reports a problem with a client request.
func NewErrorMessage(message string) []byte {
	data, _ := json.Marshal(outgoing{Action: ActionError, Payload: map[string]string{"message": message}})
	return data
}
