package handlers

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	ws "github.com/isdelr/quill-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP connections to activity stream subscriptions.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. An empty allowedOrigins list,
// or one containing "*", accepts every origin.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{hub: hub}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Serve handles the WebSocket connection request. The topic query parameter
// selects the initial subscription and defaults to the global feed.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = "global"
	}
	if !ws.ValidTopic(topic) {
		respondMessage(w, r, http.StatusBadRequest, "topic must be global or article:<slug>")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, topic)
	if !client.Join() {
		conn.Close()
		return
	}
	go client.WritePump()
	go client.ReadPump(h.handleIncomingWSMessage)
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Debug().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		h.hub.Send(client, ws.NewErrorMessage("message is not valid JSON"))
		return
	}

	switch msg.Action {
	case ws.ActionSubscribe:
		if !ws.ValidTopic(msg.Topic) {
			h.hub.Send(client, ws.NewErrorMessage("invalid topic: "+msg.Topic))
			return
		}
		h.hub.Subscribe(client, msg.Topic)
	default:
		log.Debug().Str("action", msg.Action).Msg("Unknown websocket action received")
		h.hub.Send(client, ws.NewErrorMessage("unknown action: "+msg.Action))
	}
}

