package websocket

import (
	"context"

	"github.com/isdelr/quill-be/internal/models"
	"github.com/rs/zerolog/log"
)

// outbound is an encoded message addressed to one topic.
type outbound struct {
	topic string
	data  []byte
}

// direct is a reply addressed to a single client.
type direct struct {
	client *Client
	data   []byte
}

// subscription moves a client to a new topic.
type subscription struct {
	client *Client
	topic  string
}

// Hub maintains the set of active clients and fans events out to topic subscribers.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of topics to the set of clients subscribed to it.
	subscriptions map[string]map[*Client]bool

	subscribe chan subscription
	direct    chan direct
	publish   chan outbound
	done      chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		subscribe:     make(chan subscription),
		direct:        make(chan direct),
		publish:       make(chan outbound, 256),
		done:          make(chan struct{}),
	}
}

// Run processes registrations and deliveries until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			log.Info().Msg("Websocket hub stopped")
			return
		case client := <-h.Register:
			h.clients[client] = true
			h.addSubscription(client, client.Topic)
			log.Info().Int("total_clients", len(h.clients)).Str("topic", client.Topic).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; ok {
				h.removeSubscription(sub.client)
				sub.client.Topic = sub.topic
				h.addSubscription(sub.client, sub.topic)
				h.deliver(sub.client, NewSubscribedMessage(sub.topic))
			}
		case d := <-h.direct:
			if _, ok := h.clients[d.client]; ok {
				h.deliver(d.client, d.data)
			}
		case msg := <-h.publish:
			for client := range h.subscriptions[msg.topic] {
				h.deliver(client, msg.data)
			}
		}
	}
}

// Publish encodes event and queues it for every subscriber of topic.
// Events published after the hub stopped are discarded.
func (h *Hub) Publish(topic string, event models.Event) {
	data, err := NewEventMessage(topic, event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to encode event")
		return
	}
	select {
	case h.publish <- outbound{topic: topic, data: data}:
	case <-h.done:
	}
}

// Subscribe moves client to topic. The client receives a confirmation once the move is done.
func (h *Hub) Subscribe(client *Client, topic string) {
	select {
	case h.subscribe <- subscription{client: client, topic: topic}:
	case <-h.done:
	}
}

// Send queues data for one client only.
func (h *Hub) Send(client *Client, data []byte) {
	select {
	case h.direct <- direct{client: client, data: data}:
	case <-h.done:
	}
}

func (h *Hub) join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// deliver drops clients whose send buffer is full.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		log.Warn().Str("topic", client.Topic).Msg("Dropping slow websocket client")
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	h.removeSubscription(client)
	close(client.Send)
}

func (h *Hub) addSubscription(client *Client, topic string) {
	if h.subscriptions[topic] == nil {
		h.subscriptions[topic] = make(map[*Client]bool)
	}
	h.subscriptions[topic][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for topic, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, topic)
			}
		}
	}
}
