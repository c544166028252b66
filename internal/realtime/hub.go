package realtime

import (
	"context"
	"encoding/json"

	"elexon"

	"github.com/rs/zerolog"
)

// Hub manages WebSocket clients and routes progress messages by download id.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// downloadID -> set of subscribed clients
	subscriptions map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscribeMsg
	unsubscribe chan subscribeMsg
	broadcast   chan broadcastMsg
	done        chan struct{}

	logger zerolog.Logger
}

type subscribeMsg struct {
	client     *Client
	downloadID string
}

type broadcastMsg struct {
	downloadID string
	payload    []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan subscribeMsg),
		unsubscribe:   make(chan subscribeMsg),
		broadcast:     make(chan broadcastMsg, 256),
		done:          make(chan struct{}),
		logger:        elexon.Logger,
	}
}

// Publish queues payload for the subscribers of downloadID.
func (h *Hub) Publish(downloadID string, payload []byte) {
	select {
	case h.broadcast <- broadcastMsg{downloadID: downloadID, payload: payload}:
	case <-h.done:
	}
}

// enqueue hands a command to Run, giving up once the hub has stopped.
func enqueue[T any](h *Hub, ch chan T, v T) {
	select {
	case ch <- v:
	case <-h.done:
	}
}

// Run owns the hub state until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug().Int("total", len(h.clients)).Msg("client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.logger.Debug().Int("total", len(h.clients)).Msg("client unregistered")
			}

		case msg := <-h.subscribe:
			if _, ok := h.clients[msg.client]; !ok {
				continue
			}
			if _, ok := h.subscriptions[msg.downloadID]; !ok {
				h.subscriptions[msg.downloadID] = make(map[*Client]bool)
			}
			h.subscriptions[msg.downloadID][msg.client] = true
			h.send(msg.client, ack("subscribed", msg.downloadID))
			h.logger.Debug().
				Str("download", msg.downloadID).
				Int("subscribers", len(h.subscriptions[msg.downloadID])).
				Msg("client subscribed")

		case msg := <-h.unsubscribe:
			if subs, ok := h.subscriptions[msg.downloadID]; ok {
				delete(subs, msg.client)
				if len(subs) == 0 {
					delete(h.subscriptions, msg.downloadID)
				}
			}

		case msg := <-h.broadcast:
			for client := range h.subscriptions[msg.downloadID] {
				h.send(client, msg.payload)
			}
		}
	}
}

// send drops a client whose buffer is full.
func (h *Hub) send(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.logger.Warn().Msg("client buffer full, dropping client")
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	for id, subs := range h.subscriptions {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, id)
		}
	}
}

func ack(kind, downloadID string) []byte {
	data, _ := json.Marshal(outgoingMsg{Type: kind, DownloadID: downloadID})
	return data
}
