// websocket/hub.go
package websocket

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeImportStatus   MessageType = "IMPORT_STATUS"
	MessageTypeImportProgress MessageType = "IMPORT_PROGRESS"
	MessageTypeQuoteStale     MessageType = "QUOTE_STALE"
	MessageTypeSubscribe      MessageType = "SUBSCRIBE"
	MessageTypeUnsubscribe    MessageType = "UNSUBSCRIBE"
	MessageTypeError          MessageType = "ERROR"
)

const (
	importChannelPrefix = "import:"
	quoteChannelPrefix  = "quote:"
)

// ImportChannel is the channel name carrying status updates for an import.
func ImportChannel(importID uuid.UUID) string {
	return importChannelPrefix + importID.String()
}

// QuoteChannel is the channel name carrying staleness notifications for a quote.
func QuoteChannel(quoteID uuid.UUID) string {
	return quoteChannelPrefix + quoteID.String()
}

// ValidChannelID reports whether a client-supplied channel name is one the
// hub will ever broadcast to: an "import:" or "quote:" prefix followed by
// the entity's UUID.
func ValidChannelID(channelID string) bool {
	var id string
	switch {
	case strings.HasPrefix(channelID, importChannelPrefix):
		id = strings.TrimPrefix(channelID, importChannelPrefix)
	case strings.HasPrefix(channelID, quoteChannelPrefix):
		id = strings.TrimPrefix(channelID, quoteChannelPrefix)
	default:
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

type WebSocketMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
	ChannelID string      `json:"channelId,omitempty"`
}

// Client is one connected frontend session. Channels are the import or
// quote IDs the client wants live updates for.
type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	TenantID uuid.UUID
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan WebSocketMessage
	Channels map[string]bool
	mu       sync.RWMutex
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan WebSocketMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan WebSocketMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.broadcastToAll(message)
		}
	}
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(message WebSocketMessage) {
	h.broadcast <- message
}

// BroadcastToChannel sends a message to clients subscribed to a channel
// (an import or quote ID). Only clients of the given tenant receive it.
func (h *Hub) BroadcastToChannel(tenantID uuid.UUID, channelID string, message WebSocketMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.TenantID != tenantID {
			continue
		}

		client.mu.RLock()
		_, isSubscribed := client.Channels[channelID]
		client.mu.RUnlock()

		if isSubscribed {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// broadcastToAll sends a message to all connected clients
func (h *Hub) broadcastToAll(message WebSocketMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscribeToChannel adds a channel to the client's subscriptions
func (c *Client) SubscribeToChannel(channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Channels == nil {
		c.Channels = make(map[string]bool)
	}
	c.Channels[channelID] = true
}

// UnsubscribeFromChannel removes a channel from the client's subscriptions
func (c *Client) UnsubscribeFromChannel(channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Channels, channelID)
}
