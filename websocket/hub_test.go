package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestClient(hub *Hub, tenantID uuid.UUID, channels ...string) *Client {
	client := &Client{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		TenantID: tenantID,
		Hub:      hub,
		Send:     make(chan WebSocketMessage, 8),
		Channels: make(map[string]bool),
	}
	for _, ch := range channels {
		client.Channels[ch] = true
	}
	hub.mu.Lock()
	hub.clients[client] = true
	hub.mu.Unlock()
	return client
}

func receiveOrTimeout(t *testing.T, ch chan WebSocketMessage) (WebSocketMessage, bool) {
	t.Helper()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(200 * time.Millisecond):
		return WebSocketMessage{}, false
	}
}

func TestBroadcastToQuoteChannelDelivers(t *testing.T) {
	hub := NewHub()
	tenantID := uuid.New()
	quoteID := uuid.New()

	channel := QuoteChannel(quoteID)
	if !ValidChannelID(channel) {
		t.Fatalf("QuoteChannel(%s) = %q, rejected by ValidChannelID", quoteID, channel)
	}

	client := newTestClient(hub, tenantID)
	client.SubscribeToChannel(channel)

	hub.BroadcastToChannel(tenantID, channel, WebSocketMessage{
		Type:      MessageTypeQuoteStale,
		Payload:   map[string]interface{}{"quote_id": quoteID.String()},
		Timestamp: time.Now(),
		ChannelID: channel,
	})

	msg, ok := receiveOrTimeout(t, client.Send)
	if !ok {
		t.Fatalf("expected QUOTE_STALE on channel %q, got nothing", channel)
	}
	if msg.Type != MessageTypeQuoteStale {
		t.Errorf("message type = %q, want %q", msg.Type, MessageTypeQuoteStale)
	}
	if msg.ChannelID != channel {
		t.Errorf("channel ID = %q, want %q", msg.ChannelID, channel)
	}
}

func TestBroadcastToImportChannelDelivers(t *testing.T) {
	hub := NewHub()
	tenantID := uuid.New()
	importID := uuid.New()

	channel := ImportChannel(importID)
	client := newTestClient(hub, tenantID, channel)

	hub.BroadcastToChannel(tenantID, channel, WebSocketMessage{
		Type:      MessageTypeImportStatus,
		Timestamp: time.Now(),
		ChannelID: channel,
	})

	if _, ok := receiveOrTimeout(t, client.Send); !ok {
		t.Fatalf("expected IMPORT_STATUS on channel %q, got nothing", channel)
	}
}

func TestBroadcastToChannelSkipsOtherTenantsAndChannels(t *testing.T) {
	hub := NewHub()
	tenantID := uuid.New()
	quoteID := uuid.New()
	channel := QuoteChannel(quoteID)

	otherTenant := newTestClient(hub, uuid.New(), channel)
	otherChannel := newTestClient(hub, tenantID, QuoteChannel(uuid.New()))

	hub.BroadcastToChannel(tenantID, channel, WebSocketMessage{
		Type:      MessageTypeQuoteStale,
		Timestamp: time.Now(),
		ChannelID: channel,
	})

	if _, ok := receiveOrTimeout(t, otherTenant.Send); ok {
		t.Error("client of another tenant received the message")
	}
	if _, ok := receiveOrTimeout(t, otherChannel.Send); ok {
		t.Error("client subscribed to another quote received the message")
	}
}

func TestValidChannelID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		channelID string
		want      bool
	}{
		{"import channel", "import:" + id.String(), true},
		{"quote channel", "quote:" + id.String(), true},
		{"bare uuid", id.String(), false},
		{"unknown prefix", "user:" + id.String(), false},
		{"prefix without uuid", "quote:", false},
		{"prefix with garbage", "import:not-a-uuid", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidChannelID(tt.channelID); got != tt.want {
				t.Errorf("ValidChannelID(%q) = %v, want %v", tt.channelID, got, tt.want)
			}
		})
	}
}
