package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// Hub maps userID -> connected Clients and circleID -> subscribed users.
// User notifications fan out to every connection a user holds; circle chat
// streams fan out to the users subscribed to that circle.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	circles    map[uint]map[uint]struct{}
	userCircle map[uint]map[uint]struct{}
	totalConns int
	shutdown   chan struct{}
	done       chan struct{}
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		conns:      make(map[uint]map[*Client]struct{}),
		circles:    make(map[uint]map[uint]struct{}),
		userCircle: make(map[uint]map[uint]struct{}),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Register a connection for a given userID. Returns the Client or error if limits exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}

	if len(m) >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++

	return client, nil
}

// UnregisterClient removes a connection. When the user's last connection goes
// away their circle subscriptions are dropped too.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	h.totalConns--
	if len(m) > 0 {
		return
	}
	delete(h.conns, client.UserID)

	if circleIDs, ok := h.userCircle[client.UserID]; ok {
		for circleID := range circleIDs {
			if users, ok := h.circles[circleID]; ok {
				delete(users, client.UserID)
				if len(users) == 0 {
					delete(h.circles, circleID)
				}
			}
		}
		delete(h.userCircle, client.UserID)
	}
}

// JoinCircle subscribes a connected user to a circle's message stream.
// Membership checks happen at the transport layer before this is called.
func (h *Hub) JoinCircle(userID, circleID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[userID]; !ok {
		return
	}
	if h.circles[circleID] == nil {
		h.circles[circleID] = make(map[uint]struct{})
	}
	h.circles[circleID][userID] = struct{}{}

	if h.userCircle[userID] == nil {
		h.userCircle[userID] = make(map[uint]struct{})
	}
	h.userCircle[userID][circleID] = struct{}{}
}

// LeaveCircle unsubscribes a user from a circle's message stream.
func (h *Hub) LeaveCircle(userID, circleID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if users, ok := h.circles[circleID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(h.circles, circleID)
		}
	}
	if circleIDs, ok := h.userCircle[userID]; ok {
		delete(circleIDs, circleID)
	}
}

// IsOnline reports whether a user currently has at least one active connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.conns[userID]
	return ok && len(clients) > 0
}

// IsSubscribed reports whether a user is subscribed to a circle's stream.
func (h *Hub) IsSubscribed(userID, circleID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if users, ok := h.circles[circleID]; ok {
		_, subscribed := users[userID]
		return subscribed
	}
	return false
}

// Broadcast sends message to all connections for userID.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[userID]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// BroadcastCircle sends a message to every user subscribed to the circle.
func (h *Hub) BroadcastCircle(circleID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users, ok := h.circles[circleID]
	if !ok {
		return
	}
	data := []byte(message)
	for userID := range users {
		if clients, ok := h.conns[userID]; ok {
			for c := range clients {
				c.TrySend(data)
			}
		}
	}
}

// StartWiring connects the Notifier to this hub: user and broadcast channels
// go to the matching connections, circle channels to circle subscribers.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	if err := n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == "notifications:broadcast" {
			h.BroadcastAll(payload)
			return
		}
		if !strings.HasPrefix(channel, "notifications:user:") {
			log.Printf("invalid notification channel: %s", channel)
			return
		}
		var userID uint
		if _, err := fmt.Sscanf(channel, "notifications:user:%d", &userID); err != nil {
			log.Printf("invalid notification channel: %s", channel)
			return
		}
		h.Broadcast(userID, payload)
	}); err != nil {
		return err
	}

	return n.StartCircleSubscriber(ctx, func(channel, payload string) {
		circleID := ParseCircleChannel(channel)
		if circleID == 0 {
			log.Printf("invalid circle channel: %s", channel)
			return
		}
		h.BroadcastCircle(circleID, payload)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *Hub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	for userID, userConns := range h.conns {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for user %d: %v", userID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for user %d: %v", userID, err)
			}
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.circles = make(map[uint]map[uint]struct{})
	h.userCircle = make(map[uint]map[uint]struct{})
	h.totalConns = 0
	h.mu.Unlock()

	close(h.done)

	return nil
}
