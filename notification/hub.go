package notification

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/diantamela/satgas-ppk/models"
)

// Per-connection write limits
const (
	// QueueSize bounds the frames waiting for one connection. A subscriber that falls
	// further behind is dropped.
	QueueSize = 32
	// WriteTimeout bounds a single frame write
	WriteTimeout = 10 * time.Second
)

// Conn is the part of a websocket connection the hub writes to
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

var (
	_ Conn           = (*websocket.Conn)(nil)
	_ writeDeadliner = (*websocket.Conn)(nil)
)

// Message is the frame pushed to subscribers
type Message struct {
	Event string               `json:"event"`
	Data  *models.Notification `json:"data"`
}

// subscriber owns one connection; its writer goroutine is the only one writing to conn
type subscriber struct {
	conn Conn
	send chan Message
}

// Hub keeps the live connections of each user
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[Conn]*subscriber
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[Conn]*subscriber)}
}

// Register subscribes conn to userID's notifications
func (h *Hub) Register(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[Conn]*subscriber)
	}
	if _, ok := h.clients[userID][conn]; ok {
		return
	}
	sub := &subscriber{conn: conn, send: make(chan Message, QueueSize)}
	h.clients[userID][conn] = sub
	go h.write(userID, sub)
}

// Unregister drops conn. Its writer stops and closes the connection.
func (h *Hub) Unregister(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(userID, conn)
}

func (h *Hub) removeLocked(userID string, conn Conn) *subscriber {
	sub, ok := h.clients[userID][conn]
	if !ok {
		return nil
	}
	delete(h.clients[userID], conn)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
	close(sub.send)
	return sub
}

// Connected returns how many connections userID has open
func (h *Hub) Connected(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Publish queues n for every connection of recipientID and returns without waiting for
// the writes. Subscribers whose queue is full are dropped.
func (h *Hub) Publish(recipientID string, n *models.Notification) {
	msg := Message{Event: "new_notification", Data: n}
	var slow []*subscriber

	h.mu.Lock()
	for conn, sub := range h.clients[recipientID] {
		select {
		case sub.send <- msg:
		default:
			slow = append(slow, h.removeLocked(recipientID, conn))
		}
	}
	h.mu.Unlock()

	// closing unblocks a writer stuck on the peer
	for _, sub := range slow {
		zap.S().Warnw("dropping slow websocket subscriber", "user", recipientID)
		_ = sub.conn.Close()
	}
}

func (h *Hub) write(userID string, sub *subscriber) {
	defer sub.conn.Close()
	for msg := range sub.send {
		if d, ok := sub.conn.(writeDeadliner); ok {
			_ = d.SetWriteDeadline(time.Now().Add(WriteTimeout))
		}
		if err := sub.conn.WriteJSON(msg); err != nil {
			zap.S().Warnw("dropping websocket subscriber", "user", userID, "error", err)
			h.Unregister(userID, sub.conn)
			return
		}
	}
}
