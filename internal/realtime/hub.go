// internal/realtime/hub.go
//
// Package realtime pushes row changes to connected websocket clients. Each
// event has an owner; it is delivered to that user's connections and to
// every admin connection.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// Event types.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
)

// Tables with a change feed.
const (
	TableEarnings     = "earnings"
	TableChatMessages = "chat_messages"
	TableChatSessions = "chat_sessions"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is one change. Record is the row in the storage convention.
type Event struct {
	Type   string `json:"type"`
	Table  string `json:"table"`
	Record any    `json:"record"`
}

// Publisher fans an event out to its owner and the admins.
type Publisher interface {
	Publish(ctx context.Context, owner uuid.UUID, ev Event) error
}

// Subscription is one registered listener.
type Subscription struct {
	userID uuid.UUID
	admin  bool
	send   chan []byte
}

// C yields encoded events. It is closed on Unregister.
func (s *Subscription) C() <-chan []byte { return s.send }

// Hub tracks every local subscription. It implements Publisher for a single
// instance.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

func (h *Hub) Register(userID uuid.UUID, admin bool) *Subscription {
	s := &Subscription{userID: userID, admin: admin, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) Unregister(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.send)
	}
}

// Count returns the number of live subscriptions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) Publish(_ context.Context, owner uuid.UUID, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.Dispatch(owner, data)
	return nil
}

// Dispatch delivers an encoded event without blocking. A subscriber whose
// buffer is full misses it.
func (h *Hub) Dispatch(owner uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !s.admin && s.userID != owner {
			continue
		}
		select {
		case s.send <- data:
		default:
			logrus.WithField("user_id", s.userID).Warn("Realtime subscriber too slow, event dropped")
		}
	}
}

// ServeWS pumps events to conn until the client goes away.
func (h *Hub) ServeWS(conn *websocket.Conn, userID uuid.UUID, admin bool) {
	sub := h.Register(userID, admin)
	go writePump(conn, sub)
	readPump(conn)
	h.Unregister(sub)
}

// readPump only services control frames; clients do not send events.
func readPump(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(maxMsgSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
