// Package realtime pushes notifications to users connected over websocket.
package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/metrics"
	"github.com/gorilla/websocket"
)

// ErrNoSession means the user has no open connection.
var ErrNoSession = errors.New("realtime: no session for user")

const writeWait = 5 * time.Second

type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(v)
}

// Hub keeps the latest connection of every user.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logging.OrDefault(logger),
	}
}

func (h *Hub) add(userID string, conn *websocket.Conn) *session {
	s := &session{conn: conn}
	h.mu.Lock()
	old, replaced := h.sessions[userID]
	h.sessions[userID] = s
	h.mu.Unlock()
	if replaced {
		_ = old.conn.Close()
	} else {
		metrics.RealtimeSessions.Inc()
	}
	return s
}

// remove drops the session only if it is still the current one for the user.
func (h *Hub) remove(userID string, s *session) {
	h.mu.Lock()
	current, ok := h.sessions[userID]
	if ok && current == s {
		delete(h.sessions, userID)
	}
	h.mu.Unlock()
	if ok && current == s {
		metrics.RealtimeSessions.Dec()
	}
	_ = s.conn.Close()
}

func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[userID]
	return ok
}

// Deliver writes the notification to the recipient's open connection.
func (h *Hub) Deliver(_ context.Context, n domain.Notification) error {
	h.mu.RLock()
	s, ok := h.sessions[n.UserID]
	h.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	if err := s.send(n); err != nil {
		h.logger.Warn("websocket send failed", "user_id", n.UserID, "error", err)
		h.remove(n.UserID, s)
		return err
	}
	return nil
}

// ServeWS upgrades the request and blocks until the client goes away.
// Incoming frames are read and discarded so close and ping frames are seen.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	s := h.add(userID, conn)
	h.logger.Info("websocket connected", "user_id", userID)

	defer func() {
		h.remove(userID, s)
		h.logger.Info("websocket disconnected", "user_id", userID)
	}()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
