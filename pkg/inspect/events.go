package inspect

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/storectx/pkg/broadcast"
)

// EventMessage is one frame of the /events stream. Value is absent for
// removals.
type EventMessage struct {
	Type  string          `json:"type"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan EventMessage
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// ClientCount returns the number of connected /events clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects every /events client.
func (s *Server) Close() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	if s.name == "" {
		http.Error(w, "backend has no broadcast channel", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan EventMessage, s.sendBuffer),
		done: make(chan struct{}),
	}

	stop := s.bus.Listen(s.name,
		func(key string, value any) {
			raw, err := json.Marshal(value)
			if err != nil {
				return
			}
			s.enqueue(c, EventMessage{Type: broadcast.OpSet, Key: key, Value: raw})
		},
		func(key string) {
			s.enqueue(c, EventMessage{Type: broadcast.OpRemove, Key: key})
		},
	)

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.logger.Debug("events client connected", "client", c.id)

	defer func() {
		stop()
		c.close()
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		s.logger.Debug("events client disconnected", "client", c.id)
	}()

	go s.writeLoop(c)
	s.readLoop(c)
}

// enqueue never blocks the dispatching goroutine; a slow client loses events.
func (s *Server) enqueue(c *client, msg EventMessage) {
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		s.logger.Warn("events client queue full, dropping event",
			"client", c.id,
			"key", msg.Key)
	}
}

// readLoop discards client frames and returns when the connection closes.
func (s *Server) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("events read error", "client", c.id, "error", err)
			}
			return
		}
	}
}

func (s *Server) writeLoop(c *client) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
