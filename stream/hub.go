package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/mpm"
)

// Control actions accepted from clients.
const (
	ActionPause  = "pause"
	ActionResume = "resume"
	ActionReset  = "reset"
	ActionSpeed  = "speed"
)

// Command is a control message sent by a client as JSON.
type Command struct {
	Action string `json:"action"`
	Speed  int    `json:"speed,omitempty"`
}

// Hub upgrades websocket connections and broadcasts binary frames to
// every connected client. A nil Hub is a no-op.
type Hub struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	last    []byte

	commands chan Command

	// Reused by Publish
	vertices []float32
	buf      []byte
}

// NewHub creates a hub with buffer sizes and write timeout from cfg.
func NewHub(cfg config.StreamConfig) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBuffer,
			WriteBufferSize: cfg.WriteBuffer,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		writeTimeout: time.Duration(cfg.WriteTimeout * float64(time.Second)),
		clients:      make(map[*websocket.Conn]*sync.Mutex),
		commands:     make(chan Command, 16),
	}
}

// ServeHTTP upgrades the request and serves the client until it
// disconnects. The most recent frame is sent on connect.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = connMutex
	last := append([]byte(nil), h.last...)
	h.mu.Unlock()
	defer h.remove(conn)

	slog.Info("stream client connected", "remote", r.RemoteAddr)

	if last != nil {
		if err := h.write(conn, connMutex, last); err != nil {
			return
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			slog.Info("stream client disconnected", "remote", r.RemoteAddr)
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			slog.Warn("ignoring malformed command", "remote", r.RemoteAddr, "error", err)
			continue
		}
		select {
		case h.commands <- cmd:
		default:
			slog.Warn("command queue full, dropping", "action", cmd.Action)
		}
	}
}

// Commands returns the queue of client commands.
func (h *Hub) Commands() <-chan Command {
	return h.commands
}

// Publish encodes the particles of s and broadcasts them.
func (h *Hub) Publish(s *mpm.Sim) int {
	if h == nil {
		return 0
	}
	h.vertices = s.AppendVertexData(h.vertices[:0])
	h.buf = AppendFrame(h.buf[:0], s.Steps(), h.vertices)
	return h.Broadcast(h.buf)
}

// Broadcast sends frame as a binary message to every client, dropping
// clients whose write fails. Returns the number of successful sends.
func (h *Hub) Broadcast(frame []byte) int {
	if h == nil {
		return 0
	}

	h.mu.Lock()
	h.last = append(h.last[:0], frame...)
	h.mu.Unlock()

	h.mu.RLock()
	var sent int
	var failed []*websocket.Conn
	for client, mutex := range h.clients {
		if err := h.write(client, mutex, frame); err != nil {
			slog.Warn("stream write failed", "remote", client.RemoteAddr().String(), "error", err)
			failed = append(failed, client)
			continue
		}
		sent++
	}
	h.mu.RUnlock()

	for _, client := range failed {
		client.Close()
		h.remove(client)
	}
	return sent
}

func (h *Hub) write(conn *websocket.Conn, mutex *sync.Mutex, frame []byte) error {
	mutex.Lock()
	defer mutex.Unlock()
	if h.writeTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	}
	return conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
