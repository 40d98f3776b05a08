// Package websocket is the WebSocket transport: it upgrades handshakes, reads client frames
// into the engine and writes the engine's events back out.
package websocket

import (
	"context"
	"edusmarthub/contract"
	"edusmarthub/domain"
	"log/slog"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

// Engine is what the transport needs from the runtime.
type Engine interface {
	Connect(id domain.ConnectionID, identity domain.Identity, sink contract.EventSink)
	Handle(ctx context.Context, id domain.ConnectionID, raw []byte) error
	Disconnect(ctx context.Context, id domain.ConnectionID)
}

type HubConfig struct {
	SendBufferSize int
	// PingPeriod must be shorter than PongWait so a healthy peer always answers in time.
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		SendBufferSize: 256,
		PingPeriod:     54 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 64 * 1024,
	}
}

// Hub keeps track of the live WebSocket connections. Room membership is not its concern:
// every connection is handed to the Engine, which owns rooms and fan-out.
type Hub struct {
	log      *slog.Logger
	engine   Engine
	config   HubConfig
	upgrader ws.Upgrader
	ctx      context.Context
	cancel   context.CancelFunc

	mu          sync.RWMutex
	connections map[domain.ConnectionID]*connection
	wg          sync.WaitGroup
}

func NewHub(log *slog.Logger, engine Engine, config HubConfig) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		log:    log,
		engine: engine,
		config: config,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Identity is established upstream of this service; origins are not restricted here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ctx:         ctx,
		cancel:      cancel,
		connections: make(map[domain.ConnectionID]*connection),
	}
}

// IdentityFromRequest reads the handshake identity from the query string:
// user_id and role are required, name defaults to the user id.
// Both must be valid UTF-8 since they end up in persisted records.
func IdentityFromRequest(r *http.Request) (domain.Identity, error) {
	q := r.URL.Query()
	userID := q.Get("user_id")
	if userID == "" {
		return domain.Identity{}, errMissingUser
	}
	if !utf8.ValidString(userID) || !utf8.ValidString(q.Get("name")) {
		return domain.Identity{}, errInvalidIdentity
	}
	role, err := domain.ParseRole(q.Get("role"))
	if err != nil {
		return domain.Identity{}, err
	}
	name := q.Get("name")
	if name == "" {
		name = userID
	}
	return domain.Identity{UserID: userID, Name: name, Role: role}, nil
}

// ServeWS upgrades the request and starts the pumps of the new connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, err := IdentityFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if h.ctx.Err() != nil {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade failed", "error", err)
		return
	}

	c := &connection{
		id:       domain.ConnectionID(uuid.NewString()),
		identity: identity,
		conn:     conn,
		sink:     NewSink(h.config.SendBufferSize),
		hub:      h,
	}
	h.add(c)
	h.engine.Connect(c.id, identity, c.sink)

	h.wg.Add(2)
	go c.writePump()
	go c.readPump()

	h.log.Debug("WebSocket connection established",
		"connection_id", c.id, "user_id", identity.UserID, "role", identity.Role)
}

func (h *Hub) add(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c.id] = c
}

// remove reports whether the connection was still tracked, so cleanup runs once.
func (h *Hub) remove(c *connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c.id]; !ok {
		return false
	}
	delete(h.connections, c.id)
	return true
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Close disconnects every connection and waits for their pumps to return.
func (h *Hub) Close() {
	h.cancel()

	h.mu.RLock()
	conns := make([]*connection, 0, len(h.connections))
	for _, c := range h.connections {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.conn.Close()
	}
	h.wg.Wait()
	h.log.Info("WebSocket hub stopped")
}
