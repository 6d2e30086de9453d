package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/alanyang/iobos/internal/domain/event"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client serialises writes; gorilla connections allow one concurrent writer.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	mu   sync.Mutex
}

func (cl *client) send(data []byte) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
	return cl.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub pushes prompt events to connected dashboards so they can drop stale
// cached records. The stream is notification-only; clients refetch through the
// authenticated API.
type Hub struct {
	clients map[uuid.UUID]*client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*client),
	}
}

func (h *Hub) Register(rg *gin.RouterGroup) {
	rg.GET("", h.handleWS)
}

func (h *Hub) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	cl := &client{id: uuid.New(), conn: conn}
	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()
	slog.Debug("websocket client connected", "client_id", cl.id)

	defer func() {
		h.mu.Lock()
		delete(h.clients, cl.id)
		h.mu.Unlock()
		conn.Close()
		slog.Debug("websocket client disconnected", "client_id", cl.id)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Broadcast sends e to every connected client.
func (h *Hub) Broadcast(e event.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("websocket broadcast marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()

	for _, cl := range clients {
		if err := cl.send(data); err != nil {
			slog.Warn("websocket write failed", "client_id", cl.id, "error", err)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
