package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/CageChen/hideme/internal/workspace"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// writeWait bounds how long a broadcast waits on one client
var writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSHandler pushes completed syncs to connected clients
type WSHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler() *WSHandler {
	return &WSHandler{
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWS handles WebSocket upgrade and connection
func (h *WSHandler) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer func() {
		h.removeClient(conn)
		_ = conn.Close()
	}()

	h.addClient(conn)

	// Keep the connection open until the client goes away
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

// OnSync broadcasts one exclusionChange message per synced folder
func (h *WSHandler) OnSync(results []workspace.Result) {
	for _, r := range results {
		h.broadcast(WSMessage{
			Type: "exclusionChange",
			Payload: FolderStatus{
				Path:    r.Folder.Path,
				Alias:   r.Folder.Alias,
				Exclude: r.Set,
			},
		})
	}
}

// ClientCount returns the number of connected clients
func (h *WSHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *WSHandler) addClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

func (h *WSHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

func (h *WSHandler) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		_ = client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			h.removeClient(client)
			_ = client.Close()
		}
	}
}
