package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin is validated by middleware.WebSocketCORSCheck
	},
}

// Client represents a connected lobby viewer
type Client struct {
	conn         *websocket.Conn
	userID       int
	tournamentID int
	send         chan []byte
}

// Hub maintains the set of active lobby clients per tournament
type Hub struct {
	lobbies map[int]map[*Client]bool // tournamentID -> clients
	mu      sync.RWMutex
}

// LobbyHub is the process-wide hub
var LobbyHub = NewHub()

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		lobbies: make(map[int]map[*Client]bool),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lobbies[c.tournamentID] == nil {
		h.lobbies[c.tournamentID] = make(map[*Client]bool)
	}
	h.lobbies[c.tournamentID][c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if lobby, exists := h.lobbies[c.tournamentID]; exists {
		if lobby[c] {
			delete(lobby, c)
			close(c.send)
		}
		if len(lobby) == 0 {
			delete(h.lobbies, c.tournamentID)
		}
	}
}

// BroadcastToLobby sends a message to every client watching a tournament
func (h *Hub) BroadcastToLobby(tournamentID int, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if lobby, exists := h.lobbies[tournamentID]; exists {
		for client := range lobby {
			select {
			case client.send <- data:
			default:
				// Client's buffer is full
				log.Printf("Client send buffer full for user %d in lobby %d, dropping message", client.userID, tournamentID)
			}
		}
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error for user %d: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("WebSocket ping error for user %d: %v", c.userID, err)
				return
			}
		}
	}
}

// readPump drains inbound frames so control messages are processed and
// disconnects are detected
func (c *Client) readPump() {
	defer func() {
		LobbyHub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
