package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect4-engine/internal/domain"
)

const writeWait = 10 * time.Second

// Client is one websocket connection. conn.WriteJSON is not safe for
// concurrent use, so every write goes through mu.
type Client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	gameID string
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Send(message domain.ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err == nil {
		err = c.conn.WriteJSON(message)
	}
	if err != nil {
		log.Debug().
			Err(err).
			Str("component", "ws").
			Str("game_id", c.gameID).
			Str("type", message.Type).
			Msg("failed to write message")
	}
	return err
}

func (c *Client) SendError(message string) error {
	return c.Send(domain.ServerMessage{Type: "error", Message: message})
}

// ConnectionManager keeps at most one live connection per game. Resuming a
// game from a second connection closes the first.
type ConnectionManager struct {
	connections map[string]*Client // gameID → client
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{connections: make(map[string]*Client)}
}

// Attach binds client to gameID, replacing and closing any previous connection.
func (cm *ConnectionManager) Attach(gameID string, client *Client) {
	cm.mu.Lock()
	old, exists := cm.connections[gameID]
	cm.connections[gameID] = client
	cm.mu.Unlock()

	if exists && old != client {
		_ = old.Send(domain.ServerMessage{Type: "force_disconnect", Message: "game opened elsewhere", GameID: gameID})
		old.conn.Close()
	}
}

// RemoveIfMatching drops gameID only while it still points at client, so a
// closing old connection never unregisters its replacement.
func (cm *ConnectionManager) RemoveIfMatching(gameID string, client *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if current, exists := cm.connections[gameID]; exists && current == client {
		delete(cm.connections, gameID)
	}
}

func (cm *ConnectionManager) IsCurrent(gameID string, client *Client) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	current, exists := cm.connections[gameID]
	return exists && current == client
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}
