package session

import (
	"sync"

	"github.com/gorilla/websocket"

	"collabroom/internal/models"
)

// presence is a connection's room membership. The two fields are only ever
// written together, so a client can never hold a display name without a room
// or vice versa.
type presence struct {
	room string
	name string
}

// Client wraps one live WebSocket connection. ID is assigned by the
// transport at upgrade time and is stable for the connection's lifetime.
// The presence state is owned by the dispatcher loop.
type Client struct {
	ID   string
	Conn *websocket.Conn

	state presence

	disconnected sync.Once

	mu   sync.Mutex
	hook func(models.WSFrame)
}

func NewClient(id string, conn *websocket.Conn) *Client { return &Client{ID: id, Conn: conn} }

// Room returns the client's current room id, or "" when not joined.
func (c *Client) Room() string { return c.state.room }

// Name returns the display name supplied at join, or "" when not joined.
func (c *Client) Name() string { return c.state.name }

func (c *Client) setPresence(room, name string) { c.state = presence{room: room, name: name} }

func (c *Client) clearPresence() { c.state = presence{} }

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.WSFrame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(frame models.WSFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.Conn == nil {
		return
	}
	_ = c.Conn.WriteJSON(frame)
}
