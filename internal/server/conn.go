package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"isle-conquest/internal/protocol"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 256
)

// Client is one websocket connection. PlayerID is set once the connection
// authenticates and GameID once it joins a game.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan *protocol.Message

	mu     sync.Mutex
	closed bool

	PlayerID string
	GameID   string
	Name     string
}

// NewClient wraps conn. conn may be nil for a client that is only fed
// through Handlers, as in tests.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan *protocol.Message, sendBuffer),
	}
}

// Send queues msg without blocking. A client whose queue is full is
// dropped.
func (c *Client) Send(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		log.Warn().Str("player", c.PlayerID).Msg("Send queue full, dropping client")
		go c.hub.Unregister(c)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump decodes inbound messages and runs them through the handlers in
// arrival order. It returns when the connection fails.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	handlers := NewHandlers(c.hub)
	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if isDecodeError(err) {
				log.Debug().Err(err).Str("player", c.PlayerID).Msg("Invalid message")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("player", c.PlayerID).Msg("Connection lost")
			}
			return
		}
		handlers.Handle(c, &msg)
	}
}

// isDecodeError reports whether err came from a malformed frame rather than
// the connection.
func isDecodeError(err error) bool {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syntax) || errors.As(err, &typ)
}

// WritePump writes queued messages and keeps the connection alive with
// pings. It returns when the queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Str("player", c.PlayerID).Msg("Write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
