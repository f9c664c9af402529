// Package client implements a headless Isle Conquest client.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"isle-conquest/internal/protocol"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotConnected is returned when sending without a connection.
	ErrNotConnected = errors.New("not connected")
	// ErrSendQueueFull is returned when the outbound queue cannot take more.
	ErrSendQueueFull = errors.New("send queue full")
)

const (
	dialTimeout    = 10 * time.Second
	writeTimeout   = 10 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1 << 20
)

// NetworkClient is a websocket connection to the game server. Inbound
// messages are delivered to OnMessage from a single goroutine.
type NetworkClient struct {
	OnMessage    func(*protocol.Message)
	OnDisconnect func(error) // Not called after Disconnect

	out chan *protocol.Message

	mu   sync.Mutex
	conn *websocket.Conn
	stop context.CancelFunc
	done chan struct{}
}

// NewNetworkClient creates an unconnected client.
func NewNetworkClient() *NetworkClient {
	return &NetworkClient{
		out:  make(chan *protocol.Message, 64),
		done: make(chan struct{}),
	}
}

// WebSocketURL turns a server address into the websocket endpoint URL.
// Addresses with an explicit wss:// scheme use TLS on the default port.
func WebSocketURL(serverAddr string) string {
	addr := strings.TrimSuffix(serverAddr, "/")
	switch {
	case strings.HasPrefix(addr, "wss://"):
		host := strings.TrimPrefix(addr, "wss://")
		if i := strings.LastIndex(host, ":"); i != -1 {
			host = host[:i]
		}
		return "wss://" + host + "/ws"
	case strings.HasPrefix(addr, "ws://"):
		return addr + "/ws"
	default:
		return "ws://" + addr + "/ws"
	}
}

// Connect dials the server. The connection lives until Disconnect, a
// network failure, or the end of ctx.
func (c *NetworkClient) Connect(ctx context.Context, serverAddr string) error {
	url := WebSocketURL(serverAddr)

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	conn.SetReadLimit(maxMessageSize)

	session, stop := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		stop()
		conn.CloseNow()
		return errors.New("already connected")
	}
	c.conn, c.stop, c.done = conn, stop, done
	c.mu.Unlock()

	log.Info().Str("url", url).Msg("Connected")
	go c.writeLoop(session, conn)
	go c.readLoop(session, conn, done)
	return nil
}

// Disconnect closes the connection with a normal close status.
func (c *NetworkClient) Disconnect() {
	c.mu.Lock()
	conn, stop := c.conn, c.stop
	c.conn, c.stop = nil, nil
	c.mu.Unlock()

	if conn == nil {
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
	stop()
}

// IsConnected returns true while a connection is open.
func (c *NetworkClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Done is closed when the current connection ends.
func (c *NetworkClient) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Send queues a message without blocking.
func (c *NetworkClient) Send(msg *protocol.Message) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	select {
	case c.out <- msg:
		return nil
	default:
		return fmt.Errorf("%w: dropping %s", ErrSendQueueFull, msg.Type)
	}
}

// SendPayload builds a message and queues it.
func (c *NetworkClient) SendPayload(msgType protocol.MessageType, payload interface{}) error {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return c.Send(msg)
}

func (c *NetworkClient) readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	var err error
	for {
		var msg protocol.Message
		if err = wsjson.Read(ctx, conn, &msg); err != nil {
			break
		}
		if c.OnMessage != nil {
			c.OnMessage(&msg)
		}
	}
	cancelled := ctx.Err() != nil

	c.mu.Lock()
	dropped := c.conn == conn
	if dropped {
		c.conn = nil
		c.stop()
		c.stop = nil
	}
	c.mu.Unlock()
	close(done)

	if !dropped {
		return
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		err = nil
	}
	if cancelled {
		err = nil
	}
	log.Info().Err(err).Msg("Disconnected")
	if c.OnDisconnect != nil {
		c.OnDisconnect(err)
	}
}

func (c *NetworkClient) writeLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-c.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, msg)
			cancel()
			if err != nil {
				log.Warn().Err(err).Str("type", string(msg.Type)).Msg("Write failed")
				conn.CloseNow()
				return
			}

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				conn.CloseNow()
				return
			}
		}
	}
}
