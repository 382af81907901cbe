package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
)

// Client is one upgraded connection. Connections subscribed to a room carry
// its code; feed subscribers leave RoomCode empty.
type Client struct {
	conn     *connWrapper
	Message  chan *WSMessage
	ID       string `json:"id"`
	RoomCode string `json:"roomCode,omitempty"`

	closeOnce sync.Once
	closed    chan struct{}
	logger    *zap.SugaredLogger
}

func NewClient(conn *websocket.Conn, id, roomCode string, logger *zap.SugaredLogger) *Client {
	return &Client{
		conn:     newConnWrapper(conn),
		Message:  make(chan *WSMessage, 64),
		ID:       id,
		RoomCode: roomCode,
		closed:   make(chan struct{}),
		logger:   logger,
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Closed signals when the connection has gone away; the owning handler uses
// it to tear down the room session.
func (c *Client) Closed() <-chan struct{} {
	return c.closed
}

// ReadPump drains the connection for pong frames and close notifications.
// Clients never issue commands over the socket; those go through HTTP.
func (c *Client) ReadPump(core *Core) {
	defer func() {
		core.Unregister() <- c
		c.Close()
	}()

	c.conn.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))

	c.conn.conn.SetPongHandler(func(string) error {
		_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warnw("ws read error", "client", c.ID, "error", err)
			}
			return
		}
	}
}

// WritePump flushes queued messages and keeps the connection alive with
// pings. It exits when the message channel closes or a write fails.
func (c *Client) WritePump() {
	defer c.Close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.Message:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Warnw("ws write error", "client", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}

// Send queues a message, dropping it if the client cannot keep up.
func (c *Client) Send(msg *WSMessage) {
	if c.IsClosed() {
		return
	}

	select {
	case c.Message <- msg:
	default:
		c.logger.Warnw("client buffer full, dropping message", "client", c.ID, "type", msg.Type)
	}
}
