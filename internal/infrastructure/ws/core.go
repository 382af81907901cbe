package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Core tracks live connections grouped by room code, replaces a stale
// connection when the same player reconnects, and closes everything on
// shutdown. Frames are per-viewer, so the owning handler pushes them with
// Client.Send rather than through a room-wide fan-out.
type Core struct {
	rooms map[string]map[string]*Client
	feed  map[string]*Client

	register   chan *Client
	unregister chan *Client

	upgrader websocket.Upgrader
	logger   *zap.SugaredLogger

	shutdown chan struct{}
	once     sync.Once
}

func NewCore(logger *zap.SugaredLogger) *Core {
	return &Core{
		rooms:      make(map[string]map[string]*Client),
		feed:       make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:   logger,
		shutdown: make(chan struct{}),
	}
}

func (c *Core) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Infow("ws core shutting down")
			c.Shutdown()
			return

		case <-c.shutdown:
			return

		case cl := <-c.register:
			c.add(cl)

		case cl := <-c.unregister:
			c.remove(cl)
		}
	}
}

func (c *Core) add(cl *Client) {
	if cl.RoomCode == "" {
		if existing, ok := c.feed[cl.ID]; ok {
			existing.Close()
		}
		c.feed[cl.ID] = cl
		return
	}

	room, ok := c.rooms[cl.RoomCode]
	if !ok {
		room = make(map[string]*Client)
		c.rooms[cl.RoomCode] = room
	}

	// A reconnect supersedes the previous connection for the same player.
	if existing, ok := room[cl.ID]; ok {
		existing.Close()
	}
	room[cl.ID] = cl
}

func (c *Core) remove(cl *Client) {
	if cl.RoomCode == "" {
		if current, ok := c.feed[cl.ID]; ok && current == cl {
			delete(c.feed, cl.ID)
		}
		return
	}

	room, ok := c.rooms[cl.RoomCode]
	if !ok {
		return
	}

	if current, ok := room[cl.ID]; ok && current == cl {
		delete(room, cl.ID)
		if len(room) == 0 {
			delete(c.rooms, cl.RoomCode)
		}
	}
}

func (c *Core) Register() chan<- *Client {
	return c.register
}

func (c *Core) Unregister() chan<- *Client {
	return c.unregister
}

func (c *Core) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return c.upgrader.Upgrade(w, r, nil)
}

func (c *Core) Shutdown() {
	c.once.Do(func() {
		close(c.shutdown)

		for _, room := range c.rooms {
			for _, cl := range room {
				cl.Close()
			}
		}
		for _, cl := range c.feed {
			cl.Close()
		}
		c.rooms = make(map[string]map[string]*Client)
		c.feed = make(map[string]*Client)
	})
}
