package ws

import (
	"errors"
	"log/slog"
	"time"

	"github.com/V4T54L/mafia/internal/domain/entity"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var errClientClosed = errors.New("ws: client closed")

// Client is one WebSocket connection. It implements entity.Sink, so the
// domain layer can Deliver to it without knowing anything about
// WebSocket framing.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	send chan []byte

	// Session is set once by the handler, right after the domain layer
	// admits this connection (service.SessionRegistry.Connect).
	Session *entity.Session

	logger *slog.Logger

	onMessage    func(*Client, []byte)
	onDisconnect func(*Client)
}

func NewClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger, onMessage func(*Client, []byte), onDisconnect func(*Client)) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, 256),
		logger:       logger,
		onMessage:    onMessage,
		onDisconnect: onDisconnect,
	}
}

// Send implements entity.Sink: it enqueues frame for WritePump. A full
// buffer means the peer isn't draining fast enough; the connection is
// torn down rather than blocking the Engine goroutine.
func (c *Client) Send(frame []byte) error {
	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn("client send buffer full, closing")
		go c.hub.Unregister(c)
		return errClientClosed
	}
}

// ReadPump pumps messages from the websocket connection to onMessage.
func (c *Client) ReadPump() {
	defer func() {
		if c.onDisconnect != nil {
			c.onDisconnect(c)
		}
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}
		if c.onMessage != nil {
			c.onMessage(c, data)
		}
	}
}

// WritePump pumps queued frames to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
