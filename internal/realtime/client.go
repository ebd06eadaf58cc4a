package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	sendBufferSize = 256
)

// Client is a single WebSocket connection. The user behind it is known from
// the handshake token; the connection only becomes addressable for presence
// and notifications once it announces itself with user-online.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	sendMu   sync.Mutex // guards send against close racing a delivery
	send     chan []byte
	closed   bool
	id       string
	userID   uuid.UUID
	username string
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, username string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		id:       uuid.New().String(),
		userID:   userID,
		username: username,
	}
}

// enqueue queues a frame for delivery without blocking. A connection whose
// buffer is full loses the frame rather than stalling the sender. Delivery
// can race the connection's teardown: a fanout may resolve this client just
// before its disconnect is processed, so the frame is dropped once the
// channel is closed instead of panicking.
func (c *Client) enqueue(payload []byte) {
	if payload == nil {
		return
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.hub.logger.Warn("send buffer full, frame dropped", c.userID, c.id)
	}
}

// closeSend closes the send channel exactly once, after which enqueue becomes
// a no-op. Called only from the hub's teardown path.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump() {
	defer func() {
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
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("unexpected close", c.userID, c.id, err)
			}
			return
		}

		if err := c.dispatch(raw); err != nil {
			c.hub.logger.Error("handle event failed", c.userID, c.id, err,
				zap.ByteString("frame", raw))
		}
	}
}

func (c *Client) dispatch(raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}

	switch env.Event {
	case EventUserOnline:
		return c.hub.handleUserOnline(c, env.Data)
	case EventJoinConversation:
		return c.hub.handleJoinConversation(c, env.Data)
	case EventLeaveConversation:
		c.hub.handleLeaveConversation(c)
		return nil
	case EventSendMessage:
		return c.hub.handleSendMessage(c, env.Data)
	case EventTyping:
		return c.hub.handleTyping(c, env.Data)
	case EventStopTyping:
		return c.hub.handleStopTyping(c, env.Data)
	default:
		c.hub.logger.Warn("unknown event", c.userID, c.id, zap.String("event", env.Event))
		return nil
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
