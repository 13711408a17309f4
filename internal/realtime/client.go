package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 32
)

const (
	eventRegisterUser = "registerUser"
	eventError        = "error"
)

var (
	ErrClientClosed   = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// frame is the envelope for every message in both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outgoingFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client is one websocket connection. It satisfies presence.Conn.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send queues an event for the write loop. It never blocks: a closed client
// or a full buffer is reported as an error.
func (c *Client) Send(event string, payload any) error {
	data, err := json.Marshal(outgoingFrame{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to encode %s frame: %w", event, err)
	}

	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrSendBufferFull
	}
}

// close asks the write loop to send a close frame and drop the connection.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump handles inbound frames until the peer goes away or the hub shuts
// the connection down.
func (c *Client) readPump() {
	defer c.hub.disconnect(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	var in frame
	if err := json.Unmarshal(message, &in); err != nil {
		c.sendError("malformed frame")
		return
	}

	switch in.Event {
	case eventRegisterUser:
		var raw string
		if err := json.Unmarshal(in.Data, &raw); err != nil {
			c.sendError("registerUser expects a user id string")
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			c.sendError("invalid user id")
			return
		}
		c.hub.registry.Register(userID, c)
		c.hub.logger.Info("user registered for notifications", "user_id", userID)
	default:
		c.sendError(fmt.Sprintf("unknown event %q", in.Event))
	}
}

func (c *Client) sendError(message string) {
	if err := c.Send(eventError, map[string]string{"message": message}); err != nil {
		c.hub.logger.Debug("failed to send error frame", "error", err)
	}
}

// writePump is the only goroutine that writes to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
