package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is how long a single websocket write may take.
	writeWait = 10 * time.Second
	// pongWait is how long we wait for a pong before the read pump gives up.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// sendBuffer is how many pending broadcasts a slow client may queue
	// before it is treated as unresponsive and dropped.
	sendBuffer = 16
)

var (
	errClientBacklogged = errors.New("ws: client send buffer full")
	errClientClosed     = errors.New("ws: client closed")
)

// Client adapts a websocket connection into a hub Observer. Sends go
// through a buffered channel drained by WritePump so a slow connection
// never blocks a broadcast.
type Client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn, send: make(chan []byte, sendBuffer)}
}

// Send queues a message for delivery. It never blocks: when the buffer is
// full the client is considered stuck and an error is returned so the hub
// can drop it. The mutex keeps Send and Close from racing on the channel.
func (c *Client) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClientClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return errClientBacklogged
	}
}

// WritePump drains the send channel onto the connection and keeps the
// connection alive with pings. It returns when the send channel is closed
// or a write fails.
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// ReadPump consumes inbound frames until the peer disconnects. Observers
// are write-only after the auth handshake, so frames are discarded; the
// pump exists to notice disconnects and answer pings.
func (c *Client) ReadPump(onClose func()) {
	defer func() {
		onClose()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close shuts the send channel, which ends the write pump. Safe to call
// more than once: both the read pump's teardown and the hub's drop path
// reach here.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
