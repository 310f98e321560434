// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/climatrace/internal/broadcast"
	"github.com/tomtom215/climatrace/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendQueueSize  = 256

	// Viewers only receive. Inbound frames beyond this rate close the connection.
	inboundRate  = rate.Limit(5)
	inboundBurst = 20
)

// KindWebSocket is the Subscriber kind of a Client.
const KindWebSocket = "websocket"

var (
	// ErrSubscriberClosed is returned by Push after the client was detached.
	ErrSubscriberClosed = errors.New("websocket: subscriber closed")

	// ErrSlowSubscriber is returned by Push when the send queue is full.
	ErrSlowSubscriber = errors.New("websocket: send queue full")
)

// Client is one websocket viewer.
type Client struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	limiter *rate.Limiter

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

var _ broadcast.Subscriber = (*Client)(nil)

// NewClient wraps an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:      broadcast.NextID(),
		hub:     hub,
		conn:    conn,
		limiter: rate.NewLimiter(inboundRate, inboundBurst),
		send:    make(chan []byte, sendQueueSize),
	}
}

// ID returns the subscriber ID.
func (c *Client) ID() uint64 {
	return c.id
}

// Kind returns KindWebSocket.
func (c *Client) Kind() string {
	return KindWebSocket
}

// Push enqueues payload without blocking.
func (c *Client) Push(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrSubscriberClosed
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSlowSubscriber
	}
}

// Detach closes the send queue; writePump then sends a close frame and exits.
func (c *Client) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Start registers the client and launches its pumps.
func (c *Client) Start() {
	c.hub.Register(c)
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("Failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Uint64("subscriber_id", c.id).Msg("Unexpected websocket close")
			}
			return
		}
		if !c.limiter.Allow() {
			logging.Warn().Uint64("subscriber_id", c.id).Msg("Websocket client exceeded inbound message rate")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "rate limit exceeded"),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logging.Debug().Err(err).Uint64("subscriber_id", c.id).Msg("Websocket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
