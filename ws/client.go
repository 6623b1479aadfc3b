package ws

import (
	"context"
	"encoding/json"
	"sync"

	"dealvalue_backend/internal/logger"

	"github.com/gorilla/websocket"
)

// Client - одно открытое соединение чата
type Client struct {
	ID      string
	Conn    *websocket.Conn
	Manager *WebSocketManager

	mu     sync.Mutex
	queue  []Frame
	ready  chan struct{}
	done   chan struct{}
	closed bool
}

func newClient(id string, conn *websocket.Conn, manager *WebSocketManager) *Client {
	return &Client{
		ID:      id,
		Conn:    conn,
		Manager: manager,
		ready:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// enqueue никогда не блокирует. После close кадры отбрасываются.
func (c *Client) enqueue(frame Frame) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, frame)
	c.mu.Unlock()

	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// drain забирает все накопленные кадры
func (c *Client) drain() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	frames := c.queue
	c.queue = nil
	return frames
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.queue = nil
	close(c.done)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Manager.Unregister(c)
		c.Conn.Close()
	}()

	for {
		msgType, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read error", "peer_id", c.ID, "error", err.Error())
			}
			return
		}

		logFrame(c.ID, data)
		c.Manager.Broadcast(ctx, Frame{Type: msgType, Data: data})
	}
}

func (c *Client) writePump() {
	defer c.Conn.Close()

	for {
		select {
		case <-c.done:
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-c.ready:
			for _, frame := range c.drain() {
				if err := c.Conn.WriteMessage(frame.Type, frame.Data); err != nil {
					logger.Warn("WebSocket write error", "peer_id", c.ID, "error", err.Error())
					return
				}
			}
		}
	}
}

// logFrame: JSON логируется разобранным, остальное как есть
func logFrame(peerID string, data []byte) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err == nil {
		logger.RelayLog("message", peerID, "payload", parsed)
		return
	}
	logger.RelayLog("message", peerID, "raw", string(data))
}
