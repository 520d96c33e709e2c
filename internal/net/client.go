package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"InkBoard/internal/logging"
	"InkBoard/internal/state"
)

var errQueueFull = errors.New("send queue full")

// Client connects a board to a hub. It persists local changes and delivers
// the hub's stroke feed. Sends never block on the network.
type Client struct {
	ws      *websocket.Conn
	boardID string
	onFeed  func([]*state.Stroke)

	send    chan Message
	done    chan struct{}
	closeMu sync.Mutex
	closed  bool
	err     error
}

// Dial connects to a hub websocket URL and subscribes to boardID. onFeed
// receives every snapshot on the client's read goroutine.
func Dial(ctx context.Context, url, boardID string, onFeed func([]*state.Stroke)) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{
		ws:      ws,
		boardID: boardID,
		onFeed:  onFeed,
		send:    make(chan Message, sendBuffer),
		done:    make(chan struct{}),
	}
	ws.SetReadLimit(maxMessageSize)
	go c.writeLoop()
	go c.readLoop()
	if err := c.enqueue(ctx, Message{Type: MsgSubscribe, BoardID: boardID}); err != nil {
		c.Close()
		return nil, err
	}
	logging.For("client").Info("connected", "url", url, "board", boardID)
	return c, nil
}

// CreateStroke queues a stroke for the hub.
func (c *Client) CreateStroke(ctx context.Context, s *state.Stroke) error {
	return c.enqueue(ctx, Message{Type: MsgCreate, BoardID: s.BoardID, Stroke: s})
}

// DeleteStrokes queues a batch delete.
func (c *Client) DeleteStrokes(ctx context.Context, boardID string, ids []string) error {
	return c.enqueue(ctx, Message{Type: MsgDelete, BoardID: boardID, IDs: ids})
}

func (c *Client) enqueue(ctx context.Context, msg Message) error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return fmt.Errorf("%s: %w", msg.Type, errQueueFull)
	}
}

// Done is closed once the connection has ended.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err reports why the connection ended, after Done is closed.
func (c *Client) Err() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.err
}

// Close ends the connection.
func (c *Client) Close() error {
	c.shutdown(nil)
	return nil
}

func (c *Client) shutdown(err error) {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.err = err
	close(c.send)
}

func (c *Client) readLoop() {
	defer func() {
		c.shutdown(ErrClosed)
		close(c.done)
	}()
	log := logging.For("client")
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("read failed", "err", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn("malformed message", "err", err)
			continue
		}
		switch msg.Type {
		case MsgSnapshot:
			if msg.BoardID == c.boardID && c.onFeed != nil {
				c.onFeed(msg.Strokes)
			}
		case MsgError:
			log.Warn("hub rejected message", "error", msg.Error)
		}
	}
}

func (c *Client) writeLoop() {
	defer c.ws.Close()
	for msg := range c.send {
		data, err := json.Marshal(msg)
		if err != nil {
			logging.For("client").Warn("encode message", "type", msg.Type, "err", err)
			continue
		}
		c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			logging.For("client").Warn("write failed", "err", err)
			return
		}
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
