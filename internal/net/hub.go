package net

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"InkBoard/internal/logging"
	"InkBoard/internal/state"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4 << 20
	sendBuffer     = 64
)

// boardLog is the authoritative stroke list of one board.
type boardLog struct {
	order   []string
	strokes map[string]*state.Stroke
}

func (b *boardLog) list() []*state.Stroke {
	out := make([]*state.Stroke, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.strokes[id])
	}
	return out
}

func (b *boardLog) add(s *state.Stroke) {
	if _, ok := b.strokes[s.ID]; !ok {
		b.order = append(b.order, s.ID)
	}
	b.strokes[s.ID] = s
}

func (b *boardLog) remove(ids []string) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := b.strokes[id]; ok {
			drop[id] = true
			delete(b.strokes, id)
		}
	}
	if len(drop) == 0 {
		return
	}
	kept := b.order[:0]
	for _, id := range b.order {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	b.order = kept
}

// peer is one websocket connection to the hub.
type peer struct {
	hub   *Hub
	ws    *websocket.Conn
	send  chan []byte
	board string
	addr  string
	once  sync.Once
}

// Hub is the host side: it keeps the authoritative strokes of every board
// and pushes a fresh snapshot to subscribers after each change.
type Hub struct {
	upgrader websocket.Upgrader

	mu     sync.Mutex
	boards map[string]*boardLog
	peers  map[*peer]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		boards: make(map[string]*boardLog),
		peers:  make(map[*peer]struct{}),
	}
}

// ServeHTTP upgrades the request and serves the connection until it drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.For("hub").Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	p := &peer{hub: h, ws: ws, send: make(chan []byte, sendBuffer), addr: r.RemoteAddr}
	h.mu.Lock()
	h.peers[p] = struct{}{}
	n := len(h.peers)
	h.mu.Unlock()
	logging.For("hub").Info("client connected", "remote", p.addr, "clients", n)

	go p.writeLoop()
	p.readLoop()
}

// Snapshot returns the current strokes of a board.
func (h *Hub) Snapshot(boardID string) []*state.Stroke {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b, ok := h.boards[boardID]; ok {
		return b.list()
	}
	return nil
}

// Clients returns the number of connected peers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()
	for _, p := range peers {
		p.close()
	}
}

func (h *Hub) board(id string) *boardLog {
	b, ok := h.boards[id]
	if !ok {
		b = &boardLog{strokes: make(map[string]*state.Stroke)}
		h.boards[id] = b
	}
	return b
}

func (h *Hub) handle(p *peer, msg Message) {
	log := logging.For("hub")
	switch msg.Type {
	case MsgSubscribe:
		if msg.BoardID == "" {
			p.reply(Message{Type: MsgError, Error: "subscribe without board_id"})
			return
		}
		h.mu.Lock()
		p.board = msg.BoardID
		snap := Message{Type: MsgSnapshot, BoardID: msg.BoardID, Strokes: h.board(msg.BoardID).list()}
		h.mu.Unlock()
		log.Debug("subscribed", "remote", p.addr, "board", msg.BoardID)
		p.reply(snap)

	case MsgCreate:
		if msg.Stroke == nil || msg.Stroke.ID == "" {
			p.reply(Message{Type: MsgError, Error: "create without stroke id"})
			return
		}
		board := msg.BoardID
		if board == "" {
			board = msg.Stroke.BoardID
		}
		msg.Stroke.BoardID = board
		h.mu.Lock()
		h.board(board).add(msg.Stroke)
		h.mu.Unlock()
		log.Debug("stroke created", "board", board, "id", msg.Stroke.ID, "points", len(msg.Stroke.Points))
		h.broadcast(board)

	case MsgDelete:
		if msg.BoardID == "" || len(msg.IDs) == 0 {
			p.reply(Message{Type: MsgError, Error: "delete needs board_id and ids"})
			return
		}
		h.mu.Lock()
		h.board(msg.BoardID).remove(msg.IDs)
		h.mu.Unlock()
		log.Debug("strokes deleted", "board", msg.BoardID, "count", len(msg.IDs))
		h.broadcast(msg.BoardID)

	default:
		p.reply(Message{Type: MsgError, Error: fmt.Sprintf("unknown message type %q", msg.Type)})
	}
}

// broadcast pushes the board snapshot to its subscribers. A subscriber whose
// queue is full is dropped rather than stalling the hub.
func (h *Hub) broadcast(boardID string) {
	h.mu.Lock()
	data, err := json.Marshal(Message{Type: MsgSnapshot, BoardID: boardID, Strokes: h.board(boardID).list()})
	var slow []*peer
	if err == nil {
		for p := range h.peers {
			if p.board != boardID {
				continue
			}
			select {
			case p.send <- data:
			default:
				slow = append(slow, p)
			}
		}
	}
	h.mu.Unlock()
	if err != nil {
		logging.For("hub").Warn("encode snapshot", "board", boardID, "err", err)
		return
	}
	for _, p := range slow {
		logging.For("hub").Warn("dropping slow client", "remote", p.addr)
		p.close()
	}
}

// reply queues a message for this peer only. Sends happen under the hub
// lock so they never race with close.
func (p *peer) reply(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.For("hub").Warn("encode reply", "err", err)
		return
	}
	p.hub.mu.Lock()
	_, live := p.hub.peers[p]
	full := false
	if live {
		select {
		case p.send <- data:
		default:
			full = true
		}
	}
	p.hub.mu.Unlock()
	if full {
		p.close()
	}
}

func (p *peer) close() {
	p.once.Do(func() {
		p.hub.mu.Lock()
		delete(p.hub.peers, p)
		close(p.send)
		p.hub.mu.Unlock()
		logging.For("hub").Info("client disconnected", "remote", p.addr)
	})
}

func (p *peer) readLoop() {
	defer func() {
		p.close()
		p.ws.Close()
	}()
	p.ws.SetReadLimit(maxMessageSize)
	p.ws.SetReadDeadline(time.Now().Add(pongWait))
	p.ws.SetPongHandler(func(string) error {
		return p.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := p.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.For("hub").Warn("read failed", "remote", p.addr, "err", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.For("hub").Warn("malformed message", "remote", p.addr, "err", err)
			p.reply(Message{Type: MsgError, Error: "malformed message"})
			continue
		}
		p.hub.handle(p, msg)
	}
}

func (p *peer) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.ws.Close()
	}()
	for {
		select {
		case data, ok := <-p.send:
			p.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			p.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
