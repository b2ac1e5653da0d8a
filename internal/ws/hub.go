package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/obsidianstack/dcrcalc/internal/api"
	"github.com/obsidianstack/dcrcalc/internal/dcr"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// readLimit bounds one incoming frame.
	readLimit = 4096
)

// Event names used in Message.Event.
const (
	EventParams = "params"
	EventResult = "result"
	EventError  = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins; apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event     string      `json:"event"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// ParamsData is the payload of a "params" event.
type ParamsData struct {
	DefaultRampDegrees float64 `json:"default_ramp_degrees"`
	RodRatioEstimate   float64 `json:"rod_ratio_estimate"`
}

// Hub serves live calculations over WebSocket. Each text frame a client
// sends is a CalculateRequest and is answered with a "result" or "error"
// message. Parameter changes are broadcast to every client as "params".
type Hub struct {
	calc    api.Calculator
	invalid api.InvalidCounter

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// New creates a Hub computing with calc. invalid may be nil.
func New(calc api.Calculator, invalid api.InvalidCounter) *Hub {
	return &Hub{
		calc:    calc,
		invalid: invalid,
		clients: make(map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// It sends the active params immediately on connect. Blocks until the
// connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.register(c)
	defer h.unregister(c)

	if data, err := json.Marshal(h.paramsMessage(h.calc.Params())); err == nil {
		c.enqueue(data)
	}

	go c.writePump()
	h.readPump(c) // blocks until connection closes
}

// BroadcastParams sends p to every connected client. Clients whose buffer
// is full are disconnected.
func (h *Hub) BroadcastParams(p dcr.Params) {
	data, err := json.Marshal(h.paramsMessage(p))
	if err != nil {
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(data) {
			h.unregister(c)
		}
	}
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}

func (h *Hub) paramsMessage(p dcr.Params) Message {
	return Message{
		Event: EventParams,
		Data: ParamsData{
			DefaultRampDegrees: p.DefaultRampDegrees,
			RodRatioEstimate:   p.RodRatioEstimate,
		},
	}
}

// handle turns one incoming frame into the reply message.
func (h *Hub) handle(frame []byte) Message {
	reqID := uuid.NewString()

	var req api.CalculateRequest
	dec := json.NewDecoder(bytes.NewReader(frame))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.countInvalid()
		return Message{Event: EventError, RequestID: reqID, Error: "invalid JSON frame: " + err.Error()}
	}

	resp, err := api.Evaluate(h.calc, req)
	if err != nil {
		h.countInvalid()
		if !errors.Is(err, dcr.ErrInvalidInput) && !errors.Is(err, api.ErrUnknownPreset) {
			slog.Error("ws: evaluate failed", "request_id", reqID, "err", err)
		}
		return Message{Event: EventError, RequestID: reqID, Error: err.Error()}
	}
	resp.RequestID = reqID
	return Message{Event: EventResult, RequestID: reqID, Data: resp}
}

func (h *Hub) countInvalid() {
	if h.invalid != nil {
		h.invalid.InvalidInput()
	}
}

// readPump reads calculation requests and queues the replies. It also
// handles pong frames. Blocks until the connection closes.
func (h *Hub) readPump(c *client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		data, err := json.Marshal(h.handle(frame))
		if err != nil {
			slog.Error("ws: encode reply", "err", err)
			continue
		}
		if !c.enqueue(data) {
			// Client is not draining its replies.
			break
		}
	}
}

// enqueue queues data without blocking. It reports false when the client
// is closed or its buffer is full.
func (c *client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
