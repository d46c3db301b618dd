package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wricardo/adc-hub/game/scoring"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Events sent to viewers
const (
	EventSnapshot    = "snapshot"
	EventStateUpdate = "state_update"
	EventDeleted     = "sheet_deleted"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Viewers are read-only second screens; any origin may watch
		return true
	},
}

// Message represents a WebSocket message. Seq is the sheet's action count for
// state messages; a viewer never receives a state older than one it already has.
type Message struct {
	SheetID string              `json:"sheet_id"`
	Seq     int                 `json:"seq"`
	State   *scoring.SheetState `json:"state,omitempty"`
	Event   string              `json:"event,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
}

// Gauge tracks the number of connected viewers
type Gauge interface {
	Inc()
	Dec()
}

// Snapshot returns the current state of a sheet
type Snapshot func() (*scoring.SheetState, error)

// Client represents a WebSocket client watching one scoresheet
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	sheetID string

	// Last state delivered, guarded by hub.mu
	synced  bool
	lastSeq int
}

// Hub maintains the set of active viewers and broadcasts sheet updates to them
type Hub struct {
	// Registered clients by sheet ID
	sheets map[string]map[*Client]bool
	mu     sync.RWMutex

	// Queued events from BroadcastEvent
	broadcast chan *Message

	log   zerolog.Logger
	gauge Gauge
}

// NewHub creates a new WebSocket hub. gauge may be nil.
func NewHub(log zerolog.Logger, gauge Gauge) *Hub {
	return &Hub{
		sheets:    make(map[string]map[*Client]bool),
		broadcast: make(chan *Message, 64),
		log:       log,
		gauge:     gauge,
	}
}

// Run delivers queued events until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to a sheet.
// The viewer is registered before snapshot runs, so no update can fall in
// between; a snapshot older than an update already delivered is skipped.
// snapshot may be nil.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sheetID string, snapshot Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		sheetID: sheetID,
	}
	h.registerClient(client)

	go client.writePump()
	go client.readPump()

	if snapshot == nil {
		return
	}
	state, err := snapshot()
	if err != nil {
		h.log.Warn().Err(err).Str("sheet", sheetID).Msg("websocket snapshot failed")
		h.unregisterClient(client)
		return
	}
	h.sendState(client, &Message{SheetID: sheetID, Seq: state.TotalActions, State: state, Event: EventSnapshot})
}

// BroadcastToSheet sends a sheet state update to every viewer of the sheet
func (h *Hub) BroadcastToSheet(sheetID string, state *scoring.SheetState) {
	if state == nil {
		return
	}
	h.broadcastMessage(&Message{
		SheetID: sheetID,
		Seq:     state.TotalActions,
		State:   state,
		Event:   EventStateUpdate,
	})
}

// BroadcastEvent queues a custom event for every viewer of a sheet.
// The event is dropped when the queue is full.
func (h *Hub) BroadcastEvent(sheetID string, event string, data interface{}) {
	select {
	case h.broadcast <- &Message{SheetID: sheetID, Event: event, Data: data}:
	default:
		h.log.Warn().Str("sheet", sheetID).Str("event", event).Msg("websocket event queue full")
	}
}

// ClientCount returns the number of viewers of a sheet
func (h *Hub) ClientCount(sheetID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sheets[sheetID])
}

// registerClient adds a client to a sheet
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.sheets[client.sheetID] == nil {
		h.sheets[client.sheetID] = make(map[*Client]bool)
	}
	h.sheets[client.sheetID][client] = true
	total := len(h.sheets[client.sheetID])
	h.mu.Unlock()

	if h.gauge != nil {
		h.gauge.Inc()
	}
	h.log.Debug().Str("sheet", client.sheetID).Int("clients", total).Msg("viewer registered")
}

// unregisterClient removes a client from a sheet. It is safe to call twice.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.sheets[client.sheetID]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	close(client.send)
	remaining := len(clients)
	// Clean up empty sheets
	if remaining == 0 {
		delete(h.sheets, client.sheetID)
	}
	h.mu.Unlock()

	if h.gauge != nil {
		h.gauge.Dec()
	}
	h.log.Debug().Str("sheet", client.sheetID).Int("clients", remaining).Msg("viewer unregistered")
}

// broadcastMessage sends a message to all clients of a sheet.
// Clients whose send buffer is full are dropped.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal websocket message")
		return
	}

	var slow []*Client
	h.mu.Lock()
	for client := range h.sheets[message.SheetID] {
		if !h.deliverLocked(client, message, data) {
			slow = append(slow, client)
		}
	}
	h.mu.Unlock()

	for _, client := range slow {
		h.unregisterClient(client)
	}
}

// sendState delivers a state message to one client if it is still registered
func (h *Hub) sendState(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal websocket message")
		return
	}

	h.mu.Lock()
	ok := true
	if h.sheets[client.sheetID][client] {
		ok = h.deliverLocked(client, message, data)
	}
	h.mu.Unlock()

	if !ok {
		h.unregisterClient(client)
	}
}

// deliverLocked queues data for the client unless it is a stale state.
// It reports false when the client's buffer is full. Callers hold h.mu.
func (h *Hub) deliverLocked(client *Client, message *Message, data []byte) bool {
	switch {
	case message.State != nil:
		if client.synced && message.Seq <= client.lastSeq {
			return true
		}
	case message.Event == EventDeleted:
		// A sheet created again under the same ID starts counting from zero
		client.synced = false
	}

	select {
	case client.send <- data:
		if message.State != nil {
			client.synced = true
			client.lastSeq = message.Seq
		}
		return true
	default:
		return false
	}
}

// readPump keeps the connection alive; viewers do not send commands
func (c *Client) readPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Msg("websocket read error")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

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
