package realtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"campus_shuttle/internal/models"
)

const (
	writeWait  = 10 * time.Second
	clientSend = 16
)

// Upgrader configures the websocket handshake. Callers authenticate with a
// token query parameter, so any origin is accepted.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ShuttleEvent is what subscribers receive after a seat or status change.
type ShuttleEvent struct {
	UniversityID  uint   `json:"-"`
	ShuttleID     uint   `json:"shuttle_id"`
	ShuttleNumber string `json:"shuttle_number"`
	Occupancy     int    `json:"occupancy"`
	Capacity      int    `json:"capacity"`
	Active        bool   `json:"active"`
	Event         string `json:"event"`
}

type client struct {
	conn *websocket.Conn
	send chan ShuttleEvent
}

// Hub fans shuttle events out to the websocket clients of one university.
type Hub struct {
	clients   map[uint]map[*client]bool
	broadcast chan ShuttleEvent
	mu        sync.Mutex
	closed    bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 100
	}
	return &Hub{
		clients:   make(map[uint]map[*client]bool),
		broadcast: make(chan ShuttleEvent, buffer),
	}
}

// Run delivers published events until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.Close()
			return
		case ev := <-h.broadcast:
			h.fanOut(ev)
		}
	}
}

func (h *Hub) fanOut(ev ShuttleEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[ev.UniversityID] {
		select {
		case c.send <- ev:
		default:
			logrus.WithFields(logrus.Fields{
				"university_id": ev.UniversityID,
				"conn_ptr":      fmt.Sprintf("%p", c.conn),
			}).Warn("Hub: client is not keeping up, dropping event")
		}
	}
}

// PublishOccupancy queues the shuttle's state for its university. It never
// blocks; when the queue is full the event is dropped.
func (h *Hub) PublishOccupancy(sh models.Shuttle, event string) {
	ev := ShuttleEvent{
		UniversityID:  sh.UniversityID,
		ShuttleID:     sh.ID,
		ShuttleNumber: sh.Number,
		Occupancy:     sh.Occupancy,
		Capacity:      sh.Capacity,
		Active:        sh.Active,
		Event:         event,
	}
	select {
	case h.broadcast <- ev:
	default:
		logrus.WithField("shuttle_id", sh.ID).Warn("Hub: broadcast channel full, dropping event")
	}
}

// Serve registers conn under the university and blocks until the peer goes
// away. Incoming messages are read and discarded.
func (h *Hub) Serve(universityID uint, conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan ShuttleEvent, clientSend)}
	if !h.register(universityID, c) {
		conn.Close()
		return
	}
	go c.writeLoop()

	defer h.unregister(universityID, c)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("university_id", universityID).Debug("Hub: client read failed")
			}
			return
		}
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for ev := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", c.conn)).Warn("Hub: write failed")
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func (h *Hub) register(universityID uint, c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if _, ok := h.clients[universityID]; !ok {
		h.clients[universityID] = make(map[*client]bool)
	}
	h.clients[universityID][c] = true
	logrus.WithFields(logrus.Fields{
		"university_id": universityID,
		"conn_ptr":      fmt.Sprintf("%p", c.conn),
	}).Info("Hub: client registered")
	return true
}

func (h *Hub) unregister(universityID uint, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[universityID]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.clients, universityID)
	}
	logrus.WithField("university_id", universityID).Info("Hub: client unregistered")
}

// Clients reports how many subscribers a university has.
func (h *Hub) Clients(universityID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[universityID])
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for univ, clients := range h.clients {
		for c := range clients {
			close(c.send)
		}
		delete(h.clients, univ)
	}
}
