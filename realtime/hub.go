package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/gourmet-house/metrics"
	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/utils"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn    *websocket.Conn
	subject string
	send    chan []byte
}

// Hub keeps the connected staff dashboards and pushes booking and
// subscriber events to them. Each client has its own writer goroutine, so
// Broadcast only enqueues; a client whose queue is full is disconnected.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) Register(conn *websocket.Conn, subject string) {
	c := &client{conn: conn, subject: subject, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		return
	}
	h.clients[conn] = c
	go h.writePump(c)
	metrics.WebsocketClients.Set(float64(len(h.clients)))
	utils.InfoLogger.Printf("Realtime client %s connected (%d total)", subject, len(h.clients))
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.remove(conn)
}

// remove expects the mutex to be held.
func (h *Hub) remove(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Warnf("Dropping realtime client %s: %v", c.subject, err)
			h.Unregister(c.conn)
			return
		}
	}
}

func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Notify implements services.Notifier by broadcasting the event.
func (h *Hub) Notify(_ context.Context, event models.Event) error {
	return h.Broadcast(Message{Event: event.Type, Data: event})
}

func (h *Hub) Broadcast(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.Debugf("Broadcasting %s to %d clients", msg.Event, len(h.clients))
	for conn, c := range h.clients {
		select {
		case c.send <- data:
		default:
			metrics.RecordEvent("websocket", "dropped")
			utils.ErrorLogger.Warnf("Realtime client %s is not keeping up, disconnecting", c.subject)
			h.remove(conn)
		}
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		h.remove(conn)
	}
}
