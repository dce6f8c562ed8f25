package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientConnection is one websocket subscriber on a booking channel. The
// mutex guards Send against the race between a broadcast dropping a slow
// consumer and the unregister path closing the channel.
type ClientConnection struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	UserID    uint
	BookingID uint

	mu     sync.Mutex
	closed bool
}

// trySend queues a message without blocking. It reports false when the
// client is closed or its buffer is full.
func (c *ClientConnection) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

// closeSend closes the client's channel exactly once, no matter how many
// paths race to drop the client.
func (c *ClientConnection) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Hub tracks the subscribers of each booking_<id> channel and fans
// persisted messages out to them.
type Hub struct {
	Register   chan *ClientConnection
	Unregister chan *ClientConnection

	mu       sync.RWMutex
	channels map[uint]map[*ClientConnection]bool
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *ClientConnection),
		Unregister: make(chan *ClientConnection),
		channels:   make(map[uint]map[*ClientConnection]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.channels[client.BookingID] == nil {
				h.channels[client.BookingID] = make(map[*ClientConnection]bool)
			}
			h.channels[client.BookingID][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if subscribers, ok := h.channels[client.BookingID]; ok {
				if _, ok := subscribers[client]; ok {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.channels, client.BookingID)
					}
				}
			}
			h.mu.Unlock()
			client.closeSend()
		}
	}
}

// BroadcastToBooking relays a message to every subscriber of the booking's
// channel. Slow consumers are dropped.
func (h *Hub) BroadcastToBooking(bookingID uint, message []byte) {
	h.mu.RLock()
	subscribers := make([]*ClientConnection, 0, len(h.channels[bookingID]))
	for client := range h.channels[bookingID] {
		subscribers = append(subscribers, client)
	}
	h.mu.RUnlock()

	for _, client := range subscribers {
		if client.trySend(message) {
			continue
		}
		h.mu.Lock()
		if subs, ok := h.channels[bookingID]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.channels, bookingID)
			}
		}
		h.mu.Unlock()
		client.closeSend()
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *ClientConnection) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
