package web

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// sendBuffer is how many status messages may queue for one client.
	sendBuffer = 8
	// writeWait bounds a single websocket write.
	writeWait = time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is one websocket connection. Only its writer goroutine writes to
// conn; everyone else hands messages over on send.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// hub tracks websocket clients. broadcast never blocks: a client whose
// queue is full is dropped.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]*client)}
}

// add registers conn, queues the initial message and starts its writer.
func (h *hub) add(conn *websocket.Conn, initial []byte) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	c.send <- initial

	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()

	go h.write(c)
}

// write drains c.send until the hub closes it or a write fails.
func (h *hub) write(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("web: websocket write: %v", err)
			h.remove(c.conn)
			return
		}
	}
}

// remove unregisters conn and closes it. Safe to call more than once.
func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(conn)
}

// drop must be called with mu held.
func (h *hub) drop(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
}

// broadcast queues msg for every client, dropping those that are too far
// behind.
func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("web: websocket client %s too slow, dropping", conn.RemoteAddr())
			h.drop(conn)
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		h.drop(conn)
	}
}
