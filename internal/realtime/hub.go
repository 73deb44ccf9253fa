package realtime

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/v3/websocket"
	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse/internal/logging"
)

// Hub pushes bus events to connected websocket clients. It subscribes to the
// bus only while at least one client is connected.
type Hub struct {
	register    chan *Client
	unregister  chan *Client
	broadcast   chan []byte
	clientCount chan chan int // For thread-safe client count queries
	clients     map[*Client]struct{}

	bus         *Bus
	unsubscribe func()
}

type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

type Client struct {
	hub  *Hub
	conn wsConn
	send chan []byte
}

type pingTicker interface {
	C() <-chan time.Time
	Stop()
}

var pingTickerFactory = func() pingTicker {
	return &realTicker{time.NewTicker(30 * time.Second)}
}

// NewHub starts a hub fed by bus. A nil bus gives a hub that only relays
// explicit Broadcast calls.
func NewHub(bus *Bus) *Hub {
	h := &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan []byte, 512),
		clientCount: make(chan chan int),
		clients:     make(map[*Client]struct{}),
		bus:         bus,
	}

	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			if len(h.clients) == 1 {
				h.attach()
			}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				_ = client.conn.Close()
				h.detachIfEmpty()
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.detachIfEmpty()
		case response := <-h.clientCount:
			response <- len(h.clients)
		}
	}
}

func (h *Hub) attach() {
	if h.bus == nil || h.unsubscribe != nil {
		return
	}
	h.unsubscribe = h.bus.Subscribe(h.publish)
}

func (h *Hub) detachIfEmpty() {
	if len(h.clients) == 0 && h.unsubscribe != nil {
		h.unsubscribe()
		h.unsubscribe = nil
	}
}

// publish is the bus callback; it must never block the delivering goroutine.
func (h *Hub) publish(ev UpdateEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		logging.L().Warn("failed to marshal realtime event", "kind", ev.Kind, "error", err)
		return
	}
	h.Broadcast(data)
}

func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		logging.L().Warn("dropping realtime payload", "reason", "slow consumers")
	}
}

// GetClientCount returns the number of connected clients in a thread-safe manner
func (h *Hub) GetClientCount() int {
	response := make(chan int)
	h.clientCount <- response
	return <-response
}

func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := &Client{
			hub:  h,
			conn: conn,
			send: make(chan []byte, 512),
		}

		h.register <- client

		go client.writePump()
		client.readPump()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := pingTickerFactory()
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C():
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
