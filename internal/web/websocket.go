package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now, tighten in production
		return true
	},
}

// Event types broadcast to subscribers of a match.
const (
	EventMove               = "move"
	EventDrawOffer          = "draw_offer"
	EventDrawResponse       = "draw_response"
	EventResignation        = "resignation"
	EventControllerFinished = "controller_finished"
	EventControllerError    = "controller_error"
)

// Event is one update pushed to everyone subscribed to a match.
type Event struct {
	MatchID string      `json:"match_id"`
	Type    string      `json:"type"`
	Data    interface{} `json:"data"`
}

// Hub fans match events out to WebSocket subscribers, keyed by match ID.
type Hub struct {
	matchClients map[string]map[*client]bool

	broadcast  chan Event
	register   chan *client
	unregister chan *client

	mu sync.RWMutex
}

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	matchID string
}

func NewHub() *Hub {
	return &Hub{
		matchClients: make(map[string]map[*client]bool),
		broadcast:    make(chan Event, 64),
		register:     make(chan *client),
		unregister:   make(chan *client),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.matchClients[c.matchID] == nil {
				h.matchClients[c.matchID] = make(map[*client]bool)
			}
			h.matchClients[c.matchID][c] = true
			h.mu.Unlock()

			log.Info().Str("matchID", c.matchID).Msg("Subscriber connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.matchClients[c.matchID]; ok {
				if _, ok := clients[c]; ok {
					delete(clients, c)
					close(c.send)
					if len(clients) == 0 {
						delete(h.matchClients, c.matchID)
					}
				}
			}
			h.mu.Unlock()

			log.Info().Str("matchID", c.matchID).Msg("Subscriber disconnected")

		case event := <-h.broadcast:
			h.mu.RLock()
			clients := h.matchClients[event.MatchID]
			h.mu.RUnlock()

			if clients == nil {
				continue
			}
			message, err := json.Marshal(event)
			if err != nil {
				log.Error().Err(err).Msg("Failed to marshal event")
				continue
			}
			for c := range clients {
				select {
				case c.send <- message:
				default:
					close(c.send)
					h.mu.Lock()
					delete(clients, c)
					h.mu.Unlock()
				}
			}
		}
	}
}

// Broadcast queues an event for every subscriber of its match. Fire and
// forget: a full queue drops the event rather than blocking a move.
func (h *Hub) Broadcast(event Event) {
	select {
	case h.broadcast <- event:
	default:
		log.Warn().Str("matchID", event.MatchID).Str("type", event.Type).Msg("Broadcast channel full, dropping event")
	}
}

// ControllerFinished implements controller.Notifier.
func (h *Hub) ControllerFinished(matchID string, plyCount int) {
	h.Broadcast(Event{
		MatchID: matchID,
		Type:    EventControllerFinished,
		Data:    map[string]int{"ply_count": plyCount},
	})
}

// ControllerError implements controller.Notifier.
func (h *Hub) ControllerError(matchID string, code int) {
	h.Broadcast(Event{
		MatchID: matchID,
		Type:    EventControllerError,
		Data:    map[string]int{"code": code},
	})
}

// SubscribeHandler upgrades the connection and subscribes it to one match's
// event stream.
func (h *Hub) SubscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("game_id")
		if matchID == "" {
			http.Error(w, "Missing game_id parameter", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
			return
		}

		c := &client{
			hub:     h,
			conn:    conn,
			send:    make(chan []byte, 256),
			matchID: matchID,
		}
		h.register <- c

		go c.writePump()
		go c.readPump()
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
