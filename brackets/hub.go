package brackets

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocketMessage is the envelope pushed to connected clients.
type WebSocketMessage struct {
	Type          string      `json:"type"`
	Payload       interface{} `json:"payload"`
	TournamentKey string      `json:"tournament_key,omitempty"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256

	RoomAll = "all"
)

func TournamentRoom(tournamentKey string) string { return "tournament_" + tournamentKey }

func ParticipantRoom(participantKey string) string { return "participant_" + participantKey }

type Client struct {
	Hub   *Hub
	Conn  *websocket.Conn
	Send  chan []byte
	Rooms []string

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, rooms ...string) *Client {
	return &Client{Hub: hub, Conn: conn, Send: make(chan []byte, sendBuffer), Rooms: rooms}
}

// deliver drops the message when the client's buffer is full.
func (c *Client) deliver(message []byte) bool {
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

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// Hub fans messages out to websocket clients grouped in rooms.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	logger  *zap.Logger
	done    chan struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger.Named("hub"),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		case client := <-h.Register:
			h.add(client)
		case client := <-h.Unregister:
			h.remove(client)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Join hands client to the running hub. It reports false after the hub stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave removes client; it returns immediately after the hub stopped.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	for _, room := range client.Rooms {
		if _, ok := h.rooms[room]; !ok {
			h.rooms[room] = make(map[*Client]bool)
		}
		h.rooms[room][client] = true
	}
	h.logger.Debug("client registered", zap.Strings("rooms", client.Rooms), zap.Int("clients", len(h.clients)))
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	for _, room := range client.Rooms {
		delete(h.rooms[room], client)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	client.close()
	h.logger.Debug("client unregistered", zap.Strings("rooms", client.Rooms), zap.Int("clients", len(h.clients)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*Client]bool)
	h.rooms = make(map[string]map[*Client]bool)
}

// Broadcast sends message to every connected client.
func (h *Hub) Broadcast(message WebSocketMessage) {
	data, ok := h.marshal(message)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.deliver(data) {
			h.logger.Warn("dropping broadcast for slow client", zap.String("type", message.Type))
		}
	}
}

// SendToParticipant sends message to the connections of a single participant.
func (h *Hub) SendToParticipant(message WebSocketMessage, participantKey string) {
	h.BroadcastToRoom(ParticipantRoom(participantKey), message)
}

func (h *Hub) BroadcastToRoom(roomID string, message WebSocketMessage) {
	data, ok := h.marshal(message)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		h.logger.Debug("no clients in room", zap.String("room", roomID))
		return
	}
	for client := range roomClients {
		if !client.deliver(data) {
			h.logger.Warn("client send buffer full", zap.String("room", roomID))
		}
	}
}

func (h *Hub) marshal(message WebSocketMessage) ([]byte, bool) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("marshal websocket message", zap.String("type", message.Type), zap.Error(err))
		return nil, false
	}
	return data, true
}

// ReadPump drains inbound frames; clients only listen.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Leave(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { return c.Conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Debug("websocket write", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
