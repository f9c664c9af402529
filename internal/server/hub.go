package server

import (
	"sync"

	"isle-conquest/internal/protocol"

	"github.com/rs/zerolog/log"
)

// Hub tracks connected clients and the game room each one is in.
type Hub struct {
	server *Server

	mu      sync.RWMutex
	clients map[*Client]bool
	players map[string]*Client          // player ID -> latest connection
	rooms   map[string]map[*Client]bool // game ID -> clients in it
}

// NewHub creates a hub for server.
func NewHub(server *Server) *Hub {
	return &Hub{
		server:  server,
		clients: make(map[*Client]bool),
		players: make(map[string]*Client),
		rooms:   make(map[string]map[*Client]bool),
	}
}

// Register adds a client and greets it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	msg, _ := protocol.NewMessage(protocol.TypeWelcome, protocol.WelcomePayload{ServerVersion: Version})
	c.Send(msg)
}

// Unregister removes a client from the hub and its room and closes its
// outbound queue. Unregistering twice is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	if c.PlayerID != "" && h.players[c.PlayerID] == c {
		delete(h.players, c.PlayerID)
	}
	h.leave(c)
	h.mu.Unlock()

	if c.PlayerID != "" {
		log.Info().Str("player", c.PlayerID).Str("game", c.GameID).Msg("Player disconnected")
	}
	c.close()
}

// Identify binds a client to a player.
func (h *Hub) Identify(c *Client, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.PlayerID = playerID
	h.players[playerID] = c
}

// Join moves a client into a game's room, leaving any previous one.
func (h *Hub) Join(c *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.GameID != gameID {
		h.leave(c)
	}
	room := h.rooms[gameID]
	if room == nil {
		room = make(map[*Client]bool)
		h.rooms[gameID] = room
	}
	room[c] = true
	c.GameID = gameID
}

// leave drops c from its room. Callers hold h.mu.
func (h *Hub) leave(c *Client) {
	room := h.rooms[c.GameID]
	if room == nil {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.GameID)
	}
}

// Broadcast sends a message to every client in a game's room.
func (h *Hub) Broadcast(gameID string, msgType protocol.MessageType, payload interface{}) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		log.Error().Err(err).Str("game", gameID).Str("type", string(msgType)).Msg("Failed to encode broadcast")
		return
	}

	h.mu.RLock()
	room := make([]*Client, 0, len(h.rooms[gameID]))
	for c := range h.rooms[gameID] {
		room = append(room, c)
	}
	h.mu.RUnlock()

	// Send may unregister a stalled client, which takes h.mu.
	for _, c := range room {
		c.Send(msg)
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients in a game's room.
func (h *Hub) RoomSize(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}
