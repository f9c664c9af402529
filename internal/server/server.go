// Package server implements the Isle Conquest game server.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"isle-conquest/internal/database"
	"isle-conquest/internal/game"
	"isle-conquest/internal/protocol"
	"isle-conquest/pkg/maps"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Version is reported to clients in the welcome message.
const Version = "0.3.0"

// Config holds server configuration.
type Config struct {
	Addr        string
	DBPath      string
	BoardWidth  int // Default size of generated boards
	BoardHeight int
}

// Server owns the database, the running matches and the connected clients.
type Server struct {
	cfg      Config
	db       *database.DB
	hub      *Hub
	matches  *MatchRegistry
	upgrader websocket.Upgrader
	http     *http.Server
}

// New opens the database and restores every match that was in progress
// when the server last stopped.
func New(cfg Config) (*Server, error) {
	if cfg.BoardWidth == 0 {
		cfg.BoardWidth = game.DefaultWidth
	}
	if cfg.BoardHeight == 0 {
		cfg.BoardHeight = game.DefaultHeight
	}

	if err := maps.LoadAll(); err != nil {
		return nil, fmt.Errorf("load layouts: %w", err)
	}
	db, err := database.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		db:      db,
		matches: NewMatchRegistry(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.hub = NewHub(s)

	if err := s.restoreMatches(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// restoreMatches reloads the snapshot of every started game. A game whose
// snapshot is missing or unreadable is skipped and stays unplayable.
func (s *Server) restoreMatches() error {
	games, err := s.db.ListGames(database.GameStatusStarted)
	if err != nil {
		return fmt.Errorf("list running games: %w", err)
	}

	for _, g := range games {
		m, err := s.loadMatch(g.ID)
		if err != nil {
			log.Warn().Err(err).Str("game", g.ID).Msg("Skipping running game")
			continue
		}
		s.matches.Put(m)
		log.Info().Str("game", g.ID).Int("round", m.Round).Msg("Restored match")
	}
	return nil
}

func (s *Server) loadMatch(gameID string) (*game.Match, error) {
	data, err := s.db.LoadSnapshot(gameID)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, errors.New("no snapshot saved")
	}

	var snap game.MatchSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return game.RestoreMatch(&snap)
}

// Handler returns the HTTP routes: the websocket endpoint, a health check
// and the open game listing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/games", s.handleListGames)
	return mux
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().
		Str("addr", s.cfg.Addr).
		Str("db", s.cfg.DBPath).
		Int("matches", s.matches.Len()).
		Msg("Isle Conquest server listening")

	return s.http.ListenAndServe()
}

// Stop shuts the HTTP server down and closes the database.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if s.db != nil {
		err = errors.Join(err, s.db.Close())
	}
	return err
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	c := NewClient(s.hub, conn)
	s.hub.Register(c)

	go c.WritePump()
	go c.ReadPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": Version,
		"matches": s.matches.Len(),
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	items, err := s.openGames()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list games")
		http.Error(w, "failed to list games", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, protocol.GameListPayload{Games: items})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

// openGames lists the games waiting for players with their host's name.
func (s *Server) openGames() ([]protocol.GameListItem, error) {
	games, err := s.db.ListOpenGames()
	if err != nil {
		return nil, err
	}

	items := make([]protocol.GameListItem, 0, len(games))
	for _, g := range games {
		item := protocol.GameListItem{
			ID:          g.ID,
			Name:        g.Name,
			Status:      string(g.Status),
			PlayerCount: g.Seated,
			MaxPlayers:  g.SeatLimit,
		}
		if host, err := s.db.GetPlayerByID(g.HostID); err == nil {
			item.HostName = host.Name
		}
		items = append(items, item)
	}
	return items, nil
}
