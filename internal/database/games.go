package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GameStatus is the lifecycle stage of a game.
type GameStatus string

const (
	GameStatusWaiting  GameStatus = "waiting"
	GameStatusStarted  GameStatus = "started"
	GameStatusFinished GameStatus = "finished"
)

// GameSettings are the parameters the board is built from. They are fixed
// when the game is created so a restarted server rebuilds the same board.
type GameSettings struct {
	MaxPlayers int    `json:"max_players"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	LayoutID   string `json:"layout_id,omitempty"`
	Seed       uint64 `json:"seed"`
}

// GameInfo is the summary shown in game listings.
type GameInfo struct {
	ID        string
	Name      string
	Status    GameStatus
	HostID    string
	Seated    int
	SeatLimit int
	CreatedAt time.Time
}

// Game is a game row with its settings.
type Game struct {
	GameInfo
	Settings   GameSettings
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Seat is a player's place in a game.
type Seat struct {
	GameID     string
	PlayerID   string
	PlayerName string
	Seat       int
	Color      string
	JoinedAt   time.Time
}

// Errors returned by the game and seat operations.
var (
	ErrGameNotFound  = errors.New("game not found")
	ErrGameFull      = errors.New("game is full")
	ErrAlreadyInGame = errors.New("already in game")
	ErrGameStarted   = errors.New("game already started")
)

const gameColumns = `g.id, g.name, g.status, g.host_id, g.seat_limit, g.created_at,
	(SELECT COUNT(*) FROM seats s WHERE s.game_id = g.id)`

// CreateGame stores a new game waiting for players. The host is not seated.
func (db *DB) CreateGame(name, hostID string, settings GameSettings) (*Game, error) {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	g := &Game{
		GameInfo: GameInfo{
			ID:        uuid.New().String(),
			Name:      name,
			Status:    GameStatusWaiting,
			HostID:    hostID,
			SeatLimit: settings.MaxPlayers,
			CreatedAt: time.Now(),
		},
		Settings: settings,
	}
	if _, err := db.conn.Exec(
		`INSERT INTO games (id, name, status, host_id, settings, seat_limit, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Status, g.HostID, string(encoded), g.SeatLimit, g.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert game: %w", err)
	}
	return g, nil
}

// GetGame loads a game by ID.
func (db *DB) GetGame(id string) (*Game, error) {
	var (
		g                 Game
		settings          string
		started, finished sql.NullTime
	)
	err := db.conn.QueryRow(`SELECT `+gameColumns+`, g.settings, g.started_at, g.finished_at
		FROM games g WHERE g.id = ?`, id).
		Scan(&g.ID, &g.Name, &g.Status, &g.HostID, &g.SeatLimit, &g.CreatedAt, &g.Seated,
			&settings, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}

	if started.Valid {
		g.StartedAt = &started.Time
	}
	if finished.Valid {
		g.FinishedAt = &finished.Time
	}
	if err := json.Unmarshal([]byte(settings), &g.Settings); err != nil {
		return nil, fmt.Errorf("decode settings of game %s: %w", id, err)
	}
	return &g, nil
}

// ListOpenGames returns the games still waiting for players, newest first.
func (db *DB) ListOpenGames() ([]*GameInfo, error) {
	return db.ListGames(GameStatusWaiting)
}

// ListGames returns the games in status, newest first.
func (db *DB) ListGames(status GameStatus) ([]*GameInfo, error) {
	rows, err := db.conn.Query(`SELECT `+gameColumns+`
		FROM games g WHERE g.status = ? ORDER BY g.created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list %s games: %w", status, err)
	}
	defer rows.Close()

	games := make([]*GameInfo, 0)
	for rows.Next() {
		g := &GameInfo{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Status, &g.HostID, &g.SeatLimit, &g.CreatedAt, &g.Seated); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// TakeSeat seats a player in a waiting game and returns the seat, which is
// the player's position in the turn order.
func (db *DB) TakeSeat(gameID, playerID, color string) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var (
		status        GameStatus
		limit, seated int
		mine          int
	)
	err = tx.QueryRow(`SELECT g.status, g.seat_limit,
			(SELECT COUNT(*) FROM seats WHERE game_id = g.id),
			(SELECT COUNT(*) FROM seats WHERE game_id = g.id AND player_id = ?)
		FROM games g WHERE g.id = ?`, playerID, gameID).Scan(&status, &limit, &seated, &mine)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, ErrGameNotFound
	case err != nil:
		return 0, err
	case status != GameStatusWaiting:
		return 0, ErrGameStarted
	case mine > 0:
		return 0, ErrAlreadyInGame
	case seated >= limit:
		return 0, ErrGameFull
	}

	var seat int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(seat) + 1, 0) FROM seats WHERE game_id = ?`, gameID).Scan(&seat); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`INSERT INTO seats (game_id, player_id, seat, color, joined_at) VALUES (?, ?, ?, ?, ?)`,
		gameID, playerID, seat, color, time.Now()); err != nil {
		return 0, fmt.Errorf("insert seat: %w", err)
	}
	return seat, tx.Commit()
}

// Seats returns a game's seated players in turn order.
func (db *DB) Seats(gameID string) ([]*Seat, error) {
	rows, err := db.conn.Query(`SELECT s.game_id, s.player_id, COALESCE(p.name, ''), s.seat, s.color, s.joined_at
		FROM seats s LEFT JOIN players p ON p.id = s.player_id
		WHERE s.game_id = ? ORDER BY s.seat`, gameID)
	if err != nil {
		return nil, fmt.Errorf("seats of %s: %w", gameID, err)
	}
	defer rows.Close()

	seats := make([]*Seat, 0)
	for rows.Next() {
		s := &Seat{}
		if err := rows.Scan(&s.GameID, &s.PlayerID, &s.PlayerName, &s.Seat, &s.Color, &s.JoinedAt); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// SetGameStatus moves a game to status and stamps the start or finish time.
func (db *DB) SetGameStatus(gameID string, status GameStatus) error {
	column := map[GameStatus]string{
		GameStatusStarted:  "started_at",
		GameStatusFinished: "finished_at",
	}[status]

	query, args := `UPDATE games SET status = ? WHERE id = ?`, []any{status, gameID}
	if column != "" {
		query = `UPDATE games SET status = ?, ` + column + ` = ? WHERE id = ?`
		args = []any{status, time.Now(), gameID}
	}

	res, err := db.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("set status of %s: %w", gameID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrGameNotFound
	}
	return nil
}

// DeleteGame removes a game. Seats, snapshots, moves and events go with it.
func (db *DB) DeleteGame(gameID string) error {
	res, err := db.conn.Exec(`DELETE FROM games WHERE id = ?`, gameID)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", gameID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGameNotFound
	}
	return nil
}
