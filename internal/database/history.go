package database

import (
	"fmt"
	"time"
)

// Event is one line of a game's human-readable history.
type Event struct {
	ID         int64
	GameID     string
	Round      int
	PlayerID   string
	PlayerName string
	Kind       string
	Message    string
	CreatedAt  time.Time
}

// Event kinds.
const (
	EventPlayerJoined = "player_joined"
	EventGameStart    = "game_start"
	EventDeploy       = "deploy"
	EventCapture      = "capture"
	EventPass         = "pass"
	EventGameEnd      = "game_end"
)

// AddEvent appends an event to a game's history. playerID and playerName are
// empty for events no player caused.
func (db *DB) AddEvent(gameID string, round int, playerID, playerName, kind, message string) error {
	if _, err := db.conn.Exec(`INSERT INTO events (game_id, round, player_id, player_name, kind, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, gameID, round, playerID, playerName, kind, message, time.Now()); err != nil {
		return fmt.Errorf("add %s event: %w", kind, err)
	}
	return nil
}

// Events returns a game's history, oldest first.
func (db *DB) Events(gameID string) ([]*Event, error) {
	return db.EventsSince(gameID, 0)
}

// EventsSince returns the events recorded after the event with ID afterID.
func (db *DB) EventsSince(gameID string, afterID int64) ([]*Event, error) {
	rows, err := db.conn.Query(`SELECT id, game_id, round, player_id, player_name, kind, message, created_at
		FROM events WHERE game_id = ? AND id > ? ORDER BY id`, gameID, afterID)
	if err != nil {
		return nil, fmt.Errorf("events of %s: %w", gameID, err)
	}
	defer rows.Close()

	events := make([]*Event, 0)
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.GameID, &e.Round, &e.PlayerID, &e.PlayerName, &e.Kind, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
