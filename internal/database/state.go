package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Move is one player request and the engine's answer, kept for replay.
type Move struct {
	ID        int64
	GameID    string
	PlayerID  string
	Kind      string
	Request   string
	Outcome   string
	CreatedAt time.Time
}

// SaveSnapshot stores the latest match snapshot, replacing the previous one.
func (db *DB) SaveSnapshot(gameID, snapshot, turnPlayerID string, round int) error {
	_, err := db.conn.Exec(`INSERT INTO snapshots (game_id, snapshot, turn_player_id, round, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			snapshot = excluded.snapshot,
			turn_player_id = excluded.turn_player_id,
			round = excluded.round,
			saved_at = excluded.saved_at`,
		gameID, snapshot, turnPlayerID, round, time.Now())
	if err != nil {
		return fmt.Errorf("save snapshot of %s: %w", gameID, err)
	}
	return nil
}

// LoadSnapshot returns the latest snapshot, or "" when none was saved.
func (db *DB) LoadSnapshot(gameID string) (string, error) {
	var snapshot string
	err := db.conn.QueryRow(`SELECT snapshot FROM snapshots WHERE game_id = ?`, gameID).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load snapshot of %s: %w", gameID, err)
	}
	return snapshot, nil
}

// RecordMove appends a move to the game's log.
func (db *DB) RecordMove(gameID, playerID, kind, request, outcome string) error {
	if _, err := db.conn.Exec(`INSERT INTO moves (game_id, player_id, kind, request, outcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, gameID, playerID, kind, request, outcome, time.Now()); err != nil {
		return fmt.Errorf("record %s move: %w", kind, err)
	}
	return nil
}

// Moves returns the game's moves in the order they were made.
func (db *DB) Moves(gameID string) ([]*Move, error) {
	rows, err := db.conn.Query(`SELECT id, game_id, player_id, kind, request, outcome, created_at
		FROM moves WHERE game_id = ? ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("moves of %s: %w", gameID, err)
	}
	defer rows.Close()

	moves := make([]*Move, 0)
	for rows.Next() {
		m := &Move{}
		if err := rows.Scan(&m.ID, &m.GameID, &m.PlayerID, &m.Kind, &m.Request, &m.Outcome, &m.CreatedAt); err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}
