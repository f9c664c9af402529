package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Player represents a registered player. The token is the only credential.
type Player struct {
	ID         string
	Token      string
	Name       string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// ErrPlayerNotFound is returned when a player is not found.
var ErrPlayerNotFound = errors.New("player not found")

// MaxNameLength bounds player display names.
const MaxNameLength = 24

// CreatePlayer creates a new player with a generated token.
func (db *DB) CreatePlayer(name string) (*Player, error) {
	name = cleanName(name)
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := time.Now()
	p := &Player{
		ID:         uuid.New().String(),
		Token:      token,
		Name:       name,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if _, err := db.conn.Exec(`INSERT INTO players (`+playerColumns+`) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Token, p.Name, p.CreatedAt, p.LastSeenAt); err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return p, nil
}

const playerColumns = `id, token, name, created_at, last_seen_at`

// GetPlayerByToken finds the player a token belongs to.
func (db *DB) GetPlayerByToken(token string) (*Player, error) {
	return scanPlayer(db.conn.QueryRow(`SELECT `+playerColumns+` FROM players WHERE token = ?`, token))
}

// GetPlayerByID finds a player by ID.
func (db *DB) GetPlayerByID(id string) (*Player, error) {
	return scanPlayer(db.conn.QueryRow(`SELECT `+playerColumns+` FROM players WHERE id = ?`, id))
}

func scanPlayer(row *sql.Row) (*Player, error) {
	p := &Player{}
	err := row.Scan(&p.ID, &p.Token, &p.Name, &p.CreatedAt, &p.LastSeenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan player: %w", err)
	}
	return p, nil
}

// UpdatePlayerName renames a player. The name is cleaned the same way as
// on creation.
func (db *DB) UpdatePlayerName(id, name string) error {
	return db.touchPlayer(`UPDATE players SET name = ? WHERE id = ?`, cleanName(name), id)
}

// UpdatePlayerLastSeen stamps the player's last connection time.
func (db *DB) UpdatePlayerLastSeen(id string) error {
	return db.touchPlayer(`UPDATE players SET last_seen_at = ? WHERE id = ?`, time.Now(), id)
}

func (db *DB) touchPlayer(query string, value any, id string) error {
	res, err := db.conn.Exec(query, value, id)
	if err != nil {
		return fmt.Errorf("update player %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player"
	}
	if r := []rune(name); len(r) > MaxNameLength {
		name = string(r[:MaxNameLength])
	}
	return name
}

// generateToken returns 32 random bytes, hex encoded.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
