// Package game contains the core game logic for Isle Conquest.
// This package is shared between client and server.
package game

import "fmt"

// Player count limits for a match.
const (
	MinPlayers = 2
	MaxPlayers = 7
)

// Match holds a board and the players taking turns on it.
// It is not safe for concurrent use; callers serialise actions.
type Match struct {
	ID          string
	Board       *Board
	Players     map[string]*Player
	PlayerOrder []string
	Turn        int
	Round       int
	Over        bool
}

// NewMatch creates a match. Players act in the order given and are
// assigned colors in that order.
func NewMatch(id string, board *Board, players []*Player) (*Match, error) {
	if board == nil {
		return nil, fmt.Errorf("%w: nil board", ErrInvalidArgument)
	}
	if len(players) < MinPlayers {
		return nil, fmt.Errorf("%w: need at least %d players", ErrInvalidArgument, MinPlayers)
	}
	if len(players) > MaxPlayers {
		return nil, fmt.Errorf("%w: max %d players", ErrInvalidArgument, MaxPlayers)
	}

	m := &Match{
		ID:          id,
		Board:       board,
		Players:     make(map[string]*Player, len(players)),
		PlayerOrder: make([]string, 0, len(players)),
		Round:       1,
	}
	colors := AllColors()
	for i, p := range players {
		if _, dup := m.Players[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate player %s", ErrInvalidArgument, p.ID)
		}
		if p.Color == "" {
			p.Color = colors[i%len(colors)]
		}
		m.Players[p.ID] = p
		m.PlayerOrder = append(m.PlayerOrder, p.ID)
	}
	m.Over = board.IsFull()
	return m, nil
}

// CurrentPlayer returns the player whose turn it is.
func (m *Match) CurrentPlayer() *Player {
	return m.Players[m.PlayerOrder[m.Turn]]
}

// Deploy deploys a new army of the given size for playerID and, on
// success, passes the turn to the next player.
func (m *Match) Deploy(playerID string, x, y, size int) (*DeployResult, error) {
	p, err := m.actor(playerID)
	if err != nil {
		return nil, err
	}

	result, err := NewDeployAction(x, y, NewArmy(size)).Execute(m.Board, p)
	if err != nil {
		return nil, err
	}

	m.advance()
	return result, nil
}

// Pass ends playerID's turn without acting.
func (m *Match) Pass(playerID string) error {
	if _, err := m.actor(playerID); err != nil {
		return err
	}
	m.advance()
	return nil
}

func (m *Match) actor(playerID string) (*Player, error) {
	if m.Over {
		return nil, ErrMatchOver
	}
	p := m.Players[playerID]
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if m.PlayerOrder[m.Turn] != playerID {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// advance moves to the next player, starting a new round when the order
// wraps, and ends the match once no land is left.
func (m *Match) advance() {
	if m.Board.IsFull() {
		m.Over = true
		return
	}
	m.Turn++
	if m.Turn >= len(m.PlayerOrder) {
		m.Turn = 0
		m.Round++
	}
}

// Winner returns the player with the highest score once the match is over.
// A tie for first place has no winner.
func (m *Match) Winner() *Player {
	if !m.Over {
		return nil
	}

	var best *Player
	tied := false
	for _, id := range m.PlayerOrder {
		p := m.Players[id]
		switch {
		case best == nil || p.Score() > best.Score():
			best = p
			tied = false
		case p.Score() == best.Score():
			tied = true
		}
	}
	if tied {
		return nil
	}
	return best
}
