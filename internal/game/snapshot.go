package game

import (
	"fmt"
	"strings"
)

// MatchSnapshot is the serialisable form of a match, used for persistence
// and for sending state to clients.
type MatchSnapshot struct {
	ID      string           `json:"id"`
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	Rows    []string         `json:"rows"` // Tile kind symbols, one string per row
	Players []PlayerSnapshot `json:"players"`
	Units   []UnitSnapshot   `json:"units"`
	Turn    int              `json:"turn"`
	Round   int              `json:"round"`
	Over    bool             `json:"over"`
}

// PlayerSnapshot is a player's state in a snapshot.
type PlayerSnapshot struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Color PlayerColor `json:"color"`
	Gold  int         `json:"gold"`
}

// UnitSnapshot is a placed unit in a snapshot.
type UnitSnapshot struct {
	ID      string   `json:"id"`
	Kind    UnitKind `json:"kind"`
	OwnerID string   `json:"owner_id"`
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Size    int      `json:"size,omitempty"`
	Gold    int      `json:"gold,omitempty"`
}

// Layout returns the board's tile kinds as one symbol string per row.
func (b *Board) Layout() []string {
	rows := make([]string, b.height)
	for y, row := range b.tiles {
		var sb strings.Builder
		for _, t := range row {
			sb.WriteRune(t.Kind.Symbol())
		}
		rows[y] = sb.String()
	}
	return rows
}

// NewBoardFromLayout parses rows of tile kind symbols into an empty board.
func NewBoardFromLayout(rows []string) (*Board, error) {
	kinds := make([][]TileKind, len(rows))
	for y, row := range rows {
		kinds[y] = make([]TileKind, 0, len(row))
		for x, r := range row {
			kind, ok := KindFromSymbol(r)
			if !ok {
				return nil, fmt.Errorf("%w: unknown tile symbol %q at (%d,%d)", ErrInvalidArgument, r, x, y)
			}
			kinds[y] = append(kinds[y], kind)
		}
	}
	return NewBoardFromKinds(kinds)
}

// Snapshot captures the full match state.
func (m *Match) Snapshot() *MatchSnapshot {
	s := &MatchSnapshot{
		ID:      m.ID,
		Width:   m.Board.Width(),
		Height:  m.Board.Height(),
		Rows:    m.Board.Layout(),
		Players: make([]PlayerSnapshot, 0, len(m.PlayerOrder)),
		Units:   make([]UnitSnapshot, 0),
		Turn:    m.Turn,
		Round:   m.Round,
		Over:    m.Over,
	}

	for _, id := range m.PlayerOrder {
		p := m.Players[id]
		s.Players = append(s.Players, PlayerSnapshot{
			ID:    p.ID,
			Name:  p.Name,
			Color: p.Color,
			Gold:  p.Gold,
		})
	}

	for _, u := range m.Board.Units() {
		us := UnitSnapshot{
			ID:   u.ID,
			Kind: u.Kind,
			X:    u.Tile.X,
			Y:    u.Tile.Y,
			Size: u.Size,
			Gold: u.Gold,
		}
		if u.Owner != nil {
			us.OwnerID = u.Owner.ID
		}
		s.Units = append(s.Units, us)
	}

	return s
}

// RestoreMatch rebuilds a match from a snapshot.
func RestoreMatch(s *MatchSnapshot) (*Match, error) {
	board, err := NewBoardFromLayout(s.Rows)
	if err != nil {
		return nil, err
	}
	if board.Width() != s.Width || board.Height() != s.Height {
		return nil, fmt.Errorf("%w: layout is %dx%d, snapshot says %dx%d",
			ErrInvalidArgument, board.Width(), board.Height(), s.Width, s.Height)
	}

	players := make([]*Player, 0, len(s.Players))
	byID := make(map[string]*Player, len(s.Players))
	for _, ps := range s.Players {
		p := NewPlayer(ps.ID, ps.Name)
		p.Color = ps.Color
		p.Gold = ps.Gold
		players = append(players, p)
		byID[p.ID] = p
	}

	for _, us := range s.Units {
		u := &Unit{ID: us.ID, Kind: us.Kind, Size: us.Size, Gold: us.Gold}
		if err := board.SetUnitAt(us.X, us.Y, u); err != nil {
			return nil, fmt.Errorf("restore unit %s: %w", us.ID, err)
		}
		if owner := byID[us.OwnerID]; owner != nil {
			owner.AddUnit(u)
		} else if us.OwnerID != "" {
			return nil, fmt.Errorf("restore unit %s: %w: %s", us.ID, ErrUnknownPlayer, us.OwnerID)
		}
	}

	m, err := NewMatch(s.ID, board, players)
	if err != nil {
		return nil, err
	}
	if s.Turn < 0 || s.Turn >= len(m.PlayerOrder) {
		return nil, fmt.Errorf("%w: turn %d", ErrInvalidArgument, s.Turn)
	}
	m.Turn = s.Turn
	m.Round = s.Round
	m.Over = s.Over || m.Over
	return m, nil
}
