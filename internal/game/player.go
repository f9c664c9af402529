package game

import (
	"fmt"
	"sort"
)

// PlayerColor represents a player's color.
type PlayerColor string

const (
	ColorOrange PlayerColor = "orange"
	ColorCyan   PlayerColor = "cyan"
	ColorGreen  PlayerColor = "green"
	ColorYellow PlayerColor = "yellow"
	ColorPurple PlayerColor = "purple"
	ColorRed    PlayerColor = "red"
	ColorBlue   PlayerColor = "blue"
)

// AllColors returns all available player colors.
func AllColors() []PlayerColor {
	return []PlayerColor{
		ColorOrange,
		ColorCyan,
		ColorGreen,
		ColorYellow,
		ColorPurple,
		ColorRed,
		ColorBlue,
	}
}

// Player represents a player in the game. A player registers the units it
// owns but never creates or frees them.
type Player struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Color PlayerColor `json:"color"`
	Gold  int         `json:"gold"`

	units map[string]*Unit
}

// NewPlayer creates a new player.
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		units: make(map[string]*Unit),
	}
}

// ReceiveGold adds gold to the player's treasury.
func (p *Player) ReceiveGold(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative gold %d", ErrInvalidArgument, amount)
	}
	p.Gold += amount
	return nil
}

// AddUnit registers u with the player and makes the player its owner.
func (p *Player) AddUnit(u *Unit) {
	if p.units == nil {
		p.units = make(map[string]*Unit)
	}
	p.units[u.ID] = u
	u.Owner = p
}

// RemoveUnit deregisters u. The unit's Owner is left for the caller to reassign.
func (p *Player) RemoveUnit(u *Unit) {
	delete(p.units, u.ID)
}

// HasUnit returns true if u is registered with the player.
func (p *Player) HasUnit(u *Unit) bool {
	if u == nil {
		return false
	}
	owned, ok := p.units[u.ID]
	return ok && owned == u
}

// UnitCount returns the number of units owned.
func (p *Player) UnitCount() int {
	return len(p.units)
}

// Units returns the owned units sorted by ID.
func (p *Player) Units() []*Unit {
	units := make([]*Unit, 0, len(p.units))
	for _, u := range p.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units
}

// Score is the player's gold plus what its units are worth, plus one point
// per unit owned.
func (p *Player) Score() int {
	score := p.Gold
	for _, u := range p.units {
		score += u.Points() + 1
	}
	return score
}
