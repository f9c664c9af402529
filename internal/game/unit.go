package game

import (
	"fmt"

	"github.com/google/uuid"
)

// UnitKind tells workers and armies apart. Only armies fight.
type UnitKind int

const (
	UnitWorker UnitKind = iota
	UnitArmy
)

// String returns the unit kind name.
func (k UnitKind) String() string {
	switch k {
	case UnitArmy:
		return "Army"
	default:
		return "Worker"
	}
}

// Unit is an occupant of the board. Owner and Tile are non-owning
// references; Size is the military strength and only meaningful for armies.
type Unit struct {
	ID    string
	Kind  UnitKind
	Owner *Player
	Tile  *Tile
	Gold  int
	Size  int
}

// NewArmy creates an unowned, unplaced army of the given strength.
func NewArmy(size int) *Unit {
	return &Unit{
		ID:   uuid.New().String(),
		Kind: UnitArmy,
		Size: size,
	}
}

// NewWorker creates an unowned, unplaced worker.
func NewWorker() *Unit {
	return &Unit{
		ID:   uuid.New().String(),
		Kind: UnitWorker,
	}
}

// IsArmy returns true for the combat variant.
func (u *Unit) IsArmy() bool {
	return u.Kind == UnitArmy
}

// ReceiveGold adds gold to the unit.
func (u *Unit) ReceiveGold(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative gold %d", ErrInvalidArgument, amount)
	}
	u.Gold += amount
	return nil
}

// ProvideResource returns the resource of the tile the unit stands on.
func (u *Unit) ProvideResource() (ResourceType, error) {
	if u.Tile == nil {
		return ResourceNone, fmt.Errorf("%w: unit %s is not on the board", ErrIllegalAction, u.ID)
	}
	return u.Tile.Resource()
}

// Points returns what the unit is worth at scoring time.
func (u *Unit) Points() int {
	return u.Gold
}
