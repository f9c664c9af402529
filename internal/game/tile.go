package game

import "fmt"

// TileKind classifies a board cell. Ocean is the only non-buildable kind.
type TileKind int

const (
	KindOcean TileKind = iota
	KindPlain
	KindForest
	KindMountain
	KindDesert
)

// LandKinds returns every kind a generated land cell may take.
func LandKinds() []TileKind {
	return []TileKind{KindPlain, KindForest, KindMountain, KindDesert}
}

// String returns the kind name.
func (k TileKind) String() string {
	switch k {
	case KindOcean:
		return "Ocean"
	case KindPlain:
		return "Plain"
	case KindForest:
		return "Forest"
	case KindMountain:
		return "Mountain"
	case KindDesert:
		return "Desert"
	default:
		return "Unknown"
	}
}

// IsBuildable reports whether a unit may stand on tiles of this kind.
func (k TileKind) IsBuildable() bool {
	return k != KindOcean
}

// Resource returns the resource a tile of this kind exposes.
// Ocean and Desert expose none.
func (k TileKind) Resource() ResourceType {
	switch k {
	case KindPlain:
		return ResourceWheat
	case KindForest:
		return ResourceWood
	case KindMountain:
		return ResourceStone
	default:
		return ResourceNone
	}
}

// Symbol returns the single character used in text layouts.
func (k TileKind) Symbol() rune {
	switch k {
	case KindPlain:
		return 'p'
	case KindForest:
		return 'f'
	case KindMountain:
		return 'm'
	case KindDesert:
		return 'd'
	default:
		return '.'
	}
}

// KindFromSymbol is the inverse of TileKind.Symbol.
func KindFromSymbol(r rune) (TileKind, bool) {
	switch r {
	case '.':
		return KindOcean, true
	case 'p':
		return KindPlain, true
	case 'f':
		return KindForest, true
	case 'm':
		return KindMountain, true
	case 'd':
		return KindDesert, true
	}
	return KindOcean, false
}

// Tile is a single cell of the board. It references, but does not own,
// the unit standing on it.
type Tile struct {
	X    int
	Y    int
	Kind TileKind

	unit *Unit
}

func newTile(x, y int, kind TileKind) *Tile {
	return &Tile{X: x, Y: y, Kind: kind}
}

// Resource returns the resource exposed by the tile.
// Reading a resource from an ocean tile is an illegal action.
func (t *Tile) Resource() (ResourceType, error) {
	if !t.Kind.IsBuildable() {
		return ResourceNone, fmt.Errorf("%w: ocean tile (%d,%d) has no resource", ErrIllegalAction, t.X, t.Y)
	}
	return t.Kind.Resource(), nil
}

// Unit returns the occupant, or nil.
func (t *Tile) Unit() *Unit {
	return t.unit
}

// HasUnit returns true if a unit stands on the tile.
func (t *Tile) HasUnit() bool {
	return t.unit != nil
}

// IsBusy returns true if no unit can be put on the tile.
// Ocean tiles are always busy.
func (t *Tile) IsBusy() bool {
	return !t.Kind.IsBuildable() || t.unit != nil
}

// SetUnit puts u on the tile and points u back at it.
func (t *Tile) SetUnit(u *Unit) error {
	if u == nil {
		return fmt.Errorf("%w: nil unit", ErrInvalidArgument)
	}
	if !t.Kind.IsBuildable() {
		return fmt.Errorf("%w: ocean tile (%d,%d) cannot host a unit", ErrIllegalAction, t.X, t.Y)
	}
	if t.unit != nil {
		return fmt.Errorf("%w: (%d,%d) is occupied", ErrIllegalPlacement, t.X, t.Y)
	}
	t.unit = u
	u.Tile = t
	return nil
}
