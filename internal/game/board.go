package game

import "fmt"

// Board dimension limits and defaults.
const (
	MinWidth      = 2
	MinHeight     = 1
	DefaultWidth  = 15
	DefaultHeight = 10
)

// dirs lists orthogonal offsets in adjacency order: up, right, down, left.
var dirs = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Board is the rectangular grid of tiles. Tiles are stored row-major,
// tiles[y][x], and never change kind after construction.
type Board struct {
	width  int
	height int
	tiles  [][]*Tile
}

// NewBoard creates an all-ocean board.
func NewBoard(width, height int) (*Board, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}

	b := &Board{width: width, height: height}
	b.tiles = make([][]*Tile, height)
	for y := range b.tiles {
		b.tiles[y] = make([]*Tile, width)
		for x := range b.tiles[y] {
			b.tiles[y][x] = newTile(x, y, KindOcean)
		}
	}
	return b, nil
}

// NewBoardFromKinds creates a board from a row-major grid of tile kinds.
func NewBoardFromKinds(kinds [][]TileKind) (*Board, error) {
	height := len(kinds)
	width := 0
	if height > 0 {
		width = len(kinds[0])
	}
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}

	b := &Board{width: width, height: height}
	b.tiles = make([][]*Tile, height)
	for y, row := range kinds {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d tiles, want %d", ErrInvalidArgument, y, len(row), width)
		}
		b.tiles[y] = make([]*Tile, width)
		for x, kind := range row {
			b.tiles[y][x] = newTile(x, y, kind)
		}
	}
	return b, nil
}

func checkDimensions(width, height int) error {
	if width < MinWidth {
		return fmt.Errorf("%w: width %d is below %d", ErrInvalidArgument, width, MinWidth)
	}
	if height < MinHeight {
		return fmt.Errorf("%w: height %d is below %d", ErrInvalidArgument, height, MinHeight)
	}
	return nil
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// InBounds checks if coordinates are within board boundaries.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// TileAt returns the tile at (x, y).
func (b *Board) TileAt(x, y int) (*Tile, error) {
	if !b.InBounds(x, y) {
		return nil, unknownLocation(x, y)
	}
	return b.tiles[y][x], nil
}

// AdjacentTiles returns the orthogonal neighbours of (x, y) in the order
// up, right, down, left. Neighbours outside the board are skipped.
func (b *Board) AdjacentTiles(x, y int) ([]*Tile, error) {
	if !b.InBounds(x, y) {
		return nil, unknownLocation(x, y)
	}
	adj := make([]*Tile, 0, len(dirs))
	for _, d := range dirs {
		nx, ny := x+d[0], y+d[1]
		if b.InBounds(nx, ny) {
			adj = append(adj, b.tiles[ny][nx])
		}
	}
	return adj, nil
}

// SetUnitAt puts u on the tile at (x, y).
func (b *Board) SetUnitAt(x, y int, u *Unit) error {
	t, err := b.TileAt(x, y)
	if err != nil {
		return err
	}
	if t.IsBusy() {
		return fmt.Errorf("%w: (%d,%d) is %s", ErrIllegalPlacement, x, y, busyReason(t))
	}
	return t.SetUnit(u)
}

func busyReason(t *Tile) string {
	if !t.Kind.IsBuildable() {
		return "ocean"
	}
	return "occupied"
}

// IsFull returns true when every land tile holds a unit.
func (b *Board) IsFull() bool {
	for _, row := range b.tiles {
		for _, t := range row {
			if !t.IsBusy() {
				return false
			}
		}
	}
	return true
}

// Tiles calls fn for every tile in row-major order.
func (b *Board) Tiles(fn func(t *Tile)) {
	for _, row := range b.tiles {
		for _, t := range row {
			fn(t)
		}
	}
}

// LandCount returns the number of buildable tiles.
func (b *Board) LandCount() int {
	count := 0
	b.Tiles(func(t *Tile) {
		if t.Kind.IsBuildable() {
			count++
		}
	})
	return count
}

// OceanCount returns the number of ocean tiles.
func (b *Board) OceanCount() int {
	return b.width*b.height - b.LandCount()
}

// FreeLandTiles returns the land tiles without an occupant.
func (b *Board) FreeLandTiles() []*Tile {
	free := make([]*Tile, 0)
	b.Tiles(func(t *Tile) {
		if !t.IsBusy() {
			free = append(free, t)
		}
	})
	return free
}

// Units returns every unit on the board in row-major order.
func (b *Board) Units() []*Unit {
	units := make([]*Unit, 0)
	b.Tiles(func(t *Tile) {
		if t.unit != nil {
			units = append(units, t.unit)
		}
	})
	return units
}

// Validate checks the composition rules every playable board satisfies:
// ocean covers at least two thirds of the tiles and no land tile is
// cut off from all other land.
func (b *Board) Validate() error {
	total := b.width * b.height
	if ocean := b.OceanCount(); 3*ocean < 2*total {
		return fmt.Errorf("%w: %d of %d tiles are ocean", ErrInvalidBoard, ocean, total)
	}

	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if !b.tiles[y][x].Kind.IsBuildable() {
				continue
			}
			if !b.hasLandNeighbor(x, y) {
				return fmt.Errorf("%w: land tile (%d,%d) is isolated", ErrInvalidBoard, x, y)
			}
		}
	}
	return nil
}

func (b *Board) hasLandNeighbor(x, y int) bool {
	for _, d := range dirs {
		nx, ny := x+d[0], y+d[1]
		if b.InBounds(nx, ny) && b.tiles[ny][nx].Kind.IsBuildable() {
			return true
		}
	}
	return false
}
