package maps

import (
	"errors"
	"fmt"

	"isle-conquest/internal/game"

	"github.com/rs/zerolog/log"
)

// ErrGenerationFailed is returned when no valid board could be produced.
var ErrGenerationFailed = errors.New("map generation failed")

// maxGenerateAttempts bounds how often a board is regrown after failing validation.
const maxGenerateAttempts = 8

// Rand is the random source used by the generator. *math/rand.Rand and
// *golang.org/x/exp/rand.Rand both satisfy it.
type Rand interface {
	Intn(n int) int
}

// GeneratorOptions contains settings for map generation.
type GeneratorOptions struct {
	Width     int
	Height    int
	MinRegion int // Smallest island grown from one seed, at least 2
	MaxRegion int // Largest island grown from one seed
}

// DefaultOptions returns default generator options.
func DefaultOptions() GeneratorOptions {
	return GeneratorOptions{
		Width:     game.DefaultWidth,
		Height:    game.DefaultHeight,
		MinRegion: 2,
		MaxRegion: 8,
	}
}

// GeneratorStep represents one island being grown.
type GeneratorStep struct {
	Region   int
	Cells    [][2]int
	Complete bool
}

// Generator grows land over an all-ocean grid.
type Generator struct {
	options   GeneratorOptions
	rng       Rand
	width     int
	height    int
	land      [][]bool
	landCount int
	steps     []GeneratorStep
}

// NewGenerator creates a new map generator.
func NewGenerator(opts GeneratorOptions, rng Rand) *Generator {
	if opts.MinRegion < 2 {
		opts.MinRegion = 2
	}
	if opts.MaxRegion < opts.MinRegion {
		opts.MaxRegion = opts.MinRegion
	}

	return &Generator{
		options: opts,
		rng:     rng,
		width:   opts.Width,
		height:  opts.Height,
	}
}

// Generate builds a random board of the given size using the default
// island sizes.
func Generate(width, height int, rng Rand) (*game.Board, error) {
	opts := DefaultOptions()
	opts.Width = width
	opts.Height = height
	b, _, err := NewGenerator(opts, rng).Generate()
	return b, err
}

// Generate creates the board. At most a third of the tiles become land and
// every island has at least two tiles.
func (g *Generator) Generate() (*game.Board, []GeneratorStep, error) {
	if g.width < game.MinWidth || g.height < game.MinHeight {
		return nil, nil, fmt.Errorf("%w: board %dx%d is below %dx%d",
			game.ErrInvalidArgument, g.width, g.height, game.MinWidth, game.MinHeight)
	}
	if g.rng == nil {
		return nil, nil, fmt.Errorf("%w: nil random source", game.ErrInvalidArgument)
	}

	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		g.reset()
		g.growLand()

		b, err := g.buildBoard()
		if err != nil {
			return nil, nil, err
		}
		if err := b.Validate(); err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("Regenerating board")
			continue
		}

		g.steps = append(g.steps, GeneratorStep{Complete: true})
		return b, g.steps, nil
	}

	return nil, nil, fmt.Errorf("%w after %d attempts", ErrGenerationFailed, maxGenerateAttempts)
}

func (g *Generator) reset() {
	g.land = make([][]bool, g.height)
	for y := range g.land {
		g.land[y] = make([]bool, g.width)
	}
	g.landCount = 0
	g.steps = make([]GeneratorStep, 0)
}

// growLand seeds and grows islands until the land budget cannot fit
// another one.
func (g *Generator) growLand() {
	total := g.width * g.height
	budget := total / 3
	minRegion, maxRegion := g.options.MinRegion, g.options.MaxRegion

	attempts := 0
	maxAttempts := total * 4
	region := 0

	for budget-g.landCount >= minRegion && attempts < maxAttempts {
		attempts++

		x := g.rng.Intn(g.width)
		y := g.rng.Intn(g.height)
		if g.land[y][x] {
			continue
		}

		target := minRegion + g.rng.Intn(maxRegion-minRegion+1)
		if remaining := budget - g.landCount; target > remaining {
			target = remaining
		}

		cells := g.growRegion(x, y, target)
		if cells == nil {
			continue
		}
		region++
		g.steps = append(g.steps, GeneratorStep{Region: region, Cells: cells})
	}
}

// growRegion claims (startX, startY) and expands from it by random frontier
// picks. A seed that cannot expand even once is given back to the ocean.
func (g *Generator) growRegion(startX, startY, targetSize int) [][2]int {
	cells := make([][2]int, 0, targetSize)
	frontier := make([][2]int, 0)
	inFrontier := make(map[[2]int]bool)

	g.claim(startX, startY)
	cells = append(cells, [2]int{startX, startY})
	g.addOceanNeighbors(startX, startY, &frontier, inFrontier)

	for len(cells) < targetSize && len(frontier) > 0 {
		idx := g.rng.Intn(len(frontier))
		cell := frontier[idx]

		frontier[idx] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		delete(inFrontier, cell)

		x, y := cell[0], cell[1]
		if g.land[y][x] {
			continue
		}

		g.claim(x, y)
		cells = append(cells, cell)
		g.addOceanNeighbors(x, y, &frontier, inFrontier)
	}

	if len(cells) < 2 {
		g.land[startY][startX] = false
		g.landCount--
		return nil
	}
	return cells
}

func (g *Generator) claim(x, y int) {
	g.land[y][x] = true
	g.landCount++
}

func (g *Generator) addOceanNeighbors(x, y int, frontier *[][2]int, inFrontier map[[2]int]bool) {
	// Only cardinal directions - diagonals don't count as neighbors
	dirs := [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

	for _, d := range dirs {
		nx, ny := x+d[0], y+d[1]
		cell := [2]int{nx, ny}
		if nx >= 0 && nx < g.width && ny >= 0 && ny < g.height && !g.land[ny][nx] && !inFrontier[cell] {
			*frontier = append(*frontier, cell)
			inFrontier[cell] = true
		}
	}
}

// buildBoard gives every land cell an independently chosen land kind.
func (g *Generator) buildBoard() (*game.Board, error) {
	landKinds := game.LandKinds()

	kinds := make([][]game.TileKind, g.height)
	for y := range kinds {
		kinds[y] = make([]game.TileKind, g.width)
		for x := range kinds[y] {
			if g.land[y][x] {
				kinds[y][x] = landKinds[g.rng.Intn(len(landKinds))]
			}
		}
	}
	return game.NewBoardFromKinds(kinds)
}
