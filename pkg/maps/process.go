package maps

import (
	"fmt"

	"isle-conquest/internal/game"

	"golang.org/x/exp/rand"
)

// Islands finds every orthogonally connected group of land tiles on b.
// Islands are numbered from 1 in row-major order of their first tile and
// every island gets a distinct name.
func Islands(b *game.Board) []Island {
	visited := make([][]bool, b.Height())
	for y := range visited {
		visited[y] = make([]bool, b.Width())
	}

	islands := make([]Island, 0)
	used := make(map[string]bool)

	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			t, _ := b.TileAt(x, y)
			if !t.Kind.IsBuildable() || visited[y][x] {
				continue
			}

			id := len(islands) + 1
			islands = append(islands, Island{
				ID:    id,
				Name:  uniqueName(id, used),
				Cells: floodFill(b, x, y, visited),
			})
		}
	}
	return islands
}

// floodFill returns all land cells connected to (startX, startY).
func floodFill(b *game.Board, startX, startY int, visited [][]bool) [][2]int {
	cells := make([][2]int, 0)
	queue := [][2]int{{startX, startY}}
	visited[startY][startX] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		cells = append(cells, current)

		neighbors, _ := b.AdjacentTiles(current[0], current[1])
		for _, n := range neighbors {
			if n.Kind.IsBuildable() && !visited[n.Y][n.X] {
				visited[n.Y][n.X] = true
				queue = append(queue, [2]int{n.X, n.Y})
			}
		}
	}

	return cells
}

var (
	islandPrefixes = []string{"North", "South", "East", "West", "Little", "Great", "Outer", "Inner"}
	islandNames    = []string{"Isle", "Reef", "Cay", "Atoll", "Key", "Holm", "Skerry", "Rock",
		"Haven", "Landing", "Point", "Shoal", "Bank", "Strand", "Spit", "Sands"}
	islandSuffixes = []string{"", "ey", "holm", "wick", "ness", "by"}
)

// genName picks a name for island id. The same id always gets the same name.
func genName(id int) string {
	r := rand.New(rand.NewSource(uint64(id * 7919)))
	switch r.Intn(3) {
	case 0:
		return islandPrefixes[r.Intn(len(islandPrefixes))] + " " + islandNames[r.Intn(len(islandNames))]
	case 1:
		return islandNames[r.Intn(len(islandNames))] + islandSuffixes[r.Intn(len(islandSuffixes))]
	default:
		return islandNames[r.Intn(len(islandNames))]
	}
}

func uniqueName(id int, used map[string]bool) string {
	base := genName(id)
	name := base
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s %d", base, n)
	}
	used[name] = true
	return name
}
