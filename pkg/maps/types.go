// Package maps handles board generation, fixed layouts and board inspection.
package maps

import "isle-conquest/internal/game"

// RawLayout is the format stored in JSON files.
type RawLayout struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Rows []string `json:"rows"` // One tile kind symbol per cell, '.' = ocean
}

// Layout is a validated fixed board layout.
type Layout struct {
	ID     string
	Name   string
	Width  int
	Height int
	Rows   []string
}

// NewBoard returns a fresh, unoccupied board with this layout.
func (l *Layout) NewBoard() (*game.Board, error) {
	return game.NewBoardFromLayout(l.Rows)
}

// Island is an orthogonally connected group of land tiles.
type Island struct {
	ID    int
	Name  string
	Cells [][2]int // List of [x,y] coordinates
}
