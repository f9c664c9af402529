package maps

import (
	"fmt"
	"strings"

	"isle-conquest/internal/game"
)

// Debug returns a string visualization of the board. Free tiles show their
// kind symbol; occupied tiles show the owner's initial and the unit's size
// (W for workers).
func Debug(b *game.Board) string {
	var sb strings.Builder

	islands := Islands(b)
	sb.WriteString(fmt.Sprintf("Size: %dx%d\n", b.Width(), b.Height()))
	sb.WriteString(fmt.Sprintf("Land: %d  Ocean: %d  Islands: %d\n\n", b.LandCount(), b.OceanCount(), len(islands)))

	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			t, _ := b.TileAt(x, y)
			sb.WriteString(" ")
			sb.WriteString(cellLabel(t))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nIslands:\n")
	for _, is := range islands {
		sb.WriteString(fmt.Sprintf("  %d. %s (%d tiles)\n", is.ID, is.Name, len(is.Cells)))
	}

	return sb.String()
}

func cellLabel(t *game.Tile) string {
	u := t.Unit()
	if u == nil {
		return " " + string(t.Kind.Symbol())
	}

	owner := "?"
	if u.Owner != nil && u.Owner.Name != "" {
		owner = strings.ToUpper(u.Owner.Name[:1])
	}
	if !u.IsArmy() {
		return owner + "W"
	}
	if u.Size > 9 {
		return owner + "+"
	}
	return fmt.Sprintf("%s%d", owner, u.Size)
}
