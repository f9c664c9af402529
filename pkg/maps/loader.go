package maps

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
)

//go:embed data/*.json
var layoutFiles embed.FS

// Registry holds all loaded layouts.
var Registry = make(map[string]*Layout)

// LoadAll loads all embedded layouts.
func LoadAll() error {
	entries, err := layoutFiles.ReadDir("data")
	if err != nil {
		return fmt.Errorf("failed to read layout directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		l, err := Load(entry.Name())
		if err != nil {
			return fmt.Errorf("failed to load layout %s: %w", entry.Name(), err)
		}

		Registry[l.ID] = l
	}

	return nil
}

// Load loads a single layout by filename.
func Load(filename string) (*Layout, error) {
	data, err := layoutFiles.ReadFile(path.Join("data", filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return LoadFromJSON(data)
}

// LoadFromJSON loads a layout from JSON bytes.
func LoadFromJSON(data []byte) (*Layout, error) {
	var raw RawLayout
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse layout JSON: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, fmt.Errorf("invalid layout %q: %w", raw.ID, err)
	}

	return &Layout{
		ID:     raw.ID,
		Name:   raw.Name,
		Width:  len(raw.Rows[0]),
		Height: len(raw.Rows),
		Rows:   append([]string(nil), raw.Rows...),
	}, nil
}

// Get retrieves a layout from the registry by ID.
func Get(id string) *Layout {
	return Registry[id]
}

// List returns all layouts sorted by ID.
func List() []LayoutInfo {
	infos := make([]LayoutInfo, 0, len(Registry))
	for _, l := range Registry {
		land := 0
		for _, row := range l.Rows {
			for _, r := range row {
				if r != '.' {
					land++
				}
			}
		}
		infos = append(infos, LayoutInfo{
			ID:        l.ID,
			Name:      l.Name,
			Width:     l.Width,
			Height:    l.Height,
			LandTiles: land,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// LayoutInfo contains basic layout information for listing.
type LayoutInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	LandTiles int    `json:"landTiles"`
}

// validate checks a raw layout for errors. The rows must parse into a board
// that satisfies the land/ocean rules.
func validate(raw *RawLayout) error {
	if raw.ID == "" {
		return fmt.Errorf("layout ID is required")
	}
	if raw.Name == "" {
		return fmt.Errorf("layout name is required")
	}
	if len(raw.Rows) == 0 {
		return fmt.Errorf("layout has no rows")
	}
	for y, row := range raw.Rows {
		if len(row) != len(raw.Rows[0]) {
			return fmt.Errorf("row %d width mismatch: expected %d, got %d", y, len(raw.Rows[0]), len(row))
		}
	}

	b, err := (&Layout{Rows: raw.Rows}).NewBoard()
	if err != nil {
		return err
	}
	return b.Validate()
}

// Register adds a layout to the registry.
func Register(l *Layout) {
	if l != nil && l.ID != "" {
		Registry[l.ID] = l
	}
}
