package game

// ResourceType represents a type of resource a land tile exposes.
type ResourceType int

const (
	ResourceNone ResourceType = iota
	ResourceWheat
	ResourceWood
	ResourceStone
)

// String returns the resource name.
func (r ResourceType) String() string {
	switch r {
	case ResourceWheat:
		return "Wheat"
	case ResourceWood:
		return "Wood"
	case ResourceStone:
		return "Stone"
	default:
		return "None"
	}
}
