package game

import "fmt"

// CaptureReward is the gold a player receives for each enemy army captured.
const CaptureReward = 2

// DeployState tracks a DeployAction through its lifecycle.
type DeployState int

const (
	DeployPending DeployState = iota
	DeployPlaced
	DeployResolved
	DeployRejected
)

// String returns the state name.
func (s DeployState) String() string {
	switch s {
	case DeployPending:
		return "Pending"
	case DeployPlaced:
		return "Placed"
	case DeployResolved:
		return "Resolved"
	case DeployRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Effect describes what a deployment did to one neighbouring unit.
type Effect int

const (
	EffectUnaffected Effect = iota
	EffectReinforced
	EffectOutmatched
	EffectWeakened
	EffectCaptured
)

// String returns the effect name.
func (e Effect) String() string {
	switch e {
	case EffectReinforced:
		return "reinforced"
	case EffectOutmatched:
		return "outmatched"
	case EffectWeakened:
		return "weakened"
	case EffectCaptured:
		return "captured"
	default:
		return "unaffected"
	}
}

// NeighborOutcome records the effect of a deployment on one adjacent unit.
// OwnerID is the owner before resolution.
type NeighborOutcome struct {
	X          int
	Y          int
	UnitID     string
	OwnerID    string
	Effect     Effect
	SizeBefore int
	SizeAfter  int
}

// DeployResult represents the outcome of a deployment.
type DeployResult struct {
	X           int
	Y           int
	ArmyID      string
	PlayerID    string
	Size        int
	Outcomes    []NeighborOutcome
	GoldAwarded int
}

// Captured returns the IDs of the units that changed hands.
func (r *DeployResult) Captured() []string {
	ids := make([]string, 0)
	for _, o := range r.Outcomes {
		if o.Effect == EffectCaptured {
			ids = append(ids, o.UnitID)
		}
	}
	return ids
}

// DeployAction puts an army on the board and resolves its effect on every
// unit next to it. An action executes at most once.
type DeployAction struct {
	X    int
	Y    int
	Army *Unit

	state DeployState
}

// NewDeployAction creates a pending deployment of army at (x, y).
func NewDeployAction(x, y int, army *Unit) *DeployAction {
	return &DeployAction{X: x, Y: y, Army: army}
}

// State returns the action's current state.
func (a *DeployAction) State() DeployState {
	return a.state
}

// Execute places the army for player and resolves neighbours. Every check
// runs before the first mutation, so a failed deployment changes nothing.
func (a *DeployAction) Execute(b *Board, p *Player) (*DeployResult, error) {
	if a.state != DeployPending {
		return nil, fmt.Errorf("%w: deployment already %s", ErrIllegalAction, a.state)
	}
	if err := a.validate(b, p); err != nil {
		a.state = DeployRejected
		return nil, err
	}

	tile, err := b.TileAt(a.X, a.Y)
	if err != nil {
		a.state = DeployRejected
		return nil, err
	}
	if tile.IsBusy() {
		a.state = DeployRejected
		return nil, fmt.Errorf("%w: (%d,%d) is %s", ErrIllegalPlacement, a.X, a.Y, busyReason(tile))
	}

	if err := b.SetUnitAt(a.X, a.Y, a.Army); err != nil {
		a.state = DeployRejected
		return nil, err
	}
	p.AddUnit(a.Army)
	a.state = DeployPlaced

	result := &DeployResult{
		X:        a.X,
		Y:        a.Y,
		ArmyID:   a.Army.ID,
		PlayerID: p.ID,
		Size:     a.Army.Size,
		Outcomes: make([]NeighborOutcome, 0, len(dirs)),
	}

	// Bounds were checked by TileAt above.
	neighbors, _ := b.AdjacentTiles(a.X, a.Y)
	basis := a.Army.Size
	for _, n := range neighbors {
		if n.unit == nil {
			continue
		}
		outcome := resolveNeighbor(n.unit, p, basis)
		if outcome.Effect == EffectCaptured {
			result.GoldAwarded += CaptureReward
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	if result.GoldAwarded > 0 {
		// Never negative.
		_ = p.ReceiveGold(result.GoldAwarded)
	}

	a.state = DeployResolved
	return result, nil
}

func (a *DeployAction) validate(b *Board, p *Player) error {
	switch {
	case b == nil:
		return fmt.Errorf("%w: nil board", ErrInvalidArgument)
	case p == nil:
		return fmt.Errorf("%w: nil player", ErrInvalidArgument)
	case a.Army == nil || !a.Army.IsArmy():
		return fmt.Errorf("%w: only armies can be deployed", ErrInvalidArgument)
	case a.Army.Size <= 0:
		return fmt.Errorf("%w: army size %d", ErrInvalidArgument, a.Army.Size)
	case a.Army.Tile != nil:
		return fmt.Errorf("%w: army %s is already on the board", ErrInvalidArgument, a.Army.ID)
	}
	return nil
}

// resolveNeighbor applies the single rule matching u's ownership and
// strength relative to basis, the deployed army's size before resolution.
func resolveNeighbor(u *Unit, p *Player, basis int) NeighborOutcome {
	outcome := NeighborOutcome{
		X:          u.Tile.X,
		Y:          u.Tile.Y,
		UnitID:     u.ID,
		SizeBefore: u.Size,
		Effect:     EffectUnaffected,
	}
	if u.Owner != nil {
		outcome.OwnerID = u.Owner.ID
	}

	if !u.IsArmy() {
		outcome.SizeAfter = u.Size
		return outcome
	}

	if u.Owner == p {
		if u.Size < basis {
			u.Size++
			outcome.Effect = EffectReinforced
		}
		outcome.SizeAfter = u.Size
		return outcome
	}

	switch {
	case u.Size > basis:
		outcome.Effect = EffectOutmatched
	case u.Size > 1:
		u.Size /= 2
		outcome.Effect = EffectWeakened
	default:
		capture(u, p)
		outcome.Effect = EffectCaptured
	}
	outcome.SizeAfter = u.Size
	return outcome
}

// capture hands u over to p. The unit keeps its tile.
func capture(u *Unit, p *Player) {
	if u.Owner != nil {
		u.Owner.RemoveUnit(u)
	}
	p.AddUnit(u)
}
