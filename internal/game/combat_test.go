package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deploy(t *testing.T, b *Board, p *Player, x, y, size int) (*Unit, *DeployResult) {
	t.Helper()
	army := NewArmy(size)
	result, err := NewDeployAction(x, y, army).Execute(b, p)
	require.NoError(t, err)
	return army, result
}

func TestDeployPlacesArmy(t *testing.T) {
	b := exampleBoard(t)
	p := NewPlayer("p1", "Gentle")

	army := NewArmy(4)
	action := NewDeployAction(2, 1, army)
	require.Equal(t, DeployPending, action.State())

	result, err := action.Execute(b, p)
	require.NoError(t, err)
	assert.Equal(t, DeployResolved, action.State())

	tile, _ := b.TileAt(2, 1)
	assert.Same(t, army, tile.Unit())
	assert.Same(t, tile, army.Tile)
	assert.Same(t, p, army.Owner)
	assert.True(t, p.HasUnit(army))
	assert.Equal(t, army.ID, result.ArmyID)
	assert.Empty(t, result.Outcomes)
	assert.Zero(t, result.GoldAwarded)
}

func TestDeployHalvesWeakerEnemy(t *testing.T) {
	b := exampleBoard(t)
	p1 := NewPlayer("p1", "Gentle")
	p2 := NewPlayer("p2", "Mean")

	enemy, _ := deploy(t, b, p2, 1, 1, 2)
	_, result := deploy(t, b, p1, 2, 1, 5)

	assert.Equal(t, 1, enemy.Size)
	assert.Same(t, p2, enemy.Owner)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, EffectWeakened, result.Outcomes[0].Effect)
	assert.Equal(t, 2, result.Outcomes[0].SizeBefore)
	assert.Equal(t, 1, result.Outcomes[0].SizeAfter)
}

func TestDeployHalvingFloors(t *testing.T) {
	b := exampleBoard(t)
	p1 := NewPlayer("p1", "Gentle")
	p2 := NewPlayer("p2", "Mean")

	enemy, _ := deploy(t, b, p2, 1, 1, 5)
	deploy(t, b, p1, 2, 1, 5)

	assert.Equal(t, 2, enemy.Size)
}

func TestDeployCapturesEnemy(t *testing.T) {
	b := exampleBoard(t)
	p1 := NewPlayer("p1", "Gentle")
	p2 := NewPlayer("p2", "Mean")
	initialGold := p1.Gold

	enemy, _ := deploy(t, b, p2, 1, 1, 1)
	_, result := deploy(t, b, p1, 2, 1, 3)

	assert.True(t, p1.HasUnit(enemy))
	assert.False(t, p2.HasUnit(enemy))
	assert.Same(t, p1, enemy.Owner)
	assert.Equal(t, initialGold+CaptureReward, p1.Gold)
	assert.Equal(t, CaptureReward, result.GoldAwarded)
	assert.Equal(t, []string{enemy.ID}, result.Captured())

	// The captured army stays where it was.
	tile, _ := b.TileAt(1, 1)
	assert.Same(t, enemy, tile.Unit())
	assert.Equal(t, 1, enemy.Size)
}

func TestDeployReinforcesWeakerAllies(t *testing.T) {
	b := exampleBoard(t)
	p1 := NewPlayer("p1", "Gentle")

	ally1, _ := deploy(t, b, p1, 1, 3, 1)
	ally2, _ := deploy(t, b, p1, 2, 4, 4)
	_, result := deploy(t, b, p1, 2, 3, 5)

	assert.Equal(t, 2, ally1.Size)
	assert.Equal(t, 5, ally2.Size)
	require.Len(t, result.Outcomes, 2)
	// Adjacency order is up, right, down, left.
	assert.Equal(t, ally2.ID, result.Outcomes[0].UnitID)
	assert.Equal(t, ally1.ID, result.Outcomes[1].UnitID)
	for _, o := range result.Outcomes {
		assert.Equal(t, EffectReinforced, o.Effect)
	}
}

func TestDeployLeavesStrongerNeighbors(t *testing.T) {
	t.Run("enemy", func(t *testing.T) {
		b := exampleBoard(t)
		p1 := NewPlayer("p1", "Gentle")
		p2 := NewPlayer("p2", "Mean")

		enemy, _ := deploy(t, b, p2, 2, 3, 5)
		army, result := deploy(t, b, p1, 1, 3, 3)

		assert.Equal(t, 5, enemy.Size)
		assert.Same(t, p2, enemy.Owner)
		require.Len(t, result.Outcomes, 1)
		assert.Equal(t, EffectOutmatched, result.Outcomes[0].Effect)

		// The outmatched army stays on the board.
		tile, _ := b.TileAt(1, 3)
		assert.Same(t, army, tile.Unit())
		assert.Equal(t, 3, army.Size)
	})

	t.Run("ally", func(t *testing.T) {
		b := exampleBoard(t)
		p1 := NewPlayer("p1", "Gentle")

		ally, _ := deploy(t, b, p1, 2, 3, 5)
		_, result := deploy(t, b, p1, 1, 3, 3)

		assert.Equal(t, 5, ally.Size)
		require.Len(t, result.Outcomes, 1)
		assert.Equal(t, EffectUnaffected, result.Outcomes[0].Effect)
	})

	t.Run("equal ally", func(t *testing.T) {
		b := exampleBoard(t)
		p1 := NewPlayer("p1", "Gentle")

		ally, _ := deploy(t, b, p1, 2, 3, 3)
		deploy(t, b, p1, 1, 3, 3)

		assert.Equal(t, 3, ally.Size)
	})
}

func TestDeployEqualEnemyIsHalved(t *testing.T) {
	b := exampleBoard(t)
	p1 := NewPlayer("p1", "Gentle")
	p2 := NewPlayer("p2", "Mean")

	enemy, _ := deploy(t, b, p2, 2, 3, 4)
	deploy(t, b, p1, 1, 3, 4)

	assert.Equal(t, 2, enemy.Size)
}

func TestDeployResolvesEachNeighborAgainstInitialSize(t *testing.T) {
	// Land around (3,3): right (4,3), down (3,4), left (2,3).
	b := exampleBoard(t)
	p1 := NewPlayer("p1", "Gentle")
	p2 := NewPlayer("p2", "Mean")

	right, _ := deploy(t, b, p2, 4, 3, 1)
	down, _ := deploy(t, b, p2, 3, 4, 2)
	left, _ := deploy(t, b, p1, 2, 3, 1)

	_, result := deploy(t, b, p1, 3, 3, 2)

	assert.Same(t, p1, right.Owner, "size-1 enemy is captured")
	assert.Equal(t, 1, down.Size, "equal enemy is halved")
	assert.Equal(t, 2, left.Size, "weaker ally is reinforced")
	assert.Equal(t, CaptureReward, p1.Gold)
	assert.Equal(t, 3, p1.UnitCount())
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, []Effect{EffectCaptured, EffectWeakened, EffectReinforced},
		[]Effect{result.Outcomes[0].Effect, result.Outcomes[1].Effect, result.Outcomes[2].Effect})
}

func TestDeployIgnoresWorkers(t *testing.T) {
	b := exampleBoard(t)
	p1 := NewPlayer("p1", "Gentle")
	p2 := NewPlayer("p2", "Mean")

	worker := NewWorker()
	require.NoError(t, b.SetUnitAt(1, 1, worker))
	p2.AddUnit(worker)

	_, result := deploy(t, b, p1, 2, 1, 3)

	assert.Same(t, p2, worker.Owner)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, EffectUnaffected, result.Outcomes[0].Effect)
	assert.Zero(t, p1.Gold)
}

func TestDeployRejected(t *testing.T) {
	t.Run("ocean tile", func(t *testing.T) {
		b := exampleBoard(t)
		p1 := NewPlayer("p1", "Gentle")
		army := NewArmy(3)
		action := NewDeployAction(0, 0, army)

		_, err := action.Execute(b, p1)
		require.ErrorIs(t, err, ErrIllegalAction)
		assert.Equal(t, DeployRejected, action.State())
		assert.Nil(t, army.Tile)
		assert.Nil(t, army.Owner)
		assert.Zero(t, p1.UnitCount())
		assert.Empty(t, b.Units())
	})

	t.Run("occupied tile", func(t *testing.T) {
		b := exampleBoard(t)
		p1 := NewPlayer("p1", "Gentle")
		p2 := NewPlayer("p2", "Mean")
		enemy, _ := deploy(t, b, p2, 1, 1, 1)
		neighbor, _ := deploy(t, b, p2, 2, 1, 1)

		army := NewArmy(9)
		_, err := NewDeployAction(1, 1, army).Execute(b, p1)
		require.ErrorIs(t, err, ErrIllegalPlacement)

		// Nothing moved, nobody captured.
		tile, _ := b.TileAt(1, 1)
		assert.Same(t, enemy, tile.Unit())
		assert.Same(t, p2, neighbor.Owner)
		assert.Equal(t, 1, neighbor.Size)
		assert.Zero(t, p1.Gold)
		assert.Zero(t, p1.UnitCount())
	})

	t.Run("unknown location", func(t *testing.T) {
		b := exampleBoard(t)
		_, err := NewDeployAction(40, 2, NewArmy(1)).Execute(b, NewPlayer("p1", "Gentle"))
		require.ErrorIs(t, err, ErrUnknownLocation)
	})

	t.Run("invalid armies", func(t *testing.T) {
		b := exampleBoard(t)
		p1 := NewPlayer("p1", "Gentle")

		_, err := NewDeployAction(1, 1, NewWorker()).Execute(b, p1)
		require.ErrorIs(t, err, ErrInvalidArgument)

		_, err = NewDeployAction(1, 1, NewArmy(0)).Execute(b, p1)
		require.ErrorIs(t, err, ErrInvalidArgument)

		_, err = NewDeployAction(1, 1, NewArmy(2)).Execute(b, nil)
		require.ErrorIs(t, err, ErrInvalidArgument)

		placed, _ := deploy(t, b, p1, 2, 1, 2)
		_, err = NewDeployAction(1, 1, placed).Execute(b, p1)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("executed twice", func(t *testing.T) {
		b := exampleBoard(t)
		p1 := NewPlayer("p1", "Gentle")
		action := NewDeployAction(1, 1, NewArmy(2))

		_, err := action.Execute(b, p1)
		require.NoError(t, err)
		_, err = action.Execute(b, p1)
		require.ErrorIs(t, err, ErrIllegalAction)
	})
}
