package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestore(t *testing.T) {
	m := createTestMatch(t)
	_, err := m.Deploy("A", 1, 1, 1)
	require.NoError(t, err)
	_, err = m.Deploy("B", 2, 1, 3)
	require.NoError(t, err)

	data, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)

	var snap MatchSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	restored, err := RestoreMatch(&snap)
	require.NoError(t, err)

	assert.Equal(t, m.ID, restored.ID)
	assert.Equal(t, m.PlayerOrder, restored.PlayerOrder)
	assert.Equal(t, m.Turn, restored.Turn)
	assert.Equal(t, m.Round, restored.Round)
	assert.Equal(t, m.Board.Layout(), restored.Board.Layout())
	assert.Equal(t, CaptureReward, restored.Players["B"].Gold)

	// B captured A's army, so B owns both units.
	assert.Equal(t, 2, restored.Players["B"].UnitCount())
	assert.Zero(t, restored.Players["A"].UnitCount())

	tile, err := restored.Board.TileAt(1, 1)
	require.NoError(t, err)
	require.NotNil(t, tile.Unit())
	assert.Equal(t, "B", tile.Unit().Owner.ID)
	assert.Same(t, tile, tile.Unit().Tile)

	assert.Equal(t, m.Snapshot(), restored.Snapshot())
}

func TestRestoreMatchRejectsBadSnapshots(t *testing.T) {
	base := func() *MatchSnapshot {
		return createTestMatch(t).Snapshot()
	}

	t.Run("unit on ocean", func(t *testing.T) {
		s := base()
		s.Units = append(s.Units, UnitSnapshot{ID: "u1", Kind: UnitArmy, OwnerID: "A", X: 0, Y: 0, Size: 1})
		_, err := RestoreMatch(s)
		require.ErrorIs(t, err, ErrIllegalAction)
	})

	t.Run("unknown owner", func(t *testing.T) {
		s := base()
		s.Units = append(s.Units, UnitSnapshot{ID: "u1", Kind: UnitArmy, OwnerID: "Z", X: 1, Y: 1, Size: 1})
		_, err := RestoreMatch(s)
		require.ErrorIs(t, err, ErrUnknownPlayer)
	})

	t.Run("size mismatch", func(t *testing.T) {
		s := base()
		s.Width = 3
		_, err := RestoreMatch(s)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("turn out of range", func(t *testing.T) {
		s := base()
		s.Turn = 5
		_, err := RestoreMatch(s)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})
}
