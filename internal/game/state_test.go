package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a two-player match on the example board
func createTestMatch(t *testing.T) *Match {
	t.Helper()
	m, err := NewMatch("g1", exampleBoard(t), []*Player{
		NewPlayer("A", "Alice"),
		NewPlayer("B", "Bob"),
	})
	require.NoError(t, err)
	return m
}

func TestNewMatch(t *testing.T) {
	m := createTestMatch(t)

	assert.Equal(t, []string{"A", "B"}, m.PlayerOrder)
	assert.Equal(t, "A", m.CurrentPlayer().ID)
	assert.Equal(t, 1, m.Round)
	assert.False(t, m.Over)
	assert.Equal(t, ColorOrange, m.Players["A"].Color)
	assert.Equal(t, ColorCyan, m.Players["B"].Color)
}

func TestNewMatchPlayerCount(t *testing.T) {
	_, err := NewMatch("g1", exampleBoard(t), []*Player{NewPlayer("A", "Alice")})
	require.ErrorIs(t, err, ErrInvalidArgument)

	players := make([]*Player, 0, MaxPlayers+1)
	for i := 0; i <= MaxPlayers; i++ {
		players = append(players, NewPlayer(string(rune('A'+i)), "p"))
	}
	_, err = NewMatch("g1", exampleBoard(t), players)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewMatch("g1", exampleBoard(t), []*Player{NewPlayer("A", "x"), NewPlayer("A", "y")})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMatchTurns(t *testing.T) {
	m := createTestMatch(t)

	_, err := m.Deploy("B", 1, 1, 2)
	require.ErrorIs(t, err, ErrNotYourTurn)

	_, err = m.Deploy("C", 1, 1, 2)
	require.ErrorIs(t, err, ErrUnknownPlayer)

	_, err = m.Deploy("A", 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "B", m.CurrentPlayer().ID)
	assert.Equal(t, 1, m.Round)

	require.NoError(t, m.Pass("B"))
	assert.Equal(t, "A", m.CurrentPlayer().ID)
	assert.Equal(t, 2, m.Round)
}

func TestMatchFailedDeployKeepsTurn(t *testing.T) {
	m := createTestMatch(t)

	_, err := m.Deploy("A", 0, 0, 2)
	require.ErrorIs(t, err, ErrIllegalAction)
	assert.Equal(t, "A", m.CurrentPlayer().ID)

	_, err = m.Deploy("A", 99, 0, 2)
	require.ErrorIs(t, err, ErrUnknownLocation)
	assert.Equal(t, "A", m.CurrentPlayer().ID)
}

func TestMatchEndsWhenBoardIsFull(t *testing.T) {
	m := createTestMatch(t)

	for !m.Over {
		free := m.Board.FreeLandTiles()
		require.NotEmpty(t, free)
		_, err := m.Deploy(m.CurrentPlayer().ID, free[0].X, free[0].Y, 3)
		require.NoError(t, err)
	}

	assert.True(t, m.Board.IsFull())
	_, err := m.Deploy(m.CurrentPlayer().ID, 1, 1, 1)
	require.ErrorIs(t, err, ErrMatchOver)
	require.ErrorIs(t, m.Pass(m.CurrentPlayer().ID), ErrMatchOver)
}

func TestWinner(t *testing.T) {
	t.Run("not over", func(t *testing.T) {
		m := createTestMatch(t)
		assert.Nil(t, m.Winner())
	})

	t.Run("highest score", func(t *testing.T) {
		m := createTestMatch(t)
		m.Over = true
		require.NoError(t, m.Players["B"].ReceiveGold(3))

		winner := m.Winner()
		require.NotNil(t, winner)
		assert.Equal(t, "B", winner.ID)
	})

	t.Run("tie", func(t *testing.T) {
		m := createTestMatch(t)
		m.Over = true
		assert.Nil(t, m.Winner())
	})
}

func TestPlayerUnits(t *testing.T) {
	p := NewPlayer("A", "Alice")
	u := NewArmy(2)

	assert.False(t, p.HasUnit(u))
	p.AddUnit(u)
	assert.True(t, p.HasUnit(u))
	assert.Same(t, p, u.Owner)
	assert.Equal(t, []*Unit{u}, p.Units())

	require.NoError(t, u.ReceiveGold(4))
	assert.Equal(t, 4+1, p.Score())

	p.RemoveUnit(u)
	assert.False(t, p.HasUnit(u))
	assert.Zero(t, p.UnitCount())
	assert.False(t, p.HasUnit(nil))
}

func TestGoldTransfers(t *testing.T) {
	p := NewPlayer("A", "Alice")
	require.NoError(t, p.ReceiveGold(5))
	assert.Equal(t, 5, p.Gold)
	require.ErrorIs(t, p.ReceiveGold(-1), ErrInvalidArgument)
	assert.Equal(t, 5, p.Gold)

	u := NewWorker()
	require.ErrorIs(t, u.ReceiveGold(-2), ErrInvalidArgument)
	assert.Zero(t, u.Points())
}

func TestProvideResource(t *testing.T) {
	b := exampleBoard(t)
	u := NewWorker()

	_, err := u.ProvideResource()
	require.ErrorIs(t, err, ErrIllegalAction)

	require.NoError(t, b.SetUnitAt(1, 1, u))
	res, err := u.ProvideResource()
	require.NoError(t, err)
	assert.Equal(t, ResourceStone, res)
}
