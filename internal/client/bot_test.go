package client

import (
	"testing"

	"isle-conquest/internal/game"
	"isle-conquest/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type sent struct {
	msgType protocol.MessageType
	payload interface{}
}

type fakeSender struct {
	out []sent
}

func (f *fakeSender) SendPayload(msgType protocol.MessageType, payload interface{}) error {
	f.out = append(f.out, sent{msgType, payload})
	return nil
}

func (f *fakeSender) last(t *testing.T) sent {
	t.Helper()
	require.NotEmpty(t, f.out)
	return f.out[len(f.out)-1]
}

func msg(t *testing.T, msgType protocol.MessageType, payload interface{}) *protocol.Message {
	t.Helper()
	m, err := protocol.NewMessage(msgType, payload)
	require.NoError(t, err)
	return m
}

func newTestBot(t *testing.T, opts BotOptions) (*Bot, *fakeSender) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	f := &fakeSender{}
	return NewBot(f, nil, opts, rand.New(rand.NewSource(1))), f
}

func TestBotCreatesAndStartsGame(t *testing.T) {
	b, f := newTestBot(t, BotOptions{Name: "robo", Create: true})

	require.NoError(t, b.Start())
	assert.Equal(t, protocol.TypeAuthenticate, f.last(t).msgType)

	b.HandleMessage(msg(t, protocol.TypeAuthResult, protocol.AuthResultPayload{Success: true, PlayerID: "p1", Token: "tok", Name: "robo"}))
	assert.Equal(t, protocol.TypeCreateGame, f.last(t).msgType)
	assert.Equal(t, "tok", b.cfg.PlayerToken)

	b.HandleMessage(msg(t, protocol.TypeGameCreated, protocol.GameCreatedPayload{GameID: "g1"}))
	n := len(f.out)
	b.HandleMessage(msg(t, protocol.TypeJoinedGame, protocol.JoinedGamePayload{GameID: "g1", Players: []string{"robo"}}))
	assert.Len(t, f.out, n, "started with one player")

	b.HandleMessage(msg(t, protocol.TypeJoinedGame, protocol.JoinedGamePayload{GameID: "g1", Players: []string{"robo", "other"}}))
	last := f.last(t)
	assert.Equal(t, protocol.TypeStartGame, last.msgType)
	assert.Equal(t, protocol.StartGamePayload{GameID: "g1"}, last.payload)
}

func TestBotJoinsOpenGame(t *testing.T) {
	b, f := newTestBot(t, BotOptions{})

	b.HandleMessage(msg(t, protocol.TypeAuthResult, protocol.AuthResultPayload{PlayerID: "p2", Token: "t"}))
	assert.Equal(t, protocol.TypeListGames, f.last(t).msgType)

	b.HandleMessage(msg(t, protocol.TypeGameList, protocol.GameListPayload{Games: []protocol.GameListItem{
		{ID: "full", PlayerCount: 2, MaxPlayers: 2},
		{ID: "open", PlayerCount: 1, MaxPlayers: 4},
	}}))
	assert.Equal(t, protocol.JoinGamePayload{GameID: "open"}, f.last(t).payload)

	b.HandleMessage(msg(t, protocol.TypeGameList, protocol.GameListPayload{}))
	assert.Equal(t, protocol.TypeCreateGame, f.last(t).msgType)
}

func playing(t *testing.T, rows []string, units []game.UnitSnapshot) (*Bot, *fakeSender) {
	t.Helper()
	b, f := newTestBot(t, BotOptions{MaxArmy: 3})
	b.HandleMessage(msg(t, protocol.TypeAuthResult, protocol.AuthResultPayload{PlayerID: "me"}))
	b.HandleMessage(msg(t, protocol.TypeJoinedGame, protocol.JoinedGamePayload{GameID: "g1"}))
	b.HandleMessage(msg(t, protocol.TypeGameState, protocol.GameStatePayload{
		GameID: "g1",
		State:  &game.MatchSnapshot{ID: "g1", Rows: rows, Units: units},
	}))
	return b, f
}

func TestBotPrefersCapturableNeighbours(t *testing.T) {
	b, f := playing(t, []string{
		"ppp.",
		"....",
		".ppp",
	}, []game.UnitSnapshot{
		{ID: "e1", Kind: game.UnitArmy, OwnerID: "enemy", X: 0, Y: 0, Size: 1},
		{ID: "e2", Kind: game.UnitArmy, OwnerID: "enemy", X: 2, Y: 0, Size: 1},
		{ID: "e3", Kind: game.UnitArmy, OwnerID: "enemy", X: 1, Y: 2, Size: 5},
	})

	n := len(f.out)
	b.HandleMessage(msg(t, protocol.TypeTurnChanged, protocol.TurnChangedPayload{GameID: "g1", CurrentPlayer: "other"}))
	assert.Len(t, f.out, n, "acted on another player's turn")

	b.HandleMessage(msg(t, protocol.TypeTurnChanged, protocol.TurnChangedPayload{GameID: "g1", CurrentPlayer: "me"}))
	last := f.last(t)
	require.Equal(t, protocol.TypeDeploy, last.msgType)
	d := last.payload.(protocol.DeployPayload)
	assert.Equal(t, 1, d.X)
	assert.Equal(t, 0, d.Y)
	assert.GreaterOrEqual(t, d.Size, 1)
	assert.LessOrEqual(t, d.Size, 3)
}

func TestBotPassesOnFullBoardAndAfterRejection(t *testing.T) {
	b, f := playing(t, []string{"pp.."}, []game.UnitSnapshot{
		{ID: "a", Kind: game.UnitArmy, OwnerID: "me", X: 0, Y: 0, Size: 1},
		{ID: "b", Kind: game.UnitArmy, OwnerID: "enemy", X: 1, Y: 0, Size: 1},
	})

	b.HandleMessage(msg(t, protocol.TypeTurnChanged, protocol.TurnChangedPayload{GameID: "g1", CurrentPlayer: "me"}))
	assert.Equal(t, protocol.TypePass, f.last(t).msgType)

	b, f = playing(t, []string{"pp.."}, nil)
	b.HandleMessage(msg(t, protocol.TypeTurnChanged, protocol.TurnChangedPayload{GameID: "g1", CurrentPlayer: "me"}))
	require.Equal(t, protocol.TypeDeploy, f.last(t).msgType)

	b.HandleMessage(msg(t, protocol.TypeError, protocol.ErrorPayload{Code: protocol.ErrCodeIllegalAction}))
	assert.Equal(t, protocol.TypePass, f.last(t).msgType)

	n := len(f.out)
	b.HandleMessage(msg(t, protocol.TypeError, protocol.ErrorPayload{Code: protocol.ErrCodeIllegalAction}))
	assert.Len(t, f.out, n, "passes once per turn")
}

func TestBotFinishes(t *testing.T) {
	b, _ := playing(t, []string{"pp.."}, nil)

	b.HandleMessage(msg(t, protocol.TypeGameEnded, protocol.GameEndedPayload{GameID: "other"}))
	select {
	case <-b.Finished():
		t.Fatal("finished on another game's end")
	default:
	}

	b.HandleMessage(msg(t, protocol.TypeGameEnded, protocol.GameEndedPayload{GameID: "g1", WinnerID: "me"}))
	select {
	case <-b.Finished():
	default:
		t.Fatal("bot did not finish")
	}
	b.HandleMessage(msg(t, protocol.TypeGameEnded, protocol.GameEndedPayload{GameID: "g1"}))
}

func TestWebSocketURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:30000/ws", WebSocketURL("localhost:30000"))
	assert.Equal(t, "ws://host:1/ws", WebSocketURL("ws://host:1"))
	assert.Equal(t, "wss://example.org/ws", WebSocketURL("wss://example.org:443"))
}

func TestSendWithoutConnection(t *testing.T) {
	c := NewNetworkClient()
	assert.ErrorIs(t, c.SendPayload(protocol.TypePing, struct{}{}), ErrNotConnected)
	assert.False(t, c.IsConnected())
	c.Disconnect()
}

func TestConfigRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	SetProfile("test")
	defer SetProfile("")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "localhost:30000", cfg.LastServer)

	cfg.PlayerToken = "abc"
	require.NoError(t, cfg.Save())

	again, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "abc", again.PlayerToken)
}
