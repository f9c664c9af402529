package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"isle-conquest/internal/protocol"
	"isle-conquest/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func startServer(t *testing.T) string {
	t.Helper()
	s, err := server.New(server.Config{DBPath: filepath.Join(t.TempDir(), "isle.db")})
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Stop(context.Background())
	})
	return strings.TrimPrefix(ts.URL, "http://")
}

func TestNetworkClientSession(t *testing.T) {
	addr := startServer(t)

	inbox := make(chan *protocol.Message, 16)
	c := NewNetworkClient()
	c.OnMessage = func(m *protocol.Message) { inbox <- m }
	c.OnDisconnect = func(error) { t.Error("unexpected disconnect") }

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx, addr))
	assert.True(t, c.IsConnected())
	assert.Error(t, c.Connect(ctx, addr))

	next := func() *protocol.Message {
		select {
		case m := <-inbox:
			return m
		case <-ctx.Done():
			t.Fatal("timed out waiting for a message")
			return nil
		}
	}

	assert.Equal(t, protocol.TypeWelcome, next().Type)

	require.NoError(t, c.SendPayload(protocol.TypePing, struct{}{}))
	assert.Equal(t, protocol.TypePong, next().Type)

	done := c.Done()
	c.Disconnect()
	assert.False(t, c.IsConnected())
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("read loop did not stop")
	}
	assert.ErrorIs(t, c.SendPayload(protocol.TypePing, struct{}{}), ErrNotConnected)
}

func TestBotsPlayAMatch(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	addr := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	play := func(name string, opts BotOptions, seed uint64) *Bot {
		net := NewNetworkClient()
		cfg := DefaultConfig()
		cfg.PlayerName = name
		bot := NewBot(net, cfg, opts, rand.New(rand.NewSource(seed)))
		net.OnMessage = bot.HandleMessage
		require.NoError(t, net.Connect(ctx, addr))
		t.Cleanup(net.Disconnect)
		require.NoError(t, bot.Start())
		return bot
	}

	host := play("host", BotOptions{
		Create:   true,
		Settings: protocol.GameSettings{MaxPlayers: 2, LayoutID: "example"},
	}, 1)
	require.Eventually(t, func() bool { return host.GameID() != "" }, 5*time.Second, 10*time.Millisecond)

	guest := play("guest", BotOptions{GameID: host.GameID()}, 2)

	for _, b := range []*Bot{host, guest} {
		select {
		case <-b.Finished():
		case <-ctx.Done():
			t.Fatal("match did not finish")
		}
	}
	assert.Equal(t, host.GameID(), guest.GameID())
}
