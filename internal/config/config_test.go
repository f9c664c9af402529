package config

import (
	"os"
	"path/filepath"
	"testing"

	"isle-conquest/internal/game"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "30000", cfg.Port)
	assert.Equal(t, ":30000", cfg.Addr())
	assert.Equal(t, "data/isle.db", cfg.DBPath)
	assert.Equal(t, game.DefaultWidth, cfg.Board.Width)
	assert.Equal(t, game.DefaultHeight, cfg.Board.Height)
}

func TestLoadWithoutFlags(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "30000", cfg.Port)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ISLE_BOARD_WIDTH", "20")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 20, cfg.Board.Width)
}

func TestLoadFlagsBeatEnvironment(t *testing.T) {
	t.Setenv("ISLE_PORT", "8080")

	cfg, err := Load(newFlags(t, "--port", "9090", "--db", "/tmp/x.db"))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("board:\n  width: 30\n  height: 12\nlog_level: debug\n"), 0644))

	cfg, err := Load(newFlags(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Board.Width)
	assert.Equal(t, 12, cfg.Board.Height)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsTinyBoard(t *testing.T) {
	_, err := Load(newFlags(t, "--board-width", "1"))
	assert.ErrorIs(t, err, game.ErrInvalidArgument)
}
