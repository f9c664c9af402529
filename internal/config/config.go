// Package config loads server settings from flags, environment and an
// optional config file.
package config

import (
	"fmt"
	"strings"

	"isle-conquest/internal/game"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the server settings.
type Config struct {
	Port     string `mapstructure:"port"`
	DBPath   string `mapstructure:"db"`
	LogLevel string `mapstructure:"log_level"`
	Board    Board  `mapstructure:"board"`
}

// Board holds the default size of generated boards.
type Board struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// RegisterFlags adds the server flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Optional config file (yaml, toml or json)")
	fs.String("port", "30000", "Server port")
	fs.String("db", "data/isle.db", "Database path")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.Int("board-width", game.DefaultWidth, "Default width of generated boards")
	fs.Int("board-height", game.DefaultHeight, "Default height of generated boards")
}

// Load resolves the configuration. Precedence is flag, then environment,
// then config file, then default. Environment keys use the ISLE_ prefix
// (ISLE_PORT, ISLE_BOARD_WIDTH); the bare PORT and DB_PATH variables set
// by hosting platforms are honoured too.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "30000")
	v.SetDefault("db", "data/isle.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("board.width", game.DefaultWidth)
	v.SetDefault("board.height", game.DefaultHeight)

	v.SetEnvPrefix("ISLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", "ISLE_PORT", "PORT"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("db", "ISLE_DB", "DB_PATH"); err != nil {
		return nil, err
	}

	if fs != nil {
		bindings := map[string]string{
			"port":         "port",
			"db":           "db",
			"log_level":    "log-level",
			"board.width":  "board-width",
			"board.height": "board-height",
		}
		for key, name := range bindings {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}

		if path, _ := fs.GetString("config"); path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Board.Width < game.MinWidth || c.Board.Height < game.MinHeight {
		return fmt.Errorf("%w: board %dx%d is below %dx%d",
			game.ErrInvalidArgument, c.Board.Width, c.Board.Height, game.MinWidth, game.MinHeight)
	}
	return nil
}
