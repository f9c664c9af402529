package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const appDir = "isle-conquest"

var profile string

// SetProfile selects a named identity file so several bots on one machine
// keep separate players. The empty profile is the default identity.
func SetProfile(name string) {
	profile = name
}

// Config is the identity and connection state a client keeps between runs.
type Config struct {
	LastServer  string `json:"last_server"`
	PlayerToken string `json:"player_token"`
	PlayerName  string `json:"player_name"`
	PlayerID    string `json:"player_id"`
	LastGameID  string `json:"last_game_id,omitempty"`
}

// DefaultConfig returns the settings used before anything was saved.
func DefaultConfig() *Config {
	return &Config{
		LastServer: "localhost:30000",
		PlayerName: "Bot",
	}
}

// LoadConfig reads the current profile. A missing file yields the
// defaults; on any other error the defaults are returned with the error.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	path, err := configPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config for the current profile. The file holds the
// player token, so it is readable by the owner only.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	name := "config.json"
	if profile != "" {
		name = "config-" + profile + ".json"
	}
	return filepath.Join(dir, appDir, name), nil
}
