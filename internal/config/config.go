package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// InitialClaimFee seeds the ledger controller's claim fee the first time
	// a data directory is initialized. Later fee changes go through the
	// update-fee operation, not config.
	InitialClaimFee uint64 `json:"initialClaimFee"`
	// DefaultListLimit caps stream/event listings when the caller does not
	// pass an explicit limit.
	DefaultListLimit int `json:"defaultListLimit"`
	// MaxBodyBytes bounds HTTP request bodies.
	MaxBodyBytes int64 `json:"maxBodyBytes"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		InitialClaimFee:  250_000_000,
		DefaultListLimit: 100,
		MaxBodyBytes:     1 << 20,
	}
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
