package config

import (
	"os"
	"strconv"
)

// FromEnv overlays VESTA_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("VESTA_INITIAL_CLAIM_FEE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.InitialClaimFee = n
		}
	}
	if v := os.Getenv("VESTA_DEFAULT_LIST_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultListLimit = n
		}
	}
	if v := os.Getenv("VESTA_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}
}
