// Package config provides loading and environment overlay for Vesta runtime
// configuration. It exposes a Default() baseline, JSON file loading, and a
// VESTA_* env overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/vesta.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
