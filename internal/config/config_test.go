package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.InitialClaimFee != 250_000_000 {
		t.Fatalf("initial claim fee default")
	}
	if cfg.DefaultListLimit != 100 {
		t.Fatalf("list limit default")
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("max body bytes default")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "vesta.json")
	data := []byte(`{"initialClaimFee":1000000,"defaultListLimit":25,"maxBodyBytes":4096}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.InitialClaimFee != 1_000_000 {
		t.Fatalf("expected fee 1000000, got %d", cfg.InitialClaimFee)
	}
	if cfg.DefaultListLimit != 25 {
		t.Fatalf("expected limit 25")
	}
	if cfg.MaxBodyBytes != 4096 {
		t.Fatalf("expected body bytes 4096")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("VESTA_INITIAL_CLAIM_FEE", "42")
	t.Setenv("VESTA_DEFAULT_LIST_LIMIT", "7")
	t.Setenv("VESTA_MAX_BODY_BYTES", "2048")
	FromEnv(&cfg)
	if cfg.InitialClaimFee != 42 {
		t.Fatalf("env override fee")
	}
	if cfg.DefaultListLimit != 7 {
		t.Fatalf("env override limit")
	}
	if cfg.MaxBodyBytes != 2048 {
		t.Fatalf("env override body bytes")
	}
}

func TestDefaultDataDirNotEmpty(t *testing.T) {
	if DefaultDataDir() == "" {
		t.Fatalf("expected non-empty data dir")
	}
}
