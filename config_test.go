package foreman

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foreman.toml")
	contents := `
[pools]
default_capacity = 64

[pools.schemas]
position = 8

[ops]
pool_capacity = 32

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Pools.DefaultCapacity != 64 {
		t.Errorf("default capacity = %d, want 64", cfg.Pools.DefaultCapacity)
	}
	if cfg.Pools.Schemas["position"] != 8 {
		t.Errorf("position override = %d, want 8", cfg.Pools.Schemas["position"])
	}
	if cfg.Ops.PoolCapacity != 32 {
		t.Errorf("op pool capacity = %d, want 32", cfg.Ops.PoolCapacity)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v, want debug/json", cfg.Logging)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Pools.DefaultCapacity != DefaultPoolCapacity {
		t.Errorf("default capacity = %d, want %d", cfg.Pools.DefaultCapacity, DefaultPoolCapacity)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("level = %s, want info", cfg.Logging.Level)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/does/not/exist.toml"); err == nil {
		t.Error("missing file should error")
	}
}

func TestWithConfigAppliesPoolTuning(t *testing.T) {
	cfg := &Config{
		Pools: PoolsConfig{
			DefaultCapacity: 3,
			Schemas:         map[string]int{"special": 9},
		},
		Ops: OpsConfig{PoolCapacity: 5},
	}
	w := Factory.NewWorld(WithConfig(cfg))

	plain, err := w.Registry().RegisterSchema("plain", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	special, err := w.Registry().RegisterSchema("special", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if plain.Pool().Capacity() != 3 {
		t.Errorf("plain capacity = %d, want the config default 3", plain.Pool().Capacity())
	}
	if special.Pool().Capacity() != 9 {
		t.Errorf("special capacity = %d, want the override 9", special.Pool().Capacity())
	}
	if w.Registry().ops.capacity != 5 {
		t.Errorf("op pool capacity = %d, want 5", w.Registry().ops.capacity)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	logger.Sync()

	// Unknown levels fall back to info rather than failing.
	if _, err := NewLogger(LoggingConfig{Level: "nonsense"}); err != nil {
		t.Errorf("unknown level should fall back: %v", err)
	}
}
