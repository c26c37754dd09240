package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Compile.UseThread {
		t.Error("use_thread should default to true")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default level: got %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
compile:
  fuse_static: true
  balance_inertia: true
paths:
  mesh_dir: meshes
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Compile.FuseStatic || !cfg.Compile.BalanceInertia {
		t.Error("compile toggles not applied from file")
	}
	if cfg.Paths.MeshDir != "meshes" {
		t.Errorf("mesh_dir: got %q, want meshes", cfg.Paths.MeshDir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level: got %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing config file should fail")
	}
}
