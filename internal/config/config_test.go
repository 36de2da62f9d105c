package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if got := cfg.RemoveTimeout(); got != 120*time.Second {
		t.Errorf("RemoveTimeout = %v, want 120s", got)
	}
	if got := cfg.NetworkTimeout(); got != 30*time.Second {
		t.Errorf("NetworkTimeout = %v, want 30s", got)
	}
	for _, b := range []string{"develop", "main", "master"} {
		if !cfg.IsProtected(b) {
			t.Errorf("IsProtected(%q) = false, want true", b)
		}
	}
	if cfg.IsProtected("feature/x") {
		t.Error("IsProtected(feature/x) = true, want false")
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom missing file = %v, want nil", err)
	}
	if len(cfg.BaseBranches) == 0 {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
worktree_dir = "/srv/worktrees"
protected_branches = ["trunk", "release"]
base_branches = ["trunk"]
remove_timeout_seconds = 300
network_timeout_seconds = 10

[install]
disabled = true
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.WorktreeDir != "/srv/worktrees" {
		t.Errorf("WorktreeDir = %q", cfg.WorktreeDir)
	}
	if !cfg.IsProtected("trunk") || cfg.IsProtected("main") {
		t.Error("protected_branches should replace the default set")
	}
	if got := cfg.RemoveTimeout(); got != 300*time.Second {
		t.Errorf("RemoveTimeout = %v, want 300s", got)
	}
	if got := cfg.NetworkTimeout(); got != 10*time.Second {
		t.Errorf("NetworkTimeout = %v, want 10s", got)
	}
	if !cfg.Install.Disabled {
		t.Error("install.disabled not parsed")
	}
}

func TestLoadFromInvalidFileReturnsDefaults(t *testing.T) {
	path := writeConfig(t, `worktree_dir = "relative/path"`)

	cfg, err := LoadFrom(path)
	if err == nil {
		t.Fatal("LoadFrom with relative worktree_dir = nil error")
	}
	// Defaults must still be usable so the CLI can warn and continue.
	if got := cfg.RemoveTimeout(); got != DefaultRemoveTimeout {
		t.Errorf("fallback RemoveTimeout = %v", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `remove_timeout_seconds = 300`)
	t.Setenv(EnvRemoveTimeout, "45")
	t.Setenv(EnvNetworkTimeout, "5")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if got := cfg.RemoveTimeout(); got != 45*time.Second {
		t.Errorf("RemoveTimeout = %v, want env override 45s", got)
	}
	if got := cfg.NetworkTimeout(); got != 5*time.Second {
		t.Errorf("NetworkTimeout = %v, want env override 5s", got)
	}
}

func TestEnvInvalidValue(t *testing.T) {
	t.Setenv(EnvRemoveTimeout, "soon")
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("invalid env timeout should be an error")
	}
}
