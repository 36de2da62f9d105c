// Package config loads the reaper configuration.
//
// Configuration sources, lowest to highest precedence:
//
//	built-in defaults < ~/.config/reaper/config.toml < environment < per-call flags
//
// Per-call flags are applied by the command layer; this package resolves
// the first three.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Default timeout values. Removal is generous because dependency
// directories (node_modules and friends) can take a long time to delete;
// network operations fail fast.
const (
	DefaultRemoveTimeout  = 120 * time.Second
	DefaultNetworkTimeout = 30 * time.Second
)

// Environment variables overriding the timeout defaults, in whole seconds.
const (
	EnvRemoveTimeout  = "REAPER_REMOVE_TIMEOUT"
	EnvNetworkTimeout = "REAPER_NETWORK_TIMEOUT"
)

// InstallConfig controls dependency installation after create.
type InstallConfig struct {
	// Disabled turns off install detection entirely.
	Disabled bool `toml:"disabled"`
}

// Config holds the reaper configuration.
type Config struct {
	// WorktreeDir is the base directory for new worktrees. Empty means
	// a "<repo>-worktrees" directory next to the main repository.
	WorktreeDir string `toml:"worktree_dir"`

	// ProtectedBranches are never deleted, regardless of caller intent.
	// Ordered list so embedding contexts can override it wholesale.
	ProtectedBranches []string `toml:"protected_branches"`

	// BaseBranches is the fallback order used to pick the merge base for
	// unmerged-commit counting. The first branch that exists wins.
	BaseBranches []string `toml:"base_branches"`

	// RemoveTimeoutSeconds bounds filesystem removal (0 = default).
	RemoveTimeoutSeconds int `toml:"remove_timeout_seconds"`

	// NetworkTimeoutSeconds bounds remote operations (0 = default).
	NetworkTimeoutSeconds int `toml:"network_timeout_seconds"`

	Install InstallConfig `toml:"install"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ProtectedBranches: []string{"develop", "main", "master"},
		BaseBranches:      []string{"develop", "main"},
	}
}

// RemoveTimeout resolves the effective filesystem-removal limit.
func (c *Config) RemoveTimeout() time.Duration {
	if c.RemoveTimeoutSeconds > 0 {
		return time.Duration(c.RemoveTimeoutSeconds) * time.Second
	}
	return DefaultRemoveTimeout
}

// NetworkTimeout resolves the effective network-operation limit.
func (c *Config) NetworkTimeout() time.Duration {
	if c.NetworkTimeoutSeconds > 0 {
		return time.Duration(c.NetworkTimeoutSeconds) * time.Second
	}
	return DefaultNetworkTimeout
}

// IsProtected reports whether branch is in the protected set.
func (c *Config) IsProtected(branch string) bool {
	for _, p := range c.ProtectedBranches {
		if p == branch {
			return true
		}
	}
	return false
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "reaper", "config.toml"), nil
}

// Load reads config from ~/.config/reaper/config.toml and applies
// environment overrides. A missing file is not an error; an invalid file
// is, and the defaults are returned alongside the error so the caller can
// warn and continue.
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return applyEnv(Default(), nil)
	}
	return LoadFrom(path)
}

// LoadFrom reads config from an explicit path. Used by tests.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg, nil)
		}
		return applyEnv(cfg, fmt.Errorf("read config file: %w", err))
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return applyEnv(Default(), fmt.Errorf("parse config file: %w", err))
	}

	if err := validate(&cfg); err != nil {
		return applyEnv(Default(), err)
	}

	// Expand ~ in worktree_dir (the shell doesn't expand inside config
	// files).
	if cfg.WorktreeDir != "" {
		expanded, err := expandPath(cfg.WorktreeDir)
		if err != nil {
			return applyEnv(Default(), fmt.Errorf("expand worktree_dir: %w", err))
		}
		cfg.WorktreeDir = expanded
	}

	return applyEnv(cfg, nil)
}

func validate(cfg *Config) error {
	if cfg.WorktreeDir != "" && cfg.WorktreeDir[0] != '~' && !filepath.IsAbs(cfg.WorktreeDir) {
		return fmt.Errorf("worktree_dir must be absolute or start with ~, got: %q", cfg.WorktreeDir)
	}
	if cfg.RemoveTimeoutSeconds < 0 {
		return fmt.Errorf("remove_timeout_seconds must not be negative, got %d", cfg.RemoveTimeoutSeconds)
	}
	if cfg.NetworkTimeoutSeconds < 0 {
		return fmt.Errorf("network_timeout_seconds must not be negative, got %d", cfg.NetworkTimeoutSeconds)
	}
	if len(cfg.BaseBranches) == 0 {
		return errors.New("base_branches must not be empty")
	}
	return nil
}

// applyEnv overlays timeout overrides from the environment. loadErr is
// passed through so env handling happens even when the file was bad.
func applyEnv(cfg Config, loadErr error) (Config, error) {
	if v := os.Getenv(EnvRemoveTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return cfg, fmt.Errorf("invalid %s value %q: want positive whole seconds", EnvRemoveTimeout, v)
		}
		cfg.RemoveTimeoutSeconds = secs
	}
	if v := os.Getenv(EnvNetworkTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return cfg, fmt.Errorf("invalid %s value %q: want positive whole seconds", EnvNetworkTimeout, v)
		}
		cfg.NetworkTimeoutSeconds = secs
	}
	return cfg, loadErr
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}
