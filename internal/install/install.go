// Package install detects a worktree's language ecosystem by marker file
// and maps it to a dependency install command.
package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/cmd"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/log"
)

// Step is the detected install capability for one worktree.
type Step struct {
	// Ecosystem names the detected toolchain (go, rust, node, python,
	// ruby, php).
	Ecosystem string

	// Command is the install invocation, argv style.
	Command []string
}

// capability maps one marker file to its ecosystem and install command.
type capability struct {
	marker    string
	ecosystem string
	command   []string
}

// detectionOrder is the deterministic precedence when several ecosystem
// markers coexist in one worktree: compiled-toolchain manifests first,
// then node, then the scripting ecosystems. First match wins.
var detectionOrder = []capability{
	{"go.mod", "go", []string{"go", "mod", "download"}},
	{"Cargo.toml", "rust", []string{"cargo", "fetch"}},
	{"package.json", "node", []string{"npm", "install"}},
	{"pyproject.toml", "python", []string{"pip", "install", "-e", "."}},
	{"requirements.txt", "python", []string{"pip", "install", "-r", "requirements.txt"}},
	{"Gemfile", "ruby", []string{"bundle", "install"}},
	{"composer.json", "php", []string{"composer", "install"}},
}

// Detect returns the install step for the highest-precedence marker file
// present at path, or (nil, false) when no ecosystem is recognized.
func Detect(path string) (*Step, bool) {
	for _, c := range detectionOrder {
		if _, err := os.Stat(filepath.Join(path, c.marker)); err != nil {
			continue
		}
		step := Step{Ecosystem: c.ecosystem, Command: c.command}
		if c.ecosystem == "node" {
			step.Command = nodeCommand(path)
		}
		return &step, true
	}
	return nil, false
}

// nodeCommand refines the node install command from the lockfile: a
// pnpm or yarn lockfile means npm would produce a diverging install.
func nodeCommand(path string) []string {
	if _, err := os.Stat(filepath.Join(path, "pnpm-lock.yaml")); err == nil {
		return []string{"pnpm", "install"}
	}
	if _, err := os.Stat(filepath.Join(path, "yarn.lock")); err == nil {
		return []string{"yarn", "install"}
	}
	return []string{"npm", "install"}
}

// Run executes the step's install command inside the worktree. A missing
// toolchain binary is a warning, not a failure: the worktree is usable,
// just not pre-installed.
func Run(ctx context.Context, path string, step *Step) error {
	l := log.FromContext(ctx)

	if !cmd.LookPath(step.Command[0]) {
		l.Printf("Warning: %s detected but %s is not on PATH, skipping install\n", step.Ecosystem, step.Command[0])
		return nil
	}

	l.Printf("Installing %s dependencies...\n", step.Ecosystem)
	if err := cmd.RunContext(ctx, path, step.Command[0], step.Command[1:]...); err != nil {
		return fmt.Errorf("install %s dependencies: %w", step.Ecosystem, err)
	}
	return nil
}
