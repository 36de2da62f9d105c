package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/config"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/git"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/lifecycle"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/log"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/outcome"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/output"
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Loaded once in Execute, read by every command
	cfg config.Config
)

// Command group IDs for organizing help output
const (
	GroupLifecycle  = "lifecycle"
	GroupInspection = "inspection"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reaper",
	Short: "Lifecycle manager for task-scoped git worktrees",
	Long: `reaper creates, inspects, and safely destroys the isolated git worktrees
used to run automated coding tasks in parallel.

Each task gets its own worktree and branch. Cleanup evaluates safety
(uncommitted changes, in-progress git operations, open file handles)
before removing anything, and requires an explicit decision about the
branch's fate.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
			return nil
		}
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}
		return git.CheckGit()
	},
}

// Execute runs the root command and exits with the outcome's status code.
func Execute() {
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = loadedCfg

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.New(os.Stderr, verbose, quiet)
	ctx = log.WithLogger(ctx, logger)
	ctx = output.WithPrinter(ctx, os.Stdout)

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "reaper: %v\n", err)
		if steps := outcome.Remediation(err); len(steps) > 0 {
			fmt.Fprintln(os.Stderr, "To recover:")
			for i, step := range steps {
				fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, step)
			}
		}
		os.Exit(int(outcome.Code(err)))
	}
}

// newManager locates the main checkout containing the working directory
// and wires a lifecycle Manager to it.
func newManager(ctx context.Context) (*lifecycle.Manager, error) {
	repoPath, err := git.CurrentRepoPath(ctx)
	if err != nil {
		return nil, outcome.Failure(outcome.InputError,
			"not inside a git repository",
			"cd into the repository whose worktrees you want to manage").Err()
	}
	return lifecycle.NewManager(repoPath, cfg), nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands and per-worktree detail")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupLifecycle, Title: "Lifecycle Commands:"},
		&cobra.Group{ID: GroupInspection, Title: "Inspection Commands:"},
	)

	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newCleanupCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatusCmd())
}
