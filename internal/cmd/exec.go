// Package cmd provides helpers for executing external commands with
// context cancellation and proper error surfacing.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/log"
)

// RunContext executes a command in dir (empty means inherit the caller's
// working directory). The command is killed when ctx is cancelled. If the
// command fails and wrote to stderr, the trimmed stderr text becomes the
// error message.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	log.FromContext(ctx).Command(name, args...)

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir

	var stderr bytes.Buffer
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		return wrapExecErr(ctx, err, &stderr)
	}
	return nil
}

// OutputContext executes a command and returns its stdout. Error handling
// matches RunContext.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	log.FromContext(ctx).Command(name, args...)

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir

	var stderr bytes.Buffer
	c.Stderr = &stderr
	out, err := c.Output()
	if err != nil {
		return nil, wrapExecErr(ctx, err, &stderr)
	}
	return out, nil
}

// wrapExecErr prefers the context error (cancellation, deadline) over the
// process error, then the captured stderr text over the exit status.
func wrapExecErr(ctx context.Context, err error, stderr *bytes.Buffer) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return err
}

// LookPath reports whether a binary is available on PATH.
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
