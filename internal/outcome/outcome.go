// Package outcome defines the structured result model shared by every
// reaper operation, including the process exit codes consumed by
// orchestration tooling.
package outcome

import (
	"errors"
	"fmt"
	"strings"
)

// ExitStatus classifies how an operation ended. The numeric values are the
// process exit codes and are part of the CLI contract.
type ExitStatus int

const (
	// Success indicates the operation completed.
	Success ExitStatus = 0

	// InputError indicates malformed arguments, a missing VCS context, or
	// a cwd-adjacency violation. Not retryable as-is.
	InputError ExitStatus = 1

	// SafetyBlocked indicates a dirty working tree or an active lock
	// without --force. Recoverable by committing, stashing, or forcing.
	SafetyBlocked ExitStatus = 2

	// DispositionRequired indicates the caller supplied no branch intent
	// for a non-protected branch. Reaper refuses to guess.
	DispositionRequired ExitStatus = 3

	// Timeout indicates a bounded operation exceeded its wall-clock limit.
	Timeout ExitStatus = 4
)

// String returns the status name used in human and JSON output.
func (s ExitStatus) String() string {
	switch s {
	case Success:
		return "success"
	case InputError:
		return "input-error"
	case SafetyBlocked:
		return "safety-blocked"
	case DispositionRequired:
		return "disposition-required"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("exit-status(%d)", int(s))
	}
}

// Outcome is the structured result of a single operation step.
//
// Invariant: a non-Success outcome always carries at least one remediation
// step. The constructors below are the only way this package builds
// failures, and both enforce it.
type Outcome struct {
	Status      ExitStatus `json:"status"`
	Messages    []string   `json:"messages,omitempty"`
	Remediation []string   `json:"remediation,omitempty"`
}

// OK builds a Success outcome with optional informational messages.
func OK(messages ...string) Outcome {
	return Outcome{Status: Success, Messages: messages}
}

// Failure builds a non-Success outcome. The remediation list is ordered:
// callers should try the first step first. At least one step is required.
func Failure(status ExitStatus, message string, remediation ...string) Outcome {
	if status == Success {
		panic("outcome: Failure called with Success status")
	}
	if len(remediation) == 0 {
		remediation = []string{"inspect the error message and re-run with --verbose"}
	}
	return Outcome{
		Status:      status,
		Messages:    []string{message},
		Remediation: remediation,
	}
}

// Warn appends an advisory message that does not change the status.
func (o Outcome) Warn(message string) Outcome {
	o.Messages = append(o.Messages, message)
	return o
}

// Err converts a non-Success outcome into an error carrying it.
// Returns nil for Success so callers can `return o.Err()` unconditionally.
func (o Outcome) Err() error {
	if o.Status == Success {
		return nil
	}
	return &Error{Outcome: o}
}

// Error carries an Outcome through an error chain so the command layer
// can map it to a process exit code without re-parsing messages.
type Error struct {
	Outcome Outcome
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	if len(e.Outcome.Messages) == 0 {
		return e.Outcome.Status.String()
	}
	return strings.Join(e.Outcome.Messages, "; ")
}

// Code returns the process exit code for err: the embedded status for an
// outcome.Error anywhere in the chain, InputError for any other non-nil
// error, Success for nil.
func Code(err error) ExitStatus {
	if err == nil {
		return Success
	}
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Outcome.Status
	}
	return InputError
}

// Remediation returns the ordered remediation steps for err, if any.
func Remediation(err error) []string {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Outcome.Remediation
	}
	return nil
}
