// Package disposition decides the fate of a worktree's branch during
// teardown. Branch deletion is irreversible without the reflog, so the
// resolver refuses to guess: non-protected branches require explicit
// caller intent, while protected branches are always kept regardless of
// what the caller asked for.
package disposition

import "fmt"

// Intent is the caller's requested fate for the branch.
type Intent int

const (
	// IntentNone means the caller supplied no choice.
	IntentNone Intent = iota

	// IntentKeep keeps the branch after the worktree is removed.
	IntentKeep

	// IntentDeleteLocal deletes the local branch.
	IntentDeleteLocal

	// IntentDeleteLocalAndRemote deletes the local branch and its origin
	// counterpart.
	IntentDeleteLocalAndRemote
)

// Disposition is the resolved fate of the branch.
type Disposition int

const (
	// Keep leaves the branch in place.
	Keep Disposition = iota

	// DeleteLocal removes the local branch.
	DeleteLocal

	// DeleteLocalAndRemote removes the local branch and the origin one.
	DeleteLocalAndRemote

	// ProtectedSkip overrides any caller request because the branch is in
	// the protected set. Never caller-supplied.
	ProtectedSkip
)

// String returns the name used in human and JSON output.
func (d Disposition) String() string {
	switch d {
	case Keep:
		return "keep"
	case DeleteLocal:
		return "delete-local"
	case DeleteLocalAndRemote:
		return "delete-local-and-remote"
	case ProtectedSkip:
		return "protected-skip"
	default:
		return fmt.Sprintf("disposition(%d)", int(d))
	}
}

// MarshalText lets Disposition appear as its name in JSON output.
func (d Disposition) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ErrIntentRequired is returned when a non-protected branch has no caller
// intent. The caller must choose; defaulting either way risks silent data
// loss or branch litter.
type ErrIntentRequired struct {
	Branch string
}

func (e *ErrIntentRequired) Error() string {
	return fmt.Sprintf("branch %q is not protected and no disposition was supplied", e.Branch)
}

// Resolve decides the branch fate. Rules, in order:
//
//  1. branch in protected => ProtectedSkip, regardless of intent
//  2. no intent           => ErrIntentRequired
//  3. otherwise           => the caller's explicit choice
//
// A detached worktree (empty branch) has no branch to dispose of and
// always resolves to Keep.
func Resolve(branch string, intent Intent, protected []string) (Disposition, error) {
	if branch == "" {
		return Keep, nil
	}
	for _, p := range protected {
		if p == branch {
			return ProtectedSkip, nil
		}
	}
	switch intent {
	case IntentNone:
		return Keep, &ErrIntentRequired{Branch: branch}
	case IntentKeep:
		return Keep, nil
	case IntentDeleteLocal:
		return DeleteLocal, nil
	case IntentDeleteLocalAndRemote:
		return DeleteLocalAndRemote, nil
	default:
		return Keep, fmt.Errorf("unknown intent %d", int(intent))
	}
}
