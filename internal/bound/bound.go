// Package bound runs operations under hard wall-clock limits. It exists
// because the only way to tell "still working" from "hung" here is the
// clock: filesystem removal can legitimately take minutes on a large
// dependency tree, while a wedged network call never returns at all.
package bound

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutError reports that an operation exceeded its limit and was
// cancelled.
type TimeoutError struct {
	Op    string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s exceeded its %s limit", e.Op, e.Limit)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// Run executes op under limit. The op receives a context that is
// cancelled at the deadline; every subprocess started through that
// context dies with it, which is how held resources get released.
//
// Run returns as soon as the deadline fires, without waiting for a
// non-cooperative op to observe cancellation: the caller must be able to
// report a Timeout outcome even when the operation is truly hung.
func Run(ctx context.Context, name string, limit time.Duration, op func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(opCtx)
	}()

	select {
	case err := <-done:
		if err != nil && opCtx.Err() == context.DeadlineExceeded {
			return &TimeoutError{Op: name, Limit: limit}
		}
		return err
	case <-opCtx.Done():
		if opCtx.Err() == context.DeadlineExceeded {
			return &TimeoutError{Op: name, Limit: limit}
		}
		// Parent cancellation (signal): surface it as-is.
		return opCtx.Err()
	}
}
