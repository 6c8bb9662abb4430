package cache

import (
	"context"
	"errors"
	"time"
)

// ErrBackend is returned when a remote backend cannot be reached or fails
// to answer in time.
var ErrBackend = errors.New("cache backend unavailable")

// RetryPolicy bounds [RetryWithBackoff]. The delay doubles after every
// failed attempt.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetry is the policy used by [RetryWithBackoff].
var DefaultRetry = RetryPolicy{Attempts: 3, Delay: 200 * time.Millisecond}

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Retryable marks err as worth another attempt. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err}
}

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// RetryWithBackoff calls fn under [DefaultRetry].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultRetry.Do(ctx, fn)
}

// Do calls fn until it succeeds, returns an error not marked [Retryable],
// or the attempts run out. The last error is returned. Cancelling ctx
// during a wait returns ctx.Err().
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	wait := p.Delay
	err := fn()
	for attempt := 1; attempt < p.Attempts && IsRetryable(err); attempt++ {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
		err = fn()
	}
	return err
}
