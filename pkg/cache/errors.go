package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable reports that a remote backend did not answer.
	ErrUnavailable = errors.New("cache unavailable")

	// ErrCacheMiss is the sentinel for absent keys in callers that prefer
	// an error over the ok flag of [Cache.Get].
	ErrCacheMiss = errors.New("cache miss")
)

// RetryableError marks a transient failure, such as a refused connection
// while a redis container is still starting.
type RetryableError struct{ Err error }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether any error in err's chain was marked by [Retryable].
func IsRetryable(err error) bool {
	var target *RetryableError
	return errors.As(err, &target)
}

// retryDelay is the wait before the second attempt; it doubles after each
// failure. Tests lower it.
var retryDelay = 200 * time.Millisecond

const retryAttempts = 3

// RetryWithBackoff calls fn until it succeeds, returns an unmarked error,
// or retryAttempts calls have failed. Cancelling ctx stops the wait
// between attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	wait := retryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		switch {
		case err == nil:
			return nil
		case !IsRetryable(err), attempt == retryAttempts:
			return err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}
