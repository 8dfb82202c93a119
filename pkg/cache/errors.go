package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is what a backend reports internally for an absent key.
	// Cache.Get turns it into ok=false.
	ErrCacheMiss = errors.New("cache miss")

	// ErrNetwork marks a failure to reach a remote backend: dial errors,
	// timeouts, dropped connections.
	ErrNetwork = errors.New("network error")
)

// RetryableError marks a backend failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable wraps err so that a backoff retries it. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err, or anything it wraps, is retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// backoff retries an operation a fixed number of times, doubling the delay
// after each failed attempt.
type backoff struct {
	attempts int
	delay    time.Duration
}

// defaultBackoff gives a remote cache three tries over about three seconds
// before a render falls back to computing without it.
var defaultBackoff = backoff{attempts: 3, delay: time.Second}

// do calls fn until it succeeds, returns an error that is not retryable,
// or runs out of attempts. A cancelled ctx stops the wait between attempts.
func (b backoff) do(ctx context.Context, fn func() error) error {
	attempts, delay := max(b.attempts, 1), b.delay
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
