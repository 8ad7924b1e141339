// Package retry runs operations under an explicit exponential backoff policy.
//
// A Policy is a plain value: attempts, base delay, cap, multiplier and a
// predicate deciding which errors are worth retrying. Execution is delegated
// to github.com/cenkalti/backoff/v4.
//
// All operations respect context cancellation, both while the operation runs
// and while waiting between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NonRetryableError wraps errors that should not be retried regardless of
// the policy predicate.
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("non-retryable: %v", e.Err)
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// NonRetryable marks err as not retryable. Nil stays nil.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &NonRetryableError{Err: err}
}

// IsNonRetryable reports whether err was marked with NonRetryable.
func IsNonRetryable(err error) bool {
	var nre *NonRetryableError
	return errors.As(err, &nre)
}

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the wait after the first failure.
	BaseDelay time.Duration

	// MaxDelay caps the wait between attempts.
	MaxDelay time.Duration

	// Multiplier grows the wait after each failure (typically 2).
	Multiplier float64

	// Jitter randomises each wait by +/- this fraction. Zero disables it.
	Jitter float64

	// Retryable decides whether an error is transient. Nil retries every
	// error not marked NonRetryable.
	Retryable func(error) bool
}

// DefaultPolicy returns the source fetch policy: five attempts, starting at
// one second and doubling up to a minute.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    time.Minute,
		Multiplier:  2.0,
	}
}

// Validate checks the policy values.
func (p Policy) Validate() error {
	if p.BaseDelay < 0 {
		return errors.New("retry: BaseDelay cannot be negative")
	}
	if p.MaxDelay < 0 {
		return errors.New("retry: MaxDelay cannot be negative")
	}
	if p.Multiplier < 0 {
		return errors.New("retry: Multiplier cannot be negative")
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		return errors.New("retry: Jitter must be between 0 and 1")
	}
	return nil
}

// Delays returns the waits the policy would schedule between attempts,
// ignoring jitter.
func (p Policy) Delays() []time.Duration {
	attempts := p.attempts()
	delays := make([]time.Duration, 0, attempts-1)
	d := p.BaseDelay
	for i := 1; i < attempts; i++ {
		if p.MaxDelay > 0 && d > p.MaxDelay {
			d = p.MaxDelay
		}
		delays = append(delays, d)
		d = time.Duration(float64(d) * p.Multiplier)
	}
	return delays
}

// Notify is called before each wait with the failed attempt number, its
// error and the upcoming delay.
type Notify func(attempt int, err error, next time.Duration)

// Do runs fn until it succeeds, returns a non-retryable error, the attempts
// are exhausted or ctx is done. It returns the number of attempts made and
// the last error.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error, notify Notify) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	attempts := 0
	operation := func() error {
		attempts++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if IsNonRetryable(err) || (p.Retryable != nil && !p.Retryable(err)) {
			return backoff.Permanent(err)
		}
		return err
	}

	var onRetry backoff.Notify
	if notify != nil {
		onRetry = func(err error, next time.Duration) {
			notify(attempts, err, next)
		}
	}

	err := backoff.RetryNotify(operation, p.backOff(ctx), onRetry)
	return attempts, err
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.attempts()-1)), ctx)
}
