// Package retry turns the configured retry policy into a backoff schedule.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Attempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}
}

// BackOff doubles from BaseDelay up to MaxDelay and stops after Attempts
// calls in total or once ctx is done.
func (p Policy) BackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseDelay
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	if p.MaxDelay > 0 {
		eb.MaxInterval = p.MaxDelay
	}
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}

// Do calls fn until it succeeds, returns an error retryable rejects, or the
// attempts run out. A canceled ctx ends the wait with ctx.Err().
func Do(ctx context.Context, p Policy, retryable func(error) bool, fn func(context.Context) error) error {
	return backoff.Retry(func() error {
		err := fn(ctx)
		if err != nil && retryable != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, p.BackOff(ctx))
}
