package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// ErrExhaustedRetries marks a failure that stayed transient for every attempt.
var ErrExhaustedRetries = crerr.New("retries exhausted")

type FaultClass int

const (
	FaultPermanent FaultClass = iota
	FaultTransient
)

func (c FaultClass) String() string {
	if c == FaultTransient {
		return "transient"
	}
	return "permanent"
}

// Classifier decides whether an operation error is worth another attempt.
type Classifier func(error) FaultClass

type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Jitter is the fraction of the computed delay added at random, 0.2 = up to +20%.
	Jitter float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      0.2,
	}
}

func NormalizeRetryPolicy(p RetryPolicy) RetryPolicy {
	defaults := DefaultRetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = defaults.MaxAttempts
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaults.MaxDelay
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	return p
}

// ExhaustedRetriesError wraps the last fault seen after MaxAttempts transient failures.
type ExhaustedRetriesError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedRetriesError) Unwrap() []error {
	return []error{ErrExhaustedRetries, e.Last}
}

// AttemptObserver receives every failed attempt, used for logs and metrics.
type AttemptObserver func(attempt int, class FaultClass, wait time.Duration, err error)

// Retrier is the only place remote calls are retried.
type Retrier struct {
	policy   RetryPolicy
	classify Classifier
	observe  AttemptObserver
	sleep    func(ctx context.Context, d time.Duration) error
	jitter   func() float64
}

func NewRetrier(policy RetryPolicy, classify Classifier) *Retrier {
	if classify == nil {
		classify = DefaultClassifier
	}
	return &Retrier{
		policy:   NormalizeRetryPolicy(policy),
		classify: classify,
		sleep:    sleepContext,
		jitter:   rand.Float64,
	}
}

// WithObserver returns a copy of the retrier that reports failed attempts.
func (r *Retrier) WithObserver(observe AttemptObserver) *Retrier {
	out := *r
	out.observe = observe
	return &out
}

func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

func (r *Retrier) Do(ctx context.Context, op func(context.Context) error) error {
	_, err := Execute(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Execute runs op until it succeeds, fails permanently or runs out of attempts.
func Execute[T any](ctx context.Context, r *Retrier, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if r == nil {
		return op(ctx)
	}

	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		class := r.classify(err)
		if class == FaultPermanent {
			r.report(attempt, class, 0, err)
			return zero, err
		}
		if attempt == r.policy.MaxAttempts {
			r.report(attempt, class, 0, err)
			break
		}

		wait := r.Backoff(attempt)
		r.report(attempt, class, wait, err)
		if err := r.sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, &ExhaustedRetriesError{Attempts: r.policy.MaxAttempts, Last: lastErr}
}

// Backoff is BaseDelay * 2^(attempt-1), capped at MaxDelay, plus jitter.
func (r *Retrier) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := float64(r.policy.BaseDelay) * math.Pow(2, float64(attempt-1))
	if limit := float64(r.policy.MaxDelay); base > limit {
		base = limit
	}
	if r.policy.Jitter > 0 && r.jitter != nil {
		base += base * r.policy.Jitter * r.jitter()
	}
	return time.Duration(base)
}

func (r *Retrier) report(attempt int, class FaultClass, wait time.Duration, err error) {
	if r.observe != nil {
		r.observe(attempt, class, wait, err)
	}
}

// DefaultClassifier retries only errors that declare themselves transient.
func DefaultClassifier(err error) FaultClass {
	if err == nil {
		return FaultPermanent
	}
	var t interface{ Transient() bool }
	if errors.As(err, &t) {
		if t.Transient() {
			return FaultTransient
		}
		return FaultPermanent
	}
	// Bare context errors come from the caller giving up, not from the dependency.
	return FaultPermanent
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
