package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

var (
	ErrAttemptsExhausted = errors.New("retry attempts exhausted")
	ErrContextCanceled   = errors.New("context canceled during retry")
)

// Config controls retry behavior
type Config struct {
	// MaxAttempts is the total number of attempts, including the first (minimum 1)
	MaxAttempts int
	// Interval is the wait between attempts
	Interval time.Duration
	// Multiplier grows the interval after each attempt (1.0 = fixed interval)
	Multiplier float64
	// Jitter is the random interval fraction (0-1) added or subtracted per wait
	Jitter float64
}

// DefaultConfig returns exponential backoff: 1s, 2s, 4s... capped at 5 attempts
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 5,
		Interval:    1 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.1,
	}
}

// FixedConfig returns a fixed-interval config, used for status polling
func FixedConfig(attempts int, interval time.Duration) *Config {
	return &Config{
		MaxAttempts: attempts,
		Interval:    interval,
		Multiplier:  1.0,
	}
}

func (c *Config) normalized() Config {
	out := *c
	if out.MaxAttempts < 1 {
		out.MaxAttempts = 1
	}
	if out.Interval <= 0 {
		out.Interval = time.Second
	}
	if out.Multiplier < 1 {
		out.Multiplier = 1
	}
	if out.Jitter < 0 {
		out.Jitter = 0
	}
	if out.Jitter > 1 {
		out.Jitter = 1
	}
	return out
}

// PermanentError marks an error that must not be retried
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so Do stops retrying immediately
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// Do runs op until it succeeds, a permanent error occurs, the attempt budget
// runs out, or the context is canceled. On exhaustion the last error is
// returned wrapped together with ErrAttemptsExhausted.
func Do(ctx context.Context, cfg *Config, op Operation) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := cfg.normalized()

	var lastErr error
	for attempt := 0; attempt < c.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(ErrContextCanceled, lastErr)
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var perm *PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}

		if attempt == c.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Join(ErrContextCanceled, lastErr)
		case <-time.After(c.interval(attempt)):
		}
	}

	return errors.Join(ErrAttemptsExhausted, lastErr)
}

// Probe reports whether the polled condition has been reached
type Probe func(ctx context.Context) (done bool, err error)

// Poll invokes probe at the configured interval until it reports done, fails,
// or the attempt ceiling is reached. A probe that never completes yields
// ErrAttemptsExhausted, distinct from any probe error.
func Poll(ctx context.Context, cfg *Config, probe Probe) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := cfg.normalized()

	for attempt := 0; attempt < c.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return ErrContextCanceled
		}

		done, err := probe(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if attempt == c.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ErrContextCanceled
		case <-time.After(c.interval(attempt)):
		}
	}

	return ErrAttemptsExhausted
}

func (c Config) interval(attempt int) time.Duration {
	interval := float64(c.Interval) * math.Pow(c.Multiplier, float64(attempt))
	if c.Jitter > 0 {
		jitter := interval * c.Jitter
		interval += (rand.Float64()*2 - 1) * jitter
	}
	if interval < 0 {
		interval = float64(c.Interval)
	}
	return time.Duration(interval)
}
