package nlp

import (
	"context"
	"errors"
	"fmt"
	"go-commentary/logger"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var ErrModelUnavailable = errors.New("model unavailable")

// ModelUnavailableError is returned once a model call has used up its attempts.
type ModelUnavailableError struct {
	Service  string
	Attempts int
	Err      error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable after %d attempt(s): %v", e.Service, e.Attempts, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

func (e *ModelUnavailableError) Is(target error) bool { return target == ErrModelUnavailable }

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

var transientCodes = map[codes.Code]bool{
	codes.Unavailable:       true,
	codes.DeadlineExceeded:  true,
	codes.ResourceExhausted: true,
	codes.Aborted:           true,
	codes.Internal:          true,
}

func isTransient(err error) bool {
	var perm permanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return transientCodes[s.Code()]
	}
	return true
}

type ResilientOptions struct {
	Timeout time.Duration
	// Retries is the number of extra attempts after the first.
	Retries int
	Backoff time.Duration
	// QPS of zero disables rate limiting.
	QPS float64
}

// Resilient applies a per-call timeout, bounded retries with exponential
// backoff and an optional rate limit to external model calls.
type Resilient struct {
	opts    ResilientOptions
	limiter *rate.Limiter
}

func NewResilient(opts ResilientOptions) *Resilient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	r := &Resilient{opts: opts}
	if opts.QPS > 0 {
		burst := int(opts.QPS)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(opts.QPS), burst)
	}
	return r
}

// Call runs fn until it succeeds, fails permanently, or runs out of attempts.
// Every failure comes back as a *ModelUnavailableError.
func Call[T any](ctx context.Context, r *Resilient, service string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if r == nil {
		r = NewResilient(ResilientOptions{})
	}

	attempts := 0
	var lastErr error
	for attempt := 0; attempt <= r.opts.Retries; attempt++ {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		if attempt > 0 {
			wait := r.opts.Backoff * time.Duration(1<<(attempt-1))
			logger.Debug("retrying model call", "service", service, "attempt", attempt+1, "wait", wait, "err", lastErr)
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				return zero, &ModelUnavailableError{Service: service, Attempts: attempts, Err: lastErr}
			case <-time.After(wait):
			}
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				lastErr = fmt.Errorf("rate limiter: %w", err)
				break
			}
		}

		attempts++
		callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
		result, err := fn(callCtx)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isTransient(err) {
			break
		}
	}

	logger.Warn("model call unavailable", "service", service, "attempts", attempts, "err", lastErr)
	return zero, &ModelUnavailableError{Service: service, Attempts: attempts, Err: lastErr}
}
