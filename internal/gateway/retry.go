package gateway

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"
)

// RetryPolicy controls how failed safe-method requests are retried with
// exponential backoff. Mutations are never handed to a RetryPolicy.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

// DefaultRetryPolicy returns a RetryPolicy with 3 attempts, 200ms initial
// delay, 2x multiplier and a 5s cap.
func DefaultRetryPolicy() *RetryPolicy {
	return NewRetryPolicy(2)
}

// NewRetryPolicy returns the default backoff allowing retries extra attempts
// after the first. retries <= 0 disables retrying.
func NewRetryPolicy(retries int) *RetryPolicy {
	if retries < 0 {
		retries = 0
	}
	return &RetryPolicy{
		MaxAttempts:  retries + 1,
		InitialDelay: 200 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
	}
}

// ShouldRetry returns true if the error is retryable and the attempt count
// has not reached MaxAttempts.
func (p *RetryPolicy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	return isRetryable(err)
}

// isRetryable accepts transport failures and gateway-class statuses only.
// Authentication failures and ordinary 4xx/5xx answers are final.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrAuthRequired) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	switch reqErr.Status {
	case 0, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// NextDelay returns the backoff delay for the given attempt number (1-indexed).
// The delay is InitialDelay * Multiplier^(attempt-1), capped at MaxDelay.
func (p *RetryPolicy) NextDelay(attempt int) time.Duration {
	delay := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// Execute runs fn at least once and until it succeeds, returns a final
// error, or MaxAttempts is used up. The wait between attempts is cut short by ctx.
func (p *RetryPolicy) Execute(ctx context.Context, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !p.ShouldRetry(err, attempt) {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(p.NextDelay(attempt)):
		}
	}
}
