package notify

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// RetryPolicy is exponential backoff with jitter, capped at 16x the base.
type RetryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func NewRetryPolicy(maxRetries int, baseDelay time.Duration) *RetryPolicy {
	return &RetryPolicy{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   baseDelay * 16,
	}
}

// Backoff returns the delay before retry number attempt (starting at 1).
func (r *RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt <= 1 || r.baseDelay <= 0 {
		return r.baseDelay
	}

	backoff := r.baseDelay * time.Duration(1<<(attempt-1))
	if backoff > r.maxDelay || backoff <= 0 {
		backoff = r.maxDelay
	}

	// jitter of up to ±25%
	if quarter := int64(backoff / 4); quarter > 0 {
		backoff += time.Duration(rand.Int63n(2*quarter+1) - quarter)
	}
	return backoff
}

type retryPublisher struct {
	next   Publisher
	policy *RetryPolicy
}

// WithRetry retries failed publications according to policy.
func WithRetry(next Publisher, policy *RetryPolicy) Publisher {
	return &retryPublisher{next: next, policy: policy}
}

func (p *retryPublisher) Publish(ctx context.Context, event entity.LedgerEvent) error {
	for attempt := 1; ; attempt++ {
		err := p.next.Publish(ctx, event)
		if err == nil {
			return nil
		}
		if isPermanent(err) || attempt > p.policy.maxRetries {
			return err
		}

		delay := p.policy.Backoff(attempt)
		logrus.WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"attempt":    attempt,
			"delay":      delay,
		}).Warnf("Publish failed, retrying: %v", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RetryEach wraps every publisher in its own retry loop and fans out to
// them, so a failing sink is retried without redelivering to healthy ones.
func RetryEach(policy *RetryPolicy, publishers ...Publisher) Publisher {
	wrapped := make([]Publisher, len(publishers))
	for i, p := range publishers {
		wrapped[i] = WithRetry(p, policy)
	}
	return Fanout(wrapped...)
}

func (p *retryPublisher) Close() error {
	return p.next.Close()
}
