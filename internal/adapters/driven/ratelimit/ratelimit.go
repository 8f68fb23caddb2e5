// Package ratelimit throttles calls to remote model providers.
//
// A Limiter is a token bucket sized in requests per minute. When a wrapped
// call fails with domain.ErrRateLimited the limiter also backs off until a
// retry deadline. Calls are never retried here; the failure is returned to
// the caller unchanged.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// DefaultBackoff is how long the limiter refuses to send after the
// provider reported a rate limit.
const DefaultBackoff = 60 * time.Second

// Limiter is a token bucket with an extra backoff deadline.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
	now     func() time.Time
}

// NewLimiter creates a limiter allowing requestsPerMinute sustained calls.
// A non-positive value disables throttling but keeps the backoff.
func NewLimiter(requestsPerMinute int) *Limiter {
	l := &Limiter{backoff: DefaultBackoff, now: time.Now}
	if requestsPerMinute <= 0 {
		l.limiter = rate.NewLimiter(rate.Inf, 0)
		return l
	}
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	l.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	return l
}

// Wait blocks until a request can be made. It honours any backoff period
// recorded by Observe before waiting on the token bucket.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := retryAt.Sub(l.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return l.limiter.Wait(ctx)
}

// Observe records the outcome of a call. A rate limit error pushes the
// retry deadline forward by the backoff period.
func (l *Limiter) Observe(err error) {
	if err == nil || !errors.Is(err, domain.ErrRateLimited) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.retryAt = l.now().Add(l.backoff)
}

// Allow reports whether a request could be made immediately.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if l.now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

// Ensure Model implements the interface.
var _ driven.GenerativeModel = (*Model)(nil)

// Model wraps a GenerativeModel so every generation call passes the limiter.
type Model struct {
	inner   driven.GenerativeModel
	limiter *Limiter
}

// NewModel wraps inner with a limiter of requestsPerMinute.
func NewModel(inner driven.GenerativeModel, requestsPerMinute int) *Model {
	return &Model{inner: inner, limiter: NewLimiter(requestsPerMinute)}
}

// GenerateText waits for the limiter, then calls the wrapped model.
func (m *Model) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := m.inner.GenerateText(ctx, prompt, systemInstruction)
	m.limiter.Observe(err)
	return out, err
}

// GenerateImage waits for the limiter, then calls the wrapped model.
func (m *Model) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out, err := m.inner.GenerateImage(ctx, prompt, aspectRatio)
	m.limiter.Observe(err)
	return out, err
}

// ModelName returns the wrapped model's name.
func (m *Model) ModelName() string {
	return m.inner.ModelName()
}

// Ping is not throttled.
func (m *Model) Ping(ctx context.Context) error {
	return m.inner.Ping(ctx)
}

// Close closes the wrapped model.
func (m *Model) Close() error {
	return m.inner.Close()
}

// Unwrap returns the wrapped model.
func (m *Model) Unwrap() driven.GenerativeModel {
	return m.inner
}
