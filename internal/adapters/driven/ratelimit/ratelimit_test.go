package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

type stubModel struct {
	textCalls  int
	imageCalls int
	err        error
	closed     bool
}

func (s *stubModel) GenerateText(_ context.Context, prompt, _ string) (string, error) {
	s.textCalls++
	return "echo: " + prompt, s.err
}

func (s *stubModel) GenerateImage(_ context.Context, _, _ string) ([]byte, error) {
	s.imageCalls++
	return []byte{1}, s.err
}

func (s *stubModel) ModelName() string            { return "stub" }
func (s *stubModel) Ping(_ context.Context) error { return nil }
func (s *stubModel) Close() error {
	s.closed = true
	return nil
}

func TestModel_PassesThrough(t *testing.T) {
	inner := &stubModel{}
	m := NewModel(inner, 600)

	out, err := m.GenerateText(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", out)

	img, err := m.GenerateImage(context.Background(), "x", "1:1")
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, img)

	assert.Equal(t, "stub", m.ModelName())
	assert.Same(t, inner, m.Unwrap())
	require.NoError(t, m.Close())
	assert.True(t, inner.closed)
}

func TestModel_DoesNotRetry(t *testing.T) {
	inner := &stubModel{err: &domain.ModelInvocationError{Provider: "stub", Op: "generate text", Err: domain.ErrRateLimited}}
	m := NewModel(inner, 0)

	_, err := m.GenerateText(context.Background(), "hi", "")
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1, inner.textCalls)
}

func TestLimiter_BackoffAfterRateLimit(t *testing.T) {
	l := NewLimiter(0)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow())

	l.Observe(errors.New("unrelated"))
	assert.True(t, l.Allow())

	l.Observe(domain.ErrRateLimited)
	assert.False(t, l.Allow())

	now = now.Add(DefaultBackoff + time.Second)
	assert.True(t, l.Allow())
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := NewLimiter(0)
	l.Observe(domain.ErrRateLimited)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestModel_CancelledContextSkipsCall(t *testing.T) {
	inner := &stubModel{}
	m := NewModel(inner, 1)
	m.limiter.Observe(domain.ErrRateLimited)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.GenerateText(ctx, "hi", "")
	require.Error(t, err)
	assert.Equal(t, 0, inner.textCalls)
}

func TestNewLimiter_Burst(t *testing.T) {
	l := NewLimiter(5)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	l = NewLimiter(300)
	for i := 0; i < 30; i++ {
		assert.True(t, l.Allow(), "call %d", i)
	}
}
