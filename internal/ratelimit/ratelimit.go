// Package ratelimit provides the single rate-limiting collaborator shared
// by every LLM-calling path: answer generation and LLM-judged reranking
// both wait on the same limiter instance.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size.
	BurstSize int

	// TokensPerMinute caps estimated prompt tokens per minute.
	// Zero disables token budgeting.
	TokensPerMinute int
}

// DefaultConfig is a conservative default well below typical provider limits.
var DefaultConfig = Config{
	RequestsPerSecond: 2.0,
	BurstSize:         4,
	TokensPerMinute:   0,
}

// Limiter combines a token-bucket request limiter with per-window token
// bookkeeping. All bookkeeping happens inside one critical section shared
// across concurrent callers.
type Limiter struct {
	limiter *rate.Limiter

	mu          sync.Mutex
	retryAt     time.Time
	tokenBudget int
	windowStart time.Time
	tokensUsed  int
}

// New creates a limiter from the given configuration.
func New(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultConfig.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultConfig.BurstSize
	}
	return &Limiter{
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		tokenBudget: cfg.TokensPerMinute,
	}
}

// Wait blocks until one request may proceed.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitN(ctx, 0)
}

// WaitN blocks until one request consuming an estimated number of prompt
// tokens may proceed. It honours provider backoff recorded via
// RecordRateLimitError, the per-minute token budget, and the token bucket,
// in that order.
func (l *Limiter) WaitN(ctx context.Context, estimatedTokens int) error {
	if err := l.waitBackoff(ctx); err != nil {
		return err
	}
	if err := l.reserveTokens(ctx, estimatedTokens); err != nil {
		return err
	}
	return l.limiter.Wait(ctx)
}

// waitBackoff sleeps out any backoff period set by a prior 429.
func (l *Limiter) waitBackoff(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}
	return nil
}

// reserveTokens accounts the estimate against the per-minute budget,
// sleeping until the window rolls over when the budget is exhausted.
func (l *Limiter) reserveTokens(ctx context.Context, estimatedTokens int) error {
	if estimatedTokens <= 0 {
		return nil
	}

	for {
		l.mu.Lock()
		if l.tokenBudget <= 0 {
			l.mu.Unlock()
			return nil
		}

		now := time.Now()
		if l.windowStart.IsZero() || now.Sub(l.windowStart) >= time.Minute {
			l.windowStart = now
			l.tokensUsed = 0
		}

		if l.tokensUsed+estimatedTokens <= l.tokenBudget || l.tokensUsed == 0 {
			// An oversized single request is admitted into a fresh window
			// rather than blocking forever.
			l.tokensUsed += estimatedTokens
			l.mu.Unlock()
			return nil
		}

		waitFor := time.Minute - now.Sub(l.windowStart)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitFor):
		}
	}
}

// RecordRateLimitError records a provider 429 and sets a backoff period.
func (l *Limiter) RecordRateLimitError(retryAfterSeconds int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if retryAfterSeconds <= 0 {
		retryAfterSeconds = 60
	}
	l.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}

// Allow reports whether a request could proceed right now without blocking.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

// EstimateTokens is the cheap prompt-token heuristic used for budgeting.
func EstimateTokens(prompt string) int {
	return len(prompt) / 4
}
