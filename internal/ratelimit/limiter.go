// Package ratelimit provides per-key token bucket rate limiting for MCP tools
// and HTTP clients.
package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrLimited is matched by every rate limit error.
var ErrLimited = errors.New("rate limit exceeded")

// LimitError reports which key was limited and when the next request may
// succeed.
type LimitError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %s", e.Key, e.RetryAfter.Round(time.Second))
}

func (e *LimitError) Is(target error) bool { return target == ErrLimited }

// Limiter implements a per-key token bucket rate limiter.
// Each key gets its own bucket with the configured rate and burst.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64          // tokens per second
	burst   int              // max burst size (also initial token count)
	nowFunc func() time.Time // injectable clock for testing
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a rate limiter with the given rate (tokens/sec) and burst size.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// PerMinute creates a limiter allowing n requests per minute with the given burst.
func PerMinute(n float64, burst int) *Limiter {
	return NewLimiter(n/60.0, burst)
}

// Allow reports whether a request for key may proceed, consuming a token if so.
func (l *Limiter) Allow(key string) bool {
	return l.Take(key) == nil
}

// Take consumes a token for key or returns a *LimitError saying how long
// until one is available.
func (l *Limiter) Take(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastCheck: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.lastCheck).Seconds(); elapsed > 0 {
		b.tokens = math.Min(b.tokens+l.rate*elapsed, float64(l.burst))
		b.lastCheck = now
	}

	if b.tokens >= 1.0 {
		b.tokens--
		return nil
	}

	retry := time.Duration(math.MaxInt64)
	if l.rate > 0 {
		retry = time.Duration((1.0 - b.tokens) / l.rate * float64(time.Second))
	}
	return &LimitError{Key: key, RetryAfter: retry}
}

// ToolLimiters maps MCP tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters returns the limits for the conjoint MCP tools. Simulation
// is the most expensive call and gets the tightest budget.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"conjoint_design":   PerMinute(30, 5),
		"conjoint_simulate": PerMinute(20, 3),
		"conjoint_runs":     PerMinute(60, 10),
	}
}

// CheckLimit consumes a token for toolName. Tools without a limiter are
// never limited.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	return limiter.Take(toolName)
}
