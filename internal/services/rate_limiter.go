package services

import (
	"context"
	"sync"
	"time"

	"github.com/ngprojetos/inscricao-eventos/internal/observability"
	"go.uber.org/zap"
)

// RateLimiter implements a token bucket rate limiter
type RateLimiter struct {
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	mutex      sync.Mutex
	now        func() time.Time
}

// NewRateLimiter creates a token bucket that starts full and gains one token per refillRate
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return newRateLimiter(maxTokens, refillRate, time.Now)
}

func newRateLimiter(maxTokens int, refillRate time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// Allow takes a token if one is available
func (rl *RateLimiter) Allow(operation string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	tokensToAdd := int(now.Sub(rl.lastRefill) / rl.refillRate)
	if tokensToAdd > 0 {
		rl.tokens += tokensToAdd
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		// keep the remainder so partial intervals are not lost
		rl.lastRefill = rl.lastRefill.Add(time.Duration(tokensToAdd) * rl.refillRate)
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}

	observability.Logger().Debug("rate limiter rejected request",
		zap.String("operation", operation),
		zap.Int("max_tokens", rl.maxTokens))
	return false
}

type clientEntry struct {
	limiter  *RateLimiter
	mu       sync.Mutex
	lastSeen time.Time
}

// SubmissionLimiter keeps one token bucket per client address for form submissions
type SubmissionLimiter struct {
	perMinute int
	clients   sync.Map // map[string]*clientEntry
	now       func() time.Time
}

// NewSubmissionLimiter allows perMinute submissions per client, refilled evenly over the minute
func NewSubmissionLimiter(perMinute int) *SubmissionLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &SubmissionLimiter{perMinute: perMinute, now: time.Now}
}

// Allow reports whether client may submit now
func (m *SubmissionLimiter) Allow(client, operation string) bool {
	value, ok := m.clients.Load(client)
	if !ok {
		refillRate := time.Minute / time.Duration(m.perMinute)
		value, _ = m.clients.LoadOrStore(client, &clientEntry{
			limiter: newRateLimiter(m.perMinute, refillRate, m.now),
		})
	}
	entry := value.(*clientEntry)

	entry.mu.Lock()
	entry.lastSeen = m.now()
	entry.mu.Unlock()

	allowed := entry.limiter.Allow(operation)
	if !allowed {
		observability.Logger().Warn("form submission rate limited",
			zap.String("client", client),
			zap.String("operation", operation))
	}
	return allowed
}

// CleanupOldEntries drops clients not seen within olderThan
func (m *SubmissionLimiter) CleanupOldEntries(olderThan time.Duration) int {
	cutoff := m.now().Add(-olderThan)
	removed := 0

	m.clients.Range(func(key, value interface{}) bool {
		entry := value.(*clientEntry)
		entry.mu.Lock()
		stale := entry.lastSeen.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			m.clients.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		observability.Logger().Debug("cleaned up rate limiter entries", zap.Int("removed", removed))
	}
	return removed
}

// Size returns the number of tracked clients
func (m *SubmissionLimiter) Size() int {
	n := 0
	m.clients.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// StartCleanup runs CleanupOldEntries every interval until ctx is done
func (m *SubmissionLimiter) StartCleanup(ctx context.Context, interval, olderThan time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CleanupOldEntries(olderThan)
				observability.RateLimiterClients.Set(float64(m.Size()))
			}
		}
	}()
}
