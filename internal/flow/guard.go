package flow

import (
	"context"
	"sync"
)

// Guard is the per-form busy flag. TryAcquire reports false while another
// submission holds the key.
type Guard interface {
	TryAcquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// LocalGuard is an in-process Guard for a single server instance
type LocalGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalGuard creates an empty LocalGuard
func NewLocalGuard() *LocalGuard {
	return &LocalGuard{held: make(map[string]struct{})}
}

// TryAcquire implements Guard
func (g *LocalGuard) TryAcquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return false, nil
	}
	g.held[key] = struct{}{}
	return true, nil
}

// Release implements Guard
func (g *LocalGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.held, key)
	return nil
}

// GuardKey is the busy-flag key of one form in one session
func GuardKey(sessionID, form string) string {
	return sessionID + ":" + form
}
