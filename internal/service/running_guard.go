package service

import (
	"context"
	"sync"
)

// ExportedRunGuard is an exported alias so _test packages can test the guard.
type ExportedRunGuard = runGuard

// ─────────────────────────────────────────────────────────────
// runGuard: one export run per target at a time
// ─────────────────────────────────────────────────────────────

// runGuard marks export targets as running. A manual run and a scheduled
// run of the same target never overlap; different targets run freely.
type runGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock marks targetID as running. It returns false when a run of the
// target is already in progress.
func (g *runGuard) TryLock(targetID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[targetID]; ok {
		return false
	}
	g.running[targetID] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock ends a run started by a successful TryLock.
func (g *runGuard) Unlock(targetID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, targetID)
	g.wg.Done()
}

// Running reports whether targetID has a run in progress.
func (g *runGuard) Running(targetID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[targetID]
	return ok
}

// WaitAll blocks until in-flight runs finish or ctx is done.
func (g *runGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
