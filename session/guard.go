package session

import (
	"context"
	"sync"
)

// Op names a long-running session operation.
type Op string

const (
	OpTextFill     Op = "textFill"
	OpMainImage    Op = "mainImage"
	OpProcessImage Op = "processImage"
	OpFooterImage  Op = "footerImage"
	OpExport       Op = "export"
)

// inFlightGuard ensures only one instance of each operation runs at a time.
type inFlightGuard struct {
	mu      sync.Mutex
	running map[Op]struct{}
	wg      sync.WaitGroup
}

// TryLock marks op as running. It returns false if op is already running.
func (g *inFlightGuard) TryLock(op Op) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[Op]struct{})
	}
	if _, ok := g.running[op]; ok {
		return false
	}
	g.running[op] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock marks op as finished. Must be called after TryLock returns true.
func (g *inFlightGuard) Unlock(op Op) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, op)
	g.wg.Done()
}

// Running reports whether op is in flight.
func (g *inFlightGuard) Running(op Op) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[op]
	return ok
}

// WaitAll blocks until all running operations complete or ctx is cancelled.
func (g *inFlightGuard) WaitAll(ctx context.Context) {
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
