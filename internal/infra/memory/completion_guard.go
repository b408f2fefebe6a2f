package memory

import (
	"context"
	"sync"

	"mcq-assessment-service/internal/domain"
)

// CompletionGuard is an in-process implementation of app.CompletionGuard.
type CompletionGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewCompletionGuard() *CompletionGuard {
	return &CompletionGuard{held: make(map[string]struct{})}
}

func (g *CompletionGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[key]; ok {
		return nil, domain.ErrCompletionInProgress
	}
	g.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}

// Held reports whether key is currently held.
func (g *CompletionGuard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[key]
	return ok
}
