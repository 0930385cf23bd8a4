package memory

import (
	"context"
	"sync"

	"riddle-game-service/internal/app"
)

// StateRepository keeps the engine snapshot in memory. Useful for tests and
// for running the bot without any backing store.
type StateRepository struct {
	mu   sync.RWMutex
	snap app.Snapshot
	ok   bool
}

func NewStateRepository() *StateRepository {
	return &StateRepository{}
}

func (r *StateRepository) Load(_ context.Context) (app.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap, r.ok, nil
}

func (r *StateRepository) Save(_ context.Context, snap app.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap
	r.ok = true
	return nil
}
