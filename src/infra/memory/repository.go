package memory

import (
	"context"
	"sync"

	"github.com/bryanwahyu/esr-tracker/src/domain/tracker"
)

// Repository implements tracker.Repository using in-memory storage.
// Useful for demos and tests where nothing should touch the disk.
type Repository struct {
	mu    sync.RWMutex
	state tracker.Snapshot
	saves int
}

// NewRepository creates a repository seeded with an initial snapshot.
func NewRepository(seed tracker.Snapshot) *Repository {
	return &Repository{state: seed.Clone()}
}

// Load returns a copy of the stored snapshot.
func (r *Repository) Load(ctx context.Context) (tracker.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return tracker.Snapshot{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.Clone(), nil
}

// Save replaces the stored snapshot.
func (r *Repository) Save(ctx context.Context, snapshot tracker.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = snapshot.Clone()
	r.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (r *Repository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.saves
}
