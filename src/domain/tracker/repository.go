package tracker

import "context"

// Repository loads and saves the complete tracker state.
type Repository interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}
