package state

import (
	"context"
	"time"
)

// PruneJob removes console states idle for longer than the TTL
type PruneJob struct {
	store Store
	ttl   time.Duration
}

// NewPruneJob creates the scheduled prune job
func NewPruneJob(store Store, ttl time.Duration) *PruneJob {
	return &PruneJob{store: store, ttl: ttl}
}

// Name returns the job name
func (j *PruneJob) Name() string {
	return "prune_console_states"
}

// Run prunes stale states
func (j *PruneJob) Run(ctx context.Context) error {
	_, err := j.store.Prune(ctx, j.ttl, false)
	return err
}
