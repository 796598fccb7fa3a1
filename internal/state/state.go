// Package state persists the per-session working state of the console.
package state

import (
	"context"
	"time"

	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/google/uuid"
)

// Store loads and saves console states keyed by session id
type Store interface {
	// Load returns the state of a session, or a fresh state when none exists
	Load(ctx context.Context, sessionID string) (*models.ConsoleState, error)
	Save(ctx context.Context, state *models.ConsoleState) error
	Delete(ctx context.Context, sessionID string) error
	// Prune removes states not updated within olderThan and returns how many
	// were (or, with dryRun, would be) removed
	Prune(ctx context.Context, olderThan time.Duration, dryRun bool) (int64, error)
}

// NewSessionID returns a random session key
func NewSessionID() string {
	return uuid.NewString()
}

func newState(sessionID string) *models.ConsoleState {
	now := time.Now()
	return &models.ConsoleState{
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
