package state

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/glefebvre/catalog-console/internal/errors"
	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/glefebvre/catalog-console/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps console states in the console database
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Load returns the stored state of a session
func (s *GormStore) Load(ctx context.Context, sessionID string) (*models.ConsoleState, error) {
	var state models.ConsoleState
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&state).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return newState(sessionID), nil
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load console state", err)
	}
	return &state, nil
}

// Save inserts or replaces the state row
func (s *GormStore) Save(ctx context.Context, state *models.ConsoleState) error {
	state.UpdatedAt = time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = state.UpdatedAt
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(state).Error
	if err != nil {
		return errors.DatabaseError("failed to save console state", err)
	}
	return nil
}

// Delete removes the state of a session
func (s *GormStore) Delete(ctx context.Context, sessionID string) error {
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.ConsoleState{}).Error
	if err != nil {
		return errors.DatabaseError("failed to delete console state", err)
	}
	return nil
}

// Prune removes states not updated since the cutoff
func (s *GormStore) Prune(ctx context.Context, olderThan time.Duration, dryRun bool) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	query := s.db.WithContext(ctx).
		Model(&models.ConsoleState{}).
		Where("updated_at < ?", cutoff)

	var count int64
	if dryRun {
		if err := query.Count(&count).Error; err != nil {
			return 0, errors.DatabaseError("failed to count stale console states", err)
		}
		return count, nil
	}

	result := query.Delete(&models.ConsoleState{})
	if result.Error != nil {
		return 0, errors.DatabaseError("failed to prune console states", result.Error)
	}

	if result.RowsAffected > 0 {
		logger.AppLogger().WithFields(map[string]interface{}{
			"count":  result.RowsAffected,
			"cutoff": cutoff,
		}).InfoContext(ctx, "pruned stale console states")
	}
	return result.RowsAffected, nil
}
