// Package history keeps the audit log of content saves.
package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/glefebvre/catalog-console/internal/errors"
	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/glefebvre/catalog-console/internal/models"
	"gorm.io/gorm"
)

// Recorder writes and reads edit log entries
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a recorder on the console database
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Entry describes one save attempt
type Entry struct {
	SessionID string
	Record    *models.Record
	StartedAt time.Time
	Err       error
}

// Record stores the outcome of a save. The submitted payload is kept as JSON.
func (r *Recorder) Record(ctx context.Context, e Entry) (*models.EditLog, error) {
	completed := time.Now()
	entry := &models.EditLog{
		Kind:        e.Record.Kind,
		ContentID:   e.Record.ID,
		Title:       e.Record.Title(),
		Status:      models.EditStatusSuccess,
		SessionID:   e.SessionID,
		StartedAt:   e.StartedAt,
		CompletedAt: &completed,
	}

	if data, err := json.Marshal(e.Record.Payload()); err == nil {
		payload := string(data)
		entry.Payload = &payload
	}
	if e.Err != nil {
		msg := errors.UserMessage(e.Err)
		entry.Status = models.EditStatusFailed
		entry.ErrorMessage = &msg
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, errors.DatabaseError("failed to record edit", err)
	}

	logger.AppLogger().WithFields(map[string]interface{}{
		"kind":       entry.Kind,
		"content_id": entry.ContentID,
		"status":     entry.Status,
	}).DebugContext(ctx, "recorded content edit")

	return entry, nil
}

// Recent returns the newest entries first
func (r *Recorder) Recent(ctx context.Context, limit int) ([]models.EditLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []models.EditLog
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, errors.DatabaseError("failed to load edit history", err)
	}
	return entries, nil
}

// ForContent returns the entries of one movie or show, newest first
func (r *Recorder) ForContent(ctx context.Context, kind models.Kind, id int64, limit int) ([]models.EditLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []models.EditLog
	err := r.db.WithContext(ctx).
		Where("kind = ? AND content_id = ?", kind, id).
		Order("started_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, errors.DatabaseError("failed to load edit history", err)
	}
	return entries, nil
}
