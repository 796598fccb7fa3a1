package models

import "time"

// Edit log statuses
const (
	EditStatusSuccess = "success"
	EditStatusFailed  = "failed"
)

// EditLog records one content save submitted through the console
type EditLog struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Kind         Kind       `gorm:"type:varchar(10);not null;index:idx_edit_logs_content" json:"kind"`
	ContentID    int64      `gorm:"not null;index:idx_edit_logs_content" json:"content_id"`
	Title        string     `gorm:"type:varchar(255)" json:"title"`
	Status       string     `gorm:"type:varchar(50);not null" json:"status"` // "success", "failed"
	SessionID    string     `gorm:"type:varchar(64);index" json:"session_id"`
	Payload      *string    `gorm:"type:text" json:"payload,omitempty"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage *string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for EditLog
func (EditLog) TableName() string {
	return "edit_logs"
}

// Duration returns how long the save took, or zero while incomplete
func (l EditLog) Duration() time.Duration {
	if l.CompletedAt == nil {
		return 0
	}
	return l.CompletedAt.Sub(l.StartedAt)
}
