package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VisionRepository struct {
	db *gorm.DB
}

func NewVisionRepository(db *gorm.DB) *VisionRepository {
	return &VisionRepository{db: db}
}

type VisionEvent struct {
	ID          string         `gorm:"primaryKey"`
	RoundID     string         `gorm:"not null;index"`
	HoleNumber  int            `gorm:"not null"`
	CameraAngle string         `gorm:"not null"`
	Detections  datatypes.JSON `gorm:"type:jsonb"`
	EventTime   time.Time      `gorm:"not null"`
	CreatedAt   time.Time
}

type CaptureTrigger struct {
	ID            string `gorm:"primaryKey"`
	RoundID       string `gorm:"not null;index"`
	PlayerID      string `gorm:"not null"`
	HoleNumber    int    `gorm:"not null"`
	CameraAngle   string
	TriggerReason string
	Status        string    `gorm:"not null"`
	TriggeredAt   time.Time `gorm:"not null"`
}

func (r *VisionRepository) CreateVisionEvent(ctx context.Context, event *VisionEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *VisionRepository) FindEventsByRound(ctx context.Context, roundID string, limit int) ([]VisionEvent, error) {
	query := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("event_time DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var events []VisionEvent
	err := query.Find(&events).Error
	return events, err
}

func (r *VisionRepository) CreateCaptureTrigger(ctx context.Context, trigger *CaptureTrigger) error {
	return r.db.WithContext(ctx).Create(trigger).Error
}

// DeleteOldEvents removes vision events older than the given number of days.
func (r *VisionRepository) DeleteOldEvents(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	result := r.db.WithContext(ctx).
		Where("event_time < ?", cutoff).
		Delete(&VisionEvent{})
	return result.RowsAffected, result.Error
}
