package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RoundRepository struct {
	db *gorm.DB
}

func NewRoundRepository(db *gorm.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

type Round struct {
	ID               string         `gorm:"primaryKey"`
	UserID           string         `gorm:"not null;index"`
	CourseID         string         `gorm:"not null"`
	CourseName       string         `gorm:"not null"`
	TeeTime          time.Time      `gorm:"not null"`
	ExpectedTimeline datatypes.JSON `gorm:"type:jsonb"`
	Handedness       string         `gorm:"not null"`
	Status           string         `gorm:"not null"`
	CreatedAt        time.Time
	CompletedAt      *time.Time
}

type Clip struct {
	ID              string `gorm:"primaryKey"`
	RoundID         string `gorm:"not null;index"`
	SubjectID       string
	HoleNumber      int `gorm:"not null"`
	CameraID        string
	HLSManifest     string `gorm:"column:hls_manifest"`
	PosterURL       string
	DurationSec     int
	FaceBlurApplied bool
	PublishedAt     time.Time
}

type SubjectProfile struct {
	ID          string `gorm:"primaryKey"`
	RoundID     string `gorm:"not null;index"`
	UserID      *string
	Type        string `gorm:"not null"`
	TopColor    string `gorm:"not null"`
	TopStyle    *string
	BottomColor string `gorm:"not null"`
	HatColor    *string
	ShoesColor  *string
	Handedness  string
	CreatedAt   time.Time
}

func (r *RoundRepository) CreateRound(ctx context.Context, round *Round) error {
	return r.db.WithContext(ctx).Create(round).Error
}

func (r *RoundRepository) FindRoundsByUser(ctx context.Context, userID string) ([]Round, error) {
	var rounds []Round
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rounds).Error
	return rounds, err
}

// GetRoundForUser looks a round up scoped to its owner.
func (r *RoundRepository) GetRoundForUser(ctx context.Context, roundID, userID string) (*Round, error) {
	var round Round
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", roundID, userID).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *RoundRepository) UpdateRoundStatus(ctx context.Context, roundID, status string) error {
	return r.db.WithContext(ctx).
		Model(&Round{}).
		Where("id = ?", roundID).
		Update("status", status).Error
}

func (r *RoundRepository) CreateClip(ctx context.Context, clip *Clip) error {
	return r.db.WithContext(ctx).Create(clip).Error
}

func (r *RoundRepository) FindClipsByRound(ctx context.Context, roundID string) ([]Clip, error) {
	var clips []Clip
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("hole_number ASC").
		Find(&clips).Error
	return clips, err
}

func (r *RoundRepository) CountClipsByRound(ctx context.Context, roundID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Clip{}).
		Where("round_id = ?", roundID).
		Count(&count).Error
	return count, err
}

func (r *RoundRepository) CreateSubjectProfile(ctx context.Context, profile *SubjectProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *RoundRepository) FindProfilesByRound(ctx context.Context, roundID string) ([]SubjectProfile, error) {
	var profiles []SubjectProfile
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("created_at ASC").
		Find(&profiles).Error
	return profiles, err
}
