package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"birdieo-service/internal/repository"
	"birdieo-service/internal/vision"
)

const triggerStatusTriggered = "triggered"

// VisionService persists detection events and capture triggers coming out of
// the detection pipeline. It satisfies vision.EventSink.
type VisionService struct {
	repo   *repository.VisionRepository
	rounds *repository.RoundRepository
	users  *repository.UserRepository
	log    zerolog.Logger
}

func NewVisionService(repo *repository.VisionRepository, rounds *repository.RoundRepository, users *repository.UserRepository, log zerolog.Logger) *VisionService {
	return &VisionService{
		repo:   repo,
		rounds: rounds,
		users:  users,
		log:    log,
	}
}

// LogDetectionEvent stores one detection event. Callers inside the pipeline
// treat this as fire-and-forget.
func (s *VisionService) LogDetectionEvent(ctx context.Context, payload vision.EventPayload) error {
	if payload.RoundID == "" {
		return fmt.Errorf("%w: round_id is required", ErrInvalidInput)
	}
	if payload.HoleNumber < 1 || payload.HoleNumber > 18 {
		return fmt.Errorf("%w: hole_number must be between 1 and 18", ErrInvalidInput)
	}
	if payload.EventTime.IsZero() {
		payload.EventTime = time.Now()
	}

	detectionsJSON, err := json.Marshal(payload.Detections)
	if err != nil {
		return fmt.Errorf("failed to encode detections: %w", err)
	}

	event := &repository.VisionEvent{
		ID:          uuid.NewString(),
		RoundID:     payload.RoundID,
		HoleNumber:  payload.HoleNumber,
		CameraAngle: payload.CameraAngle,
		Detections:  datatypes.JSON(detectionsJSON),
		EventTime:   payload.EventTime,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateVisionEvent(ctx, event); err != nil {
		s.log.Error().
			Err(err).
			Str("round_id", payload.RoundID).
			Int("hole_number", payload.HoleNumber).
			Msg("failed to store detection event")
		return fmt.Errorf("failed to store detection event: %w", err)
	}

	s.log.Debug().
		Str("event_id", event.ID).
		Str("round_id", payload.RoundID).
		Int("detections", len(payload.Detections)).
		Msg("detection event stored")
	return nil
}

// TriggerCapture records a shot-capture trigger after verifying the round
// belongs to the requesting user.
func (s *VisionService) TriggerCapture(ctx context.Context, userID string, payload vision.TriggerPayload) (*vision.TriggerResult, error) {
	if payload.RoundID == "" || payload.PlayerID == "" {
		return nil, fmt.Errorf("%w: round_id and player_id are required", ErrInvalidInput)
	}
	if payload.HoleNumber < 1 || payload.HoleNumber > 18 {
		return nil, fmt.Errorf("%w: hole_number must be between 1 and 18", ErrInvalidInput)
	}
	if _, err := s.rounds.GetRoundForUser(ctx, payload.RoundID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: round", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up round: %w", err)
	}

	trigger := &repository.CaptureTrigger{
		ID:            uuid.NewString(),
		RoundID:       payload.RoundID,
		PlayerID:      payload.PlayerID,
		HoleNumber:    payload.HoleNumber,
		CameraAngle:   payload.CameraAngle,
		TriggerReason: payload.TriggerReason,
		Status:        triggerStatusTriggered,
		TriggeredAt:   time.Now(),
	}
	if err := s.repo.CreateCaptureTrigger(ctx, trigger); err != nil {
		s.log.Error().Err(err).Str("round_id", payload.RoundID).Msg("failed to store capture trigger")
		return nil, fmt.Errorf("failed to store capture trigger: %w", err)
	}

	s.log.Info().
		Str("trigger_id", trigger.ID).
		Str("round_id", payload.RoundID).
		Str("player_id", payload.PlayerID).
		Str("reason", payload.TriggerReason).
		Msg("shot capture triggered")

	return &vision.TriggerResult{TriggerID: trigger.ID, Status: trigger.Status}, nil
}

type EventInfo struct {
	ID          string                   `json:"id"`
	RoundID     string                   `json:"round_id"`
	HoleNumber  int                      `json:"hole_number"`
	CameraAngle string                   `json:"camera_angle"`
	Detections  []vision.DetectionRecord `json:"detections"`
	EventTime   time.Time                `json:"timestamp"`
}

func (s *VisionService) ListEvents(ctx context.Context, userID, roundID string, limit int) ([]EventInfo, error) {
	if _, err := s.rounds.GetRoundForUser(ctx, roundID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: round", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up round: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	events, err := s.repo.FindEventsByRound(ctx, roundID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}

	result := make([]EventInfo, 0, len(events))
	for _, e := range events {
		info := EventInfo{
			ID:          e.ID,
			RoundID:     e.RoundID,
			HoleNumber:  e.HoleNumber,
			CameraAngle: e.CameraAngle,
			EventTime:   e.EventTime,
		}
		if len(e.Detections) > 0 {
			_ = json.Unmarshal(e.Detections, &info.Detections)
		}
		result = append(result, info)
	}
	return result, nil
}

// BuildRoster resolves a round's subject profiles into the expected-player
// roster the matcher consumes.
func (s *VisionService) BuildRoster(ctx context.Context, userID, roundID string) ([]vision.ExpectedPlayer, error) {
	if _, err := s.rounds.GetRoundForUser(ctx, roundID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: round", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up round: %w", err)
	}

	profiles, err := s.rounds.FindProfilesByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to find subject profiles: %w", err)
	}

	roster := make([]vision.ExpectedPlayer, 0, len(profiles))
	for _, p := range profiles {
		player := vision.ExpectedPlayer{
			PlayerID: p.ID,
			Clothing: vision.ClothingDescriptor{
				TopColor:    p.TopColor,
				BottomColor: p.BottomColor,
			},
		}
		if p.TopStyle != nil {
			player.Clothing.TopStyle = *p.TopStyle
		}
		if p.HatColor != nil {
			player.Clothing.HatColor = *p.HatColor
		}
		if p.ShoesColor != nil {
			player.Clothing.ShoesColor = *p.ShoesColor
		}
		if p.UserID != nil {
			if u, err := s.users.GetUserByID(ctx, *p.UserID); err == nil {
				player.DisplayName = u.Name
			}
		}
		roster = append(roster, player)
	}
	return roster, nil
}

// CleanupOldEvents removes detection events older than the given number of
// days.
func (s *VisionService) CleanupOldEvents(ctx context.Context, days int) (int64, error) {
	deleted, err := s.repo.DeleteOldEvents(ctx, days)
	if err != nil {
		s.log.Error().Err(err).Int("days", days).Msg("failed to cleanup old events")
		return 0, err
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted_count", deleted).Int("days", days).Msg("cleaned up old detection events")
	}
	return deleted, nil
}
