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

	"birdieo-service/internal/domain/round"
	"birdieo-service/internal/repository"
	"birdieo-service/internal/utils"
	"birdieo-service/internal/vision"
)

// holes that get simulated footage when demo clips are generated
var demoHoles = []int{1, 3, 5, 7, 9, 12, 15, 18}

type RoundService struct {
	repo *repository.RoundRepository
	log  zerolog.Logger
}

func NewRoundService(repo *repository.RoundRepository, log zerolog.Logger) *RoundService {
	return &RoundService{repo: repo, log: log}
}

func (s *RoundService) Checkin(ctx context.Context, userID string, req round.CheckinRequest) (*round.CheckinResult, error) {
	if req.CourseID == "" {
		return nil, fmt.Errorf("%w: course_id is required", ErrInvalidInput)
	}
	if req.CourseName == "" {
		return nil, fmt.Errorf("%w: course_name is required", ErrInvalidInput)
	}
	if req.TeeTime.IsZero() {
		return nil, fmt.Errorf("%w: tee_time is required", ErrInvalidInput)
	}
	if req.Handedness != round.HandednessRight && req.Handedness != round.HandednessLeft {
		return nil, fmt.Errorf("%w: handedness must be right or left", ErrInvalidInput)
	}

	timeline := utils.ExpectedTimeline(req.TeeTime)
	timelineJSON, err := json.Marshal(timeline)
	if err != nil {
		return nil, fmt.Errorf("failed to encode timeline: %w", err)
	}

	dbRound := &repository.Round{
		ID:               uuid.NewString(),
		UserID:           userID,
		CourseID:         req.CourseID,
		CourseName:       req.CourseName,
		TeeTime:          req.TeeTime,
		ExpectedTimeline: datatypes.JSON(timelineJSON),
		Handedness:       req.Handedness,
		Status:           round.StatusScheduled,
		CreatedAt:        time.Now(),
	}
	if err := s.repo.CreateRound(ctx, dbRound); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to create round")
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	s.log.Info().
		Str("round_id", dbRound.ID).
		Str("user_id", userID).
		Str("course", req.CourseName).
		Time("tee_time", req.TeeTime).
		Msg("check-in created")

	return &round.CheckinResult{RoundID: dbRound.ID, ExpectedTimeline: timeline}, nil
}

func (s *RoundService) SavePhotos(ctx context.Context, userID string, req round.PhotoCaptureRequest) (string, error) {
	if req.FacePhoto == "" || req.FrontPhoto == "" || req.SidePhoto == "" || req.BackPhoto == "" {
		return "", fmt.Errorf("%w: all four photos are required", ErrInvalidInput)
	}
	dbRound, err := s.ownedRound(ctx, req.RoundID, userID)
	if err != nil {
		return "", err
	}
	return s.createProfile(ctx, dbRound, userID, req.Clothing)
}

func (s *RoundService) VerifyClothing(ctx context.Context, userID string, v round.ClothingVerification) (string, error) {
	dbRound, err := s.ownedRound(ctx, v.RoundID, userID)
	if err != nil {
		return "", err
	}
	return s.createProfile(ctx, dbRound, userID, v.Clothing)
}

func (s *RoundService) createProfile(ctx context.Context, dbRound *repository.Round, userID string, clothing vision.ClothingDescriptor) (string, error) {
	if clothing.TopColor == "" || clothing.BottomColor == "" {
		return "", fmt.Errorf("%w: top_color and bottom_color are required", ErrInvalidInput)
	}

	profile := &repository.SubjectProfile{
		ID:          uuid.NewString(),
		RoundID:     dbRound.ID,
		UserID:      &userID,
		Type:        "subscribed",
		TopColor:    clothing.TopColor,
		BottomColor: clothing.BottomColor,
		Handedness:  dbRound.Handedness,
		CreatedAt:   time.Now(),
	}
	if clothing.TopStyle != "" {
		profile.TopStyle = &clothing.TopStyle
	}
	if clothing.HatColor != "" {
		profile.HatColor = &clothing.HatColor
	}
	if clothing.ShoesColor != "" {
		profile.ShoesColor = &clothing.ShoesColor
	}

	if err := s.repo.CreateSubjectProfile(ctx, profile); err != nil {
		s.log.Error().Err(err).Str("round_id", dbRound.ID).Msg("failed to create subject profile")
		return "", fmt.Errorf("failed to create subject profile: %w", err)
	}

	s.log.Info().
		Str("subject_id", profile.ID).
		Str("round_id", dbRound.ID).
		Str("top_color", clothing.TopColor).
		Str("bottom_color", clothing.BottomColor).
		Msg("subject profile saved")
	return profile.ID, nil
}

type RoundInfo struct {
	round.Round
	ClipsCount int64 `json:"clips_count"`
}

type RoundDetails struct {
	round.Round
	Clips []round.Clip `json:"clips"`
}

func (s *RoundService) ListRounds(ctx context.Context, userID string) ([]RoundInfo, error) {
	rounds, err := s.repo.FindRoundsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find rounds: %w", err)
	}

	result := make([]RoundInfo, 0, len(rounds))
	for _, r := range rounds {
		count, _ := s.repo.CountClipsByRound(ctx, r.ID)
		result = append(result, RoundInfo{Round: toDomainRound(&r), ClipsCount: count})
	}
	return result, nil
}

func (s *RoundService) GetRound(ctx context.Context, userID, roundID string) (*RoundDetails, error) {
	dbRound, err := s.ownedRound(ctx, roundID, userID)
	if err != nil {
		return nil, err
	}

	clips, err := s.repo.FindClipsByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to find clips: %w", err)
	}

	details := &RoundDetails{
		Round: toDomainRound(dbRound),
		Clips: make([]round.Clip, 0, len(clips)),
	}
	for _, c := range clips {
		details.Clips = append(details.Clips, toDomainClip(&c))
	}
	return details, nil
}

func (s *RoundService) ListClips(ctx context.Context, userID, roundID string) ([]round.Clip, error) {
	if _, err := s.ownedRound(ctx, roundID, userID); err != nil {
		return nil, err
	}
	clips, err := s.repo.FindClipsByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to find clips: %w", err)
	}
	result := make([]round.Clip, 0, len(clips))
	for _, c := range clips {
		result = append(result, toDomainClip(&c))
	}
	return result, nil
}

// GenerateDemoClips seeds simulated footage for a partial round and flips
// the round to active.
func (s *RoundService) GenerateDemoClips(ctx context.Context, userID, roundID string) (int, error) {
	if _, err := s.ownedRound(ctx, roundID, userID); err != nil {
		return 0, err
	}

	for _, hole := range demoHoles {
		clip := &repository.Clip{
			ID:          uuid.NewString(),
			RoundID:     roundID,
			SubjectID:   fmt.Sprintf("subject_%s", userID),
			HoleNumber:  hole,
			CameraID:    fmt.Sprintf("camera_a_hole_%d", hole),
			HLSManifest: fmt.Sprintf("https://demo-hls.birdieo.com/round_%s/hole_%d/playlist.m3u8", roundID, hole),
			PosterURL:   fmt.Sprintf("https://demo-hls.birdieo.com/round_%s/hole_%d/poster.jpg", roundID, hole),
			DurationSec: 12 + (hole%3)*4,
			PublishedAt: time.Now(),
		}
		if err := s.repo.CreateClip(ctx, clip); err != nil {
			return 0, fmt.Errorf("failed to create clip for hole %d: %w", hole, err)
		}
	}

	if err := s.repo.UpdateRoundStatus(ctx, roundID, round.StatusActive); err != nil {
		return 0, fmt.Errorf("failed to activate round: %w", err)
	}

	s.log.Info().Str("round_id", roundID).Int("clips", len(demoHoles)).Msg("generated demo clips")
	return len(demoHoles), nil
}

func (s *RoundService) ownedRound(ctx context.Context, roundID, userID string) (*repository.Round, error) {
	if roundID == "" {
		return nil, fmt.Errorf("%w: round_id is required", ErrInvalidInput)
	}
	dbRound, err := s.repo.GetRoundForUser(ctx, roundID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: round", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up round: %w", err)
	}
	return dbRound, nil
}

func toDomainRound(r *repository.Round) round.Round {
	out := round.Round{
		ID:          r.ID,
		UserID:      r.UserID,
		CourseID:    r.CourseID,
		CourseName:  r.CourseName,
		TeeTime:     r.TeeTime,
		Handedness:  r.Handedness,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
	if len(r.ExpectedTimeline) > 0 {
		_ = json.Unmarshal(r.ExpectedTimeline, &out.ExpectedTimeline)
	}
	return out
}

func toDomainClip(c *repository.Clip) round.Clip {
	return round.Clip{
		ID:              c.ID,
		RoundID:         c.RoundID,
		SubjectID:       c.SubjectID,
		HoleNumber:      c.HoleNumber,
		CameraID:        c.CameraID,
		HLSManifest:     c.HLSManifest,
		PosterURL:       c.PosterURL,
		DurationSec:     c.DurationSec,
		FaceBlurApplied: c.FaceBlurApplied,
		PublishedAt:     c.PublishedAt,
	}
}
