package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"birdieo-service/internal/domain/round"
)

func TestCheckinValidation(t *testing.T) {
	s := NewRoundService(nil, zerolog.Nop())
	teeTime := time.Now().Add(2 * time.Hour)

	tests := []struct {
		name string
		req  round.CheckinRequest
	}{
		{"missing course id", round.CheckinRequest{CourseName: "Pebble Beach", TeeTime: teeTime, Handedness: "right"}},
		{"missing course name", round.CheckinRequest{CourseID: "pb-1", TeeTime: teeTime, Handedness: "right"}},
		{"missing tee time", round.CheckinRequest{CourseID: "pb-1", CourseName: "Pebble Beach", Handedness: "right"}},
		{"bad handedness", round.CheckinRequest{CourseID: "pb-1", CourseName: "Pebble Beach", TeeTime: teeTime, Handedness: "ambidextrous"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Checkin(context.Background(), "u1", tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSavePhotosRequiresAllPhotos(t *testing.T) {
	s := NewRoundService(nil, zerolog.Nop())

	_, err := s.SavePhotos(context.Background(), "u1", round.PhotoCaptureRequest{
		RoundID:    "r1",
		FacePhoto:  "data:...",
		FrontPhoto: "data:...",
		// side and back missing
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
