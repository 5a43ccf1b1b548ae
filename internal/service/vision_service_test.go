package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"birdieo-service/internal/vision"
)

func TestLogDetectionEventValidation(t *testing.T) {
	s := NewVisionService(nil, nil, nil, zerolog.Nop())

	tests := []struct {
		name    string
		payload vision.EventPayload
	}{
		{"missing round", vision.EventPayload{HoleNumber: 3}},
		{"hole too low", vision.EventPayload{RoundID: "r1", HoleNumber: 0}},
		{"hole too high", vision.EventPayload{RoundID: "r1", HoleNumber: 19}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.LogDetectionEvent(context.Background(), tt.payload)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestTriggerCaptureValidation(t *testing.T) {
	s := NewVisionService(nil, nil, nil, zerolog.Nop())

	_, err := s.TriggerCapture(context.Background(), "u1", vision.TriggerPayload{PlayerID: "p1", HoleNumber: 3})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.TriggerCapture(context.Background(), "u1", vision.TriggerPayload{RoundID: "r1", HoleNumber: 3})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.TriggerCapture(context.Background(), "u1", vision.TriggerPayload{RoundID: "r1", PlayerID: "p1", HoleNumber: 42})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
