package vision

import (
	"time"
)

// BoundingBox is in frame pixel coordinates, top-left origin.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Detection is one raw result from the object detector.
type Detection struct {
	Class string      `json:"class"`
	Score float64     `json:"score"`
	Box   BoundingBox `json:"box"`
}

// EnrichedDetection augments a Detection with the sampled clothing color.
// Identity is only unique within a single frame; there is no cross-frame
// tracking.
type EnrichedDetection struct {
	Detection
	ClothingColor string    `json:"clothing_color"`
	IsTargetColor bool      `json:"is_target_color"`
	Identity      string    `json:"identity"`
	CapturedAt    time.Time `json:"captured_at"`
}

type ClothingDescriptor struct {
	TopColor    string `json:"top_color"`
	TopStyle    string `json:"top_style,omitempty"`
	BottomColor string `json:"bottom_color"`
	HatColor    string `json:"hat_color,omitempty"`
	ShoesColor  string `json:"shoes_color,omitempty"`
}

// ExpectedPlayer is a roster entry describing a checked-in player's declared
// clothing.
type ExpectedPlayer struct {
	PlayerID    string             `json:"player_id"`
	DisplayName string             `json:"display_name"`
	Clothing    ClothingDescriptor `json:"clothing_descriptor"`
}

// Match pairs one detection with one roster player by clothing color.
type Match struct {
	DetectionID  string    `json:"detection_id"`
	PlayerID     string    `json:"player_id"`
	PlayerName   string    `json:"player_name"`
	Confidence   float64   `json:"confidence"`
	MatchedColor string    `json:"matched_color"`
	MatchedAt    time.Time `json:"matched_at"`
}

// DetectionRecord is the wire form of one matched detection inside an event
// payload.
type DetectionRecord struct {
	PlayerID      string      `json:"player_id"`
	Confidence    float64     `json:"confidence"`
	ClothingColor string      `json:"clothing_color"`
	Box           BoundingBox `json:"bounding_box"`
	Timestamp     time.Time   `json:"timestamp"`
}

type EventPayload struct {
	RoundID     string            `json:"round_id"`
	HoleNumber  int               `json:"hole_number"`
	CameraAngle string            `json:"camera_angle"`
	Detections  []DetectionRecord `json:"detections"`
	EventTime   time.Time         `json:"timestamp"`
}

type Event struct {
	ID string
	EventPayload
}

type TriggerPayload struct {
	RoundID       string `json:"round_id"`
	PlayerID      string `json:"player_id"`
	HoleNumber    int    `json:"hole_number"`
	CameraAngle   string `json:"camera_angle"`
	TriggerReason string `json:"trigger_reason"`
}

type TriggerResult struct {
	TriggerID string `json:"trigger_id"`
	Status    string `json:"status"`
}
