package round

import (
	"time"

	"birdieo-service/internal/vision"
)

const (
	StatusScheduled = "scheduled"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

const (
	HandednessRight = "right"
	HandednessLeft  = "left"
)

const (
	RolePlayer        = "player"
	RoleCourseManager = "course_manager"
	RoleAdmin         = "admin"
)

type CheckinRequest struct {
	TeeTime    time.Time `json:"tee_time"`
	CourseID   string    `json:"course_id"`
	CourseName string    `json:"course_name"`
	Handedness string    `json:"handedness"`
}

type CheckinResult struct {
	RoundID          string               `json:"round_id"`
	ExpectedTimeline map[string]time.Time `json:"expected_timeline"`
}

// PhotoCaptureRequest carries the four check-in photo references captured
// during the wizard plus the confirmed clothing descriptor.
type PhotoCaptureRequest struct {
	RoundID    string                    `json:"round_id"`
	FacePhoto  string                    `json:"face_photo"`
	FrontPhoto string                    `json:"front_photo"`
	SidePhoto  string                    `json:"side_photo"`
	BackPhoto  string                    `json:"back_photo"`
	Clothing   vision.ClothingDescriptor `json:"clothing_descriptor"`
}

type ClothingVerification struct {
	RoundID   string                    `json:"round_id"`
	Clothing  vision.ClothingDescriptor `json:"clothing_descriptor"`
	Confirmed bool                      `json:"confirmed"`
}

type Round struct {
	ID               string               `json:"id"`
	UserID           string               `json:"user_id"`
	CourseID         string               `json:"course_id"`
	CourseName       string               `json:"course_name"`
	TeeTime          time.Time            `json:"tee_time"`
	ExpectedTimeline map[string]time.Time `json:"expected_timeline"`
	Handedness       string               `json:"handedness"`
	Status           string               `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
}

type Clip struct {
	ID              string    `json:"id"`
	RoundID         string    `json:"round_id"`
	SubjectID       string    `json:"subject_id"`
	HoleNumber      int       `json:"hole_number"`
	CameraID        string    `json:"camera_id"`
	HLSManifest     string    `json:"hls_manifest"`
	PosterURL       string    `json:"poster_url"`
	DurationSec     int       `json:"duration_sec"`
	FaceBlurApplied bool      `json:"face_blur_applied"`
	PublishedAt     time.Time `json:"published_at"`
}

type SubjectProfile struct {
	ID         string                    `json:"id"`
	RoundID    string                    `json:"round_id"`
	UserID     string                    `json:"user_id,omitempty"`
	Type       string                    `json:"type"`
	Clothing   vision.ClothingDescriptor `json:"clothing_descriptor"`
	Handedness string                    `json:"handedness"`
	CreatedAt  time.Time                 `json:"created_at"`
}
