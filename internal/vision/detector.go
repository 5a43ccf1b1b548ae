package vision

import (
	"context"
	"image"
)

// ClassPerson is the only detector class retained downstream.
const ClassPerson = "person"

// MinScore is the acceptance threshold; detections must score strictly
// above it.
const MinScore = 0.5

// Detector returns the bounding boxes found in one frame. Implementations
// must honor ctx cancellation for long-running inference.
type Detector func(ctx context.Context, img image.Image) ([]Detection, error)

// Postprocessor filters or modifies an incoming array of Detections.
type Postprocessor func([]Detection) []Detection

// NewScoreFilter returns a function that drops detections at or below conf.
func NewScoreFilter(conf float64) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Score > conf {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewClassFilter returns a function that keeps only detections of the given
// class.
func NewClassFilter(class string) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Class == class {
				out = append(out, d)
			}
		}
		return out
	}
}

// PersonFilter is the standard postprocessing chain: person class only,
// score strictly above MinScore.
func PersonFilter(in []Detection) []Detection {
	return NewScoreFilter(MinScore)(NewClassFilter(ClassPerson)(in))
}

// ClampBox clamps a bounding box to the frame bounds. Detectors are not
// trusted to stay inside the frame.
func ClampBox(box BoundingBox, bounds image.Rectangle) BoundingBox {
	minX, minY := float64(bounds.Min.X), float64(bounds.Min.Y)
	maxX, maxY := float64(bounds.Max.X), float64(bounds.Max.Y)

	if box.Width < 0 {
		box.Width = 0
	}
	if box.Height < 0 {
		box.Height = 0
	}
	if box.X < minX {
		box.Width -= minX - box.X
		box.X = minX
	}
	if box.Y < minY {
		box.Height -= minY - box.Y
		box.Y = minY
	}
	if box.X > maxX {
		box.X = maxX
	}
	if box.Y > maxY {
		box.Y = maxY
	}
	if box.X+box.Width > maxX {
		box.Width = maxX - box.X
	}
	if box.Y+box.Height > maxY {
		box.Height = maxY - box.Y
	}
	if box.Width < 0 {
		box.Width = 0
	}
	if box.Height < 0 {
		box.Height = 0
	}
	return box
}
