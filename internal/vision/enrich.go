package vision

import (
	"fmt"
	"image"
	"time"
)

// Enrich classifies the clothing region of each filtered detection and
// attaches the per-frame identity and target-color flag. The returned slice
// wholesale replaces the previous cycle's detections; identities carry no
// meaning across frames.
func Enrich(frame image.Image, detections []Detection, targetColors []string, capturedAt time.Time) []EnrichedDetection {
	enriched := make([]EnrichedDetection, 0, len(detections))
	for i, d := range detections {
		if frame != nil {
			d.Box = ClampBox(d.Box, frame.Bounds())
		}
		color := ClassifyClothing(frame, d.Box)
		enriched = append(enriched, EnrichedDetection{
			Detection:     d,
			ClothingColor: color,
			IsTargetColor: containsColor(targetColors, color),
			Identity:      frameIdentity(i, d.Box, capturedAt),
			CapturedAt:    capturedAt,
		})
	}
	return enriched
}

// target membership is case-sensitive; callers supply labels from the
// classifier's own closed set
func containsColor(targets []string, color string) bool {
	for _, t := range targets {
		if t == color {
			return true
		}
	}
	return false
}

// position + capture time disambiguates same-frame detections, nothing more
func frameIdentity(index int, box BoundingBox, at time.Time) string {
	return fmt.Sprintf("det-%d-%d-%d-%d", index, int(box.X), int(box.Y), at.UnixMilli())
}
