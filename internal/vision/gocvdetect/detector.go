// Package gocvdetect backs the vision pipeline's Detector and FrameSource
// contracts with OpenCV via gocv: a MobileNet-SSD style DNN for person
// detection and a VideoCapture-based camera/stream source.
package gocvdetect

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"birdieo-service/internal/vision"
)

// VOC class list used by MobileNet-SSD models.
var ssdClasses = []string{
	"background", "aeroplane", "bicycle", "bird", "boat",
	"bottle", "bus", "car", "cat", "chair",
	"cow", "diningtable", "dog", "horse", "motorbike",
	"person", "pottedplant", "sheep", "sofa", "train",
	"tvmonitor",
}

const (
	inputSize = 300
	inputMean = 127.5
	// detections scoring below this are noise and dropped before the
	// pipeline's own filters run
	floorScore = 0.2
)

// Net wraps a loaded DNN and exposes it as a vision.Detector.
type Net struct {
	net gocv.Net
	log zerolog.Logger
}

// Load reads the model weights and config from disk. The caller owns the
// returned Net and must Close it.
func Load(modelPath, configPath string, log zerolog.Logger) (*Net, error) {
	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to read model from %q / %q", modelPath, configPath)
	}
	log.Info().Str("model", modelPath).Msg("loaded detection model")
	return &Net{net: net, log: log.With().Str("component", "gocv_detector").Logger()}, nil
}

func (n *Net) Close() error {
	return n.net.Close()
}

// Detector returns the vision.Detector bound to this net. Inference runs on
// the calling goroutine; the session serializes calls, so no lock is needed.
func (n *Net) Detector() vision.Detector {
	return func(ctx context.Context, img image.Image) ([]vision.Detection, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return n.infer(img)
	}
}

func (n *Net) infer(img image.Image) ([]vision.Detection, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/inputMean, image.Pt(inputSize, inputSize),
		gocv.NewScalar(inputMean, inputMean, inputMean, 0), true, false)
	defer blob.Close()

	n.net.SetInput(blob, "")
	prob := n.net.Forward("")
	defer prob.Close()

	flat := prob.Reshape(1, 1)
	defer flat.Close()

	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())

	var detections []vision.Detection
	// each SSD detection row is [batch, classID, score, x1, y1, x2, y2]
	for i := 0; i < flat.Total(); i += 7 {
		score := float64(flat.GetFloatAt(0, i+2))
		if score < floorScore {
			continue
		}
		classID := int(flat.GetFloatAt(0, i+1))
		if classID < 0 || classID >= len(ssdClasses) {
			continue
		}
		x1 := float64(flat.GetFloatAt(0, i+3)) * w
		y1 := float64(flat.GetFloatAt(0, i+4)) * h
		x2 := float64(flat.GetFloatAt(0, i+5)) * w
		y2 := float64(flat.GetFloatAt(0, i+6)) * h

		detections = append(detections, vision.Detection{
			Class: ssdClasses[classID],
			Score: score,
			Box: vision.ClampBox(vision.BoundingBox{
				X:      x1,
				Y:      y1,
				Width:  x2 - x1,
				Height: y2 - y1,
			}, img.Bounds()),
		})
	}
	return detections, nil
}
