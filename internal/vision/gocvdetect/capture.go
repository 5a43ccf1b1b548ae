package gocvdetect

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"birdieo-service/internal/vision"
)

// Capture adapts a gocv.VideoCapture (device index, file path or stream URL)
// to the pipeline's FrameSource contract.
type Capture struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	mat    gocv.Mat
	closed bool
}

// OpenCapture opens a camera device or stream. source is anything
// gocv.OpenVideoCapture accepts: an int device index or a path/URL string.
func OpenCapture(source interface{}) (*Capture, error) {
	vc, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture source %v: %w", source, err)
	}
	return &Capture{vc: vc, mat: gocv.NewMat()}, nil
}

// Next reads and decodes the current frame. Returns vision.ErrSourceClosed
// once the stream ends or the capture is closed.
func (c *Capture) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, vision.ErrSourceClosed
	}
	if ok := c.vc.Read(&c.mat); !ok {
		return nil, vision.ErrSourceClosed
	}
	if c.mat.Empty() {
		return nil, fmt.Errorf("empty frame")
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.mat.Close(); err != nil {
		return err
	}
	return c.vc.Close()
}
