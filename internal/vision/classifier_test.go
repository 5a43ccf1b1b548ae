package vision

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestClassifyClothingBuckets(t *testing.T) {
	tests := []struct {
		name string
		rgb  color.RGBA
		want string
	}{
		{"white", color.RGBA{220, 220, 220, 255}, ColorWhite},
		{"black", color.RGBA{20, 20, 20, 255}, ColorBlack},
		{"red", color.RGBA{200, 50, 50, 255}, ColorRed},
		{"blue", color.RGBA{20, 20, 200, 255}, ColorBlue},
		{"green", color.RGBA{20, 200, 20, 255}, ColorGreen},
		{"yellow", color.RGBA{200, 200, 50, 255}, ColorYellow},
		{"purple", color.RGBA{150, 50, 150, 255}, ColorPurple},
		{"orange", color.RGBA{150, 100, 50, 255}, ColorOrange},
		{"brown", color.RGBA{100, 70, 40, 255}, ColorBrown},
		{"gray default", color.RGBA{150, 150, 150, 255}, ColorGray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := solidFrame(120, 240, tt.rgb)
			got := ClassifyClothing(frame, BoundingBox{X: 10, Y: 10, Width: 100, Height: 200})
			assert.Equal(t, tt.want, got)
		})
	}
}

// a pixel satisfying both the red and orange thresholds classifies as red
// because red is declared first
func TestClassifyClothingRuleOrder(t *testing.T) {
	frame := solidFrame(100, 100, color.RGBA{200, 90, 40, 255})
	assert.Equal(t, ColorRed, ClassifyClothing(frame, BoundingBox{Width: 100, Height: 100}))
}

func TestClassifyClothingSkipsTransparentSamples(t *testing.T) {
	frame := solidFrame(100, 200, color.RGBA{20, 20, 200, 100})
	got := ClassifyClothing(frame, BoundingBox{Width: 100, Height: 200})
	assert.Equal(t, ColorUnknown, got, "fully transparent region yields no samples")
}

func TestClassifyClothingMostlyTransparent(t *testing.T) {
	// transparent blue background, a band of opaque red inside the torso region
	frame := solidFrame(100, 200, color.RGBA{20, 20, 200, 100})
	band := image.Rect(0, 0, 100, 20)
	draw.Draw(frame, band, image.NewUniform(color.RGBA{200, 40, 40, 255}), image.Point{}, draw.Src)

	got := ClassifyClothing(frame, BoundingBox{Width: 100, Height: 200})
	assert.Equal(t, ColorRed, got, "only opaque samples count toward the tally")
}

func TestClassifyClothingUsesUpperBodyOnly(t *testing.T) {
	// blue shirt in the upper 40%, red legs below: only the shirt is sampled
	frame := solidFrame(100, 200, color.RGBA{200, 40, 40, 255})
	torso := image.Rect(0, 0, 100, 80)
	draw.Draw(frame, torso, image.NewUniform(color.RGBA{20, 20, 200, 255}), image.Point{}, draw.Src)

	got := ClassifyClothing(frame, BoundingBox{Width: 100, Height: 200})
	assert.Equal(t, ColorBlue, got)
}

func TestClassifyClothingOutOfBounds(t *testing.T) {
	frame := solidFrame(100, 100, color.RGBA{20, 20, 200, 255})

	assert.Equal(t, ColorUnknown,
		ClassifyClothing(frame, BoundingBox{X: 500, Y: 500, Width: 50, Height: 50}),
		"box entirely outside the frame")
	assert.Equal(t, ColorUnknown,
		ClassifyClothing(frame, BoundingBox{X: 10, Y: 10, Width: 0, Height: 0}),
		"zero-area box")
	assert.Equal(t, ColorUnknown, ClassifyClothing(nil, BoundingBox{Width: 10, Height: 10}))

	// partially out of bounds clamps instead of failing
	got := ClassifyClothing(frame, BoundingBox{X: -20, Y: -20, Width: 100, Height: 100})
	assert.Equal(t, ColorBlue, got)
}

func TestClampBox(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	clamped := ClampBox(BoundingBox{X: -10, Y: -10, Width: 200, Height: 200}, bounds)
	assert.Equal(t, BoundingBox{X: 0, Y: 0, Width: 100, Height: 100}, clamped)

	clamped = ClampBox(BoundingBox{X: 90, Y: 90, Width: 50, Height: 50}, bounds)
	assert.Equal(t, BoundingBox{X: 90, Y: 90, Width: 10, Height: 10}, clamped)

	clamped = ClampBox(BoundingBox{X: 10, Y: 10, Width: -5, Height: -5}, bounds)
	assert.Equal(t, float64(0), clamped.Width)
	assert.Equal(t, float64(0), clamped.Height)
}
