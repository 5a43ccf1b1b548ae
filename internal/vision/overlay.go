package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	targetStroke = color.RGBA{R: 0, G: 220, B: 90, A: 255}
	mutedStroke  = color.RGBA{R: 255, G: 210, B: 40, A: 255}
	labelText    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	labelShadow  = color.RGBA{R: 0, G: 0, B: 0, A: 180}
)

// RenderOverlay draws the frame plus one rectangle and label per detection
// onto a new RGBA image. Target-color detections get an emphasized stroke.
// Pure side effect on the returned surface; the input frame is not modified.
func RenderOverlay(frame image.Image, detections []EnrichedDetection) *image.RGBA {
	if frame == nil {
		return nil
	}
	bounds := frame.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, frame, bounds.Min, draw.Src)

	for _, d := range detections {
		rect := image.Rect(
			int(d.Box.X),
			int(d.Box.Y),
			int(d.Box.X+d.Box.Width),
			int(d.Box.Y+d.Box.Height),
		).Intersect(bounds)
		if rect.Empty() {
			continue
		}

		stroke := mutedStroke
		thickness := 1
		if d.IsTargetColor {
			stroke = targetStroke
			thickness = 3
		}
		drawRect(out, rect, stroke, thickness)

		label := fmt.Sprintf("%s %.0f%% %s", d.Class, d.Score*100, d.ClothingColor)
		drawLabel(out, rect.Min.X+2, rect.Min.Y-4, label)
	}
	return out
}

func drawRect(img *image.RGBA, rect image.Rectangle, c color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		r := rect.Inset(-t)
		if !r.In(img.Bounds()) {
			r = r.Intersect(img.Bounds())
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, r.Min.Y, c)
			img.SetRGBA(x, r.Max.Y-1, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.SetRGBA(r.Min.X, y, c)
			img.SetRGBA(r.Max.X-1, y, c)
		}
	}
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	if y < basicfont.Face7x13.Height {
		y = basicfont.Face7x13.Height
	}
	shadow := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelShadow),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x+1, y+1),
	}
	shadow.DrawString(text)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
