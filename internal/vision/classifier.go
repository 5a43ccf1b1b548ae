package vision

import (
	"image"
)

// Color labels produced by ClassifyClothing.
const (
	ColorWhite   = "white"
	ColorBlack   = "black"
	ColorRed     = "red"
	ColorBlue    = "blue"
	ColorGreen   = "green"
	ColorYellow  = "yellow"
	ColorPurple  = "purple"
	ColorOrange  = "orange"
	ColorBrown   = "brown"
	ColorGray    = "gray"
	ColorUnknown = "unknown"
)

const (
	// fraction of the box height that covers the shirt/torso
	torsoFraction = 0.4
	// spatial sampling stride over the region's pixel buffer
	sampleStride = 10
	// samples at or below this alpha are treated as transparent
	alphaCutoff = 128
)

type bucketRule struct {
	name  string
	match func(r, g, b uint8) bool
}

// Ordered; rules overlap and the first match wins, so reordering changes
// observable classifications.
var bucketRules = []bucketRule{
	{ColorWhite, func(r, g, b uint8) bool { return r > 200 && g > 200 && b > 200 }},
	{ColorBlack, func(r, g, b uint8) bool { return r < 80 && g < 80 && b < 80 }},
	{ColorRed, func(r, g, b uint8) bool { return int(r) > int(g)+50 && int(r) > int(b)+50 }},
	{ColorBlue, func(r, g, b uint8) bool { return int(b) > int(r)+50 && int(b) > int(g)+50 }},
	{ColorGreen, func(r, g, b uint8) bool { return int(g) > int(r)+50 && int(g) > int(b)+50 }},
	{ColorYellow, func(r, g, b uint8) bool { return r > 150 && g > 150 && b < 100 }},
	{ColorPurple, func(r, g, b uint8) bool { return r > 100 && g < 80 && b > 100 }},
	{ColorOrange, func(r, g, b uint8) bool { return r > 100 && g > 80 && b < 80 }},
	{ColorBrown, func(r, g, b uint8) bool { return r > 80 && g > 60 && b < 60 }},
}

// ClassifyClothing samples the upper-body region of a detection box and
// returns the dominant color bucket. Returns ColorUnknown when the region
// yields no usable samples.
func ClassifyClothing(img image.Image, box BoundingBox) string {
	if img == nil {
		return ColorUnknown
	}
	box = ClampBox(box, img.Bounds())

	// upper 40% of the box: shirt and torso, not legs
	region := image.Rect(
		int(box.X),
		int(box.Y),
		int(box.X+box.Width),
		int(box.Y+box.Height*torsoFraction),
	).Intersect(img.Bounds())
	if region.Empty() {
		return ColorUnknown
	}

	w := region.Dx()
	h := region.Dy()
	counts := make(map[string]int, len(bucketRules)+1)
	sampled := 0

	for idx := 0; idx < w*h; idx += sampleStride {
		x := region.Min.X + idx%w
		y := region.Min.Y + idx/w
		r16, g16, b16, a16 := img.At(x, y).RGBA()
		if uint8(a16>>8) <= alphaCutoff {
			continue
		}
		sampled++
		counts[classifyPixel(uint8(r16>>8), uint8(g16>>8), uint8(b16>>8))]++
	}

	if sampled == 0 {
		return ColorUnknown
	}

	// ties resolve to the first-declared bucket
	best := ""
	bestCount := 0
	for _, rule := range bucketRules {
		if counts[rule.name] > bestCount {
			best = rule.name
			bestCount = counts[rule.name]
		}
	}
	if counts[ColorGray] > bestCount {
		best = ColorGray
	}
	if best == "" {
		best = ColorGray
	}
	return best
}

func classifyPixel(r, g, b uint8) string {
	for _, rule := range bucketRules {
		if rule.match(r, g, b) {
			return rule.name
		}
	}
	return ColorGray
}
