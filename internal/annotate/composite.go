package annotate

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// DefaultPadding is the margin, in overlay units, kept around the strokes
// when cropping.
const DefaultPadding = 12

// Composite flattens overlay on top of background. The result has the
// background's pixel size; the overlay is stretched to cover it, so an
// overlay sized in CSS pixels lines up with a background rendered in
// device pixels.
func Composite(background, overlay image.Image) (*image.RGBA, error) {
	if background == nil || background.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty background", ErrCompositing)
	}
	if overlay == nil || overlay.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty overlay", ErrCompositing)
	}
	bb := background.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bb.Dx(), bb.Dy()))
	draw.Draw(dst, dst.Bounds(), background, bb.Min, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), overlay, overlay.Bounds(), draw.Over, nil)
	return dst, nil
}

// CropRect maps box from overlay space (overlayW×overlayH) into composite
// space (compW×compH), pads it and clamps it to the composite. The result is
// always at least one pixel wide and tall and lies inside the composite.
// Both sizes must be positive.
func CropRect(box Box, overlayW, overlayH, compW, compH int, padding float64) image.Rectangle {
	sx := float64(compW) / float64(overlayW)
	sy := float64(compH) / float64(overlayH)

	minX := clampInt(int(math.Floor((box.MinX-padding)*sx)), 0, compW-1)
	minY := clampInt(int(math.Floor((box.MinY-padding)*sy)), 0, compH-1)
	maxX := min(compW, int(math.Ceil((box.MaxX+padding)*sx)))
	maxY := min(compH, int(math.Ceil((box.MaxY+padding)*sy)))

	w := max(1, maxX-minX)
	h := max(1, maxY-minY)
	return image.Rect(minX, minY, minX+w, minY+h)
}

// ExtractRegion copies r out of img into a new image whose origin is (0,0).
func ExtractRegion(img image.Image, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min.Add(r.Min), draw.Src)
	return dst
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
