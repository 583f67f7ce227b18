package annotate

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
)

const strokeWidth = 4

// Surface is the transparent overlay the user draws on. Its size is fixed
// when it is created.
type Surface struct {
	img *image.RGBA
	dc  *gg.Context
}

// NewSurface allocates a cleared w×h overlay with the annotation stroke
// style applied.
func NewSurface(w, h int) (*Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: overlay size %dx%d", ErrCompositing, w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(img)
	dc.SetRGBA(1, 22.0/255, 22.0/255, 0.7)
	dc.SetLineWidth(strokeWidth)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	return &Surface{img: img, dc: dc}, nil
}

// Line strokes a straight segment between two overlay-local points.
func (s *Surface) Line(from, to Point) {
	s.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	s.dc.Stroke()
}

// Clear makes every pixel fully transparent again.
func (s *Surface) Clear() {
	clear(s.img.Pix)
}

// Image exposes the backing buffer. Callers must not write to it.
func (s *Surface) Image() *image.RGBA { return s.img }

// Size returns the overlay dimensions in pixels.
func (s *Surface) Size() (w, h int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Snapshot returns a copy of the raw pixel data.
func (s *Surface) Snapshot() []byte {
	return append([]byte(nil), s.img.Pix...)
}
