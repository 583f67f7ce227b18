package annotate

import "math"

// Box is an axis-aligned rectangle in overlay-local coordinates.
type Box struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Bounds accumulates the bounding box of every point recorded since the
// last Reset. It is empty until the first point arrives.
type Bounds struct {
	box Box
	set bool
}

// Add widens the box to include p.
func (b *Bounds) Add(p Point) {
	if !b.set {
		b.box = Box{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
		b.set = true
		return
	}
	b.box.MinX = math.Min(b.box.MinX, p.X)
	b.box.MinY = math.Min(b.box.MinY, p.Y)
	b.box.MaxX = math.Max(b.box.MaxX, p.X)
	b.box.MaxY = math.Max(b.box.MaxY, p.Y)
}

// Box returns the current box and whether any point has been recorded.
func (b *Bounds) Box() (Box, bool) { return b.box, b.set }

// Reset empties the bounds.
func (b *Bounds) Reset() { *b = Bounds{} }
