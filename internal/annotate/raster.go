package annotate

import (
	"context"
	"image"
)

// Document is the embedded page being annotated.
type Document struct {
	HTML string
}

// Viewport describes what part of a Document is visible: its client size in
// CSS pixels and its current scroll offset.
type Viewport struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
}

// Rasterizer renders a Document as it appears in a Viewport. The returned
// image may be larger than the viewport when the renderer works in device
// pixels.
type Rasterizer interface {
	Rasterize(ctx context.Context, doc Document, vp Viewport) (image.Image, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(ctx context.Context, doc Document, vp Viewport) (image.Image, error)

func (f RasterizerFunc) Rasterize(ctx context.Context, doc Document, vp Viewport) (image.Image, error) {
	return f(ctx, doc, vp)
}

// Target is the element an annotation session is attached to. Every method
// is queried live; implementations must not cache.
type Target interface {
	// Rect is the on-screen rectangle of the element.
	Rect() Rect
	// ClientSize is the visible size of the embedded document.
	ClientSize() (w, h int)
	// Scroll is the embedded document's current scroll offset.
	Scroll() (x, y float64)
	// Document returns the embedded document, or an error wrapping
	// ErrTargetInaccessible when it cannot be read.
	Document() (Document, error)
}
