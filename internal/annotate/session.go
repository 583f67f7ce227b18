// Package annotate captures freehand annotations drawn over a rendered page.
//
// A Session owns an overlay Surface sized to its Target. Pointer events are
// mapped into overlay space and drawn as strokes while the bounding box of
// all points is tracked. Complete rasterizes the target document, draws the
// overlay over it, crops the result to the padded bounding box and hands a
// JPEG to the completion callback.
package annotate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateAttached State = iota
	StateCapturing
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateAttached:
		return "attached"
	case StateCapturing:
		return "capturing"
	case StateDetached:
		return "detached"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is one annotation tool instance bound to a Target.
type Session struct {
	mu         sync.Mutex
	state      State
	target     Target
	rasterizer Rasterizer
	surface    *Surface
	bounds     Bounds
	renderer   *StrokeRenderer
	onComplete func(FinalImage)

	padding float64
	quality int
}

// Option configures a Session.
type Option func(*Session)

// WithPadding sets the crop margin in overlay units.
func WithPadding(p float64) Option {
	return func(s *Session) {
		if p >= 0 {
			s.padding = p
		}
	}
}

// WithQuality sets the JPEG quality of emitted images.
func WithQuality(q int) Option { return func(s *Session) { s.quality = q } }

// Attach creates a session over target. The overlay is sized to the
// target's current rectangle and keeps that size for the session's
// lifetime. onComplete receives each successfully captured image.
func Attach(target Target, rasterizer Rasterizer, onComplete func(FinalImage), opts ...Option) (*Session, error) {
	rect := target.Rect()
	surface, err := NewSurface(int(rect.Width), int(rect.Height))
	if err != nil {
		return nil, err
	}
	s := &Session{
		state:      StateAttached,
		target:     target,
		rasterizer: rasterizer,
		surface:    surface,
		onComplete: onComplete,
		padding:    DefaultPadding,
		quality:    DefaultQuality,
	}
	s.renderer = NewStrokeRenderer(surface, &s.bounds)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StrokeState returns whether a gesture is in progress.
func (s *Session) StrokeState() StrokeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.renderer == nil {
		return Idle
	}
	return s.renderer.State()
}

// Bounds returns the bounding box of every point drawn since the last
// emitted image.
func (s *Session) Bounds() (Box, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds.Box()
}

// Snapshot returns a copy of the overlay pixels, or nil once detached.
func (s *Session) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil {
		return nil
	}
	return s.surface.Snapshot()
}

// HandleEvent feeds one input event to the stroke renderer. Events are
// ignored while a capture is running or after Detach.
func (s *Session) HandleEvent(ev PointerEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAttached {
		return
	}
	rect := s.target.Rect()
	if ev.Rect != nil {
		rect = *ev.Rect
	}
	s.renderer.Handle(ev, rect)
}

// Complete captures the annotated page. On success the image is passed to
// the completion callback and returned, and the overlay and bounds are
// reset. On failure the overlay and bounds are left as they were and the
// returned error wraps ErrCaptureFailed. A call made while another capture
// is running returns ErrCaptureInProgress without doing anything.
func (s *Session) Complete(ctx context.Context) (FinalImage, error) {
	s.mu.Lock()
	switch s.state {
	case StateCapturing:
		s.mu.Unlock()
		return FinalImage{}, ErrCaptureInProgress
	case StateDetached:
		s.mu.Unlock()
		return FinalImage{}, ErrDetached
	}
	s.state = StateCapturing
	s.renderer.Reset()
	box, drawn := s.bounds.Box()
	overlay := s.surface.Image()
	target := s.target
	s.mu.Unlock()

	img, err := s.capture(ctx, target, overlay, box, drawn)

	s.mu.Lock()
	if s.state == StateDetached {
		s.mu.Unlock()
		log.Println("Info: discarding annotation capture finished after detach")
		return FinalImage{}, ErrDetached
	}
	s.state = StateAttached
	if err != nil {
		s.mu.Unlock()
		log.Printf("WARN: annotation capture failed: %v", err)
		return FinalImage{}, err
	}
	s.surface.Clear()
	s.bounds.Reset()
	onComplete := s.onComplete
	s.mu.Unlock()

	if onComplete != nil {
		onComplete(img)
	}
	return img, nil
}

func (s *Session) capture(ctx context.Context, target Target, overlay *image.RGBA, box Box, drawn bool) (FinalImage, error) {
	doc, err := target.Document()
	if err != nil {
		return FinalImage{}, captureFailure(ErrTargetInaccessible, err)
	}
	w, h := target.ClientSize()
	sx, sy := target.Scroll()

	background, err := s.rasterizer.Rasterize(ctx, doc, Viewport{Width: w, Height: h, ScrollX: sx, ScrollY: sy})
	if err != nil {
		return FinalImage{}, captureFailure(ErrRasterization, err)
	}
	if background == nil || background.Bounds().Empty() {
		return FinalImage{}, captureFailure(ErrRasterization, errors.New("rasterizer returned an empty image"))
	}

	composite, err := Composite(background, overlay)
	if err != nil {
		return FinalImage{}, captureFailure(ErrCompositing, err)
	}

	var final image.Image = composite
	if drawn {
		ob := overlay.Bounds()
		cb := composite.Bounds()
		r := CropRect(box, ob.Dx(), ob.Dy(), cb.Dx(), cb.Dy(), s.padding)
		final = ExtractRegion(composite, r)
	}

	img, err := Encode(final, s.quality)
	if err != nil {
		return FinalImage{}, captureFailure(ErrEncoding, err)
	}
	return img, nil
}

// Detach ends the session and releases the overlay. It is safe to call more
// than once. A capture still running when Detach is called is discarded.
func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDetached {
		return
	}
	s.state = StateDetached
	s.surface = nil
	s.renderer = nil
	s.bounds.Reset()
	s.onComplete = nil
	s.target = nil
}
