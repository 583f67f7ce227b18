package chat

import (
	"context"
	"log"

	"sitesketch/internal/annotate"
)

// AnnotationStatus describes the open annotation tool.
type AnnotationStatus struct {
	State   string        `json:"state"`
	Drawing bool          `json:"drawing"`
	Bounds  *annotate.Box `json:"bounds,omitempty"`
}

func statusOf(sess *annotate.Session) AnnotationStatus {
	st := AnnotationStatus{
		State:   sess.State().String(),
		Drawing: sess.StrokeState() == annotate.Drawing,
	}
	if box, ok := sess.Bounds(); ok {
		st.Bounds = &box
	}
	return st
}

// StartAnnotation opens the annotation tool over the conversation's preview
// frame. An already open tool is closed first, since its overlay belongs to
// the previous frame geometry.
func (s *Service) StartAnnotation(id string, layout Layout) (AnnotationStatus, error) {
	c, err := s.store.Get(id)
	if err != nil {
		return AnnotationStatus{}, err
	}

	preview := newPreviewTarget(layout, c.HTML)
	var sess *annotate.Session
	sess, err = annotate.Attach(preview, s.rasterizer, func(img annotate.FinalImage) {
		s.annotationDone(c, sess, img)
	}, s.sessOpts...)
	if err != nil {
		return AnnotationStatus{}, err
	}

	c.mu.Lock()
	prev := c.annotation
	c.annotation, c.preview = sess, preview
	c.mu.Unlock()
	if prev != nil {
		prev.Detach()
	}
	log.Printf("Info: conversation %s annotation started (%.0fx%.0f)", id, layout.Rect.Width, layout.Rect.Height)
	return statusOf(sess), nil
}

// annotationDone stores the captured image for the next message and closes
// the tool.
func (s *Service) annotationDone(c *Conversation, sess *annotate.Session, img annotate.FinalImage) {
	c.mu.Lock()
	if c.annotation != sess {
		c.mu.Unlock()
		return
	}
	c.pending = &img
	c.annotation, c.preview = nil, nil
	c.mu.Unlock()
	sess.Detach()
	log.Printf("Info: conversation %s annotation captured (%dx%d, %d bytes)", c.ID, img.Width, img.Height, len(img.Data))
}

func (s *Service) session(id string) (*annotate.Session, *PreviewTarget, error) {
	c, err := s.store.Get(id)
	if err != nil {
		return nil, nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.annotation == nil {
		return nil, nil, ErrNotAnnotating
	}
	return c.annotation, c.preview, nil
}

// HandleAnnotationEvents feeds pointer events to the open tool.
func (s *Service) HandleAnnotationEvents(id string, events []annotate.PointerEvent) (AnnotationStatus, error) {
	sess, _, err := s.session(id)
	if err != nil {
		return AnnotationStatus{}, err
	}
	for _, ev := range events {
		sess.HandleEvent(ev)
	}
	return statusOf(sess), nil
}

// UpdateLayout records new preview geometry reported by the client.
func (s *Service) UpdateLayout(id string, layout Layout) error {
	_, preview, err := s.session(id)
	if err != nil {
		return err
	}
	if layout.Rect.Width > 0 && layout.Rect.Height > 0 {
		preview.SetRect(layout.Rect)
	}
	preview.SetClientSize(layout.ClientWidth, layout.ClientHeight)
	preview.SetScroll(layout.ScrollX, layout.ScrollY)
	return nil
}

// AnnotationStatus reports the state of the open tool.
func (s *Service) AnnotationStatus(id string) (AnnotationStatus, error) {
	sess, _, err := s.session(id)
	if err != nil {
		return AnnotationStatus{}, err
	}
	return statusOf(sess), nil
}

// CompleteAnnotation captures the annotated preview. scroll, when non-nil,
// is the frame's scroll offset at the moment the user pressed done.
func (s *Service) CompleteAnnotation(ctx context.Context, id string, scroll *annotate.Point) (annotate.FinalImage, error) {
	sess, preview, err := s.session(id)
	if err != nil {
		return annotate.FinalImage{}, err
	}
	if scroll != nil {
		preview.SetScroll(scroll.X, scroll.Y)
	}
	return sess.Complete(ctx)
}

// CancelAnnotation closes the tool without capturing.
func (s *Service) CancelAnnotation(id string) error {
	c, err := s.store.Get(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	sess := c.annotation
	c.annotation, c.preview = nil, nil
	c.mu.Unlock()
	if sess == nil {
		return ErrNotAnnotating
	}
	sess.Detach()
	return nil
}
