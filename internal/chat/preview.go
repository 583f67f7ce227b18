package chat

import (
	"fmt"
	"sync"

	"sitesketch/internal/annotate"
)

// Layout is the preview frame geometry reported by the client.
type Layout struct {
	Rect         annotate.Rect `json:"rect"`
	ClientWidth  int           `json:"clientWidth"`
	ClientHeight int           `json:"clientHeight"`
	ScrollX      float64       `json:"scrollX"`
	ScrollY      float64       `json:"scrollY"`
}

// PreviewTarget is the live preview frame of a conversation as seen by an
// annotation session. Layout values are replaced as the client reports them;
// the document is read from the conversation on every call.
type PreviewTarget struct {
	mu     sync.Mutex
	layout Layout
	html   func() string
}

func newPreviewTarget(layout Layout, html func() string) *PreviewTarget {
	if layout.ClientWidth <= 0 {
		layout.ClientWidth = int(layout.Rect.Width)
	}
	if layout.ClientHeight <= 0 {
		layout.ClientHeight = int(layout.Rect.Height)
	}
	return &PreviewTarget{layout: layout, html: html}
}

// SetRect records a new on-screen rectangle for the frame.
func (p *PreviewTarget) SetRect(r annotate.Rect) {
	p.mu.Lock()
	p.layout.Rect = r
	p.mu.Unlock()
}

// SetScroll records the frame document's scroll offset.
func (p *PreviewTarget) SetScroll(x, y float64) {
	p.mu.Lock()
	p.layout.ScrollX, p.layout.ScrollY = x, y
	p.mu.Unlock()
}

// SetClientSize records the frame document's visible size.
func (p *PreviewTarget) SetClientSize(w, h int) {
	p.mu.Lock()
	if w > 0 && h > 0 {
		p.layout.ClientWidth, p.layout.ClientHeight = w, h
	}
	p.mu.Unlock()
}

func (p *PreviewTarget) Rect() annotate.Rect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.layout.Rect
}

func (p *PreviewTarget) ClientSize() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.layout.ClientWidth, p.layout.ClientHeight
}

func (p *PreviewTarget) Scroll() (float64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.layout.ScrollX, p.layout.ScrollY
}

// Document returns the conversation's current HTML. It fails while nothing
// has been generated yet.
func (p *PreviewTarget) Document() (annotate.Document, error) {
	html := p.html()
	if html == "" {
		return annotate.Document{}, fmt.Errorf("%w: no preview has been generated yet", annotate.ErrTargetInaccessible)
	}
	return annotate.Document{HTML: html}, nil
}
