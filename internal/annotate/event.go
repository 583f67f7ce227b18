package annotate

// Point is a position in overlay-local coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an on-screen rectangle as reported by the client (CSS pixels).
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EventKind names a pointer or touch event delivered to the overlay.
type EventKind string

const (
	PointerDown  EventKind = "pointerdown"
	PointerMove  EventKind = "pointermove"
	PointerUp    EventKind = "pointerup"
	PointerLeave EventKind = "pointerleave"
	TouchStart   EventKind = "touchstart"
	TouchMove    EventKind = "touchmove"
	TouchEnd     EventKind = "touchend"
	TouchCancel  EventKind = "touchcancel"
)

// Touch is a single active touch point.
type Touch struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// PointerEvent is one input event on the overlay. Rect is the overlay's
// bounding rectangle at the moment the event fired; when it is nil the
// session queries its target instead.
type PointerEvent struct {
	Kind    EventKind `json:"type" binding:"required"`
	ClientX float64   `json:"clientX"`
	ClientY float64   `json:"clientY"`
	Touches []Touch   `json:"touches,omitempty"`
	Rect    *Rect     `json:"rect,omitempty"`
}

func (k EventKind) isTouch() bool {
	switch k {
	case TouchStart, TouchMove, TouchEnd, TouchCancel:
		return true
	}
	return false
}

func (k EventKind) isDown() bool { return k == PointerDown || k == TouchStart }

func (k EventKind) isMove() bool { return k == PointerMove || k == TouchMove }

func (k EventKind) isUp() bool {
	switch k {
	case PointerUp, PointerLeave, TouchEnd, TouchCancel:
		return true
	}
	return false
}

// Valid reports whether k is one of the known event kinds.
func (k EventKind) Valid() bool { return k.isDown() || k.isMove() || k.isUp() }

// MapPoint translates ev into coordinates local to rect by subtracting the
// rectangle's top-left corner from the event's client position. Touch
// events use their first active touch; ok is false when there is none.
func MapPoint(ev PointerEvent, rect Rect) (p Point, ok bool) {
	x, y := ev.ClientX, ev.ClientY
	if ev.Kind.isTouch() {
		if len(ev.Touches) == 0 {
			return Point{}, false
		}
		x, y = ev.Touches[0].ClientX, ev.Touches[0].ClientY
	}
	return Point{X: x - rect.Left, Y: y - rect.Top}, true
}
