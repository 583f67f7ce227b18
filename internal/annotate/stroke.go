package annotate

// StrokeState is the state of the stroke renderer.
type StrokeState int

const (
	Idle StrokeState = iota
	Drawing
)

func (s StrokeState) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// Transition returns the state that follows s when an event of kind k
// arrives. Moves never change the state.
func Transition(s StrokeState, k EventKind) StrokeState {
	switch {
	case k.isDown():
		return Drawing
	case k.isUp():
		return Idle
	}
	return s
}

// StrokeRenderer turns pointer gestures into line segments on a Surface and
// widens Bounds with every point it sees. Strokes only add pixels.
type StrokeRenderer struct {
	surface *Surface
	bounds  *Bounds
	state   StrokeState
	last    Point
}

// NewStrokeRenderer returns an idle renderer drawing onto surface.
func NewStrokeRenderer(surface *Surface, bounds *Bounds) *StrokeRenderer {
	return &StrokeRenderer{surface: surface, bounds: bounds}
}

// State reports whether a gesture is in progress.
func (r *StrokeRenderer) State() StrokeState { return r.state }

// Handle applies one event. rect is the overlay rectangle to map the event
// against.
func (r *StrokeRenderer) Handle(ev PointerEvent, rect Rect) {
	switch {
	case ev.Kind.isDown():
		p, ok := MapPoint(ev, rect)
		if !ok {
			return
		}
		r.last = p
		r.bounds.Add(p)
	case ev.Kind.isMove():
		if r.state != Drawing {
			return
		}
		p, ok := MapPoint(ev, rect)
		if !ok {
			return
		}
		r.surface.Line(r.last, p)
		r.bounds.Add(p)
		r.last = p
	case !ev.Kind.isUp():
		return
	}
	r.state = Transition(r.state, ev.Kind)
}

// Reset ends any gesture in progress.
func (r *StrokeRenderer) Reset() {
	r.state = Idle
	r.last = Point{}
}
