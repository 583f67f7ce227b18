package annotate

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPoint(t *testing.T) {
	rect := Rect{Left: 100, Top: 40, Width: 400, Height: 300}

	p, ok := MapPoint(PointerEvent{Kind: PointerMove, ClientX: 150, ClientY: 90}, rect)
	require.True(t, ok)
	assert.Equal(t, Point{X: 50, Y: 50}, p)

	p, ok = MapPoint(PointerEvent{
		Kind:    TouchMove,
		ClientX: 999, ClientY: 999,
		Touches: []Touch{{ClientX: 110, ClientY: 45}, {ClientX: 300, ClientY: 300}},
	}, rect)
	require.True(t, ok)
	assert.Equal(t, Point{X: 10, Y: 5}, p)

	_, ok = MapPoint(PointerEvent{Kind: TouchEnd}, rect)
	assert.False(t, ok)
}

func TestMapPointFollowsRect(t *testing.T) {
	ev := PointerEvent{Kind: PointerDown, ClientX: 200, ClientY: 200}
	a, _ := MapPoint(ev, Rect{Left: 0, Top: 0})
	b, _ := MapPoint(ev, Rect{Left: 50, Top: -25})
	assert.Equal(t, Point{X: 200, Y: 200}, a)
	assert.Equal(t, Point{X: 150, Y: 225}, b)
}

func TestBounds(t *testing.T) {
	var b Bounds
	_, ok := b.Box()
	assert.False(t, ok, "empty bounds must be absent")

	gestures := [][]Point{
		{{X: 30, Y: 80}, {X: 35, Y: 70}},
		{{X: 5, Y: 90}},
		{{X: 60, Y: 10}, {X: 61, Y: 11}, {X: 40, Y: 95}},
	}
	for _, g := range gestures {
		for _, p := range g {
			b.Add(p)
		}
	}
	box, ok := b.Box()
	require.True(t, ok)
	if diff := cmp.Diff(Box{MinX: 5, MinY: 10, MaxX: 61, MaxY: 95}, box); diff != "" {
		t.Errorf("box mismatch (-want +got):\n%s", diff)
	}

	b.Reset()
	_, ok = b.Box()
	assert.False(t, ok)
}

func TestTransition(t *testing.T) {
	cases := []struct {
		from StrokeState
		kind EventKind
		want StrokeState
	}{
		{Idle, PointerDown, Drawing},
		{Idle, TouchStart, Drawing},
		{Idle, PointerMove, Idle},
		{Idle, PointerUp, Idle},
		{Drawing, PointerMove, Drawing},
		{Drawing, TouchMove, Drawing},
		{Drawing, PointerUp, Idle},
		{Drawing, PointerLeave, Idle},
		{Drawing, TouchEnd, Idle},
		{Drawing, TouchCancel, Idle},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Transition(c.from, c.kind), "%v on %s", c.from, c.kind)
	}
}

func TestStrokeRendererDrawsOnlyWhileDrawing(t *testing.T) {
	surface, err := NewSurface(100, 100)
	require.NoError(t, err)
	var bounds Bounds
	r := NewStrokeRenderer(surface, &bounds)
	rect := Rect{Width: 100, Height: 100}
	blank := surface.Snapshot()

	r.Handle(PointerEvent{Kind: PointerMove, ClientX: 20, ClientY: 20}, rect)
	assert.Equal(t, blank, surface.Snapshot(), "move while idle must not draw")
	_, ok := bounds.Box()
	assert.False(t, ok)

	r.Handle(PointerEvent{Kind: PointerDown, ClientX: 10, ClientY: 10}, rect)
	assert.Equal(t, Drawing, r.State())
	r.Handle(PointerEvent{Kind: PointerMove, ClientX: 50, ClientY: 30}, rect)
	r.Handle(PointerEvent{Kind: PointerUp, ClientX: 90, ClientY: 90}, rect)
	assert.Equal(t, Idle, r.State())

	assert.NotEqual(t, blank, surface.Snapshot())
	box, ok := bounds.Box()
	require.True(t, ok)
	assert.Equal(t, Box{MinX: 10, MinY: 10, MaxX: 50, MaxY: 30}, box, "pointer-up must not widen bounds")

	_, _, _, a := surface.Image().At(30, 20).RGBA()
	assert.NotZero(t, a, "segment pixels must be painted")
}

func TestStrokeRendererClickWithoutDrag(t *testing.T) {
	surface, err := NewSurface(50, 50)
	require.NoError(t, err)
	var bounds Bounds
	r := NewStrokeRenderer(surface, &bounds)
	rect := Rect{Width: 50, Height: 50}

	r.Handle(PointerEvent{Kind: PointerDown, ClientX: 10, ClientY: 10}, rect)
	r.Handle(PointerEvent{Kind: PointerUp, ClientX: 10, ClientY: 10}, rect)

	box, ok := bounds.Box()
	require.True(t, ok)
	assert.Equal(t, Box{MinX: 10, MinY: 10, MaxX: 10, MaxY: 10}, box)
}

func TestNewSurfaceRejectsEmpty(t *testing.T) {
	_, err := NewSurface(0, 10)
	assert.ErrorIs(t, err, ErrCompositing)
}

func TestCropRectScenario(t *testing.T) {
	box := Box{MinX: 50, MinY: 50, MaxX: 150, MaxY: 100}
	r := CropRect(box, 400, 300, 800, 600, 12)
	assert.Equal(t, image.Rect(76, 76, 324, 224), r)
	assert.Equal(t, 248, r.Dx())
	assert.Equal(t, 148, r.Dy())
}

func TestCropRectClampsToComposite(t *testing.T) {
	r := CropRect(Box{MinX: 2, MinY: 3, MaxX: 398, MaxY: 299}, 400, 300, 800, 600, 12)
	assert.Equal(t, image.Rect(0, 0, 800, 600), r)
}

func TestCropRectInvariant(t *testing.T) {
	boxes := []Box{
		{MinX: 10, MinY: 10, MaxX: 10, MaxY: 10},
		{MinX: 0, MinY: 0, MaxX: 0, MaxY: 0},
		{MinX: 400, MinY: 300, MaxX: 400, MaxY: 300},
		{MinX: -30, MinY: -30, MaxX: -20, MaxY: -20},
		{MinX: 500, MinY: 500, MaxX: 600, MaxY: 700},
		{MinX: 12.5, MinY: 7.25, MaxX: 13.75, MaxY: 9},
	}
	sizes := [][4]int{{400, 300, 800, 600}, {400, 300, 400, 300}, {333, 221, 1000, 663}, {10, 10, 1, 1}}
	for _, box := range boxes {
		for _, sz := range sizes {
			for _, pad := range []float64{0, 1, 12, 1000} {
				r := CropRect(box, sz[0], sz[1], sz[2], sz[3], pad)
				assert.GreaterOrEqual(t, r.Min.X, 0)
				assert.GreaterOrEqual(t, r.Min.Y, 0)
				assert.LessOrEqual(t, r.Max.X, sz[2])
				assert.LessOrEqual(t, r.Max.Y, sz[3])
				assert.GreaterOrEqual(t, r.Dx(), 1)
				assert.GreaterOrEqual(t, r.Dy(), 1)
			}
		}
	}
}

func TestCropRectSinglePoint(t *testing.T) {
	r := CropRect(Box{MinX: 10, MinY: 10, MaxX: 10, MaxY: 10}, 400, 300, 400, 300, 12)
	assert.Equal(t, image.Rect(0, 0, 22, 22), r)
}

func TestCompositeStretchesOverlay(t *testing.T) {
	bg := uniform(800, 600, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	overlay := image.NewRGBA(image.Rect(0, 0, 400, 300))
	// Opaque block covering overlay (100..200, 100..150).
	for y := 100; y < 150; y++ {
		for x := 100; x < 200; x++ {
			overlay.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	out, err := Composite(bg, overlay)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 600), out.Bounds())

	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(300, 250), "block lands at doubled coordinates")
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(150, 150), "transparent overlay keeps background")
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(700, 500))
}

func TestCompositeRejectsEmpty(t *testing.T) {
	_, err := Composite(image.NewRGBA(image.Rectangle{}), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, ErrCompositing)
	_, err = Composite(image.NewRGBA(image.Rect(0, 0, 1, 1)), nil)
	assert.ErrorIs(t, err, ErrCompositing)
}

func TestExtractRegion(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))
	src.Set(5, 6, color.RGBA{G: 255, A: 255})
	out := ExtractRegion(src, image.Rect(5, 6, 8, 10))
	assert.Equal(t, image.Rect(0, 0, 3, 4), out.Bounds())
	assert.Equal(t, color.RGBA{G: 255, A: 255}, out.RGBAAt(0, 0))
}

func TestEncode(t *testing.T) {
	img, err := Encode(uniform(40, 30, color.RGBA{B: 200, A: 255}), 0)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MimeType)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 30, img.Height)
	assert.Equal(t, []byte{0xFF, 0xD8}, img.Data[:2])
	assert.Contains(t, img.DataURL(), "data:image/jpeg;base64,")
}

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}
