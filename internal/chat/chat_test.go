package chat

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitesketch/internal/annotate"
	"sitesketch/internal/types"
)

type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	seen    []types.Message
	history [][]types.Message
}

func (f *fakeGenerator) Converse(ctx context.Context, history []types.Message, next types.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, next)
	f.history = append(f.history, history)
	if f.err != nil {
		return "", f.err
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

var whitePage = annotate.RasterizerFunc(func(ctx context.Context, doc annotate.Document, vp annotate.Viewport) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, vp.Width*2, vp.Height*2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img, nil
})

const siteReply = "Here you go:\n```html\n<html><body>bakery</body></html>\n```"

func frame() Layout {
	return Layout{Rect: annotate.Rect{Left: 300, Top: 60, Width: 400, Height: 300}}
}

func TestSendUpdatesPreview(t *testing.T) {
	gen := &fakeGenerator{replies: []string{siteReply, "What colour would you like?"}}
	svc := NewService(NewStore(), gen, whitePage)
	c := svc.Store().Create()

	reply, err := svc.Send(context.Background(), c.ID, "  a bakery site ")
	require.NoError(t, err)
	assert.True(t, reply.Updated)
	assert.Equal(t, "<html><body>bakery</body></html>", reply.HTML)

	reply, err = svc.Send(context.Background(), c.ID, "change the colours")
	require.NoError(t, err)
	assert.False(t, reply.Updated)
	assert.Equal(t, "<html><body>bakery</body></html>", reply.HTML, "conversational replies keep the preview")

	snap := c.Snapshot()
	require.Len(t, snap.History, 4)
	assert.Equal(t, "a bakery site", snap.History[0].Text())
	assert.Equal(t, types.RoleModel, snap.History[3].Role)
	assert.Len(t, gen.history[1], 2, "second turn sees the first exchange")
}

func TestSendValidation(t *testing.T) {
	svc := NewService(NewStore(), &fakeGenerator{}, whitePage)
	_, err := svc.Send(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	c := svc.Store().Create()
	_, err = svc.Send(context.Background(), c.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSendFailureIsRecorded(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	svc := NewService(NewStore(), gen, whitePage)
	c := svc.Store().Create()

	_, err := svc.Send(context.Background(), c.ID, "hello")
	require.Error(t, err)

	snap := c.Snapshot()
	require.Len(t, snap.History, 2)
	assert.Equal(t, "Sorry, I encountered an error: quota exceeded", snap.History[1].Text())
	assert.False(t, snap.Busy)
}

func TestAnnotationAttachesToNextMessage(t *testing.T) {
	gen := &fakeGenerator{replies: []string{siteReply, siteReply}}
	svc := NewService(NewStore(), gen, whitePage)
	c := svc.Store().Create()
	_, err := svc.Send(context.Background(), c.ID, "a bakery site")
	require.NoError(t, err)

	_, err = svc.StartAnnotation(c.ID, frame())
	require.NoError(t, err)

	st, err := svc.HandleAnnotationEvents(c.ID, []annotate.PointerEvent{
		{Kind: annotate.PointerDown, ClientX: 350, ClientY: 110},
		{Kind: annotate.PointerMove, ClientX: 450, ClientY: 160},
	})
	require.NoError(t, err)
	assert.True(t, st.Drawing)
	require.NotNil(t, st.Bounds)
	assert.Equal(t, annotate.Box{MinX: 50, MinY: 50, MaxX: 150, MaxY: 100}, *st.Bounds)

	_, err = svc.HandleAnnotationEvents(c.ID, []annotate.PointerEvent{{Kind: annotate.PointerUp}})
	require.NoError(t, err)

	img, err := svc.CompleteAnnotation(context.Background(), c.ID, &annotate.Point{X: 0, Y: 120})
	require.NoError(t, err)
	assert.Equal(t, 248, img.Width)
	assert.Equal(t, 148, img.Height)

	snap := c.Snapshot()
	assert.True(t, snap.HasAnnotation)
	assert.False(t, snap.Annotating, "tool closes after capture")

	thumb, err := svc.Thumbnail(c.ID)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, 128)
	assert.LessOrEqual(t, cfg.Height, 80)

	_, err = svc.Send(context.Background(), c.ID, "make this blue")
	require.NoError(t, err)
	last := gen.seen[len(gen.seen)-1]
	require.Len(t, last.Parts, 2)
	require.NotNil(t, last.Parts[0].InlineData)
	assert.Equal(t, "image/jpeg", last.Parts[0].InlineData.MimeType)
	assert.Equal(t, img.Base64(), last.Parts[0].InlineData.Data)
	assert.Equal(t, "make this blue", last.Parts[1].Text)

	_, ok := c.PendingAnnotation()
	assert.False(t, ok, "annotation is consumed by the message")
}

func TestCompleteWithoutPreviewFails(t *testing.T) {
	svc := NewService(NewStore(), &fakeGenerator{}, whitePage)
	c := svc.Store().Create()

	_, err := svc.StartAnnotation(c.ID, frame())
	require.NoError(t, err)
	_, err = svc.CompleteAnnotation(context.Background(), c.ID, nil)
	assert.ErrorIs(t, err, annotate.ErrCaptureFailed)
	assert.ErrorIs(t, err, annotate.ErrTargetInaccessible)

	snap := c.Snapshot()
	assert.True(t, snap.Annotating, "tool stays open so the user can retry")
	assert.False(t, snap.HasAnnotation)
}

func TestRestartAnnotationDetachesPrevious(t *testing.T) {
	svc := NewService(NewStore(), &fakeGenerator{}, whitePage)
	c := svc.Store().Create()

	_, err := svc.StartAnnotation(c.ID, frame())
	require.NoError(t, err)
	first, _, err := svc.session(c.ID)
	require.NoError(t, err)

	_, err = svc.StartAnnotation(c.ID, frame())
	require.NoError(t, err)
	assert.Equal(t, annotate.StateDetached, first.State())
}

func TestCancelAndClearAnnotation(t *testing.T) {
	svc := NewService(NewStore(), &fakeGenerator{}, whitePage)
	c := svc.Store().Create()

	assert.ErrorIs(t, svc.CancelAnnotation(c.ID), ErrNotAnnotating)
	_, err := svc.StartAnnotation(c.ID, frame())
	require.NoError(t, err)
	require.NoError(t, svc.CancelAnnotation(c.ID))
	_, err = svc.HandleAnnotationEvents(c.ID, nil)
	assert.ErrorIs(t, err, ErrNotAnnotating)

	assert.ErrorIs(t, svc.ClearAnnotation(c.ID), ErrNoAnnotation)
	_, err = svc.Thumbnail(c.ID)
	assert.ErrorIs(t, err, ErrNoAnnotation)
}

func TestStartAnnotationRejectsEmptyFrame(t *testing.T) {
	svc := NewService(NewStore(), &fakeGenerator{}, whitePage)
	c := svc.Store().Create()
	_, err := svc.StartAnnotation(c.ID, Layout{})
	assert.ErrorIs(t, err, annotate.ErrCompositing)
}

func TestUpdateLayout(t *testing.T) {
	gen := &fakeGenerator{replies: []string{siteReply}}
	var got annotate.Viewport
	svc := NewService(NewStore(), gen, annotate.RasterizerFunc(func(ctx context.Context, doc annotate.Document, vp annotate.Viewport) (image.Image, error) {
		got = vp
		return whiteImage(vp.Width, vp.Height), nil
	}))
	c := svc.Store().Create()
	_, err := svc.Send(context.Background(), c.ID, "site")
	require.NoError(t, err)
	_, err = svc.StartAnnotation(c.ID, frame())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateLayout(c.ID, Layout{ClientWidth: 385, ClientHeight: 300, ScrollY: 900}))
	_, err = svc.CompleteAnnotation(context.Background(), c.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, annotate.Viewport{Width: 385, Height: 300, ScrollY: 900}, got)
}

func TestStoreDelete(t *testing.T) {
	store := NewStore()
	svc := NewService(store, &fakeGenerator{}, whitePage)
	c := store.Create()
	_, err := svc.StartAnnotation(c.ID, frame())
	require.NoError(t, err)
	sess, _, err := svc.session(c.ID)
	require.NoError(t, err)

	require.NoError(t, store.Delete(c.ID))
	assert.Equal(t, annotate.StateDetached, sess.State())
	assert.Zero(t, store.Len())
	assert.ErrorIs(t, store.Delete(c.ID), ErrNotFound)
}

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}
