// Package render rasterizes preview documents with headless Chrome.
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"sync"

	"github.com/chromedp/chromedp"
	"golang.org/x/sync/semaphore"

	"sitesketch/internal/annotate"
)

// Options configures a ChromeRasterizer.
type Options struct {
	// ExecPath is the Chrome binary; empty lets chromedp search for one.
	ExecPath string
	// DeviceScaleFactor is the ratio of screenshot pixels to CSS pixels.
	DeviceScaleFactor float64
	// MaxConcurrent bounds the number of tabs rendering at once.
	MaxConcurrent int64
}

// ChromeRasterizer renders documents in tabs of one shared headless browser.
type ChromeRasterizer struct {
	opts Options
	sem  *semaphore.Weighted

	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc

	startOnce sync.Once
	startErr  error
}

var _ annotate.Rasterizer = (*ChromeRasterizer)(nil)

// NewChromeRasterizer prepares a browser allocator. The browser itself is
// launched on the first Rasterize call.
func NewChromeRasterizer(opts Options) *ChromeRasterizer {
	if opts.DeviceScaleFactor <= 0 {
		opts.DeviceScaleFactor = 1
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("hide-scrollbars", true))
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	return &ChromeRasterizer{
		opts:          opts,
		sem:           semaphore.NewWeighted(opts.MaxConcurrent),
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
	}
}

func (r *ChromeRasterizer) start() error {
	r.startOnce.Do(func() {
		log.Println("Starting headless browser for preview rendering...")
		if err := chromedp.Run(r.browserCtx); err != nil {
			r.startErr = fmt.Errorf("failed to start browser: %w", err)
		}
	})
	return r.startErr
}

// Rasterize loads doc into a fresh tab sized to vp, scrolls to the viewport's
// offset and returns a screenshot of what is visible.
func (r *ChromeRasterizer) Rasterize(ctx context.Context, doc annotate.Document, vp annotate.Viewport) (image.Image, error) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return nil, fmt.Errorf("invalid viewport %dx%d", vp.Width, vp.Height)
	}
	if err := r.start(); err != nil {
		return nil, err
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.sem.Release(1)

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var shot []byte
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(vp.Width), int64(vp.Height), chromedp.EmulateScale(r.opts.DeviceScaleFactor)),
		chromedp.Navigate(DataURL(doc.HTML)),
		chromedp.Evaluate(ScrollScript(vp.ScrollX, vp.ScrollY), nil),
		chromedp.CaptureScreenshot(&shot),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("chrome render failed: %w", err)
	}
	if len(shot) == 0 {
		return nil, errors.New("chrome returned an empty screenshot")
	}
	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	return img, nil
}

// Close shuts the browser down.
func (r *ChromeRasterizer) Close() {
	r.cancelBrowser()
	r.cancelAlloc()
}

// DataURL encodes an HTML document as a navigable data: URL.
func DataURL(html string) string {
	return "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))
}

// ScrollScript returns the JavaScript that scrolls the window to (x, y).
func ScrollScript(x, y float64) string {
	return fmt.Sprintf("window.scrollTo(%g, %g)", x, y)
}
