package annotate

import (
	"errors"
	"fmt"
)

var (
	// ErrCaptureFailed wraps every error returned by a failed capture.
	ErrCaptureFailed = errors.New("capture failed")
	// ErrCaptureInProgress is returned by Complete while another capture
	// on the same session has not finished.
	ErrCaptureInProgress = errors.New("capture already in progress")
	// ErrDetached is returned by operations on a detached session.
	ErrDetached = errors.New("annotation session detached")

	ErrTargetInaccessible = errors.New("target document inaccessible")
	ErrRasterization      = errors.New("rasterization failed")
	ErrCompositing        = errors.New("compositing failed")
	ErrEncoding           = errors.New("image encoding failed")
)

func captureFailure(kind, err error) error {
	if errors.Is(err, kind) {
		return fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	return fmt.Errorf("%w: %w: %w", ErrCaptureFailed, kind, err)
}
