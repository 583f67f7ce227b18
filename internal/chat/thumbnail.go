package chat

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/nfnt/resize"
)

const (
	thumbMaxWidth  = 128
	thumbMaxHeight = 80
)

// Thumbnail returns a small JPEG preview of the pending annotation image,
// scaled to fit 128×80 with its aspect ratio kept.
func (s *Service) Thumbnail(id string) ([]byte, error) {
	c, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	img, ok := c.PendingAnnotation()
	if !ok {
		return nil, ErrNoAnnotation
	}

	src, err := jpeg.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode annotation image: %w", err)
	}
	thumb := resize.Thumbnail(thumbMaxWidth, thumbMaxHeight, src, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
