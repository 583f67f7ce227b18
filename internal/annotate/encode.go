package annotate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
)

// DefaultQuality is the JPEG quality used for final images.
const DefaultQuality = 90

const jpegMimeType = "image/jpeg"

// FinalImage is the encoded result of a capture.
type FinalImage struct {
	MimeType string
	Data     []byte
	Width    int
	Height   int
}

// Base64 returns the standard base64 encoding of the image bytes.
func (f FinalImage) Base64() string {
	return base64.StdEncoding.EncodeToString(f.Data)
}

// DataURL returns the image as a data: URL.
func (f FinalImage) DataURL() string {
	return "data:" + f.MimeType + ";base64," + f.Base64()
}

// Encode compresses img as JPEG. Out-of-range qualities fall back to
// DefaultQuality.
func Encode(img image.Image, quality int) (FinalImage, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return FinalImage{}, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	b := img.Bounds()
	return FinalImage{
		MimeType: jpegMimeType,
		Data:     buf.Bytes(),
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}
