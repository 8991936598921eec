// Package photo decodes uploaded images into the pixel geometry the
// classifier measures against.
package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/saturnino-fabrica-de-software/mirada/internal/gaze"
)

// ErrUnreadable is returned when the bytes are not a decodable image
var ErrUnreadable = errors.New("image could not be decoded")

const jpegQuality = 92

// Photo is an upload after EXIF orientation has been applied
type Photo struct {
	Dimensions gaze.Dimensions
	// JPEG holds the oriented pixels so the detector sees the same
	// geometry as Dimensions.
	JPEG []byte
}

// Decode reads a JPEG, PNG, GIF, BMP, TIFF or WebP image
func Decode(data []byte) (*Photo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrUnreadable)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	return FromImage(img)
}

// FromImage encodes an already decoded image
func FromImage(img image.Image) (*Photo, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrUnreadable)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return &Photo{
		Dimensions: gaze.Dimensions{Width: b.Dx(), Height: b.Dy()},
		JPEG:       buf.Bytes(),
	}, nil
}
