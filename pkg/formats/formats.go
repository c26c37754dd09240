// Package formats provides parsers for the asset file formats consumed
// by the model compiler: custom binary heightfields, textures and
// meshes, PNG images, and cube-texture grid extraction.
package formats

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	// BMP decoder registration for image.Decode.
	_ "golang.org/x/image/bmp"
)

// Format errors.
var (
	ErrTruncatedData     = errors.New("truncated data")
	ErrBadDimensions     = errors.New("non-positive dimensions")
	ErrDimensionMismatch = errors.New("data size does not match dimensions")
	ErrBadGridLayout     = errors.New("grid layout contains characters outside .RLUDFB")
	ErrGridTooLarge      = errors.New("grid does not fit in texture")
	ErrNotSquareFace     = errors.New("cube face is not square")
)

// decodeImage decodes PNG directly and falls back to the registered
// decoders (BMP) for other content.
func decodeImage(data []byte) (image.Image, error) {
	if img, err := png.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
