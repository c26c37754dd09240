package formats

import (
	"encoding/binary"
	"strings"
)

// TextureData is a parsed RGB bitmap, 3 bytes per pixel, row-major from
// the top-left.
type TextureData struct {
	Width  int32
	Height int32
	RGB    []byte
}

// ParseTextureBin parses the custom binary texture format: two int32
// (width, height) followed by width*height*3 bytes of RGB.
func ParseTextureBin(data []byte) (*TextureData, error) {
	if len(data) < 8 {
		return nil, ErrTruncatedData
	}
	w := int32(binary.LittleEndian.Uint32(data[0:]))
	h := int32(binary.LittleEndian.Uint32(data[4:]))
	if w < 1 || h < 1 {
		return nil, ErrBadDimensions
	}
	if len(data) != 8+3*int(w)*int(h) {
		return nil, ErrDimensionMismatch
	}
	rgb := make([]byte, 3*int(w)*int(h))
	copy(rgb, data[8:])
	return &TextureData{Width: w, Height: h, RGB: rgb}, nil
}

// DecodeTexturePNG decodes a PNG (or BMP) into an RGB bitmap.
func DecodeTexturePNG(data []byte) (*TextureData, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 1 || h < 1 {
		return nil, ErrBadDimensions
	}
	rgb := make([]byte, 3*w*h)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			rgb[i] = byte(r >> 8)
			rgb[i+1] = byte(g >> 8)
			rgb[i+2] = byte(bl >> 8)
			i += 3
		}
	}
	return &TextureData{Width: int32(w), Height: int32(h), RGB: rgb}, nil
}

// CubeFaceIndex maps a grid layout symbol to its face slot: right,
// left, up, down, front, back. '.' skips a grid cell. Any other
// character, including whitespace, is rejected.
func CubeFaceIndex(c byte) (int, bool) {
	switch c {
	case 'R':
		return 0, true
	case 'L':
		return 1, true
	case 'U':
		return 2, true
	case 'D':
		return 3, true
	case 'F':
		return 4, true
	case 'B':
		return 5, true
	case '.':
		return -1, true
	default:
		return -1, false
	}
}

// ExtractCubeGrid cuts cube faces out of a single texture according to
// gridsize (rows, cols) and a layout string of .RLUDFB symbols read in
// row-major order. Faces not named in the layout are returned nil.
func ExtractCubeGrid(tex *TextureData, rows, cols int32, layout string) ([6][]byte, int32, error) {
	var faces [6][]byte

	if rows < 1 || cols < 1 {
		return faces, 0, ErrBadDimensions
	}
	if tex.Width%cols != 0 || tex.Height%rows != 0 {
		return faces, 0, ErrGridTooLarge
	}
	fw := tex.Width / cols
	fh := tex.Height / rows
	if fw != fh {
		return faces, 0, ErrNotSquareFace
	}
	if int64(len(layout)) > int64(rows)*int64(cols) {
		return faces, 0, ErrGridTooLarge
	}

	for k := 0; k < len(layout); k++ {
		slot, ok := CubeFaceIndex(layout[k])
		if !ok {
			return faces, 0, ErrBadGridLayout
		}
		if slot < 0 {
			continue
		}
		r := int32(k) / cols
		c := int32(k) % cols
		face := make([]byte, 3*int(fw)*int(fw))
		for y := int32(0); y < fh; y++ {
			srcOff := 3 * ((r*fh+y)*tex.Width + c*fw)
			copy(face[3*int(y*fw):3*int((y+1)*fw)], tex.RGB[srcOff:srcOff+3*fw])
		}
		faces[slot] = face
	}
	return faces, fw, nil
}

// ValidGridLayout reports whether every layout character is a legal
// .RLUDFB symbol.
func ValidGridLayout(layout string) bool {
	return strings.IndexFunc(layout, func(r rune) bool {
		if r > 255 {
			return true
		}
		_, ok := CubeFaceIndex(byte(r))
		return !ok
	}) < 0
}
