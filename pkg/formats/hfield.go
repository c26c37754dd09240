package formats

import (
	"encoding/binary"
	"image/color"
	"math"
)

// HFieldData is a parsed elevation grid, row-major with row 0 at the
// bottom, not yet normalized.
type HFieldData struct {
	NRow int32
	NCol int32
	Elev []float32
}

// ParseHFieldBin parses the custom binary heightfield format: two int32
// (nrow, ncol) followed by nrow*ncol float32 elevations.
func ParseHFieldBin(data []byte) (*HFieldData, error) {
	if len(data) < 8 {
		return nil, ErrTruncatedData
	}
	nrow := int32(binary.LittleEndian.Uint32(data[0:]))
	ncol := int32(binary.LittleEndian.Uint32(data[4:]))
	if nrow < 1 || ncol < 1 {
		return nil, ErrBadDimensions
	}
	n := int(nrow) * int(ncol)
	if len(data) != 8+4*n {
		return nil, ErrDimensionMismatch
	}
	elev := make([]float32, n)
	for i := 0; i < n; i++ {
		elev[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[8+4*i:]))
	}
	return &HFieldData{NRow: nrow, NCol: ncol, Elev: elev}, nil
}

// DecodeHFieldPNG decodes a greyscale PNG into an elevation grid. Image
// rows are flipped so that row 0 of the result is the bottom of the
// image.
func DecodeHFieldPNG(data []byte) (*HFieldData, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 1 || h < 1 {
		return nil, ErrBadDimensions
	}
	elev := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			// flip: image row 0 is the top, grid row 0 the bottom
			elev[(h-1-y)*w+x] = float32(g.Y)
		}
	}
	return &HFieldData{NRow: int32(h), NCol: int32(w), Elev: elev}, nil
}

// Normalize scales the elevation data into [0,1]. A flat grid maps to
// all zeros.
func (h *HFieldData) Normalize() {
	if len(h.Elev) == 0 {
		return
	}
	emin, emax := h.Elev[0], h.Elev[0]
	for _, e := range h.Elev {
		if e < emin {
			emin = e
		}
		if e > emax {
			emax = e
		}
	}
	if emax == emin {
		for i := range h.Elev {
			h.Elev[i] = 0
		}
		return
	}
	scale := 1 / (emax - emin)
	for i := range h.Elev {
		h.Elev[i] = (h.Elev[i] - emin) * scale
	}
}
