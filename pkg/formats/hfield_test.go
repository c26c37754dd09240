package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestHField builds a minimal valid binary heightfield.
func createTestHField(nrow, ncol int32, elev []float32) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, nrow)
	binary.Write(buf, binary.LittleEndian, ncol)
	for i := 0; i < int(nrow)*int(ncol); i++ {
		var e float32
		if i < len(elev) {
			e = elev[i]
		}
		binary.Write(buf, binary.LittleEndian, e)
	}
	return buf.Bytes()
}

func TestParseHFieldBin_Valid(t *testing.T) {
	data := createTestHField(2, 3, []float32{1, 2, 3, 4, 5, 6})

	h, err := ParseHFieldBin(data)
	if err != nil {
		t.Fatalf("ParseHFieldBin failed: %v", err)
	}
	if h.NRow != 2 || h.NCol != 3 {
		t.Errorf("dimensions: got (%d,%d), want (2,3)", h.NRow, h.NCol)
	}
	if h.Elev[5] != 6 {
		t.Errorf("last elevation: got %v, want 6", h.Elev[5])
	}
}

func TestParseHFieldBin_Truncated(t *testing.T) {
	data := createTestHField(2, 3, nil)

	_, err := ParseHFieldBin(data[:len(data)-4])
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("truncated grid: got %v, want ErrDimensionMismatch", err)
	}
	_, err = ParseHFieldBin(data[:4])
	if !errors.Is(err, ErrTruncatedData) {
		t.Errorf("truncated header: got %v, want ErrTruncatedData", err)
	}
}

func TestParseHFieldBin_BadDims(t *testing.T) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, int32(0))
	binary.Write(buf, binary.LittleEndian, int32(5))
	if _, err := ParseHFieldBin(buf.Bytes()); !errors.Is(err, ErrBadDimensions) {
		t.Errorf("zero rows: got %v, want ErrBadDimensions", err)
	}
}

func TestDecodeHFieldPNG_RowFlip(t *testing.T) {
	// 1x2 image: top pixel bright, bottom pixel dark
	img := image.NewGray(image.Rect(0, 0, 1, 2))
	img.SetGray(0, 0, color.Gray{Y: 200})
	img.SetGray(0, 1, color.Gray{Y: 10})
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}

	h, err := DecodeHFieldPNG(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeHFieldPNG failed: %v", err)
	}
	if h.NRow != 2 || h.NCol != 1 {
		t.Fatalf("dimensions: got (%d,%d), want (2,1)", h.NRow, h.NCol)
	}
	// row 0 must be the bottom of the image
	if h.Elev[0] != 10 || h.Elev[1] != 200 {
		t.Errorf("rows not flipped: got (%v,%v), want (10,200)", h.Elev[0], h.Elev[1])
	}
}

func TestHFieldNormalize(t *testing.T) {
	h := &HFieldData{NRow: 1, NCol: 3, Elev: []float32{2, 4, 6}}
	h.Normalize()
	want := []float32{0, 0.5, 1}
	for i := range want {
		if h.Elev[i] != want[i] {
			t.Errorf("normalized[%d]: got %v, want %v", i, h.Elev[i], want[i])
		}
	}

	// flat grid maps to zeros
	h = &HFieldData{NRow: 1, NCol: 2, Elev: []float32{3, 3}}
	h.Normalize()
	if h.Elev[0] != 0 || h.Elev[1] != 0 {
		t.Errorf("flat grid: got %v, want zeros", h.Elev)
	}
}
