package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// createTestTexture builds a minimal valid binary texture.
func createTestTexture(w, h int32, rgb []byte) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, w)
	binary.Write(buf, binary.LittleEndian, h)
	pix := make([]byte, 3*int(w)*int(h))
	copy(pix, rgb)
	buf.Write(pix)
	return buf.Bytes()
}

func TestParseTextureBin_Valid(t *testing.T) {
	data := createTestTexture(2, 1, []byte{1, 2, 3, 4, 5, 6})

	tex, err := ParseTextureBin(data)
	if err != nil {
		t.Fatalf("ParseTextureBin failed: %v", err)
	}
	if tex.Width != 2 || tex.Height != 1 {
		t.Errorf("dimensions: got (%d,%d), want (2,1)", tex.Width, tex.Height)
	}
	if tex.RGB[3] != 4 {
		t.Errorf("second pixel r: got %d, want 4", tex.RGB[3])
	}
}

func TestParseTextureBin_Mismatch(t *testing.T) {
	data := createTestTexture(2, 2, nil)
	if _, err := ParseTextureBin(data[:len(data)-1]); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("short data: got %v, want ErrDimensionMismatch", err)
	}
}

// fillFace paints an 8x8 face with a distinct byte value.
func fillFace(v byte) []byte {
	f := make([]byte, 3*8*8)
	for i := range f {
		f[i] = v
	}
	return f
}

func TestExtractCubeGrid_RoundTrip(t *testing.T) {
	// pack six 8x8 faces into a 3 rows x 2 cols grid
	faces := [6][]byte{fillFace(10), fillFace(20), fillFace(30), fillFace(40), fillFace(50), fillFace(60)}
	layout := "RLUDFB"
	rows, cols := int32(3), int32(2)

	tex := &TextureData{Width: 16, Height: 24, RGB: make([]byte, 3*16*24)}
	for k := 0; k < 6; k++ {
		r := int32(k) / cols
		c := int32(k) % cols
		for y := int32(0); y < 8; y++ {
			dst := 3 * ((r*8+y)*tex.Width + c*8)
			copy(tex.RGB[dst:dst+24], faces[k][3*8*y:3*8*(y+1)])
		}
	}

	got, fw, err := ExtractCubeGrid(tex, rows, cols, layout)
	if err != nil {
		t.Fatalf("ExtractCubeGrid failed: %v", err)
	}
	if fw != 8 {
		t.Errorf("face width: got %d, want 8", fw)
	}
	for k := 0; k < 6; k++ {
		if !bytes.Equal(got[k], faces[k]) {
			t.Errorf("face %d does not round-trip", k)
		}
	}
}

func TestExtractCubeGrid_DotSkips(t *testing.T) {
	tex := &TextureData{Width: 8, Height: 16, RGB: make([]byte, 3*8*16)}
	faces, _, err := ExtractCubeGrid(tex, 2, 1, ".U")
	if err != nil {
		t.Fatalf("ExtractCubeGrid failed: %v", err)
	}
	if faces[2] == nil {
		t.Error("U face should be extracted")
	}
	if faces[0] != nil || faces[1] != nil {
		t.Error("unnamed faces should stay nil")
	}
}

func TestExtractCubeGrid_BadLayout(t *testing.T) {
	tex := &TextureData{Width: 8, Height: 8, RGB: make([]byte, 3*8*8)}
	if _, _, err := ExtractCubeGrid(tex, 1, 1, "x"); !errors.Is(err, ErrBadGridLayout) {
		t.Errorf("bad symbol: got %v, want ErrBadGridLayout", err)
	}
	// whitespace is not a silent skip
	if _, _, err := ExtractCubeGrid(tex, 1, 1, " "); !errors.Is(err, ErrBadGridLayout) {
		t.Errorf("whitespace: got %v, want ErrBadGridLayout", err)
	}
}

func TestExtractCubeGrid_NotSquare(t *testing.T) {
	tex := &TextureData{Width: 16, Height: 8, RGB: make([]byte, 3*16*8)}
	if _, _, err := ExtractCubeGrid(tex, 1, 1, "R"); !errors.Is(err, ErrNotSquareFace) {
		t.Errorf("rectangular face: got %v, want ErrNotSquareFace", err)
	}
}

func TestParseMeshBin(t *testing.T) {
	buf := new(bytes.Buffer)
	for _, n := range []int32{3, 0, 0, 1} {
		binary.Write(buf, binary.LittleEndian, n)
	}
	verts := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	for _, v := range verts {
		binary.Write(buf, binary.LittleEndian, v)
	}
	for _, f := range []int32{0, 1, 2} {
		binary.Write(buf, binary.LittleEndian, f)
	}

	m, err := ParseMeshBin(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseMeshBin failed: %v", err)
	}
	if len(m.Vert) != 9 || len(m.Face) != 3 {
		t.Errorf("sizes: got %d verts, %d face entries, want 9 and 3", len(m.Vert), len(m.Face))
	}
	if m.Vert[3] != 1 {
		t.Errorf("vert[3]: got %v, want 1", m.Vert[3])
	}
}
