package formats

import (
	"encoding/binary"
	"math"
)

// MeshData is parsed mesh geometry. Normals and texcoords are optional.
type MeshData struct {
	Vert     []float64 // 3 per vertex
	Normal   []float64 // 3 per normal
	Texcoord []float64 // 2 per vertex
	Face     []int32   // 3 vertex indices per face
}

// ParseMeshBin parses the legacy binary mesh format: four int32
// (nvert, nnormal, ntexcoord, nface) followed by float32 vertex,
// normal and texcoord arrays and an int32 face array.
func ParseMeshBin(data []byte) (*MeshData, error) {
	if len(data) < 16 {
		return nil, ErrTruncatedData
	}
	nvert := int(int32(binary.LittleEndian.Uint32(data[0:])))
	nnormal := int(int32(binary.LittleEndian.Uint32(data[4:])))
	ntexcoord := int(int32(binary.LittleEndian.Uint32(data[8:])))
	nface := int(int32(binary.LittleEndian.Uint32(data[12:])))
	if nvert < 1 || nnormal < 0 || ntexcoord < 0 || nface < 0 {
		return nil, ErrBadDimensions
	}
	want := 16 + 4*(3*nvert+3*nnormal+2*ntexcoord+3*nface)
	if len(data) != want {
		return nil, ErrDimensionMismatch
	}

	off := 16
	readF := func(n int) []float64 {
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off:])))
			off += 4
		}
		return out
	}
	m := &MeshData{}
	m.Vert = readF(3 * nvert)
	m.Normal = readF(3 * nnormal)
	m.Texcoord = readF(2 * ntexcoord)
	m.Face = make([]int32, 3*nface)
	for i := range m.Face {
		m.Face[i] = int32(binary.LittleEndian.Uint32(data[off:]))
		off += 4
	}
	return m, nil
}
