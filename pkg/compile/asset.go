package compile

import (
	"path/filepath"
	"strings"

	"github.com/Faultbox/kforge/internal/assets"
	"github.com/Faultbox/kforge/pkg/formats"
	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/spec"
)

// nameAssets gives unnamed file-backed assets the file basename
// without extension, before names are indexed.
func (c *Compiler) nameAssets() {
	base := func(file string) string {
		b := filepath.Base(file)
		return strings.TrimSuffix(b, filepath.Ext(b))
	}
	for _, m := range c.spec.Meshes {
		if m.Name == "" && m.File != "" {
			m.Name = base(m.File)
		}
	}
	for _, h := range c.spec.HFields {
		if h.Name == "" && h.File != "" {
			h.Name = base(h.File)
		}
	}
	for _, t := range c.spec.Textures {
		// skybox textures may stay unnamed
		if t.Name == "" && t.File != "" && t.Type != spec.TextureSkybox {
			t.Name = base(t.File)
		}
	}
	for _, k := range c.spec.Skins {
		if k.Name == "" && k.File != "" {
			k.Name = base(k.File)
		}
	}
}

// compileAssets loads and validates every asset entity.
func (c *Compiler) compileAssets() error {
	for _, m := range c.spec.Meshes {
		if err := c.compileMesh(m); err != nil {
			return err
		}
	}
	for _, h := range c.spec.HFields {
		if err := c.compileHField(h); err != nil {
			return err
		}
	}
	for _, t := range c.spec.Textures {
		if err := c.compileTexture(t); err != nil {
			return err
		}
	}
	for _, k := range c.spec.Skins {
		if err := c.compileSkin(k); err != nil {
			return err
		}
	}
	for _, f := range c.spec.Flexes {
		if err := c.compileFlex(f); err != nil {
			return err
		}
	}
	return nil
}

// loadAsset resolves the asset path against the model and asset-kind
// directories and loads the contents.
func (c *Compiler) loadAsset(kindDir, file string) ([]byte, string, error) {
	path := assets.ResolvePath(c.spec.Compiler.ModelFileDir, kindDir, file)
	data, err := c.provider.Load(path)
	return data, path, err
}

func (c *Compiler) compileMesh(m *spec.Mesh) error {
	if m.File != "" {
		data, _, err := c.loadAsset(c.spec.Compiler.MeshDir, m.File)
		if err != nil {
			return objErrorf(AssetError, m.Name, m.ID, "mesh file not found: %s", m.File).wrap(err)
		}
		ext := strings.ToLower(filepath.Ext(m.File))
		if ct := strings.ToLower(m.ContentType); ct != "" && ct != "model/msh" {
			return objErrorf(AssetError, m.Name, m.ID, "unsupported mesh content type: %s", m.ContentType)
		}
		if ext != ".msh" {
			return objErrorf(AssetError, m.Name, m.ID, "unsupported mesh file extension: %s", ext)
		}
		md, err := formats.ParseMeshBin(data)
		if err != nil {
			return objErrorf(AssetError, m.Name, m.ID, "parsing mesh file %s: %v", m.File, err).wrap(err)
		}
		m.Vert = md.Vert
		m.Normal = md.Normal
		m.Texcoord = md.Texcoord
		m.Face = md.Face
	} else {
		m.Vert = append([]float64(nil), m.UserVert...)
		m.Normal = append([]float64(nil), m.UserNormal...)
		m.Texcoord = append([]float64(nil), m.UserTexcoord...)
		m.Face = append([]int32(nil), m.UserFace...)
	}

	nv := len(m.Vert) / 3
	if len(m.Vert) == 0 || len(m.Vert)%3 != 0 {
		return objErrorf(AssetError, m.Name, m.ID, "mesh vertex data must be non-empty with 3 numbers per vertex")
	}
	if len(m.Face)%3 != 0 {
		return objErrorf(AssetError, m.Name, m.ID, "mesh face data must have 3 indices per face")
	}
	if len(m.Face) == 0 && nv < 4 {
		return objErrorf(AssetError, m.Name, m.ID, "mesh must have faces or at least 4 vertices")
	}
	for _, f := range m.Face {
		if f < 0 || int(f) >= nv {
			return objErrorf(AssetError, m.Name, m.ID, "mesh face index %d out of range", f)
		}
	}

	// apply scale and the reference pose
	refq := m.RefQuat.Normalize().Conj()
	for i := 0; i < nv; i++ {
		v := kmath.Vec3{X: m.Vert[3*i], Y: m.Vert[3*i+1], Z: m.Vert[3*i+2]}
		v = v.Sub(m.RefPos)
		v = refq.RotateVec(v)
		v = kmath.Vec3{X: v.X * m.Scale.X, Y: v.Y * m.Scale.Y, Z: v.Z * m.Scale.Z}
		m.Vert[3*i], m.Vert[3*i+1], m.Vert[3*i+2] = v.X, v.Y, v.Z
	}

	// re-center at the centroid; the offset moves into the geom pose
	var com kmath.Vec3
	for i := 0; i < nv; i++ {
		com = com.Add(kmath.Vec3{X: m.Vert[3*i], Y: m.Vert[3*i+1], Z: m.Vert[3*i+2]})
	}
	com = com.Scale(1 / float64(nv))
	for i := 0; i < nv; i++ {
		m.Vert[3*i] -= com.X
		m.Vert[3*i+1] -= com.Y
		m.Vert[3*i+2] -= com.Z
	}
	m.Pos = com
	m.Quat = kmath.QuatIdentity()

	// bounds
	lo := kmath.Vec3{X: m.Vert[0], Y: m.Vert[1], Z: m.Vert[2]}
	hi := lo
	for i := 1; i < nv; i++ {
		v := kmath.Vec3{X: m.Vert[3*i], Y: m.Vert[3*i+1], Z: m.Vert[3*i+2]}
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	m.AAMM = [6]float64{lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z}

	if len(m.Normal) == 0 && len(m.Face) > 0 {
		m.Normal = vertexNormals(m.Vert, m.Face)
	}

	// volume, center of mass, equivalent-inertia box; may shift the
	// mesh frame to the center of mass
	meshMassProperties(m)

	// per-mesh BVH over faces
	if len(m.Face) > 0 {
		bvh, err := buildMeshBVH(m)
		if err != nil {
			return err
		}
		m.SetBVH(bvh)
		if bvh.MaxDepth() > MaxTreeDepth {
			c.warn(objErrorf(AssetError, m.Name, m.ID, "mesh bvh depth %d exceeds %d", bvh.MaxDepth(), MaxTreeDepth))
		}
	}
	return nil
}

// vertexNormals computes area-weighted per-vertex normals.
func vertexNormals(vert []float64, face []int32) []float64 {
	n := make([]float64, len(vert))
	for f := 0; f < len(face); f += 3 {
		a := kmath.Vec3{X: vert[3*face[f]], Y: vert[3*face[f]+1], Z: vert[3*face[f]+2]}
		b := kmath.Vec3{X: vert[3*face[f+1]], Y: vert[3*face[f+1]+1], Z: vert[3*face[f+1]+2]}
		cc := kmath.Vec3{X: vert[3*face[f+2]], Y: vert[3*face[f+2]+1], Z: vert[3*face[f+2]+2]}
		fn := b.Sub(a).Cross(cc.Sub(a))
		for k := 0; k < 3; k++ {
			vi := face[f+k]
			n[3*vi] += fn.X
			n[3*vi+1] += fn.Y
			n[3*vi+2] += fn.Z
		}
	}
	for i := 0; i < len(n); i += 3 {
		v, l := (kmath.Vec3{X: n[i], Y: n[i+1], Z: n[i+2]}).Normalize()
		if l == 0 {
			v = kmath.Vec3{Z: 1}
		}
		n[i], n[i+1], n[i+2] = v.X, v.Y, v.Z
	}
	return n
}

func (c *Compiler) compileHField(h *spec.HField) error {
	if h.Size[0] <= 0 || h.Size[1] <= 0 || h.Size[2] <= 0 || h.Size[3] < 0 {
		return objErrorf(ParseOrSpecError, h.Name, h.ID, "heightfield sizes must be positive (base may be zero)")
	}

	switch {
	case h.File != "":
		data, _, err := c.loadAsset(c.spec.Compiler.MeshDir, h.File)
		if err != nil {
			return objErrorf(AssetError, h.Name, h.ID, "heightfield file not found: %s", h.File).wrap(err)
		}
		var hd *formats.HFieldData
		if strings.EqualFold(filepath.Ext(h.File), ".png") {
			hd, err = formats.DecodeHFieldPNG(data)
		} else {
			hd, err = formats.ParseHFieldBin(data)
		}
		if err != nil {
			return objErrorf(AssetError, h.Name, h.ID, "parsing heightfield file %s: %v", h.File, err).wrap(err)
		}
		h.NRow, h.NCol = hd.NRow, hd.NCol
		h.Data = hd.Elev
	case len(h.UserData) > 0:
		if h.NRow < 1 || h.NCol < 1 {
			return objErrorf(ParseOrSpecError, h.Name, h.ID, "heightfield dimensions must be positive")
		}
		if int(h.NRow)*int(h.NCol) != len(h.UserData) {
			return objErrorf(AssetError, h.Name, h.ID, "heightfield data size %d does not match %dx%d", len(h.UserData), h.NRow, h.NCol)
		}
		// author data is top row first; storage wants row 0 at the bottom
		h.Data = make([]float32, len(h.UserData))
		for r := int32(0); r < h.NRow; r++ {
			copy(h.Data[(h.NRow-1-r)*h.NCol:(h.NRow-r)*h.NCol], h.UserData[r*h.NCol:(r+1)*h.NCol])
		}
	default:
		return objErrorf(AssetError, h.Name, h.ID, "heightfield has neither file nor data")
	}

	hd := formats.HFieldData{NRow: h.NRow, NCol: h.NCol, Elev: h.Data}
	hd.Normalize()
	return nil
}

func (c *Compiler) compileTexture(t *spec.Texture) error {
	switch {
	case t.Builtin != spec.BuiltinNone:
		if t.Width < 1 || t.Height < 1 {
			return objErrorf(ParseOrSpecError, t.Name, t.ID, "builtin texture requires positive width and height")
		}
		if t.Type != spec.Texture2D && t.Width != t.Height {
			return objErrorf(ParseOrSpecError, t.Name, t.ID, "builtin cube texture must be square")
		}
		t.Data = builtinTexture(t)
		if t.Type != spec.Texture2D {
			// six identical faces
			face := t.Data
			t.Data = make([]byte, 0, 6*len(face))
			for i := 0; i < 6; i++ {
				t.Data = append(t.Data, face...)
			}
			t.Height = 6 * t.Width
		}
		return nil

	case t.Type == spec.Texture2D:
		if t.File == "" {
			return objErrorf(AssetError, t.Name, t.ID, "texture has neither file nor builtin")
		}
		td, err := c.loadTextureFile(t, t.File)
		if err != nil {
			return err
		}
		t.Width, t.Height = td.Width, td.Height
		t.Data = td.RGB
		flipTexture(t)
		return nil

	default: // cube or skybox
		return c.compileCubeTexture(t)
	}
}

// loadTextureFile loads and decodes one texture file by extension.
func (c *Compiler) loadTextureFile(t *spec.Texture, file string) (*formats.TextureData, error) {
	data, _, err := c.loadAsset(c.spec.Compiler.TextureDir, file)
	if err != nil {
		return nil, objErrorf(AssetError, t.Name, t.ID, "texture file not found: %s", file).wrap(err)
	}
	ext := strings.ToLower(filepath.Ext(file))
	var td *formats.TextureData
	if ext == ".png" || ext == ".bmp" {
		td, err = formats.DecodeTexturePNG(data)
	} else {
		td, err = formats.ParseTextureBin(data)
	}
	if err != nil {
		return nil, objErrorf(AssetError, t.Name, t.ID, "parsing texture file %s: %v", file, err).wrap(err)
	}
	return td, nil
}

// compileCubeTexture assembles six faces from one gridded file or six
// separate files. Missing faces are filled with RGB1.
func (c *Compiler) compileCubeTexture(t *spec.Texture) error {
	var faces [6][]byte
	var fw int32

	if t.File != "" {
		td, err := c.loadTextureFile(t, t.File)
		if err != nil {
			return err
		}
		if t.GridSize[0] == 1 && t.GridSize[1] == 1 && t.GridLayout == "" {
			// single square image repeated on all faces
			if td.Width != td.Height {
				return objErrorf(AssetError, t.Name, t.ID, "cube texture image must be square")
			}
			fw = td.Width
			for i := range faces {
				faces[i] = td.RGB
			}
		} else {
			var err error
			faces, fw, err = formats.ExtractCubeGrid(td, t.GridSize[0], t.GridSize[1], t.GridLayout)
			if err != nil {
				return objErrorf(AssetError, t.Name, t.ID, "cube grid: %v", err).wrap(err)
			}
		}
	} else {
		for i, f := range t.CubeFiles {
			if f == "" {
				continue
			}
			td, err := c.loadTextureFile(t, f)
			if err != nil {
				return err
			}
			if td.Width != td.Height {
				return objErrorf(AssetError, t.Name, t.ID, "cube face %d is not square", i)
			}
			if fw != 0 && td.Width != fw {
				return objErrorf(AssetError, t.Name, t.ID, "cube face %d size %d does not match %d", i, td.Width, fw)
			}
			fw = td.Width
			faces[i] = td.RGB
		}
		if fw == 0 {
			return objErrorf(AssetError, t.Name, t.ID, "cube texture has no faces")
		}
	}

	// fill missing faces with rgb1
	fill := []byte{
		byte(t.RGB1[0] * 255),
		byte(t.RGB1[1] * 255),
		byte(t.RGB1[2] * 255),
	}
	for i := range faces {
		if faces[i] != nil {
			continue
		}
		f := make([]byte, 3*int(fw)*int(fw))
		for p := 0; p < len(f); p += 3 {
			copy(f[p:p+3], fill)
		}
		faces[i] = f
	}

	t.Width = fw
	t.Height = 6 * fw
	t.Data = make([]byte, 0, 3*int(fw)*int(fw)*6)
	for i := 0; i < 6; i++ {
		t.Data = append(t.Data, faces[i]...)
	}
	return nil
}

// builtinTexture generates flat, gradient and checker bitmaps.
func builtinTexture(t *spec.Texture) []byte {
	w, h := int(t.Width), int(t.Height)
	out := make([]byte, 3*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var rgb [3]float64
			switch t.Builtin {
			case spec.BuiltinFlat:
				rgb = t.RGB1
			case spec.BuiltinGradient:
				// vertical gradient rgb1 -> rgb2
				a := float64(y) / float64(max(h-1, 1))
				for k := 0; k < 3; k++ {
					rgb[k] = t.RGB1[k]*(1-a) + t.RGB2[k]*a
				}
			case spec.BuiltinChecker:
				if ((x/max(w/8, 1))+(y/max(h/8, 1)))%2 == 0 {
					rgb = t.RGB1
				} else {
					rgb = t.RGB2
				}
			}
			i := 3 * (y*w + x)
			out[i] = byte(clamp01(rgb[0]) * 255)
			out[i+1] = byte(clamp01(rgb[1]) * 255)
			out[i+2] = byte(clamp01(rgb[2]) * 255)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// flipTexture applies the hflip/vflip options in place.
func flipTexture(t *spec.Texture) {
	w, h := int(t.Width), int(t.Height)
	if t.HFlip {
		for y := 0; y < h; y++ {
			for x := 0; x < w/2; x++ {
				a, b := 3*(y*w+x), 3*(y*w+w-1-x)
				for k := 0; k < 3; k++ {
					t.Data[a+k], t.Data[b+k] = t.Data[b+k], t.Data[a+k]
				}
			}
		}
	}
	if t.VFlip {
		for y := 0; y < h/2; y++ {
			a, b := 3*y*w, 3*(h-1-y)*w
			for x := 0; x < 3*w; x++ {
				t.Data[a+x], t.Data[b+x] = t.Data[b+x], t.Data[a+x]
			}
		}
	}
}

func (c *Compiler) compileSkin(k *spec.Skin) error {
	if len(k.Vert)%3 != 0 || len(k.Face)%3 != 0 {
		return objErrorf(AssetError, k.Name, k.ID, "skin vertex and face arrays must have 3 numbers per element")
	}
	nv := len(k.Vert) / 3
	for _, f := range k.Face {
		if f < 0 || int(f) >= nv {
			return objErrorf(AssetError, k.Name, k.ID, "skin face index %d out of range", f)
		}
	}
	for bi := range k.Bones {
		b := &k.Bones[bi]
		if len(b.VertID) != len(b.VertWeight) {
			return objErrorf(AssetError, k.Name, k.ID, "skin bone %d has %d vertex ids but %d weights", bi, len(b.VertID), len(b.VertWeight))
		}
		for _, v := range b.VertID {
			if v < 0 || int(v) >= nv {
				return objErrorf(AssetError, k.Name, k.ID, "skin bone %d vertex id %d out of range", bi, v)
			}
		}
	}
	return nil
}

func (c *Compiler) compileFlex(f *spec.Flex) error {
	if f.Dim < 1 || f.Dim > 3 {
		return objErrorf(ParseOrSpecError, f.Name, f.ID, "flex dim must be 1, 2 or 3")
	}
	if len(f.Vert)%3 != 0 || len(f.Vert) == 0 {
		return objErrorf(AssetError, f.Name, f.ID, "flex vertex data must be non-empty with 3 numbers per vertex")
	}
	nv := len(f.Vert) / 3
	if len(f.VertBody) != nv {
		return objErrorf(AssetError, f.Name, f.ID, "flex has %d vertices but %d vertex bodies", nv, len(f.VertBody))
	}
	esize := int(f.Dim) + 1
	if len(f.Elem) == 0 || len(f.Elem)%esize != 0 {
		return objErrorf(AssetError, f.Name, f.ID, "flex element data must be non-empty with %d indices per element", esize)
	}
	for _, e := range f.Elem {
		if e < 0 || int(e) >= nv {
			return objErrorf(AssetError, f.Name, f.ID, "flex element index %d out of range", e)
		}
	}

	f.Edges = flexEdges(f.Elem, esize)
	f.Shells = flexShells(f.Elem, esize)
	f.EvPairs = nil
	return nil
}

// flexEdges collects the unique vertex pairs within elements.
func flexEdges(elem []int32, esize int) []int32 {
	seen := make(map[[2]int32]bool)
	var edges []int32
	for e := 0; e < len(elem); e += esize {
		for a := 0; a < esize; a++ {
			for b := a + 1; b < esize; b++ {
				v0, v1 := elem[e+a], elem[e+b]
				if v0 > v1 {
					v0, v1 = v1, v0
				}
				key := [2]int32{v0, v1}
				if !seen[key] {
					seen[key] = true
					edges = append(edges, v0, v1)
				}
			}
		}
	}
	return edges
}

// flexShells collects boundary facets: the (dim)-vertex faces of
// elements that appear exactly once.
func flexShells(elem []int32, esize int) []int32 {
	fsize := esize - 1
	if fsize < 1 {
		return nil
	}
	count := make(map[string][]int32)
	for e := 0; e < len(elem); e += esize {
		for skip := 0; skip < esize; skip++ {
			var face []int32
			for k := 0; k < esize; k++ {
				if k != skip {
					face = append(face, elem[e+k])
				}
			}
			key := sortedKey(face)
			count[key] = append(count[key], face...)
		}
	}
	var shell []int32
	for _, faces := range count {
		if len(faces) == fsize { // appeared once
			shell = append(shell, faces...)
		}
	}
	return shell
}

func sortedKey(face []int32) string {
	s := append([]int32(nil), face...)
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
	b := make([]byte, 0, 8*len(s))
	for _, v := range s {
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), ':')
	}
	return string(b)
}
