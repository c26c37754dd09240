package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePath(t *testing.T) {
	cases := []struct {
		modelDir, assetDir, file, want string
	}{
		{"models", "meshes", "arm.msh", filepath.Join("models", "meshes", "arm.msh")},
		{"models", "", "arm.msh", filepath.Join("models", "arm.msh")},
		{"models", "/abs/meshes", "arm.msh", filepath.Join("/abs/meshes", "arm.msh")},
		{"models", "meshes", "/abs/arm.msh", "/abs/arm.msh"},
	}
	for _, c := range cases {
		if got := ResolvePath(c.modelDir, c.assetDir, c.file); got != c.want {
			t.Errorf("ResolvePath(%q,%q,%q): got %q, want %q", c.modelDir, c.assetDir, c.file, got, c.want)
		}
	}
}

func TestProviderVFSPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.bin")
	if err := os.WriteFile(path, []byte("disk"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	p := NewProvider(VFS{path: []byte("vfs")})
	data, err := p.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != "vfs" {
		t.Errorf("VFS should shadow disk: got %q", data)
	}
}

func TestProviderBasenameFallback(t *testing.T) {
	p := NewProvider(VFS{"mesh.msh": []byte("x")})
	data, err := p.Load(filepath.Join("some", "dir", "mesh.msh"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != "x" {
		t.Errorf("basename fallback: got %q", data)
	}
}

func TestProviderMissing(t *testing.T) {
	p := NewProvider(nil)
	if _, err := p.Load(filepath.Join(t.TempDir(), "nope.bin")); err == nil {
		t.Error("missing file should fail")
	}
}
