// Package assets resolves and loads asset files for the model compiler,
// from disk or from an in-memory virtual filesystem.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// VFS maps file names to in-memory contents. Entries take priority over
// the real filesystem.
type VFS map[string][]byte

// Provider loads asset files. Lookup order: VFS, then disk. Loaded
// contents are cached for the lifetime of the provider.
type Provider struct {
	vfs   VFS
	cache *Cache
	mu    sync.RWMutex
}

// NewProvider creates a provider over an optional virtual filesystem.
func NewProvider(vfs VFS) *Provider {
	return &Provider{
		vfs:   vfs,
		cache: NewCache(),
	}
}

// ResolvePath combines the model file directory, the asset-kind
// directory and the file name. Absolute file names are kept as-is; an
// absolute asset directory ignores the model directory.
func ResolvePath(modelDir, assetDir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	if filepath.IsAbs(assetDir) {
		return filepath.Join(assetDir, file)
	}
	return filepath.Join(modelDir, assetDir, file)
}

// Load returns the contents of the named file.
func (p *Provider) Load(path string) ([]byte, error) {
	if data, ok := p.cache.Get(path); ok {
		return data, nil
	}

	p.mu.RLock()
	data, ok := p.vfs[path]
	if !ok {
		// VFS entries are frequently registered under the bare name
		data, ok = p.vfs[filepath.Base(path)]
	}
	p.mu.RUnlock()

	if !ok {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("file not found: %s", path)
		}
	}
	p.cache.Set(path, data)
	return data, nil
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}
