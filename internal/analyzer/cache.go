package analyzer

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"ansel-scopes/internal/pipeline"
	"ansel-scopes/internal/scope"
)

// ErrSurfaceSize is returned by Store when the surface does not have the
// dimensions its descriptor claims.
var ErrSurfaceSize = errors.New("analyzer: surface size does not match descriptor")

// Descriptor identifies a rendered surface: the frame it was computed from
// and every parameter that shaped it.
type Descriptor struct {
	Hash   uint64
	Width  int
	Height int
	View   scope.ViewMode
	Zoom   float64
}

// invalidDescriptor never matches a real one.
var invalidDescriptor = Descriptor{
	Hash:   pipeline.HashNone,
	Width:  -1,
	Height: -1,
	View:   scope.ViewCount,
	Zoom:   -1,
}

// Cache holds the last rendered surface with its descriptor.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	desc    Descriptor
	surface *image.RGBA
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{desc: invalidDescriptor}
}

// Lookup reports whether a surface is cached for d.
func (c *Cache) Lookup(d Descriptor) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.surface != nil && c.desc == d
}

// Store replaces the cached surface and its descriptor.
func (c *Cache) Store(d Descriptor, surface *image.RGBA) error {
	if surface == nil {
		return fmt.Errorf("analyzer: store: %w: nil surface", ErrSurfaceSize)
	}
	if b := surface.Bounds(); b.Dx() != d.Width || b.Dy() != d.Height {
		return fmt.Errorf("analyzer: store: %w: %dx%d for %dx%d", ErrSurfaceSize, b.Dx(), b.Dy(), d.Width, d.Height)
	}
	c.mu.Lock()
	c.desc = d
	c.surface = surface
	c.mu.Unlock()
	return nil
}

// Invalidate releases the surface and resets the descriptor so every
// following Lookup misses.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.desc = invalidDescriptor
	c.surface = nil
	c.mu.Unlock()
}

// Surface returns the last stored surface, or nil.
func (c *Cache) Surface() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.surface
}

// Descriptor returns the descriptor of the cached surface.
func (c *Cache) Descriptor() Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.desc
}
