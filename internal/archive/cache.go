// Package archive provides zip archive access for source jars and
// deterministic jar writing for build outputs.
//
// Open archive handles are owned by a Cache that is scoped to a single
// invocation. A long-lived worker process creates one Cache per request
// and must close it before reading the next request, otherwise file
// descriptors leak across invocations.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

// ErrArchiveOpen classifies failures to open a source archive.
// Use errors.Is(err, ErrArchiveOpen) for typed assertions.
var ErrArchiveOpen = errors.New("cannot open archive")

// Cache memoizes open zip handles by archive path.
//
// Acquire is idempotent per path: the first call opens the archive, later
// calls return the stored handle. CloseAll releases every handle exactly
// once and leaves the cache empty.
type Cache struct {
	mu      sync.Mutex
	handles map[string]*zip.ReadCloser

	// openFn opens an archive; replaced in tests to count opens
	openFn func(path string) (*zip.ReadCloser, error)
}

// NewCache creates an empty handle cache.
func NewCache() *Cache {
	return &Cache{
		handles: make(map[string]*zip.ReadCloser),
		openFn:  zip.OpenReader,
	}
}

// Acquire returns the open handle for the archive at path, opening it on
// first use. The returned handle is owned by the cache; callers must not
// close it.
func (c *Cache) Acquire(path string) (*zip.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if handle, ok := c.handles[path]; ok {
		return handle, nil
	}

	handle, err := c.openFn(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrArchiveOpen, path, err)
	}

	c.handles[path] = handle

	return handle, nil
}

// CloseAll closes every cached handle and resets the cache. Safe to call
// when no handles were opened, and safe to call more than once.
func (c *Cache) CloseAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	for path, handle := range c.handles {
		if cerr := handle.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close %s: %w", path, cerr))
		}
	}

	c.handles = make(map[string]*zip.ReadCloser)

	return err
}

// Len returns the number of open handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.handles)
}
