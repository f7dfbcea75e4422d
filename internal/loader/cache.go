package loader

import (
	"sync"

	"coinboard/internal/series"
)

// Cache memoizes loaded frames by file path so only the first request
// for a path touches the disk. The input file is treated as immutable
// for the process lifetime; use Invalidate to force a reread.
type Cache struct {
	mu     sync.Mutex
	frames map[string]series.Frame
}

func NewCache() *Cache {
	return &Cache{frames: make(map[string]series.Frame)}
}

// Load returns the frame for path, reading the file on first use.
// Loads are serialized, so concurrent callers of the same path share
// one parse. Failed loads are not cached and will be retried.
func (c *Cache) Load(path string) (series.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.frames[path]; ok {
		return f, nil
	}
	f, err := LoadFile(path)
	if err != nil {
		return series.Frame{}, err
	}
	c.frames[path] = f
	return f, nil
}

// Invalidate forgets the cached frame for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.frames, path)
}
