package timeline

import (
	"sync"

	"github.com/fentz26/timeline/internal/models"
)

// Cache memoizes the most recent View by store revision.
type Cache struct {
	mu   sync.Mutex
	opts Options
	view *View
}

// NewCache returns an empty cache building views with opts.
func NewCache(opts Options) *Cache {
	return &Cache{opts: opts}
}

// Get returns the view for revision, rebuilding only when the revision (or
// the options) changed since the last call. items is consulted only on a miss.
func (c *Cache) Get(revision int64, items func() []models.Item) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view != nil && c.view.Revision == revision {
		return *c.view
	}
	v := Build(revision, items(), c.opts)
	c.view = &v
	return v
}

// SetOptions changes build options and drops the memoized view.
func (c *Cache) SetOptions(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if opts != c.opts {
		c.opts = opts
		c.view = nil
	}
}

// Options returns the current build options.
func (c *Cache) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}
