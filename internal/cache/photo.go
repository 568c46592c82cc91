package cache

import (
	"sync"

	"github.com/koo5/horizon/pkg/core"
)

// PhotoCache caches photo records by ID as they stream in, so repeated adds
// of the same photo can be deduplicated without a catalog read.
type PhotoCache struct {
	mu     sync.RWMutex
	photos map[string]core.PhotoRecord
}

// NewPhotoCache creates a new PhotoCache
func NewPhotoCache() *PhotoCache {
	return &PhotoCache{
		photos: make(map[string]core.PhotoRecord),
	}
}

// Get retrieves a photo record by ID
func (c *PhotoCache) Get(id string) (core.PhotoRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.photos[id]
	return rec, ok
}

// Set stores a photo record by ID
func (c *PhotoCache) Set(rec core.PhotoRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.photos[rec.ID] = rec
}

// Delete removes a photo record by ID
func (c *PhotoCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.photos, id)
}

// Len returns the number of cached records
func (c *PhotoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.photos)
}

// Reset clears all records from the cache
func (c *PhotoCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.photos = make(map[string]core.PhotoRecord)
}
