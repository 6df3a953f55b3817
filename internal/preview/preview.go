// Package preview keeps uploaded wine photos in memory and hands out short
// URLs for them.
//
// A preview lives only as long as the process. A tasting saved with a
// preview URL will show a broken image after a restart; the bytes are never
// written to the journal.
package preview

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
)

// PathPrefix is where previews are served.
const PathPrefix = "/previews/"

// Image is one stored preview.
type Image struct {
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Cache is a concurrency-safe map of preview id to image.
type Cache struct {
	mu     sync.RWMutex
	images map[string]Image
	now    func() time.Time
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{images: make(map[string]Image), now: time.Now}
}

// Put stores data and returns its URL.
func (c *Cache) Put(contentType string, data []byte) string {
	id := xid.New().String()

	c.mu.Lock()
	c.images[id] = Image{ContentType: contentType, Data: data, CreatedAt: c.now()}
	c.mu.Unlock()

	return PathPrefix + id
}

// Get returns the image with the given id.
func (c *Cache) Get(id string) (Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	img, ok := c.images[id]
	return img, ok
}

// Revoke forgets the image behind url. URLs that are not previews, or that
// were already revoked, are ignored.
func (c *Cache) Revoke(url string) bool {
	id, ok := IDFromURL(url)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.images[id]; !ok {
		return false
	}
	delete(c.images, id)
	return true
}

// Len is the number of stored previews.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// IDFromURL extracts the preview id from a URL produced by Put.
func IDFromURL(url string) (string, bool) {
	id, ok := strings.CutPrefix(url, PathPrefix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
