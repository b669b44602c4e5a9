package filetracker

import (
	"container/list"
	"time"
)

// mtimeCache is a bounded path->last-seen-mtime map with a size-triggered
// bulk eviction: when full, ~20% of the oldest entries are evicted before
// the new entry is inserted, per spec section 4.3. This differs from a
// standard single-entry-per-insert LRU, so it is hand-rolled on
// container/list (the building block every off-the-shelf Go LRU,
// including hashicorp/golang-lru, is itself built on) rather than forcing
// a library's eviction policy to fit — see DESIGN.md.
type mtimeCache struct {
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

type mtimeCacheEntry struct {
	path  string
	mtime time.Time
}

func newMtimeCache(capacity int) *mtimeCache {
	if capacity < 1 {
		capacity = 1
	}
	return &mtimeCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// get returns the cached mtime for path, moving it to the front (most
// recently used).
func (c *mtimeCache) get(path string) (time.Time, bool) {
	el, ok := c.items[path]
	if !ok {
		return time.Time{}, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*mtimeCacheEntry).mtime, true
}

// put records path's mtime, evicting ~20% of the oldest entries first if
// the cache is already at capacity and path is new.
func (c *mtimeCache) put(path string, mtime time.Time) {
	if el, ok := c.items[path]; ok {
		el.Value.(*mtimeCacheEntry).mtime = mtime
		c.ll.MoveToFront(el)
		return
	}

	if len(c.items) >= c.capacity {
		evictCount := c.capacity / 5
		if evictCount < 1 {
			evictCount = 1
		}
		for i := 0; i < evictCount; i++ {
			oldest := c.ll.Back()
			if oldest == nil {
				break
			}
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*mtimeCacheEntry).path)
		}
	}

	el := c.ll.PushFront(&mtimeCacheEntry{path: path, mtime: mtime})
	c.items[path] = el
}

func (c *mtimeCache) len() int {
	return len(c.items)
}

// EnableCache turns the watcher's mtime cache on; calling it twice is a
// no-op, per spec section 8's idempotence invariant.
func (t *Tracker) EnableCache(enable bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cacheEnabled = enable
}

// SetCacheSize rebuilds the cache with a new capacity, preserving no
// entries (a resize is treated as a fresh cache, matching the bulk
// eviction policy's "bounded from now on" contract).
func (t *Tracker) SetCacheSize(size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache = newMtimeCache(size)
}
