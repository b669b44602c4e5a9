package depgraph

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// resolveCacheSize bounds the directory->resolved-order cache used by
// resolve_parallel_dependencies, so long-lived hosts resolving many
// directories over time don't grow it without bound.
const resolveCacheSize = 512

// resolveCache memoizes a directory's resolved, deduplicated node order.
// Graph.cache in spec section 3 is this structure.
type resolveCache struct {
	mu sync.Mutex
	lr *lru.Cache[string, []Node]
}

func newResolveCache() *resolveCache {
	lr, _ := lru.New[string, []Node](resolveCacheSize)
	return &resolveCache{lr: lr}
}

func (c *resolveCache) get(dir string) ([]Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lr.Get(dir)
}

func (c *resolveCache) put(dir string, order []Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lr.Add(dir, order)
}

// invalidate drops every cache entry. Graph mutations call this because a
// cached resolution order can no longer be assumed valid once the graph
// it was computed against changes.
func (c *resolveCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lr.Purge()
}
