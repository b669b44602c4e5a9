package compmanager

import "sync"

// defaultPoolCapacity and defaultPoolReserve are the object pool bounds
// from spec section 5 ("bounded (e.g. capacity 100, reserve 10)").
const (
	defaultPoolCapacity = 100
	defaultPoolReserve  = 10
	arenaSize           = 4096
)

// objectPool bounds a sync.Pool of component instance placeholders to a
// fixed capacity using a counting semaphore, since sync.Pool alone has no
// capacity concept (entries can be GC'd at any time) and no library in
// this pack offers a bounded object pool — see DESIGN.md.
type objectPool struct {
	sem  chan struct{}
	pool sync.Pool
}

func newObjectPool(capacity int) *objectPool {
	if capacity < 1 {
		capacity = defaultPoolCapacity
	}
	return &objectPool{
		sem: make(chan struct{}, capacity),
		pool: sync.Pool{
			New: func() interface{} { return new(struct{}) },
		},
	}
}

// acquire reserves a slot and returns a pooled instance placeholder. It
// never blocks: once the semaphore is exhausted it returns false rather
// than waiting, since load_component must fail fast, not queue.
func (p *objectPool) acquire() (interface{}, bool) {
	select {
	case p.sem <- struct{}{}:
		return p.pool.Get(), true
	default:
		return nil, false
	}
}

func (p *objectPool) release(instance interface{}) {
	p.pool.Put(instance)
	p.releaseSlot()
}

// releaseSlot frees one reserved capacity slot without returning a value
// to the sync.Pool, for the common case where the caller's own instance
// (not the pool's placeholder) is what it actually stored.
func (p *objectPool) releaseSlot() {
	select {
	case <-p.sem:
	default:
	}
}

// memoryPool hands out the 4096-byte scratch buffers backing a component's
// small option struct, per spec section 5. Bounded by the same sync.Pool +
// semaphore pattern as objectPool.
type memoryPool struct {
	sem  chan struct{}
	pool sync.Pool
}

func newMemoryPool(capacity int) *memoryPool {
	if capacity < 1 {
		capacity = defaultPoolCapacity
	}
	return &memoryPool{
		sem: make(chan struct{}, capacity),
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, arenaSize)
				return &buf
			},
		},
	}
}

func (p *memoryPool) acquire() (*[]byte, bool) {
	select {
	case p.sem <- struct{}{}:
		return p.pool.Get().(*[]byte), true
	default:
		return nil, false
	}
}

func (p *memoryPool) release(buf *[]byte) {
	p.pool.Put(buf)
	select {
	case <-p.sem:
	default:
	}
}
