package compmanager

import (
	"log"
	"sort"
	"sync"

	"go.uber.org/multierr"
)

// BatchLoad loads every params entry, sorted descending by Priority, and
// launches the loads concurrently, per spec section 4.4. All per-component
// failures are aggregated into a single returned error via multierr rather
// than aborting the batch on the first failure. Each call is tagged with its
// own task identifier for log correlation across the concurrent loads.
func (m *ComponentManager) BatchLoad(params []LoadParams) error {
	taskID := newTaskID()
	sorted := append([]LoadParams(nil), params...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })
	log.Printf("compmanager: batch load task %s starting (%d components)", taskID, len(sorted))

	var mu sync.Mutex
	var combined error
	var wg sync.WaitGroup
	for _, p := range sorted {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.pool.Run(func() {
				if lerr := m.LoadComponent(p); lerr != nil {
					mu.Lock()
					combined = multierr.Append(combined, lerr)
					mu.Unlock()
				}
			})
			if err != nil {
				mu.Lock()
				combined = multierr.Append(combined, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	log.Printf("compmanager: batch load task %s finished", taskID)
	return combined
}

// BatchUnload unloads names sequentially, aggregating every failure into a
// single returned error via multierr.
func (m *ComponentManager) BatchUnload(names []string) error {
	taskID := newTaskID()
	log.Printf("compmanager: batch unload task %s starting (%d components)", taskID, len(names))
	var combined error
	for _, name := range names {
		if err := m.UnloadComponent(name); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	log.Printf("compmanager: batch unload task %s finished", taskID)
	return combined
}
