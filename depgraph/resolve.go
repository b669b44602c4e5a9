package depgraph

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/elementastro/lithium-kernel/version"
)

// parallelBatchSize is fixed at 4 per spec section 4.2; chunk takes the
// batch size as a parameter, and ResolveParallelDependencies always passes
// this constant.
const parallelBatchSize = 4

// ResolveDependencies resolves each directory's manifest into a single
// deduplicated topological order, preserving first occurrence across
// directories. A directory whose manifest graph contains a cycle fails the
// whole call.
func ResolveDependencies(directories []string) ([]Node, error) {
	seen := make(map[Node]struct{})
	var out []Node

	for _, dir := range directories {
		order, err := resolveOne(dir)
		if err != nil {
			return nil, err
		}
		for _, n := range order {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out, nil
}

func resolveOne(dir string) ([]Node, error) {
	m, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	g := New()
	g.AddNode(m.Name, version.Version{})
	for depName, depVer := range m.Deps {
		if _, isSystem := IsSystemDependency(depName); isSystem {
			continue
		}
		g.AddNode(depName, depVer)
		if err := g.AddDependency(m.Name, depName, depVer); err != nil {
			return nil, err
		}
	}

	if g.HasCycle() {
		return nil, &GraphViolation{Kind: ViolationCycle, Node: m.Name, Detail: "manifest graph contains a cycle"}
	}
	order, ok := g.TopologicalSort()
	if !ok {
		return nil, &GraphViolation{Kind: ViolationCycle, Node: m.Name, Detail: "topological sort failed"}
	}
	return order, nil
}

// ResolveParallelDependencies partitions directories into fixed-size
// batches and resolves each batch concurrently on its own scratch graph,
// consulting and populating a shared cache keyed by directory so repeat
// resolutions of the same directory are skipped. Results are merged,
// deduplicating by first occurrence in batch order.
func (g *Graph) ResolveParallelDependencies(directories []string) ([]Node, error) {
	batches := chunk(directories, parallelBatchSize)

	results := make([][]Node, len(batches))
	var eg errgroup.Group
	var resultsMu sync.Mutex

	for i, batch := range batches {
		i, batch := i, batch
		eg.Go(func() error {
			merged := make([]Node, 0, len(batch))
			for _, dir := range batch {
				if cached, ok := g.cache.get(dir); ok {
					merged = append(merged, cached...)
					continue
				}
				order, err := resolveOne(dir)
				if err != nil {
					return err
				}
				g.cache.put(dir, order)
				merged = append(merged, order...)
			}
			resultsMu.Lock()
			results[i] = merged
			resultsMu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[Node]struct{})
	var out []Node
	for _, batch := range results {
		for _, n := range batch {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out, nil
}

// ResolveSystemDependencies scans every directory's manifest and returns,
// for each bare system-package name, the maximum required version across
// all manifests that declared it.
func ResolveSystemDependencies(directories []string) (map[string]version.Version, error) {
	out := make(map[string]version.Version)
	for _, dir := range directories {
		m, err := LoadManifest(dir)
		if err != nil {
			return nil, err
		}
		for depName, depVer := range m.Deps {
			bare, isSystem := IsSystemDependency(depName)
			if !isSystem {
				continue
			}
			if cur, ok := out[bare]; !ok || depVer.GreaterThan(cur) {
				out[bare] = depVer
			}
		}
	}
	return out, nil
}

func chunk(items []string, size int) [][]string {
	if size <= 0 {
		size = len(items)
		if size == 0 {
			return nil
		}
	}
	var out [][]string
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}
