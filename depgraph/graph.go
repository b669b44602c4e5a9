// Package depgraph owns the typed dependency DAG: version-aware edges,
// cycle detection, topological ordering, conflict detection, grouping, and
// manifest-driven resolution.
package depgraph

import (
	"sort"
	"sync"

	"github.com/elementastro/lithium-kernel/version"
)

// Node is a dependency-graph vertex identifier; unique within a Graph.
type Node = string

// ConflictPair reports two nodes whose required versions for a shared
// dependency disagree.
type ConflictPair struct {
	A, B           Node
	Target         Node
	RequiredByA    version.Version
	RequiredByB    version.Version
}

// Graph is the typed DAG described in spec section 3: adjacency and its
// reverse are kept in lockstep, guarded by one reader-writer lock, per
// section 5's linearizability guarantee.
type Graph struct {
	mut sync.RWMutex // protects every map below

	adj    map[Node]map[Node]struct{} // outgoing: "depends on"
	rev    map[Node]map[Node]struct{} // incoming: "depended on by"
	ver    map[Node]version.Version
	prio   map[Node]int
	groups map[string][]Node

	// required holds the version requirement recorded by add_dependency for
	// each (from, to) edge, needed by detect_version_conflicts and
	// validate_dependencies.
	required map[edgeKey]version.Version

	// insertOrder preserves the order nodes were first added, which
	// topological_sort uses as its tie-break (not priority).
	insertOrder []Node

	cache *resolveCache
}

type edgeKey struct {
	From, To Node
}

// New returns an empty dependency graph.
func New() *Graph {
	return &Graph{
		adj:      make(map[Node]map[Node]struct{}),
		rev:      make(map[Node]map[Node]struct{}),
		ver:      make(map[Node]version.Version),
		prio:     make(map[Node]int),
		groups:   make(map[string][]Node),
		required: make(map[edgeKey]version.Version),
		cache:    newResolveCache(),
	}
}

// AddNode inserts name at version v, or updates its version if name is
// already present. Idempotent on name: re-adding with the same (name, v)
// touches no edges.
func (g *Graph) AddNode(name Node, v version.Version) {
	g.mut.Lock()
	defer g.mut.Unlock()
	g.addNodeLocked(name, v)
}

func (g *Graph) addNodeLocked(name Node, v version.Version) {
	if _, exists := g.adj[name]; !exists {
		g.adj[name] = make(map[Node]struct{})
		g.rev[name] = make(map[Node]struct{})
		g.prio[name] = 0
		g.insertOrder = append(g.insertOrder, name)
	}
	g.ver[name] = v
}

// SetPriority sets the scheduling priority for name; it does not affect
// topological_sort's tie-break, only batch scheduling order.
func (g *Graph) SetPriority(name Node, prio int) {
	g.mut.Lock()
	defer g.mut.Unlock()
	if _, ok := g.adj[name]; ok {
		g.prio[name] = prio
	}
}

// AddDependency records that from depends on to at requiredVersion. It
// rejects MissingNode if to is absent, and VersionMismatch if to's current
// version does not satisfy requiredVersion. It does not auto-insert from or
// to.
func (g *Graph) AddDependency(from, to Node, requiredVersion version.Version) error {
	g.mut.Lock()
	defer g.mut.Unlock()

	toVer, ok := g.ver[to]
	if !ok {
		return MissingNode(to)
	}
	if toVer.LessThan(requiredVersion) {
		return VersionMismatch(to, "has "+toVer.String()+", requires >= "+requiredVersion.String())
	}
	if _, ok := g.adj[from]; !ok {
		return MissingNode(from)
	}

	g.adj[from][to] = struct{}{}
	g.rev[to][from] = struct{}{}
	g.required[edgeKey{from, to}] = requiredVersion
	g.cache.invalidate()
	return nil
}

// RemoveNode deletes name and every edge that mentions it, in time
// proportional to its degree.
func (g *Graph) RemoveNode(name Node) {
	g.mut.Lock()
	defer g.mut.Unlock()

	for to := range g.adj[name] {
		delete(g.rev[to], name)
		delete(g.required, edgeKey{name, to})
	}
	for from := range g.rev[name] {
		delete(g.adj[from], name)
		delete(g.required, edgeKey{from, name})
	}
	delete(g.adj, name)
	delete(g.rev, name)
	delete(g.ver, name)
	delete(g.prio, name)

	for i, n := range g.insertOrder {
		if n == name {
			g.insertOrder = append(g.insertOrder[:i], g.insertOrder[i+1:]...)
			break
		}
	}
	g.cache.invalidate()
}

// RemoveDependency removes the from->to edge, both directions.
func (g *Graph) RemoveDependency(from, to Node) {
	g.mut.Lock()
	defer g.mut.Unlock()
	if m, ok := g.adj[from]; ok {
		delete(m, to)
	}
	if m, ok := g.rev[to]; ok {
		delete(m, from)
	}
	delete(g.required, edgeKey{from, to})
	g.cache.invalidate()
}

// GetDependencies returns the direct outgoing neighbours of n; a missing
// node yields an empty, non-nil slice.
func (g *Graph) GetDependencies(n Node) []Node {
	g.mut.RLock()
	defer g.mut.RUnlock()
	return sortedKeys(g.adj[n])
}

// GetDependents returns the direct incoming neighbours of n.
func (g *Graph) GetDependents(n Node) []Node {
	g.mut.RLock()
	defer g.mut.RUnlock()
	return sortedKeys(g.rev[n])
}

// HasNode reports whether n is present.
func (g *Graph) HasNode(n Node) bool {
	g.mut.RLock()
	defer g.mut.RUnlock()
	_, ok := g.adj[n]
	return ok
}

// Version returns n's recorded version.
func (g *Graph) Version(n Node) (version.Version, bool) {
	g.mut.RLock()
	defer g.mut.RUnlock()
	v, ok := g.ver[n]
	return v, ok
}

func sortedKeys(m map[Node]struct{}) []Node {
	out := make([]Node, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HasCycle runs a DFS with an explicit recursion-stack set, exiting as soon
// as a back-edge is found. recStack holds exactly the nodes on the current
// DFS path, per the invariant spec section 9 adopts deliberately.
func (g *Graph) HasCycle() bool {
	g.mut.RLock()
	defer g.mut.RUnlock()

	visited := make(map[Node]bool, len(g.adj))
	recStack := make(map[Node]bool, len(g.adj))

	var visit func(Node) bool
	visit = func(n Node) bool {
		visited[n] = true
		recStack[n] = true
		for to := range g.adj[n] {
			if !visited[to] {
				if visit(to) {
					return true
				}
			} else if recStack[to] {
				return true
			}
		}
		recStack[n] = false
		return false
	}

	for _, n := range g.insertOrder {
		if !visited[n] {
			if visit(n) {
				return true
			}
		}
	}
	return false
}

// TopologicalSort returns an order where every edge points earlier->later,
// tie-broken by insertion order, or ok=false if the graph has a cycle.
func (g *Graph) TopologicalSort() (order []Node, ok bool) {
	g.mut.RLock()
	defer g.mut.RUnlock()
	return g.topoSortLocked()
}

func (g *Graph) topoSortLocked() (order []Node, ok bool) {
	indegree := make(map[Node]int, len(g.adj))
	for n := range g.adj {
		indegree[n] = 0
	}
	for _, tos := range g.adj {
		for to := range tos {
			indegree[to]++
		}
	}

	var queue []Node
	for _, n := range g.insertOrder {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order = make([]Node, 0, len(g.adj))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		// Visit this node's outgoing edges in insertion order of the target
		// set, matching the deterministic-per-input guarantee in section 5.
		for _, to := range g.insertOrder {
			if _, has := g.adj[n][to]; !has {
				continue
			}
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	if len(order) != len(g.adj) {
		return nil, false
	}
	return order, true
}

// GetAllDependencies returns the transitive closure of n's outgoing edges,
// excluding n itself.
func (g *Graph) GetAllDependencies(n Node) []Node {
	g.mut.RLock()
	defer g.mut.RUnlock()
	return g.transitiveLocked(n)
}

func (g *Graph) transitiveLocked(n Node) []Node {
	seen := make(map[Node]struct{})
	var walk func(Node)
	walk = func(cur Node) {
		for to := range g.adj[cur] {
			if _, ok := seen[to]; ok {
				continue
			}
			seen[to] = struct{}{}
			walk(to)
		}
	}
	walk(n)
	delete(seen, n)
	out := make([]Node, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DetectVersionConflicts emits one ConflictPair for every pair of nodes
// that both depend on a common target with disagreeing required versions.
func (g *Graph) DetectVersionConflicts() []ConflictPair {
	g.mut.RLock()
	defer g.mut.RUnlock()

	byTarget := make(map[Node][]Node)
	for key := range g.required {
		byTarget[key.To] = append(byTarget[key.To], key.From)
	}

	var out []ConflictPair
	for target, froms := range byTarget {
		sort.Strings(froms)
		for i := 0; i < len(froms); i++ {
			for j := i + 1; j < len(froms); j++ {
				a, b := froms[i], froms[j]
				ra := g.required[edgeKey{a, target}]
				rb := g.required[edgeKey{b, target}]
				if !ra.Equal(rb) {
					out = append(out, ConflictPair{A: a, B: b, Target: target, RequiredByA: ra, RequiredByB: rb})
				}
			}
		}
	}
	return out
}

// AddGroup records a named bundle of node references for batch operations.
// Re-adding a group name replaces its member list.
func (g *Graph) AddGroup(name string, nodes []Node) {
	g.mut.Lock()
	defer g.mut.Unlock()
	cp := make([]Node, len(nodes))
	copy(cp, nodes)
	g.groups[name] = cp
}

// GetGroupDependencies returns the union of the transitive dependencies of
// every member of the named group.
func (g *Graph) GetGroupDependencies(name string) []Node {
	g.mut.RLock()
	defer g.mut.RUnlock()

	seen := make(map[Node]struct{})
	for _, member := range g.groups[name] {
		for _, dep := range g.transitiveLocked(member) {
			seen[dep] = struct{}{}
		}
	}
	out := make([]Node, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidateDependencies reports whether every transitive dependency of node
// exists and satisfies its recorded version edge.
func (g *Graph) ValidateDependencies(node Node) bool {
	g.mut.RLock()
	defer g.mut.RUnlock()

	for _, dep := range g.transitiveLocked(node) {
		v, ok := g.ver[dep]
		if !ok {
			return false
		}
		for key, req := range g.required {
			if key.To == dep && v.LessThan(req) {
				return false
			}
		}
	}
	return true
}
