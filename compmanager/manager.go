package compmanager

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/elementastro/lithium-kernel/depgraph"
	"github.com/elementastro/lithium-kernel/filetracker"
	"github.com/elementastro/lithium-kernel/internal/workerpool"
	"github.com/elementastro/lithium-kernel/version"
)

// ComponentManager owns the component registry, the shared dependency
// graph every loaded component is wired into, and the event bus that
// notifies subscribers of lifecycle transitions, per spec section 4.4.
type ComponentManager struct {
	records *concurrentRecords
	groups  *groupIndex
	events  *eventBus
	graph   *depgraph.Graph
	loader  ModuleLoader
	objects *objectPool
	memory  *memoryPool
	pool    *workerpool.Pool

	scanTrackers map[string]*filetracker.Tracker
	watcher      *hotReloadWatcher

	opCount    int64
	errCount   int64
	monitoring int32

	errMu     sync.RWMutex
	lastError string
}

// New constructs a ComponentManager that loads components through loader.
func New(loader ModuleLoader) *ComponentManager {
	return &ComponentManager{
		records: newConcurrentRecords(),
		groups:  newGroupIndex(),
		events:  newEventBus(),
		graph:   depgraph.New(),
		loader:  loader,
		objects: newObjectPool(defaultPoolCapacity),
		memory:  newMemoryPool(defaultPoolCapacity),
		pool:    workerpool.New(8),
	}
}

// AddEventListener registers fn to be invoked for every occurrence of event.
func (m *ComponentManager) AddEventListener(event Event, fn Listener) {
	m.events.Add(event, fn)
}

// RemoveEventListener clears all listeners registered for event.
func (m *ComponentManager) RemoveEventListener(event Event) {
	m.events.Remove(event)
}

// LoadComponent registers a new component: it rejects an already-used
// name, wires the component and its declared dependencies into the shared
// dependency graph, loads the module via the configured ModuleLoader,
// acquires an instance from the object pool, and emits PostLoad.
func (m *ComponentManager) LoadComponent(p LoadParams) (err error) {
	atomic.AddInt64(&m.opCount, 1)
	defer func() {
		if err != nil {
			m.recordFailure(p.Name, err)
		}
	}()

	if _, exists := m.records.find(p.Name); exists {
		return alreadyRegistered(p.Name)
	}

	v := version.Version{}
	if p.Version != "" {
		parsed, perr := version.Parse(p.Version)
		if perr != nil {
			return &LifecycleError{Kind: KindLoadFailed, Component: p.Name, Detail: perr.Error()}
		}
		v = parsed
	}

	m.graph.AddNode(depgraph.Node(p.Name), v)
	for _, dep := range p.Dependencies {
		if !m.graph.HasNode(depgraph.Node(dep)) {
			m.graph.AddNode(depgraph.Node(dep), version.Version{})
		}
		if derr := m.graph.AddDependency(depgraph.Node(p.Name), depgraph.Node(dep), version.Version{}); derr != nil {
			m.graph.RemoveNode(depgraph.Node(p.Name))
			return &LifecycleError{Kind: KindLoadFailed, Component: p.Name, Detail: derr.Error()}
		}
	}

	instance, err := m.loader.Load(p.Path)
	if err != nil {
		m.graph.RemoveNode(depgraph.Node(p.Name))
		return &LifecycleError{Kind: KindLoadFailed, Component: p.Name, Detail: err.Error()}
	}
	// The object pool enforces the capacity/reserve bound from spec section
	// 5; the loaded instance itself, not the pool's placeholder, is what
	// gets stored, since the module loader already produced the real value.
	_, acquired := m.objects.acquire()
	if !acquired {
		m.graph.RemoveNode(depgraph.Node(p.Name))
		return &LifecycleError{Kind: KindLoadFailed, Component: p.Name, Detail: "component pool exhausted"}
	}
	arena, _ := m.memory.acquire()

	r := &record{
		name:         p.Name,
		path:         p.Path,
		version:      p.Version,
		dependencies: append([]string(nil), p.Dependencies...),
		priority:     p.Priority,
		config:       p.Config,
		timeoutMS:    p.TimeoutMS,
		state:        StateCreated,
		instance:     instance,
		pooled:       acquired,
		arena:        arena,
	}
	m.records.insert(r)

	m.events.Emit(EventPayload{
		Component: p.Name,
		Event:     EventPostLoad,
		To:        StateCreated,
		Timestamp: eventTime(),
	})
	return nil
}

// UnloadComponent emits PreUnload, releases the module and any pooled
// instance, removes the component from the dependency graph, evicts its
// record, and emits PostUnload.
func (m *ComponentManager) UnloadComponent(name string) error {
	atomic.AddInt64(&m.opCount, 1)
	r, ok := m.records.find(name)
	if !ok {
		return notFound(name)
	}

	m.events.Emit(EventPayload{Component: name, Event: EventPreUnload, From: r.state, To: StateUnloading, Timestamp: eventTime()})

	if err := m.loader.Unload(r.instance); err != nil {
		m.recordFailure(name, err)
	}
	if r.pooled {
		m.objects.releaseSlot()
	}
	if r.arena != nil {
		m.memory.release(r.arena)
	}

	m.graph.RemoveNode(depgraph.Node(name))
	m.records.erase(name)

	m.events.Emit(EventPayload{Component: name, Event: EventPostUnload, From: StateUnloading, Timestamp: eventTime()})
	return nil
}

// ComponentHandle is a weak reference to a loaded component's instance; it
// expires (IsValid returns false) once the owning record has been
// unloaded, per spec section 4.4's "weak handle" contract.
type ComponentHandle struct {
	name    string
	manager *ComponentManager
}

// Get returns the live instance behind the handle, or false if the
// component has since been unloaded.
func (h ComponentHandle) Get() (interface{}, bool) {
	r, ok := h.manager.records.find(h.name)
	if !ok {
		return nil, false
	}
	return r.instance, true
}

// IsValid reports whether the handle's component is still registered.
func (h ComponentHandle) IsValid() bool {
	_, ok := h.manager.records.find(h.name)
	return ok
}

// GetComponent returns a weak handle to name, or (zero, false) if absent.
func (m *ComponentManager) GetComponent(name string) (ComponentHandle, bool) {
	if _, ok := m.records.find(name); !ok {
		return ComponentHandle{}, false
	}
	return ComponentHandle{name: name, manager: m}, true
}

// GetComponentInfo returns a JSON-friendly snapshot of name's state and
// configuration.
func (m *ComponentManager) GetComponentInfo(name string) (Info, error) {
	r, ok := m.records.find(name)
	if !ok {
		return Info{}, notFound(name)
	}
	return Info{Name: r.name, State: int(r.state), Config: r.config}, nil
}

// GetComponentList returns every registered component's name.
func (m *ComponentManager) GetComponentList() []string {
	names := m.records.names()
	sort.Strings(names)
	return names
}

// HasComponent reports whether name is currently registered.
func (m *ComponentManager) HasComponent(name string) bool {
	_, ok := m.records.find(name)
	return ok
}

// GetComponentDoc returns name's documentation string, if any.
func (m *ComponentManager) GetComponentDoc(name string) (string, error) {
	r, ok := m.records.find(name)
	if !ok {
		return "", notFound(name)
	}
	return r.doc, nil
}

// PrintDependencyTree renders every component as "name -> [dep1, dep2]",
// sorted by name, per spec section 4.4.
func (m *ComponentManager) PrintDependencyTree() []string {
	names := m.GetComponentList()
	lines := make([]string, 0, len(names))
	for _, n := range names {
		deps := m.graph.GetDependencies(depgraph.Node(n))
		lines = append(lines, fmt.Sprintf("%s -> [%s]", n, strings.Join(deps, ", ")))
	}
	return lines
}

func (m *ComponentManager) transition(name string, to State) error {
	r, ok := m.records.find(name)
	if !ok {
		return notFound(name)
	}
	if !canTransition(r.state, to) {
		return invalidTransition(name, r.state, to)
	}
	from := r.state
	r.state = to
	m.events.Emit(EventPayload{Component: name, Event: EventStateChanged, From: from, To: to, Timestamp: eventTime()})
	return nil
}

func (m *ComponentManager) StartComponent(name string) error {
	return m.transitionOrInit(name, StateInitialized, StateRunning)
}

func (m *ComponentManager) StopComponent(name string) error {
	return m.transition(name, StateStopped)
}

func (m *ComponentManager) PauseComponent(name string) error {
	return m.transition(name, StatePaused)
}

func (m *ComponentManager) ResumeComponent(name string) error {
	return m.transition(name, StateRunning)
}

// transitionOrInit allows StartComponent to run directly from Created by
// first auto-advancing to Initialized, matching the FSM diagram's implicit
// init edge when no explicit InitComponent call was made.
func (m *ComponentManager) transitionOrInit(name string, via, to State) error {
	r, ok := m.records.find(name)
	if !ok {
		return notFound(name)
	}
	if r.state == StateCreated {
		if err := m.transition(name, via); err != nil {
			return err
		}
	}
	return m.transition(name, to)
}

// DisableComponent forces name into Disabled, blocking all other
// transitions until EnableComponent is called.
func (m *ComponentManager) DisableComponent(name string) error {
	r, ok := m.records.find(name)
	if !ok {
		return notFound(name)
	}
	from := r.state
	r.state = StateDisabled
	m.events.Emit(EventPayload{Component: name, Event: EventStateChanged, From: from, To: StateDisabled, Timestamp: eventTime()})
	return nil
}

// EnableComponent releases name from Disabled back to Stopped, ready for a
// fresh StartComponent call.
func (m *ComponentManager) EnableComponent(name string) error {
	r, ok := m.records.find(name)
	if !ok {
		return notFound(name)
	}
	if r.state != StateDisabled {
		return invalidTransition(name, r.state, StateStopped)
	}
	r.state = StateStopped
	m.events.Emit(EventPayload{Component: name, Event: EventStateChanged, From: StateDisabled, To: StateStopped, Timestamp: eventTime()})
	return nil
}

// UpdateConfig replaces name's stored configuration and emits ConfigChanged.
func (m *ComponentManager) UpdateConfig(name string, cfg map[string]interface{}) error {
	r, ok := m.records.find(name)
	if !ok {
		return notFound(name)
	}
	r.config = cfg
	m.events.Emit(EventPayload{Component: name, Event: EventConfigChanged, Config: cfg, Timestamp: eventTime()})
	return nil
}

// AddToGroup associates name with group, creating the group if needed.
func (m *ComponentManager) AddToGroup(group, name string) error {
	if _, ok := m.records.find(name); !ok {
		return notFound(name)
	}
	m.groups.add(group, name)
	return nil
}

// GetGroupComponents returns every component name registered under group.
func (m *ComponentManager) GetGroupComponents(group string) []string {
	return m.groups.get(group)
}

// GetPerformanceMetrics returns a per-component {state, error_count}
// snapshot.
func (m *ComponentManager) GetPerformanceMetrics() map[string]PerformanceSnapshot {
	out := make(map[string]PerformanceSnapshot)
	for _, r := range m.records.snapshot() {
		out[r.name] = PerformanceSnapshot{State: r.state, ErrorCount: r.errorCount}
	}
	return out
}

// EnablePerformanceMonitoring toggles Prometheus metric export via Metrics.
func (m *ComponentManager) EnablePerformanceMonitoring(enable bool) {
	if enable {
		atomic.StoreInt32(&m.monitoring, 1)
	} else {
		atomic.StoreInt32(&m.monitoring, 0)
	}
}

func (m *ComponentManager) monitoringEnabled() bool {
	return atomic.LoadInt32(&m.monitoring) == 1
}

// GetLastError returns the most recently recorded error message across all
// components and failed operations, or "" if none have failed.
func (m *ComponentManager) GetLastError() string {
	m.errMu.RLock()
	defer m.errMu.RUnlock()
	return m.lastError
}

// ClearErrors resets every component's recorded error count and message,
// and the manager's last-error string.
func (m *ComponentManager) ClearErrors() {
	for _, r := range m.records.snapshot() {
		r.errorCount = 0
		r.lastError = ""
	}
	atomic.StoreInt64(&m.errCount, 0)
	m.errMu.Lock()
	m.lastError = ""
	m.errMu.Unlock()
}

func (m *ComponentManager) recordFailure(name string, err error) {
	atomic.AddInt64(&m.errCount, 1)
	m.errMu.Lock()
	m.lastError = err.Error()
	m.errMu.Unlock()
	if r, ok := m.records.find(name); ok {
		r.state = StateError
		r.errorCount++
		r.lastError = err.Error()
	}
	m.events.Emit(EventPayload{
		Component: name,
		Event:     EventError,
		To:        StateError,
		Message:   err.Error(),
		Timestamp: eventTime(),
	})
}

// newTaskID mints an identifier for a batch or watcher task.
func newTaskID() string {
	return uuid.NewString()
}

// eventTime is the single clock read used for every emitted event; kept as
// its own function so it is the one place a fixed clock would be injected
// for deterministic tests.
func eventTime() time.Time {
	return time.Now()
}
