package compmanager

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	mu       sync.Mutex
	loaded   []string
	unloaded []string
	failPath string
}

func (f *fakeLoader) Load(path string) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if path == f.failPath {
		return nil, errLoadFailed
	}
	f.loaded = append(f.loaded, path)
	return &struct{ path string }{path}, nil
}

func (f *fakeLoader) Unload(instance interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unloaded = append(f.unloaded, "x")
	return nil
}

var errLoadFailed = &LifecycleError{Kind: KindLoadFailed, Component: "x", Detail: "boom"}

func TestLoadComponentRejectsDuplicateName(t *testing.T) {
	m := New(&fakeLoader{})
	require.NoError(t, m.LoadComponent(LoadParams{Name: "a", Path: "/a.so"}))
	err := m.LoadComponent(LoadParams{Name: "a", Path: "/a.so"})
	require.Error(t, err)
	var lerr *LifecycleError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, KindAlreadyRegistered, lerr.Kind)
}

func TestLoadComponentWiresGraphDependencies(t *testing.T) {
	m := New(&fakeLoader{})
	require.NoError(t, m.LoadComponent(LoadParams{Name: "base", Path: "/base.so"}))
	require.NoError(t, m.LoadComponent(LoadParams{Name: "child", Path: "/child.so", Dependencies: []string{"base"}}))

	info, err := m.GetComponentInfo("child")
	require.NoError(t, err)
	require.Equal(t, int(StateCreated), info.State)

	lines := m.PrintDependencyTree()
	require.Contains(t, lines, "child -> [base]")
}

func TestStartStopPauseResumeLifecycle(t *testing.T) {
	m := New(&fakeLoader{})
	require.NoError(t, m.LoadComponent(LoadParams{Name: "svc", Path: "/svc.so"}))

	require.NoError(t, m.StartComponent("svc"))
	info, _ := m.GetComponentInfo("svc")
	require.Equal(t, int(StateRunning), info.State)

	require.NoError(t, m.PauseComponent("svc"))
	info, _ = m.GetComponentInfo("svc")
	require.Equal(t, int(StatePaused), info.State)

	require.NoError(t, m.ResumeComponent("svc"))
	info, _ = m.GetComponentInfo("svc")
	require.Equal(t, int(StateRunning), info.State)

	require.NoError(t, m.StopComponent("svc"))
	info, _ = m.GetComponentInfo("svc")
	require.Equal(t, int(StateStopped), info.State)
}

func TestDisableBlocksFurtherTransitions(t *testing.T) {
	m := New(&fakeLoader{})
	require.NoError(t, m.LoadComponent(LoadParams{Name: "svc", Path: "/svc.so"}))
	require.NoError(t, m.DisableComponent("svc"))

	err := m.StartComponent("svc")
	require.Error(t, err)

	require.NoError(t, m.EnableComponent("svc"))
	require.NoError(t, m.StartComponent("svc"))
}

func TestUnloadComponentRemovesRecordAndGraphNode(t *testing.T) {
	loader := &fakeLoader{}
	m := New(loader)
	require.NoError(t, m.LoadComponent(LoadParams{Name: "svc", Path: "/svc.so"}))
	require.NoError(t, m.UnloadComponent("svc"))

	require.False(t, m.HasComponent("svc"))
	require.False(t, m.graph.HasNode("svc"))
}

func TestGetComponentReturnsWeakHandleThatExpires(t *testing.T) {
	m := New(&fakeLoader{})
	require.NoError(t, m.LoadComponent(LoadParams{Name: "svc", Path: "/svc.so"}))

	handle, ok := m.GetComponent("svc")
	require.True(t, ok)
	require.True(t, handle.IsValid())

	require.NoError(t, m.UnloadComponent("svc"))
	require.False(t, handle.IsValid())
	_, ok = handle.Get()
	require.False(t, ok)
}

func TestEventListenersReceiveLifecycleEvents(t *testing.T) {
	m := New(&fakeLoader{})

	var events []Event
	var mu sync.Mutex
	m.AddEventListener(EventPostLoad, func(p EventPayload) {
		mu.Lock()
		events = append(events, p.Event)
		mu.Unlock()
	})
	m.AddEventListener(EventStateChanged, func(p EventPayload) {
		mu.Lock()
		events = append(events, p.Event)
		mu.Unlock()
	})

	require.NoError(t, m.LoadComponent(LoadParams{Name: "svc", Path: "/svc.so"}))
	require.NoError(t, m.StartComponent("svc"))

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, events, EventPostLoad)
	require.Contains(t, events, EventStateChanged)
}

func TestListenerPanicIsRecovered(t *testing.T) {
	m := New(&fakeLoader{})
	m.AddEventListener(EventPostLoad, func(p EventPayload) {
		panic("listener exploded")
	})
	require.NoError(t, m.LoadComponent(LoadParams{Name: "svc", Path: "/svc.so"}))
}

func TestBatchLoadAggregatesFailures(t *testing.T) {
	loader := &fakeLoader{failPath: "/bad.so"}
	m := New(loader)

	err := m.BatchLoad([]LoadParams{
		{Name: "good", Path: "/good.so", Priority: 2},
		{Name: "bad", Path: "/bad.so", Priority: 1},
	})
	require.Error(t, err)
	require.True(t, m.HasComponent("good"))
	require.False(t, m.HasComponent("bad"))
}

func TestBatchUnloadAggregatesFailures(t *testing.T) {
	loader := &fakeLoader{}
	m := New(loader)
	require.NoError(t, m.LoadComponent(LoadParams{Name: "a", Path: "/a.so"}))

	err := m.BatchUnload([]string{"a", "missing"})
	require.Error(t, err)
	require.False(t, m.HasComponent("a"))
}

func TestUpdateConfigEmitsConfigChanged(t *testing.T) {
	m := New(&fakeLoader{})
	require.NoError(t, m.LoadComponent(LoadParams{Name: "svc", Path: "/svc.so"}))

	received := make(chan map[string]interface{}, 1)
	m.AddEventListener(EventConfigChanged, func(p EventPayload) {
		received <- p.Config
	})

	cfg := map[string]interface{}{"level": "debug"}
	require.NoError(t, m.UpdateConfig("svc", cfg))

	info, err := m.GetComponentInfo("svc")
	require.NoError(t, err)
	require.Equal(t, cfg, info.Config)
	require.Equal(t, cfg, <-received)
}

func TestGroupsTrackMembership(t *testing.T) {
	m := New(&fakeLoader{})
	require.NoError(t, m.LoadComponent(LoadParams{Name: "svc", Path: "/svc.so"}))
	require.NoError(t, m.AddToGroup("camera", "svc"))
	require.ElementsMatch(t, []string{"svc"}, m.GetGroupComponents("camera"))
}

func TestPerformanceMetricsAndErrorTracking(t *testing.T) {
	loader := &fakeLoader{failPath: "/missing.so"}
	m := New(loader)
	err := m.LoadComponent(LoadParams{Name: "bad", Path: "/missing.so"})
	require.Error(t, err)
	require.NotEmpty(t, m.GetLastError())

	m.ClearErrors()
	require.Empty(t, m.GetLastError())
}
