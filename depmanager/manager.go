package depmanager

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/elementastro/lithium-kernel/pkgregistry"
	"github.com/elementastro/lithium-kernel/version"
)

const installedCacheSize = 1024

// DependencyManager owns a declared set of OS-package dependencies, installs
// and uninstalls them through a pkgregistry.Registry, and caches installed
// state across restarts, per spec section 4.5.
type DependencyManager struct {
	mu       sync.RWMutex
	deps     map[string]*PackageDependency
	order    []string
	registry *pkgregistry.Registry

	installedCache *lru.Cache[string, bool]
	cachePath      string

	customInstallCommands map[string]string

	cancelMu sync.Mutex
	cancels  map[string]context.CancelFunc

	// run executes a shell command and is overridable in tests so they
	// never actually invoke a package manager.
	run func(ctx context.Context, command string) error
}

// New constructs a DependencyManager backed by registry, loading any
// persisted installed-state cache from cachePath if it exists.
func New(registry *pkgregistry.Registry, cachePath string) (*DependencyManager, error) {
	cache, err := lru.New[string, bool](installedCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create installed cache")
	}
	m := &DependencyManager{
		deps:                   make(map[string]*PackageDependency),
		registry:               registry,
		installedCache:         cache,
		cachePath:              cachePath,
		customInstallCommands:  make(map[string]string),
		cancels:                make(map[string]context.CancelFunc),
		run:                    runShell,
	}
	if cachePath != "" {
		if err := m.loadInstalledCache(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddDependency registers dep for future install/verify calls.
func (m *DependencyManager) AddDependency(dep PackageDependency) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.deps[dep.Name]; !exists {
		m.order = append(m.order, dep.Name)
	}
	d := dep
	m.deps[dep.Name] = &d
}

// RemoveDependency drops depName from the declared set.
func (m *DependencyManager) RemoveDependency(depName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.deps, depName)
	for i, n := range m.order {
		if n == depName {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// SetCustomInstallCommand overrides the install command used for name,
// bypassing the package manager's own InstallCommand template.
func (m *DependencyManager) SetCustomInstallCommand(name, command string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customInstallCommands[name] = command
}

func (m *DependencyManager) find(name string) (*PackageDependency, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.deps[name]
	return d, ok
}

// installCommandFor resolves the shell command used to install name: a
// custom override if set, else the declared package manager's (or the
// registry default's) InstallCommand template.
func (m *DependencyManager) installCommandFor(dep *PackageDependency) (string, error) {
	m.mu.RLock()
	custom, hasCustom := m.customInstallCommands[dep.Name]
	m.mu.RUnlock()
	if hasCustom {
		return custom, nil
	}

	mgrName := dep.PackageManager
	var (
		info pkgregistry.PackageManagerInfo
		ok   bool
	)
	if mgrName != "" {
		info, ok = m.registry.GetPackageManager(mgrName)
	}
	if !ok {
		mgrs := m.registry.GetPackageManagers()
		if len(mgrs) == 0 {
			return "", newError(ErrPackageManagerNotFound, "no package manager registered")
		}
		info = mgrs[0]
	}
	return info.InstallCommand(dep.Name), nil
}

func runShell(ctx context.Context, command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	_, err := cmd.CombinedOutput()
	return err
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if ctxErr := err; ctxErr == context.DeadlineExceeded {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "network") ||
		strings.Contains(msg, "temporary failure") ||
		strings.Contains(msg, "connection refused")
}

// CheckVersionCompatibility compares dep's declared version against
// required using full Version ordering, per spec section 4.5.
func (m *DependencyManager) CheckVersionCompatibility(name, required string) (bool, error) {
	dep, ok := m.find(name)
	if !ok {
		return false, newError(ErrDependencyNotFound, name)
	}
	if dep.Version == "" {
		return false, nil
	}
	actual, err := version.Parse(dep.Version)
	if err != nil {
		return false, newError(ErrInvalidVersion, err.Error())
	}
	req, err := version.Parse(required)
	if err != nil {
		return false, newError(ErrInvalidVersion, err.Error())
	}
	return !actual.LessThan(req), nil
}

// VerifyDependencies reports whether every declared dependency's installed
// flag is true in the cache.
func (m *DependencyManager) VerifyDependencies() bool {
	m.mu.RLock()
	names := append([]string(nil), m.order...)
	m.mu.RUnlock()

	for _, name := range names {
		installed, ok := m.installedCache.Get(name)
		if !ok || !installed {
			return false
		}
	}
	return true
}

// IsDependencyInstalled reports the cached installed flag for name.
func (m *DependencyManager) IsDependencyInstalled(name string) bool {
	installed, ok := m.installedCache.Get(name)
	return ok && installed
}

// RefreshCache re-probes every declared dependency by running its package
// manager's check command and updates the installed cache accordingly.
func (m *DependencyManager) RefreshCache() {
	m.mu.RLock()
	names := append([]string(nil), m.order...)
	m.mu.RUnlock()

	for _, name := range names {
		dep, ok := m.find(name)
		if !ok {
			continue
		}
		mgrs := m.registry.GetPackageManagers()
		installed := false
		for _, mgr := range mgrs {
			if mgr.Name != dep.PackageManager && dep.PackageManager != "" {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := m.run(ctx, mgr.CheckCommand(dep.Name))
			cancel()
			if err == nil {
				installed = true
				break
			}
		}
		m.installedCache.Add(name, installed)
	}
}
