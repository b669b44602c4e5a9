package depmanager

import (
	"context"

	"go.uber.org/multierr"

	"github.com/elementastro/lithium-kernel/pkgregistry"
)

// CheckAndInstallDependencies installs every declared dependency not
// already marked installed in the cache, waiting for all of them to
// settle and aggregating any failures.
func (m *DependencyManager) CheckAndInstallDependencies(ctx context.Context) error {
	m.mu.RLock()
	names := append([]string(nil), m.order...)
	m.mu.RUnlock()

	var missing []string
	for _, name := range names {
		if !m.IsDependencyInstalled(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var combined error
	for _, ch := range m.InstallMultiple(ctx, missing) {
		res := <-ch
		if res.Err != nil {
			combined = multierr.Append(combined, res.Err)
		}
	}
	return combined
}

// GetCurrentPlatform returns the detected platform name, delegating to the
// underlying registry's PlatformDetector.
func (m *DependencyManager) GetCurrentPlatform() string {
	return m.registry.CurrentPlatform()
}

// SearchDependency delegates to the underlying registry.
func (m *DependencyManager) SearchDependency(name string) []string {
	return m.registry.SearchDependency(name)
}

// LoadSystemPackageManagers delegates to the underlying registry.
func (m *DependencyManager) LoadSystemPackageManagers() {
	m.registry.LoadSystemPackageManagers()
}

// GetPackageManagers delegates to the underlying registry.
func (m *DependencyManager) GetPackageManagers() []pkgregistry.PackageManagerInfo {
	return m.registry.GetPackageManagers()
}

// GetInstalledVersion returns the declared version string for name, if
// known.
func (m *DependencyManager) GetInstalledVersion(name string) (string, bool) {
	dep, ok := m.find(name)
	if !ok {
		return "", false
	}
	return dep.Version, dep.Version != ""
}
