package depmanager

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	installTimeout = 2 * time.Minute
	maxRetries     = 3
)

// InstallResult is delivered on the channel returned by Install/InstallWithVersion
// once the install attempt (including any retries) has settled.
type InstallResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Install installs name asynchronously, retrying transient (network-looking)
// failures with an exponential backoff up to maxRetries retries, per spec
// section 4.5. The returned channel receives exactly one InstallResult.
func (m *DependencyManager) Install(ctx context.Context, name string) <-chan InstallResult {
	return m.InstallWithVersion(ctx, name, "")
}

// InstallWithVersion is Install, additionally recording requiredVersion as
// the dependency's declared Version if the dependency is not already known.
func (m *DependencyManager) InstallWithVersion(ctx context.Context, name, requiredVersion string) <-chan InstallResult {
	out := make(chan InstallResult, 1)

	dep, ok := m.find(name)
	if !ok {
		dep = &PackageDependency{Name: name, Version: requiredVersion}
		m.AddDependency(*dep)
		dep, _ = m.find(name)
	}

	installCtx, cancel := context.WithCancel(ctx)
	m.cancelMu.Lock()
	m.cancels[name] = cancel
	m.cancelMu.Unlock()

	go func() {
		defer func() {
			cancel()
			m.cancelMu.Lock()
			delete(m.cancels, name)
			m.cancelMu.Unlock()
		}()

		start := time.Now()
		err := m.installOne(installCtx, dep)
		duration := time.Since(start)

		m.mu.Lock()
		if d, ok := m.deps[name]; ok {
			d.lastInstallDuration = duration
		}
		m.mu.Unlock()

		if err == nil {
			m.installedCache.Add(name, true)
		}
		out <- InstallResult{Name: name, Duration: duration, Err: err}
		close(out)
	}()

	return out
}

func (m *DependencyManager) installOne(ctx context.Context, dep *PackageDependency) error {
	command, err := m.installCommandFor(dep)
	if err != nil {
		return err
	}

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, installTimeout)
		defer cancel()
		err := m.run(attemptCtx, command)
		if err != nil && !isTransient(err) {
			return backoff.Permanent(newError(ErrInstallFailed, err.Error()))
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if depErr, ok := err.(*DependencyError); ok {
			return depErr
		}
		return newError(ErrNetworkError, err.Error())
	}
	return nil
}

// InstallMultiple installs every named dependency concurrently, returning
// one result channel per name in the same order.
func (m *DependencyManager) InstallMultiple(ctx context.Context, names []string) []<-chan InstallResult {
	channels := make([]<-chan InstallResult, len(names))
	for i, name := range names {
		channels[i] = m.Install(ctx, name)
	}
	return channels
}

// UninstallDependency removes an installed package via its package
// manager's uninstall command and clears its installed-cache entry.
func (m *DependencyManager) UninstallDependency(ctx context.Context, name string) error {
	dep, ok := m.find(name)
	if !ok {
		return newError(ErrDependencyNotFound, name)
	}

	mgrs := m.registry.GetPackageManagers()
	var command string
	found := false
	for _, mgr := range mgrs {
		if dep.PackageManager != "" && mgr.Name != dep.PackageManager {
			continue
		}
		command = mgr.UninstallCommand(dep.Name)
		found = true
		break
	}
	if !found {
		return newError(ErrPackageManagerNotFound, "no package manager registered")
	}

	if err := m.run(ctx, command); err != nil {
		return newError(ErrUninstallFailed, err.Error())
	}
	m.installedCache.Add(name, false)
	return nil
}

// CancelInstallation delegates to the underlying registry's process-based
// cancellation for managerName.
func (m *DependencyManager) CancelInstallation(managerName string) error {
	return m.registry.CancelInstallation(managerName)
}

// CancelInstall aborts name's in-flight Install/InstallWithVersion call, if
// one is running, by cancelling its context. Reports whether an install
// for name was actually in flight.
func (m *DependencyManager) CancelInstall(name string) bool {
	m.cancelMu.Lock()
	cancel, ok := m.cancels[name]
	m.cancelMu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}
