package depmanager

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	flock "github.com/theckman/go-flock"
)

type cacheEntry struct {
	Name      string `json:"name"`
	Installed bool   `json:"installed"`
}

// loadInstalledCache populates m.installedCache from m.cachePath, if that
// file exists; a missing file is not an error (first run).
func (m *DependencyManager) loadInstalledCache() error {
	data, err := os.ReadFile(m.cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return newError(ErrConfigLoadFailed, err.Error())
	}

	var entries []cacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return newError(ErrConfigLoadFailed, err.Error())
	}
	for _, e := range entries {
		m.installedCache.Add(e.Name, e.Installed)
	}
	return nil
}

// SaveInstalledCache persists the installed-state cache to m.cachePath
// using the same lock-then-temp-file-then-rename pattern filetracker uses
// for its snapshots, so concurrent DependencyManager processes never
// observe a partially written cache file.
func (m *DependencyManager) SaveInstalledCache() error {
	if m.cachePath == "" {
		return nil
	}

	keys := m.installedCache.Keys()
	entries := make([]cacheEntry, 0, len(keys))
	for _, k := range keys {
		installed, ok := m.installedCache.Peek(k)
		if !ok {
			continue
		}
		entries = append(entries, cacheEntry{Name: k, Installed: installed})
	}

	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal installed cache")
	}

	lock := flock.NewFlock(m.cachePath + ".lock")
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "lock installed cache file")
	}
	defer lock.Unlock()

	tmp := m.cachePath + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return errors.Wrap(err, "write installed cache temp file")
	}
	if err := os.Rename(tmp, m.cachePath); err != nil {
		return errors.Wrap(err, "rename installed cache temp file")
	}
	return nil
}

// Close flushes the installed-state cache to disk, if a cache path was
// configured.
func (m *DependencyManager) Close() error {
	return m.SaveInstalledCache()
}
