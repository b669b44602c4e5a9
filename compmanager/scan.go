package compmanager

import (
	"path/filepath"
	"sort"

	"github.com/elementastro/lithium-kernel/filetracker"
)

const scanSnapshotFile = ".compmanager-scan-snapshot.json"

// Scan delegates to a file-tracker over dir and returns every path
// classified as "new" relative to the last Scan of that directory —
// candidates for LoadComponent, per spec section 4.4.
func (m *ComponentManager) Scan(dir string) ([]string, error) {
	tr, ok := m.scanTrackers[dir]
	if !ok {
		tr = filetracker.New(dir, filepath.Join(dir, scanSnapshotFile), nil, true)
		if m.scanTrackers == nil {
			m.scanTrackers = make(map[string]*filetracker.Tracker)
		}
		m.scanTrackers[dir] = tr
	}

	if err := tr.Scan(); err != nil {
		return nil, err
	}
	diff, err := tr.Compare()
	if err != nil {
		return nil, err
	}

	var fresh []string
	for path, d := range diff {
		if d.Status == filetracker.StatusNew {
			fresh = append(fresh, path)
		}
	}
	sort.Strings(fresh)
	return fresh, nil
}
