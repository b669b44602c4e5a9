package depmanager

import "encoding/json"

// ExportConfig serializes every declared dependency to JSON, per spec
// section 4.5. The shape never includes lastInstallDuration, which is
// report-only.
func (m *DependencyManager) ExportConfig() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := exportedConfig{Dependencies: make([]PackageDependency, 0, len(m.order))}
	for _, name := range m.order {
		cfg.Dependencies = append(cfg.Dependencies, *m.deps[name])
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, newError(ErrConfigLoadFailed, err.Error())
	}
	return data, nil
}

// ImportConfig replaces the declared dependency set with the contents of
// data, a JSON document in the same shape ExportConfig produces.
func (m *DependencyManager) ImportConfig(data []byte) error {
	var cfg exportedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return newError(ErrConfigLoadFailed, err.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.deps = make(map[string]*PackageDependency, len(cfg.Dependencies))
	m.order = m.order[:0]
	for _, dep := range cfg.Dependencies {
		d := dep
		m.deps[d.Name] = &d
		m.order = append(m.order, d.Name)
	}
	return nil
}
