package depmanager

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GenerateDependencyReport renders a multi-line human-readable summary of
// every declared dependency: install state, declared version constraints,
// and (when available) the duration its last install attempt took — a
// detail the distilled spec dropped but the original implementation
// tracked via DependencyInfo::lastInstallDuration.
func (m *DependencyManager) GenerateDependencyReport() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Dependency Report (%d declared)\n", len(m.order))
	for _, name := range m.order {
		dep := m.deps[name]
		installed, _ := m.installedCache.Peek(name)

		status := "not installed"
		if installed {
			status = "installed"
		}
		fmt.Fprintf(&b, "- %s [%s]", name, status)
		if dep.Version != "" {
			fmt.Fprintf(&b, " version=%s", dep.Version)
		}
		if dep.MinVersion != "" || dep.MaxVersion != "" {
			fmt.Fprintf(&b, " range=[%s,%s]", dep.MinVersion, dep.MaxVersion)
		}
		if dep.Optional {
			b.WriteString(" optional")
		}
		if dep.lastInstallDuration > 0 {
			fmt.Fprintf(&b, " last_install=%s", dep.lastInstallDuration)
		}
		if len(dep.Dependencies) > 0 {
			fmt.Fprintf(&b, " requires=%v", dep.Dependencies)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// dependencyNode is one entry in the JSON tree GetDependencyGraph returns.
type dependencyNode struct {
	Name      string           `json:"name"`
	Installed bool             `json:"installed"`
	Requires  []dependencyNode `json:"requires,omitempty"`
}

// GetDependencyGraph returns a JSON document describing every declared
// dependency and its transitive requirements, each annotated with its
// current installed flag. Cycles are broken by not recursing into a name
// already on the current path.
func (m *DependencyManager) GetDependencyGraph() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	nodes := make([]dependencyNode, 0, len(m.order))
	for _, name := range m.order {
		nodes = append(nodes, m.buildNode(name, map[string]bool{}))
	}
	return json.MarshalIndent(nodes, "", "  ")
}

func (m *DependencyManager) buildNode(name string, visiting map[string]bool) dependencyNode {
	installed, _ := m.installedCache.Peek(name)
	node := dependencyNode{Name: name, Installed: installed}

	dep, ok := m.deps[name]
	if !ok || visiting[name] {
		return node
	}
	visiting[name] = true
	for _, child := range dep.Dependencies {
		node.Requires = append(node.Requires, m.buildNode(child, visiting))
	}
	delete(visiting, name)
	return node
}
