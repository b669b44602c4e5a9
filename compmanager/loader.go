package compmanager

import "plugin"

// ModuleLoader is the narrow collaborator interface the manager depends on
// to turn a component's path into a loaded instance. Spec section 4.4
// treats module loading as an external concern; this interface is what
// lets tests substitute a fake loader instead of touching the filesystem.
type ModuleLoader interface {
	Load(path string) (interface{}, error)
	Unload(instance interface{}) error
}

// PluginModuleLoader loads components as Go plugins (.so files), the
// idiomatic standard-library mechanism for runtime-loaded native code and
// the closest analogue to the original's native module loader (see spec
// section 9). No third-party plugin-loading library exists in this pack,
// so this stays on the standard library (see DESIGN.md).
type PluginModuleLoader struct {
	// Symbol is the exported symbol name each plugin must provide,
	// conventionally a zero-argument constructor returning the component
	// instance.
	Symbol string
}

// NewPluginModuleLoader constructs a loader that looks up symbol in each
// loaded plugin.
func NewPluginModuleLoader(symbol string) *PluginModuleLoader {
	if symbol == "" {
		symbol = "Component"
	}
	return &PluginModuleLoader{Symbol: symbol}
}

func (l *PluginModuleLoader) Load(path string) (interface{}, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	sym, err := p.Lookup(l.Symbol)
	if err != nil {
		return nil, err
	}
	return sym, nil
}

// Unload is a no-op: the plugin package provides no mechanism to unload a
// loaded plugin from the running process.
func (l *PluginModuleLoader) Unload(instance interface{}) error {
	return nil
}
