package pkgregistry

import "fmt"

// RegistryError reports a failure to locate a registered package manager.
type RegistryError struct {
	Name   string
	Detail string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("package manager %s: %s", e.Name, e.Detail)
}

func notFoundError(name string) error {
	return &RegistryError{Name: name, Detail: "not registered"}
}
