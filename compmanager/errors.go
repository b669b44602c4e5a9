package compmanager

import "fmt"

// LifecycleErrorKind classifies a component-manager failure.
type LifecycleErrorKind int

const (
	KindAlreadyRegistered LifecycleErrorKind = iota
	KindNotFound
	KindInvalidTransition
	KindLoadFailed
	KindTimeout
)

// LifecycleError is the typed error every public ComponentManager method
// returns on failure, per spec section 4.4's "result type carrying either
// success or an error string".
type LifecycleError struct {
	Kind      LifecycleErrorKind
	Component string
	Detail    string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("component %s: %s", e.Component, e.Detail)
}

func alreadyRegistered(name string) error {
	return &LifecycleError{Kind: KindAlreadyRegistered, Component: name, Detail: "already registered"}
}

func notFound(name string) error {
	return &LifecycleError{Kind: KindNotFound, Component: name, Detail: "not found"}
}

func invalidTransition(name string, from, to State) error {
	return &LifecycleError{
		Kind:      KindInvalidTransition,
		Component: name,
		Detail:    fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}
