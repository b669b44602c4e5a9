// Package depmanager tracks declared OS-package dependencies, installs and
// uninstalls them through a pkgregistry.Registry, and persists an
// installed-state cache across restarts.
package depmanager

import "fmt"

// ErrorCode enumerates dependency-operation failure kinds, grounded on the
// original lithium::system::DependencyErrorCode enum.
type ErrorCode int

const (
	ErrPackageManagerNotFound ErrorCode = iota
	ErrInstallFailed
	ErrUninstallFailed
	ErrDependencyNotFound
	ErrConfigLoadFailed
	ErrInvalidVersion
	ErrNetworkError
	ErrPermissionDenied
	ErrUnknown
)

func (c ErrorCode) String() string {
	switch c {
	case ErrPackageManagerNotFound:
		return "package_manager_not_found"
	case ErrInstallFailed:
		return "install_failed"
	case ErrUninstallFailed:
		return "uninstall_failed"
	case ErrDependencyNotFound:
		return "dependency_not_found"
	case ErrConfigLoadFailed:
		return "config_load_failed"
	case ErrInvalidVersion:
		return "invalid_version"
	case ErrNetworkError:
		return "network_error"
	case ErrPermissionDenied:
		return "permission_denied"
	default:
		return "unknown_error"
	}
}

// Context carries optional structured detail alongside a DependencyError,
// mirroring the original's file/line/tags context payload.
type Context struct {
	File string
	Line int
	Tags []string
}

// DependencyError is the typed error every fallible DependencyManager
// operation returns, per spec section 4.5.
type DependencyError struct {
	Code    ErrorCode
	Message string
	Context Context
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, message string) *DependencyError {
	return &DependencyError{Code: code, Message: message}
}
