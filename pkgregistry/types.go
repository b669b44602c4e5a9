// Package pkgregistry models the OS package managers available on the
// current platform: what commands they use to check, install, uninstall,
// and search for a dependency, and which ones are actually present.
package pkgregistry

import "strings"

// PackageManagerInfo describes one package manager's command templates.
// Each template may contain a single "{}" placeholder, substituted with
// the dependency name at command-build time, per spec section 4.5.
type PackageManagerInfo struct {
	Name         string   `json:"name" mapstructure:"name"`
	CheckCmd     string   `json:"check_cmd" mapstructure:"check_cmd"`
	InstallCmd   string   `json:"install_cmd" mapstructure:"install_cmd"`
	UninstallCmd string   `json:"uninstall_cmd" mapstructure:"uninstall_cmd"`
	SearchCmd    string   `json:"search_cmd" mapstructure:"search_cmd"`
	ProcessNames []string `json:"process_names,omitempty" mapstructure:"process_names"`
}

func (p PackageManagerInfo) buildCommand(template, depName string) string {
	return strings.ReplaceAll(template, "{}", depName)
}

func (p PackageManagerInfo) CheckCommand(depName string) string {
	return p.buildCommand(p.CheckCmd, depName)
}

func (p PackageManagerInfo) InstallCommand(depName string) string {
	return p.buildCommand(p.InstallCmd, depName)
}

func (p PackageManagerInfo) UninstallCommand(depName string) string {
	return p.buildCommand(p.UninstallCmd, depName)
}

func (p PackageManagerInfo) SearchCommand(depName string) string {
	return p.buildCommand(p.SearchCmd, depName)
}

// configFile is the shape of a package_managers.json config, per spec
// section 4.5.
type configFile struct {
	PackageManagers []PackageManagerInfo `json:"package_managers" mapstructure:"package_managers"`
}
