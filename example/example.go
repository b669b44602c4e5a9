//go:build ignore

// This file demonstrates wiring the kernel's packages together end to end:
// platform detection and package-manager discovery, OS dependency
// installation, file-backed directory tracking, and the component
// lifecycle manager built on top of all three. It is excluded from normal
// builds (see the build tag above), the same convention the teacher repo
// used for its own example.go — a reference for integrators, not a
// shipped command.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/elementastro/lithium-kernel/compmanager"
	"github.com/elementastro/lithium-kernel/depmanager"
	"github.com/elementastro/lithium-kernel/filetracker"
	"github.com/elementastro/lithium-kernel/pkgregistry"
)

// stubLoader is a trivial in-process ModuleLoader standing in for an
// actual plugin.Open-backed loader (see compmanager.PluginModuleLoader)
// so this example runs without a compiled .so file on disk.
type stubLoader struct{}

func (stubLoader) Load(path string) (interface{}, error) { return struct{ path string }{path}, nil }
func (stubLoader) Unload(instance interface{}) error     { return nil }

func main() {
	ctx := context.Background()

	// --- Package manager discovery -----------------------------------
	detector := pkgregistry.NewPlatformDetector()
	registry := pkgregistry.New(detector)
	registry.LoadSystemPackageManagers()
	fmt.Printf("platform: %s, managers: %v\n", registry.CurrentPlatform(), registry.GetPackageManagers())

	// --- OS dependency management --------------------------------------
	depMgr, err := depmanager.New(registry, "dependency_cache.json")
	if err != nil {
		log.Fatalf("depmanager.New: %v", err)
	}
	depMgr.AddDependency(depmanager.PackageDependency{
		Name:       "libindi-dev",
		MinVersion: "1.9.0",
		Optional:   false,
	})
	if err := depMgr.CheckAndInstallDependencies(ctx); err != nil {
		log.Printf("some dependencies failed to install: %v", err)
	}
	fmt.Print(depMgr.GenerateDependencyReport())
	defer depMgr.Close()

	// --- Directory tracking for hot-reloadable component configs ------
	tracker := filetracker.New("./components", "./components.snapshot.json", []string{".json"}, true)
	if err := tracker.Scan(); err != nil {
		log.Fatalf("tracker.Scan: %v", err)
	}

	// --- Component lifecycle -------------------------------------------
	manager := compmanager.New(stubLoader{})
	manager.AddEventListener(compmanager.EventPostLoad, func(p compmanager.EventPayload) {
		fmt.Printf("component %s loaded\n", p.Component)
	})

	if err := manager.LoadComponent(compmanager.LoadParams{
		Name:     "mount-driver",
		Path:     "./components/mount-driver.so",
		Version:  "1.0.0",
		Priority: 10,
	}); err != nil {
		log.Fatalf("LoadComponent: %v", err)
	}
	if err := manager.StartComponent("mount-driver"); err != nil {
		log.Fatalf("StartComponent: %v", err)
	}

	if err := manager.WatchForHotReload("./components"); err != nil {
		log.Printf("WatchForHotReload: %v", err)
	} else {
		defer manager.StopHotReload()
	}

	fmt.Println(manager.GetComponentList())
}
