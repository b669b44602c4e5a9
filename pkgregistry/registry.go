package pkgregistry

import (
	"context"
	"encoding/json"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// knownManagers is the built-in catalogue of package managers this
// registry knows how to probe for, grounded on the original
// PackageManagerRegistry::configurePackageManagers table.
var knownManagers = []PackageManagerInfo{
	{Name: "apt", CheckCmd: "apt --version", InstallCmd: "apt-get install -y {}", UninstallCmd: "apt-get remove -y {}", SearchCmd: "apt-cache search {}", ProcessNames: []string{"apt", "apt-get", "dpkg"}},
	{Name: "dnf", CheckCmd: "dnf --version", InstallCmd: "dnf install -y {}", UninstallCmd: "dnf remove -y {}", SearchCmd: "dnf search {}", ProcessNames: []string{"dnf"}},
	{Name: "yum", CheckCmd: "yum --version", InstallCmd: "yum install -y {}", UninstallCmd: "yum remove -y {}", SearchCmd: "yum search {}", ProcessNames: []string{"yum"}},
	{Name: "pacman", CheckCmd: "pacman --version", InstallCmd: "pacman -S --noconfirm {}", UninstallCmd: "pacman -R --noconfirm {}", SearchCmd: "pacman -Ss {}", ProcessNames: []string{"pacman"}},
	{Name: "brew", CheckCmd: "brew --version", InstallCmd: "brew install {}", UninstallCmd: "brew uninstall {}", SearchCmd: "brew search {}", ProcessNames: []string{"brew"}},
	{Name: "choco", CheckCmd: "choco --version", InstallCmd: "choco install -y {}", UninstallCmd: "choco uninstall -y {}", SearchCmd: "choco search {}", ProcessNames: []string{"choco"}},
	{Name: "scoop", CheckCmd: "scoop --version", InstallCmd: "scoop install {}", UninstallCmd: "scoop uninstall {}", SearchCmd: "scoop search {}", ProcessNames: []string{"scoop"}},
	{Name: "winget", CheckCmd: "winget --version", InstallCmd: "winget install {}", UninstallCmd: "winget uninstall {}", SearchCmd: "winget search {}", ProcessNames: []string{"winget"}},
}

// checkTimeout bounds each package manager probe, since a hung check
// command must not stall LoadSystemPackageManagers forever.
const checkTimeout = 5 * time.Second

// commandRunner abstracts process execution so tests can substitute a
// fake without actually shelling out.
type commandRunner func(ctx context.Context, command string) (string, error)

func defaultCommandRunner(ctx context.Context, command string) (string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Registry holds the package managers registered for the current
// platform, per spec section 4.5.
type Registry struct {
	detector *PlatformDetector
	managers map[string]PackageManagerInfo
	order    []string
	run      commandRunner
}

// New constructs a Registry for detector, with no managers registered
// until LoadSystemPackageManagers or LoadPackageManagerConfig is called.
func New(detector *PlatformDetector) *Registry {
	return &Registry{
		detector: detector,
		managers: make(map[string]PackageManagerInfo),
		run:      defaultCommandRunner,
	}
}

func (r *Registry) register(info PackageManagerInfo) {
	if _, exists := r.managers[info.Name]; !exists {
		r.order = append(r.order, info.Name)
	}
	r.managers[info.Name] = info
}

// LoadSystemPackageManagers probes every known manager's check command and
// registers the ones that succeed.
func (r *Registry) LoadSystemPackageManagers() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	for _, info := range knownManagers {
		if _, err := r.run(ctx, info.CheckCmd); err == nil {
			r.register(info)
		}
	}
}

// LoadPackageManagerConfig reads a JSON description of additional or
// overriding package manager definitions from path through viper. It reads
// exactly the file at path: the directories registered with AddConfigPath
// (current directory, $HOME/.lithium, /etc/lithium, $APPDATA/lithium,
// $PROGRAMDATA/lithium) are not searched, because SetConfigFile names the
// file directly.
func (r *Registry) LoadPackageManagerConfig(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.lithium")
	v.AddConfigPath("/etc/lithium")
	v.AddConfigPath("$APPDATA/lithium")
	v.AddConfigPath("$PROGRAMDATA/lithium")

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read package manager config %s", path)
	}

	var cfg configFile
	if err := v.Unmarshal(&cfg); err != nil {
		return errors.Wrap(err, "unmarshal package manager config")
	}
	for _, info := range cfg.PackageManagers {
		r.register(info)
	}
	return nil
}

// LoadPackageManagerConfigJSON loads definitions directly from a JSON
// byte slice, bypassing viper's file search — used when the config has
// already been fetched from elsewhere (e.g. embedded or downloaded).
func (r *Registry) LoadPackageManagerConfigJSON(data []byte) error {
	var cfg configFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return errors.Wrap(err, "unmarshal package manager config")
	}
	for _, info := range cfg.PackageManagers {
		r.register(info)
	}
	return nil
}

// CurrentPlatform returns the detected platform name ("linux", "macos", or
// "windows"), delegating to the registry's PlatformDetector.
func (r *Registry) CurrentPlatform() string {
	return r.detector.CurrentPlatform()
}

// GetPackageManager returns the manager registered under name.
func (r *Registry) GetPackageManager(name string) (PackageManagerInfo, bool) {
	info, ok := r.managers[name]
	return info, ok
}

// GetPackageManagers returns every registered manager, sorted by name.
func (r *Registry) GetPackageManagers() []PackageManagerInfo {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	out := make([]PackageManagerInfo, 0, len(names))
	for _, n := range names {
		out = append(out, r.managers[n])
	}
	return out
}
