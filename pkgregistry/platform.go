package pkgregistry

import "runtime"

// DistroType enumerates the supported platforms and Linux distributions,
// grounded on the original implementation's lithium::system::DistroType.
type DistroType int

const (
	DistroUnknown DistroType = iota
	DistroDebian
	DistroRedHat
	DistroArch
	DistroOpenSUSE
	DistroGentoo
	DistroSlackware
	DistroVoid
	DistroAlpine
	DistroClear
	DistroSolus
	DistroEmbedded
	DistroMacOS
	DistroWindows
)

func (d DistroType) String() string {
	switch d {
	case DistroDebian:
		return "debian"
	case DistroRedHat:
		return "redhat"
	case DistroArch:
		return "arch"
	case DistroOpenSUSE:
		return "opensuse"
	case DistroGentoo:
		return "gentoo"
	case DistroSlackware:
		return "slackware"
	case DistroVoid:
		return "void"
	case DistroAlpine:
		return "alpine"
	case DistroClear:
		return "clear"
	case DistroSolus:
		return "solus"
	case DistroEmbedded:
		return "embedded"
	case DistroMacOS:
		return "macos"
	case DistroWindows:
		return "windows"
	default:
		return "unknown"
	}
}

// defaultManagerByDistro maps a distribution to its default package
// manager; unknown distributions default to apt, per spec section 4.5.
var defaultManagerByDistro = map[DistroType]string{
	DistroDebian:    "apt",
	DistroRedHat:    "dnf",
	DistroArch:      "pacman",
	DistroOpenSUSE:  "zypper",
	DistroGentoo:    "emerge",
	DistroSlackware: "slackpkg",
	DistroVoid:      "xbps",
	DistroAlpine:    "apk",
	DistroClear:     "swupd",
	DistroSolus:     "eopkg",
	DistroEmbedded:  "opkg",
	DistroMacOS:     "brew",
	DistroWindows:   "winget",
	DistroUnknown:   "apt",
}

// supportedManagersByDistro lists every package manager plausible on a
// given distribution, beyond just the default.
var supportedManagersByDistro = map[DistroType][]string{
	DistroDebian:  {"apt", "snap", "flatpak"},
	DistroRedHat:  {"dnf", "yum", "flatpak"},
	DistroArch:    {"pacman", "yay"},
	DistroMacOS:   {"brew", "macports"},
	DistroWindows: {"winget", "choco", "scoop"},
	DistroUnknown: {"apt"},
}

// PlatformDetector identifies the current OS and distribution type.
type PlatformDetector struct {
	platform string
	distro   DistroType
}

// NewPlatformDetector detects the running platform via runtime.GOOS. On
// Linux it cannot distinguish distributions without reading
// /etc/os-release, so it conservatively reports DistroUnknown there;
// NewPlatformDetectorFor lets callers supply an explicit distro (e.g. from
// parsing /etc/os-release) for deterministic tests and richer detection.
func NewPlatformDetector() *PlatformDetector {
	switch runtime.GOOS {
	case "darwin":
		return &PlatformDetector{platform: "macos", distro: DistroMacOS}
	case "windows":
		return &PlatformDetector{platform: "windows", distro: DistroWindows}
	default:
		return &PlatformDetector{platform: "linux", distro: DistroUnknown}
	}
}

// NewPlatformDetectorFor constructs a detector with an explicit platform
// and distro, bypassing runtime.GOOS — used by tests and by callers who
// have already parsed /etc/os-release themselves.
func NewPlatformDetectorFor(platform string, distro DistroType) *PlatformDetector {
	return &PlatformDetector{platform: platform, distro: distro}
}

func (d *PlatformDetector) CurrentPlatform() string { return d.platform }

func (d *PlatformDetector) DistroType() DistroType { return d.distro }

func (d *PlatformDetector) DefaultPackageManager() string {
	if mgr, ok := defaultManagerByDistro[d.distro]; ok {
		return mgr
	}
	return "apt"
}

func (d *PlatformDetector) SupportedPackageManagers() []string {
	return supportedManagersByDistro[d.distro]
}

func (d *PlatformDetector) IsPackageManagerSupported(name string) bool {
	for _, m := range d.SupportedPackageManagers() {
		if m == name {
			return true
		}
	}
	return name == d.DefaultPackageManager()
}
