package depgraph

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/elementastro/lithium-kernel/version"
	"gopkg.in/yaml.v3"
)

// SystemDependencyPrefix marks a dependency name as an OS-package
// dependency, routed to pkg-dep-manager rather than the component graph.
const SystemDependencyPrefix = "system:"

// manifestFilenames lists the recognized manifest files in the fixed
// resolution order from spec section 4.2.
var manifestFilenames = []string{"package.json", "package.xml", "package.yaml"}

// Manifest is the parsed form of package.json/package.xml/package.yaml,
// per spec section 3.
type Manifest struct {
	Name string
	Deps map[string]version.Version
}

// IsSystemDependency reports whether depName should be routed to
// pkg-dep-manager instead of being added to the component graph, and
// returns the bare name with the prefix stripped.
func IsSystemDependency(depName string) (bare string, ok bool) {
	if strings.HasPrefix(depName, SystemDependencyPrefix) {
		return strings.TrimPrefix(depName, SystemDependencyPrefix), true
	}
	return depName, false
}

// LoadManifest tries each recognized manifest filename in dir, in fixed
// order, and parses the first one found.
func LoadManifest(dir string) (*Manifest, error) {
	for _, name := range manifestFilenames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, &ManifestError{Path: path, Kind: ManifestKindMalformed, Detail: err.Error()}
		}
		switch name {
		case "package.json":
			return parseJSONManifest(path, data)
		case "package.xml":
			return parseXMLManifest(path, data)
		case "package.yaml":
			return parseYAMLManifest(path, data)
		}
	}
	return nil, &ManifestError{Path: dir, Kind: ManifestKindUnsupported, Detail: "no recognized manifest file found"}
}

type rawJSONManifest struct {
	Name         string            `json:"name"`
	Dependencies map[string]string `json:"dependencies"`
}

func parseJSONManifest(path string, data []byte) (*Manifest, error) {
	var raw rawJSONManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ManifestError{Path: path, Kind: ManifestKindMalformed, Detail: err.Error()}
	}
	if raw.Name == "" {
		return nil, &ManifestError{Path: path, Kind: ManifestKindMissingName, Detail: "missing required \"name\""}
	}
	return buildManifest(path, raw.Name, raw.Dependencies)
}

type rawXMLManifest struct {
	XMLName xml.Name `xml:"package"`
	Name    string   `xml:"name"`
	Depends []string `xml:"depend"`
}

func parseXMLManifest(path string, data []byte) (*Manifest, error) {
	var raw rawXMLManifest
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, &ManifestError{Path: path, Kind: ManifestKindMalformed, Detail: err.Error()}
	}
	if raw.Name == "" {
		return nil, &ManifestError{Path: path, Kind: ManifestKindMissingName, Detail: "missing required <name>"}
	}
	// The XML form carries no version per dependency, so each defaults to
	// Version{0,0,0}, per spec section 4.2.
	deps := make(map[string]string, len(raw.Depends))
	for _, d := range raw.Depends {
		deps[d] = "0.0.0"
	}
	return buildManifest(path, raw.Name, deps)
}

type rawYAMLManifest struct {
	Name         string            `yaml:"name"`
	Dependencies map[string]string `yaml:"dependencies"`
}

func parseYAMLManifest(path string, data []byte) (*Manifest, error) {
	var raw rawYAMLManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ManifestError{Path: path, Kind: ManifestKindMalformed, Detail: err.Error()}
	}
	if raw.Name == "" {
		return nil, &ManifestError{Path: path, Kind: ManifestKindMissingName, Detail: "missing required \"name\""}
	}
	return buildManifest(path, raw.Name, raw.Dependencies)
}

func buildManifest(path, name string, rawDeps map[string]string) (*Manifest, error) {
	m := &Manifest{Name: name, Deps: make(map[string]version.Version, len(rawDeps))}
	for depName, raw := range rawDeps {
		v, err := parseDependencyVersion(raw)
		if err != nil {
			return nil, &ManifestError{Path: path, Kind: ManifestKindBadVersion, Detail: depName + ": " + err.Error()}
		}
		m.Deps[depName] = v
	}
	return m, nil
}

// parseDependencyVersion accepts a bare version or a constraint-prefixed
// one (e.g. "^1.2.0"), per the grammar in spec section 4.1, and resolves
// it to the concrete Version a graph edge is recorded against.
func parseDependencyVersion(raw string) (version.Version, error) {
	_, rest := splitLeadingOperator(raw)
	return version.Parse(rest)
}

func splitLeadingOperator(s string) (op, rest string) {
	for _, o := range []string{">=", "<=", "^", "~", ">", "<", "="} {
		if strings.HasPrefix(s, o) {
			return o, strings.TrimSpace(s[len(o):])
		}
	}
	return "", s
}
