package depgraph

import "fmt"

// ManifestErrorKind classifies a manifest parse failure.
type ManifestErrorKind int

const (
	// ManifestKindMissingName means the manifest lacked a required name field.
	ManifestKindMissingName ManifestErrorKind = iota
	// ManifestKindMalformed means the underlying JSON/XML/YAML failed to decode.
	ManifestKindMalformed
	// ManifestKindUnsupported means no recognized manifest file was found.
	ManifestKindUnsupported
	// ManifestKindBadVersion means a dependency's version string failed to parse.
	ManifestKindBadVersion
)

// ManifestError carries the path, kind, and detail of a manifest parse
// failure, per spec section 4.2's manifest parsing contract.
type ManifestError struct {
	Path   string
	Kind   ManifestErrorKind
	Detail string
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest error at %s: %s", e.Path, e.Detail)
}

// GraphViolationKind classifies a dependency-graph mutation rejection.
type GraphViolationKind int

const (
	// ViolationMissingNode means the referenced node does not exist.
	ViolationMissingNode GraphViolationKind = iota
	// ViolationVersionMismatch means an existing node's version doesn't
	// satisfy a requested dependency edge.
	ViolationVersionMismatch
	// ViolationCycle means the requested mutation would create (or did
	// create) a cycle.
	ViolationCycle
)

// GraphViolation reports a rejected dependency-graph mutation.
type GraphViolation struct {
	Kind    GraphViolationKind
	Node    string
	Detail  string
}

func (e *GraphViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Node, e.Detail)
}

// MissingNode constructs a ViolationMissingNode error for node.
func MissingNode(node string) error {
	return &GraphViolation{Kind: ViolationMissingNode, Node: node, Detail: "node not present in graph"}
}

// VersionMismatch constructs a ViolationVersionMismatch error.
func VersionMismatch(node, detail string) error {
	return &GraphViolation{Kind: ViolationVersionMismatch, Node: node, Detail: detail}
}
