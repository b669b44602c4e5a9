package depgraph

import (
	"github.com/Masterminds/semver/v3"

	"github.com/elementastro/lithium-kernel/version"
)

// EvaluateConstraint checks actual against a constraint expression using
// github.com/Masterminds/semver/v3, the way the teacher's constraints.go
// wraps an external semver engine behind the package's own Constraint
// type rather than reimplementing range algebra. This covers compound
// expressions (e.g. ">=1.0.0, <2.0.0") that the single-operator grammar in
// the version package does not parse; callers needing only the
// single-operator grammar should prefer version.CheckVersion directly.
func EvaluateConstraint(actual version.Version, expr string) (bool, error) {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return false, &ManifestError{Path: expr, Kind: ManifestKindBadVersion, Detail: err.Error()}
	}
	sv, err := semver.NewVersion(actual.String())
	if err != nil {
		return false, &ManifestError{Path: actual.String(), Kind: ManifestKindBadVersion, Detail: err.Error()}
	}
	return c.Check(sv), nil
}
