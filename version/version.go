// Package version implements the semantic and date version algebra used
// throughout the dependency kernel: parsing, rendering, comparison, ranges,
// and constraint-string evaluation.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// semVerRegex mirrors the grammar in spec section 4.1: two dots are required
// before any prerelease or build suffix, and each numeric field is a
// non-negative integer with no imposed zero-padding.
var semVerRegex = regexp.MustCompile(
	`^([0-9]+)\.([0-9]+)\.([0-9]+)(?:-([0-9A-Za-z\-.]+))?(?:\+([0-9A-Za-z\-.]+))?$`,
)

// Version is a parsed semantic version: major.minor.patch[-prerelease][+build].
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string
}

// ErrInvalidVersion is returned for any malformed version string. The
// offending input is attached via errors.Wrap so callers can recover it with
// errors.Cause or by inspecting the message.
var ErrInvalidVersion = errors.New("invalid version")

// Parse parses a version string of the form major.minor.patch[-pre][+build].
// Two dots are required before any '-' or '+'; an empty string is rejected.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, errors.Wrap(ErrInvalidVersion, "empty string")
	}
	m := semVerRegex.FindStringSubmatch(s)
	if m == nil {
		return Version{}, errors.Wrapf(ErrInvalidVersion, "%q", s)
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, errors.Wrapf(ErrInvalidVersion, "%q: major segment", s)
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{}, errors.Wrapf(ErrInvalidVersion, "%q: minor segment", s)
	}
	patch, err := strconv.Atoi(m[3])
	if err != nil {
		return Version{}, errors.Wrapf(ErrInvalidVersion, "%q: patch segment", s)
	}
	return Version{Major: major, Minor: minor, Patch: patch, Prerelease: m[4], Build: m[5]}, nil
}

// MustParse is like Parse but panics on error; intended for literals in tests
// and package-level initialization.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the full canonical representation, round-tripping through
// Parse for any well-formed input.
func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		b.WriteByte('-')
		b.WriteString(v.Prerelease)
	}
	if v.Build != "" {
		b.WriteByte('+')
		b.WriteString(v.Build)
	}
	return b.String()
}

// Short renders "major.minor".
func (v Version) Short() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// IsZero reports whether v is the zero Version (0.0.0, no pre/build).
func (v Version) IsZero() bool {
	return v == Version{}
}

// Compare applies Strict ordering: see CompareStrategy for the full rule.
// It returns -1, 0, or 1 the way sort.Interface-adjacent APIs expect.
func (v Version) Compare(o Version) int {
	return v.CompareWith(o, Strict)
}

// CompareWith orders v against o according to strategy, stripping the
// fields the strategy ignores before comparing. Build metadata is never
// part of the order, under any strategy — see spec section 9's deliberate
// interpretation of the source's "reverse" comparison.
func (v Version) CompareWith(o Version, strategy CompareStrategy) int {
	a, b := v, o
	if strategy == OnlyMajorMinor {
		a.Patch, b.Patch = 0, 0
	}
	if cmp := compareInt(a.Major, b.Major); cmp != 0 {
		return cmp
	}
	if cmp := compareInt(a.Minor, b.Minor); cmp != 0 {
		return cmp
	}
	if cmp := compareInt(a.Patch, b.Patch); cmp != 0 {
		return cmp
	}
	if strategy == IgnorePrerelease || strategy == OnlyMajorMinor {
		return 0
	}
	return comparePrerelease(a.Prerelease, b.Prerelease)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePrerelease implements "empty prerelease beats any prerelease, then
// lexicographic": a release version is always newer than any of its own
// prereleases.
func comparePrerelease(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "" && b != "":
		return 1
	case a != "" && b == "":
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports strict equality, including prerelease (but never build).
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// LessThan reports v < o under strict ordering.
func (v Version) LessThan(o Version) bool { return v.Compare(o) < 0 }

// GreaterThan reports v > o under strict ordering.
func (v Version) GreaterThan(o Version) bool { return v.Compare(o) > 0 }

// IsCompatibleWith reports whether v is an "at-least-this-but-same-API"
// match against other: same major, and v is not newer than other within
// that major line (minor strictly behind, or minor equal and patch no
// greater).
func (v Version) IsCompatibleWith(other Version) bool {
	if v.Major != other.Major {
		return false
	}
	if v.Minor < other.Minor {
		return true
	}
	return v.Minor == other.Minor && v.Patch <= other.Patch
}

// SatisfiesRange reports whether lo <= v <= hi, both ends inclusive.
func (v Version) SatisfiesRange(lo, hi Version) bool {
	return !v.LessThan(lo) && !v.GreaterThan(hi)
}
