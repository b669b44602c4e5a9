package version

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// maxVersion is the sentinel upper bound used by From; spec section 4.1
// fixes it at 999.999.999.
var maxVersion = Version{Major: 999, Minor: 999, Patch: 999}

// VersionRange is an interval of Versions with independently inclusive or
// exclusive endpoints.
type VersionRange struct {
	Min        Version
	Max        Version
	IncludeMin bool
	IncludeMax bool
}

// ParseRange parses "[lo,hi]", "(lo,hi)", or any mixed-bracket form. The
// first and last characters select inclusivity; the comma separates
// endpoints, both of which must parse as Versions.
func ParseRange(s string) (VersionRange, error) {
	s = strings.TrimSpace(s)
	if len(s) < 5 {
		return VersionRange{}, errors.Wrapf(ErrInvalidVersion, "range %q: too short", s)
	}
	lead, trail := s[0], s[len(s)-1]
	var incMin, incMax bool
	switch lead {
	case '[':
		incMin = true
	case '(':
		incMin = false
	default:
		return VersionRange{}, errors.Wrapf(ErrInvalidVersion, "range %q: bad lower bracket", s)
	}
	switch trail {
	case ']':
		incMax = true
	case ')':
		incMax = false
	default:
		return VersionRange{}, errors.Wrapf(ErrInvalidVersion, "range %q: bad upper bracket", s)
	}

	inner := s[1 : len(s)-1]
	idx := strings.IndexByte(inner, ',')
	if idx < 0 {
		return VersionRange{}, errors.Wrapf(ErrInvalidVersion, "range %q: missing comma", s)
	}
	lo, err := Parse(strings.TrimSpace(inner[:idx]))
	if err != nil {
		return VersionRange{}, errors.Wrapf(err, "range %q: lower bound", s)
	}
	hi, err := Parse(strings.TrimSpace(inner[idx+1:]))
	if err != nil {
		return VersionRange{}, errors.Wrapf(err, "range %q: upper bound", s)
	}
	return VersionRange{Min: lo, Max: hi, IncludeMin: incMin, IncludeMax: incMax}, nil
}

// From returns [v, 999.999.999).
func From(v Version) VersionRange {
	return VersionRange{Min: v, Max: maxVersion, IncludeMin: true, IncludeMax: false}
}

// UpTo returns [0.0.0, v].
func UpTo(v Version) VersionRange {
	return VersionRange{Min: Version{}, Max: v, IncludeMin: true, IncludeMax: true}
}

// Contains reports whether v falls within the range under its inclusivity
// rules.
func (r VersionRange) Contains(v Version) bool {
	lowOK := v.GreaterThan(r.Min)
	if r.IncludeMin {
		lowOK = lowOK || v.Equal(r.Min)
	}
	highOK := v.LessThan(r.Max)
	if r.IncludeMax {
		highOK = highOK || v.Equal(r.Max)
	}
	return lowOK && highOK
}

// Overlaps reports whether r and o share at least one version. Touching
// endpoints overlap only when both adjacent inclusivities are true.
func (r VersionRange) Overlaps(o VersionRange) bool {
	// No gap exists iff r.Min <= o.Max and o.Min <= r.Max, with the touching
	// case requiring both sides to include the shared endpoint.
	if r.Min.GreaterThan(o.Max) {
		return false
	}
	if r.Min.Equal(o.Max) && !(r.IncludeMin && o.IncludeMax) {
		return false
	}
	if o.Min.GreaterThan(r.Max) {
		return false
	}
	if o.Min.Equal(r.Max) && !(o.IncludeMin && r.IncludeMax) {
		return false
	}
	return true
}

func (r VersionRange) String() string {
	lb, rb := '(', ')'
	if r.IncludeMin {
		lb = '['
	}
	if r.IncludeMax {
		rb = ']'
	}
	return fmt.Sprintf("%c%s,%s%c", lb, r.Min, r.Max, rb)
}
