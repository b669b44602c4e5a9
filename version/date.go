package version

import (
	"fmt"

	"github.com/pkg/errors"
)

// DateVersion is a calendar-stamped version, ordered lexicographically on
// (year, month, day). Used by components that version by release date
// rather than semantic increments.
type DateVersion struct {
	Year  int
	Month int // 1..12
	Day   int // 1..31
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (DateVersion, error) {
	var d DateVersion
	_, err := fmt.Sscanf(s, "%d-%d-%d", &d.Year, &d.Month, &d.Day)
	if err != nil {
		return DateVersion{}, errors.Wrapf(ErrInvalidVersion, "date %q", s)
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return DateVersion{}, errors.Wrapf(ErrInvalidVersion, "date %q: out of range", s)
	}
	return d, nil
}

func (d DateVersion) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Compare orders d against o lexicographically on (year, month, day).
func (d DateVersion) Compare(o DateVersion) int {
	if cmp := compareInt(d.Year, o.Year); cmp != 0 {
		return cmp
	}
	if cmp := compareInt(d.Month, o.Month); cmp != 0 {
		return cmp
	}
	return compareInt(d.Day, o.Day)
}

func (d DateVersion) LessThan(o DateVersion) bool    { return d.Compare(o) < 0 }
func (d DateVersion) GreaterThan(o DateVersion) bool { return d.Compare(o) > 0 }
func (d DateVersion) Equal(o DateVersion) bool       { return d.Compare(o) == 0 }
