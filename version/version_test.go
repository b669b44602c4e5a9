package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	v, err := Parse("1.2.3-alpha+build123")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3-alpha+build123", v.String())
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)
}

func TestParseRequiresTwoDots(t *testing.T) {
	_, err := Parse("1.2")
	assert.Error(t, err)
}

func TestShortString(t *testing.T) {
	v := MustParse("1.2.3")
	assert.Equal(t, "1.2", v.Short())
}

func TestCompareTotalOrder(t *testing.T) {
	a := MustParse("1.2.3")
	b := MustParse("1.2.4")
	assert.True(t, a.LessThan(b))
	assert.True(t, b.GreaterThan(a))
	assert.True(t, a.Equal(a))
}

func TestCompareEmptyPrereleaseBeatsAny(t *testing.T) {
	release := MustParse("1.0.0")
	pre := MustParse("1.0.0-alpha")
	assert.True(t, release.GreaterThan(pre))
}

func TestCompareBuildMetadataIgnored(t *testing.T) {
	a := MustParse("1.0.0+abc")
	b := MustParse("1.0.0+xyz")
	assert.True(t, a.Equal(b))
}

func TestCompareWithOnlyMajorMinor(t *testing.T) {
	a := MustParse("1.2.9")
	b := MustParse("1.2.0")
	assert.Equal(t, 0, a.CompareWith(b, OnlyMajorMinor))
}

func TestIsCompatibleWith(t *testing.T) {
	assert.True(t, MustParse("1.2.0").IsCompatibleWith(MustParse("1.3.0")))
	assert.True(t, MustParse("1.3.0").IsCompatibleWith(MustParse("1.3.5")))
	assert.False(t, MustParse("1.3.6").IsCompatibleWith(MustParse("1.3.5")))
	assert.False(t, MustParse("2.0.0").IsCompatibleWith(MustParse("1.3.5")))
}

func TestSatisfiesRange(t *testing.T) {
	v := MustParse("1.2.3")
	assert.True(t, v.SatisfiesRange(MustParse("1.0.0"), MustParse("2.0.0")))
	assert.False(t, v.SatisfiesRange(MustParse("1.3.0"), MustParse("2.0.0")))
}

func TestCheckVersion(t *testing.T) {
	v := MustParse("1.2.3")
	assert.True(t, CheckVersion(v, ">=1.2.0", Strict))
	assert.False(t, CheckVersion(v, ">1.2.3", Strict))
	assert.True(t, CheckVersion(v, "", Strict))
	assert.True(t, CheckVersion(v, "^1.0.0", Strict))
	assert.False(t, CheckVersion(v, "^2.0.0", Strict))
	assert.True(t, CheckVersion(v, "~1.2.0", Strict))
	assert.False(t, CheckVersion(v, "~1.3.0", Strict))
}

func TestCheckVersionUnknownOpFallsBackToEquality(t *testing.T) {
	v := MustParse("1.2.3")
	assert.True(t, CheckVersion(v, "!!1.2.3", Strict))
	assert.False(t, CheckVersion(v, "!!1.2.4", Strict))
}

func TestRangeParseAndContains(t *testing.T) {
	r, err := ParseRange("[1.0.0,2.0.0]")
	require.NoError(t, err)
	assert.True(t, r.Contains(MustParse("1.5.0")))
	assert.False(t, r.Contains(MustParse("2.1.0")))
}

func TestRangeExclusiveEndpoints(t *testing.T) {
	r, err := ParseRange("(1.0.0,2.0.0)")
	require.NoError(t, err)
	assert.False(t, r.Contains(MustParse("1.0.0")))
	assert.False(t, r.Contains(MustParse("2.0.0")))
	assert.True(t, r.Contains(MustParse("1.0.1")))
}

func TestRangeFromAndUpTo(t *testing.T) {
	v := MustParse("1.0.0")
	assert.True(t, From(v).Contains(MustParse("500.0.0")))
	assert.True(t, UpTo(v).Contains(MustParse("0.0.1")))
	assert.False(t, UpTo(v).Contains(MustParse("1.0.1")))
}

func TestRangeOverlapsTouchingEndpoints(t *testing.T) {
	a := VersionRange{Min: MustParse("1.0.0"), Max: MustParse("2.0.0"), IncludeMin: true, IncludeMax: true}
	b := VersionRange{Min: MustParse("2.0.0"), Max: MustParse("3.0.0"), IncludeMin: true, IncludeMax: true}
	assert.True(t, a.Overlaps(b))

	c := VersionRange{Min: MustParse("2.0.0"), Max: MustParse("3.0.0"), IncludeMin: false, IncludeMax: true}
	assert.False(t, a.Overlaps(c))
}

func TestDateVersionOrder(t *testing.T) {
	a, err := ParseDate("2024-01-02")
	require.NoError(t, err)
	b, err := ParseDate("2024-02-01")
	require.NoError(t, err)
	assert.True(t, a.LessThan(b))
}

func TestDateVersionRejectsOutOfRange(t *testing.T) {
	_, err := ParseDate("2024-13-01")
	assert.Error(t, err)
}
