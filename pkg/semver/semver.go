// Package semver wraps github.com/Masterminds/semver/v3 for mod versions and
// Factorio compatibility versions.
package semver

import (
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a semantic version. The zero value sorts below every parsed
// version.
type Version struct {
	v *mm.Version
}

func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare compares a and b, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
func Compare(a, b Version) int {
	if a.v == nil && b.v == nil {
		return 0
	}
	if a.v == nil {
		return -1
	}
	if b.v == nil {
		return 1
	}
	return a.v.Compare(b.v)
}

func (v Version) IsZero() bool { return v.v == nil }

func (v Version) Equal(o Version) bool { return Compare(v, o) == 0 }

func (v Version) LessThan(o Version) bool { return Compare(v, o) < 0 }

func (v Version) GreaterThan(o Version) bool { return Compare(v, o) > 0 }

// String renders the version as major.minor.patch.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*v = Version{}
		return nil
	}
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Max returns the highest version in candidates. If multiple versions are
// equal, the first encountered wins.
func Max(candidates []Version) (Version, bool) {
	var best Version
	found := false
	for _, candidate := range candidates {
		if candidate.IsZero() {
			continue
		}
		if !found || Compare(candidate, best) > 0 {
			best = candidate
			found = true
		}
	}
	return best, found
}

// FactorioVersion normalizes a game compatibility version to major.minor.
// Mods declare "0.17" or "0.17.79"; both target the same game line.
func FactorioVersion(raw string) (string, error) {
	v, err := mm.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("semver: parse factorio version %q: %w", raw, err)
	}
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor()), nil
}

// MustFactorioVersion is FactorioVersion that panics on error.
func MustFactorioVersion(raw string) string {
	fv, err := FactorioVersion(raw)
	if err != nil {
		panic(err)
	}
	return fv
}

// CompareFactorio orders two major.minor strings numerically.
func CompareFactorio(a, b string) int {
	va, errA := mm.NewVersion(a)
	vb, errB := mm.NewVersion(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}
