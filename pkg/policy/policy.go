// Package policy holds the manager-mode rules consulted for mod identity,
// conflict detection and release selection. Registry, importer and update
// resolver all go through the same Policy so import and update flows cannot
// disagree about what counts as "the same mod".
package policy

import (
	"strings"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/semver"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// Mode governs identity uniqueness and release selection.
type Mode string

const (
	// PerFactorioVersion: a name is unique per Factorio version.
	PerFactorioVersion Mode = "per-factorio-version"
	// Global: a name is unique across all Factorio versions.
	Global Mode = "global"
)

// ParseMode parses a mode from configuration.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case PerFactorioVersion, "":
		return PerFactorioVersion, nil
	case Global:
		return Global, nil
	}
	return "", errors.Newf(errors.ErrConfigValid, "unknown manager mode %q", raw).
		WithDetail("valid", []string{string(PerFactorioVersion), string(Global)})
}

// Policy is the single source of the mode-dependent rules.
type Policy struct {
	Mode Mode
}

// New returns a Policy for mode.
func New(mode Mode) Policy {
	return Policy{Mode: mode}
}

// SameSlot reports whether a mod named name targeting factorioVersion would
// occupy the same identity slot as existing.
func (p Policy) SameSlot(existing *types.Mod, name, factorioVersion string) bool {
	if existing.Name != name {
		return false
	}
	if p.Mode == Global {
		return true
	}
	return existing.FactorioVersion == factorioVersion
}

// Occupant returns the mod among candidates that holds the identity slot
// for name/factorioVersion, or nil.
func (p Policy) Occupant(candidates []*types.Mod, name, factorioVersion string) *types.Mod {
	for _, m := range candidates {
		if p.SameSlot(m, name, factorioVersion) {
			return m
		}
	}
	return nil
}

// SelectUpdate picks the release that would replace installed. In
// PerFactorioVersion mode only releases for the installed Factorio version
// are considered. A release qualifies only when strictly newer.
func (p Policy) SelectUpdate(installed *types.Mod, releases []types.Release) (types.Release, bool) {
	best, ok := p.Newest(releases, installed.FactorioVersion)
	if !ok || !best.Version.GreaterThan(installed.Version) {
		return types.Release{}, false
	}
	return best, true
}

// Newest returns the newest release. In PerFactorioVersion mode a non-empty
// factorioVersion restricts the candidates to that target.
func (p Policy) Newest(releases []types.Release, factorioVersion string) (types.Release, bool) {
	var best types.Release
	found := false
	for _, r := range releases {
		if p.Mode == PerFactorioVersion && factorioVersion != "" && r.FactorioVersion != factorioVersion {
			continue
		}
		if !found || r.Version.GreaterThan(best.Version) {
			best = r
			found = true
		}
	}
	return best, found
}

// Exact returns the release with exactly version.
func Exact(releases []types.Release, version semver.Version) (types.Release, bool) {
	for _, r := range releases {
		if r.Version.Equal(version) {
			return r, true
		}
	}
	return types.Release{}, false
}

// Classification is the outcome of comparing a needed release with the
// local library.
type Classification int

const (
	// Satisfied: the exact mod is already installed.
	Satisfied Classification = iota
	// Download: nothing occupies the release's identity slot.
	Download
	// Conflict: a different version occupies the slot.
	Conflict
)

func (c Classification) String() string {
	switch c {
	case Satisfied:
		return "satisfied"
	case Download:
		return "download"
	default:
		return "conflict"
	}
}

// Classify decides what to do with release given the local variants of the
// same mod name. A variant in the release's slot with the same version
// satisfies it. A variant in the slot with another version is a conflict,
// and an empty slot means download.
func (p Policy) Classify(variants []*types.Mod, release types.Release) (Classification, *types.Mod) {
	for _, m := range variants {
		if m.Version.Equal(release.Version) && p.SameSlot(m, release.ModName, release.FactorioVersion) {
			return Satisfied, m
		}
	}
	if occupant := p.Occupant(variants, release.ModName, release.FactorioVersion); occupant != nil {
		return Conflict, occupant
	}
	return Download, nil
}

// SatisfiedBy looks for a local variant that satisfies a pinned manifest
// entry before the catalog is consulted. Unpinned entries always return nil:
// they are satisfied only by the catalog's newest release, which Classify
// decides once it is known.
func (p Policy) SatisfiedBy(variants []*types.Mod, pinned semver.Version) *types.Mod {
	if pinned.IsZero() {
		return nil
	}
	for _, m := range variants {
		if m.Version.Equal(pinned) {
			return m
		}
	}
	return nil
}
