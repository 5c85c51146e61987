package types

import (
	"time"

	"github.com/arthur-debert/modkeeper/pkg/semver"
)

// Release is one downloadable version of a mod as listed by the catalog.
type Release struct {
	ModName         string
	Version         semver.Version
	FactorioVersion string
	DownloadURL     string
	FileName        string
	SHA1            string
	ReleasedAt      time.Time
}

// ExtendedModInfo is the catalog's full metadata for one mod.
type ExtendedModInfo struct {
	Name      string
	Title     string
	Owner     string
	Summary   string
	Downloads int
	Releases  []Release
}

// Credentials authenticate catalog downloads. They are supplied by the
// caller and never persisted.
type Credentials struct {
	Username string
	Token    string
}

// ProgressFunc receives fractional progress in [0, 1] and a description of
// the current step.
type ProgressFunc func(fraction float64, description string)

// Report calls f when it is non-nil.
func (f ProgressFunc) Report(fraction float64, description string) {
	if f != nil {
		f(fraction, description)
	}
}

// Scale maps a sub-task's progress onto the slice [offset, offset+width] of
// the parent's range.
func (f ProgressFunc) Scale(offset, width float64) ProgressFunc {
	if f == nil {
		return nil
	}
	return func(fraction float64, description string) {
		f(offset+fraction*width, description)
	}
}
