package types

import (
	"fmt"

	"github.com/arthur-debert/modkeeper/pkg/semver"
)

// Mod is one installed, versioned mod. Mods are never updated in place: an
// update creates a new Mod and retires the old one, so a *Mod is a stable
// identity for the lifetime of the registry entry.
type Mod struct {
	Name            string
	Title           string
	Author          string
	Description     string
	Version         semver.Version
	FactorioVersion string
	Active          bool

	// Location is the archive file or unpacked directory on disk.
	Location string
	// Packed reports whether Location is an archive.
	Packed bool
}

// DisplayTitle falls back to the name when the mod has no title.
func (m *Mod) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// FileName is the canonical storage name, without extension for unpacked mods.
func (m *Mod) FileName() string {
	return fmt.Sprintf("%s_%s", m.Name, m.Version)
}

func (m *Mod) String() string {
	return fmt.Sprintf("%s@%s (factorio %s)", m.Name, m.Version, m.FactorioVersion)
}
