package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modkeeper/pkg/activation"
	"github.com/arthur-debert/modkeeper/pkg/filesystem"
	"github.com/arthur-debert/modkeeper/pkg/modpacks"
	"github.com/arthur-debert/modkeeper/pkg/paths"
	"github.com/arthur-debert/modkeeper/pkg/policy"
	"github.com/arthur-debert/modkeeper/pkg/registry"
	"github.com/arthur-debert/modkeeper/pkg/storage"
	"github.com/arthur-debert/modkeeper/pkg/templates"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// Environment is a fully wired library over an in-memory filesystem.
type Environment struct {
	FS         types.FS
	Paths      *paths.Paths
	Store      *CountingStore
	Storage    *storage.Storage
	Aggregator *activation.Aggregator
	Registry   *registry.Registry
	Graph      *modpacks.Graph
	Catalog    *FakeCatalog
}

// NewEnvironment wires every component for mode.
func NewEnvironment(t *testing.T, mode policy.Mode) *Environment {
	t.Helper()

	fs := filesystem.NewMemoryFS()
	p, err := paths.New("/virtual/mods", "/virtual/data")
	require.NoError(t, err)

	store := &CountingStore{Store: templates.NewFileStore(fs, p)}
	agg := activation.New(store)
	graph := modpacks.New(agg)
	reg := registry.New(policy.New(mode), graph, agg)
	agg.Attach(reg, graph)

	return &Environment{
		FS:         fs,
		Paths:      p,
		Store:      store,
		Storage:    storage.New(fs, p),
		Aggregator: agg,
		Registry:   reg,
		Graph:      graph,
		Catalog:    NewFakeCatalog(),
	}
}

// InstallMod places an archive for name/version and registers the mod.
func (e *Environment) InstallMod(t *testing.T, name, version, factorioVersion string, active bool) *types.Mod {
	t.Helper()

	location, err := e.Storage.Place(factorioVersion, name+"_"+version+paths.ArchiveExtension,
		ModArchive(name, version, factorioVersion, nil))
	require.NoError(t, err)
	mod, err := e.Storage.ReadInfo(location, factorioVersion)
	require.NoError(t, err)
	mod.Active = active
	require.NoError(t, e.Registry.Add(mod))
	return mod
}

// InstallUnpackedMod installs name/version as an extracted directory.
func (e *Environment) InstallUnpackedMod(t *testing.T, name, version, factorioVersion string) *types.Mod {
	t.Helper()

	mod := e.InstallMod(t, name, version, factorioVersion, false)
	dir, err := e.Storage.Extract(mod.Location)
	require.NoError(t, err)
	require.NoError(t, e.Storage.Delete(mod.Location))
	mod.Location = dir
	mod.Packed = false
	return mod
}

// ModExists reports whether a mod file or directory exists in the
// Factorio version directory.
func (e *Environment) ModExists(factorioVersion, name string) bool {
	return filesystem.Exists(e.FS, filepath.Join(e.Paths.FactorioDir(factorioVersion), name))
}

// CountingStore counts template writes.
type CountingStore struct {
	templates.Store
	Saves int
}

// Save counts and delegates.
func (s *CountingStore) Save(lists templates.ModLists, packs []templates.ModpackTemplate) error {
	s.Saves++
	return s.Store.Save(lists, packs)
}
