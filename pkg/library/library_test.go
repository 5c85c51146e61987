package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modkeeper/pkg/config"
	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/filesystem"
	"github.com/arthur-debert/modkeeper/pkg/testutil"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

func testConfig(mode string) *config.Config {
	cfg := config.Default()
	cfg.Manager.Mode = mode
	cfg.Paths.ModsDir = "/virtual/mods"
	cfg.Paths.DataDir = "/virtual/data"
	return cfg
}

func open(t *testing.T, fs types.FS, mode string) *Library {
	t.Helper()
	lib, err := Open(testConfig(mode), Options{FS: fs, Catalog: testutil.NewFakeCatalog()})
	require.NoError(t, err)
	return lib
}

func addArchive(t *testing.T, lib *Library, name, version, fv string) *types.Mod {
	t.Helper()
	path := "/downloads/" + name + "_" + version + ".zip"
	require.NoError(t, lib.FS.MkdirAll("/downloads", 0755))
	require.NoError(t, lib.FS.WriteFile(path, testutil.ModArchive(name, version, fv, nil), 0644))
	mod, err := lib.AddModFile(path, true)
	require.NoError(t, err)
	return mod
}

func TestOpenEmpty(t *testing.T) {
	lib := open(t, filesystem.NewMemoryFS(), "per-factorio-version")
	assert.Zero(t, lib.Registry.Len())
	assert.Zero(t, lib.Graph.Len())
	assert.NotNil(t, lib.Updates)
	assert.NotNil(t, lib.Importer)
}

func TestOpenRejectsInvalidMode(t *testing.T) {
	_, err := Open(testConfig("sometimes"), Options{FS: filesystem.NewMemoryFS()})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestRestoreRoundTrip(t *testing.T) {
	fs := filesystem.NewMemoryFS()
	first := open(t, fs, "per-factorio-version")

	foo := addArchive(t, first, "Foo", "1.0.0", "0.17")
	bar := addArchive(t, first, "Bar", "2.0.0", "0.17")
	addArchive(t, first, "Foo", "1.0.0", "0.18")
	require.NoError(t, first.Aggregator.SetModsActive([]*types.Mod{foo}, true))

	outer, err := first.Graph.Create("Outer")
	require.NoError(t, err)
	inner, err := first.Graph.Create("Inner")
	require.NoError(t, err)
	_, err = first.Graph.AddMod(inner, bar)
	require.NoError(t, err)
	_, err = first.Graph.AddMod(outer, foo)
	require.NoError(t, err)
	_, err = first.Graph.AddModpack(outer, inner)
	require.NoError(t, err)

	modList, err := fs.ReadFile(first.Paths.ModListPath("0.17"))
	require.NoError(t, err)

	second := open(t, fs, "per-factorio-version")
	assert.Equal(t, 3, second.Registry.Len())

	restoredFoo := second.Registry.FindSlot("Foo", "0.17")
	require.NotNil(t, restoredFoo)
	assert.True(t, restoredFoo.Active)
	assert.False(t, second.Registry.FindSlot("Foo", "0.18").Active)
	assert.False(t, second.Registry.FindSlot("Bar", "0.17").Active)

	restoredOuter := second.Graph.Find("Outer")
	restoredInner := second.Graph.Find("Inner")
	require.NotNil(t, restoredOuter)
	require.NotNil(t, restoredInner)
	assert.Equal(t, outer.ID, restoredOuter.ID)
	require.Len(t, restoredOuter.References, 2)
	assert.Same(t, restoredFoo, restoredOuter.References[0].(*types.ModReference).Mod)
	assert.True(t, second.Graph.Contains(restoredOuter, restoredInner))
	assert.Equal(t, types.Indeterminate, restoredOuter.Active)
	assert.Equal(t, types.False, restoredInner.Active)

	after, err := fs.ReadFile(second.Paths.ModListPath("0.17"))
	require.NoError(t, err)
	assert.Equal(t, string(modList), string(after), "restoring does not rewrite templates")
}

func TestAddModFileRejectsTakenSlot(t *testing.T) {
	lib := open(t, filesystem.NewMemoryFS(), "per-factorio-version")
	addArchive(t, lib, "Foo", "1.0.0", "0.17")

	require.NoError(t, lib.FS.WriteFile("/downloads/Foo_1.1.0.zip", testutil.ModArchive("Foo", "1.1.0", "0.17", nil), 0644))
	_, err := lib.AddModFile("/downloads/Foo_1.1.0.zip", true)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
	assert.True(t, filesystem.Exists(lib.FS, "/downloads/Foo_1.1.0.zip"), "rejected file is not moved")

	_, err = lib.AddModFile("/downloads/readme.txt", false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestAddModFileGlobalMode(t *testing.T) {
	lib := open(t, filesystem.NewMemoryFS(), "global")
	addArchive(t, lib, "Foo", "1.0.0", "0.17")

	require.NoError(t, lib.FS.WriteFile("/downloads/Foo_2.0.0.zip", testutil.ModArchive("Foo", "2.0.0", "0.18", nil), 0644))
	_, err := lib.AddModFile("/downloads/Foo_2.0.0.zip", false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}

func TestDeleteMods(t *testing.T) {
	lib := open(t, filesystem.NewMemoryFS(), "per-factorio-version")
	foo := addArchive(t, lib, "Foo", "1.0.0", "0.17")
	pack, _ := lib.Graph.Create("Pack")
	_, _ = lib.Graph.AddMod(pack, foo)

	require.NoError(t, lib.DeleteMods([]*types.Mod{foo}))

	assert.Zero(t, lib.Registry.Len())
	assert.Empty(t, pack.References)
	assert.False(t, filesystem.Exists(lib.FS, foo.Location))
}

func TestDeleteModpacks(t *testing.T) {
	lib := open(t, filesystem.NewMemoryFS(), "per-factorio-version")
	outer, _ := lib.Graph.Create("Outer")
	inner, _ := lib.Graph.Create("Inner")
	_, _ = lib.Graph.AddModpack(outer, inner)

	require.NoError(t, lib.DeleteModpacks([]*types.Modpack{inner}))
	assert.Nil(t, lib.Graph.Find("Inner"))
	assert.Empty(t, outer.References)
}

func TestFilterAndResolve(t *testing.T) {
	lib := open(t, filesystem.NewMemoryFS(), "per-factorio-version")
	addArchive(t, lib, "FooBar", "1.0.0", "0.17")
	addArchive(t, lib, "FooBar", "1.0.0", "0.18")
	addArchive(t, lib, "Other", "1.0.0", "0.17")

	assert.Len(t, lib.Filter("foo", ""), 2)
	assert.Len(t, lib.Filter("foo", "0.18"), 1)
	assert.Len(t, lib.Filter("", "0.17"), 2)
	assert.Len(t, lib.Filter("other title", ""), 1, "matches titles")

	mods, err := lib.ResolveMods([]string{"FooBar", "Other@1.0.0"})
	require.NoError(t, err)
	assert.Len(t, mods, 3)

	_, err = lib.ResolveMods([]string{"Missing"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	_, err = lib.ResolveMods([]string{"Other@x"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = lib.ResolveModpacks([]string{"Nope"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}
