package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/filesystem"
	"github.com/arthur-debert/modkeeper/pkg/paths"
	"github.com/arthur-debert/modkeeper/pkg/storage"
	"github.com/arthur-debert/modkeeper/pkg/testutil"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

func newStorage(t *testing.T) (*storage.Storage, types.FS, *paths.Paths) {
	t.Helper()
	fs := filesystem.NewMemoryFS()
	p, err := paths.New("/virtual/mods", "/virtual/data")
	require.NoError(t, err)
	return storage.New(fs, p), fs, p
}

func TestPlaceAndReadInfo(t *testing.T) {
	s, _, p := newStorage(t)

	location, err := s.Place("0.17", "Foo_1.0.0.zip", testutil.ModArchive("Foo", "1.0.0", "0.17", nil))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.FactorioDir("0.17"), "Foo_1.0.0.zip"), location)

	mod, err := s.ReadInfo(location, "")
	require.NoError(t, err)
	assert.Equal(t, "Foo", mod.Name)
	assert.Equal(t, "1.0.0", mod.Version.String())
	assert.Equal(t, "0.17", mod.FactorioVersion)
	assert.Equal(t, "tester", mod.Author)
	assert.True(t, mod.Packed)
	assert.False(t, mod.Active)
}

func TestPlaceRejectsExisting(t *testing.T) {
	s, _, _ := newStorage(t)
	data := testutil.ModArchive("Foo", "1.0.0", "0.17", nil)

	_, err := s.Place("0.17", "Foo_1.0.0.zip", data)
	require.NoError(t, err)
	_, err = s.Place("0.17", "Foo_1.0.0.zip", data)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	_, err = s.Place("0.17", "../escape.zip", data)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestExtract(t *testing.T) {
	s, fs, _ := newStorage(t)
	location, err := s.Place("0.17", "Foo_1.0.0.zip", testutil.ModArchive("Foo", "1.0.0", "0.17",
		map[string]string{"data.lua": "-- data", "locale/en/foo.cfg": "[mod-name]"}))
	require.NoError(t, err)

	dir, err := s.Extract(location)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(location), "Foo_1.0.0"), dir)

	data, err := fs.ReadFile(filepath.Join(dir, "locale", "en", "foo.cfg"))
	require.NoError(t, err)
	assert.Equal(t, "[mod-name]", string(data))

	mod, err := s.ReadInfo(dir, "")
	require.NoError(t, err)
	assert.False(t, mod.Packed)
	assert.Equal(t, "Foo", mod.Name)
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	for _, entry := range []string{"..", "../evil.lua", "sub/../../evil.lua"} {
		t.Run(entry, func(t *testing.T) {
			s, fs, p := newStorage(t)
			location, err := s.Place("0.17", "Foo_1.0.0.zip", testutil.ModArchive("Foo", "1.0.0", "0.17",
				map[string]string{entry: "-- nope"}))
			require.NoError(t, err)

			_, err = s.Extract(location)
			assert.True(t, errors.IsErrorCode(err, errors.ErrStorage))
			assert.False(t, filesystem.Exists(fs, filepath.Join(p.FactorioDir("0.17"), "Foo_1.0.0")))
			assert.False(t, filesystem.Exists(fs, filepath.Join(p.FactorioDir("0.17"), "evil.lua")))
		})
	}
}

func TestReadInfoFallsBackToDirectoryVersion(t *testing.T) {
	s, fs, p := newStorage(t)
	dir := filepath.Join(p.FactorioDir("0.16"), "Old_0.1.0")
	require.NoError(t, fs.MkdirAll(dir, 0755))
	require.NoError(t, fs.WriteFile(filepath.Join(dir, storage.InfoFileName),
		[]byte(`{"name":"Old","version":"0.1.0"}`), 0644))

	mod, err := s.ReadInfo(dir, "0.16")
	require.NoError(t, err)
	assert.Equal(t, "0.16", mod.FactorioVersion)

	_, err = s.ReadInfo(dir, "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrModInvalid))
}

func TestScan(t *testing.T) {
	s, fs, p := newStorage(t)
	_, err := s.Place("0.17", "Foo_1.0.0.zip", testutil.ModArchive("Foo", "1.0.0", "0.17", nil))
	require.NoError(t, err)
	barZip, err := s.Place("0.18", "Bar_2.0.0.zip", testutil.ModArchive("Bar", "2.0.0", "0.18", nil))
	require.NoError(t, err)
	_, err = s.Extract(barZip)
	require.NoError(t, err)
	require.NoError(t, s.Delete(barZip))

	require.NoError(t, fs.WriteFile(filepath.Join(p.FactorioDir("0.17"), "mod-list.json"), []byte(`{}`), 0644))
	require.NoError(t, fs.WriteFile(filepath.Join(p.FactorioDir("0.17"), "broken.zip"), []byte("nope"), 0644))
	require.NoError(t, fs.MkdirAll(filepath.Join(p.ModsDir(), "not-a-version"), 0755))

	mods, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, mods, 2)

	byName := map[string]*types.Mod{}
	for _, m := range mods {
		byName[m.Name] = m
	}
	assert.True(t, byName["Foo"].Packed)
	assert.False(t, byName["Bar"].Packed)
	assert.Equal(t, "0.18", byName["Bar"].FactorioVersion)
}

func TestScanMissingModsDir(t *testing.T) {
	s, _, _ := newStorage(t)
	mods, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, mods)
}

func TestImportCopyAndMove(t *testing.T) {
	s, fs, p := newStorage(t)
	require.NoError(t, fs.MkdirAll("/downloads", 0755))
	require.NoError(t, fs.WriteFile("/downloads/Foo_1.0.0.zip", testutil.ModArchive("Foo", "1.0.0", "0.17", nil), 0644))

	target, err := s.Import("/downloads/Foo_1.0.0.zip", "0.17", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.FactorioDir("0.17"), "Foo_1.0.0.zip"), target)
	assert.True(t, filesystem.Exists(fs, "/downloads/Foo_1.0.0.zip"))

	require.NoError(t, s.Delete(target))
	_, err = s.Import("/downloads/Foo_1.0.0.zip", "0.17", true)
	require.NoError(t, err)
	assert.False(t, filesystem.Exists(fs, "/downloads/Foo_1.0.0.zip"))
}
