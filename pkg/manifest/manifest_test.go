package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/filesystem"
)

func TestFormatFor(t *testing.T) {
	assert.Equal(t, JSON, FormatFor("pack.fmp"))
	assert.Equal(t, JSON, FormatFor("pack.json"))
	assert.Equal(t, YAML, FormatFor("pack.yaml"))
	assert.Equal(t, YAML, FormatFor("PACK.YML"))
}

func TestDecodeJSON(t *testing.T) {
	data := []byte(`{
  "include_version_info": true,
  "mods": [{"name": "Foo", "version": "1.2.0"}, {"name": "Bar"}],
  "modpacks": [{"name": "Base", "mods": [{"name": "Foo", "version": "1.2.0"}], "modpacks": ["Extra"]}]
}`)
	m, err := Decode(data, JSON)
	require.NoError(t, err)

	assert.True(t, m.IncludeVersionInfo)
	require.Len(t, m.Modpacks, 1)
	assert.Equal(t, []string{"Extra"}, m.Modpacks[0].Modpacks)

	reqs := m.Requirements()
	require.Len(t, reqs, 2, "duplicate member entry collapses")
	assert.True(t, reqs[0].Pinned())
	assert.Equal(t, "Foo@1.2.0", reqs[0].String())
	assert.False(t, reqs[1].Pinned())
}

func TestDecodeYAML(t *testing.T) {
	data := []byte(`
include_version_info: false
mods:
  - name: Foo
    version: 1.2.0
modpacks:
  - name: Base
    mods:
      - name: Foo
`)
	m, err := Decode(data, YAML)
	require.NoError(t, err)
	assert.False(t, m.Requirement(m.Mods[0]).Pinned(), "versions ignored without version info")
}

func TestDecodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{`},
		{"unknown field", `{"mods": [], "extra": 1}`},
		{"nameless mod", `{"mods": [{"name": ""}]}`},
		{"bad pinned version", `{"include_version_info": true, "mods": [{"name": "Foo", "version": "x.y"}]}`},
		{"duplicate modpack", `{"modpacks": [{"name": "A"}, {"name": "A"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), JSON)
			assert.True(t, errors.IsErrorCode(err, errors.ErrManifest), "got %v", err)
		})
	}
}

func TestWriteReadFile(t *testing.T) {
	fs := filesystem.NewMemoryFS()
	m := &Manifest{
		IncludeVersionInfo: true,
		Mods:               []ModEntry{{Name: "Foo", Version: "1.0.0"}},
		Modpacks:           []ModpackEntry{{Name: "Pack", Mods: []ModEntry{{Name: "Foo", Version: "1.0.0"}}}},
	}

	for _, path := range []string{"/out/pack.fmp", "/out/pack.yaml"} {
		require.NoError(t, WriteFile(fs, path, m))
		got, err := ReadFile(fs, path)
		require.NoError(t, err)
		assert.Equal(t, m, got, path)
	}

	_, err := ReadFile(fs, "/out/missing.fmp")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}
