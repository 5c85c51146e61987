package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/semver"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

func mod(name, version, fv string) *types.Mod {
	return &types.Mod{Name: name, Version: semver.MustParseVersion(version), FactorioVersion: fv}
}

func release(name, version, fv string) types.Release {
	return types.Release{ModName: name, Version: semver.MustParseVersion(version), FactorioVersion: fv}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{"per-factorio-version", PerFactorioVersion, false},
		{"", PerFactorioVersion, false},
		{" Global ", Global, false},
		{"sideways", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseMode(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSameSlot(t *testing.T) {
	foo017 := mod("Foo", "1.0.0", "0.17")

	perFV := New(PerFactorioVersion)
	assert.True(t, perFV.SameSlot(foo017, "Foo", "0.17"))
	assert.False(t, perFV.SameSlot(foo017, "Foo", "0.18"))
	assert.False(t, perFV.SameSlot(foo017, "Bar", "0.17"))

	global := New(Global)
	assert.True(t, global.SameSlot(foo017, "Foo", "0.18"))
	assert.False(t, global.SameSlot(foo017, "Bar", "0.17"))
}

func TestSelectUpdatePerMode(t *testing.T) {
	installed := mod("Foo", "1.0.0", "0.17")
	releases := []types.Release{
		release("Foo", "1.2.0", "0.17"),
		release("Foo", "2.0.0", "0.18"),
		release("Foo", "0.9.0", "0.17"),
	}

	got, ok := New(PerFactorioVersion).SelectUpdate(installed, releases)
	require.True(t, ok)
	assert.Equal(t, "1.2.0", got.Version.String())

	got, ok = New(Global).SelectUpdate(installed, releases)
	require.True(t, ok)
	assert.Equal(t, "2.0.0", got.Version.String())
}

func TestSelectUpdateRequiresStrictlyNewer(t *testing.T) {
	installed := mod("Foo", "1.2.0", "0.17")
	releases := []types.Release{release("Foo", "1.2.0", "0.17"), release("Foo", "1.1.0", "0.17")}

	for _, mode := range []Mode{PerFactorioVersion, Global} {
		_, ok := New(mode).SelectUpdate(installed, releases)
		assert.False(t, ok, string(mode))
	}

	_, ok := New(PerFactorioVersion).SelectUpdate(installed, []types.Release{release("Foo", "3.0.0", "0.18")})
	assert.False(t, ok, "no release for the installed factorio version")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		variants []*types.Mod
		release  types.Release
		want     Classification
	}{
		{
			name:     "exact match satisfied",
			mode:     PerFactorioVersion,
			variants: []*types.Mod{mod("Bar", "1.5.0", "0.17")},
			release:  release("Bar", "1.5.0", "0.17"),
			want:     Satisfied,
		},
		{
			name:    "nothing local downloads",
			mode:    PerFactorioVersion,
			release: release("Bar", "1.5.0", "0.17"),
			want:    Download,
		},
		{
			name:     "same slot different version conflicts",
			mode:     PerFactorioVersion,
			variants: []*types.Mod{mod("Bar", "1.4.0", "0.17")},
			release:  release("Bar", "1.5.0", "0.17"),
			want:     Conflict,
		},
		{
			name:     "other factorio version downloads per version",
			mode:     PerFactorioVersion,
			variants: []*types.Mod{mod("Bar", "1.4.0", "0.16")},
			release:  release("Bar", "1.5.0", "0.17"),
			want:     Download,
		},
		{
			name:     "same version other factorio version satisfied globally",
			mode:     Global,
			variants: []*types.Mod{mod("Bar", "1.5.0", "0.16")},
			release:  release("Bar", "1.5.0", "0.17"),
			want:     Satisfied,
		},
		{
			name:     "other factorio version conflicts globally",
			mode:     Global,
			variants: []*types.Mod{mod("Bar", "1.4.0", "0.16")},
			release:  release("Bar", "1.5.0", "0.17"),
			want:     Conflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := New(tt.mode).Classify(tt.variants, tt.release)
			assert.Equal(t, tt.want, got, got.String())
		})
	}
}

func TestSatisfiedBy(t *testing.T) {
	p := New(PerFactorioVersion)
	variants := []*types.Mod{mod("Bar", "1.4.0", "0.16"), mod("Bar", "1.5.0", "0.17")}

	assert.Same(t, variants[1], p.SatisfiedBy(variants, semver.MustParseVersion("1.5.0")))
	assert.Nil(t, p.SatisfiedBy(variants, semver.MustParseVersion("1.6.0")))
	assert.Nil(t, p.SatisfiedBy(variants, semver.Version{}), "unpinned entries need the catalog")
	assert.Nil(t, p.SatisfiedBy(nil, semver.Version{}))
}

func TestExact(t *testing.T) {
	releases := []types.Release{release("Bar", "1.4.0", "0.17"), release("Bar", "1.5.0", "0.17")}
	got, ok := Exact(releases, semver.MustParseVersion("1.5.0"))
	require.True(t, ok)
	assert.Equal(t, "1.5.0", got.Version.String())

	_, ok = Exact(releases, semver.MustParseVersion("9.9.9"))
	assert.False(t, ok)
}
