package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.2.0", -1},
		{"1.2.0", "1.2", 0},
		{"2.0.0", "1.9.9", 1},
		{"0.17.5", "0.17.50", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(MustParseVersion(tt.a), MustParseVersion(tt.b)))
		})
	}
}

func TestZeroSortsFirst(t *testing.T) {
	var zero Version
	assert.True(t, zero.IsZero())
	assert.Equal(t, -1, Compare(zero, MustParseVersion("0.0.1")))
	assert.Equal(t, 0, Compare(zero, Version{}))
	assert.Equal(t, "", zero.String())
}

func TestParseVersionError(t *testing.T) {
	_, err := ParseVersion("not-a-version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-version")
}

func TestMax(t *testing.T) {
	best, ok := Max([]Version{
		MustParseVersion("1.0.0"),
		MustParseVersion("2.0.0"),
		MustParseVersion("1.2.0"),
	})
	require.True(t, ok)
	assert.Equal(t, "2.0.0", best.String())

	_, ok = Max(nil)
	assert.False(t, ok)
}

func TestTextRoundTrip(t *testing.T) {
	var v Version
	require.NoError(t, v.UnmarshalText([]byte("1.5.0")))
	out, err := v.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", string(out))
}

func TestFactorioVersion(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"0.17", "0.17"},
		{"0.17.79", "0.17"},
		{"1.1", "1.1"},
		{" 0.18 ", "0.18"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := FactorioVersion(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FactorioVersion("abc")
	assert.Error(t, err)
}

func TestCompareFactorio(t *testing.T) {
	assert.Equal(t, -1, CompareFactorio("0.9", "0.17"))
	assert.Equal(t, 1, CompareFactorio("1.0", "0.18"))
	assert.Equal(t, 0, CompareFactorio("0.17", "0.17"))
}
