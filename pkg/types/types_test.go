package types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/modkeeper/pkg/semver"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name   string
		values []TriState
		want   TriState
		ok     bool
	}{
		{"empty keeps previous", nil, False, false},
		{"all true", []TriState{True, True}, True, true},
		{"all false", []TriState{False, False, False}, False, true},
		{"mixed", []TriState{True, False}, Indeterminate, true},
		{"single indeterminate", []TriState{Indeterminate}, Indeterminate, true},
		{"true then indeterminate", []TriState{True, Indeterminate}, Indeterminate, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Aggregate(tt.values)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestReferencePosition(t *testing.T) {
	pack := NewModpack("Base")
	a := &Mod{Name: "A", Version: semver.MustParseVersion("1.0.0")}
	b := &Mod{Name: "B", Version: semver.MustParseVersion("1.0.0"), Active: true}
	child := NewModpack("Child")
	child.Active = Indeterminate

	ra := NewModReference(pack, a)
	rb := NewModReference(pack, b)
	rc := NewModpackReference(pack, child)
	pack.References = []Reference{ra, rb, rc}

	assert.Equal(t, 0, ra.Position())
	assert.Equal(t, 1, rb.Position())
	assert.Equal(t, 2, rc.Position())
	assert.Same(t, pack, rc.Parent())
	assert.Equal(t, False, ra.State())
	assert.Equal(t, True, rb.State())
	assert.Equal(t, Indeterminate, rc.State())
	assert.Same(t, rb, pack.ModRef(b))
	assert.Same(t, rc, pack.ModpackRef(child))
	assert.Nil(t, pack.ModRef(&Mod{Name: "A"}))
}

func TestModNaming(t *testing.T) {
	m := &Mod{Name: "Foo", Version: semver.MustParseVersion("1.2.0"), FactorioVersion: "0.17"}
	assert.Equal(t, "Foo_1.2.0", m.FileName())
	assert.Equal(t, "Foo", m.DisplayTitle())
	assert.Equal(t, "Foo@1.2.0 (factorio 0.17)", m.String())
}

func TestProgressScale(t *testing.T) {
	var got []float64
	f := ProgressFunc(func(fraction float64, _ string) { got = append(got, fraction) })

	sub := f.Scale(0.5, 0.25)
	sub.Report(0, "")
	sub.Report(1, "")

	assert.InDeltaSlice(t, []float64{0.5, 0.75}, got, 1e-9)

	var nilFunc ProgressFunc
	assert.Nil(t, nilFunc.Scale(0, 1))
	nilFunc.Report(1, "no panic")
}

func TestChangeSet(t *testing.T) {
	var cs ChangeSet
	assert.True(t, cs.IsEmpty())
	cs.Merge(ChangeSet{AddedMods: []*Mod{{Name: "A"}}})
	assert.False(t, cs.IsEmpty())
	assert.Len(t, cs.AddedMods, 1)
}
