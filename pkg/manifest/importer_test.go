package manifest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/policy"
	"github.com/arthur-debert/modkeeper/pkg/testutil"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

func newImporter(env *testutil.Environment) *Importer {
	return NewImporter(env.Registry, env.Graph, env.Storage, env.Catalog, env.Aggregator, nil)
}

func pinned(entries ...ModEntry) *Manifest {
	return &Manifest{IncludeVersionInfo: true, Mods: entries}
}

func TestPinnedAlreadySatisfied(t *testing.T) {
	env := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	env.InstallMod(t, "Bar", "1.5.0", "0.17", false)
	env.Catalog.AddRelease("Bar", "1.5.0", "0.17")

	plan, err := newImporter(env).Resolve(context.Background(), pinned(ModEntry{Name: "Bar", Version: "1.5.0"}), nil)
	require.NoError(t, err)

	assert.Len(t, plan.Satisfied, 1)
	assert.Empty(t, plan.ToDownload)
	assert.Empty(t, plan.Conflicts)
	assert.Empty(t, env.Catalog.Queries, "satisfied locally without a query")
}

func TestPinnedConflictPerFactorioVersion(t *testing.T) {
	env := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	existing := env.InstallMod(t, "Bar", "1.4.0", "0.17", false)
	env.Catalog.AddRelease("Bar", "1.5.0", "0.17")

	plan, err := newImporter(env).Resolve(context.Background(), pinned(ModEntry{Name: "Bar", Version: "1.5.0"}), nil)
	require.NoError(t, err)

	require.Len(t, plan.Conflicts, 1)
	assert.Same(t, existing, plan.Conflicts[0].Existing)
	assert.Equal(t, "1.5.0", plan.Conflicts[0].Release.Version.String())
	assert.Empty(t, plan.ToDownload)
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name         string
		mode         policy.Mode
		installedFV  string
		releaseFV    string
		wantDownload bool
	}{
		{"per version, other target downloads", policy.PerFactorioVersion, "0.16", "0.17", true},
		{"global, older variant on other target conflicts", policy.Global, "0.16", "0.17", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnvironment(t, tt.mode)
			env.InstallMod(t, "Bar", "1.4.0", tt.installedFV, false)
			env.Catalog.AddRelease("Bar", "1.5.0", tt.releaseFV)

			plan, err := newImporter(env).Resolve(context.Background(), pinned(ModEntry{Name: "Bar", Version: "1.5.0"}), nil)
			require.NoError(t, err)

			if tt.wantDownload {
				assert.Len(t, plan.ToDownload, 1)
				assert.Empty(t, plan.Conflicts)
			} else {
				assert.Empty(t, plan.ToDownload)
				assert.Len(t, plan.Conflicts, 1)
			}
		})
	}
}

func TestUnpinnedClassifiesAgainstNewestRelease(t *testing.T) {
	tests := []struct {
		name          string
		mode          policy.Mode
		installedFV   string
		wantDownloads int
		wantConflicts int
	}{
		{"per version, variant on other target downloads", policy.PerFactorioVersion, "0.16", 1, 0},
		{"per version, older variant in slot conflicts", policy.PerFactorioVersion, "0.17", 0, 1},
		{"global, older variant conflicts", policy.Global, "0.17", 0, 1},
		{"global, older variant on other target conflicts", policy.Global, "0.16", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnvironment(t, tt.mode)
			env.InstallMod(t, "Foo", "1.0.0", tt.installedFV, false)
			env.Catalog.AddRelease("Foo", "2.0.0", "0.17")

			plan, err := newImporter(env).Resolve(context.Background(), &Manifest{Mods: []ModEntry{{Name: "Foo"}}}, nil)
			require.NoError(t, err)

			assert.Equal(t, []string{"Foo"}, env.Catalog.Queries)
			assert.Empty(t, plan.Satisfied)
			assert.Len(t, plan.ToDownload, tt.wantDownloads)
			assert.Len(t, plan.Conflicts, tt.wantConflicts)
			if tt.wantDownloads == 1 {
				assert.Equal(t, "2.0.0", plan.ToDownload[0].Version.String())
			}
		})
	}
}

func TestUnpinnedImportIsIdempotent(t *testing.T) {
	env := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	env.InstallMod(t, "Foo", "1.0.0", "0.16", false)
	env.Catalog.AddRelease("Foo", "2.0.0", "0.17")
	m := &Manifest{
		Mods:     []ModEntry{{Name: "Foo"}},
		Modpacks: []ModpackEntry{{Name: "P", Mods: []ModEntry{{Name: "Foo"}}}},
	}
	im := newImporter(env)

	first, err := im.Import(context.Background(), m, testutil.Credentials(), nil)
	require.NoError(t, err)
	require.Len(t, first.Downloaded, 1)
	assert.Len(t, env.Registry.Find("Foo"), 2)

	second, err := im.Import(context.Background(), m, testutil.Credentials(), nil)
	require.NoError(t, err)
	assert.Empty(t, second.Downloaded)
	assert.Len(t, second.Plan.Satisfied, 1)
	assert.Empty(t, second.Plan.Conflicts)
	assert.Zero(t, second.Merge.AddedMods)
	assert.Equal(t, 1, env.Catalog.DownloadCount())
}

func TestResolveNoDataAndMissingRelease(t *testing.T) {
	env := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	env.Catalog.AddRelease("Foo", "1.0.0", "0.17")

	m := pinned(ModEntry{Name: "Unknown"}, ModEntry{Name: "Foo", Version: "9.9.9"}, ModEntry{Name: "Foo"})
	plan, err := newImporter(env).Resolve(context.Background(), m, nil)
	require.NoError(t, err)

	assert.Len(t, plan.NoData, 2)
	require.Len(t, plan.ToDownload, 1)
	assert.Equal(t, "1.0.0", plan.ToDownload[0].Version.String())
}

func TestResolveAbortsOnConnectivity(t *testing.T) {
	env := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	env.Catalog.QueryErrors["Foo"] = errors.New(errors.ErrConnectivity, "offline")

	_, err := newImporter(env).Resolve(context.Background(), pinned(ModEntry{Name: "Foo"}), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConnectivity))
}

func sampleManifest() *Manifest {
	return &Manifest{
		IncludeVersionInfo: true,
		Mods:               []ModEntry{{Name: "Solo", Version: "1.0.0"}},
		Modpacks: []ModpackEntry{
			{Name: "Outer", Mods: []ModEntry{{Name: "Foo", Version: "1.0.0"}}, Modpacks: []string{"Inner"}},
			{Name: "Inner", Mods: []ModEntry{{Name: "Bar", Version: "2.0.0"}, {Name: "Foo", Version: "1.0.0"}}},
		},
	}
}

func TestImportIsIdempotent(t *testing.T) {
	env := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	env.Catalog.AddRelease("Solo", "1.0.0", "0.17")
	env.Catalog.AddRelease("Foo", "1.0.0", "0.17")
	env.Catalog.AddRelease("Bar", "2.0.0", "0.17")
	im := newImporter(env)

	first, err := im.Import(context.Background(), sampleManifest(), testutil.Credentials(), nil)
	require.NoError(t, err)
	assert.Len(t, first.Downloaded, 3)
	assert.Len(t, first.Merge.Created, 2)
	assert.Equal(t, 3, first.Merge.AddedMods)
	assert.Equal(t, 1, first.Merge.AddedModpacks, "later modpack nested in pass two")

	outer := env.Graph.Find("Outer")
	inner := env.Graph.Find("Inner")
	require.NotNil(t, outer)
	assert.True(t, env.Graph.Contains(outer, inner))
	downloads := env.Catalog.DownloadCount()
	refs := len(outer.References) + len(inner.References)

	second, err := im.Import(context.Background(), sampleManifest(), testutil.Credentials(), nil)
	require.NoError(t, err)
	assert.Empty(t, second.Downloaded)
	assert.Empty(t, second.Plan.Conflicts)
	assert.Empty(t, second.Merge.Created)
	assert.Zero(t, second.Merge.AddedMods)
	assert.Zero(t, second.Merge.AddedModpacks)
	assert.Equal(t, downloads, env.Catalog.DownloadCount())
	assert.Equal(t, refs, len(outer.References)+len(inner.References))
}

func TestImportWritesTemplatesOnce(t *testing.T) {
	env := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	env.Catalog.AddRelease("Solo", "1.0.0", "0.17")
	env.Catalog.AddRelease("Foo", "1.0.0", "0.17")
	env.Catalog.AddRelease("Bar", "2.0.0", "0.17")

	before := env.Store.Saves
	_, err := newImporter(env).Import(context.Background(), sampleManifest(), testutil.Credentials(), nil)
	require.NoError(t, err)
	assert.Equal(t, before+1, env.Store.Saves)
}

func TestMergeRecordsCycleRejection(t *testing.T) {
	env := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	m := &Manifest{Modpacks: []ModpackEntry{
		{Name: "A", Modpacks: []string{"B"}},
		{Name: "B", Modpacks: []string{"A", "Ghost"}},
	}}

	result, err := newImporter(env).Merge(m)
	require.NoError(t, err)

	assert.Equal(t, 1, result.AddedModpacks)
	require.Len(t, result.Rejected, 2)
	assert.True(t, errors.IsErrorCode(result.Rejected[0].Err, errors.ErrCycle))
	assert.True(t, errors.IsErrorCode(result.Rejected[1].Err, errors.ErrNotFound))
}

func TestMergeUnpinnedUsesNewestLocal(t *testing.T) {
	env := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	env.InstallMod(t, "Foo", "1.0.0", "0.16", false)
	newest := env.InstallMod(t, "Foo", "1.1.0", "0.17", false)

	m := &Manifest{Modpacks: []ModpackEntry{{Name: "P", Mods: []ModEntry{{Name: "Foo"}, {Name: "Missing"}}}}}
	result, err := newImporter(env).Merge(m)
	require.NoError(t, err)

	pack := env.Graph.Find("P")
	require.Len(t, pack.References, 1)
	assert.Same(t, newest, pack.References[0].(*types.ModReference).Mod)
	assert.Len(t, result.Missing, 1)
}

func TestImportCancelledSkipsMerge(t *testing.T) {
	env := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	env.Catalog.AddRelease("Solo", "1.0.0", "0.17")
	env.Catalog.AddRelease("Foo", "1.0.0", "0.17")
	env.Catalog.AddRelease("Bar", "2.0.0", "0.17")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env.Catalog.OnDownload = func(types.Release) { cancel() }

	result, err := newImporter(env).Import(ctx, sampleManifest(), testutil.Credentials(), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
	assert.Len(t, result.Downloaded, 1, "download in flight completes")
	assert.Nil(t, result.Merge)
	assert.Nil(t, env.Graph.Find("Outer"))
	assert.Equal(t, 1, env.Registry.Len())
}

func TestExportIncludesNestedModpacks(t *testing.T) {
	env := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	foo := env.InstallMod(t, "Foo", "1.0.0", "0.17", false)
	bar := env.InstallMod(t, "Bar", "2.0.0", "0.17", false)
	outer, _ := env.Graph.Create("Outer")
	inner, _ := env.Graph.Create("Inner")
	_, _ = env.Graph.AddMod(outer, foo)
	_, _ = env.Graph.AddMod(inner, bar)
	_, err := env.Graph.AddModpack(outer, inner)
	require.NoError(t, err)

	m := Export(env.Graph, []*types.Modpack{outer}, true)

	require.Len(t, m.Modpacks, 2)
	assert.Equal(t, "Outer", m.Modpacks[0].Name)
	assert.Equal(t, []string{"Inner"}, m.Modpacks[0].Modpacks)
	assert.Equal(t, []ModEntry{{Name: "Foo", Version: "1.0.0"}, {Name: "Bar", Version: "2.0.0"}}, m.Mods)

	plain := Export(env.Graph, []*types.Modpack{outer}, false)
	assert.Equal(t, "", plain.Mods[0].Version)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	foo := src.InstallMod(t, "Foo", "1.0.0", "0.17", false)
	pack, _ := src.Graph.Create("Pack")
	_, _ = src.Graph.AddMod(pack, foo)
	m := Export(src.Graph, []*types.Modpack{pack}, true)

	dst := testutil.NewEnvironment(t, policy.PerFactorioVersion)
	dst.Catalog.AddRelease("Foo", "1.0.0", "0.17")
	result, err := newImporter(dst).Import(context.Background(), m, testutil.Credentials(), nil)
	require.NoError(t, err)

	assert.Len(t, result.Downloaded, 1)
	imported := dst.Graph.Find("Pack")
	require.NotNil(t, imported)
	assert.Equal(t, "Foo", imported.References[0].DisplayName())
}
