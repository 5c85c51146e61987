package manifest

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/arthur-debert/modkeeper/pkg/catalog"
	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/logging"
	"github.com/arthur-debert/modkeeper/pkg/metrics"
	"github.com/arthur-debert/modkeeper/pkg/policy"
	"github.com/arthur-debert/modkeeper/pkg/semver"
	"github.com/arthur-debert/modkeeper/pkg/tracing"
	"github.com/arthur-debert/modkeeper/pkg/types"
	"github.com/arthur-debert/modkeeper/pkg/updates"
)

// Library is the registry as seen by the importer.
type Library interface {
	Find(name string) []*types.Mod
	FindVersion(name string, version semver.Version) *types.Mod
	Add(mod *types.Mod) error
	Policy() policy.Policy
}

// Graph is the modpack graph as seen by the importer and exporter.
type Graph interface {
	Find(name string) *types.Modpack
	Create(name string) (*types.Modpack, error)
	AddMod(pack *types.Modpack, mod *types.Mod) (bool, error)
	AddModpack(parent, child *types.Modpack) (bool, error)
	Descendants(pack *types.Modpack) []*types.Modpack
	ModsOf(pack *types.Modpack) []*types.Mod
}

// Storage places downloaded archives.
type Storage interface {
	Place(factorioVersion, fileName string, data []byte) (string, error)
	Delete(location string) error
	ReadInfo(location, defaultFactorioVersion string) (*types.Mod, error)
}

// Batcher groups template writes.
type Batcher interface {
	BeginUpdateTemplates()
	EndUpdateTemplates(forceRebuild bool) error
}

// Conflict is a needed release whose identity slot holds another version.
type Conflict struct {
	Requirement Requirement
	Release     types.Release
	Existing    *types.Mod
}

// Plan is the outcome of resolving a manifest.
type Plan struct {
	ToDownload []types.Release
	Conflicts  []Conflict
	// Satisfied requirements are already installed and are not reported.
	Satisfied []Requirement
	// NoData requirements have no catalog entry or no matching release.
	NoData []Requirement
}

// Rejection is a nested modpack that could not be added.
type Rejection struct {
	Parent string
	Child  string
	Err    error
}

// MergeResult summarises the modpack merge.
type MergeResult struct {
	Created       []*types.Modpack
	AddedMods     int
	AddedModpacks int
	// Missing lists member mods with no local match.
	Missing  []Requirement
	Rejected []Rejection
}

// Result is the outcome of a full import.
type Result struct {
	Plan       *Plan
	Downloaded []*types.Mod
	Merge      *MergeResult
}

// Importer resolves and merges manifests.
type Importer struct {
	library Library
	graph   Graph
	storage Storage
	catalog catalog.Catalog
	batches Batcher
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewImporter creates an Importer.
func NewImporter(library Library, graph Graph, storage Storage, cat catalog.Catalog, batches Batcher, m *metrics.Metrics) *Importer {
	return &Importer{
		library: library,
		graph:   graph,
		storage: storage,
		catalog: cat,
		batches: batches,
		metrics: m,
		logger:  logging.GetLogger("manifest"),
	}
}

// Resolve classifies every mod the manifest needs. A pinned requirement
// already installed is satisfied without a catalog query; an unpinned one is
// classified against the catalog's newest release. Connectivity failures
// abort; missing catalog data is recorded and skipped.
func (im *Importer) Resolve(ctx context.Context, m *Manifest, progress types.ProgressFunc) (*Plan, error) {
	ctx, span := tracing.Tracer().Start(ctx, "manifest.resolve")
	defer span.End()

	pol := im.library.Policy()
	reqs := m.Requirements()
	plan := &Plan{}
	queued := make(map[string]bool)

	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCancelled, "manifest resolution cancelled")
		}
		progress.Report(float64(i)/float64(len(reqs)), "Resolving "+req.Name)

		variants := im.library.Find(req.Name)
		if pol.SatisfiedBy(variants, req.Version) != nil {
			plan.Satisfied = append(plan.Satisfied, req)
			im.metrics.ImportEntry(policy.Satisfied.String())
			continue
		}

		info, err := im.catalog.Query(ctx, req.Name)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrCatalogNoData) {
				plan.NoData = append(plan.NoData, req)
				im.metrics.ImportEntry("no_data")
				continue
			}
			tracing.RecordError(span, err)
			return nil, err
		}

		var release types.Release
		var found bool
		if req.Pinned() {
			release, found = policy.Exact(info.Releases, req.Version)
		} else {
			release, found = pol.Newest(info.Releases, "")
		}
		if !found {
			plan.NoData = append(plan.NoData, req)
			im.metrics.ImportEntry("no_data")
			continue
		}

		class, existing := pol.Classify(variants, release)
		im.metrics.ImportEntry(class.String())
		switch class {
		case policy.Satisfied:
			plan.Satisfied = append(plan.Satisfied, req)
		case policy.Conflict:
			plan.Conflicts = append(plan.Conflicts, Conflict{Requirement: req, Release: release, Existing: existing})
			im.logger.Info().Str("mod", req.Name).Str("needed", release.Version.String()).
				Str("installed", existing.Version.String()).Msg("Import conflict")
		case policy.Download:
			key := release.ModName + "@" + release.Version.String() + "@" + release.FactorioVersion
			if !queued[key] {
				queued[key] = true
				plan.ToDownload = append(plan.ToDownload, release)
			}
		}
	}

	progress.Report(1, "Manifest resolved")
	span.SetAttributes(
		attribute.Int("download", len(plan.ToDownload)),
		attribute.Int("conflicts", len(plan.Conflicts)),
	)
	return plan, nil
}

// Download fetches and registers every release in the plan. ctx is checked
// between releases; mods downloaded before a cancellation or failure stay
// installed.
func (im *Importer) Download(ctx context.Context, plan *Plan, creds types.Credentials, progress types.ProgressFunc) ([]*types.Mod, error) {
	ctx, span := tracing.Tracer().Start(ctx, "manifest.download")
	defer span.End()

	var added []*types.Mod
	n := float64(len(plan.ToDownload))
	for i, release := range plan.ToDownload {
		if err := ctx.Err(); err != nil {
			return added, errors.Wrap(err, errors.ErrCancelled, "manifest download cancelled")
		}
		mod, err := im.install(context.WithoutCancel(ctx), release, creds, progress.Scale(float64(i)/n, 1/n))
		if err != nil {
			tracing.RecordError(span, err)
			return added, err
		}
		added = append(added, mod)
	}
	progress.Report(1, "Downloads complete")
	return added, nil
}

func (im *Importer) install(ctx context.Context, release types.Release, creds types.Credentials, progress types.ProgressFunc) (*types.Mod, error) {
	data, err := im.catalog.Download(ctx, release, creds, progress)
	if err != nil {
		return nil, err
	}
	location, err := im.storage.Place(release.FactorioVersion, updates.ArchiveName(release), data)
	if err != nil {
		return nil, err
	}
	mod, err := im.storage.ReadInfo(location, release.FactorioVersion)
	if err == nil {
		err = im.library.Add(mod)
	}
	if err != nil {
		if derr := im.storage.Delete(location); derr != nil {
			im.logger.Warn().Err(derr).Str("path", location).Msg("Failed to clean up download")
		}
		return nil, err
	}
	im.logger.Info().Str("mod", mod.Name).Str("version", mod.Version.String()).Msg("Mod imported")
	return mod, nil
}

// Merge applies the manifest's modpacks to the graph. Pass one creates or
// reuses every modpack and appends member mods; pass two nests modpacks
// once all of them exist. Re-merging the same manifest changes nothing.
func (im *Importer) Merge(m *Manifest) (*MergeResult, error) {
	result := &MergeResult{}
	packs := make(map[string]*types.Modpack, len(m.Modpacks))

	for _, entry := range m.Modpacks {
		pack := im.graph.Find(entry.Name)
		if pack == nil {
			var err error
			pack, err = im.graph.Create(entry.Name)
			if err != nil {
				return result, err
			}
			result.Created = append(result.Created, pack)
		}
		packs[entry.Name] = pack

		for _, e := range entry.Mods {
			req := m.Requirement(e)
			mod := im.local(req)
			if mod == nil {
				result.Missing = append(result.Missing, req)
				continue
			}
			added, err := im.graph.AddMod(pack, mod)
			if err != nil {
				return result, err
			}
			if added {
				result.AddedMods++
			}
		}
	}

	for _, entry := range m.Modpacks {
		parent := packs[entry.Name]
		for _, name := range entry.Modpacks {
			child := im.graph.Find(name)
			if child == nil {
				result.Rejected = append(result.Rejected, Rejection{Parent: entry.Name, Child: name,
					Err: errors.Newf(errors.ErrNotFound, "modpack %q not found", name)})
				continue
			}
			added, err := im.graph.AddModpack(parent, child)
			if err != nil {
				if errors.IsErrorCode(err, errors.ErrCycle) {
					result.Rejected = append(result.Rejected, Rejection{Parent: entry.Name, Child: name, Err: err})
					continue
				}
				return result, err
			}
			if added {
				result.AddedModpacks++
			}
		}
	}
	return result, nil
}

// local finds the installed mod a requirement refers to: the exact version
// when pinned, otherwise the newest installed variant.
func (im *Importer) local(req Requirement) *types.Mod {
	if req.Pinned() {
		return im.library.FindVersion(req.Name, req.Version)
	}
	var best *types.Mod
	for _, m := range im.library.Find(req.Name) {
		if best == nil || m.Version.GreaterThan(best.Version) {
			best = m
		}
	}
	return best
}

// Import resolves, downloads and merges m as one template batch. A
// cancelled or failed download stops the import before the merge.
func (im *Importer) Import(ctx context.Context, m *Manifest, creds types.Credentials, progress types.ProgressFunc) (result *Result, err error) {
	ctx, span := tracing.Tracer().Start(ctx, "manifest.import")
	defer span.End()
	defer im.metrics.Time("import")()

	result = &Result{}
	result.Plan, err = im.Resolve(ctx, m, progress.Scale(0, 0.2))
	if err != nil {
		tracing.RecordError(span, err)
		return result, err
	}

	im.batches.BeginUpdateTemplates()
	defer func() {
		if endErr := im.batches.EndUpdateTemplates(true); err == nil {
			err = endErr
		}
	}()

	result.Downloaded, err = im.Download(ctx, result.Plan, creds, progress.Scale(0.2, 0.7))
	if err != nil {
		tracing.RecordError(span, err)
		return result, err
	}

	result.Merge, err = im.Merge(m)
	if err != nil {
		tracing.RecordError(span, err)
		return result, err
	}

	progress.Report(1, "Import complete")
	im.logger.Info().Int("downloaded", len(result.Downloaded)).Int("conflicts", len(result.Plan.Conflicts)).
		Int("modpacks", len(result.Merge.Created)).Msg("Manifest imported")
	return result, nil
}
