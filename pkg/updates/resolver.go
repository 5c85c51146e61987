package updates

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/arthur-debert/modkeeper/pkg/catalog"
	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/logging"
	"github.com/arthur-debert/modkeeper/pkg/metrics"
	"github.com/arthur-debert/modkeeper/pkg/paths"
	"github.com/arthur-debert/modkeeper/pkg/policy"
	"github.com/arthur-debert/modkeeper/pkg/tracing"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// State is the per-mod scan state.
type State int

const (
	Unknown State = iota
	Queried
	UpToDate
	UpdateAvailable
	QueryFailed
)

func (s State) String() string {
	switch s {
	case Queried:
		return "queried"
	case UpToDate:
		return "up to date"
	case UpdateAvailable:
		return "update available"
	case QueryFailed:
		return "no data"
	default:
		return "unknown"
	}
}

// Library is the registry as seen by the resolver.
type Library interface {
	All() []*types.Mod
	Replace(old, next *types.Mod) error
	Policy() policy.Policy
}

// Storage places and reads release archives.
type Storage interface {
	Place(factorioVersion, fileName string, data []byte) (string, error)
	Extract(archive string) (string, error)
	Delete(location string) error
	ReadInfo(location, defaultFactorioVersion string) (*types.Mod, error)
}

// Batcher groups template writes.
type Batcher interface {
	BeginUpdateTemplates()
	EndUpdateTemplates(forceRebuild bool) error
}

// ModStatus is the scan outcome for one installed mod.
type ModStatus struct {
	Mod   *types.Mod
	State State
	// Release is the selected update when State is UpdateAvailable.
	Release types.Release
	Err     error
}

// Update pairs an installed mod with the release that replaces it.
type Update struct {
	Mod     *types.Mod
	Release types.Release
}

func (u Update) String() string {
	return fmt.Sprintf("%s %s -> %s (factorio %s)", u.Mod.Name, u.Mod.Version, u.Release.Version, u.Release.FactorioVersion)
}

// ScanResult lists every mod's status and the updates found.
type ScanResult struct {
	Statuses []ModStatus
	Updates  []Update
}

// ApplyResult reports what a batch applied and what it left.
type ApplyResult struct {
	Applied []types.Replacement
	// Remaining holds the updates not attempted, starting with the one that
	// failed, if any.
	Remaining []Update
}

// Options tune a Resolver.
type Options struct {
	// AlwaysUpdatePacked keeps every downloaded release as an archive, even
	// when the mod it replaces was unpacked.
	AlwaysUpdatePacked bool
	Metrics            *metrics.Metrics
}

// Resolver scans for and applies updates.
type Resolver struct {
	library Library
	storage Storage
	catalog catalog.Catalog
	batches Batcher
	opts    Options
	logger  zerolog.Logger
}

// New creates a Resolver.
func New(library Library, storage Storage, cat catalog.Catalog, batches Batcher, opts Options) *Resolver {
	return &Resolver{
		library: library,
		storage: storage,
		catalog: cat,
		batches: batches,
		opts:    opts,
		logger:  logging.GetLogger("updates"),
	}
}

// GetModUpdates queries the catalog for every installed mod. A mod the
// catalog has no data for is marked QueryFailed and the scan continues. Any
// other failure aborts the scan.
func (r *Resolver) GetModUpdates(ctx context.Context, progress types.ProgressFunc) (*ScanResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "updates.scan")
	defer span.End()
	defer r.opts.Metrics.Time("scan")()

	mods := r.library.All()
	pol := r.library.Policy()
	result := &ScanResult{Statuses: make([]ModStatus, len(mods))}
	for i, mod := range mods {
		result.Statuses[i] = ModStatus{Mod: mod, State: Unknown}
	}

	infos := make(map[string]*types.ExtendedModInfo)
	failures := make(map[string]error)

	for i, mod := range mods {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCancelled, "update scan cancelled")
		}
		progress.Report(float64(i)/float64(len(mods)), "Checking "+mod.Name)
		status := &result.Statuses[i]

		info, queried := infos[mod.Name]
		qerr, failed := failures[mod.Name]
		if !queried && !failed {
			var err error
			info, err = r.catalog.Query(ctx, mod.Name)
			if err != nil {
				if !errors.IsErrorCode(err, errors.ErrCatalogNoData) {
					tracing.RecordError(span, err)
					return nil, err
				}
				r.logger.Info().Str("mod", mod.Name).Msg("Catalog has no data, skipping")
				failures[mod.Name] = err
				qerr, failed = err, true
			} else {
				infos[mod.Name] = info
			}
		}

		if failed {
			status.State = QueryFailed
			status.Err = qerr
			continue
		}

		status.State = Queried
		release, ok := pol.SelectUpdate(mod, info.Releases)
		if !ok {
			status.State = UpToDate
			continue
		}
		status.State = UpdateAvailable
		status.Release = release
		result.Updates = append(result.Updates, Update{Mod: mod, Release: release})
		r.logger.Debug().Str("mod", mod.Name).Str("installed", mod.Version.String()).
			Str("available", release.Version.String()).Msg("Update available")
	}

	progress.Report(1, "Update check complete")
	r.opts.Metrics.UpdatesAvailable(len(result.Updates))
	span.SetAttributes(attribute.Int("mods", len(mods)), attribute.Int("updates", len(result.Updates)))
	r.logger.Info().Int("mods", len(mods)).Int("updates", len(result.Updates)).Msg("Update scan finished")
	return result, nil
}

// ApplyUpdates applies updates in order. ctx is checked before each item;
// an item in progress is never interrupted. The first failure stops the
// batch and is returned with everything applied so far.
func (r *Resolver) ApplyUpdates(ctx context.Context, updates []Update, creds types.Credentials, progress types.ProgressFunc) (*ApplyResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "updates.apply")
	defer span.End()
	defer r.opts.Metrics.Time("apply")()

	result := &ApplyResult{}
	n := float64(len(updates))
	for i, u := range updates {
		if err := ctx.Err(); err != nil {
			result.Remaining = updates[i:]
			r.logger.Info().Int("applied", i).Int("remaining", len(updates)-i).Msg("Update batch cancelled")
			return result, errors.Wrap(err, errors.ErrCancelled, "update batch cancelled")
		}

		item := progress.Scale(float64(i)/n, 1/n)
		replacement, err := r.applyOne(context.WithoutCancel(ctx), u, creds, item)
		if replacement != nil {
			result.Applied = append(result.Applied, *replacement)
		}
		if err != nil {
			r.opts.Metrics.UpdateApplied(metrics.ResultError)
			if replacement == nil {
				result.Remaining = updates[i:]
			} else {
				result.Remaining = updates[i+1:]
			}
			tracing.RecordError(span, err)
			return result, err
		}
		r.opts.Metrics.UpdateApplied(metrics.ResultOK)
	}

	progress.Report(1, "Updates applied")
	span.SetAttributes(attribute.Int("applied", len(result.Applied)))
	return result, nil
}

// applyOne runs the full sequence for one update. A nil replacement means the
// registry was not touched.
func (r *Resolver) applyOne(ctx context.Context, u Update, creds types.Credentials, progress types.ProgressFunc) (*types.Replacement, error) {
	ctx, span := tracing.Tracer().Start(ctx, "updates.apply_one")
	defer span.End()
	span.SetAttributes(
		attribute.String("mod.name", u.Mod.Name),
		attribute.String("mod.from", u.Mod.Version.String()),
		attribute.String("mod.to", u.Release.Version.String()),
	)

	old := u.Mod
	data, err := r.catalog.Download(ctx, u.Release, creds, progress.Scale(0, 0.8))
	if err != nil {
		return nil, err
	}

	location, err := r.storage.Place(u.Release.FactorioVersion, ArchiveName(u.Release), data)
	if err != nil {
		return nil, err
	}

	if !r.opts.AlwaysUpdatePacked && !old.Packed {
		progress.Report(0.85, "Extracting "+u.Release.FileName)
		dir, err := r.storage.Extract(location)
		if err != nil {
			r.discard(location)
			return nil, err
		}
		r.discard(location)
		location = dir
	}

	next, err := r.storage.ReadInfo(location, u.Release.FactorioVersion)
	if err != nil {
		r.discard(location)
		return nil, err
	}
	if next.Name != old.Name || !next.Version.Equal(u.Release.Version) {
		r.discard(location)
		return nil, errors.Newf(errors.ErrModInvalid, "downloaded archive is %s, expected %s %s",
			next, old.Name, u.Release.Version)
	}
	next.Active = old.Active

	r.batches.BeginUpdateTemplates()
	if err := r.library.Replace(old, next); err != nil {
		_ = r.batches.EndUpdateTemplates(false)
		r.discard(location)
		return nil, err
	}
	replacement := &types.Replacement{Old: old, New: next}
	endErr := r.batches.EndUpdateTemplates(true)

	if err := r.storage.Delete(old.Location); err != nil {
		r.logger.Warn().Err(err).Str("path", old.Location).Msg("Failed to delete replaced mod")
	}
	progress.Report(1, fmt.Sprintf("Updated %s to %s", old.Name, next.Version))
	r.logger.Info().Str("mod", old.Name).Str("from", old.Version.String()).
		Str("to", next.Version.String()).Bool("packed", next.Packed).Msg("Update applied")
	return replacement, endErr
}

func (r *Resolver) discard(location string) {
	if err := r.storage.Delete(location); err != nil {
		r.logger.Warn().Err(err).Str("path", location).Msg("Failed to clean up after failed update")
	}
}

// ArchiveName is the file name a release is stored under.
func ArchiveName(release types.Release) string {
	if release.FileName != "" {
		return release.FileName
	}
	return fmt.Sprintf("%s_%s%s", release.ModName, release.Version, paths.ArchiveExtension)
}
