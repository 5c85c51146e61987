package library

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/modkeeper/pkg/activation"
	"github.com/arthur-debert/modkeeper/pkg/catalog"
	"github.com/arthur-debert/modkeeper/pkg/config"
	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/filesystem"
	"github.com/arthur-debert/modkeeper/pkg/logging"
	"github.com/arthur-debert/modkeeper/pkg/manifest"
	"github.com/arthur-debert/modkeeper/pkg/metrics"
	"github.com/arthur-debert/modkeeper/pkg/modpacks"
	"github.com/arthur-debert/modkeeper/pkg/paths"
	"github.com/arthur-debert/modkeeper/pkg/policy"
	"github.com/arthur-debert/modkeeper/pkg/registry"
	"github.com/arthur-debert/modkeeper/pkg/semver"
	"github.com/arthur-debert/modkeeper/pkg/storage"
	"github.com/arthur-debert/modkeeper/pkg/templates"
	"github.com/arthur-debert/modkeeper/pkg/types"
	"github.com/arthur-debert/modkeeper/pkg/updates"
)

// Options override collaborators. Zero values select the production ones.
type Options struct {
	FS      types.FS
	Catalog catalog.Catalog
	Metrics *metrics.Metrics
}

// Library is the wired set of components.
type Library struct {
	Config     *config.Config
	Paths      *paths.Paths
	FS         types.FS
	Policy     policy.Policy
	Registry   *registry.Registry
	Graph      *modpacks.Graph
	Aggregator *activation.Aggregator
	Storage    *storage.Storage
	Store      templates.Store
	Catalog    catalog.Catalog
	Metrics    *metrics.Metrics
	Updates    *updates.Resolver
	Importer   *manifest.Importer

	logger zerolog.Logger
}

// Open wires every component from cfg and restores persisted state.
func Open(cfg *config.Config, opts Options) (*Library, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}
	p, err := paths.New(cfg.Paths.ModsDir, cfg.Paths.DataDir)
	if err != nil {
		return nil, err
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	cat := opts.Catalog
	if cat == nil {
		client, err := catalog.New(catalog.Options{
			BaseURL:  cfg.Catalog.BaseURL,
			Timeout:  cfg.Catalog.Timeout,
			CacheTTL: cfg.Catalog.CacheTTL,
			Metrics:  opts.Metrics,
		})
		if err != nil {
			return nil, err
		}
		cat = client
	}

	pol := policy.New(mode)
	store := templates.NewFileStore(fs, p)
	agg := activation.New(store)
	agg.SetMetrics(opts.Metrics)
	graph := modpacks.New(agg)
	reg := registry.New(pol, graph, agg)
	agg.Attach(reg, graph)
	st := storage.New(fs, p)

	lib := &Library{
		Config:     cfg,
		Paths:      p,
		FS:         fs,
		Policy:     pol,
		Registry:   reg,
		Graph:      graph,
		Aggregator: agg,
		Storage:    st,
		Store:      store,
		Catalog:    cat,
		Metrics:    opts.Metrics,
		Updates: updates.New(reg, st, cat, agg, updates.Options{
			AlwaysUpdatePacked: cfg.Updates.AlwaysPacked,
			Metrics:            opts.Metrics,
		}),
		Importer: manifest.NewImporter(reg, graph, st, cat, agg, opts.Metrics),
		logger:   logging.GetLogger("library"),
	}

	if err := agg.Restore(lib.restore); err != nil {
		return nil, err
	}
	lib.logger.Debug().Str("mode", string(mode)).Int("mods", reg.Len()).Int("modpacks", graph.Len()).
		Msg("Library opened")
	return lib, nil
}

func (l *Library) restore() error {
	mods, err := l.Storage.Scan()
	if err != nil {
		return err
	}
	lists, packs, err := l.Store.Load()
	if err != nil {
		return err
	}

	for _, mod := range mods {
		mod.Active = lists[mod.FactorioVersion].Enabled(mod.Name)
		if err := l.Registry.Add(mod); err != nil {
			l.logger.Warn().Err(err).Str("path", mod.Location).Msg("Ignoring mod that collides with another")
		}
	}

	byID := make(map[string]*types.Modpack, len(packs))
	for _, tmpl := range packs {
		id, _ := uuid.Parse(tmpl.ID)
		pack, err := l.Graph.Restore(id, tmpl.Name)
		if err != nil {
			l.logger.Warn().Err(err).Str("modpack", tmpl.Name).Msg("Ignoring stored modpack")
			continue
		}
		byID[tmpl.ID] = pack
	}

	for _, tmpl := range packs {
		pack := byID[tmpl.ID]
		if pack == nil {
			continue
		}
		for _, ref := range tmpl.References {
			if ref.Modpack != "" {
				child := byID[ref.Modpack]
				if child == nil {
					l.logger.Warn().Str("modpack", tmpl.Name).Str("id", ref.Modpack).Msg("Dropping reference to missing modpack")
					continue
				}
				if _, err := l.Graph.AddModpack(pack, child); err != nil {
					l.logger.Warn().Err(err).Str("modpack", tmpl.Name).Msg("Dropping nested modpack")
				}
				continue
			}
			mod := l.findStored(ref)
			if mod == nil {
				l.logger.Warn().Str("modpack", tmpl.Name).Str("mod", ref.Mod).Str("version", ref.Version).
					Msg("Dropping reference to missing mod")
				continue
			}
			if _, err := l.Graph.AddMod(pack, mod); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Library) findStored(ref templates.ReferenceTemplate) *types.Mod {
	version, err := semver.ParseVersion(ref.Version)
	if err != nil {
		return nil
	}
	for _, m := range l.Registry.Find(ref.Mod) {
		if m.Version.Equal(version) && (ref.FactorioVersion == "" || m.FactorioVersion == ref.FactorioVersion) {
			return m
		}
	}
	return nil
}

// AddModFile installs an archive from outside the mods directory, moving it
// when move is set. A mod whose identity slot is taken is rejected before
// any file is touched.
func (l *Library) AddModFile(path string, move bool) (*types.Mod, error) {
	stat, err := l.FS.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "%s not found", path)
	}
	if stat.IsDir() || !strings.EqualFold(filepath.Ext(path), paths.ArchiveExtension) {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is not a mod archive", path)
	}

	info, err := l.Storage.ReadInfo(path, "")
	if err != nil {
		return nil, err
	}
	if existing := l.Registry.FindSlot(info.Name, info.FactorioVersion); existing != nil {
		return nil, errors.Newf(errors.ErrAlreadyExists, "%s is already installed as %s", info.Name, existing).
			WithDetail("existing", existing.String())
	}

	location, err := l.Storage.Import(path, info.FactorioVersion, move)
	if err != nil {
		return nil, err
	}
	mod, err := l.Storage.ReadInfo(location, info.FactorioVersion)
	if err == nil {
		err = l.Registry.Add(mod)
	}
	if err != nil {
		_ = l.Storage.Delete(location)
		return nil, err
	}
	l.logger.Info().Str("mod", mod.Name).Str("version", mod.Version.String()).Msg("Mod added from file")
	return mod, nil
}

// DeleteMods removes mods from the registry, every modpack and disk, with
// one template write.
func (l *Library) DeleteMods(mods []*types.Mod) (err error) {
	l.Aggregator.BeginUpdateTemplates()
	defer func() {
		if endErr := l.Aggregator.EndUpdateTemplates(false); err == nil {
			err = endErr
		}
	}()

	for _, mod := range mods {
		if err := l.Registry.Remove(mod); err != nil {
			return err
		}
		if err := l.Storage.Delete(mod.Location); err != nil {
			return err
		}
	}
	return nil
}

// DeleteModpacks removes modpacks and every reference to them.
func (l *Library) DeleteModpacks(packs []*types.Modpack) (err error) {
	l.Aggregator.BeginUpdateTemplates()
	defer func() {
		if endErr := l.Aggregator.EndUpdateTemplates(false); err == nil {
			err = endErr
		}
	}()

	for _, pack := range packs {
		if err := l.Graph.Remove(pack); err != nil {
			return err
		}
	}
	return nil
}

// Filter returns mods whose name or title contains pattern, ignoring case,
// optionally restricted to one Factorio version.
func (l *Library) Filter(pattern, factorioVersion string) []*types.Mod {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	var out []*types.Mod
	for _, m := range l.Registry.All() {
		if factorioVersion != "" && m.FactorioVersion != factorioVersion {
			continue
		}
		if pattern != "" &&
			!strings.Contains(strings.ToLower(m.Name), pattern) &&
			!strings.Contains(strings.ToLower(m.Title), pattern) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ResolveMods looks up "name" or "name@version" specs. A bare name matches
// every installed variant.
func (l *Library) ResolveMods(specs []string) ([]*types.Mod, error) {
	var out []*types.Mod
	for _, spec := range specs {
		name, rawVersion, pinned := strings.Cut(spec, "@")
		if !pinned {
			variants := l.Registry.Find(name)
			if len(variants) == 0 {
				return nil, errors.Newf(errors.ErrNotFound, "mod %s is not installed", name)
			}
			out = append(out, variants...)
			continue
		}
		version, err := semver.ParseVersion(rawVersion)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid version in %q", spec)
		}
		mod := l.Registry.FindVersion(name, version)
		if mod == nil {
			return nil, errors.Newf(errors.ErrNotFound, "mod %s is not installed", spec)
		}
		out = append(out, mod)
	}
	return out, nil
}

// ResolveModpacks looks up modpacks by name.
func (l *Library) ResolveModpacks(names []string) ([]*types.Modpack, error) {
	out := make([]*types.Modpack, 0, len(names))
	for _, name := range names {
		pack := l.Graph.Find(name)
		if pack == nil {
			return nil, errors.Newf(errors.ErrNotFound, "modpack %q not found", name)
		}
		out = append(out, pack)
	}
	return out, nil
}
