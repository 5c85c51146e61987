package activation

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/logging"
	"github.com/arthur-debert/modkeeper/pkg/metrics"
	"github.com/arthur-debert/modkeeper/pkg/templates"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// ModSource is the registry as seen by the aggregator.
type ModSource interface {
	All() []*types.Mod
	SetActive(mods []*types.Mod, active bool)
}

// ModpackSource is the modpack graph as seen by the aggregator.
type ModpackSource interface {
	All() []*types.Modpack
	ModsOf(pack *types.Modpack) []*types.Mod
}

// Aggregator computes tri-state activation and batches template writes.
type Aggregator struct {
	mu      sync.Mutex
	store   templates.Store
	mods    ModSource
	packs   ModpackSource
	metrics *metrics.Metrics
	logger  zerolog.Logger

	depth     int
	dirty     bool
	bulkMods  bool
	bulkPacks bool

	allMods     types.TriState
	allModpacks types.TriState
}

// New creates an aggregator writing through store. Sources are attached
// later with Attach since the registry and graph notify the aggregator.
func New(store templates.Store) *Aggregator {
	return &Aggregator{
		store:  store,
		logger: logging.GetLogger("activation"),
	}
}

// Attach wires the mod and modpack sources.
func (a *Aggregator) Attach(mods ModSource, packs ModpackSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mods = mods
	a.packs = packs
}

// SetMetrics records template writes on m.
func (a *Aggregator) SetMetrics(m *metrics.Metrics) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics = m
}

// Notify reacts to one change set. Outside a batch it recomputes and saves;
// a failed save is logged since notifications cannot return errors.
func (a *Aggregator) Notify(change types.ChangeSet) {
	if change.IsEmpty() {
		return
	}

	a.mu.Lock()
	if a.depth > 0 {
		a.dirty = true
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	a.Recompute()
	if err := a.SaveTemplates(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to save templates")
	}
}

// BeginUpdateTemplates suspends persistence. Batches nest.
func (a *Aggregator) BeginUpdateTemplates() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.depth++
}

// EndUpdateTemplates closes a batch. Closing the outermost batch performs
// exactly one recompute and one write when forceRebuild is set or any change
// arrived during the batch.
func (a *Aggregator) EndUpdateTemplates(forceRebuild bool) error {
	a.mu.Lock()
	if a.depth == 0 {
		a.mu.Unlock()
		return errors.New(errors.ErrInternal, "EndUpdateTemplates without matching BeginUpdateTemplates")
	}
	a.depth--
	if a.depth > 0 {
		if forceRebuild {
			a.dirty = true
		}
		a.mu.Unlock()
		return nil
	}
	needed := forceRebuild || a.dirty
	a.dirty = false
	a.mu.Unlock()

	if !needed {
		return nil
	}
	a.Recompute()
	return a.SaveTemplates()
}

// Restore runs fn inside a batch and recomputes afterwards without writing.
// It is used while loading persisted state, which must not be written back.
func (a *Aggregator) Restore(fn func() error) error {
	a.BeginUpdateTemplates()
	err := fn()

	a.mu.Lock()
	a.depth--
	a.dirty = false
	a.mu.Unlock()

	a.Recompute()
	return err
}

// InBatch reports whether persistence is suspended.
func (a *Aggregator) InBatch() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.depth > 0
}

// Recompute refreshes every modpack's tri-state and the two global
// aggregates. Empty sets and sets under bulk assignment keep their previous
// value.
func (a *Aggregator) Recompute() {
	a.mu.Lock()
	mods, packs := a.mods, a.packs
	bulkMods, bulkPacks := a.bulkMods, a.bulkPacks
	a.mu.Unlock()
	if mods == nil || packs == nil {
		return
	}

	allPacks := packs.All()
	// hasValue[p] is false for packs that hold no mod at any depth.
	hasValue := make(map[*types.Modpack]bool, len(allPacks))
	done := make(map[*types.Modpack]bool, len(allPacks))
	var compute func(p *types.Modpack) (types.TriState, bool)
	compute = func(p *types.Modpack) (types.TriState, bool) {
		if done[p] {
			return p.Active, hasValue[p]
		}
		done[p] = true
		values := make([]types.TriState, 0, len(p.References))
		for _, ref := range p.References {
			if nested, ok := ref.(*types.ModpackReference); ok {
				if state, ok := compute(nested.Modpack); ok {
					values = append(values, state)
				}
				continue
			}
			values = append(values, ref.State())
		}
		state, ok := types.Aggregate(values)
		if ok && !bulkPacks {
			p.Active = state
		}
		hasValue[p] = ok
		return p.Active, ok
	}

	packStates := make([]types.TriState, 0, len(allPacks))
	for _, p := range allPacks {
		if state, ok := compute(p); ok {
			packStates = append(packStates, state)
		}
	}

	allMods := mods.All()
	modStates := make([]types.TriState, 0, len(allMods))
	for _, m := range allMods {
		modStates = append(modStates, types.FromBool(m.Active))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if state, ok := types.Aggregate(modStates); ok && !bulkMods {
		a.allMods = state
	}
	if state, ok := types.Aggregate(packStates); ok && !bulkPacks {
		a.allModpacks = state
	}
}

// AllModsActive is the aggregate over every installed mod.
func (a *Aggregator) AllModsActive() types.TriState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allMods
}

// AllModpacksActive is the aggregate over every modpack.
func (a *Aggregator) AllModpacksActive() types.TriState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allModpacks
}

// SetModsActive sets many mods in one batch: one recompute, one write.
func (a *Aggregator) SetModsActive(mods []*types.Mod, active bool) error {
	if len(mods) == 0 {
		return nil
	}
	a.mu.Lock()
	if a.bulkMods {
		a.mu.Unlock()
		return nil
	}
	source := a.mods
	a.bulkMods = true
	a.mu.Unlock()

	a.BeginUpdateTemplates()
	source.SetActive(mods, active)

	a.mu.Lock()
	a.bulkMods = false
	a.mu.Unlock()
	return a.EndUpdateTemplates(true)
}

// SetModpacksActive activates or deactivates every mod held by the given
// modpacks, including nested ones, in one batch.
func (a *Aggregator) SetModpacksActive(modpacks []*types.Modpack, active bool) error {
	if len(modpacks) == 0 {
		return nil
	}
	a.mu.Lock()
	if a.bulkPacks {
		a.mu.Unlock()
		return nil
	}
	mods, packs := a.mods, a.packs
	a.bulkPacks = true
	a.mu.Unlock()

	a.BeginUpdateTemplates()
	for _, p := range modpacks {
		mods.SetActive(packs.ModsOf(p), active)
	}

	a.mu.Lock()
	a.bulkPacks = false
	a.mu.Unlock()
	return a.EndUpdateTemplates(true)
}

// SaveTemplates writes the current library through the store.
func (a *Aggregator) SaveTemplates() error {
	a.mu.Lock()
	mods, packs, store, m := a.mods, a.packs, a.store, a.metrics
	a.mu.Unlock()
	if store == nil || mods == nil || packs == nil {
		return nil
	}

	lists, modpacks := templates.Build(mods.All(), packs.All())
	if err := store.Save(lists, modpacks); err != nil {
		return errors.Wrap(err, errors.ErrTemplateSave, "failed to persist activation templates")
	}
	m.TemplateWrite()
	return nil
}
