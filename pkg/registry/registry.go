package registry

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/logging"
	"github.com/arthur-debert/modkeeper/pkg/policy"
	"github.com/arthur-debert/modkeeper/pkg/semver"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// References is the part of the modpack graph the registry cascades into.
// Implementations must not notify; the registry reports the combined change.
type References interface {
	// RemoveModReferences drops every reference to mod and returns the
	// modpacks that were edited.
	RemoveModReferences(mod *types.Mod) []*types.Modpack
	// ExchangeMods retargets every reference to old onto new, keeping
	// positions, and returns the modpacks that were edited.
	ExchangeMods(old, new *types.Mod) []*types.Modpack
}

// Notifier receives one change set per mutation.
type Notifier interface {
	Notify(change types.ChangeSet)
}

// Registry owns all Mod entities.
type Registry struct {
	mu       sync.RWMutex
	policy   policy.Policy
	mods     map[string][]*types.Mod
	refs     References
	notifier Notifier
	logger   zerolog.Logger
}

// New creates an empty registry. refs and notifier may be nil.
func New(p policy.Policy, refs References, notifier Notifier) *Registry {
	return &Registry{
		policy:   p,
		mods:     make(map[string][]*types.Mod),
		refs:     refs,
		notifier: notifier,
		logger:   logging.GetLogger("registry"),
	}
}

// Policy returns the identity policy in force.
func (r *Registry) Policy() policy.Policy {
	return r.policy
}

// Add registers mod. A mod colliding with an existing one under the policy
// is rejected with ErrAlreadyExists; existing entries are never replaced.
func (r *Registry) Add(mod *types.Mod) error {
	if err := validate(mod); err != nil {
		return err
	}

	r.mu.Lock()
	if err := r.checkSlot(mod, nil); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mods[mod.Name] = append(r.mods[mod.Name], mod)
	r.mu.Unlock()

	r.logger.Debug().Str("mod", mod.Name).Str("version", mod.Version.String()).
		Str("factorio", mod.FactorioVersion).Msg("Mod added")
	r.notify(types.ChangeSet{AddedMods: []*types.Mod{mod}})
	return nil
}

// Find returns every installed variant of name, ordered by Factorio version
// then version.
func (r *Registry) Find(name string) []*types.Mod {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variants := append([]*types.Mod(nil), r.mods[name]...)
	sortMods(variants)
	return variants
}

// FindVersion returns the variant of name with exactly version, or nil.
func (r *Registry) FindVersion(name string, version semver.Version) *types.Mod {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.mods[name] {
		if m.Version.Equal(version) {
			return m
		}
	}
	return nil
}

// FindSlot returns the mod occupying the identity slot name/factorioVersion.
func (r *Registry) FindSlot(name, factorioVersion string) *types.Mod {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.policy.Occupant(r.mods[name], name, factorioVersion)
}

// ContainsByFactorioVersion reports whether a variant of name targets
// factorioVersion.
func (r *Registry) ContainsByFactorioVersion(name, factorioVersion string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.mods[name] {
		if m.FactorioVersion == factorioVersion {
			return true
		}
	}
	return false
}

// Contains reports whether mod is a registered entity.
func (r *Registry) Contains(mod *types.Mod) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return indexOf(r.mods[mod.Name], mod) >= 0
}

// Remove unregisters mod and drops every modpack reference to it.
func (r *Registry) Remove(mod *types.Mod) error {
	r.mu.Lock()
	if !r.detach(mod) {
		r.mu.Unlock()
		return errors.Newf(errors.ErrNotFound, "mod %s is not installed", mod)
	}
	r.mu.Unlock()

	var edited []*types.Modpack
	if r.refs != nil {
		edited = r.refs.RemoveModReferences(mod)
	}

	r.logger.Debug().Str("mod", mod.Name).Str("version", mod.Version.String()).
		Int("modpacks", len(edited)).Msg("Mod removed")
	r.notify(types.ChangeSet{RemovedMods: []*types.Mod{mod}, EditedModpacks: edited})
	return nil
}

// Replace retires old in favour of next: next is added (its identity check
// ignores old), every modpack reference to old is retargeted to next in
// place, then old is removed.
func (r *Registry) Replace(old, next *types.Mod) error {
	if err := validate(next); err != nil {
		return err
	}

	r.mu.Lock()
	if indexOf(r.mods[old.Name], old) < 0 {
		r.mu.Unlock()
		return errors.Newf(errors.ErrNotFound, "mod %s is not installed", old)
	}
	if err := r.checkSlot(next, old); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mods[next.Name] = append(r.mods[next.Name], next)
	r.mu.Unlock()

	var edited []*types.Modpack
	if r.refs != nil {
		edited = r.refs.ExchangeMods(old, next)
	}

	r.mu.Lock()
	r.detach(old)
	r.mu.Unlock()

	r.logger.Info().Str("mod", old.Name).Str("from", old.Version.String()).
		Str("to", next.Version.String()).Msg("Mod replaced")
	r.notify(types.ChangeSet{
		ReplacedMods:   []types.Replacement{{Old: old, New: next}},
		EditedModpacks: edited,
	})
	return nil
}

// SetActive sets the Active flag on every mod in mods.
func (r *Registry) SetActive(mods []*types.Mod, active bool) {
	if len(mods) == 0 {
		return
	}
	r.mu.Lock()
	changed := make([]*types.Mod, 0, len(mods))
	for _, m := range mods {
		if m.Active != active {
			m.Active = active
			changed = append(changed, m)
		}
	}
	r.mu.Unlock()

	if len(changed) > 0 {
		r.notify(types.ChangeSet{ActivatedMods: changed})
	}
}

// All returns a snapshot of every mod ordered by name, Factorio version and
// version.
func (r *Registry) All() []*types.Mod {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*types.Mod
	for _, variants := range r.mods {
		all = append(all, variants...)
	}
	sortMods(all)
	return all
}

// Len returns the number of registered mods.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, variants := range r.mods {
		n += len(variants)
	}
	return n
}

// checkSlot returns ErrAlreadyExists when another mod than ignore holds
// mod's identity slot. Callers hold the lock.
func (r *Registry) checkSlot(mod, ignore *types.Mod) error {
	for _, existing := range r.mods[mod.Name] {
		if existing == mod {
			return errors.Newf(errors.ErrAlreadyExists, "mod %s is already registered", mod)
		}
		if existing == ignore {
			continue
		}
		if r.policy.SameSlot(existing, mod.Name, mod.FactorioVersion) {
			return errors.Newf(errors.ErrAlreadyExists, "mod %s collides with installed %s", mod, existing).
				WithDetail("existing", existing.String()).
				WithDetail("mode", string(r.policy.Mode))
		}
	}
	return nil
}

// detach removes mod from the variants table. Callers hold the lock.
func (r *Registry) detach(mod *types.Mod) bool {
	variants := r.mods[mod.Name]
	i := indexOf(variants, mod)
	if i < 0 {
		return false
	}
	variants = append(variants[:i:i], variants[i+1:]...)
	if len(variants) == 0 {
		delete(r.mods, mod.Name)
	} else {
		r.mods[mod.Name] = variants
	}
	return true
}

func (r *Registry) notify(change types.ChangeSet) {
	if r.notifier != nil {
		r.notifier.Notify(change)
	}
}

func validate(mod *types.Mod) error {
	if mod == nil || mod.Name == "" {
		return errors.New(errors.ErrModInvalid, "mod name cannot be empty")
	}
	if mod.Version.IsZero() {
		return errors.Newf(errors.ErrModInvalid, "mod %s has no version", mod.Name)
	}
	if mod.FactorioVersion == "" {
		return errors.Newf(errors.ErrModInvalid, "mod %s has no factorio version", mod.Name)
	}
	return nil
}

func indexOf(mods []*types.Mod, mod *types.Mod) int {
	for i, m := range mods {
		if m == mod {
			return i
		}
	}
	return -1
}

func sortMods(mods []*types.Mod) {
	sort.SliceStable(mods, func(i, j int) bool {
		a, b := mods[i], mods[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if c := semver.CompareFactorio(a.FactorioVersion, b.FactorioVersion); c != 0 {
			return c < 0
		}
		return semver.Compare(a.Version, b.Version) < 0
	})
}
