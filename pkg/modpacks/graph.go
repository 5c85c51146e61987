package modpacks

import (
	"fmt"
	"strings"
	"sync"

	graphlib "github.com/dominikbraun/graph"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/logging"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// Notifier receives one change set per mutation.
type Notifier interface {
	Notify(change types.ChangeSet)
}

// Graph owns all modpacks.
type Graph struct {
	mu       sync.RWMutex
	packs    []*types.Modpack
	byID     map[uuid.UUID]*types.Modpack
	nesting  graphlib.Graph[string, string]
	notifier Notifier
	logger   zerolog.Logger
}

// New creates an empty graph. notifier may be nil.
func New(notifier Notifier) *Graph {
	return &Graph{
		byID:     make(map[uuid.UUID]*types.Modpack),
		nesting:  graphlib.New(graphlib.StringHash, graphlib.Directed()),
		notifier: notifier,
		logger:   logging.GetLogger("modpacks"),
	}
}

// Create adds an empty modpack named name.
func (g *Graph) Create(name string) (*types.Modpack, error) {
	return g.create(name, uuid.Nil)
}

// Restore adds a modpack loaded from a template, keeping its stored ID. A nil
// id, or one already in use, gets a fresh one.
func (g *Graph) Restore(id uuid.UUID, name string) (*types.Modpack, error) {
	return g.create(name, id)
}

func (g *Graph) create(name string, id uuid.UUID) (*types.Modpack, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.ErrModpackInvalid, "modpack name cannot be empty")
	}

	g.mu.Lock()
	if g.findLocked(name) != nil {
		g.mu.Unlock()
		return nil, errors.Newf(errors.ErrAlreadyExists, "modpack %q already exists", name)
	}
	pack := types.NewModpack(name)
	if id != uuid.Nil {
		if _, taken := g.byID[id]; taken {
			g.logger.Warn().Str("modpack", name).Str("id", id.String()).
				Str("newID", pack.ID.String()).Msg("Stored modpack ID already in use, assigning a new one")
		} else {
			pack.ID = id
		}
	}
	g.insertLocked(pack)
	g.mu.Unlock()

	g.logger.Debug().Str("modpack", name).Msg("Modpack created")
	g.notify(types.ChangeSet{AddedModpacks: []*types.Modpack{pack}})
	return pack, nil
}

// CreateUnique creates a modpack named base, or "base 1", "base 2", ... when
// base is taken.
func (g *Graph) CreateUnique(base string) (*types.Modpack, error) {
	g.mu.RLock()
	name := base
	for counter := 1; g.findLocked(name) != nil; counter++ {
		name = fmt.Sprintf("%s %d", base, counter)
	}
	g.mu.RUnlock()
	return g.Create(name)
}

// Rename changes a modpack's name, keeping names unique.
func (g *Graph) Rename(pack *types.Modpack, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New(errors.ErrModpackInvalid, "modpack name cannot be empty")
	}

	g.mu.Lock()
	if err := g.requireLocked(pack); err != nil {
		g.mu.Unlock()
		return err
	}
	if existing := g.findLocked(name); existing != nil && existing != pack {
		g.mu.Unlock()
		return errors.Newf(errors.ErrAlreadyExists, "modpack %q already exists", name)
	}
	pack.Name = name
	g.mu.Unlock()

	g.notify(types.ChangeSet{EditedModpacks: []*types.Modpack{pack}})
	return nil
}

// Find returns the modpack named name, or nil.
func (g *Graph) Find(name string) *types.Modpack {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.findLocked(name)
}

// Get returns the modpack with id, or nil.
func (g *Graph) Get(id uuid.UUID) *types.Modpack {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.byID[id]
}

// All returns every modpack in creation order.
func (g *Graph) All() []*types.Modpack {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*types.Modpack(nil), g.packs...)
}

// Len returns the number of modpacks.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.packs)
}

// Remove detaches every reference to pack across the graph, then deletes it.
func (g *Graph) Remove(pack *types.Modpack) error {
	g.mu.Lock()
	if err := g.requireLocked(pack); err != nil {
		g.mu.Unlock()
		return err
	}

	var edited []*types.Modpack
	for _, parent := range g.packs {
		if ref := parent.ModpackRef(pack); ref != nil {
			g.dropLocked(parent, ref)
			edited = append(edited, parent)
		}
	}
	for _, ref := range pack.References {
		if child, ok := ref.(*types.ModpackReference); ok {
			_ = g.nesting.RemoveEdge(pack.ID.String(), child.Modpack.ID.String())
		}
	}
	if err := g.nesting.RemoveVertex(pack.ID.String()); err != nil {
		g.mu.Unlock()
		return errors.Wrapf(err, errors.ErrInternal, "failed to remove modpack %q from nesting graph", pack.Name)
	}

	for i, p := range g.packs {
		if p == pack {
			g.packs = append(g.packs[:i:i], g.packs[i+1:]...)
			break
		}
	}
	delete(g.byID, pack.ID)
	g.mu.Unlock()

	g.logger.Debug().Str("modpack", pack.Name).Int("parents", len(edited)).Msg("Modpack removed")
	g.notify(types.ChangeSet{RemovedModpacks: []*types.Modpack{pack}, EditedModpacks: edited})
	return nil
}

// AddMod appends a reference to mod. Adding a mod the modpack already
// references is a no-op and returns false.
func (g *Graph) AddMod(pack *types.Modpack, mod *types.Mod) (bool, error) {
	g.mu.Lock()
	if err := g.requireLocked(pack); err != nil {
		g.mu.Unlock()
		return false, err
	}
	if pack.ModRef(mod) != nil {
		g.mu.Unlock()
		return false, nil
	}
	pack.References = append(pack.References, types.NewModReference(pack, mod))
	g.mu.Unlock()

	g.notify(types.ChangeSet{EditedModpacks: []*types.Modpack{pack}})
	return true, nil
}

// AddModpack appends a nested reference to child. The insertion is rejected
// with ErrCycle when parent is reachable from child (or is child), before
// any edge is committed. Adding an existing nesting is a no-op.
func (g *Graph) AddModpack(parent, child *types.Modpack) (bool, error) {
	g.mu.Lock()
	if err := g.requireLocked(parent); err != nil {
		g.mu.Unlock()
		return false, err
	}
	if err := g.requireLocked(child); err != nil {
		g.mu.Unlock()
		return false, err
	}
	if parent.ModpackRef(child) != nil {
		g.mu.Unlock()
		return false, nil
	}
	if g.reachableLocked(child, parent) {
		g.mu.Unlock()
		return false, errors.Newf(errors.ErrCycle, "modpack %q already contains %q", child.Name, parent.Name).
			WithDetail("parent", parent.Name).
			WithDetail("child", child.Name)
	}
	if err := g.nesting.AddEdge(parent.ID.String(), child.ID.String()); err != nil {
		g.mu.Unlock()
		return false, errors.Wrapf(err, errors.ErrInternal, "failed to nest %q in %q", child.Name, parent.Name)
	}
	parent.References = append(parent.References, types.NewModpackReference(parent, child))
	g.mu.Unlock()

	g.notify(types.ChangeSet{EditedModpacks: []*types.Modpack{parent}})
	return true, nil
}

// RemoveReference drops the reference at position from pack.
func (g *Graph) RemoveReference(pack *types.Modpack, position int) error {
	g.mu.Lock()
	if err := g.requireLocked(pack); err != nil {
		g.mu.Unlock()
		return err
	}
	if position < 0 || position >= len(pack.References) {
		g.mu.Unlock()
		return errors.Newf(errors.ErrInvalidInput, "modpack %q has no reference at position %d", pack.Name, position)
	}
	g.dropLocked(pack, pack.References[position])
	g.mu.Unlock()

	g.notify(types.ChangeSet{EditedModpacks: []*types.Modpack{pack}})
	return nil
}

// RemoveMod drops pack's reference to mod, if any.
func (g *Graph) RemoveMod(pack *types.Modpack, mod *types.Mod) error {
	g.mu.RLock()
	ref := pack.ModRef(mod)
	g.mu.RUnlock()
	if ref == nil {
		return errors.Newf(errors.ErrNotFound, "modpack %q does not contain %s", pack.Name, mod.Name)
	}
	return g.RemoveReference(pack, ref.Position())
}

// RemoveModpack drops parent's reference to child, if any.
func (g *Graph) RemoveModpack(parent, child *types.Modpack) error {
	g.mu.RLock()
	ref := parent.ModpackRef(child)
	g.mu.RUnlock()
	if ref == nil {
		return errors.Newf(errors.ErrNotFound, "modpack %q does not contain %q", parent.Name, child.Name)
	}
	return g.RemoveReference(parent, ref.Position())
}

// ExchangeMods retargets every reference to old onto next in place. When a
// modpack already references next, its reference to old is dropped instead
// so targets stay unique. It returns the edited modpacks and does not notify;
// the registry reports the replacement.
func (g *Graph) ExchangeMods(old, next *types.Mod) []*types.Modpack {
	g.mu.Lock()
	defer g.mu.Unlock()

	var edited []*types.Modpack
	for _, pack := range g.packs {
		ref := pack.ModRef(old)
		if ref == nil {
			continue
		}
		if pack.ModRef(next) != nil {
			g.dropLocked(pack, ref)
		} else {
			ref.Mod = next
		}
		edited = append(edited, pack)
	}
	return edited
}

// RemoveModReferences drops every reference to mod. Like ExchangeMods it
// leaves notification to the registry.
func (g *Graph) RemoveModReferences(mod *types.Mod) []*types.Modpack {
	g.mu.Lock()
	defer g.mu.Unlock()

	var edited []*types.Modpack
	for _, pack := range g.packs {
		if ref := pack.ModRef(mod); ref != nil {
			g.dropLocked(pack, ref)
			edited = append(edited, pack)
		}
	}
	return edited
}

// Contains reports whether descendant is reachable from ancestor through
// nested modpack references.
func (g *Graph) Contains(ancestor, descendant *types.Modpack) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if ancestor == descendant {
		return false
	}
	return g.reachableLocked(ancestor, descendant)
}

// ModsOf returns every mod pack holds directly or through nested modpacks,
// deduplicated, in first-seen depth-first order.
func (g *Graph) ModsOf(pack *types.Modpack) []*types.Mod {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var mods []*types.Mod
	seenMods := make(map[*types.Mod]bool)
	seenPacks := make(map[*types.Modpack]bool)

	var walk func(p *types.Modpack)
	walk = func(p *types.Modpack) {
		if seenPacks[p] {
			return
		}
		seenPacks[p] = true
		for _, ref := range p.References {
			switch r := ref.(type) {
			case *types.ModReference:
				if !seenMods[r.Mod] {
					seenMods[r.Mod] = true
					mods = append(mods, r.Mod)
				}
			case *types.ModpackReference:
				walk(r.Modpack)
			}
		}
	}
	walk(pack)
	return mods
}

// Descendants returns every modpack nested in pack, transitively, in
// first-seen depth-first order.
func (g *Graph) Descendants(pack *types.Modpack) []*types.Modpack {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []*types.Modpack
	seen := map[*types.Modpack]bool{pack: true}
	var walk func(p *types.Modpack)
	walk = func(p *types.Modpack) {
		for _, ref := range p.References {
			if r, ok := ref.(*types.ModpackReference); ok && !seen[r.Modpack] {
				seen[r.Modpack] = true
				out = append(out, r.Modpack)
				walk(r.Modpack)
			}
		}
	}
	walk(pack)
	return out
}

// Parents returns the modpacks that directly reference pack.
func (g *Graph) Parents(pack *types.Modpack) []*types.Modpack {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []*types.Modpack
	for _, p := range g.packs {
		if p.ModpackRef(pack) != nil {
			out = append(out, p)
		}
	}
	return out
}

// ContainingMod returns the modpacks that directly reference mod.
func (g *Graph) ContainingMod(mod *types.Mod) []*types.Modpack {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []*types.Modpack
	for _, p := range g.packs {
		if p.ModRef(mod) != nil {
			out = append(out, p)
		}
	}
	return out
}

// reachableLocked runs a depth-first search over nested edges from start and
// reports whether target is visited. start == target counts as reachable.
func (g *Graph) reachableLocked(start, target *types.Modpack) bool {
	targetID := target.ID.String()
	found := false
	err := graphlib.DFS(g.nesting, start.ID.String(), func(id string) bool {
		if id == targetID {
			found = true
			return true
		}
		return false
	})
	if err != nil {
		g.logger.Error().Err(err).Str("modpack", start.Name).Msg("Nesting traversal failed")
		return true
	}
	return found
}

func (g *Graph) insertLocked(pack *types.Modpack) {
	g.packs = append(g.packs, pack)
	g.byID[pack.ID] = pack
	_ = g.nesting.AddVertex(pack.ID.String())
}

// dropLocked removes ref from pack, keeping the nesting graph in sync.
func (g *Graph) dropLocked(pack *types.Modpack, ref types.Reference) {
	i := pack.IndexOf(ref)
	if i < 0 {
		return
	}
	pack.References = append(pack.References[:i:i], pack.References[i+1:]...)
	if child, ok := ref.(*types.ModpackReference); ok {
		_ = g.nesting.RemoveEdge(pack.ID.String(), child.Modpack.ID.String())
	}
}

func (g *Graph) findLocked(name string) *types.Modpack {
	for _, p := range g.packs {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (g *Graph) requireLocked(pack *types.Modpack) error {
	if pack == nil || g.byID[pack.ID] != pack {
		name := "<nil>"
		if pack != nil {
			name = pack.Name
		}
		return errors.Newf(errors.ErrNotFound, "modpack %q is not in the library", name)
	}
	return nil
}

func (g *Graph) notify(change types.ChangeSet) {
	if g.notifier != nil {
		g.notifier.Notify(change)
	}
}
