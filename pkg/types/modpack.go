package types

import (
	"github.com/google/uuid"
)

// Modpack is a named, ordered set of references to mods and nested modpacks.
// References is mutated only by the modpack graph, which keeps the graph
// acyclic and targets unique within one modpack.
type Modpack struct {
	ID         uuid.UUID
	Name       string
	References []Reference
	Active     TriState
}

// NewModpack creates an empty modpack with a fresh ID.
func NewModpack(name string) *Modpack {
	return &Modpack{ID: uuid.New(), Name: name}
}

// IndexOf returns the position of ref in the modpack, or -1.
func (p *Modpack) IndexOf(ref Reference) int {
	for i, r := range p.References {
		if r == ref {
			return i
		}
	}
	return -1
}

// ModRef returns the reference to mod held by this modpack, if any.
func (p *Modpack) ModRef(mod *Mod) *ModReference {
	for _, r := range p.References {
		if mr, ok := r.(*ModReference); ok && mr.Mod == mod {
			return mr
		}
	}
	return nil
}

// ModpackRef returns the reference to child held by this modpack, if any.
func (p *Modpack) ModpackRef(child *Modpack) *ModpackReference {
	for _, r := range p.References {
		if pr, ok := r.(*ModpackReference); ok && pr.Modpack == child {
			return pr
		}
	}
	return nil
}

// Reference is an edge from a modpack to a mod or to another modpack.
type Reference interface {
	// Parent is the modpack holding this reference. It does not own it.
	Parent() *Modpack
	// Position is the ordinal index of this reference in its parent.
	Position() int
	// DisplayName is the target's name.
	DisplayName() string
	// State is the target's activation.
	State() TriState
}

// ModReference points at exactly one Mod.
type ModReference struct {
	Mod    *Mod
	parent *Modpack
}

// NewModReference creates a reference owned by parent.
func NewModReference(parent *Modpack, mod *Mod) *ModReference {
	return &ModReference{Mod: mod, parent: parent}
}

func (r *ModReference) Parent() *Modpack    { return r.parent }
func (r *ModReference) Position() int       { return r.parent.IndexOf(r) }
func (r *ModReference) DisplayName() string { return r.Mod.Name }
func (r *ModReference) State() TriState     { return FromBool(r.Mod.Active) }

// ModpackReference points at a nested Modpack.
type ModpackReference struct {
	Modpack *Modpack
	parent  *Modpack
}

// NewModpackReference creates a reference owned by parent.
func NewModpackReference(parent, child *Modpack) *ModpackReference {
	return &ModpackReference{Modpack: child, parent: parent}
}

func (r *ModpackReference) Parent() *Modpack    { return r.parent }
func (r *ModpackReference) Position() int       { return r.parent.IndexOf(r) }
func (r *ModpackReference) DisplayName() string { return r.Modpack.Name }
func (r *ModpackReference) State() TriState     { return r.Modpack.Active }
