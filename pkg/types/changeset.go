package types

// Replacement records an update that retired Old in favour of New.
type Replacement struct {
	Old *Mod
	New *Mod
}

// ChangeSet describes the effect of one mutating operation on the library.
// Every structural mutation produces exactly one ChangeSet.
type ChangeSet struct {
	AddedMods       []*Mod
	RemovedMods     []*Mod
	ReplacedMods    []Replacement
	ActivatedMods   []*Mod
	AddedModpacks   []*Modpack
	RemovedModpacks []*Modpack
	// EditedModpacks had references added, removed or retargeted.
	EditedModpacks []*Modpack
}

// IsEmpty reports whether the change set carries no change.
func (c ChangeSet) IsEmpty() bool {
	return len(c.AddedMods) == 0 &&
		len(c.RemovedMods) == 0 &&
		len(c.ReplacedMods) == 0 &&
		len(c.ActivatedMods) == 0 &&
		len(c.AddedModpacks) == 0 &&
		len(c.RemovedModpacks) == 0 &&
		len(c.EditedModpacks) == 0
}

// Merge appends other into c.
func (c *ChangeSet) Merge(other ChangeSet) {
	c.AddedMods = append(c.AddedMods, other.AddedMods...)
	c.RemovedMods = append(c.RemovedMods, other.RemovedMods...)
	c.ReplacedMods = append(c.ReplacedMods, other.ReplacedMods...)
	c.ActivatedMods = append(c.ActivatedMods, other.ActivatedMods...)
	c.AddedModpacks = append(c.AddedModpacks, other.AddedModpacks...)
	c.RemovedModpacks = append(c.RemovedModpacks, other.RemovedModpacks...)
	c.EditedModpacks = append(c.EditedModpacks, other.EditedModpacks...)
}
