package templates

import (
	"sort"

	"github.com/arthur-debert/modkeeper/pkg/semver"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// BaseModName is the game's built-in mod, always listed and enabled.
const BaseModName = "base"

// ModListEntry is one line of the game's mod-list.json.
type ModListEntry struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// ModList is the content of one mod-list.json.
type ModList struct {
	Mods []ModListEntry `json:"mods"`
}

// Enabled reports whether name is listed as enabled.
func (l ModList) Enabled(name string) bool {
	for _, e := range l.Mods {
		if e.Name == name {
			return e.Enabled
		}
	}
	return false
}

// EmptyModList is the list of a Factorio version without mods.
func EmptyModList() ModList {
	return ModList{Mods: []ModListEntry{{Name: BaseModName, Enabled: true}}}
}

// ModLists maps a Factorio version to its mod list.
type ModLists map[string]ModList

// ReferenceTemplate is one stored modpack reference. Exactly one of Mod or
// Modpack is set; Modpack holds the nested modpack's ID.
type ReferenceTemplate struct {
	Mod             string `toml:"mod,omitempty"`
	Version         string `toml:"version,omitempty"`
	FactorioVersion string `toml:"factorio_version,omitempty"`
	Modpack         string `toml:"modpack,omitempty"`
}

// ModpackTemplate is one stored modpack.
type ModpackTemplate struct {
	ID         string              `toml:"id"`
	Name       string              `toml:"name"`
	References []ReferenceTemplate `toml:"references"`
}

// Store persists templates.
type Store interface {
	Save(lists ModLists, modpacks []ModpackTemplate) error
	Load() (ModLists, []ModpackTemplate, error)
}

// Build renders the library into templates. Every Factorio version with at
// least one mod gets a list containing the base mod and each mod name once;
// a name is enabled when any of its variants for that version is active.
func Build(mods []*types.Mod, modpacks []*types.Modpack) (ModLists, []ModpackTemplate) {
	lists := make(ModLists)
	enabled := make(map[string]map[string]bool)
	for _, m := range mods {
		byName, ok := enabled[m.FactorioVersion]
		if !ok {
			byName = make(map[string]bool)
			enabled[m.FactorioVersion] = byName
		}
		byName[m.Name] = byName[m.Name] || m.Active
	}

	for fv, byName := range enabled {
		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)

		list := EmptyModList()
		for _, name := range names {
			list.Mods = append(list.Mods, ModListEntry{Name: name, Enabled: byName[name]})
		}
		lists[fv] = list
	}

	packs := make([]ModpackTemplate, 0, len(modpacks))
	for _, p := range modpacks {
		tmpl := ModpackTemplate{ID: p.ID.String(), Name: p.Name}
		for _, ref := range p.References {
			switch r := ref.(type) {
			case *types.ModReference:
				tmpl.References = append(tmpl.References, ReferenceTemplate{
					Mod:             r.Mod.Name,
					Version:         r.Mod.Version.String(),
					FactorioVersion: r.Mod.FactorioVersion,
				})
			case *types.ModpackReference:
				tmpl.References = append(tmpl.References, ReferenceTemplate{Modpack: r.Modpack.ID.String()})
			}
		}
		packs = append(packs, tmpl)
	}
	return lists, packs
}

// Versions returns the Factorio versions in lists, oldest first.
func (l ModLists) Versions() []string {
	versions := make([]string, 0, len(l))
	for fv := range l {
		versions = append(versions, fv)
	}
	sort.Slice(versions, func(i, j int) bool {
		return semver.CompareFactorio(versions[i], versions[j]) < 0
	})
	return versions
}
