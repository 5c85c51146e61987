package manifest

import "github.com/arthur-debert/modkeeper/pkg/types"

// Export describes packs and every modpack nested in them. Versions are
// written only when includeVersionInfo is set.
func Export(graph Graph, packs []*types.Modpack, includeVersionInfo bool) *Manifest {
	m := &Manifest{IncludeVersionInfo: includeVersionInfo}

	entry := func(mod *types.Mod) ModEntry {
		e := ModEntry{Name: mod.Name}
		if includeVersionInfo {
			e.Version = mod.Version.String()
		}
		return e
	}

	var ordered []*types.Modpack
	seenPacks := make(map[*types.Modpack]bool)
	for _, p := range packs {
		for _, q := range append([]*types.Modpack{p}, graph.Descendants(p)...) {
			if !seenPacks[q] {
				seenPacks[q] = true
				ordered = append(ordered, q)
			}
		}
	}

	seenMods := make(map[string]bool)
	for _, p := range ordered {
		pe := ModpackEntry{Name: p.Name}
		for _, ref := range p.References {
			switch r := ref.(type) {
			case *types.ModReference:
				pe.Mods = append(pe.Mods, entry(r.Mod))
			case *types.ModpackReference:
				pe.Modpacks = append(pe.Modpacks, r.Modpack.Name)
			}
		}
		m.Modpacks = append(m.Modpacks, pe)

		for _, mod := range graph.ModsOf(p) {
			e := entry(mod)
			if key := e.Name + "@" + e.Version; !seenMods[key] {
				seenMods[key] = true
				m.Mods = append(m.Mods, e)
			}
		}
	}
	return m
}
