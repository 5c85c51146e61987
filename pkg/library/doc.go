// Package library builds the explicit modkeeper context: the registry,
// modpack graph, activation aggregator, storage, catalog client, update
// resolver and manifest importer, wired together from a Config.
//
// Open restores the library from disk. Installed mods come from scanning
// the mods directory, their activation from each version's mod-list.json,
// and modpacks from the modpack template file. Restoring never writes.
package library
