// Package templates persists activation state. Two files are owned here:
//
//	<mods>/<factorio-version>/mod-list.json   the game's own enabled-mods list
//	<data>/modpacks.toml                      modpacks with their ordered references
//
// Store is the durable collaborator the activation aggregator writes through
// after each committed batch.
package templates
