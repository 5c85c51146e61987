// Package updates finds newer catalog releases for installed mods and
// applies them.
//
// A scan queries the catalog once per mod name and moves each installed mod
// through Unknown, Queried and then UpToDate, UpdateAvailable or QueryFailed.
// Scanning never mutates the library.
//
// Applying is sequential. Each update downloads, places and optionally
// unpacks the release, then swaps the new mod in with Registry.Replace so
// every modpack reference keeps its position. The batch context is checked
// only between items: an item that has started always runs to completion or
// fails without touching the registry, and items applied before a
// cancellation or failure stay applied.
package updates
