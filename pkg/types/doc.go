// Package types defines the core entities shared across modkeeper: mods,
// modpacks and their reference edges, catalog releases, change sets, and the
// filesystem abstraction used by storage and persistence.
package types
