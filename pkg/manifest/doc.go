// Package manifest imports and exports portable descriptions of mods and
// modpacks.
//
// A manifest lists mods by name, optionally pinned to a version, and
// modpacks by name with their member mods and nested modpack names. Import
// resolves every mod against the local library first and the catalog
// second, downloads what is missing, reports conflicts without resolving
// them, and then merges the modpacks in two passes so a modpack can nest
// one that appears later in the same manifest.
package manifest
