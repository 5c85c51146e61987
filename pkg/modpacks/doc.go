// Package modpacks owns every Modpack and the reference edges between
// modpacks and mods. Nested modpack edges are mirrored into a directed
// dominikbraun/graph keyed by modpack ID; inserting a nested reference runs a
// reachability search from the child first and rejects the edge when the
// parent is reachable, so the graph stays acyclic.
//
// Modpack names are unique. Within one modpack no two references share a
// target. Removing a modpack detaches every reference to it first.
package modpacks
