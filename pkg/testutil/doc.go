// Package testutil provides fixtures for testing modkeeper components.
//
// Key components:
//   - Environment: registry, graph, aggregator, storage and template store
//     wired over an in-memory filesystem
//   - FakeCatalog: an in-memory catalog with scripted failures
//   - ModArchive: builds a zip archive carrying an info.json
package testutil
