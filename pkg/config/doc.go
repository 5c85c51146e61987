// Package config loads modkeeper configuration.
//
// Values are layered: embedded defaults, then the user's config.toml, then
// MODKEEPER_* environment variables. MODKEEPER_CATALOG_BASE_URL sets
// catalog.base_url: the first underscore after the prefix separates the
// section from the key.
package config
