// Package paths provides centralized path handling for modkeeper.
//
// Directories follow the XDG Base Directory specification through
// github.com/adrg/xdg. Each base directory can be overridden by an
// environment variable, and the mods and data directories can also be
// overridden from configuration:
//
//	MODKEEPER_DATA_DIR    library data (modpack templates)
//	MODKEEPER_MODS_DIR    installed mod archives, grouped by Factorio version
//	MODKEEPER_CONFIG_DIR  user configuration
//	MODKEEPER_CACHE_DIR   catalog cache
//
// Layout of the mods directory:
//
//	<mods>/<factorio-version>/<Name>_<Version>.zip
//	<mods>/<factorio-version>/<Name>_<Version>/
//	<mods>/<factorio-version>/mod-list.json
package paths
