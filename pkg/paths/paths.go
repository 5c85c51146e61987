package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/modkeeper/pkg/errors"
)

// Environment variable names
const (
	EnvDataDir   = "MODKEEPER_DATA_DIR"
	EnvModsDir   = "MODKEEPER_MODS_DIR"
	EnvConfigDir = "MODKEEPER_CONFIG_DIR"
	EnvCacheDir  = "MODKEEPER_CACHE_DIR"
	EnvHome      = "HOME"
)

// Fixed names inside the managed directories. These are part of the on-disk
// format shared with the game and must not become configurable.
const (
	AppDirName       = "modkeeper"
	ModsDirName      = "mods"
	ModListFile      = "mod-list.json"
	ModpacksFile     = "modpacks.toml"
	ConfigFileName   = "config.toml"
	LogFileName      = "modkeeper.log"
	ArchiveExtension = ".zip"
)

// Paths resolves every location modkeeper reads or writes.
type Paths struct {
	dataDir   string
	modsDir   string
	configDir string
	cacheDir  string
	stateDir  string
}

// New creates a Paths instance. Empty arguments fall back to environment
// overrides and then to XDG defaults.
func New(modsDir, dataDir string) (*Paths, error) {
	p := &Paths{}

	p.dataDir = firstNonEmpty(dataDir, os.Getenv(EnvDataDir))
	if p.dataDir == "" {
		p.dataDir = filepath.Join(xdg.DataHome, AppDirName)
	}

	p.modsDir = firstNonEmpty(modsDir, os.Getenv(EnvModsDir))
	if p.modsDir == "" {
		p.modsDir = filepath.Join(p.dataDir, ModsDirName)
	}

	p.configDir = os.Getenv(EnvConfigDir)
	if p.configDir == "" {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	p.cacheDir = os.Getenv(EnvCacheDir)
	if p.cacheDir == "" {
		p.cacheDir = filepath.Join(xdg.CacheHome, AppDirName)
	}

	p.stateDir = StateDir()

	for _, dir := range []*string{&p.dataDir, &p.modsDir, &p.configDir, &p.cacheDir} {
		abs, err := filepath.Abs(expandHome(*dir))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", *dir)
		}
		*dir = abs
	}

	return p, nil
}

// DataDir returns the library data directory
func (p *Paths) DataDir() string { return p.dataDir }

// ModsDir returns the root of the installed mods tree
func (p *Paths) ModsDir() string { return p.modsDir }

// ConfigDir returns the user configuration directory
func (p *Paths) ConfigDir() string { return p.configDir }

// CacheDir returns the cache directory
func (p *Paths) CacheDir() string { return p.cacheDir }

// StateDir returns the state directory used for logs
func (p *Paths) StateDir() string { return p.stateDir }

// ConfigFile returns the path of the optional user config file
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// FactorioDir returns the directory holding mods for one Factorio version
func (p *Paths) FactorioDir(factorioVersion string) string {
	return filepath.Join(p.modsDir, factorioVersion)
}

// ModListPath returns the game's mod-list.json for one Factorio version
func (p *Paths) ModListPath(factorioVersion string) string {
	return filepath.Join(p.FactorioDir(factorioVersion), ModListFile)
}

// ModpacksPath returns the modpack template file
func (p *Paths) ModpacksPath() string {
	return filepath.Join(p.dataDir, ModpacksFile)
}

// DefaultConfigFile returns the user config file location without
// constructing a full Paths value.
func DefaultConfigFile() string {
	configDir := os.Getenv(EnvConfigDir)
	if configDir == "" {
		configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}
	return filepath.Join(expandHome(configDir), ConfigFileName)
}

// StateDir returns the XDG state directory for modkeeper. XDG_STATE_HOME is
// read on every call since xdg resolves its variables once at init.
func StateDir() string {
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		return filepath.Join(stateDir, AppDirName)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return AppDirName
	}
	return filepath.Join(homeDir, ".local", "state", AppDirName)
}

// LogFilePath returns the log file location
func LogFilePath() string {
	return filepath.Join(StateDir(), LogFileName)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// expandHome expands ~ to the user's home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
