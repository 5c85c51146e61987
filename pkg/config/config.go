package config

import (
	"time"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/policy"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// Config is the complete modkeeper configuration.
type Config struct {
	Manager   Manager   `koanf:"manager"`
	Updates   Updates   `koanf:"updates"`
	Catalog   Catalog   `koanf:"catalog"`
	Paths     Paths     `koanf:"paths"`
	Telemetry Telemetry `koanf:"telemetry"`
}

// Manager holds the identity policy.
type Manager struct {
	Mode string `koanf:"mode"`
}

// Updates tunes how updates are stored.
type Updates struct {
	AlwaysPacked bool `koanf:"always_packed"`
}

// Catalog configures the mod portal client.
type Catalog struct {
	BaseURL  string        `koanf:"base_url"`
	Timeout  time.Duration `koanf:"timeout"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
	Username string        `koanf:"username"`
	Token    string        `koanf:"token"`
}

// Paths overrides storage locations. Empty values fall back to XDG.
type Paths struct {
	ModsDir string `koanf:"mods_dir"`
	DataDir string `koanf:"data_dir"`
}

// Telemetry selects optional metric and trace outputs.
type Telemetry struct {
	MetricsFile string `koanf:"metrics_file"`
	TraceFile   string `koanf:"trace_file"`
}

// Mode parses the manager mode.
func (c *Config) Mode() (policy.Mode, error) {
	return policy.ParseMode(c.Manager.Mode)
}

// Credentials returns the configured catalog credentials.
func (c *Config) Credentials() types.Credentials {
	return types.Credentials{Username: c.Catalog.Username, Token: c.Catalog.Token}
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	if _, err := c.Mode(); err != nil {
		return err
	}
	if c.Catalog.Timeout < 0 {
		return errors.Newf(errors.ErrConfigValid, "catalog.timeout must not be negative, got %s", c.Catalog.Timeout)
	}
	if c.Catalog.CacheTTL < 0 {
		return errors.Newf(errors.ErrConfigValid, "catalog.cache_ttl must not be negative, got %s", c.Catalog.CacheTTL)
	}
	return nil
}
