package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/timemachine/internal/catalog"
	"github.com/ziadkadry99/timemachine/internal/prefs"
	"github.com/ziadkadry99/timemachine/internal/wayback"
)

// EnvPrefix is the prefix of environment overrides (TIMEMACHINE_PORT, ...).
const EnvPrefix = "TIMEMACHINE_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (TIMEMACHINE_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: TIMEMACHINE_PORT -> port, etc.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if wayback.Normalize(c.DefaultSite) == "" {
		return fmt.Errorf("default_site is required")
	}

	if !wayback.InRange(c.DefaultYear) {
		return fmt.Errorf("default_year %d must be between %d and %d", c.DefaultYear, wayback.MinYear, wayback.MaxYear)
	}

	if _, err := prefs.ParseTheme(c.DefaultTheme); err != nil {
		return fmt.Errorf("default_theme: %w", err)
	}

	if c.SettleDelayMS < 0 {
		return fmt.Errorf("settle_delay_ms must be non-negative")
	}

	if c.LoadTimeoutMS < 0 {
		return fmt.Errorf("load_timeout_ms must be non-negative")
	}

	if c.MessageIntervalMS < 0 {
		return fmt.Errorf("message_interval_ms must be non-negative")
	}

	if _, err := c.Catalog(); err != nil {
		return err
	}

	return nil
}

// Catalog builds the site catalog including the configured extra sites.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	extra := make([]catalog.Site, len(c.ExtraSites))
	for i, s := range c.ExtraSites {
		extra[i] = catalog.Site{
			ID:        s.ID,
			Name:      s.Name,
			Host:      s.Host,
			Icon:      s.Icon,
			StartYear: s.StartYear,
		}
	}
	cat, err := catalog.New(extra)
	if err != nil {
		return nil, fmt.Errorf("extra_sites: %w", err)
	}
	return cat, nil
}
