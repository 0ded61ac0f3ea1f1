package config

import "time"

// Config is the top-level timemachine configuration, corresponding to .timemachine.yml.
type Config struct {
	Port              int         `yaml:"port" koanf:"port"`
	DataDir           string      `yaml:"data_dir" koanf:"data_dir"`
	AllowAllOrigins   bool        `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	DefaultSite       string      `yaml:"default_site" koanf:"default_site"`
	DefaultYear       int         `yaml:"default_year" koanf:"default_year"`
	DefaultTheme      string      `yaml:"default_theme" koanf:"default_theme"`
	SettleDelayMS     int         `yaml:"settle_delay_ms" koanf:"settle_delay_ms"`
	LoadTimeoutMS     int         `yaml:"load_timeout_ms" koanf:"load_timeout_ms"`
	MessageIntervalMS int         `yaml:"message_interval_ms" koanf:"message_interval_ms"`
	RecordTrips       bool        `yaml:"record_trips" koanf:"record_trips"`
	ExtraSites        []SiteEntry `yaml:"extra_sites" koanf:"extra_sites"`
}

// SiteEntry adds a site to the random-trip catalog.
type SiteEntry struct {
	ID        string `yaml:"id" koanf:"id"`
	Name      string `yaml:"name" koanf:"name"`
	Host      string `yaml:"host" koanf:"host"`
	Icon      string `yaml:"icon" koanf:"icon"`
	StartYear int    `yaml:"start_year" koanf:"start_year"`
}

// SettleDelay is the debounce between an interaction and publishing a URL.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// LoadTimeout is how long a snapshot may take before it is reported as
// failed. Zero disables the timeout.
func (c *Config) LoadTimeout() time.Duration {
	if c.LoadTimeoutMS == 0 {
		return -1
	}
	return time.Duration(c.LoadTimeoutMS) * time.Millisecond
}

// MessageInterval is how long each loading message stays on screen.
func (c *Config) MessageInterval() time.Duration {
	return time.Duration(c.MessageIntervalMS) * time.Millisecond
}
