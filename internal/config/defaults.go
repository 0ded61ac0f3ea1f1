package config

// DefaultConfigFile is the config path used when --config is not given.
const DefaultConfigFile = ".timemachine.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:              8080,
		DataDir:           ".timemachine",
		AllowAllOrigins:   false,
		DefaultSite:       "google.com",
		DefaultYear:       1999,
		DefaultTheme:      "dark",
		SettleDelayMS:     300,
		LoadTimeoutMS:     30000,
		MessageIntervalMS: 2000,
		RecordTrips:       true,
	}
}
