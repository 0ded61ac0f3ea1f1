package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/timemachine/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "timemachine",
	Short: "Browse any website as it looked on New Year's Day of any year",
	Long: `Time Machine serves a page that shows a website through the Internet
Archive's Wayback Machine. Pick a site, drag the year slider, and the
snapshot from January 1st of that year is loaded in place. The address
bar always holds a shareable link to what you are looking at.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is normal.
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newLogger builds the process-wide logger. It is passed down explicitly.
func newLogger() *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "timemachine",
	})
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `timemachine init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}
