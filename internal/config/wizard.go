package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/timemachine/internal/wayback"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to the Web Time Machine! Let's configure your server.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Port.
	portPrompt := promptui.Prompt{
		Label:    "HTTP port",
		Default:  strconv.Itoa(cfg.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 2. Where to start.
	sitePrompt := promptui.Prompt{
		Label:   "Site shown to first-time visitors",
		Default: cfg.DefaultSite,
		Validate: func(s string) error {
			if wayback.Normalize(s) == "" {
				return fmt.Errorf("site is required")
			}
			return nil
		},
	}
	site, err := sitePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("default site: %w", err)
	}
	cfg.DefaultSite = wayback.Normalize(site)

	yearPrompt := promptui.Prompt{
		Label:    fmt.Sprintf("Starting year (%d-%d)", wayback.MinYear, wayback.MaxYear),
		Default:  strconv.Itoa(cfg.DefaultYear),
		Validate: validateYear,
	}
	yearStr, err := yearPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("default year: %w", err)
	}
	cfg.DefaultYear, _ = strconv.Atoi(yearStr)

	// 3. Theme.
	themePrompt := promptui.Select{
		Label: "Default theme",
		Items: []string{"dark", "light"},
	}
	_, theme, err := themePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("theme selection: %w", err)
	}
	cfg.DefaultTheme = theme

	// 4. Trip log.
	tripsPrompt := promptui.Select{
		Label: "Record visited snapshots in the trip log",
		Items: []string{"yes", "no"},
	}
	tripsIdx, _, err := tripsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("trip log selection: %w", err)
	}
	cfg.RecordTrips = tripsIdx == 0

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

func validateYear(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("year must be a number")
	}
	if !wayback.InRange(n) {
		return fmt.Errorf("year must be between %d and %d", wayback.MinYear, wayback.MaxYear)
	}
	return nil
}
