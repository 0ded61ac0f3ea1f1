// Package prefs persists per-visitor display preferences.
package prefs

import "fmt"

// Theme is the page colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme is used when a visitor has never toggled.
const DefaultTheme = ThemeDark

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// ParseTheme converts a stored or configured value into a Theme.
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid theme %q: must be light or dark", s)
	}
	return t, nil
}
