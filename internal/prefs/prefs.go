// Package prefs stores user interface preferences.
package prefs

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// ThemeKey is the storage key of the theme preference.
const ThemeKey = "theme"

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Theme returns the saved theme. Missing, unreadable or unknown values give
// ThemeLight.
func Theme(storage types.Storage) string {
	v, err := storage.GetItem(ThemeKey)
	if err != nil || (v != ThemeLight && v != ThemeDark) {
		return ThemeLight
	}
	return v
}

// SetTheme saves theme, which must be ThemeLight or ThemeDark.
func SetTheme(storage types.Storage, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("%w: %q", types.ErrUnknownTheme, theme)
	}
	return storage.SetItem(ThemeKey, theme)
}

// ToggleTheme switches between light and dark, saves the result and returns
// it. The new theme is returned even when saving fails.
func ToggleTheme(storage types.Storage) (string, error) {
	next := ThemeDark
	if Theme(storage) == ThemeDark {
		next = ThemeLight
	}
	if err := storage.SetItem(ThemeKey, next); err != nil {
		return next, fmt.Errorf("save theme: %w", err)
	}
	return next, nil
}

// ResetTheme removes the saved theme.
func ResetTheme(storage types.Storage) error {
	if err := storage.RemoveItem(ThemeKey); err != nil && !errors.Is(err, types.ErrNotFound) {
		return err
	}
	return nil
}
