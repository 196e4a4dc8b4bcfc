// Package project persists engine settings, sheet presets and custom cutter
// profiles as JSON files under ~/.stickersheet.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/StickerSheet/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.stickersheet/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".stickersheet")
}

// DefaultConfigPath returns the default path for the settings file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// writeJSON writes v as indented JSON, creating parent directories.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// readJSON decodes path into v. It reports false, without error, when the
// file does not exist.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return true, nil
}

// SaveSettings persists settings to the given path as JSON.
func SaveSettings(path string, settings model.Settings) error {
	return writeJSON(path, settings)
}

// LoadSettings reads settings from the given path. Values missing from the
// file keep their defaults, and a missing file yields DefaultSettings. The
// sheet geometry is validated.
func LoadSettings(path string) (model.Settings, error) {
	settings := model.DefaultSettings()
	if _, err := readJSON(path, &settings); err != nil {
		return model.Settings{}, err
	}
	if err := settings.Sheet.Validate(); err != nil {
		return model.Settings{}, fmt.Errorf("config %s: %w", path, err)
	}
	return settings, nil
}
