package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/StickerSheet/internal/model"
)

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string               `json:"version"`
	CreatedAt string               `json:"created_at"`
	Settings  model.Settings       `json:"settings"`
	Presets   model.PresetStore    `json:"presets"`
	Profiles  []model.GCodeProfile `json:"profiles"`
}

// ExportAllData writes settings, presets and custom profiles to a single
// JSON file at the specified path.
func ExportAllData(exportPath string, settings model.Settings, presets model.PresetStore, profiles []model.GCodeProfile) error {
	backup := BackupData{
		Version:   "1.0.0",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:  settings,
		Presets:   presets,
		Profiles:  profiles,
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// Sections missing from the file come back as defaults. The caller is
// responsible for saving what it wants to keep.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	backup := BackupData{Settings: model.DefaultSettings()}
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if err := backup.Settings.Sheet.Validate(); err != nil {
		return BackupData{}, fmt.Errorf("invalid backup file: %w", err)
	}
	if len(backup.Presets.Presets) == 0 {
		backup.Presets = model.NewPresetStore()
	}
	if backup.Profiles == nil {
		backup.Profiles = []model.GCodeProfile{}
	}
	return backup, nil
}
