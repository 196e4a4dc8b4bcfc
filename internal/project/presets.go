package project

import (
	"path/filepath"

	"github.com/piwi3910/StickerSheet/internal/model"
)

// DefaultPresetPath returns the default file path for the preset store.
func DefaultPresetPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.json")
}

// SavePresets writes the preset store to a JSON file.
func SavePresets(path string, store model.PresetStore) error {
	return writeJSON(path, store)
}

// LoadPresets reads a preset store from a JSON file. A missing file yields
// a store holding only the built-in preset, which is also restored when a
// saved store lacks it.
func LoadPresets(path string) (model.PresetStore, error) {
	var store model.PresetStore
	found, err := readJSON(path, &store)
	if err != nil {
		return model.PresetStore{}, err
	}
	if !found {
		return model.NewPresetStore(), nil
	}
	builtin := model.BuiltinPreset()
	if store.FindByID(builtin.ID) == nil {
		store.Presets = append([]model.SheetPreset{builtin}, store.Presets...)
	}
	return store, nil
}
