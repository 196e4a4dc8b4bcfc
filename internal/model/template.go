package model

import (
	"time"

	"github.com/google/uuid"
)

// SheetPreset is a named, reusable sheet geometry (paper size, margins, grid).
type SheetPreset struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
	Sheet       SheetConfig `json:"sheet"`
}

// NewSheetPreset creates a preset for the given sheet.
func NewSheetPreset(name, description string, sheet SheetConfig) SheetPreset {
	now := time.Now().UTC().Format(time.RFC3339)
	return SheetPreset{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Sheet:       sheet,
	}
}

// PresetStore holds a collection of sheet presets.
type PresetStore struct {
	Presets []SheetPreset `json:"presets"`
}

// NewPresetStore creates a store holding only the built-in preset.
func NewPresetStore() PresetStore {
	return PresetStore{
		Presets: []SheetPreset{BuiltinPreset()},
	}
}

// BuiltinPreset is the production A3 sheet.
func BuiltinPreset() SheetPreset {
	return SheetPreset{
		ID:          "a3-240",
		Name:        "A3 240dpi",
		Description: "2828x4000 px sheet, 5x7 grid",
		Sheet:       DefaultSheet(),
	}
}

// Add adds a preset to the store.
func (ps *PresetStore) Add(p SheetPreset) {
	ps.Presets = append(ps.Presets, p)
}

// Remove removes a preset by ID. Returns true if found and removed.
func (ps *PresetStore) Remove(id string) bool {
	for i, p := range ps.Presets {
		if p.ID == id {
			ps.Presets = append(ps.Presets[:i], ps.Presets[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the preset with the given ID, or nil.
func (ps *PresetStore) FindByID(id string) *SheetPreset {
	for i := range ps.Presets {
		if ps.Presets[i].ID == id {
			return &ps.Presets[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first preset with the given name, or nil.
func (ps *PresetStore) FindByName(name string) *SheetPreset {
	for i := range ps.Presets {
		if ps.Presets[i].Name == name {
			return &ps.Presets[i]
		}
	}
	return nil
}

// Lookup finds a preset by ID first, then by name.
func (ps *PresetStore) Lookup(idOrName string) *SheetPreset {
	if p := ps.FindByID(idOrName); p != nil {
		return p
	}
	return ps.FindByName(idOrName)
}

// Names returns the preset names in store order.
func (ps *PresetStore) Names() []string {
	names := make([]string, len(ps.Presets))
	for i, p := range ps.Presets {
		names[i] = p.Name
	}
	return names
}
