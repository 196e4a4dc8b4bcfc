package model

import (
	"testing"
)

func TestNewSheetPreset(t *testing.T) {
	sheet := DefaultSheet()
	sheet.Columns = 4

	p := NewSheetPreset("Wide", "4 column layout", sheet)

	if p.Name != "Wide" {
		t.Errorf("expected name 'Wide', got %q", p.Name)
	}
	if p.ID == "" {
		t.Error("expected non-empty ID")
	}
	if p.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if p.Sheet.Columns != 4 {
		t.Errorf("expected 4 columns, got %d", p.Sheet.Columns)
	}
}

func TestPresetStore_BuiltinPresent(t *testing.T) {
	store := NewPresetStore()
	if len(store.Presets) != 1 {
		t.Fatalf("expected 1 built-in preset, got %d", len(store.Presets))
	}
	p := store.Lookup("A3 240dpi")
	if p == nil {
		t.Fatal("expected built-in preset to be found by name")
	}
	if p.Sheet.Width != 2828 || p.Sheet.Height != 4000 {
		t.Errorf("unexpected built-in sheet size %dx%d", p.Sheet.Width, p.Sheet.Height)
	}
}

func TestPresetStore_AddRemove(t *testing.T) {
	store := NewPresetStore()
	p1 := NewSheetPreset("One", "", DefaultSheet())
	p2 := NewSheetPreset("Two", "", DefaultSheet())

	store.Add(p1)
	store.Add(p2)
	if len(store.Presets) != 3 {
		t.Fatalf("expected 3 presets, got %d", len(store.Presets))
	}

	if !store.Remove(p1.ID) {
		t.Error("expected Remove to return true for existing ID")
	}
	if store.Remove("nonexistent") {
		t.Error("expected Remove to return false for unknown ID")
	}
	if store.FindByID(p1.ID) != nil {
		t.Error("expected removed preset to be gone")
	}
	if got := store.Lookup(p2.ID); got == nil || got.Name != "Two" {
		t.Errorf("expected lookup by ID to find 'Two', got %+v", got)
	}

	names := store.Names()
	if len(names) != 2 || names[0] != "A3 240dpi" || names[1] != "Two" {
		t.Errorf("unexpected names %v", names)
	}
}
