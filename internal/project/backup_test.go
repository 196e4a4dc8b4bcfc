package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StickerSheet/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")

	s := model.DefaultSettings()
	s.Plotter.FeedRate = 2000
	presets := model.NewPresetStore()
	presets.Add(model.NewSheetPreset("Letter", "", model.DefaultSheet()))
	profiles := []model.GCodeProfile{customProfile()}

	require.NoError(t, ExportAllData(path, s, presets, profiles))

	backup, err := ImportAllData(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", backup.Version)
	assert.NotEmpty(t, backup.CreatedAt)
	assert.Equal(t, s, backup.Settings)
	assert.Equal(t, presets, backup.Presets)
	assert.Equal(t, profiles, backup.Profiles)
}

func TestImportAllData_MinimalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": "1.0.0"}`), 0644))

	backup, err := ImportAllData(path)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), backup.Settings)
	assert.Equal(t, []string{"A3 240dpi"}, backup.Presets.Names())
	assert.NotNil(t, backup.Profiles)
}

func TestImportAllData_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ImportAllData(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	noVersion := filepath.Join(dir, "noversion.json")
	require.NoError(t, os.WriteFile(noVersion, []byte(`{"settings": {}}`), 0644))
	_, err = ImportAllData(noVersion)
	assert.ErrorContains(t, err, "missing version")

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte(`not json`), 0644))
	_, err = ImportAllData(garbage)
	assert.ErrorContains(t, err, "failed to parse")
}
