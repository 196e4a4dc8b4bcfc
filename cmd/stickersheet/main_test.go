package main

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StickerSheet/internal/model"
	"github.com/piwi3910/StickerSheet/internal/project"
)

// writeWorkspace creates a settings file for a 2x1 sheet, one sticker image
// and a job asking for three copies of it.
func writeWorkspace(t *testing.T) (dir, configPath, jobPath string) {
	t.Helper()
	dir = t.TempDir()

	s := model.DefaultSettings()
	s.Sheet = model.SheetConfig{
		Width: 400, Height: 300,
		Margin:  model.Margin{MinX: 20, MaxX: 380, MinY: 20, MaxY: 280},
		Columns: 2, Rows: 1,
		DPI: 100,
	}
	s.Sticker.FinalSize = 128
	s.Sticker.BorderSize = 6
	s.Workers = 2
	configPath = filepath.Join(dir, "config.json")
	require.NoError(t, project.SaveSettings(configPath, s))

	art := image.NewNRGBA(image.Rect(0, 0, 96, 96))
	for y := 0; y < 96; y++ {
		for x := 0; x < 96; x++ {
			art.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	require.NoError(t, imaging.Save(art, filepath.Join(dir, "red.png")))

	jobPath = filepath.Join(dir, "job.json")
	job := `{"id":"t1","stickers":{"red":{"path":"red.png","quantity":3}}}`
	require.NoError(t, os.WriteFile(jobPath, []byte(job), 0644))
	return dir, configPath, jobPath
}

func TestParseFormats(t *testing.T) {
	f, err := parseFormats(" PNG, pdf,png,,zip ")
	require.NoError(t, err)
	assert.Equal(t, []string{"png", "pdf", "zip"}, f)

	_, err = parseFormats("png,tiff")
	assert.ErrorContains(t, err, "tiff")

	_, err = parseFormats(" , ")
	assert.Error(t, err)
}

func TestLoadSettings_Preset(t *testing.T) {
	dir := t.TempDir()
	presetsPath := filepath.Join(dir, "presets.json")

	store := model.NewPresetStore()
	small := model.SheetConfig{
		Width: 200, Height: 200,
		Margin:  model.Margin{MinX: 0, MaxX: 200, MinY: 0, MaxY: 200},
		Columns: 2, Rows: 2, DPI: 72,
	}
	store.Add(model.NewSheetPreset("Small", "", small))
	require.NoError(t, project.SavePresets(presetsPath, store))

	s, err := loadSettings(filepath.Join(dir, "missing.json"), presetsPath, "Small")
	require.NoError(t, err)
	assert.Equal(t, small, s.Sheet)

	s, err = loadSettings(filepath.Join(dir, "missing.json"), presetsPath, "")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSheet(), s.Sheet)

	_, err = loadSettings(filepath.Join(dir, "missing.json"), presetsPath, "Huge")
	assert.ErrorContains(t, err, "A3 240dpi")
}

func TestRunCompose_AllFormats(t *testing.T) {
	dir, configPath, jobPath := writeWorkspace(t)
	out := filepath.Join(dir, "out")

	written, err := runCompose(context.Background(), composeOptions{
		JobPath:     jobPath,
		ConfigPath:  configPath,
		PresetsPath: filepath.Join(dir, "presets.json"),
		OutDir:      out,
		Formats:     strings.Join(knownFormats, ","),
	})
	require.NoError(t, err)
	require.Len(t, written, len(knownFormats))

	for _, name := range []string{
		"t1_print.png", "t1_cut.pdf", "t1_cut.svg", "t1_cut.dxf",
		"t1_cut.gcode", "t1_preview.png", "t1_bundle.zip",
	} {
		info, err := os.Stat(filepath.Join(out, name))
		if assert.NoError(t, err, name) {
			assert.Positive(t, info.Size(), name)
		}
	}

	printSheet, err := imaging.Open(filepath.Join(out, "t1_print.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 300), printSheet.Bounds())

	svg, err := os.ReadFile(filepath.Join(out, "t1_cut.svg"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(svg), "<path"), "third unit overflows the 2 cells")

	code, err := os.ReadFile(filepath.Join(out, "t1_cut.gcode"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "job t1")

	data, err := os.ReadFile(filepath.Join(out, "t1_bundle.zip"))
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "t1_print.png", zr.File[0].Name)
	assert.Equal(t, "t1_cut.pdf", zr.File[1].Name)
}

func TestRunCompose_Errors(t *testing.T) {
	dir, configPath, jobPath := writeWorkspace(t)

	_, err := runCompose(context.Background(), composeOptions{
		JobPath: jobPath, ConfigPath: configPath, OutDir: dir, Formats: "bmp",
	})
	assert.ErrorContains(t, err, "bmp")

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"stickers":{}}`), 0644))
	_, err = runCompose(context.Background(), composeOptions{
		JobPath: empty, ConfigPath: configPath, OutDir: dir, Formats: "png",
	})
	assert.ErrorContains(t, err, "no stickers")

	_, err = runCompose(context.Background(), composeOptions{
		JobPath: jobPath, ConfigPath: configPath, OutDir: dir, Formats: "png",
		PrintBase: filepath.Join(dir, "nope.png"),
	})
	assert.ErrorContains(t, err, "nope.png")
}

func TestRunCompose_OutputsStayInOutDir(t *testing.T) {
	dir, configPath, _ := writeWorkspace(t)
	jobPath := filepath.Join(dir, "escape.json")
	job := `{"id":"../escape","stickers":{"red":{"path":"red.png","quantity":1}}}`
	require.NoError(t, os.WriteFile(jobPath, []byte(job), 0644))

	out := filepath.Join(dir, "out")
	written, err := runCompose(context.Background(), composeOptions{
		JobPath: jobPath, ConfigPath: configPath, OutDir: out, Formats: "png",
	})
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, out, filepath.Dir(written[0]))
	assert.NotContains(t, written[0], "escape")
}

func TestRunGrid(t *testing.T) {
	dir, configPath, _ := writeWorkspace(t)
	settings, err := project.LoadSettings(configPath)
	require.NoError(t, err)

	out := filepath.Join(dir, "grid.png")
	require.NoError(t, runGrid(settings, "", out))

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 300), img.Bounds())
}

func TestRunSilhouette(t *testing.T) {
	dir, configPath, _ := writeWorkspace(t)
	settings, err := project.LoadSettings(configPath)
	require.NoError(t, err)

	out := filepath.Join(dir, "red.svg")
	require.NoError(t, runSilhouette(settings, filepath.Join(dir, "red.png"), true, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "<path"))
	assert.Contains(t, string(data), `id="red.png-0"`)
}

func TestRunEstimate(t *testing.T) {
	dir, configPath, jobPath := writeWorkspace(t)
	settings, err := project.LoadSettings(configPath)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runEstimate(&buf, settings, jobPath, 50, 2))
	out := buf.String()
	assert.Contains(t, out, "Units:          3\n")
	assert.Contains(t, out, "Sheets needed:  2 (1 empty cells)\n")
	assert.Contains(t, out, "With 50% waste: 3\n")
	assert.Contains(t, out, "Estimated cost: 6.00\n")

	assert.Error(t, runEstimate(&buf, settings, filepath.Join(dir, "missing.json"), 0, 0))
}

func TestListPresets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listPresets(&buf, filepath.Join(t.TempDir(), "presets.json")))
	assert.Contains(t, buf.String(), "a3-240")
	assert.Contains(t, buf.String(), "2828x4000")
	assert.Contains(t, buf.String(), "5x7")
}

func TestBackupRestore(t *testing.T) {
	src := t.TempDir()
	settings := model.DefaultSettings()
	settings.Plotter.Profile = "Vinyl"
	require.NoError(t, project.SaveSettings(filepath.Join(src, "config.json"), settings))
	custom := model.GetProfile("Grbl")
	custom.Name = "Vinyl"
	require.NoError(t, project.SaveCustomProfiles(filepath.Join(src, "profiles.json"), []model.GCodeProfile{custom}))

	backup := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, runBackup(src, backup))

	dst := t.TempDir()
	require.NoError(t, runRestore(dst, backup))

	restored, err := project.LoadSettings(filepath.Join(dst, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, "Vinyl", restored.Plotter.Profile)

	profiles, err := project.LoadCustomProfiles(filepath.Join(dst, "profiles.json"))
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Vinyl", project.FindProfile("Vinyl", profiles).Name)

	presets, err := project.LoadPresets(filepath.Join(dst, "presets.json"))
	require.NoError(t, err)
	assert.NotNil(t, presets.FindByID("a3-240"))
}
