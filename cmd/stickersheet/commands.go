package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/piwi3910/StickerSheet/internal/engine"
	"github.com/piwi3910/StickerSheet/internal/export"
	"github.com/piwi3910/StickerSheet/internal/importer"
	"github.com/piwi3910/StickerSheet/internal/model"
	"github.com/piwi3910/StickerSheet/internal/project"
	"github.com/piwi3910/StickerSheet/internal/silhouette"
)

func runGrid(settings model.Settings, basePath, out string) error {
	base, err := openImage(basePath)
	if err != nil {
		return err
	}
	grid, err := engine.NewGrid(settings.Sheet)
	if err != nil {
		return err
	}
	img, err := grid.Preview(base, settings.Grid)
	if err != nil {
		return err
	}
	return export.WriteFile(out, func(w io.Writer) error {
		return export.WritePNG(w, img)
	})
}

// runSilhouette traces one image and writes its outline as an SVG the size
// of the sticker canvas.
func runSilhouette(settings model.Settings, imagePath string, border bool, out string) error {
	src, err := openImage(imagePath)
	if err != nil {
		return err
	}
	s, err := silhouette.NewExtractor(settings.Silhouette, settings.Sticker).Extract(src, border)
	if err != nil {
		return err
	}
	key := filepath.Base(imagePath)
	sheet := engine.CutSheet{
		Sheet: model.SheetConfig{
			Width:  int(s.Width),
			Height: int(s.Height),
			DPI:    settings.Sheet.DPI,
		},
		JobID: key,
		Paths: []engine.CutPath{{
			Placement:  engine.Placement{Key: key},
			Silhouette: s,
		}},
	}
	return export.WriteFile(out, func(w io.Writer) error {
		return export.WriteCutSVG(w, sheet, settings.Cut)
	})
}

// runEstimate prints how many sheets the job needs on the configured sheet.
func runEstimate(w io.Writer, settings model.Settings, jobPath string, wastePercent, price float64) error {
	imported := importer.ImportFile(jobPath)
	if len(imported.Job.Entries) == 0 {
		return fmt.Errorf("import %s: %s", jobPath, strings.Join(imported.Errors, "; "))
	}
	est := model.EstimatePrint(imported.Job, settings.Sheet, wastePercent, price)
	fmt.Fprintf(w, "Units:          %d\n", est.Units)
	fmt.Fprintf(w, "Cells/sheet:    %d\n", est.Capacity)
	fmt.Fprintf(w, "Sheets needed:  %d (%d empty cells)\n", est.SheetsNeeded, est.EmptyCells)
	fmt.Fprintf(w, "With %.0f%% waste: %d\n", est.WastePercent, est.SheetsWithWaste)
	if est.SheetArea > 0 {
		fmt.Fprintf(w, "Paper:          %.2f m²\n", est.SheetArea*float64(est.SheetsWithWaste)/1e6)
	}
	if est.PricePerSheet > 0 {
		fmt.Fprintf(w, "Estimated cost: %.2f\n", est.EstimatedCost)
	}
	return nil
}

func listPresets(w io.Writer, path string) error {
	store, err := project.LoadPresets(path)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tGRID\tDPI")
	for _, p := range store.Presets {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%dx%d\t%d\n",
			p.ID, p.Name, p.Sheet.Width, p.Sheet.Height, p.Sheet.Columns, p.Sheet.Rows, p.Sheet.DPI)
	}
	return tw.Flush()
}

// runBackup gathers the files of a config directory into one backup file.
func runBackup(configDir, out string) error {
	settings, err := project.LoadSettings(filepath.Join(configDir, "config.json"))
	if err != nil {
		return err
	}
	presets, err := project.LoadPresets(filepath.Join(configDir, "presets.json"))
	if err != nil {
		return err
	}
	profiles, err := project.LoadCustomProfiles(filepath.Join(configDir, "profiles.json"))
	if err != nil {
		return err
	}
	return project.ExportAllData(out, settings, presets, profiles)
}

// runRestore overwrites the files of a config directory from a backup.
func runRestore(configDir, in string) error {
	backup, err := project.ImportAllData(in)
	if err != nil {
		return err
	}
	if err := project.SaveSettings(filepath.Join(configDir, "config.json"), backup.Settings); err != nil {
		return err
	}
	if err := project.SavePresets(filepath.Join(configDir, "presets.json"), backup.Presets); err != nil {
		return err
	}
	return project.SaveCustomProfiles(filepath.Join(configDir, "profiles.json"), backup.Profiles)
}
