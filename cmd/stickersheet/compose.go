package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/piwi3910/StickerSheet/internal/cache"
	"github.com/piwi3910/StickerSheet/internal/engine"
	"github.com/piwi3910/StickerSheet/internal/export"
	"github.com/piwi3910/StickerSheet/internal/gcode"
	"github.com/piwi3910/StickerSheet/internal/importer"
	"github.com/piwi3910/StickerSheet/internal/model"
	"github.com/piwi3910/StickerSheet/internal/project"
)

var knownFormats = []string{"png", "pdf", "svg", "dxf", "gcode", "preview", "zip"}

type composeOptions struct {
	JobPath      string
	ConfigPath   string
	Preset       string
	PresetsPath  string
	PrintBase    string
	CutBase      string
	OutDir       string
	Formats      string
	ProfilesPath string
	RedisAddr    string
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// parseFormats splits a comma separated format list, dropping duplicates.
func parseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if !slices.Contains(knownFormats, f) {
			return nil, fmt.Errorf("unknown format %q (want %s)", f, strings.Join(knownFormats, ","))
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New("no output format selected")
	}
	return out, nil
}

// loadSettings reads the settings file and replaces its sheet with the named
// preset, if any.
func loadSettings(configPath, presetsPath, preset string) (model.Settings, error) {
	settings, err := project.LoadSettings(configPath)
	if err != nil {
		return model.Settings{}, err
	}
	if preset == "" {
		return settings, nil
	}
	store, err := project.LoadPresets(presetsPath)
	if err != nil {
		return model.Settings{}, err
	}
	p := store.Lookup(preset)
	if p == nil {
		return model.Settings{}, fmt.Errorf("unknown preset %q (have %s)", preset, strings.Join(store.Names(), ", "))
	}
	if err := p.Sheet.Validate(); err != nil {
		return model.Settings{}, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	settings.Sheet = p.Sheet
	return settings, nil
}

func openImage(path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return img, nil
}

// openStore returns the silhouette cache. An unreachable redis falls back to
// the in-memory store.
func openStore(ctx context.Context, addr string) (cache.Store, func()) {
	if addr == "" {
		return cache.NewMemory(), func() {}
	}
	r := cache.NewRedis(cache.RedisConf{
		Addr:        addr,
		TTL:         24 * time.Hour,
		DialTimeout: 2 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		engine.Logger().Warn("redis unavailable, using memory cache", "addr", addr, "error", err)
		_ = r.Close()
		return cache.NewMemory(), func() {}
	}
	return r, func() { _ = r.Close() }
}

// runCompose imports the job, composes both sheets and writes the requested
// outputs into OutDir. It returns the written file paths.
func runCompose(ctx context.Context, opts composeOptions) ([]string, error) {
	formats, err := parseFormats(opts.Formats)
	if err != nil {
		return nil, err
	}
	settings, err := loadSettings(opts.ConfigPath, opts.PresetsPath, opts.Preset)
	if err != nil {
		return nil, err
	}

	imported := importer.ImportFile(opts.JobPath)
	for _, w := range imported.Warnings {
		engine.Logger().Warn(w, "job", opts.JobPath)
	}
	if len(imported.Job.Entries) == 0 {
		return nil, fmt.Errorf("import %s: %s", opts.JobPath, strings.Join(imported.Errors, "; "))
	}
	for _, e := range imported.Errors {
		engine.Logger().Warn("job entry dropped", "job", opts.JobPath, "reason", e)
	}
	job, srcErrs := importer.LoadSources(imported.Job, filepath.Dir(opts.JobPath))
	for _, e := range srcErrs {
		engine.Logger().Warn("sticker art not loaded", "error", e)
	}

	printBase, err := openImage(opts.PrintBase)
	if err != nil {
		return nil, err
	}
	cutBase, err := openImage(opts.CutBase)
	if err != nil {
		return nil, err
	}

	grid, err := engine.NewGrid(settings.Sheet)
	if err != nil {
		return nil, err
	}
	plan := engine.NewPlan(grid, job)
	if plan.Dropped > 0 {
		est := model.EstimatePrint(job, settings.Sheet, 0, 0)
		engine.Logger().Info("job does not fit one sheet",
			"job", job.ID, "sheets_needed", est.SheetsNeeded)
	}

	store, closeStore := openStore(ctx, opts.RedisAddr)
	defer closeStore()
	composer := engine.NewComposer(settings, store)

	printSheet, err := composer.ComposePrint(printBase, plan, job)
	if err != nil {
		return nil, err
	}
	if settings.Label.Enabled {
		l := settings.Label
		rect := image.Rect(l.X, l.Y, l.X+l.Size, l.Y+l.Size)
		if err := export.StampLabel(printSheet, export.CollectLabelInfo(job.ID, plan), rect); err != nil {
			engine.Logger().Warn("job label not stamped", "error", err)
		}
	}
	cutSheet, err := composer.ComposeCut(ctx, plan, job)
	if err != nil {
		return nil, err
	}

	ref := cutBase
	if ref == nil && settings.Cut.Reference {
		ref = printSheet
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	name := func(suffix string) string {
		return filepath.Join(opts.OutDir, filepath.Base(job.ID)+suffix)
	}

	var written []string
	write := func(path string, fn func(io.Writer) error) error {
		if err := export.WriteFile(path, fn); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	for _, f := range formats {
		var err error
		switch f {
		case "png":
			err = write(name("_print.png"), func(w io.Writer) error {
				return export.WritePNG(w, printSheet)
			})
		case "pdf":
			err = write(name("_cut.pdf"), func(w io.Writer) error {
				return export.WriteCutPDF(w, cutSheet, ref, settings.Cut)
			})
		case "svg":
			err = write(name("_cut.svg"), func(w io.Writer) error {
				return export.WriteCutSVG(w, cutSheet, settings.Cut)
			})
		case "dxf":
			path := name("_cut.dxf")
			if err = export.WriteCutDXF(path, cutSheet, settings.Cut); err == nil {
				written = append(written, path)
			}
		case "gcode":
			var custom []model.GCodeProfile
			if opts.ProfilesPath != "" {
				if custom, err = project.LoadCustomProfiles(opts.ProfilesPath); err != nil {
					return written, err
				}
			}
			profile := project.FindProfile(settings.Plotter.Profile, custom)
			code := gcode.NewWithProfile(settings.Plotter, settings.Cut, profile).GenerateCutSheet(cutSheet)
			for _, v := range gcode.CheckBounds(gcode.ParseGCode(code), settings.Sheet, settings.Plotter, 0.01) {
				engine.Logger().Warn("cut move outside the sheet", "violation", v.String())
			}
			err = write(name("_cut.gcode"), func(w io.Writer) error {
				_, err := io.WriteString(w, code)
				return err
			})
		case "preview":
			err = write(name("_preview.png"), func(w io.Writer) error {
				c, err := settings.Cut.StrokeColor.NRGBA()
				if err != nil {
					return err
				}
				img := engine.RenderCutPreview(printSheet, cutSheet, c, settings.Cut.StrokeWidth, settings.Cut.Flatness)
				return export.WritePNG(w, img)
			})
		case "zip":
			err = write(name("_bundle.zip"), func(w io.Writer) error {
				return writeBundle(w, job.ID, printSheet, cutSheet, ref, settings.Cut)
			})
		}
		if err != nil {
			return written, fmt.Errorf("%s output: %w", f, err)
		}
	}

	engine.Logger().Info("job composed",
		"job", job.ID,
		"placed", len(plan.Placements),
		"dropped", plan.Dropped,
		"cut_paths", len(cutSheet.Paths),
		"skipped", len(cutSheet.Skipped))
	return written, nil
}

// writeBundle zips the print PNG with its cut PDF so that the pair can be
// handed to the print shop together.
func writeBundle(w io.Writer, jobID string, printSheet image.Image, cut engine.CutSheet, ref image.Image, style model.CutStyle) error {
	var png, pdf bytes.Buffer
	if err := export.WritePNG(&png, printSheet); err != nil {
		return err
	}
	if err := export.WriteCutPDF(&pdf, cut, ref, style); err != nil {
		return err
	}
	return export.WriteBundle(w, []export.BundleFile{
		{Name: jobID + "_print.png", Data: png.Bytes()},
		{Name: jobID + "_cut.pdf", Data: pdf.Bytes()},
	})
}
