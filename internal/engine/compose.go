package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/StickerSheet/internal/cache"
	"github.com/piwi3910/StickerSheet/internal/mask"
	"github.com/piwi3910/StickerSheet/internal/model"
	"github.com/piwi3910/StickerSheet/internal/silhouette"
	"github.com/piwi3910/StickerSheet/internal/sticker"
)

// Composer produces the print sheet and the cut sheet of a job.
type Composer struct {
	Settings    model.Settings
	Renderer    *sticker.Renderer
	Silhouettes *CachedExtractor
}

// NewComposer builds a composer from settings. store may be nil.
func NewComposer(settings model.Settings, store cache.Store) *Composer {
	ex := silhouette.NewExtractor(settings.Silhouette, settings.Sticker)
	return &Composer{
		Settings:    settings,
		Renderer:    sticker.New(settings.Sticker),
		Silhouettes: NewCachedExtractor(ex, store),
	}
}

func (c *Composer) workers() int {
	if c.Settings.Workers > 0 {
		return c.Settings.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ComposePrint renders every planned entry once and pastes it, centred and
// fitted, into each of its cells over a copy of base. The result has the
// size of base, or of the sheet when base is nil (white sheet).
//
// A sticker that cannot be rendered is logged and left out; its cells stay
// empty so that the remaining units keep their positions.
func (c *Composer) ComposePrint(base image.Image, plan Plan, job model.Job) (*image.NRGBA, error) {
	start := time.Now()
	out := baseSheet(base, plan.Grid.Sheet)

	rendered := make(map[int]*image.NRGBA)
	entries := plan.Entries()
	results := make([]*image.NRGBA, len(entries))

	var g errgroup.Group
	g.SetLimit(c.workers())
	for i, idx := range entries {
		i, idx := i, idx
		g.Go(func() error {
			results[i] = c.renderEntry(job, idx)
			return nil
		})
	}
	_ = g.Wait()
	for i, idx := range entries {
		if results[i] != nil {
			rendered[idx] = results[i]
		}
	}

	fitted := make(map[int]*image.NRGBA)
	placed := 0
	for _, pl := range plan.Placements {
		img, ok := rendered[pl.Entry]
		if !ok {
			continue
		}
		fit := plan.Grid.Fit(pl.Cell, img.Bounds().Dx(), img.Bounds().Dy())
		thumb, ok := fitted[pl.Entry]
		if !ok {
			thumb = thumbnail(img, fit.Rect.Dx(), fit.Rect.Dy())
			fitted[pl.Entry] = thumb
		}
		draw.Draw(out, fit.Rect, thumb, image.Point{}, draw.Over)
		placed++
	}

	Logger().Info("print sheet composed",
		"job", job.ID,
		"placed", placed,
		"dropped", plan.Dropped,
		"elapsed", time.Since(start))
	return out, nil
}

// renderEntry returns the bordered sticker, or the centred art on the
// configured background when the entry has no border. It returns nil when the entry must be skipped.
func (c *Composer) renderEntry(job model.Job, idx int) *image.NRGBA {
	e := job.Entries[idx]
	if e.Request.Source == nil {
		Logger().Warn("sticker skipped, no source image", "key", e.Key, "path", e.Request.Path)
		return nil
	}

	var (
		img *image.NRGBA
		err error
	)
	if e.Request.Border {
		img, err = c.Renderer.Render(e.Request.Source)
	} else {
		img, err = c.Renderer.Plain(e.Request.Source)
	}
	switch {
	case errors.Is(err, mask.ErrEmptySource) && img != nil:
		Logger().Warn("sticker source is fully transparent", "key", e.Key)
	case err != nil:
		Logger().Warn("sticker skipped, render failed", "key", e.Key, "error", err)
		return nil
	}
	return img
}

// thumbnail resizes img to exactly w×h unless it already has that size.
func thumbnail(img *image.NRGBA, w, h int) *image.NRGBA {
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// CutPath is one placed silhouette in sheet coordinates (Y down).
type CutPath struct {
	Placement  Placement
	Silhouette silhouette.Silhouette
}

// CutSheet is the vector counterpart of the print sheet.
type CutSheet struct {
	Sheet   model.SheetConfig
	JobID   string
	Paths   []CutPath
	Skipped []string // keys whose silhouette could not be extracted
}

// ComposeCut extracts each planned entry's silhouette once and places a
// copy in each of its cells, using the same fit as ComposePrint. Entries
// without a usable outline are logged and skipped; their cells stay empty.
// Only context cancellation aborts the call.
func (c *Composer) ComposeCut(ctx context.Context, plan Plan, job model.Job) (CutSheet, error) {
	start := time.Now()
	entries := plan.Entries()
	results := make([]*silhouette.Silhouette, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())
	for i, idx := range entries {
		i, idx := i, idx
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := job.Entries[idx]
			if e.Request.Source == nil {
				Logger().Warn("silhouette skipped, no source image", "key", e.Key, "path", e.Request.Path)
				return nil
			}
			s, err := c.Silhouettes.Extract(gctx, e.Request.Source, e.Request.Border)
			if err != nil {
				Logger().Warn("silhouette skipped", "key", e.Key, "error", err)
				return nil
			}
			results[i] = &s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CutSheet{}, fmt.Errorf("composing cut sheet: %w", err)
	}

	sils := make(map[int]silhouette.Silhouette)
	sheet := CutSheet{Sheet: plan.Grid.Sheet, JobID: job.ID}
	for i, idx := range entries {
		if results[i] == nil {
			sheet.Skipped = append(sheet.Skipped, job.Entries[idx].Key)
			continue
		}
		sils[idx] = *results[i]
	}

	for _, pl := range plan.Placements {
		s, ok := sils[pl.Entry]
		if !ok {
			continue
		}
		sheet.Paths = append(sheet.Paths, CutPath{
			Placement:  pl,
			Silhouette: PlaceSilhouette(plan.Grid, pl.Cell, s),
		})
	}

	Logger().Info("cut sheet composed",
		"job", job.ID,
		"paths", len(sheet.Paths),
		"skipped", len(sheet.Skipped),
		"elapsed", time.Since(start))
	return sheet, nil
}

// PlaceSilhouette maps a silhouette from its canvas into cell. The canvas is
// scaled uniformly by the grid fit and centred on the same pixel rectangle
// the raster sticker occupies.
func PlaceSilhouette(g Grid, cell Cell, s silhouette.Silhouette) silhouette.Silhouette {
	w, h := int(s.Width+0.5), int(s.Height+0.5)
	fit := g.Fit(cell, w, h)
	ox := float64(fit.Rect.Min.X) + (float64(fit.Rect.Dx())-s.Width*fit.Scale)/2
	oy := float64(fit.Rect.Min.Y) + (float64(fit.Rect.Dy())-s.Height*fit.Scale)/2
	return s.Transform(fit.Scale, vec(ox, oy))
}
