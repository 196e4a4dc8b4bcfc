// Package engine lays stickers out on a sheet. It plans which sticker goes
// into which grid cell and composes the print sheet and the cut sheet from
// the same plan, so that the cutter cuts exactly where the printer printed.
package engine

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/piwi3910/StickerSheet/internal/model"
)

// Cell is one grid slot in sheet pixel coordinates.
type Cell struct {
	Index  int
	Row    int
	Col    int
	Bounds image.Rectangle
}

// Grid is the fixed cell layout of a sheet. Cell sizes are the integer floor
// of the margin extent divided by the column and row counts; any remainder
// stays unused at the right and bottom of the margin.
type Grid struct {
	Sheet      model.SheetConfig
	CellWidth  int
	CellHeight int
	Cells      []Cell
}

// NewGrid validates the sheet and enumerates its cells row-major.
func NewGrid(sheet model.SheetConfig) (Grid, error) {
	if err := sheet.Validate(); err != nil {
		return Grid{}, err
	}
	g := Grid{
		Sheet:      sheet,
		CellWidth:  sheet.Margin.Width() / sheet.Columns,
		CellHeight: sheet.Margin.Height() / sheet.Rows,
		Cells:      make([]Cell, 0, sheet.Capacity()),
	}
	for row := 0; row < sheet.Rows; row++ {
		for col := 0; col < sheet.Columns; col++ {
			x0 := sheet.Margin.MinX + col*g.CellWidth
			y0 := sheet.Margin.MinY + row*g.CellHeight
			g.Cells = append(g.Cells, Cell{
				Index:  len(g.Cells),
				Row:    row,
				Col:    col,
				Bounds: image.Rect(x0, y0, x0+g.CellWidth, y0+g.CellHeight),
			})
		}
	}
	return g, nil
}

// Capacity returns the number of cells.
func (g Grid) Capacity() int { return len(g.Cells) }

// Fit is the placement of a w×h element inside a cell: a uniform scale
// (never above 1) and the integer pixel rectangle the scaled element
// occupies, centred in the cell.
type Fit struct {
	Scale float64
	Rect  image.Rectangle
}

// Fit computes how an element of size w×h sits in cell. Both composers use
// it, which keeps print and cut congruent.
func (g Grid) Fit(cell Cell, w, h int) Fit {
	if w <= 0 || h <= 0 {
		return Fit{Rect: image.Rectangle{Min: cell.Bounds.Min, Max: cell.Bounds.Min}}
	}
	cw, ch := cell.Bounds.Dx(), cell.Bounds.Dy()
	s := math.Min(float64(cw)/float64(w), float64(ch)/float64(h))
	s = math.Min(s, 1)

	sw := int(math.Floor(float64(w) * s))
	sh := int(math.Floor(float64(h) * s))
	sw, sh = max(sw, 1), max(sh, 1)

	x := cell.Bounds.Min.X + (cw-sw)/2
	y := cell.Bounds.Min.Y + (ch-sh)/2
	return Fit{Scale: s, Rect: image.Rect(x, y, x+sw, y+sh)}
}

// Preview draws the cell outlines over base for operator verification.
// A nil base yields a white sheet of the configured size.
func (g Grid) Preview(base image.Image, style model.GridStyle) (*image.NRGBA, error) {
	lineColor, err := style.LineColor.NRGBA()
	if err != nil {
		return nil, fmt.Errorf("grid line colour: %w", err)
	}
	out := baseSheet(base, g.Sheet)
	width := style.LineWidth
	if width <= 0 {
		width = 1
	}
	for _, c := range g.Cells {
		strokeRect(out, c.Bounds, width, lineColor)
	}
	return out, nil
}

// strokeRect draws an inward outline of the given width. The right and
// bottom edges are inclusive, so neighbouring cells share their border line.
func strokeRect(img *image.NRGBA, r image.Rectangle, width int, c color.Color) {
	src := image.NewUniform(c)
	outer := image.Rect(r.Min.X, r.Min.Y, r.Max.X+1, r.Max.Y+1)
	edges := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+width),
		image.Rect(outer.Min.X, outer.Max.Y-width, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+width, outer.Max.Y),
		image.Rect(outer.Max.X-width, outer.Min.Y, outer.Max.X, outer.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Over)
	}
}

// baseSheet copies base into a fresh sheet, or makes a white one when base
// is nil. Callers never see their base image modified.
func baseSheet(base image.Image, sheet model.SheetConfig) *image.NRGBA {
	if base == nil {
		return imaging.New(sheet.Width, sheet.Height, color.White)
	}
	if b := base.Bounds(); b.Dx() != sheet.Width || b.Dy() != sheet.Height {
		Logger().Warn("base image size differs from sheet",
			"base_width", b.Dx(), "base_height", b.Dy(),
			"sheet_width", sheet.Width, "sheet_height", sheet.Height)
	}
	return imaging.Clone(base)
}
