package gcode

import (
	"fmt"
	"math"

	"github.com/piwi3910/StickerSheet/internal/model"
)

// Violation is a cutting move that leaves the sheet.
type Violation struct {
	Index int // position in the parsed move list
	X, Y  float64
	Over  float64 // mm beyond the nearest sheet edge
}

func (v Violation) String() string {
	return fmt.Sprintf("move %d cuts at (%.3f, %.3f), %.3fmm off the sheet", v.Index, v.X, v.Y, v.Over)
}

// CheckBounds reports cutting moves whose end point lies outside the sheet
// rectangle in machine coordinates, allowing tolerance mm of slack. Only
// the first offending point of each consecutive run is reported.
func CheckBounds(moves []Move, sheet model.SheetConfig, plotter model.PlotterSettings, tolerance float64) []Violation {
	k := sheet.MillimetresPerPixel()
	minX, minY := plotter.OriginX, plotter.OriginY
	maxX := minX + float64(sheet.Width)*k
	maxY := minY + float64(sheet.Height)*k

	var out []Violation
	inRun := false
	for i, m := range moves {
		if !m.Cutting() {
			inRun = false
			continue
		}
		over := distanceOutside(m.ToX, m.ToY, minX, minY, maxX, maxY)
		if over <= tolerance {
			inRun = false
			continue
		}
		if !inRun {
			out = append(out, Violation{Index: i, X: m.ToX, Y: m.ToY, Over: over})
		}
		inRun = true
	}
	return out
}

// distanceOutside is the distance from (x, y) to the rectangle, zero inside.
func distanceOutside(x, y, minX, minY, maxX, maxY float64) float64 {
	dx := max(minX-x, 0, x-maxX)
	dy := max(minY-y, 0, y-maxY)
	if dx == 0 {
		return dy
	}
	if dy == 0 {
		return dx
	}
	return math.Hypot(dx, dy)
}
