package gcode

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/piwi3910/StickerSheet/internal/engine"
	"github.com/piwi3910/StickerSheet/internal/model"
)

// Generator produces plotter GCode from a composed cut sheet.
type Generator struct {
	Settings model.PlotterSettings
	Cut      model.CutStyle
	profile  model.GCodeProfile
}

// New creates a generator for one of the built-in profiles, selected by
// settings.Profile.
func New(settings model.PlotterSettings, cut model.CutStyle) *Generator {
	return NewWithProfile(settings, cut, model.GetProfile(settings.Profile))
}

// NewWithProfile creates a generator for an explicit, possibly custom, profile.
func NewWithProfile(settings model.PlotterSettings, cut model.CutStyle, profile model.GCodeProfile) *Generator {
	return &Generator{
		Settings: settings,
		Cut:      cut,
		profile:  profile,
	}
}

// Profile returns the post-processor the generator writes for.
func (g *Generator) Profile() model.GCodeProfile { return g.profile }

// GenerateCutSheet produces GCode that cuts every silhouette of the sheet.
// Curves are flattened to polylines, pixels become millimetres at the sheet
// DPI and Y is flipped so the machine origin is the sheet's bottom-left
// corner, shifted by the plotter origin.
func (g *Generator) GenerateCutSheet(sheet engine.CutSheet) string {
	var b strings.Builder

	g.writeHeader(&b, sheet)
	for i, p := range sheet.Paths {
		g.writePath(&b, sheet, p, i+1)
	}
	g.writeFooter(&b)
	return b.String()
}

func (g *Generator) writeHeader(b *strings.Builder, sheet engine.CutSheet) {
	p := g.profile
	k := sheet.Sheet.MillimetresPerPixel()

	b.WriteString(g.comment(fmt.Sprintf("StickerSheet GCode - job %s", sheet.JobID)))
	b.WriteString(g.comment(fmt.Sprintf("Sheet: %.1f x %.1f mm at %d dpi",
		float64(sheet.Sheet.Width)*k, float64(sheet.Sheet.Height)*k, sheet.Sheet.DPI)))
	b.WriteString(g.comment(fmt.Sprintf("Paths: %d", len(sheet.Paths))))
	b.WriteString(g.comment(fmt.Sprintf("Feed: %.0f mm/min, Plunge: %.0f mm/min, Power: %d",
		g.Settings.FeedRate, g.Settings.PlungeRate, g.Settings.ToolPower)))
	if p.UsesZ {
		b.WriteString(g.comment(fmt.Sprintf("Depth: %.2fmm in %d passes", g.Settings.CutDepth, g.passes())))
	}
	if g.Settings.ToolOffset != 0 {
		b.WriteString(g.comment(fmt.Sprintf("Tool offset: %.2fmm", g.Settings.ToolOffset)))
	}
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.UsesZ {
		if p.ToolOn != "" {
			b.WriteString(g.toolOn() + "\n")
		}
		b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	}
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove,
		g.format(g.Settings.OriginX), g.format(g.Settings.OriginY)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))
	for _, code := range g.profile.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}
}

func (g *Generator) writePath(b *strings.Builder, sheet engine.CutSheet, cp engine.CutPath, num int) {
	p := g.profile
	b.WriteString(g.comment(fmt.Sprintf("--- Path %d: %s #%d, cell %d ---",
		num, cp.Placement.Key, cp.Placement.Unit+1, cp.Placement.Cell.Index)))

	pts := g.machinePoints(sheet, cp)
	if len(pts) < 3 {
		b.WriteString(g.comment("WARNING: path has fewer than 3 points, skipping"))
		return
	}

	passes := g.passes()
	for pass := 1; pass <= passes; pass++ {
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(pts[0].X), g.format(pts[0].Y)))

		if p.UsesZ {
			depth := math.Min(float64(pass)*g.Settings.PassDepth, g.Settings.CutDepth)
			if g.Settings.PassDepth <= 0 {
				depth = g.Settings.CutDepth
			}
			b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, passes, depth)))
			b.WriteString(fmt.Sprintf("%s Z%s F%s\n", p.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))
		} else {
			b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d", pass, passes)))
			b.WriteString(g.toolOn() + "\n")
		}

		for i := 1; i < len(pts); i++ {
			b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove,
				g.format(pts[i].X), g.format(pts[i].Y), g.format(g.Settings.FeedRate)))
		}
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove,
			g.format(pts[0].X), g.format(pts[0].Y), g.format(g.Settings.FeedRate)))

		if p.UsesZ {
			b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
		} else if p.ToolOff != "" {
			b.WriteString(p.ToolOff + "\n")
		}
	}
	b.WriteString("\n")
}

// machinePoints flattens the path and maps it into machine millimetres,
// applying the tool offset last.
func (g *Generator) machinePoints(sheet engine.CutSheet, cp engine.CutPath) []r2.Vec {
	k := sheet.Sheet.MillimetresPerPixel()
	flat := cp.Silhouette.FlipY(float64(sheet.Sheet.Height)).Flatten(g.Cut.Flatness)

	pts := make([]r2.Vec, 0, len(flat))
	for _, v := range flat {
		mm := r2.Vec{X: v.X*k + g.Settings.OriginX, Y: v.Y*k + g.Settings.OriginY}
		if len(pts) > 0 && r2.Norm(r2.Sub(mm, pts[len(pts)-1])) < 1e-9 {
			continue
		}
		pts = append(pts, mm)
	}
	if g.Settings.ToolOffset != 0 {
		pts = offsetOutline(pts, g.Settings.ToolOffset)
	}
	return pts
}

// passes is the number of passes needed to reach the cut depth.
func (g *Generator) passes() int {
	if g.Settings.PassDepth <= 0 || g.Settings.CutDepth <= 0 {
		return 1
	}
	return int(math.Ceil(g.Settings.CutDepth/g.Settings.PassDepth - 1e-9))
}

// offsetOutline shifts every edge of a closed polyline outward by dist,
// moving each vertex to the mitre of its two shifted edges. Positive
// distances grow the outline whatever its winding. Mitres of very sharp
// corners are capped at twice dist.
func offsetOutline(pts []r2.Vec, dist float64) []r2.Vec {
	n := len(pts)
	if n < 3 {
		return pts
	}
	// Left normals point inward on a counter-clockwise outline.
	if signedArea(pts) > 0 {
		dist = -dist
	}

	out := make([]r2.Vec, n)
	for i := range pts {
		prev, curr, next := pts[(i-1+n)%n], pts[i], pts[(i+1)%n]
		n1 := leftNormal(r2.Sub(curr, prev))
		n2 := leftNormal(r2.Sub(next, curr))
		denom := math.Max(1+r2.Dot(n1, n2), 0.5)
		out[i] = r2.Add(curr, r2.Scale(dist/denom, r2.Add(n1, n2)))
	}
	return out
}

func leftNormal(e r2.Vec) r2.Vec {
	l := r2.Norm(e)
	if l < 1e-12 {
		return r2.Vec{}
	}
	return r2.Vec{X: -e.Y / l, Y: e.X / l}
}

func signedArea(pts []r2.Vec) float64 {
	var a float64
	for i := range pts {
		a += r2.Cross(pts[i], pts[(i+1)%len(pts)])
	}
	return a / 2
}

// toolOn formats the profile's tool-on code with the tool power.
func (g *Generator) toolOn() string {
	if strings.Contains(g.profile.ToolOn, "%d") {
		return fmt.Sprintf(g.profile.ToolOn, g.Settings.ToolPower)
	}
	return g.profile.ToolOn
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	s := fmt.Sprintf(format, v)
	if strings.Trim(s, "-0.") == "" {
		return strings.TrimPrefix(s, "-")
	}
	return s
}
