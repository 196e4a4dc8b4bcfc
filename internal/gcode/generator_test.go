package gcode

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/piwi3910/StickerSheet/internal/engine"
	"github.com/piwi3910/StickerSheet/internal/model"
	"github.com/piwi3910/StickerSheet/internal/silhouette"
)

// newTestPlotter returns settings with predictable output: 2 passes of 0.3mm.
func newTestPlotter(profile string) model.PlotterSettings {
	p := model.DefaultSettings().Plotter
	p.Profile = profile
	p.FeedRate = 1000
	p.PlungeRate = 300
	p.ToolPower = 1000
	p.SafeZ = 5
	p.CutDepth = 0.6
	p.PassDepth = 0.3
	p.ToolOffset = 0
	return p
}

func straight(a, b r2.Vec) silhouette.Bezier {
	d := r2.Sub(b, a)
	return silhouette.Bezier{Start: a, C1: r2.Add(a, r2.Scale(1.0/3, d)), C2: r2.Add(a, r2.Scale(2.0/3, d)), End: b}
}

func squarePath(key string, unit int, x0, y0, x1, y1 float64) engine.CutPath {
	p := []r2.Vec{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
	s := silhouette.Silhouette{Width: x1 - x0, Height: y1 - y0}
	for i := range p {
		s.Segments = append(s.Segments, straight(p[i], p[(i+1)%len(p)]))
	}
	return engine.CutPath{Placement: engine.Placement{Key: key, Unit: unit}, Silhouette: s}
}

// newTestSheet is 40x30mm at 0.1mm per pixel with two 10mm squares.
func newTestSheet(paths ...engine.CutPath) engine.CutSheet {
	if paths == nil {
		paths = []engine.CutPath{
			squarePath("sq", 0, 20, 20, 120, 120),
			squarePath("sq", 1, 220, 20, 320, 120),
		}
	}
	return engine.CutSheet{
		Sheet: model.SheetConfig{
			Width: 400, Height: 300,
			Margin:  model.Margin{MinX: 10, MaxX: 390, MinY: 10, MaxY: 290},
			Columns: 2, Rows: 1,
			DPI: 254,
		},
		JobID: "job1",
		Paths: paths,
	}
}

func newTestCut() model.CutStyle {
	return model.CutStyle{StrokeColor: model.Black, StrokeWidth: 1, Flatness: 0.5}
}

func TestGenerateCutSheet_HeaderFooter(t *testing.T) {
	code := New(newTestPlotter("Generic"), newTestCut()).GenerateCutSheet(newTestSheet())

	assert.True(t, strings.HasPrefix(code, "; StickerSheet GCode - job job1\n"))
	assert.Contains(t, code, "; Sheet: 40.0 x 30.0 mm at 254 dpi\n")
	assert.Contains(t, code, "; Depth: 0.60mm in 2 passes\n")
	assert.Contains(t, code, "\nG90\nG21\n")
	assert.Contains(t, code, "M3 S1000\n")
	assert.NotContains(t, code, "[SafeZ]")
	assert.True(t, strings.HasSuffix(code, "G0 Z5.000\nG0 X0 Y0\nM5\nM2\n"), "footer")
	assert.Contains(t, code, "; --- Path 2: sq #2, cell 0 ---")
}

func TestGenerateCutSheet_Geometry(t *testing.T) {
	code := New(newTestPlotter("Generic"), newTestCut()).GenerateCutSheet(newTestSheet())
	moves := ParseGCode(code)
	sum := Summarize(moves)

	assert.Equal(t, 4, sum.Plunges, "two passes per path")
	assert.InDelta(t, 4*40.0, sum.CutLength, 1e-6, "each pass cuts a 40mm perimeter")
	// Pixel y 20..120 on a 300px sheet is 18..28mm from the bottom.
	assert.InDelta(t, 2.0, sum.MinX, 1e-9)
	assert.InDelta(t, 32.0, sum.MaxX, 1e-9)
	assert.InDelta(t, 18.0, sum.MinY, 1e-9)
	assert.InDelta(t, 28.0, sum.MaxY, 1e-9)

	assert.Contains(t, code, "G1 Z-0.300 F300.000\n")
	assert.Contains(t, code, "G1 Z-0.600 F300.000\n")
	assert.Contains(t, code, "G0 X2.000 Y28.000\n", "first point of the first path")

	for i, m := range moves {
		if m.Type == MoveFeed && m.ToZ >= 0 {
			t.Errorf("move %d feeds above the material: %+v", i, m)
		}
	}
	assert.Empty(t, CheckBounds(moves, newTestSheet().Sheet, newTestPlotter("Generic"), 0))
}

func TestGenerateCutSheet_PassRounding(t *testing.T) {
	p := newTestPlotter("Grbl")
	p.PassDepth = 0.25
	code := New(p, newTestCut()).GenerateCutSheet(newTestSheet(squarePath("a", 0, 20, 20, 120, 120)))

	assert.Contains(t, code, "Pass 3/3, depth=0.60mm")
	assert.NotContains(t, code, "Pass 4/")
	assert.Equal(t, 3, Summarize(ParseGCode(code)).Plunges)
}

func TestGenerateCutSheet_Laser(t *testing.T) {
	code := New(newTestPlotter("GrblLaser"), newTestCut()).GenerateCutSheet(newTestSheet())
	moves := ParseGCode(code)

	for _, m := range moves {
		assert.Zero(t, m.ToZ, "laser output never moves Z")
		if m.Type == MoveRapid {
			assert.False(t, m.ToolOn, "travel runs with the beam off")
		}
	}
	assert.Equal(t, 4, strings.Count(code, "\nS1000\n"), "beam on once per pass")
	assert.InDelta(t, 160.0, Summarize(moves).CutLength, 1e-6)
}

func TestGenerateCutSheet_LinuxCNC(t *testing.T) {
	code := New(newTestPlotter("LinuxCNC"), newTestCut()).GenerateCutSheet(newTestSheet())
	assert.Contains(t, code, "( Profile: LinuxCNC)\n")
	assert.Contains(t, code, "G0 Z5.0000\n")
	assert.NotContains(t, code, ";")
	assert.Len(t, ParseGCode(code), len(ParseGCode(New(newTestPlotter("Grbl"), newTestCut()).GenerateCutSheet(newTestSheet()))))
}

func TestNewWithProfile_Custom(t *testing.T) {
	custom := model.GetProfile("Grbl")
	custom.Name = "Vinyl"
	custom.StartCode = []string{"G90", "G21", "M800"}

	g := NewWithProfile(newTestPlotter("Vinyl"), newTestCut(), custom)
	assert.Equal(t, "Vinyl", g.Profile().Name)

	code := g.GenerateCutSheet(newTestSheet())
	assert.Contains(t, code, "\nM800\n")
	assert.Equal(t, "Generic", New(newTestPlotter("Vinyl"), newTestCut()).Profile().Name)
}

func TestGenerateCutSheet_ToolOffsetAndOrigin(t *testing.T) {
	p := newTestPlotter("Generic")
	p.ToolOffset = 0.5
	p.OriginX = 10
	p.OriginY = 5
	code := New(p, newTestCut()).GenerateCutSheet(newTestSheet(squarePath("a", 0, 20, 20, 120, 120)))

	sum := Summarize(ParseGCode(code))
	assert.InDelta(t, 11.5, sum.MinX, 1e-9)
	assert.InDelta(t, 22.5, sum.MaxX, 1e-9)
	assert.InDelta(t, 22.5, sum.MinY, 1e-9)
	assert.InDelta(t, 33.5, sum.MaxY, 1e-9)
	assert.Contains(t, code, "; Tool offset: 0.50mm\n")
}

func TestGenerateCutSheet_DegeneratePath(t *testing.T) {
	a, b := r2.Vec{X: 10, Y: 10}, r2.Vec{X: 50, Y: 10}
	flat := engine.CutPath{
		Placement:  engine.Placement{Key: "flat"},
		Silhouette: silhouette.Silhouette{Segments: []silhouette.Bezier{straight(a, b), straight(b, a)}},
	}
	code := New(newTestPlotter("Generic"), newTestCut()).GenerateCutSheet(newTestSheet(flat))
	assert.Contains(t, code, "WARNING: path has fewer than 3 points, skipping")
	assert.Zero(t, Summarize(ParseGCode(code)).Plunges)
}

func TestOffsetOutline_BothWindings(t *testing.T) {
	ccw := []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	cw := []r2.Vec{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}

	for name, pts := range map[string][]r2.Vec{"ccw": ccw, "cw": cw} {
		grown := offsetOutline(pts, 1)
		shrunk := offsetOutline(pts, -1)
		for i := range pts {
			for _, v := range []float64{grown[i].X, grown[i].Y} {
				if v != -1 && v != 11 {
					t.Errorf("%s: grown vertex %d = %v", name, i, grown[i])
				}
			}
			for _, v := range []float64{shrunk[i].X, shrunk[i].Y} {
				if v != 1 && v != 9 {
					t.Errorf("%s: shrunk vertex %d = %v", name, i, shrunk[i])
				}
			}
		}
		assert.InDelta(t, 144, math.Abs(signedArea(grown)), 1e-9, name)
	}
}

func TestFormat(t *testing.T) {
	g := New(newTestPlotter("Generic"), newTestCut())
	assert.Equal(t, "1.235", g.format(1.23456))
	assert.Equal(t, "0.000", g.format(-0.0001), "no negative zero")
	assert.Equal(t, "-2.500", g.format(-2.5))
	assert.Equal(t, "Generic", g.Profile().Name)
}

func TestCheckBounds(t *testing.T) {
	code := "G1 Z-1 F100\nG1 X45 Y10\nG1 X46 Y10\nG1 X10 Y10\nG1 X10 Y-2\nG0 Z5\nG0 X100 Y100\n"
	got := CheckBounds(ParseGCode(code), newTestSheet().Sheet, newTestPlotter("Generic"), 0.5)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.InDelta(t, 5, got[0].Over, 1e-9)
	assert.Equal(t, 4, got[1].Index)
	assert.InDelta(t, 2, got[1].Over, 1e-9)
	assert.Contains(t, got[0].String(), "move 1")
}
