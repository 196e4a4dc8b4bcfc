package engine

import (
	"image"
	"image/color"

	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

func vec(x, y float64) r2.Vec { return r2.Vec{X: x, Y: y} }

// RenderCutPreview strokes every cut path over a copy of printSheet so an
// operator can check that cut lines follow the printed stickers. A nil sheet
// yields a white sheet.
func RenderCutPreview(printSheet image.Image, cut CutSheet, c color.Color, width, flatness float64) *image.NRGBA {
	out := baseSheet(printSheet, cut.Sheet)
	if width <= 0 {
		width = 1
	}
	b := out.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, p := range cut.Paths {
		strokeClosed(r, p.Silhouette.Flatten(flatness), width)
	}
	r.Draw(out, b, image.NewUniform(c), image.Point{})
	return out
}

// strokeClosed adds one quad per polyline edge. All quads share the same
// winding, so overlaps saturate instead of cancelling.
func strokeClosed(r *vector.Rasterizer, pts []r2.Vec, width float64) {
	n := len(pts)
	if n < 2 {
		return
	}
	half := width / 2
	for i := range pts {
		a, b := pts[i], pts[(i+1)%n]
		d := r2.Sub(b, a)
		l := r2.Norm(d)
		if l == 0 {
			continue
		}
		nrm := r2.Scale(half/l, r2.Vec{X: -d.Y, Y: d.X})
		// Extend by half the width so joints are covered.
		ext := r2.Scale(half/l, d)
		a, b = r2.Sub(a, ext), r2.Add(b, ext)

		p0, p1 := r2.Add(a, nrm), r2.Add(b, nrm)
		p2, p3 := r2.Sub(b, nrm), r2.Sub(a, nrm)
		r.MoveTo(float32(p0.X), float32(p0.Y))
		r.LineTo(float32(p1.X), float32(p1.Y))
		r.LineTo(float32(p2.X), float32(p2.Y))
		r.LineTo(float32(p3.X), float32(p3.Y))
		r.ClosePath()
	}
}
