// Package silhouette extracts the vector cut outline of a sticker.
//
// The outline is derived from the sticker's alpha mask: the mask is grown by
// the cut border, cleaned up morphologically, traced into a pixel contour,
// simplified with Douglas-Peucker and finally smoothed into a closed chain
// of cubic Bézier segments. Coordinates are canvas pixels, origin top-left,
// Y pointing down.
package silhouette

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrNoContour is returned when the mask has no outline to trace.
	ErrNoContour = errors.New("no contour found")
	// ErrInsufficientPoints is returned when simplification leaves fewer
	// than three vertices.
	ErrInsufficientPoints = errors.New("simplified contour has fewer than 3 points")
)

// Bezier is one cubic segment.
type Bezier struct {
	Start r2.Vec `json:"start"`
	C1    r2.Vec `json:"c1"`
	C2    r2.Vec `json:"c2"`
	End   r2.Vec `json:"end"`
}

// Silhouette is a closed outline: each segment starts where the previous one
// ended and the last one ends at the first start. Width and Height are the
// size of the canvas the outline was extracted from.
type Silhouette struct {
	Segments []Bezier `json:"segments"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
}

// Box is an axis-aligned rectangle in silhouette coordinates.
type Box struct {
	Min, Max r2.Vec
}

// Dx returns the box width.
func (b Box) Dx() float64 { return b.Max.X - b.Min.X }

// Dy returns the box height.
func (b Box) Dy() float64 { return b.Max.Y - b.Min.Y }

// Empty reports whether the silhouette has no segments.
func (s Silhouette) Empty() bool { return len(s.Segments) == 0 }

// Bounds returns the box enclosing all segment points, control points
// included. A Bézier never leaves the hull of its control points, so the box
// always contains the curve.
func (s Silhouette) Bounds() Box {
	if s.Empty() {
		return Box{}
	}
	b := Box{
		Min: r2.Vec{X: math.Inf(1), Y: math.Inf(1)},
		Max: r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for _, seg := range s.Segments {
		for _, p := range [...]r2.Vec{seg.Start, seg.C1, seg.C2, seg.End} {
			b.Min.X = math.Min(b.Min.X, p.X)
			b.Min.Y = math.Min(b.Min.Y, p.Y)
			b.Max.X = math.Max(b.Max.X, p.X)
			b.Max.Y = math.Max(b.Max.Y, p.Y)
		}
	}
	return b
}

// Transform scales the silhouette uniformly about the origin and then
// translates it by offset. Width and Height are scaled too.
func (s Silhouette) Transform(scale float64, offset r2.Vec) Silhouette {
	at := func(p r2.Vec) r2.Vec { return r2.Add(offset, r2.Scale(scale, p)) }
	out := Silhouette{
		Segments: make([]Bezier, len(s.Segments)),
		Width:    s.Width * scale,
		Height:   s.Height * scale,
	}
	for i, seg := range s.Segments {
		out.Segments[i] = Bezier{
			Start: at(seg.Start),
			C1:    at(seg.C1),
			C2:    at(seg.C2),
			End:   at(seg.End),
		}
	}
	return out
}

// FlipY mirrors the silhouette vertically inside a page of the given height:
// y becomes height-y.
func (s Silhouette) FlipY(height float64) Silhouette {
	flip := func(p r2.Vec) r2.Vec { return r2.Vec{X: p.X, Y: height - p.Y} }
	out := Silhouette{
		Segments: make([]Bezier, len(s.Segments)),
		Width:    s.Width,
		Height:   s.Height,
	}
	for i, seg := range s.Segments {
		out.Segments[i] = Bezier{
			Start: flip(seg.Start),
			C1:    flip(seg.C1),
			C2:    flip(seg.C2),
			End:   flip(seg.End),
		}
	}
	return out
}

// Flatten approximates the outline by a closed polyline whose points deviate
// from the curves by at most flatness. The first point is not repeated at
// the end.
func (s Silhouette) Flatten(flatness float64) []r2.Vec {
	if s.Empty() {
		return nil
	}
	if flatness <= 0 {
		flatness = 0.25
	}
	pts := []r2.Vec{s.Segments[0].Start}
	for _, seg := range s.Segments {
		flattenCubic(seg.Start, seg.C1, seg.C2, seg.End, flatness, 0, &pts)
	}
	if len(pts) > 1 && pts[len(pts)-1] == pts[0] {
		pts = pts[:len(pts)-1]
	}
	return pts
}

const maxFlattenDepth = 16

// flattenCubic subdivides with De Casteljau until both control points lie
// within flatness of the chord, appending the end points of each flat piece.
func flattenCubic(p0, p1, p2, p3 r2.Vec, flatness float64, depth int, out *[]r2.Vec) {
	if depth >= maxFlattenDepth ||
		(lineDistance(p1, p0, p3) <= flatness && lineDistance(p2, p0, p3) <= flatness) {
		*out = append(*out, p3)
		return
	}
	m01 := lerp(p0, p1, 0.5)
	m12 := lerp(p1, p2, 0.5)
	m23 := lerp(p2, p3, 0.5)
	m012 := lerp(m01, m12, 0.5)
	m123 := lerp(m12, m23, 0.5)
	m0123 := lerp(m012, m123, 0.5)

	flattenCubic(p0, m01, m012, m0123, flatness, depth+1, out)
	flattenCubic(m0123, m123, m23, p3, flatness, depth+1, out)
}

func lerp(a, b r2.Vec, t float64) r2.Vec {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

// lineDistance is the distance from p to the infinite line through a and b,
// or to a itself when a and b coincide.
func lineDistance(p, a, b r2.Vec) float64 {
	d := r2.Sub(b, a)
	n := r2.Norm(d)
	if n == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	return math.Abs(r2.Cross(d, r2.Sub(p, a))) / n
}

// segmentDistance is the distance from p to the segment a-b.
func segmentDistance(p, a, b r2.Vec) float64 {
	d := r2.Sub(b, a)
	l2 := r2.Dot(d, d)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), d) / l2
	t = math.Max(0, math.Min(1, t))
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, d))))
}
