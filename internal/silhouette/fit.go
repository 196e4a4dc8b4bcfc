package silhouette

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// handleRatio places control points at this fraction of the edge length.
const handleRatio = 0.25

// FitClosed turns a closed polygon into cubic Bézier segments, one per edge.
// At each vertex the curve follows the direction from the previous to the
// next vertex, so the path is smooth there. Vertices where the polygon turns
// by more than cornerDeg degrees stay sharp: both handles then point along
// their own edges.
func FitClosed(pts []r2.Vec, cornerDeg float64) []Bezier {
	n := len(pts)
	if n < 2 {
		return nil
	}

	tin := make([]r2.Vec, n)
	tout := make([]r2.Vec, n)
	limit := math.Cos(cornerDeg * math.Pi / 180)
	for i := range pts {
		prev, next := pts[(i-1+n)%n], pts[(i+1)%n]
		in := unit(r2.Sub(pts[i], prev))
		out := unit(r2.Sub(next, pts[i]))
		tin[i], tout[i] = in, out

		if r2.Dot(in, out) < limit {
			continue // corner
		}
		if t := unit(r2.Sub(next, prev)); t != (r2.Vec{}) {
			tin[i], tout[i] = t, t
		}
	}

	segs := make([]Bezier, n)
	for i := range pts {
		j := (i + 1) % n
		l := r2.Norm(r2.Sub(pts[j], pts[i])) * handleRatio
		segs[i] = Bezier{
			Start: pts[i],
			C1:    r2.Add(pts[i], r2.Scale(l, tout[i])),
			C2:    r2.Sub(pts[j], r2.Scale(l, tin[j])),
			End:   pts[j],
		}
	}
	return segs
}

func unit(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}
