package silhouette

import "gonum.org/v1/gonum/spatial/r2"

// Simplify reduces a closed contour with Douglas-Peucker. The chain is split
// at the vertex farthest from the first one and both halves are simplified
// independently, so the result is closed as well. Vertex order is kept.
func Simplify(c Contour, epsilon float64) []r2.Vec {
	n := len(c)
	if n < 3 {
		return append([]r2.Vec(nil), c...)
	}

	far, farDist := 0, -1.0
	for i := 1; i < n; i++ {
		if d := r2.Norm(r2.Sub(c[i], c[0])); d > farDist {
			far, farDist = i, d
		}
	}

	// Index n stands for c[0] again, closing the chain.
	at := func(i int) r2.Vec { return c[i%n] }
	keep := make([]bool, n+1)
	keep[0], keep[far], keep[n] = true, true, true

	type span struct{ lo, hi int }
	stack := []span{{far, n}, {0, far}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.hi-s.lo < 2 {
			continue
		}
		a, b := at(s.lo), at(s.hi)
		idx, dmax := -1, epsilon
		for i := s.lo + 1; i < s.hi; i++ {
			if d := segmentDistance(at(i), a, b); d > dmax {
				idx, dmax = i, d
			}
		}
		if idx < 0 {
			continue
		}
		keep[idx] = true
		stack = append(stack, span{idx, s.hi}, span{s.lo, idx})
	}

	out := make([]r2.Vec, 0, 16)
	for i := 0; i < n; i++ {
		if keep[i] {
			out = append(out, c[i])
		}
	}
	return out
}
