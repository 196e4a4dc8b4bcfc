package silhouette

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Clockwise neighbour offsets on a Y-down grid, starting east.
var moore = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// Contour is a closed chain of boundary pixel centres.
type Contour []r2.Vec

// Area returns the absolute shoelace area of the contour.
func (c Contour) Area() float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := range c {
		j := (i + 1) % n
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the length of the closed chain.
func (c Contour) Perimeter() float64 {
	n := len(c)
	if n < 2 {
		return 0
	}
	var sum float64
	for i := range c {
		sum += r2.Norm(r2.Sub(c[(i+1)%n], c[i]))
	}
	return sum
}

// TraceExternal returns the outer boundary of every 8-connected component of
// non-zero pixels, in raster order of each component's first pixel. Holes
// are ignored.
func TraceExternal(m *image.Gray) []Contour {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	on := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && m.Pix[y*m.Stride+x] != 0
	}

	labelled := make([]bool, w*h)
	var contours []Contour
	var queue []image.Point

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !on(x, y) || labelled[y*w+x] {
				continue
			}
			start := image.Pt(x, y)
			contours = append(contours, traceBoundary(start, on, 4*w*h+8))

			// Mark the whole component so its other pixels don't start new traces.
			labelled[y*w+x] = true
			queue = append(queue[:0], start)
			for len(queue) > 0 {
				p := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				for _, d := range moore {
					q := p.Add(d)
					if on(q.X, q.Y) && !labelled[q.Y*w+q.X] {
						labelled[q.Y*w+q.X] = true
						queue = append(queue, q)
					}
				}
			}
		}
	}
	return contours
}

// traceBoundary follows the outer boundary clockwise from start, which must
// be the first pixel of its component in raster order. Tracing stops when
// the walk is back at start and about to repeat its first step.
func traceBoundary(start image.Point, on func(x, y int) bool, limit int) Contour {
	centre := func(p image.Point) r2.Vec {
		return r2.Vec{X: float64(p.X) + 0.5, Y: float64(p.Y) + 0.5}
	}

	p := start
	back := start.Add(image.Pt(-1, 0))
	var second image.Point
	haveSecond := false
	var out Contour

	for steps := 0; steps < limit; steps++ {
		next, nextBack, ok := mooreStep(p, back, on)
		if !ok {
			return Contour{centre(start)}
		}
		if p == start {
			if haveSecond && next == second {
				break
			}
			if !haveSecond {
				second, haveSecond = next, true
			}
		}
		out = append(out, centre(p))
		p, back = next, nextBack
	}
	return out
}

// mooreStep scans the neighbours of p clockwise, beginning just after the
// background pixel back, and returns the first foreground neighbour together
// with the background pixel examined right before it.
func mooreStep(p, back image.Point, on func(x, y int) bool) (image.Point, image.Point, bool) {
	d := back.Sub(p)
	first := 0
	for i, o := range moore {
		if o == d {
			first = i
			break
		}
	}
	prev := back
	for i := 1; i <= 8; i++ {
		q := p.Add(moore[(first+i)%8])
		if on(q.X, q.Y) {
			return q, prev, true
		}
		prev = q
	}
	return p, back, false
}

// Largest returns the contour with the greatest enclosed area. Ties keep the
// earliest contour.
func Largest(contours []Contour) (Contour, bool) {
	if len(contours) == 0 {
		return nil, false
	}
	best, bestArea := 0, contours[0].Area()
	for i := 1; i < len(contours); i++ {
		if a := contours[i].Area(); a > bestArea {
			best, bestArea = i, a
		}
	}
	return contours[best], true
}
