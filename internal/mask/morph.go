package mask

import "image"

// Dilate replaces every pixel by the maximum over the (2r+1)×(2r+1) square
// around it. Pixels outside the image do not take part.
func Dilate(m *image.Gray, r int) *image.Gray {
	return rankFilter(m, r, func(a, b uint8) bool { return a > b })
}

// Erode replaces every pixel by the minimum over the (2r+1)×(2r+1) square
// around it. Pixels outside the image do not take part, so content touching
// the border is not eaten from outside.
func Erode(m *image.Gray, r int) *image.Gray {
	return rankFilter(m, r, func(a, b uint8) bool { return a < b })
}

// Close is Dilate followed by Erode: fills gaps narrower than 2r+1.
func Close(m *image.Gray, r int) *image.Gray {
	return Erode(Dilate(m, r), r)
}

// Open is Erode followed by Dilate: removes specks narrower than 2r+1.
func Open(m *image.Gray, r int) *image.Gray {
	return Dilate(Erode(m, r), r)
}

// rankFilter applies a separable square max or min filter. better(a, b)
// reports whether a should replace b.
func rankFilter(m *image.Gray, r int, better func(a, b uint8) bool) *image.Gray {
	src := cloneGray(m)
	if r <= 0 {
		return src
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	tmp := NewGray(w, h)

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		dst := tmp.Pix[y*tmp.Stride : y*tmp.Stride+w]
		for x := 0; x < w; x++ {
			lo, hi := max(0, x-r), min(w-1, x+r)
			v := row[lo]
			for k := lo + 1; k <= hi; k++ {
				if better(row[k], v) {
					v = row[k]
				}
			}
			dst[x] = v
		}
	}

	out := NewGray(w, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			lo, hi := max(0, y-r), min(h-1, y+r)
			v := tmp.Pix[lo*tmp.Stride+x]
			for k := lo + 1; k <= hi; k++ {
				if p := tmp.Pix[k*tmp.Stride+x]; better(p, v) {
					v = p
				}
			}
			out.Pix[y*out.Stride+x] = v
		}
	}
	return out
}
