package mask

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// SoftEdge feathers a mask with a Gaussian of the given sigma. A sigma of
// zero or less returns an unchanged copy.
func SoftEdge(m *image.Gray, sigma float64) *image.Gray {
	if sigma <= 0 {
		return cloneGray(m)
	}
	w, h := m.Bounds().Dx(), m.Bounds().Dy()
	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := cloneGray(m)
	for i, v := range src.Pix {
		rgba.Pix[i*4] = v
		rgba.Pix[i*4+1] = v
		rgba.Pix[i*4+2] = v
		rgba.Pix[i*4+3] = 0xff
	}
	blurred := imaging.Blur(rgba, sigma)
	out := NewGray(w, h)
	for i := range out.Pix {
		out.Pix[i] = blurred.Pix[i*4]
	}
	return out
}

// KernelSigma is the sigma conventionally derived from an odd kernel size
// when none is given explicitly.
func KernelSigma(ksize int) float64 {
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

// GaussianBlur convolves a mask with a fixed ksize×ksize Gaussian kernel
// (ksize is forced odd). Borders are mirrored without repeating the edge
// pixel.
func GaussianBlur(m *image.Gray, ksize int) *image.Gray {
	src := cloneGray(m)
	if ksize < 3 {
		return src
	}
	if ksize%2 == 0 {
		ksize++
	}
	kernel := gaussianKernel(ksize, KernelSigma(ksize))
	r := ksize / 2
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k := -r; k <= r; k++ {
				acc += kernel[k+r] * float64(src.Pix[y*src.Stride+reflect101(x+k, w)])
			}
			tmp[y*w+x] = acc
		}
	}

	out := NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k := -r; k <= r; k++ {
				acc += kernel[k+r] * tmp[reflect101(y+k, h)*w+x]
			}
			out.Pix[y*out.Stride+x] = clamp8(acc)
		}
	}
	return out
}

func gaussianKernel(size int, sigma float64) []float64 {
	r := size / 2
	k := make([]float64, size)
	var sum float64
	for i := -r; i <= r; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+r] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// reflect101 mirrors an out-of-range index: -1 -> 1, n -> n-2.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// Layer builds a solid-colour image whose alpha is the mask scaled by the
// colour's own alpha.
func Layer(m *image.Gray, c color.NRGBA) *image.NRGBA {
	w, h := m.Bounds().Dx(), m.Bounds().Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := cloneGray(m)
	for i, v := range src.Pix {
		o := i * 4
		out.Pix[o] = c.R
		out.Pix[o+1] = c.G
		out.Pix[o+2] = c.B
		out.Pix[o+3] = uint8(uint32(v) * uint32(c.A) / 0xff)
	}
	return out
}

// Over composites src over dst in place, aligning their origins.
func Over(dst *image.NRGBA, src image.Image) {
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
}

// Flatten composites img over an opaque canvas of colour bg.
func Flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	out := imaging.New(b.Dx(), b.Dy(), bg)
	Over(out, img)
	return out
}
