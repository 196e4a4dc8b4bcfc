// Package mask implements the alpha-mask operations shared by the sticker
// renderer and the silhouette extractor: crop, centring, thresholding,
// morphology, blurs and colour layers.
//
// All functions return new images anchored at the origin and never modify
// their inputs.
package mask

import (
	"errors"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// ErrEmptySource is returned when an image has no visible pixel. Callers may
// treat it as a warning: the accompanying image is still usable.
var ErrEmptySource = errors.New("image is fully transparent")

// Opaque and clear mask values.
const (
	On  uint8 = 0xff
	Off uint8 = 0x00
)

// NewGray allocates an empty w×h mask.
func NewGray(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

// ContentBounds returns the bounding box of all non-zero mask pixels, or an
// empty rectangle when there is none.
func ContentBounds(m *image.Gray) image.Rectangle {
	b := m.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[(y-b.Min.Y)*m.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[x-b.Min.X] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}
	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// CropToContent crops img to the bounding box of pixels with alpha > 0,
// expanded by padding on every side and clamped to the image.
// A fully transparent image is returned unchanged (as a copy) together with
// ErrEmptySource.
func CropToContent(img image.Image, padding int) (*image.NRGBA, error) {
	src := imaging.Clone(img)
	bbox := ContentBounds(Alpha(src))
	if bbox.Empty() {
		return src, ErrEmptySource
	}
	r := bbox.Inset(-padding).Intersect(src.Bounds())
	return imaging.Crop(src, r), nil
}

// CenterOnSquare downscales img (Lanczos, aspect preserved, never enlarged)
// so that its longer side fits size, and draws it centred over a size×size
// canvas filled with bg.
func CenterOnSquare(img image.Image, size int, bg color.Color) *image.NRGBA {
	if size <= 0 {
		return image.NewNRGBA(image.Rectangle{})
	}
	fitted := imaging.Fit(img, size, size, imaging.Lanczos)
	canvas := imaging.New(size, size, bg)

	w, h := fitted.Bounds().Dx(), fitted.Bounds().Dy()
	x := (size - w) / 2
	y := (size - h) / 2
	draw.Draw(canvas, image.Rect(x, y, x+w, y+h), fitted, fitted.Bounds().Min, draw.Over)
	return canvas
}

// Alpha extracts the alpha channel of img.
func Alpha(img image.Image) *image.Gray {
	src := imaging.Clone(img)
	b := src.Bounds()
	out := NewGray(b.Dx(), b.Dy())
	for i, j := 0, 0; j < len(out.Pix); i, j = i+4, j+1 {
		out.Pix[j] = src.Pix[i+3]
	}
	return out
}

// Luma returns the ITU-R 601 luminance of img.
func Luma(img image.Image) *image.Gray {
	b := img.Bounds()
	out := NewGray(b.Dx(), b.Dy())
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// MaskChannel picks the channel a mask is derived from: alpha when the
// colour model carries one, luminance otherwise. Sticker art reaches it as
// NRGBA after centring, so only bare masks take the luminance branch.
func MaskChannel(img image.Image) *image.Gray {
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return Luma(img)
	}
	return Alpha(img)
}

// Threshold maps values strictly greater than t to On and everything else
// to Off.
func Threshold(m *image.Gray, t uint8) *image.Gray {
	out := cloneGray(m)
	for i, v := range out.Pix {
		if v > t {
			out.Pix[i] = On
		} else {
			out.Pix[i] = Off
		}
	}
	return out
}

// Subtract returns a-b per pixel, saturating at zero. Both masks must have
// the same size.
func Subtract(a, b *image.Gray) *image.Gray {
	out := cloneGray(a)
	for i := range out.Pix {
		if i >= len(b.Pix) {
			break
		}
		if out.Pix[i] > b.Pix[i] {
			out.Pix[i] -= b.Pix[i]
		} else {
			out.Pix[i] = 0
		}
	}
	return out
}

// Coverage returns the fraction of mask pixels that are non-zero.
func Coverage(m *image.Gray) float64 {
	if len(m.Pix) == 0 {
		return 0
	}
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return float64(n) / float64(len(m.Pix))
}

// cloneGray copies m into a tightly packed mask anchored at the origin.
func cloneGray(m *image.Gray) *image.Gray {
	b := m.Bounds()
	out := NewGray(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:(y+1)*out.Stride], m.Pix[y*m.Stride:y*m.Stride+b.Dx()])
	}
	return out
}
