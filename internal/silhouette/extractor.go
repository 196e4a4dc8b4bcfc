package silhouette

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/piwi3910/StickerSheet/internal/mask"
	"github.com/piwi3910/StickerSheet/internal/model"
	"github.com/piwi3910/StickerSheet/internal/sticker"
)

const (
	// contourBlurKernel is the fixed kernel that removes single-pixel noise
	// before the contour threshold.
	contourBlurKernel = 5
	// bleedSoftEdge feathers the synthesised bleed border, matching the
	// printed sticker border.
	bleedSoftEdge = 1.5
)

// Extractor converts sticker art into cut outlines. Crop, Padding and
// FinalSize must match the raster renderer so that outline and print share
// the same canvas geometry.
type Extractor struct {
	Style     model.SilhouetteStyle
	Crop      bool
	Padding   int
	FinalSize int
}

// NewExtractor creates an extractor sharing the canvas geometry of the given
// sticker style.
func NewExtractor(style model.SilhouetteStyle, canvas model.StickerStyle) *Extractor {
	return &Extractor{
		Style:     style,
		Crop:      canvas.Crop,
		Padding:   canvas.Padding,
		FinalSize: canvas.FinalSize,
	}
}

// Extract returns the outline of src. With border set the outline follows
// the outer edge of a white bleed border grown around the art.
//
// Errors wrapping ErrNoContour or ErrInsufficientPoints mean the art has no
// usable outline; callers skip such stickers.
func (e *Extractor) Extract(src image.Image, border bool) (Silhouette, error) {
	img, err := sticker.Prepare(src, e.Crop, e.Padding, e.FinalSize)
	if err != nil {
		if errors.Is(err, mask.ErrEmptySource) {
			return Silhouette{}, fmt.Errorf("%w: %v", ErrNoContour, err)
		}
		return Silhouette{}, err
	}

	if border {
		img = e.withBleed(img)
	}

	bin := e.CutMask(img)
	contours := TraceExternal(bin)
	outer, ok := Largest(contours)
	if !ok {
		return Silhouette{}, ErrNoContour
	}

	eps := e.Style.EpsilonRatio * outer.Perimeter()
	poly := Simplify(outer, eps)
	if len(poly) < 3 {
		return Silhouette{}, fmt.Errorf("%w: got %d", ErrInsufficientPoints, len(poly))
	}

	b := img.Bounds()
	return Silhouette{
		Segments: FitClosed(poly, e.Style.CornerAngle),
		Width:    float64(b.Dx()),
		Height:   float64(b.Dy()),
	}, nil
}

// withBleed puts a white border of BorderDistance pixels under the art.
func (e *Extractor) withBleed(img *image.NRGBA) *image.NRGBA {
	solid := mask.Threshold(mask.MaskChannel(img), e.Style.AlphaThreshold)
	ring := mask.Subtract(mask.Dilate(solid, e.Style.BorderDistance), solid)
	ring = mask.SoftEdge(ring, bleedSoftEdge)

	out := mask.Layer(ring, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	mask.Over(out, img)
	return out
}

// CutMask builds the binary mask whose outer contour is the cut line. Extract
// passes the prepared NRGBA canvas, so art without an alpha channel is
// treated as fully opaque.
func (e *Extractor) CutMask(img image.Image) *image.Gray {
	m := mask.Threshold(mask.MaskChannel(img), e.Style.AlphaThreshold)
	m = mask.Dilate(m, e.Style.BorderSize)
	m = mask.SoftEdge(m, e.Style.BlurStrength)
	m = mask.GaussianBlur(m, contourBlurKernel)
	m = mask.Threshold(m, e.Style.ContourThreshold)

	r := e.Style.MorphRadius
	if r <= 0 {
		r = 1
	}
	return mask.Open(mask.Close(m, r), r)
}
