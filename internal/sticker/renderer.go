// Package sticker renders print-ready raster stickers: the art, a solid
// border grown around its opaque silhouette, and a drop shadow underneath.
package sticker

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/piwi3910/StickerSheet/internal/mask"
	"github.com/piwi3910/StickerSheet/internal/model"
)

// Renderer turns source art into a FinalSize×FinalSize sticker.
type Renderer struct {
	Style model.StickerStyle
}

// New creates a renderer for the given style.
func New(style model.StickerStyle) *Renderer {
	return &Renderer{Style: style}
}

// Prepare applies the optional crop and centres the art on a transparent
// FinalSize square. It is the geometry shared by rendering and silhouette
// extraction. A fully transparent source yields a transparent canvas and an
// error wrapping mask.ErrEmptySource.
func (r *Renderer) Prepare(src image.Image) (*image.NRGBA, error) {
	return Prepare(src, r.Style.Crop, r.Style.Padding, r.Style.FinalSize)
}

// Prepare is the style-free form of Renderer.Prepare.
func Prepare(src image.Image, crop bool, padding, size int) (*image.NRGBA, error) {
	if src == nil {
		return nil, errors.New("nil source image")
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid final size %d", size)
	}
	var emptyErr error
	img := src
	if crop {
		cropped, err := mask.CropToContent(src, padding)
		if err != nil && !errors.Is(err, mask.ErrEmptySource) {
			return nil, err
		}
		emptyErr = err
		img = cropped
	}
	out := mask.CenterOnSquare(img, size, color.Transparent)
	if emptyErr == nil && mask.ContentBounds(mask.Alpha(out)).Empty() {
		emptyErr = mask.ErrEmptySource
	}
	return out, emptyErr
}

// Plain produces the unbordered sticker: the prepared art, flattened onto
// BackgroundColor unless BackgroundTransparent is set. Prepare itself stays
// transparent so that silhouette geometry does not see the background.
func (r *Renderer) Plain(src image.Image) (*image.NRGBA, error) {
	art, prepErr := r.Prepare(src)
	if art == nil {
		return nil, prepErr
	}
	out, err := r.background(art)
	if err != nil {
		return nil, err
	}
	return out, prepErr
}

// background flattens img onto the configured background colour unless the
// background is transparent.
func (r *Renderer) background(img *image.NRGBA) (*image.NRGBA, error) {
	if r.Style.BackgroundTransparent {
		return img, nil
	}
	bg, err := r.Style.BackgroundColor.NRGBA()
	if err != nil {
		return nil, fmt.Errorf("background colour: %w", err)
	}
	return mask.Flatten(img, bg), nil
}

// Render produces the bordered sticker. Layers from bottom to top: shadow,
// border, art. The background is flattened to BackgroundColor unless
// BackgroundTransparent is set. An empty source renders as a blank sticker
// alongside an error wrapping mask.ErrEmptySource.
func (r *Renderer) Render(src image.Image) (*image.NRGBA, error) {
	art, prepErr := r.Prepare(src)
	if art == nil {
		return nil, prepErr
	}

	borderColor, err := r.Style.BorderColor.NRGBA()
	if err != nil {
		return nil, fmt.Errorf("border colour: %w", err)
	}
	shadowColor, err := r.Style.ShadowColor.NRGBA()
	if err != nil {
		return nil, fmt.Errorf("shadow colour: %w", err)
	}

	solid := mask.Threshold(mask.MaskChannel(art), r.Style.AlphaThreshold)
	ring := mask.Subtract(mask.Dilate(solid, r.Style.BorderSize), solid)
	ring = mask.SoftEdge(ring, r.Style.SoftEdge)
	shadow := mask.SoftEdge(ring, r.Style.ShadowBlur)

	out := mask.Layer(shadow, shadowColor)
	mask.Over(out, mask.Layer(ring, borderColor))
	mask.Over(out, art)

	if out, err = r.background(out); err != nil {
		return nil, err
	}
	return out, prepErr
}
