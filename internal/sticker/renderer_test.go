package sticker

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StickerSheet/internal/mask"
	"github.com/piwi3910/StickerSheet/internal/model"
)

func disc(size, radius int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-c, y-c
			if dx*dx+dy*dy <= radius*radius {
				img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
			}
		}
	}
	return img
}

func testStyle() model.StickerStyle {
	s := model.DefaultStickerStyle()
	s.FinalSize = 128
	s.BorderSize = 6
	return s
}

func TestRender_SizeAndBorder(t *testing.T) {
	r := New(testStyle())
	out, err := r.Render(disc(256, 80))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 128, 128), out.Bounds())

	// Art stays on top in the centre.
	assert.Equal(t, color.NRGBA{R: 200, G: 30, B: 30, A: 255}, out.NRGBAAt(64, 64))

	// Disc radius is 40 after the 2x downscale; just outside it sits the white border.
	ring := out.NRGBAAt(64+43, 64)
	assert.Greater(t, ring.R, uint8(220))
	assert.Equal(t, ring.R, ring.G)
	assert.Greater(t, ring.A, uint8(200))

	// Far corners stay transparent.
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
}

func TestRender_BorderGrowsSilhouette(t *testing.T) {
	style := testStyle()
	r := New(style)
	src := disc(128, 30)

	out, err := r.Render(src)
	require.NoError(t, err)

	plain, err := r.Prepare(src)
	require.NoError(t, err)

	assert.Greater(t,
		mask.Coverage(mask.Threshold(mask.Alpha(out), 0)),
		mask.Coverage(mask.Threshold(mask.Alpha(plain), 0)))
}

func TestRender_OpaqueBackground(t *testing.T) {
	style := testStyle()
	style.BackgroundTransparent = false
	style.BackgroundColor = "#102030"

	out, err := New(style).Render(disc(128, 20))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}, out.NRGBAAt(0, 0))
}

func TestPlain_Background(t *testing.T) {
	style := testStyle()
	style.BackgroundTransparent = false
	style.BackgroundColor = "#00ff00"
	r := New(style)

	out, err := r.Plain(disc(128, 20))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 200, G: 30, B: 30, A: 255}, out.NRGBAAt(64, 64))

	prepared, err := r.Prepare(disc(128, 20))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), prepared.NRGBAAt(0, 0).A, "prepared canvas stays transparent")

	out, err = New(testStyle()).Plain(disc(128, 20))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
}

func TestRender_TransparentSource(t *testing.T) {
	out, err := New(testStyle()).Render(image.NewNRGBA(image.Rect(0, 0, 50, 50)))
	if !errors.Is(err, mask.ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
	require.NotNil(t, out)
	assert.Equal(t, 128, out.Bounds().Dx())
	assert.Equal(t, 0.0, mask.Coverage(mask.Alpha(out)))
}

func TestRender_BadColour(t *testing.T) {
	style := testStyle()
	style.BorderColor = "not-a-colour"
	_, err := New(style).Render(disc(64, 10))
	assert.Error(t, err)
}

func TestPrepare_Crop(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 400, 400))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			src.SetNRGBA(x+10, y+10, color.NRGBA{A: 255})
		}
	}

	out, err := Prepare(src, true, 0, 80)
	require.NoError(t, err)
	// 40x20 content is never enlarged; it stays 40x20, centred.
	assert.Equal(t, image.Rect(20, 30, 60, 50), mask.ContentBounds(mask.Alpha(out)))

	out, err = Prepare(src, false, 0, 80)
	require.NoError(t, err)
	solid := mask.Threshold(mask.Alpha(out), 127)
	assert.Equal(t, image.Rect(2, 2, 10, 6), mask.ContentBounds(solid))
}

func TestPrepare_Errors(t *testing.T) {
	_, err := Prepare(nil, false, 0, 10)
	assert.Error(t, err)
	_, err = Prepare(disc(10, 3), false, 0, 0)
	assert.Error(t, err)
}
