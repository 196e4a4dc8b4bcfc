// Package cache stores extracted silhouettes so repeated sheets with the
// same art skip the extraction pipeline.
package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
)

// Store is a byte-oriented key-value store.
type Store interface {
	// Get returns the value stored under key. A missing key is not an error:
	// ok is false.
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte) error
}

// KeyPrefix namespaces every key produced by Key.
const KeyPrefix = "stickersheet:silhouette:"

// Key derives a cache key from the source pixels, the border flag and any
// parameters that influence extraction.
func Key(src image.Image, border bool, params ...any) string {
	h := xxhash.New()

	var nrgba *image.NRGBA
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		nrgba = n
	} else {
		nrgba = imaging.Clone(src)
	}
	b := nrgba.Bounds()

	var dims [16]byte
	binary.LittleEndian.PutUint64(dims[:8], uint64(b.Dx()))
	binary.LittleEndian.PutUint64(dims[8:], uint64(b.Dy()))
	_, _ = h.Write(dims[:])
	for y := 0; y < b.Dy(); y++ {
		off := y * nrgba.Stride
		_, _ = h.Write(nrgba.Pix[off : off+4*b.Dx()])
	}

	_, _ = h.WriteString(strconv.FormatBool(border))
	for _, p := range params {
		_, _ = fmt.Fprintf(h, "|%+v", p)
	}
	return KeyPrefix + strconv.FormatUint(h.Sum64(), 16)
}
