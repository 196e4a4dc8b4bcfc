package engine

import (
	"context"
	"encoding/json"
	"image"

	"github.com/piwi3910/StickerSheet/internal/cache"
	"github.com/piwi3910/StickerSheet/internal/silhouette"
)

// CachedExtractor consults a store before running the extraction pipeline.
// With a nil Store it extracts every time. Cache failures are logged and
// never fail an extraction.
type CachedExtractor struct {
	Extractor *silhouette.Extractor
	Store     cache.Store
}

// NewCachedExtractor wraps ex with the given store, which may be nil.
func NewCachedExtractor(ex *silhouette.Extractor, store cache.Store) *CachedExtractor {
	return &CachedExtractor{Extractor: ex, Store: store}
}

// Extract returns the silhouette of src, from cache when possible.
func (c *CachedExtractor) Extract(ctx context.Context, src image.Image, border bool) (silhouette.Silhouette, error) {
	if c.Store == nil {
		return c.Extractor.Extract(src, border)
	}

	ex := c.Extractor
	key := cache.Key(src, border, ex.Style, ex.Crop, ex.Padding, ex.FinalSize)

	if data, ok, err := c.Store.Get(ctx, key); err != nil {
		Logger().Warn("silhouette cache read failed", "key", key, "error", err)
	} else if ok {
		var s silhouette.Silhouette
		if err := json.Unmarshal(data, &s); err == nil {
			Logger().Debug("silhouette cache hit", "key", key)
			return s, nil
		}
		Logger().Warn("silhouette cache entry unreadable", "key", key)
	}

	s, err := ex.Extract(src, border)
	if err != nil {
		return s, err
	}
	data, err := json.Marshal(s)
	if err == nil {
		err = c.Store.Set(ctx, key, data)
	}
	if err != nil {
		Logger().Warn("silhouette cache write failed", "key", key, "error", err)
	}
	return s, nil
}
