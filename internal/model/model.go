package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"
)

// ErrInvalidSheet is returned when a sheet configuration cannot hold a grid.
var ErrInvalidSheet = errors.New("invalid sheet configuration")

// Margin is the security rectangle inside which the sticker grid lives,
// in sheet pixels.
type Margin struct {
	MinX int `json:"min_x"`
	MaxX int `json:"max_x"`
	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
}

// Width returns the horizontal extent of the margin rectangle.
func (m Margin) Width() int { return m.MaxX - m.MinX }

// Height returns the vertical extent of the margin rectangle.
func (m Margin) Height() int { return m.MaxY - m.MinY }

// Rect returns the margin as an image rectangle.
func (m Margin) Rect() image.Rectangle {
	return image.Rect(m.MinX, m.MinY, m.MaxX, m.MaxY)
}

// SheetConfig describes the printable/cuttable sheet and its grid.
type SheetConfig struct {
	Width   int    `json:"width"`  // px
	Height  int    `json:"height"` // px
	Margin  Margin `json:"margin"`
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
	DPI     int    `json:"dpi"` // used to convert px to mm for plotters
}

// Capacity returns the number of cells in the grid.
func (s SheetConfig) Capacity() int {
	return s.Columns * s.Rows
}

// MillimetresPerPixel converts sheet pixels to millimetres at the sheet
// DPI. A sheet without DPI is treated as 1 mm per pixel.
func (s SheetConfig) MillimetresPerPixel() float64 {
	if s.DPI <= 0 {
		return 1
	}
	return 25.4 / float64(s.DPI)
}

// Validate reports whether the configuration describes a usable grid.
// Every error wraps ErrInvalidSheet.
func (s SheetConfig) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: sheet size %dx%d must be positive", ErrInvalidSheet, s.Width, s.Height)
	case s.Columns <= 0 || s.Rows <= 0:
		return fmt.Errorf("%w: grid %dx%d must have at least one column and row", ErrInvalidSheet, s.Columns, s.Rows)
	case s.Margin.MinX < 0 || s.Margin.MinY < 0 || s.Margin.MaxX > s.Width || s.Margin.MaxY > s.Height:
		return fmt.Errorf("%w: margin %+v exceeds sheet %dx%d", ErrInvalidSheet, s.Margin, s.Width, s.Height)
	case s.Margin.Width() < s.Columns || s.Margin.Height() < s.Rows:
		return fmt.Errorf("%w: margin %dx%d too small for %d columns and %d rows",
			ErrInvalidSheet, s.Margin.Width(), s.Margin.Height(), s.Columns, s.Rows)
	}
	return nil
}

// StickerRequest is one entry of a job: the art to place, how many copies,
// and whether a bleed border is synthesised around it.
type StickerRequest struct {
	Path     string      `json:"path"`
	Quantity int         `json:"quantity"`
	Border   bool        `json:"border"`
	Source   image.Image `json:"-"` // decoded art; read-only
}

// JobEntry binds an opaque sticker key to its request.
type JobEntry struct {
	Key     string
	Request StickerRequest
}

// Job is an ordered mapping from sticker key to request. Entry order is the
// placement order on the sheet.
type Job struct {
	ID      string
	Entries []JobEntry
}

// NewJob creates an empty job with a fresh short ID.
func NewJob() Job {
	return Job{ID: uuid.New().String()[:8]}
}

// Add appends an entry. Keys are expected to be unique; Validate checks it.
func (j *Job) Add(key string, req StickerRequest) {
	j.Entries = append(j.Entries, JobEntry{Key: key, Request: req})
}

// Lookup returns the request stored under key.
func (j Job) Lookup(key string) (StickerRequest, bool) {
	for _, e := range j.Entries {
		if e.Key == key {
			return e.Request, true
		}
	}
	return StickerRequest{}, false
}

// TotalUnits returns the sum of all requested quantities.
func (j Job) TotalUnits() int {
	total := 0
	for _, e := range j.Entries {
		total += e.Request.Quantity
	}
	return total
}

// Validate checks keys and quantities.
func (j Job) Validate() error {
	if len(j.Entries) == 0 {
		return errors.New("job has no stickers")
	}
	seen := make(map[string]bool, len(j.Entries))
	for _, e := range j.Entries {
		if e.Key == "" {
			return errors.New("job entry has an empty key")
		}
		if seen[e.Key] {
			return fmt.Errorf("duplicate sticker key %q", e.Key)
		}
		seen[e.Key] = true
		if e.Request.Quantity <= 0 {
			return fmt.Errorf("sticker %q: quantity must be positive, got %d", e.Key, e.Request.Quantity)
		}
	}
	return nil
}

type jobJSON struct {
	ID       string          `json:"id"`
	Stickers json.RawMessage `json:"stickers"`
}

// MarshalJSON writes stickers as a JSON object whose key order follows the
// entry order.
func (j Job) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range j.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Request)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return json.Marshal(jobJSON{ID: j.ID, Stickers: buf.Bytes()})
}

// UnmarshalJSON accepts stickers either as an object (key order preserved)
// or as an array of {"key": ..., "path": ..., ...} items.
func (j *Job) UnmarshalJSON(data []byte) error {
	var raw jobJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	j.ID = raw.ID
	j.Entries = nil

	trimmed := bytes.TrimSpace(raw.Stickers)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '[' {
		var items []struct {
			Key string `json:"key"`
			StickerRequest
		}
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		for _, it := range items {
			j.Add(it.Key, it.StickerRequest)
		}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected sticker key %v", tok)
		}
		var req StickerRequest
		if err := dec.Decode(&req); err != nil {
			return fmt.Errorf("sticker %q: %w", key, err)
		}
		j.Add(key, req)
	}
	_, err := dec.Token()
	return err
}
