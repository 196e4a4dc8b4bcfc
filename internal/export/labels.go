package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"

	"github.com/piwi3910/StickerSheet/internal/engine"
)

// ErrLabelOutside is returned when the label square does not fit the sheet.
var ErrLabelOutside = errors.New("label does not fit on the sheet")

// LabelInfo is the data encoded into a sheet's QR label.
type LabelInfo struct {
	JobID    string   `json:"job"`
	Stickers []string `json:"stickers"`
	Units    int      `json:"units"`
	Dropped  int      `json:"dropped,omitempty"`
	Columns  int      `json:"columns"`
	Rows     int      `json:"rows"`
}

// CollectLabelInfo summarises a plan for its QR label. Keys appear in
// placement order.
func CollectLabelInfo(jobID string, plan engine.Plan) LabelInfo {
	info := LabelInfo{
		JobID:   jobID,
		Units:   len(plan.Placements),
		Dropped: plan.Dropped,
		Columns: plan.Grid.Sheet.Columns,
		Rows:    plan.Grid.Sheet.Rows,
	}
	seen := make(map[string]bool)
	for _, pl := range plan.Placements {
		if !seen[pl.Key] {
			seen[pl.Key] = true
			info.Stickers = append(info.Stickers, pl.Key)
		}
	}
	return info
}

// StampLabel draws a QR code of info as a square at the top-left of rect,
// sized to the shorter side of rect. The sheet is modified in place.
func StampLabel(sheet *image.NRGBA, info LabelInfo, rect image.Rectangle) error {
	size := min(rect.Dx(), rect.Dy())
	if size <= 0 {
		return fmt.Errorf("label size %dx%d: %w", rect.Dx(), rect.Dy(), ErrLabelOutside)
	}
	dst := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+size, rect.Min.Y+size)
	if !dst.In(sheet.Bounds()) {
		return fmt.Errorf("label %v on sheet %v: %w", dst, sheet.Bounds(), ErrLabelOutside)
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qr, err := qrcode.New(string(data), qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	draw.Draw(sheet, dst, qr.Image(size), image.Point{}, draw.Src)
	return nil
}
