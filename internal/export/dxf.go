package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/StickerSheet/internal/engine"
	"github.com/piwi3910/StickerSheet/internal/model"
)

// CutLayer is the DXF layer holding the cut lines.
const CutLayer = "CUT"

// WriteCutDXF saves the cut sheet to path as DXF LINE entities on the CUT
// layer. Curves are flattened to within style.Flatness pixels, coordinates
// are converted to millimetres and Y is flipped so the origin sits at the
// bottom-left corner of the sheet, as CAD and plotter software expect.
func WriteCutDXF(path string, sheet engine.CutSheet, style model.CutStyle) error {
	d := dxf.NewDrawing()
	if _, err := d.AddLayer(CutLayer, color.Red, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("adding dxf layer: %w", err)
	}

	k := sheet.Sheet.MillimetresPerPixel()
	h := float64(sheet.Sheet.Height)
	lines := 0
	for _, p := range sheet.Paths {
		pts := p.Silhouette.FlipY(h).Flatten(style.Flatness)
		if len(pts) < 2 {
			continue
		}
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if a == b {
				continue
			}
			if _, err := d.Line(a.X*k, a.Y*k, 0, b.X*k, b.Y*k, 0); err != nil {
				return fmt.Errorf("adding dxf line: %w", err)
			}
			lines++
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("saving dxf %s: %w", path, err)
	}
	engine.Logger().Debug("cut dxf written", "path", path, "lines", lines)
	return nil
}
