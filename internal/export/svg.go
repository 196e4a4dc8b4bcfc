package export

import (
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/piwi3910/StickerSheet/internal/engine"
	"github.com/piwi3910/StickerSheet/internal/model"
	"github.com/piwi3910/StickerSheet/internal/silhouette"
)

// WriteCutSVG writes the cut sheet as an SVG document in sheet pixels. SVG
// shares the sheet's Y-down orientation, so no flip is needed.
func WriteCutSVG(w io.Writer, sheet engine.CutSheet, style model.CutStyle) error {
	stroke, err := style.StrokeColor.NRGBA()
	if err != nil {
		return fmt.Errorf("cut stroke colour: %w", err)
	}
	width := style.StrokeWidth
	if width <= 0 {
		width = 1
	}

	canvas := svg.New(w)
	canvas.Start(sheet.Sheet.Width, sheet.Sheet.Height)
	canvas.Title("Cut sheet " + sheet.JobID)
	canvas.Gstyle(fmt.Sprintf("fill:none;stroke:#%02x%02x%02x;stroke-width:%s;stroke-linejoin:round",
		stroke.R, stroke.G, stroke.B, num(width)))
	for _, p := range sheet.Paths {
		if p.Silhouette.Empty() {
			continue
		}
		canvas.Path(PathData(p.Silhouette), fmt.Sprintf(`id="%s-%d"`, html.EscapeString(p.Placement.Key), p.Placement.Unit))
	}
	canvas.Gend()
	canvas.End()
	return nil
}

// PathData renders a silhouette as SVG path data: one M, a C per segment
// and a closing Z.
func PathData(s silhouette.Silhouette) string {
	if s.Empty() {
		return ""
	}
	var b strings.Builder
	start := s.Segments[0].Start
	b.WriteString("M" + num(start.X) + " " + num(start.Y))
	for _, seg := range s.Segments {
		b.WriteString(" C" + num(seg.C1.X) + " " + num(seg.C1.Y) +
			" " + num(seg.C2.X) + " " + num(seg.C2.Y) +
			" " + num(seg.End.X) + " " + num(seg.End.Y))
	}
	b.WriteString(" Z")
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
