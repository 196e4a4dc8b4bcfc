// Package export writes composed sheets to files: the print sheet as PNG,
// cut outlines as PDF, SVG, DXF and GCode companions, and zip bundles.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/StickerSheet/internal/engine"
	"github.com/piwi3910/StickerSheet/internal/model"
)

const referenceImage = "reference"

// WriteCutPDF writes the cut sheet as a one-page PDF whose page has the
// sheet's pixel size in points. Every silhouette is stroked, never filled,
// with the style colour and width. fpdf flips Y against the page height, so
// sheet coordinates are passed through unchanged. A non-nil ref is drawn
// under the cut lines, stretched to the page.
func WriteCutPDF(w io.Writer, sheet engine.CutSheet, ref image.Image, style model.CutStyle) error {
	pdf, err := cutPDF(sheet, ref, style)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing cut pdf: %w", err)
	}
	return nil
}

func cutPDF(sheet engine.CutSheet, ref image.Image, style model.CutStyle) (*fpdf.Fpdf, error) {
	stroke, err := style.StrokeColor.NRGBA()
	if err != nil {
		return nil, fmt.Errorf("cut stroke colour: %w", err)
	}
	width := style.StrokeWidth
	if width <= 0 {
		width = 1
	}

	pw, ph := float64(sheet.Sheet.Width), float64(sheet.Sheet.Height)
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Cut sheet "+sheet.JobID, true)
	pdf.SetCreator("stickersheet", true)
	pdf.AddPage()

	if ref != nil {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, ref, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
			return nil, fmt.Errorf("encoding reference image: %w", err)
		}
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(referenceImage, opts, &buf)
		pdf.ImageOptions(referenceImage, 0, 0, pw, ph, false, opts, 0, "")
	}

	pdf.SetDrawColor(int(stroke.R), int(stroke.G), int(stroke.B))
	pdf.SetLineWidth(width)
	pdf.SetLineJoinStyle("round")
	for _, p := range sheet.Paths {
		segs := p.Silhouette.Segments
		if len(segs) == 0 {
			continue
		}
		pdf.MoveTo(segs[0].Start.X, segs[0].Start.Y)
		for _, s := range segs {
			pdf.CurveBezierCubicTo(s.C1.X, s.C1.Y, s.C2.X, s.C2.Y, s.End.X, s.End.Y)
		}
		pdf.ClosePath()
		pdf.DrawPath("D")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("building cut pdf: %w", err)
	}
	return pdf, nil
}
