package model

import "math"

// PrintEstimate holds the result of a sheet purchasing calculation for a job.
type PrintEstimate struct {
	Units           int     `json:"units"`             // stickers requested
	Capacity        int     `json:"capacity"`          // cells per sheet
	SheetsNeeded    int     `json:"sheets_needed"`     // sheets to print every unit once
	SheetsWithWaste int     `json:"sheets_with_waste"` // including misprint allowance
	EmptyCells      int     `json:"empty_cells"`       // unused cells on the last sheet
	SheetArea       float64 `json:"sheet_area"`        // sq mm of one sheet, 0 without DPI
	WastePercent    float64 `json:"waste_percent"`     // misprint allowance applied (e.g. 10 for 10%)
	PricePerSheet   float64 `json:"price_per_sheet"`
	EstimatedCost   float64 `json:"estimated_cost"`
}

// EstimatePrint computes how many sheets a job needs when every unit gets
// its own cell. wastePercent adds an allowance for misprints on top of the
// minimum.
func EstimatePrint(job Job, sheet SheetConfig, wastePercent, pricePerSheet float64) PrintEstimate {
	est := PrintEstimate{
		Units:         job.TotalUnits(),
		Capacity:      sheet.Capacity(),
		WastePercent:  wastePercent,
		PricePerSheet: pricePerSheet,
	}
	if sheet.DPI > 0 {
		k := sheet.MillimetresPerPixel()
		est.SheetArea = float64(sheet.Width) * k * float64(sheet.Height) * k
	}
	if est.Capacity <= 0 || est.Units == 0 {
		return est
	}

	est.SheetsNeeded = (est.Units + est.Capacity - 1) / est.Capacity
	est.EmptyCells = est.SheetsNeeded*est.Capacity - est.Units

	wasteFactor := 1.0 + (wastePercent / 100.0)
	est.SheetsWithWaste = int(math.Ceil(float64(est.SheetsNeeded)*wasteFactor - 1e-9))
	if est.SheetsWithWaste < est.SheetsNeeded {
		est.SheetsWithWaste = est.SheetsNeeded
	}
	est.EstimatedCost = float64(est.SheetsWithWaste) * pricePerSheet
	return est
}
