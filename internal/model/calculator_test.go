package model

import (
	"math"
	"testing"
)

func newEstimateJob(quantities ...int) Job {
	job := NewJob()
	for i, q := range quantities {
		job.Add(string(rune('a'+i)), StickerRequest{Path: "x.png", Quantity: q})
	}
	return job
}

func TestEstimatePrintBasic(t *testing.T) {
	// 35 cells per default sheet; 50 units need 2 sheets.
	est := EstimatePrint(newEstimateJob(30, 20), DefaultSheet(), 0, 1.5)

	if est.Units != 50 {
		t.Errorf("expected 50 units, got %d", est.Units)
	}
	if est.SheetsNeeded != 2 {
		t.Errorf("expected 2 sheets, got %d", est.SheetsNeeded)
	}
	if est.EmptyCells != 20 {
		t.Errorf("expected 20 empty cells, got %d", est.EmptyCells)
	}
	if est.SheetsWithWaste != 2 {
		t.Errorf("expected no waste sheets, got %d", est.SheetsWithWaste)
	}
	if math.Abs(est.EstimatedCost-3.0) > 1e-9 {
		t.Errorf("expected cost 3.00, got %.2f", est.EstimatedCost)
	}
}

func TestEstimatePrintWaste(t *testing.T) {
	est := EstimatePrint(newEstimateJob(35*10), DefaultSheet(), 15, 0)
	if est.SheetsNeeded != 10 {
		t.Errorf("expected 10 sheets, got %d", est.SheetsNeeded)
	}
	// 10 * 1.15 = 11.5 rounds up.
	if est.SheetsWithWaste != 12 {
		t.Errorf("expected 12 sheets with waste, got %d", est.SheetsWithWaste)
	}
	if est.EmptyCells != 0 {
		t.Errorf("expected a full last sheet, got %d empty cells", est.EmptyCells)
	}
}

func TestEstimatePrintSheetArea(t *testing.T) {
	est := EstimatePrint(newEstimateJob(1), DefaultSheet(), 0, 0)
	// 2828x4000 px at 240 dpi is about 299.3 x 423.3 mm.
	if math.Abs(est.SheetArea-299.3*423.3) > 150 {
		t.Errorf("unexpected sheet area %.0f", est.SheetArea)
	}
}

func TestEstimatePrintEmpty(t *testing.T) {
	est := EstimatePrint(NewJob(), DefaultSheet(), 10, 2)
	if est.SheetsNeeded != 0 || est.EstimatedCost != 0 {
		t.Errorf("expected nothing to print, got %+v", est)
	}

	bad := DefaultSheet()
	bad.Columns = 0
	est = EstimatePrint(newEstimateJob(4), bad, 0, 0)
	if est.SheetsNeeded != 0 {
		t.Errorf("expected 0 sheets without capacity, got %d", est.SheetsNeeded)
	}
}
