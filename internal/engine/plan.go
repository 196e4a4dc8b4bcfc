package engine

import (
	"github.com/piwi3910/StickerSheet/internal/model"
)

// Placement assigns one unit of a job entry to a cell.
type Placement struct {
	Cell  Cell
	Entry int    // index into Job.Entries
	Key   string // sticker key of that entry
	Unit  int    // 0-based copy number within the entry
}

// Plan is the shared assignment of job units to grid cells. The print and
// cut composers both consume it; neither recomputes the layout.
type Plan struct {
	Grid       Grid
	Placements []Placement
	Requested  int // total units asked for
	Dropped    int // units that did not fit on the sheet
}

// NewPlan walks the job in entry order, expanding each entry by its
// quantity, and fills cells row-major. Units beyond the grid capacity are
// dropped with a warning; that is not an error.
func NewPlan(grid Grid, job model.Job) Plan {
	p := Plan{Grid: grid}
	next := 0
	for i, e := range job.Entries {
		for u := 0; u < e.Request.Quantity; u++ {
			p.Requested++
			if next >= len(grid.Cells) {
				p.Dropped++
				continue
			}
			p.Placements = append(p.Placements, Placement{
				Cell:  grid.Cells[next],
				Entry: i,
				Key:   e.Key,
				Unit:  u,
			})
			next++
		}
	}
	if p.Dropped > 0 {
		Logger().Warn("sheet overflow, units dropped",
			"job", job.ID,
			"requested", p.Requested,
			"capacity", grid.Capacity(),
			"dropped", p.Dropped)
	}
	return p
}

// Entries returns the indices of the job entries that have at least one
// placed unit, in first-placement order.
func (p Plan) Entries() []int {
	seen := make(map[int]bool)
	var out []int
	for _, pl := range p.Placements {
		if !seen[pl.Entry] {
			seen[pl.Entry] = true
			out = append(out, pl.Entry)
		}
	}
	return out
}

// Free returns the number of cells left empty.
func (p Plan) Free() int {
	return p.Grid.Capacity() - len(p.Placements)
}
