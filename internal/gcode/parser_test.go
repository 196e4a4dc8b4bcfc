package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCode_IgnoresCommentsAndBlankLines(t *testing.T) {
	code := "; header\n\n(setup) \nG90 ; absolute\nM5\n"
	assert.Empty(t, ParseGCode(code))
	assert.Empty(t, ParseGCode(""))
}

func TestParseGCode_Moves(t *testing.T) {
	code := `G0 X10 Y20
G0 Z5
G1 Z-0.3 F300 (plunge)
G1 X30.5 Y20 F1000
G1 X30.5 Y-4.25
G0 Z5
`
	moves := ParseGCode(code)
	require.Len(t, moves, 6)

	want := []MoveType{MoveRapid, MoveRetract, MovePlunge, MoveFeed, MoveFeed, MoveRetract}
	for i, m := range moves {
		assert.Equal(t, want[i], m.Type, "move %d", i)
	}

	assert.Equal(t, 10.0, moves[2].FromX)
	assert.Equal(t, 20.0, moves[2].FromY)
	assert.Equal(t, -0.3, moves[2].ToZ)
	assert.Equal(t, 300.0, moves[2].FeedRate)

	assert.Equal(t, 1000.0, moves[4].FeedRate, "feed rate is modal")
	assert.Equal(t, -4.25, moves[4].ToY, "negative decimals")
	assert.Equal(t, 24.25, moves[4].Length())
	assert.True(t, moves[4].Cutting())
	assert.False(t, moves[0].Cutting())
}

func TestParseGCode_ToolState(t *testing.T) {
	code := `M4 S0
G1 X10 F500
S800
G1 X20
S0
G1 X30
M3 S100
G1 X40
M5
G1 X50
`
	moves := ParseGCode(code)
	require.Len(t, moves, 5)
	on := []bool{false, true, false, true, false}
	for i, m := range moves {
		assert.Equal(t, on[i], m.ToolOn, "move %d", i)
		assert.Equal(t, on[i], m.Cutting(), "move %d at Z0 cuts only with the tool on", i)
	}
}

func TestStripComments(t *testing.T) {
	assert.Equal(t, "G1  X1  Y2", stripComments("G1 (a) X1 (b) Y2 ; c"))
	assert.Equal(t, "G0", stripComments("G0 (unterminated"))
	assert.Equal(t, "", stripComments("   ; only a comment"))
}

func TestClassifyMove(t *testing.T) {
	tests := []struct {
		name    string
		isRapid bool
		fromZ   float64
		toZ     float64
		moveXY  bool
		want    MoveType
	}{
		{"rapid travel", true, 5, 5, true, MoveRapid},
		{"rapid lift", true, -1, 5, false, MoveRetract},
		{"feed", false, -1, -1, true, MoveFeed},
		{"plunge", false, 5, -1, false, MovePlunge},
		{"slow lift", false, -1, 0, false, MoveRetract},
		{"ramp counts as feed", false, -1, -1.5, true, MoveFeed},
		{"tiny Z jitter", false, -1, -1.0001, false, MoveFeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toX := 0.0
			if tt.moveXY {
				toX = 10
			}
			if got := classifyMove(tt.isRapid, tt.fromZ, tt.toZ, 0, 0, toX, 0); got != tt.want {
				t.Errorf("classifyMove() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	code := "G0 X0 Y0\nG1 Z-1 F100\nG1 X3 Y4\nG1 X3 Y0\nG0 Z5\nG0 X3 Y5\n"
	s := Summarize(ParseGCode(code))
	assert.Equal(t, 6, s.Moves)
	assert.Equal(t, 1, s.Plunges)
	assert.InDelta(t, 9, s.CutLength, 1e-12)
	assert.InDelta(t, 5, s.TravelLength, 1e-12)
	assert.Equal(t, []float64{0, 0, 3, 4}, []float64{s.MinX, s.MinY, s.MaxX, s.MaxY})

	empty := Summarize(nil)
	assert.Zero(t, empty.MaxX)
}
