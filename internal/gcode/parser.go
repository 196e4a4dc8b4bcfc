package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: travel, nothing is cut
	MoveFeed                    // G1 in the XY plane
	MovePlunge                  // G1 with Z decreasing: blade into the material
	MoveRetract                 // Z increasing: blade out of the material
)

// Move is a single parsed movement.
type Move struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
	// ToolOn reports whether the spindle, knife or laser was switched on
	// (M3/M4 with a non-zero S word) when the move ran.
	ToolOn bool
}

// Cutting reports whether the move cuts material: an XY feed made either
// below Z=0 or with the tool switched on.
func (m Move) Cutting() bool {
	return m.Type == MoveFeed && (m.ToZ < 0 || m.ToolOn)
}

// Length is the XY distance travelled.
func (m Move) Length() float64 {
	return math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
}

var wordRe = regexp.MustCompile(`([XYZFS])(-?\d*\.?\d+)`)

// ParseGCode parses GCode into moves. It tracks absolute position, feed
// rate and tool state, and classifies each G0/G1 command.
func ParseGCode(code string) []Move {
	var moves []Move

	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0
	power := 0.0
	toolOn := false

	for _, line := range strings.Split(code, "\n") {
		line = strings.ToUpper(stripComments(line))
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd := fields[0]
		words := wordRe.FindAllStringSubmatch(line, -1)

		for _, w := range words {
			if w[1] == "S" {
				if v, err := strconv.ParseFloat(w[2], 64); err == nil {
					power = v
				}
			}
		}
		switch cmd {
		case "M3", "M03", "M4", "M04":
			toolOn = true
		case "M5", "M05", "M2", "M02", "M30":
			toolOn = false
		}

		isRapid := cmd == "G0" || cmd == "G00"
		isFeed := cmd == "G1" || cmd == "G01"
		if !isRapid && !isFeed {
			continue
		}

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		for _, w := range words {
			val, err := strconv.ParseFloat(w[2], 64)
			if err != nil {
				continue
			}
			switch w[1] {
			case "X":
				newX = val
			case "Y":
				newY = val
			case "Z":
				newZ = val
			case "F":
				newFeed = val
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(isRapid, curZ, newZ, curX, curY, newX, newY),
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			FeedRate: newFeed,
			ToolOn:   toolOn && power > 0,
		})

		curX, curY, curZ, curFeed = newX, newY, newZ, newFeed
	}

	return moves
}

// stripComments removes ';' line comments and '(...)' comments.
func stripComments(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	for {
		open := strings.Index(line, "(")
		if open < 0 {
			break
		}
		end := strings.Index(line[open:], ")")
		if end < 0 {
			line = line[:open]
			break
		}
		line = line[:open] + line[open+end+1:]
	}
	return strings.TrimSpace(line)
}

// classifyMove determines the MoveType from the start and end positions.
func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// Summary aggregates a parsed program.
// Lengths are in machine units; the bounds cover cutting moves only.
type Summary struct {
	Moves        int
	Plunges      int
	CutLength    float64
	TravelLength float64
	MinX, MinY   float64
	MaxX, MaxY   float64
}

// Summarize totals cut and travel distances and the extent of the cut.
func Summarize(moves []Move) Summary {
	s := Summary{
		Moves: len(moves),
		MinX:  math.Inf(1),
		MinY:  math.Inf(1),
		MaxX:  math.Inf(-1),
		MaxY:  math.Inf(-1),
	}
	for _, m := range moves {
		switch {
		case m.Type == MovePlunge:
			s.Plunges++
		case m.Cutting():
			s.CutLength += m.Length()
			s.MinX = math.Min(s.MinX, math.Min(m.FromX, m.ToX))
			s.MinY = math.Min(s.MinY, math.Min(m.FromY, m.ToY))
			s.MaxX = math.Max(s.MaxX, math.Max(m.FromX, m.ToX))
			s.MaxY = math.Max(s.MaxY, math.Max(m.FromY, m.ToY))
		default:
			s.TravelLength += m.Length()
		}
	}
	if s.CutLength == 0 {
		s.MinX, s.MinY, s.MaxX, s.MaxY = 0, 0, 0, 0
	}
	return s
}
