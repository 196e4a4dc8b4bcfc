package model

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a hex colour as written in config files: "#rrggbb" or "#rrggbbaa".
type Color string

// Common colours.
const (
	White       Color = "#ffffff"
	Black       Color = "#000000"
	Transparent Color = "#00000000"
)

// NRGBA parses the colour. An 8-digit form carries alpha in its last byte.
func (c Color) NRGBA() (color.NRGBA, error) {
	s := strings.TrimSpace(string(c))
	alpha := uint8(0xff)
	if len(s) == 9 && strings.HasPrefix(s, "#") {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in colour %q: %w", string(c), err)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", string(c), err)
	}
	r, g, b := cf.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// MustNRGBA is NRGBA for trusted literals; invalid colours yield opaque black.
func (c Color) MustNRGBA() color.NRGBA {
	v, err := c.NRGBA()
	if err != nil {
		return color.NRGBA{A: 0xff}
	}
	return v
}

// StickerStyle controls the bordered raster rendering of a sticker.
type StickerStyle struct {
	AlphaThreshold        uint8   `json:"alpha_threshold"`
	BorderSize            int     `json:"border_size"` // px, dilation radius
	BorderColor           Color   `json:"border_color"`
	ShadowColor           Color   `json:"shadow_color"`
	ShadowBlur            float64 `json:"shadow_blur"` // sigma, 0 = hard shadow
	SoftEdge              float64 `json:"soft_edge"`   // sigma applied to the ring
	Padding               int     `json:"padding"`
	Crop                  bool    `json:"crop"`
	FinalSize             int     `json:"final_size"`
	BackgroundTransparent bool    `json:"background_transparent"`
	BackgroundColor       Color   `json:"background_color"`
}

// SilhouetteStyle controls cut-outline extraction.
type SilhouetteStyle struct {
	AlphaThreshold   uint8   `json:"alpha_threshold"`
	BorderDistance   int     `json:"border_distance"` // bleed border radius when Border is set
	BorderSize       int     `json:"border_size"`     // extra ring around the cut
	BlurStrength     float64 `json:"blur_strength"`
	ContourThreshold uint8   `json:"contour_threshold"`
	MorphRadius      int     `json:"morph_radius"`
	EpsilonRatio     float64 `json:"epsilon_ratio"` // Douglas-Peucker tolerance / perimeter
	CornerAngle      float64 `json:"corner_angle"`  // degrees; sharper turns keep edge tangents
}

// CutStyle controls how silhouettes are stroked in vector exports.
type CutStyle struct {
	StrokeColor Color   `json:"stroke_color"`
	StrokeWidth float64 `json:"stroke_width"` // sheet px
	Flatness    float64 `json:"flatness"`     // px, used when curves are flattened
	Reference   bool    `json:"reference"`    // draw the print sheet under the cut lines
}

// GridStyle controls the grid preview outlines.
type GridStyle struct {
	LineColor Color `json:"line_color"`
	LineWidth int   `json:"line_width"`
}

// PlotterSettings holds cutting-plotter / laser parameters for GCode output.
type PlotterSettings struct {
	Profile    string  `json:"profile"`
	FeedRate   float64 `json:"feed_rate"`   // mm/min
	PlungeRate float64 `json:"plunge_rate"` // mm/min
	ToolPower  int     `json:"tool_power"`  // spindle S word, laser power
	SafeZ      float64 `json:"safe_z"`      // mm
	CutDepth   float64 `json:"cut_depth"`   // mm
	PassDepth  float64 `json:"pass_depth"`  // mm
	ToolOffset float64 `json:"tool_offset"` // mm, drag-knife blade offset; negative cuts inside
	OriginX    float64 `json:"origin_x"`    // mm
	OriginY    float64 `json:"origin_y"`    // mm
}

// LabelSettings positions the optional job QR label on the print sheet.
type LabelSettings struct {
	Enabled bool `json:"enabled"`
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Size    int  `json:"size"`
}

// Settings is the full engine configuration.
type Settings struct {
	Sheet      SheetConfig     `json:"sheet"`
	Sticker    StickerStyle    `json:"sticker"`
	Silhouette SilhouetteStyle `json:"silhouette"`
	Cut        CutStyle        `json:"cut"`
	Grid       GridStyle       `json:"grid"`
	Plotter    PlotterSettings `json:"plotter"`
	Label      LabelSettings   `json:"label"`
	Workers    int             `json:"workers"` // concurrent renders, 0 = GOMAXPROCS
}

// DefaultSheet is the A3 sheet at roughly 240 dpi used by the shop.
func DefaultSheet() SheetConfig {
	return SheetConfig{
		Width:  2828,
		Height: 4000,
		Margin: Margin{
			MinX: 230,
			MaxX: 2650,
			MinY: 560,
			MaxY: 3800,
		},
		Columns: 5,
		Rows:    7,
		DPI:     240,
	}
}

// DefaultStickerStyle returns the production sticker look.
func DefaultStickerStyle() StickerStyle {
	return StickerStyle{
		AlphaThreshold:        120,
		BorderSize:            20,
		BorderColor:           White,
		ShadowColor:           Black,
		ShadowBlur:            0,
		SoftEdge:              1.5,
		Padding:               20,
		Crop:                  false,
		FinalSize:             1024,
		BackgroundTransparent: true,
		BackgroundColor:       White,
	}
}

// DefaultSilhouetteStyle returns the production cut-outline parameters.
func DefaultSilhouetteStyle() SilhouetteStyle {
	return SilhouetteStyle{
		AlphaThreshold:   120,
		BorderDistance:   10,
		BorderSize:       2,
		BlurStrength:     0.4,
		ContourThreshold: 127,
		MorphRadius:      1,
		EpsilonRatio:     0.001,
		CornerAngle:      60,
	}
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() Settings {
	return Settings{
		Sheet:      DefaultSheet(),
		Sticker:    DefaultStickerStyle(),
		Silhouette: DefaultSilhouetteStyle(),
		Cut: CutStyle{
			StrokeColor: Black,
			StrokeWidth: 1,
			Flatness:    0.5,
		},
		Grid: GridStyle{
			LineColor: Black,
			LineWidth: 3,
		},
		Plotter: PlotterSettings{
			Profile:    "Grbl",
			FeedRate:   1200,
			PlungeRate: 300,
			ToolPower:  1000,
			SafeZ:      2,
			CutDepth:   0.3,
			PassDepth:  0.3,
			ToolOffset: 0,
		},
		Label: LabelSettings{
			Enabled: false,
			X:       40,
			Y:       40,
			Size:    160,
		},
		Workers: 0,
	}
}
