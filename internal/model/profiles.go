package model

// GCodeProfile defines a post-processor configuration for a cutting controller.
type GCodeProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"` // "mm" or "inches"

	StartCode []string `json:"start_code"`
	ToolOn    string   `json:"tool_on"`  // e.g. "M3 S%d"; %d receives ToolPower
	ToolOff   string   `json:"tool_off"` // e.g. "M5"
	HomeAll   string   `json:"home_all"`

	// UsesZ is false for lasers, which switch the tool instead of lifting it.
	UsesZ bool `json:"uses_z"`

	RapidMove string `json:"rapid_move"`
	FeedMove  string `json:"feed_move"`

	EndCode []string `json:"end_code"`

	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"`

	DecimalPlaces int `json:"decimal_places"`
}

// Built-in cutter profiles.
var GCodeProfiles = []GCodeProfile{
	{
		Name:          "Grbl",
		Description:   "Grbl pen plotter or drag-knife cutter with a Z axis",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17"},
		ToolOn:        "M3 S%d",
		ToolOff:       "M5",
		HomeAll:       "$H",
		UsesZ:         true,
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "GrblLaser",
		Description:   "Grbl 1.1 laser mode, dynamic power",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "M4 S0"},
		ToolOn:        "S%d",
		ToolOff:       "S0",
		HomeAll:       "$H",
		UsesZ:         false,
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"S0", "M5", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC tangential knife",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		ToolOn:        "M3 S%d",
		ToolOff:       "M5",
		HomeAll:       "G28 X0 Y0 Z0",
		UsesZ:         true,
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode",
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		ToolOn:        "M3 S%d",
		ToolOff:       "M5",
		HomeAll:       "G28 X0 Y0 Z0",
		UsesZ:         true,
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// GetProfile returns a GCode profile by name, or the Generic profile if not found.
func GetProfile(name string) GCodeProfile {
	for _, p := range GCodeProfiles {
		if p.Name == name {
			return p
		}
	}
	return GCodeProfiles[len(GCodeProfiles)-1]
}

// GetProfileNames returns a list of all available profile names.
func GetProfileNames() []string {
	var names []string
	for _, p := range GCodeProfiles {
		names = append(names, p.Name)
	}
	return names
}
