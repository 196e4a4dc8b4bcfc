// Command stickersheet composes sticker print sheets and their matching cut
// files from a job manifest.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/thatisuday/commando"

	"github.com/piwi3910/StickerSheet/internal/engine"
	"github.com/piwi3910/StickerSheet/internal/project"
)

var version = "dev"

func main() {
	commando.
		SetExecutableName("stickersheet").
		SetVersion(version).
		SetDescription("stickersheet lays out sticker art on a printable sheet and\n" +
			"produces the cut outlines a plotter needs to cut them out.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "log debug messages", commando.Bool, nil).
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			fmt.Println("run 'stickersheet --help' for the list of commands")
		})

	commando.
		Register("compose").
		SetShortDescription("compose the print and cut sheets of a job").
		SetDescription("Reads a job manifest (.json, .csv or .xlsx), renders every sticker with its\n" +
			"border and shadow onto the print sheet and traces the matching cut outlines.").
		AddArgument("job", "job manifest", "").
		AddFlag("config,c", "settings file", commando.String, project.DefaultConfigPath()).
		AddFlag("preset,p", "sheet preset id or name", commando.String, "").
		AddFlag("print-base", "background image for the print sheet", commando.String, "").
		AddFlag("cut-base", "reference image drawn under the cut lines", commando.String, "").
		AddFlag("out,o", "output directory", commando.String, ".").
		AddFlag("formats,f", "comma separated outputs: png,pdf,svg,dxf,gcode,preview,zip", commando.String, "png,pdf").
		AddFlag("profiles", "custom GCode profiles file", commando.String, project.DefaultProfilesPath()).
		AddFlag("redis,r", "redis address for the silhouette cache", commando.String, "").
		AddFlag("verbose,V", "log debug messages", commando.Bool, nil).
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			setupLogging(mustFlagBool(flags, "verbose"))
			opts := composeOptions{
				JobPath:      args["job"].Value,
				ConfigPath:   mustFlagString(flags, "config"),
				Preset:       mustFlagString(flags, "preset"),
				PresetsPath:  project.DefaultPresetPath(),
				PrintBase:    mustFlagString(flags, "print-base"),
				CutBase:      mustFlagString(flags, "cut-base"),
				OutDir:       mustFlagString(flags, "out"),
				Formats:      mustFlagString(flags, "formats"),
				ProfilesPath: mustFlagString(flags, "profiles"),
				RedisAddr:    mustFlagString(flags, "redis"),
			}
			ctx, stop := signalContext()
			defer stop()
			written, err := runCompose(ctx, opts)
			if err != nil {
				fatalf("compose: %v", err)
			}
			for _, f := range written {
				fmt.Println(f)
			}
		})

	commando.
		Register("grid").
		SetShortDescription("render the grid preview of a sheet").
		SetDescription("Draws the outline of every grid cell over a base image or a white sheet.").
		AddFlag("config,c", "settings file", commando.String, project.DefaultConfigPath()).
		AddFlag("preset,p", "sheet preset id or name", commando.String, "").
		AddFlag("base,b", "background image", commando.String, "").
		AddFlag("out,o", "output PNG", commando.String, "grid.png").
		AddFlag("verbose,V", "log debug messages", commando.Bool, nil).
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			setupLogging(mustFlagBool(flags, "verbose"))
			settings, err := loadSettings(mustFlagString(flags, "config"), project.DefaultPresetPath(), mustFlagString(flags, "preset"))
			if err != nil {
				fatalf("grid: %v", err)
			}
			out := mustFlagString(flags, "out")
			if err := runGrid(settings, mustFlagString(flags, "base"), out); err != nil {
				fatalf("grid: %v", err)
			}
			fmt.Println(out)
		})

	commando.
		Register("silhouette").
		SetShortDescription("trace the cut outline of one sticker").
		SetDescription("Extracts the cut outline of a single image and writes it as SVG.").
		AddArgument("image", "sticker art", "").
		AddFlag("config,c", "settings file", commando.String, project.DefaultConfigPath()).
		AddFlag("border,b", "cut around a white bleed border", commando.Bool, nil).
		AddFlag("out,o", "output SVG", commando.String, "silhouette.svg").
		AddFlag("verbose,V", "log debug messages", commando.Bool, nil).
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			setupLogging(mustFlagBool(flags, "verbose"))
			settings, err := project.LoadSettings(mustFlagString(flags, "config"))
			if err != nil {
				fatalf("silhouette: %v", err)
			}
			out := mustFlagString(flags, "out")
			if err := runSilhouette(settings, args["image"].Value, mustFlagBool(flags, "border"), out); err != nil {
				fatalf("silhouette: %v", err)
			}
			fmt.Println(out)
		})

	commando.
		Register("estimate").
		SetShortDescription("estimate the sheets a job needs").
		AddArgument("job", "job manifest", "").
		AddFlag("config,c", "settings file", commando.String, project.DefaultConfigPath()).
		AddFlag("preset,p", "sheet preset id or name", commando.String, "").
		AddFlag("waste,w", "misprint allowance in percent", commando.Int, 10).
		AddFlag("price", "price of one printed sheet", commando.String, "0").
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			settings, err := loadSettings(mustFlagString(flags, "config"), project.DefaultPresetPath(), mustFlagString(flags, "preset"))
			if err != nil {
				fatalf("estimate: %v", err)
			}
			price, err := strconv.ParseFloat(mustFlagString(flags, "price"), 64)
			if err != nil {
				fatalf("estimate: invalid price: %v", err)
			}
			if err := runEstimate(os.Stdout, settings, args["job"].Value, float64(mustFlagInt(flags, "waste")), price); err != nil {
				fatalf("estimate: %v", err)
			}
		})

	commando.
		Register("presets").
		SetShortDescription("list the sheet presets").
		AddFlag("file", "presets file", commando.String, project.DefaultPresetPath()).
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			if err := listPresets(os.Stdout, mustFlagString(flags, "file")); err != nil {
				fatalf("presets: %v", err)
			}
		})

	commando.
		Register("backup").
		SetShortDescription("export settings, presets and profiles to one file").
		AddArgument("file", "backup file to write", "").
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			if err := runBackup(project.DefaultConfigDir(), args["file"].Value); err != nil {
				fatalf("backup: %v", err)
			}
		})

	commando.
		Register("restore").
		SetShortDescription("restore settings, presets and profiles from a backup").
		AddArgument("file", "backup file to read", "").
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			if err := runRestore(project.DefaultConfigDir(), args["file"].Value); err != nil {
				fatalf("restore: %v", err)
			}
		})

	commando.Parse(nil)
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	engine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func mustFlagBool(flags map[string]commando.FlagValue, name string) bool {
	v, err := flags[name].GetBool()
	if err != nil {
		fatalf("flag %s: %v", name, err)
	}
	return v
}

func mustFlagInt(flags map[string]commando.FlagValue, name string) int {
	v, err := flags[name].GetInt()
	if err != nil {
		fatalf("flag %s: %v", name, err)
	}
	return v
}

func mustFlagString(flags map[string]commando.FlagValue, name string) string {
	v, err := flags[name].GetString()
	if err != nil {
		fatalf("flag %s: %v", name, err)
	}
	return v
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "stickersheet: "+format+"\n", args...)
	os.Exit(1)
}
