package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keex74/ElmaReplayIO/internal/geo"
	"github.com/keex74/ElmaReplayIO/internal/stats"
	"github.com/keex74/ElmaReplayIO/pkg/core"
	"github.com/keex74/ElmaReplayIO/pkg/level"
	"github.com/keex74/ElmaReplayIO/pkg/replay"
)

var (
	levelGeoJSON string
	levelReplays string
	levelResave  string
)

var levelCmd = &cobra.Command{
	Use:   "level <lev>",
	Short: "Print level information and export its geometry",
	Long: `Print the header, geometry and objects of a level file.

With --geojson the level is exported as a GeoJSON feature collection: solid
polygons in paint order, grass, objects, and the bike trace of every replay
in --replays that was driven on this level. With --resave the level is
written back out with fresh integrity values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := level.DecodeFile(args[0], levelOptions())
		if err != nil {
			return fmt.Errorf("failed to read level %s: %w", args[0], err)
		}
		w := cmd.OutOrStdout()
		writeLevel(w, l)

		if levelGeoJSON != "" {
			rides, err := levelTraces(l, levelReplays)
			if err != nil {
				return err
			}
			if err := exportGeoJSON(levelGeoJSON, l, rides); err != nil {
				return err
			}
			fmt.Fprintf(w, "Wrote %s (%d traces)\n", levelGeoJSON, len(rides))
		}

		if levelResave != "" {
			if err := level.EncodeFile(levelResave, l, level.DefaultEncodeOptions()); err != nil {
				return fmt.Errorf("failed to write level: %w", err)
			}
			fmt.Fprintf(w, "Wrote %s\n", levelResave)
		}
		return nil
	},
}

func init() {
	levelCmd.Flags().StringVar(&levelGeoJSON, "geojson", "", "Write the level geometry as GeoJSON to this path")
	levelCmd.Flags().StringVar(&levelReplays, "replays", "", "Add the traces of the replays in this folder to the GeoJSON")
	levelCmd.Flags().StringVar(&levelResave, "resave", "", "Re-encode the level to this path")
	rootCmd.AddCommand(levelCmd)
}

func writeLevel(w io.Writer, l *core.Level) {
	fmt.Fprintf(w, "Level: %s (%d)\n", l.Name, l.Link)
	fmt.Fprintf(w, "    LGR: %s  Ground: %s  Sky: %s\n", l.LGR, l.Ground, l.Sky)
	fmt.Fprintf(w, "    Intact: %s\n", yesNo(l.Intact))
	fmt.Fprintf(w, "    Polygons: %d solid, %d grass\n", len(l.Polygons), len(l.Grass))
	if env, ok := geo.Envelope(l); ok {
		fmt.Fprintf(w, "    Envelope: %s\n", env.AsText())
	}

	var area float64
	for _, p := range l.Polygons {
		poly, err := geo.Polygon(p)
		if err != nil {
			continue
		}
		if p.AlternateFill() {
			area -= poly.Area()
		} else {
			area += poly.Area()
		}
	}
	fmt.Fprintf(w, "    Enclosed area: %.3f\n", area)

	fmt.Fprintf(w, "    Objects: %d\n", len(l.Objects))
	for _, k := range []core.ObjectKind{core.ObjectFlower, core.ObjectApple, core.ObjectKiller, core.ObjectPlayerStart} {
		fmt.Fprintf(w, "        %-7s: %d\n", k, l.CountObjects(k))
	}
	fmt.Fprintf(w, "    Pictures: %d\n", len(l.Pictures))
}

// levelTraces decodes the replays in dir and keeps the main rides driven on
// l, matched by link.
func levelTraces(l *core.Level, dir string) ([]*core.Ride, error) {
	if dir == "" {
		return nil, nil
	}
	mode, err := replay.ParseNameMode(viper.GetString("replay.nameMode"))
	if err != nil {
		return nil, err
	}
	opts := replay.WithLevel(l)
	opts.NameMode = mode

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list replays: %w", err)
	}
	var rides []*core.Ride
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".rec") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		rep, err := replay.DecodeFile(path, opts)
		if err != nil {
			Logger.Warn("Skipping replay", "path", path, "error", err)
			continue
		}
		main := rep.MainRide()
		if main.Header.Link != l.Link {
			continue
		}
		Logger.Debug("Adding trace", "path", path, "apples", stats.Summarize(main).Apples)
		rides = append(rides, main)
	}
	return rides, nil
}

func exportGeoJSON(path string, l *core.Level, rides []*core.Ride) error {
	fc, err := geo.Features(l, rides...)
	if err != nil {
		return fmt.Errorf("failed to build features: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := geo.WriteGeoJSON(f, fc); err != nil {
		f.Close()
		return fmt.Errorf("failed to write GeoJSON: %w", err)
	}
	return f.Close()
}
