package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/keex74/ElmaReplayIO/internal/stats"
	"github.com/keex74/ElmaReplayIO/internal/util"
	"github.com/keex74/ElmaReplayIO/pkg/core"
)

var (
	infoNoBase   bool
	infoNoApples bool
	infoFrames   string
	infoEvents   string
	rideIndex    int
)

var infoCmd = &cobra.Command{
	Use:   "info <replay>",
	Short: "Print ride statistics and apple times of a replay",
	Long: `Print the statistics and apple take times of the main ride of a replay.

Frames and events can be dumped with range expressions as used by the
frames and events commands.

Example:
  elmarec info -f 0..10 -e ^5.. !last.rec`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var framesRange, eventsRange *util.Range
		for _, flag := range []struct {
			expr string
			dst  **util.Range
		}{{infoFrames, &framesRange}, {infoEvents, &eventsRange}} {
			if flag.expr == "" {
				continue
			}
			r, err := util.ParseRange(flag.expr)
			if err != nil {
				return fmt.Errorf("invalid range arguments: %w", err)
			}
			*flag.dst = &r
		}

		rep, err := readReplay(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		ride := rep.MainRide()
		out := cmd.OutOrStdout()

		if !infoNoBase {
			writeSummary(out, rep)
		}
		if !infoNoApples {
			writeAppleTimes(out, ride)
		}
		if framesRange != nil {
			if err := writeFrames(out, ride, *framesRange); err != nil {
				return err
			}
		}
		if eventsRange != nil {
			if err := writeEvents(out, ride, *eventsRange); err != nil {
				return err
			}
		}
		return nil
	},
}

var framesCmd = &cobra.Command{
	Use:   "frames <replay> [range]",
	Short: "Dump frames of a ride",
	Long: `Dump the frames of a ride selected by a range expression.

A range is "start..end" where either side may be omitted and ^n counts from
the end, so "..", "10..20" and "^30.." are valid.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rangeArg(args)
		if err != nil {
			return err
		}
		ride, err := selectRide(cmd, args[0])
		if err != nil {
			return err
		}
		return writeFrames(cmd.OutOrStdout(), ride, r)
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events <replay> [range]",
	Short: "Dump events of a ride",
	Long: `Dump the events of a ride selected by a range expression over the
event list. Object touches name the touched object when the level is found
in the lev folder next to the replay folder.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rangeArg(args)
		if err != nil {
			return err
		}
		ride, err := selectRide(cmd, args[0])
		if err != nil {
			return err
		}
		return writeEvents(cmd.OutOrStdout(), ride, r)
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoNoBase, "no-base", false, "Don't output replay stats")
	infoCmd.Flags().BoolVar(&infoNoApples, "no-apples", false, "Don't output apple times")
	infoCmd.Flags().StringVarP(&infoFrames, "frames", "f", "", "Extract frame data for a range expression")
	infoCmd.Flags().StringVarP(&infoEvents, "events", "e", "", "Extract event data for a range expression")

	for _, c := range []*cobra.Command{framesCmd, eventsCmd} {
		c.Flags().IntVarP(&rideIndex, "ride", "r", 0, "Ride index in multi-ride replays")
	}

	rootCmd.AddCommand(infoCmd, framesCmd, eventsCmd)
}

func rangeArg(args []string) (util.Range, error) {
	if len(args) < 2 {
		return util.All, nil
	}
	r, err := util.ParseRange(args[1])
	if err != nil {
		return util.Range{}, fmt.Errorf("invalid range arguments: %w", err)
	}
	return r, nil
}

func selectRide(cmd *cobra.Command, path string) (*core.Ride, error) {
	rep, err := readReplay(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	if rideIndex < 0 || rideIndex >= len(rep.Rides) {
		return nil, fmt.Errorf("ride %d out of range, replay has %d", rideIndex, len(rep.Rides))
	}
	return &rep.Rides[rideIndex], nil
}

func writeSummary(w io.Writer, rep *core.Replay) {
	s := stats.Summarize(rep.MainRide())
	object := "---"
	if s.HasObjectTouch {
		object = stats.Seconds(s.LastObjectTouch)
	}
	fmt.Fprintf(w, "Input replay stats:\n")
	fmt.Fprintf(w, "    Level: %s (%d)\n", s.Level, s.Link)
	if rep.IsMulti() {
		fmt.Fprintf(w, "    Rides: %d\n", len(rep.Rides))
	}
	fmt.Fprintf(w, "    Frames: %d\n", s.Frames)
	fmt.Fprintf(w, "    Events: %d\n", s.Events)
	fmt.Fprintf(w, "    Dur. (frames): %s s\n", stats.Seconds(s.Duration))
	fmt.Fprintf(w, "    Dur. (object): %s s\n", object)
}

func writeAppleTimes(w io.Writer, ride *core.Ride) {
	fmt.Fprintln(w, "Apple take times:")
	for i, t := range stats.AppleTimes(ride) {
		fmt.Fprintf(w, "    Apple #%03d : %s s\n", i, stats.Seconds(t))
	}
}

func writeFrames(w io.Writer, ride *core.Ride, r util.Range) error {
	frames, offset, err := util.Slice(ride.Frames, r)
	if err != nil {
		return fmt.Errorf("invalid frame range %s: %w", r, err)
	}
	for i, f := range frames {
		fmt.Fprintf(w, "Frame #%d\n", offset+i)
		fmt.Fprintf(w, "    Bike       : %s Rotation %d\n", pos(f.BikePosition), f.BikeRotation)
		fmt.Fprintf(w, "    Head       : %s\n", pos(f.HeadPosition))
		fmt.Fprintf(w, "    Left Wheel : %s Rotation: %d\n", pos(f.LeftWheelPosition), f.LeftWheelRotation)
		fmt.Fprintf(w, "    Right Wheel: %s Rotation: %d\n", pos(f.RightWheelPosition), f.RightWheelRotation)
		fmt.Fprintf(w, "    Direction  : %s\n", f.Direction)
		fmt.Fprintf(w, "    Throttle   : %s\n", yesNo(f.Throttle))
	}
	return nil
}

func writeEvents(w io.Writer, ride *core.Ride, r util.Range) error {
	events, offset, err := util.Slice(ride.Events, r)
	if err != nil {
		return fmt.Errorf("invalid event range %s: %w", r, err)
	}
	for i, e := range events {
		fmt.Fprintf(w, "Event #%d\n", offset+i)
		fmt.Fprintf(w, "    Time   : %s s\n", stats.Seconds(e.Time))
		fmt.Fprintf(w, "    Type   : %s\n", e.Kind)
		switch {
		case e.Object != nil:
			fmt.Fprintf(w, "    Object : %d (%s at %s)\n", e.ObjectID, e.Object.Kind, pos(e.Object.Position))
		case e.Kind == core.EventGroundTouch:
			fmt.Fprintf(w, "    Impact : %g\n", e.GroundTouchStrength)
		default:
			fmt.Fprintf(w, "    Object : %d\n", e.ObjectID)
		}
	}
	return nil
}

func pos[T core.Number](p core.Position[T]) string {
	return fmt.Sprintf("(%v, %v)", p.X, p.Y)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
