package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/keex74/ElmaReplayIO/internal/stats"
	"github.com/keex74/ElmaReplayIO/internal/storage"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive rides and list archived rides",
	Long: `Archive the main rides of replay files in the configured storage backend
(storage.type: memory, sqlite or postgres) and list what is archived.

The memory backend exports its session to JSON under storage.memory.outputDir
when the command ends.`,
}

var archiveAddCmd = &cobra.Command{
	Use:   "add <replay>...",
	Short: "Archive the main ride of each replay",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		arch, err := openArchive(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := arch.close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		w := cmd.OutOrStdout()
		var failed int
		for _, path := range args {
			rep, err := readReplay(ctx, path)
			if err != nil {
				failed++
				fmt.Fprintln(w, err)
				continue
			}
			at := time.Now()
			if fi, err := os.Stat(path); err == nil {
				at = fi.ModTime()
			}
			ride := storage.RideOf(path, at, rep)
			if err := arch.save(&ride); err != nil {
				return err
			}
			fmt.Fprintf(w, "Archived %s: %s, %d apples, %s s\n", path, ride.Level, ride.Apples(), stats.Seconds(ride.Duration))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d replays could not be read", failed, len(args))
		}
		return nil
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list [level]",
	Short: "List archived rides, optionally of one level",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		arch, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := arch.close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		var levelName string
		if len(args) == 1 {
			levelName = args[0]
		}
		rides, err := arch.backend.Rides(levelName)
		if err != nil {
			return fmt.Errorf("failed to list rides: %w", err)
		}
		writeRides(cmd.OutOrStdout(), rides)
		return nil
	},
}

func init() {
	archiveCmd.AddCommand(archiveAddCmd, archiveListCmd)
	rootCmd.AddCommand(archiveCmd)
}

func writeRides(w io.Writer, rides []storage.Ride) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tARCHIVED\tLEVEL\tAPPLES\tDURATION\tFINISH\tSOURCE")
	for _, r := range rides {
		finish := "---"
		if r.Finished {
			finish = stats.Seconds(r.Finish)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.ArchivedAt.Format(time.DateTime), r.Level, r.Apples(), stats.Seconds(r.Duration), finish, r.Source)
	}
	tw.Flush()
}
