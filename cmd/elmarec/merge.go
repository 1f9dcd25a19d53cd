package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keex74/ElmaReplayIO/internal/config"
	"github.com/keex74/ElmaReplayIO/internal/merge"
	intOtel "github.com/keex74/ElmaReplayIO/internal/otel"
	"github.com/keex74/ElmaReplayIO/internal/watch"
)

var mergeOutput string

var mergeCmd = &cobra.Command{
	Use:   "merge <base> <new>",
	Short: "Merge the main ride of a replay into a base replay",
	Long: `Merge the main ride of <new> with the ride of the single-ride replay
<base> into a two-ride replay, and print the apple time comparison.

The output defaults to the configured merge.outputName next to <new>.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := startSession(ctx, cmd.OutOrStdout(), args[0], false)
		if err != nil {
			return err
		}
		out := mergeOutput
		if out == "" {
			out = filepath.Join(filepath.Dir(args[1]), config.GetWatchConfig().MergeOutput)
		}
		return mergeInto(ctx, cmd.OutOrStdout(), session, args[1], out)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <base>",
	Short: "Auto-merge every new !last.rec against a base replay",
	Long: `Print the base replay stats, then watch the folder of <base> for the
configured watch.fileName. Each time it settles, the new ride is compared
against the base ride and merged into merge.outputName in the same folder.

Runs until interrupted.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{longRunning: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := cmd.OutOrStdout()
		session, err := startSession(ctx, w, args[0], true)
		if err != nil {
			return err
		}

		cfg := config.GetWatchConfig()
		dir := filepath.Dir(args[0])
		output := filepath.Join(dir, cfg.MergeOutput)

		watcher := watch.New(dir, cfg.FileName, cfg.Debounce, func(ctx context.Context, path string) {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "-----------------------------------")
			if err := mergeInto(ctx, w, session, path, output); err != nil {
				fmt.Fprintln(w, err)
				Logger.Warn("Auto-merge failed", "path", path, "error", err)
			}
		}, Logger)

		fmt.Fprintf(w, "Starting %s checks and auto-merges...\n", cfg.FileName)
		fmt.Fprintln(w, "Press Ctrl+C to stop.")
		return watcher.Run(ctx)
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Output path of the merged replay")
	rootCmd.AddCommand(mergeCmd, watchCmd)
}

// startSession reads the base replay and prints its stats.
func startSession(ctx context.Context, w io.Writer, path string, verbose bool) (*merge.Session, error) {
	base, err := readReplay(ctx, path)
	if err != nil {
		return nil, err
	}
	session, err := merge.NewSession(base)
	if errors.Is(err, merge.ErrMultiRideBase) {
		return nil, errors.New("using a multi-ride replay as base replay is not supported")
	}
	if err != nil {
		return nil, err
	}
	if verbose {
		writeSummary(w, base)
		writeAppleTimes(w, session.Base())
	}
	return session, nil
}

// mergeInto merges the replay at path into output and prints the apple
// comparison.
func mergeInto(ctx context.Context, w io.Writer, session *merge.Session, path, output string) error {
	next, err := readReplay(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read new replay: %w", err)
	}
	fmt.Fprintf(w, "New replay for level: %s\n", next.MainRide().Header.LevelName)

	res, err := session.Merge(next)
	if errors.Is(err, merge.ErrLevelMismatch) {
		return errors.New("new replay is for a different level than the base replay")
	}
	if err != nil {
		return err
	}
	for _, d := range res.Apples {
		fmt.Fprintln(w, d)
	}

	if err := merge.WriteFile(output, res.Replay); err != nil {
		return fmt.Errorf("failed to merge replays: %w", err)
	}
	intOtel.Inc(ctx, Counters.MergesWritten, session.Level())
	Logger.Info("Merge written", "level", session.Level(), "path", output)
	fmt.Fprintf(w, "Created merge file: %s\n", output)
	return nil
}
