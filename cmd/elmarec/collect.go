package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keex74/ElmaReplayIO/internal/collect"
	"github.com/keex74/ElmaReplayIO/internal/config"
	intOtel "github.com/keex74/ElmaReplayIO/internal/otel"
	"github.com/keex74/ElmaReplayIO/internal/storage"
	"github.com/keex74/ElmaReplayIO/internal/watch"
)

var collectNoArchive bool

var collectCmd = &cobra.Command{
	Use:   "collect <source dir> <target dir>",
	Short: "Copy every new !last.rec into per-level folders",
	Long: `Watch <source dir> for the configured watch.fileName and copy each new
replay to <target dir>/<level>/<yyyyMMdd-HHmmss-fff>_<level>.rec.

Collected rides are archived in the configured storage backend and sent to
InfluxDB when enabled. Runs until interrupted.`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{longRunning: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		src, target := args[0], args[1]
		if !isDir(src) {
			return fmt.Errorf("source path does not exist: %s", src)
		}
		if !isDir(target) {
			return fmt.Errorf("target path does not exist: %s", target)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var arch *archive
		if !collectNoArchive {
			a, err := openArchive(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.close(); err != nil {
					Logger.Error("Failed to close archive", "error", err)
				}
			}()
			arch = a
		}

		cfg := config.GetWatchConfig()
		opts, err := replayOptions(filepath.Join(src, cfg.FileName))
		if err != nil {
			return err
		}
		collector := collect.New(target, opts)
		w := cmd.OutOrStdout()

		watcher := watch.New(src, cfg.FileName, cfg.CollectDebounce, func(ctx context.Context, path string) {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "-----------------------------------")
			dst, rep, err := collector.Collect(path)
			if err != nil {
				intOtel.Inc(ctx, Counters.DecodeFailures, "")
				fmt.Fprintln(w, err)
				Logger.Warn("Collect failed", "path", path, "error", err)
				return
			}
			levelName := rep.MainRide().Header.LevelName
			intOtel.Inc(ctx, Counters.ReplaysCollected, levelName)
			fmt.Fprintf(w, "New replay for level: %s\n", levelName)
			fmt.Fprintf(w, "Copied to: %s\n", dst)

			if arch == nil {
				return
			}
			ride := storage.RideOf(dst, time.Now(), rep)
			if err := arch.save(&ride); err != nil {
				Logger.Error("Failed to archive collected ride", "path", dst, "error", err)
			}
		}, Logger)

		fmt.Fprintf(w, "Collecting %s from %s into %s\n", cfg.FileName, src, target)
		fmt.Fprintln(w, "Press Ctrl+C to stop.")
		return watcher.Run(ctx)
	},
}

func init() {
	collectCmd.Flags().BoolVar(&collectNoArchive, "no-archive", false, "Only copy replays, don't archive rides")
	rootCmd.AddCommand(collectCmd)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
