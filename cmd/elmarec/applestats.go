package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keex74/ElmaReplayIO/internal/stats"
	"github.com/keex74/ElmaReplayIO/pkg/replay"
)

var appleStatsCmd = &cobra.Command{
	Use:   "applestats <replay dir>",
	Short: "Average apples and durations over batches of replays",
	Long: `Read every .rec file in <replay dir> in name order and print, for each
batch of --avg replays, the averaged apple count and ride duration. A
distribution of apple counts over all replays follows.

Object touches are not attributed, so levels are not looked up.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := replay.ParseNameMode(viper.GetString("replay.nameMode"))
		if err != nil {
			return err
		}
		if !isDir(args[0]) {
			return fmt.Errorf("path not found: %s", args[0])
		}

		samples, err := stats.LoadSamples(args[0], replay.Options{NameMode: mode}, func(path string, err error) {
			Logger.Warn("Skipping replay", "path", path, "error", err)
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, b := range stats.Averages(samples, viper.GetInt("stats.average")) {
			fmt.Fprintln(w, b)
		}
		fmt.Fprintln(w)
		for _, s := range stats.Distribution(samples) {
			fmt.Fprintln(w, s)
		}
		return nil
	},
}

func init() {
	appleStatsCmd.Flags().Int("avg", stats.DefaultAverage, "Number of replays per batch")
	_ = viper.BindPFlag("stats.average", appleStatsCmd.Flags().Lookup("avg"))
	rootCmd.AddCommand(appleStatsCmd)
}
