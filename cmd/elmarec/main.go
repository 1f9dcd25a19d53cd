package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/keex74/ElmaReplayIO/internal/cache"
	"github.com/keex74/ElmaReplayIO/internal/config"
	"github.com/keex74/ElmaReplayIO/internal/levels"
	"github.com/keex74/ElmaReplayIO/internal/logging"
	intOtel "github.com/keex74/ElmaReplayIO/internal/otel"
	"github.com/keex74/ElmaReplayIO/pkg/core"
	"github.com/keex74/ElmaReplayIO/pkg/level"
	"github.com/keex74/ElmaReplayIO/pkg/replay"
)

// BuildDate can be set at build time via ldflags
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"
)

// annotation marking commands that run until interrupted; they log to a file
const longRunning = "longRunning"

// global variables
var (
	configDir string
	logLevel  string

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger = slog.New(slog.DiscardHandler)

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// Counters are nil until setup ran
	Counters *intOtel.Counters

	SessionStartTime time.Time = time.Now()

	// LevelCache holds levels found next to replays for the whole run
	LevelCache *cache.LevelCache = cache.NewLevelCache()

	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "elmarec",
	Short: "Elasto Mania replay and level tools",
	Long: `elmarec reads and writes Elasto Mania replay (.rec) and level (.lev) files.

It prints ride statistics, dumps frames and events, merges a new ride into a
base replay for comparison, collects finished replays, and archives rides.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("elmarec %s (built %s)\n", Version, BuildDate))
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", ".", "Directory containing "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("name-mode", "", "Replay header level name mode (fixed, scan)")
	_ = viper.BindPFlag("replay.nameMode", rootCmd.PersistentFlags().Lookup("name-mode"))
}

func main() {
	err := rootCmd.Execute()
	shutdown()
	if err != nil {
		os.Exit(1)
	}
}

// setup loads the config and (re)initializes logging and telemetry before
// any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	configErr := config.Load(configDir)
	if logLevel != "" {
		viper.Set("logLevel", logLevel)
	}

	var logWriter io.Writer
	if cmd.Annotations[longRunning] != "" && viper.GetString("logsDir") != "" {
		f, err := logging.OpenLogFile(viper.GetString("logsDir"), cmd.Name(), SessionStartTime)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			logFile = f
			logWriter = f
		}
	}

	otelCfg := config.GetOtelConfig()
	provider, otelErr := intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    logWriter,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if otelErr != nil {
		// fall back to no-op meters
		provider, _ = intOtel.New(intOtel.Config{})
	}
	OTelProvider = provider

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	SlogManager = logging.NewSlogManager()
	opts := logging.Options{
		File:     logWriter,
		Level:    viper.GetString("logLevel"),
		Provider: otelLogProvider,
	}
	if viper.GetBool("graylog.enabled") {
		opts.GraylogAddress = viper.GetString("graylog.address")
	}
	_ = SlogManager.Setup(opts)
	Logger = SlogManager.Logger()

	if configErr != nil {
		Logger.Debug("Failed to load config, using defaults", "dir", configDir, "error", configErr)
	}
	if otelErr != nil {
		Logger.Error("Failed to initialize OTel provider", "error", otelErr)
	}
	if logFile != nil {
		Logger.Info("Logging to file", "path", logFile.Name())
	}

	counters, err := intOtel.NewCounters(OTelProvider.Meter("elmarec"))
	if err != nil {
		return fmt.Errorf("failed to register counters: %w", err)
	}
	Counters = counters
	return nil
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if OTelProvider != nil {
		errs = append(errs, OTelProvider.Shutdown(ctx))
	}
	if SlogManager != nil {
		errs = append(errs, SlogManager.Close())
	}
	if logFile != nil {
		errs = append(errs, logFile.Close())
	}
	if err := errors.Join(errs...); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown: %v\n", err)
	}
}

// replayOptions returns decode options for the replay at path. Object
// touches are attributed when the level is found in ../lev.
func replayOptions(path string) (replay.Options, error) {
	mode, err := replay.ParseNameMode(viper.GetString("replay.nameMode"))
	if err != nil {
		return replay.Options{}, err
	}
	locator := levels.NewLocator(LevelCache, levelOptions(), Logger)
	return locator.Options(path, mode), nil
}

func levelOptions() level.DecodeOptions {
	return level.DecodeOptions{Strict: viper.GetBool("level.strict")}
}

// readReplay decodes the replay at path and counts the outcome.
func readReplay(ctx context.Context, path string) (*core.Replay, error) {
	opts, err := replayOptions(path)
	if err != nil {
		return nil, err
	}
	rep, err := replay.DecodeFile(path, opts)
	if err != nil {
		intOtel.Inc(ctx, Counters.DecodeFailures, "")
		return nil, fmt.Errorf("failed to read replay %s: %w", path, err)
	}
	for _, r := range rep.Rides {
		intOtel.Inc(ctx, Counters.RidesDecoded, r.Header.LevelName)
	}
	return rep, nil
}
