package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/obsidianstack/dcrcalc/internal/config"
)

var (
	flagConfig   string
	flagLogLevel string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dcrcalc",
		Short: "Dynamic compression ratio calculator",
		Long: `dcrcalc estimates an engine's dynamic compression ratio from stroke,
static compression ratio and camshaft timing.

Run "dcrcalc calc" for a one-off result, "dcrcalc presets" to list the
built-in cam profiles, or "dcrcalc serve" to expose the calculator over
HTTP and WebSocket.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log.level from the config (debug|info|warn|error)")

	rootCmd.AddCommand(newCalcCmd(), newPresetsCmd(), newServeCmd())
	return rootCmd
}

// loadConfig returns the config named by --config, or the defaults.
func loadConfig() (*config.Config, error) {
	if flagConfig == "" {
		return config.Defaults(), nil
	}
	return config.Load(flagConfig)
}

// setupLogger builds the slog handler from cfg.Log and installs it as the
// default. --log-level wins over the config file.
func setupLogger(w io.Writer, cfg config.LogConfig) error {
	level := cfg.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}
