// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fbstory/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagDebug  bool
	flagConfig string
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// logger writes human-readable diagnostics to stderr. Stdout is reserved for results.
var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "fbstory <url> [cookie-file] [proxy-file]",
	Short: "Resolve a Facebook story link to a direct video URL",
	Long: `fbstory follows a Facebook story, reel or share link to the page that
carries the video and prints one JSON line: {"video_url": ..., "title": ...}
on success or {"error": ...} otherwise.

Cookies are read from a Netscape cookie file and the proxy from the first
line of a proxy file or the YTDL_PROXY environment variable.`,
	Args:              cobra.MaximumNArgs(3),
	PersistentPreRunE: loadConfig,
	RunE:              resolveRun,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command.
// Failures of the resolve command are reported as a JSON error line on stdout;
// only a missing URL changes the exit status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx)
	stop()
	if code != 0 {
		os.Exit(code)
	}
}

// execute runs rootCmd and returns the process exit status.
func execute(ctx context.Context) int {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	return exitStatus(cmd, err, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
}

func exitStatus(cmd *cobra.Command, err error, stdout, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	if cmd == rootCmd {
		if werr := writeError(stdout, err); werr != nil {
			fmt.Fprintln(stderr, "Error:", werr)
		}
		if errors.Is(err, ErrNoURL) {
			return 1
		}
		return 0
	}

	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/fbstory/config.toml)")

	rootCmd.AddCommand(cookiesCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	return nil
}
