// wearbridge runs simulation cores through the wearable engine bridge.
//
// Usage:
//
//	wearbridge list               - List registered simulation cores
//	wearbridge run [core]         - Run a core in the terminal watch emulator
//	wearbridge headless <core>    - Run a core offscreen and print its counters
//	wearbridge sessions [core]    - Show recorded sessions
//
// Global flags:
//
//	--config <path>   - Bridge config YAML (default: search ~/.wearbridge/configs, ./configs)
//	--seed <value>    - RNG seed passed to the core (0 = time based)
//	--db <path>       - Session database (default: ~/.wearbridge/sessions.db)
//	--log-level <lvl> - Override the configured log level
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/storage"

	// Import cores to register them
	_ "github.com/vovakirdan/wearbridge/internal/cores/corridor"
	_ "github.com/vovakirdan/wearbridge/internal/cores/glider"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wearbridge",
	Short: "Wearbridge - run engine cores on a (simulated) smartwatch",
	Long: `Wearbridge drives a fixed-timestep simulation core on a wearable host:
it paces ticks, translates touch, bezel and button input into engine
commands, scales frames onto the watch surface and buffers audio.

Available commands:
  list      - Show all registered simulation cores
  run       - Run a core in the terminal watch emulator
  headless  - Run a core offscreen and print the bridge counters
  sessions  - View recorded sessions

Examples:
  wearbridge list
  wearbridge run corridor
  wearbridge run corridor --host tcell --size 96x96 --profile saver
  wearbridge headless corridor --ticks 700 --overload 40ms
  wearbridge sessions corridor`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to bridge config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.wearbridge/sessions.db", "Path to sessions database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(headlessCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// loadConfig loads the bridge config and applies the power profile.
func loadConfig(profile config.Profile) (config.BridgeConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	config.ApplyProfile(&cfg, profile)
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// seed returns the --seed value, or a time based one.
func seed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// newLogger creates a logger writing to w at the configured level.
func newLogger(w io.Writer, cfg config.BridgeConfig) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "wearbridge",
	})
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// fileLogger opens the log file used while a terminal host owns the screen.
// It falls back to discarding logs when the file cannot be opened.
func fileLogger(cfg config.BridgeConfig) (*log.Logger, func()) {
	path := cfg.Log.File
	if path == "" {
		dir := config.UserDir()
		if dir == "" {
			return log.New(io.Discard), func() {}
		}
		path = filepath.Join(dir, "wearbridge.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	return newLogger(f, cfg), func() { f.Close() }
}

// openStore opens the session database. Sessions are optional, so a failure
// only warns.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open sessions database: %v\n", err)
		return nil
	}
	return store
}

// termSize returns the terminal size, or 80x24 when stdout is not a terminal.
func termSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}
