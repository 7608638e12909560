package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/cores/corridor"
	"github.com/vovakirdan/wearbridge/internal/platform/emu"
	"github.com/vovakirdan/wearbridge/internal/platform/tui"
	"github.com/vovakirdan/wearbridge/internal/registry"
)

var (
	flagHost       string
	flagSize       string
	flagProfile    string
	flagAudio      bool
	flagFaultAfter uint64
)

var runCmd = &cobra.Command{
	Use:   "run [core]",
	Short: "Run a core in the terminal watch emulator",
	Long: `Start the given simulation core on an emulated watch face.
Without a core, a picker menu is shown first.

Controls:
  W/A/S/D, arrows - Move (shift runs)
  Q/E             - Turn
  Space           - Fire
  F               - Use
  Esc/M           - Menu, Enter confirms
  1-7, Tab        - Weapon
  Mouse           - Touch (left button), bezel (wheel)
  P               - Pause
  Z               - Screen off/on
  V               - Mute
  Ctrl+C          - Quit

Power profiles:
  saver        - Render every 3rd tick, nearest scaling
  balanced     - Render every 2nd tick, approximate bilinear scaling
  performance  - Render every tick, bilinear scaling

Examples:
  wearbridge run
  wearbridge run corridor
  wearbridge run corridor --host tcell
  wearbridge run glider --profile performance
  wearbridge run corridor --size 96x96 --profile saver
  wearbridge run corridor --fault-after 500`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagHost, "host", "tui", "Watch emulator host: "+strings.Join(hostNames(), ", "))
	runCmd.Flags().StringVar(&flagSize, "size", "", "Watch face size in pixels as WxH (default: fit the terminal)")
	runCmd.Flags().StringVar(&flagProfile, "profile", "", "Power profile: saver, balanced, performance")
	runCmd.Flags().BoolVar(&flagAudio, "audio", true, "Play core audio on the speaker")
	runCmd.Flags().Uint64Var(&flagFaultAfter, "fault-after", 0, "Make the corridor core fault after N ticks (0 = never)")
}

func runRun(cmd *cobra.Command, args []string) {
	profile, err := config.ParseProfile(flagProfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	host, ok := hosts[flagHost]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown host %q (available: %s)\n", flagHost, strings.Join(hostNames(), ", "))
		os.Exit(1)
	}

	var size core.Size
	if flagSize != "" {
		size, err = emu.ParseSize(flagSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	var coreID string
	if len(args) == 1 {
		coreID = args[0]
	} else {
		width, height := termSize()
		result, menuErr := tui.RunMenu(profile, width, height)
		if menuErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", menuErr)
			os.Exit(1)
		}
		if result.Quit {
			return
		}
		coreID, profile = result.CoreID, result.Profile
	}

	if !registry.Exists(coreID) {
		fmt.Fprintf(os.Stderr, "Error: unknown core %q\n", coreID)
		fmt.Fprintln(os.Stderr, "Run 'wearbridge list' to see available cores.")
		os.Exit(1)
	}

	cfg, err := loadConfig(profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	corridor.SetFaultAfter(flagFaultAfter)
	c, err := registry.Create(coreID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating core: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := fileLogger(cfg)
	defer closeLog()

	b, err := bridge.New(c, cfg, bridge.WithLogger(logger), bridge.WithSeed(seed()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating bridge: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	runErr := host(ctx, b, hostOptions{
		Size:   size,
		Audio:  flagAudio && cfg.Audio.Enabled,
		Logger: logger,
	})
	elapsed := time.Since(started)
	if err := b.Close(); err != nil {
		logger.Warn("closing bridge", "err", err)
	}

	var fault error
	if bridge.IsCoreFault(runErr) {
		fault, runErr = runErr, nil
	}

	// Record the session before potential exit
	if store := openStore(); store != nil {
		recordSession(store, newSession(coreID, flagHost, profile, started, elapsed, b.Stats(), fault), logger)
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running core: %v\n", runErr)
		os.Exit(1)
	}
	if fault != nil {
		fmt.Fprintf(os.Stderr, "Core stopped: %v\n", fault)
		os.Exit(1)
	}
}
