package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/cores/corridor"
	"github.com/vovakirdan/wearbridge/internal/platform/emu"
	"github.com/vovakirdan/wearbridge/internal/platform/offscreen"
	"github.com/vovakirdan/wearbridge/internal/registry"
)

var (
	flagTicks            uint64
	flagOverload         time.Duration
	flagHeadlessSize     string
	flagHeadlessProfile  string
	flagHeadlessFault    uint64
	flagHeadlessNoRecord bool
)

var headlessCmd = &cobra.Command{
	Use:   "headless <core>",
	Short: "Run a core offscreen and print the bridge counters",
	Long: `Run the frame pump against an offscreen surface on a virtual clock.
The run takes as long as the core needs; the counters are what a device
would have seen in the same amount of simulated time.

--overload charges extra virtual time to every tick, which makes the pump
fall behind and shows the catch-up bound at work.

Examples:
  wearbridge headless corridor
  wearbridge headless corridor --ticks 3500 --profile saver
  wearbridge headless corridor --overload 40ms
  wearbridge headless corridor --fault-after 100`,
	Args: cobra.ExactArgs(1),
	Run:  runHeadless,
}

func init() {
	headlessCmd.Flags().Uint64Var(&flagTicks, "ticks", 350, "Ticks to run")
	headlessCmd.Flags().DurationVar(&flagOverload, "overload", 0, "Virtual time spent in the core per tick")
	headlessCmd.Flags().StringVar(&flagHeadlessSize, "size", "", "Surface size as WxH (default: 192x192)")
	headlessCmd.Flags().StringVar(&flagHeadlessProfile, "profile", "", "Power profile: saver, balanced, performance")
	headlessCmd.Flags().Uint64Var(&flagHeadlessFault, "fault-after", 0, "Make the corridor core fault after N ticks (0 = never)")
	headlessCmd.Flags().BoolVar(&flagHeadlessNoRecord, "no-record", false, "Do not record the session")
}

func runHeadless(cmd *cobra.Command, args []string) {
	coreID := args[0]
	if !registry.Exists(coreID) {
		fmt.Fprintf(os.Stderr, "Error: unknown core %q\n", coreID)
		fmt.Fprintln(os.Stderr, "Run 'wearbridge list' to see available cores.")
		os.Exit(1)
	}

	profile, err := config.ParseProfile(flagHeadlessProfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	var size core.Size
	if flagHeadlessSize != "" {
		if size, err = emu.ParseSize(flagHeadlessSize); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := loadConfig(profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(os.Stderr, cfg)

	corridor.SetFaultAfter(flagHeadlessFault)
	c, err := registry.Create(coreID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating core: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	res, runErr := offscreen.Run(ctx, c, cfg, offscreen.Options{
		Ticks:    flagTicks,
		Size:     size,
		Overload: flagOverload,
		Seed:     seed(),
		Logger:   logger,
	})

	var fault error
	if bridge.IsCoreFault(runErr) {
		fault, runErr = runErr, nil
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running core: %v\n", runErr)
		os.Exit(1)
	}

	printStats(c.Title(), res)

	if !flagHeadlessNoRecord {
		if store := openStore(); store != nil {
			// Virtual time is what the device would have spent.
			recordSession(store, newSession(coreID, "headless", profile, started, res.Elapsed, res.Stats, fault), logger)
			store.Close()
		}
	}

	if fault != nil {
		fmt.Fprintf(os.Stderr, "Core stopped: %v\n", fault)
		os.Exit(1)
	}
}

func printStats(title string, res offscreen.Result) {
	st := res.Stats

	fmt.Printf("Headless run - %s\n", title)
	fmt.Println()

	rows := []struct {
		name  string
		value any
	}{
		{"Simulated time", res.Elapsed.Round(time.Millisecond)},
		{"Ticks", st.Ticks},
		{"Renders", st.Renders},
		{"Presents", st.Presents},
		{"Dropped presents", st.DroppedPresents},
		{"Coalesced renders", st.CoalescedRenders},
		{"Skipped ticks", st.SkippedTicks},
		{"Max catch-up", st.MaxCatchUp},
		{"Audio underruns", st.AudioUnderruns},
		{"Audio overruns", st.AudioOverruns},
		{"Input dropped", st.InputDropped},
	}
	for _, r := range rows {
		fmt.Printf("  %-18s  %v\n", r.name, r.value)
	}
}
