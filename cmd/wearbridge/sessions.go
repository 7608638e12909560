package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/wearbridge/internal/platform/tui"
	"github.com/vovakirdan/wearbridge/internal/registry"
	"github.com/vovakirdan/wearbridge/internal/storage"
)

var (
	flagSessionsLimit int
	flagSessionsPlain bool
	flagSessionsClear bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions [core]",
	Short: "Show recorded sessions",
	Long: `Display recorded bridge sessions with their counters.

On a terminal an interactive board is shown; Tab switches cores.
With --plain, or when stdout is not a terminal, a table is printed.

Examples:
  wearbridge sessions
  wearbridge sessions corridor --plain --limit 5
  wearbridge sessions corridor --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&flagSessionsLimit, "limit", 20, "Sessions to print in plain mode")
	sessionsCmd.Flags().BoolVar(&flagSessionsPlain, "plain", false, "Print a plain table instead of the board")
	sessionsCmd.Flags().BoolVar(&flagSessionsClear, "clear", false, "Delete the sessions of the given core")
}

func runSessions(cmd *cobra.Command, args []string) {
	var coreID string
	if len(args) == 1 {
		coreID = args[0]
		if !registry.Exists(coreID) {
			fmt.Fprintf(os.Stderr, "Error: unknown core %q\n", coreID)
			fmt.Fprintln(os.Stderr, "Run 'wearbridge list' to see available cores.")
			os.Exit(1)
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sessions database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagSessionsClear {
		if coreID == "" {
			fmt.Fprintln(os.Stderr, "Error: --clear needs a core")
			os.Exit(1)
		}
		if err := store.ClearSessions(coreID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sessions of %s cleared.\n", coreID)
		return
	}

	if !flagSessionsPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		width, height := termSize()
		if err := tui.RunSessions(store, coreID, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printSessions(store, coreID)
}

func printSessions(store *storage.Store, coreID string) {
	var (
		sessions []storage.Session
		err      error
	)
	if coreID == "" {
		sessions, err = store.RecentSessions(flagSessionsLimit)
	} else {
		sessions, err = store.SessionsByCore(coreID, flagSessionsLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving sessions: %v\n", err)
		os.Exit(1)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		fmt.Println()
		fmt.Println("Run 'wearbridge run <core>' or 'wearbridge headless <core>' to record one.")
		return
	}

	header := []string{"Core", "Started", "Host", "Profile", "Time", "Ticks", "Drop%", "Fault"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, append([]string{s.CoreID}, tui.SessionRow(s)...))
	}

	// Calculate column widths
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], len(cell))
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Println("  " + strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	printRow(header)
	for _, r := range rows {
		printRow(r)
	}

	if coreID != "" {
		if st, err := store.GetCoreStats(coreID); err == nil {
			fmt.Println()
			fmt.Printf("Total: %d sessions, %d faults, %d ticks, %.1f%% dropped\n",
				st.Sessions, st.Faults, st.TotalTicks, 100*st.DropRate)
		}
	}
}
