package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wearbridge/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered simulation cores",
	Long:  `Shows a list of all simulation cores compiled into wearbridge.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	cores := registry.List()

	if len(cores) == 0 {
		fmt.Println("No cores registered.")
		return
	}

	fmt.Println("Available cores:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, c := range cores {
		if len(c.ID) > maxIDLen {
			maxIDLen = len(c.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, c := range cores {
		fmt.Printf("  %-*s  %s\n", maxIDLen, c.ID, c.Title)
	}

	fmt.Println()
	fmt.Println("Run 'wearbridge run <id>' to start a core.")
}
