package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-brawler/internal/roster"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available characters and stages",
	Long: `Shows every character and stage the brawler knows about: the embedded
defaults plus anything found under the --data directory.`,
	Run: runList,
}

func runList(cmd *cobra.Command, args []string) {
	r, err := roster.Load(flagDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading roster: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Characters:")
	fmt.Println()
	fmt.Printf("  %-12s  %-7s  %-9s  %s\n", "Name", "Weight", "AirJumps", "Walk")
	fmt.Printf("  %-12s  %-7s  %-9s  %s\n", "----", "------", "--------", "----")
	for _, name := range r.Characters() {
		c := r.Character(name)
		fmt.Printf("  %-12s  %-7.2f  %-9d  %.2f\n", c.Name, c.Weight, c.AirJumps, c.WalkSpeed)
	}

	fmt.Println()
	fmt.Println("Stages:")
	fmt.Println()
	fmt.Printf("  %-12s  %-10s  %s\n", "Name", "Platforms", "Ledges")
	fmt.Printf("  %-12s  %-10s  %s\n", "----", "---------", "------")
	for _, name := range r.StageNames() {
		st := r.Stage(name)
		fmt.Printf("  %-12s  %-10d  %d\n", st.Name, len(st.Platforms), len(st.Ledges))
	}

	fmt.Println()
	fmt.Println("Run 'brawler play <character>' to start a match.")
}
