package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-brawler/internal/platform/tui"
	"github.com/vovakirdan/tui-brawler/internal/storage"
)

var (
	flagResultsLimit       int
	flagResultsCharacter   string
	flagResultsInteractive bool
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show recent match results",
	Long: `Display recent match results from the database, newest first.

Examples:
  brawler results
  brawler results --limit 50
  brawler results --character ronin
  brawler results --interactive`,
	Run: runResults,
}

func init() {
	resultsCmd.Flags().IntVar(&flagResultsLimit, "limit", 20, "Number of matches to show")
	resultsCmd.Flags().StringVar(&flagResultsCharacter, "character", "", "Show win/loss stats for one character")
	resultsCmd.Flags().BoolVar(&flagResultsInteractive, "interactive", false, "Browse results in a TUI board")
}

func runResults(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagResultsInteractive {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if _, runErr := tui.RunResults(store, width, height); runErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
			os.Exit(1)
		}
		return
	}

	if flagResultsCharacter != "" {
		printCharacterStats(store, flagResultsCharacter)
		return
	}

	matches, err := store.RecentMatches(flagResultsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving results: %v\n", err)
		os.Exit(1)
	}

	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'brawler play' or run 'brawler simulate' to record one.")
		return
	}

	fmt.Printf("  %-16s  %-12s  %-24s  %-14s  %-6s  %s\n",
		"When", "Stage", "Players", "Winner", "End", "Ticks")
	fmt.Printf("  %-16s  %-12s  %-24s  %-14s  %-6s  %s\n",
		"----", "-----", "-------", "------", "---", "-----")

	for _, rec := range matches {
		players := make([]string, len(rec.Players))
		winner := "draw"
		for i, p := range rec.Players {
			players[i] = p.Character
			if p.Won {
				winner = fmt.Sprintf("P%d %s", p.Port+1, p.Character)
			}
		}
		fmt.Printf("  %-16s  %-12s  %-24s  %-14s  %-6s  %d\n",
			rec.CreatedAt.Format("2006-01-02 15:04"),
			rec.Stage,
			strings.Join(players, " vs "),
			winner,
			rec.EndReason,
			rec.DurationTicks)
	}
}

func printCharacterStats(store *storage.Store, character string) {
	stats, err := store.GetCharacterStats(character)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Stats for %s:\n", character)
	fmt.Println()
	if stats.Matches == 0 {
		fmt.Println("No matches recorded.")
		return
	}
	fmt.Printf("  Matches:     %d\n", stats.Matches)
	fmt.Printf("  Wins:        %d (%.0f%%)\n", stats.Wins, float64(stats.Wins)/float64(stats.Matches)*100)
	fmt.Printf("  Avg damage:  %.1f\n", stats.AvgDamage)
	fmt.Printf("  Last played: %s\n", stats.LastPlayed.Format("2006-01-02 15:04"))
}
