// brawler is a terminal platform fighter with a deterministic simulation core.
//
// Usage:
//
//	brawler list               - List available characters and stages
//	brawler play [character]   - Play a match vs CPU in the terminal
//	brawler simulate           - Run a headless CPU vs CPU match
//	brawler replay <file>      - Re-run a recorded match and verify its digest
//	brawler validate [paths]   - Check character and stage files
//	brawler results            - Show recent match results
//	brawler serve              - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>    - Simulation tick rate (default: 60)
//	--seed <value>  - Match seed for reproducible play (0 = time-based)
//	--db <path>     - Results database path (default: ~/.brawler/results.db)
//	--data <dir>    - Directory with extra characters/ and stages/ YAML
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagFPS     int
	flagSeed    int64
	flagDBPath  string
	flagDataDir string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "brawler",
	Short: "TUI Brawler - platform fighting in your terminal",
	Long: `TUI Brawler is a terminal platform fighter built on a deterministic
fixed-timestep simulation. Matches can be played interactively, simulated
headlessly, recorded to replay files and re-verified bit-for-bit.

Available commands:
  list      - Show available characters and stages
  play      - Play a match against the CPU
  simulate  - Run a headless CPU vs CPU match
  replay    - Re-run a recorded match and verify determinism
  validate  - Check character and stage data files
  results   - View recent match results
  serve     - Start SSH server for remote play

Examples:
  brawler list
  brawler play ronin --vs golem
  brawler simulate --record match.brl
  brawler replay match.brl
  brawler serve --ssh :2222`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Simulation tick rate (ticks per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Match seed (0 = time-based)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.brawler/results.db", "Path to results database")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data", "", "Directory with extra characters/ and stages/")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(serveCmd)
}
