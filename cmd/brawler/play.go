package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-brawler/internal/config"
	"github.com/vovakirdan/tui-brawler/internal/platform/tui"
	"github.com/vovakirdan/tui-brawler/internal/roster"
	"github.com/vovakirdan/tui-brawler/internal/sim"
	"github.com/vovakirdan/tui-brawler/internal/storage"
)

var (
	flagPlayStage  string
	flagPlayVS     string
	flagPlayRecord string
	flagPlayConfig string
	flagPlayStocks int
	flagPlayTime   int
)

var playCmd = &cobra.Command{
	Use:   "play [character]",
	Short: "Play a match against the CPU",
	Long: `Start an interactive match against a CPU opponent. With no character
argument an interactive picker opens instead.

Controls:
  A/D        - Walk left/right
  W/Space    - Jump (tap down to drop through platforms)
  S          - Crouch stick / drop through
  J          - Attack
  K          - Shield
  L          - Grab
  Esc        - Forfeit back to the menu
  Q/Ctrl+C   - Quit

Examples:
  brawler play
  brawler play ronin
  brawler play ronin --vs golem --stage courtyard
  brawler play ronin --record match.brl
  brawler play ronin --stocks 5 --time 300`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayStage, "stage", "", "Stage to fight on (default: first available)")
	playCmd.Flags().StringVar(&flagPlayVS, "vs", "", "CPU opponent character (default: first other character)")
	playCmd.Flags().StringVar(&flagPlayRecord, "record", "", "Write a replay of the match to this file")
	playCmd.Flags().StringVar(&flagPlayConfig, "config", "", "Path to custom match rules YAML")
	playCmd.Flags().IntVar(&flagPlayStocks, "stocks", 0, "Override stock count")
	playCmd.Flags().IntVar(&flagPlayTime, "time", 0, "Override time limit in seconds")
}

func runPlay(cmd *cobra.Command, args []string) {
	r, err := roster.Load(flagDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading roster: %v\n", err)
		os.Exit(1)
	}

	matchCfg, err := config.LoadMatch(flagPlayConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading match config: %v\n", err)
		os.Exit(1)
	}
	if flagPlayStocks > 0 {
		matchCfg.Rules.Stocks = flagPlayStocks
	}
	if flagPlayTime > 0 {
		matchCfg.Rules.TimeLimitSeconds = flagPlayTime
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	var character, opponent, stageName string
	if len(args) == 1 {
		character = args[0]
		if r.Character(character) == nil {
			fmt.Fprintf(os.Stderr, "Error: unknown character %q\n", character)
			fmt.Fprintln(os.Stderr, "Run 'brawler list' to see available characters.")
			os.Exit(1)
		}
		opponent = flagPlayVS
		if opponent == "" {
			opponent = pickOpponent(r, character)
		} else if r.Character(opponent) == nil {
			fmt.Fprintf(os.Stderr, "Error: unknown character %q\n", opponent)
			os.Exit(1)
		}
		stageName = flagPlayStage
		if stageName == "" {
			stageName = r.StageNames()[0]
		} else if r.Stage(stageName) == nil {
			fmt.Fprintf(os.Stderr, "Error: unknown stage %q\n", stageName)
			os.Exit(1)
		}
	} else {
		pick, pickErr := tui.RunMenu(r, width, height)
		if pickErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", pickErr)
			os.Exit(1)
		}
		if pick == nil {
			return
		}
		character = pick.Character
		opponent = pick.Opponent
		stageName = pick.Stage
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open results database: %v\n", err)
		store = nil
	}

	runErr := tui.RunMatch(tui.MatchParams{
		Roster:   r,
		MatchCfg: matchCfg,
		Stage:    stageName,
		Entrants: []sim.Entrant{
			{Character: character},
			{Character: opponent, Team: 1},
		},
		TickRate:   flagFPS,
		Seed:       flagSeed,
		RecordPath: flagPlayRecord,
		Store:      store,
	}, width, height)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running match: %v\n", runErr)
		os.Exit(1)
	}
}

// pickOpponent returns the first roster character that is not the player's,
// falling back to a mirror match.
func pickOpponent(r *roster.Roster, character string) string {
	for _, name := range r.Characters() {
		if name != character {
			return name
		}
	}
	return character
}
