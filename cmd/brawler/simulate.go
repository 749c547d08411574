package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-brawler/internal/config"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/platform/tui"
	"github.com/vovakirdan/tui-brawler/internal/replay"
	"github.com/vovakirdan/tui-brawler/internal/roster"
	"github.com/vovakirdan/tui-brawler/internal/sim"
	"github.com/vovakirdan/tui-brawler/internal/storage"
)

// simulateMaxTicks caps an unlimited headless match (30 minutes at 60 tps).
const simulateMaxTicks = 108000

var (
	flagSimP1     string
	flagSimP2     string
	flagSimStage  string
	flagSimTicks  int
	flagSimRecord string
	flagSimConfig string
	flagSimNoSave bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless CPU vs CPU match",
	Long: `Run a full match without a terminal UI: both ports are CPU-driven,
the simulation runs as fast as it can, and the result is printed and saved
to the results database.

With --record the per-tick inputs are written to a replay file that
'brawler replay' can re-run and verify.

Examples:
  brawler simulate
  brawler simulate --p1 ronin --p2 golem --stage courtyard
  brawler simulate --seed 42 --record match.brl
  brawler simulate --ticks 3600`,
	Run: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&flagSimP1, "p1", "", "Port 0 character (default: first in roster)")
	simulateCmd.Flags().StringVar(&flagSimP2, "p2", "", "Port 1 character (default: second in roster)")
	simulateCmd.Flags().StringVar(&flagSimStage, "stage", "", "Stage (default: first available)")
	simulateCmd.Flags().IntVar(&flagSimTicks, "ticks", 0, "Tick cap (0 = run until the match ends)")
	simulateCmd.Flags().StringVar(&flagSimRecord, "record", "", "Write a replay to this file")
	simulateCmd.Flags().StringVar(&flagSimConfig, "config", "", "Path to custom match rules YAML")
	simulateCmd.Flags().BoolVar(&flagSimNoSave, "no-save", false, "Skip saving the result to the database")
}

func runSimulate(cmd *cobra.Command, args []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "simulate",
	})

	r, err := roster.Load(flagDataDir)
	if err != nil {
		logger.Fatal("loading roster", "error", err)
	}

	matchCfg, err := config.LoadMatch(flagSimConfig)
	if err != nil {
		logger.Fatal("loading match config", "error", err)
	}

	chars := r.Characters()
	p1, p2 := flagSimP1, flagSimP2
	if p1 == "" {
		p1 = chars[0]
	}
	if p2 == "" {
		p2 = chars[len(chars)-1]
	}
	stageName := flagSimStage
	if stageName == "" {
		stageName = r.StageNames()[0]
	}
	st := r.Stage(stageName)
	if st == nil {
		logger.Fatal("unknown stage", "stage", stageName)
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	entrants := []sim.Entrant{
		{Character: p1},
		{Character: p2, Team: 1},
	}
	match, err := sim.NewMatch(r.Table(), st, matchCfg, flagFPS, seed, entrants)
	if err != nil {
		logger.Fatal("creating match", "error", err)
	}

	cpus := make([]*tui.CPU, match.Ports())
	for port := range cpus {
		target := (port + 1) % match.Ports()
		cpus[port] = tui.NewCPU(matchCfg.CPU, st, port, target, seed+int64(port))
	}

	var rec *replay.Recorder
	if flagSimRecord != "" {
		rec, err = replay.NewRecorder(flagSimRecord, replay.Header{
			Version:  replay.FormatVersion,
			Stage:    stageName,
			TickRate: match.TickRate(),
			Seed:     seed,
			Stocks:   matchCfg.Rules.Stocks,
			Entrants: []replay.Entrant{
				{Character: p1},
				{Character: p2, Team: 1},
			},
		})
		if err != nil {
			logger.Fatal("creating replay recorder", "error", err)
		}
	}

	maxTicks := flagSimTicks
	if maxTicks <= 0 {
		maxTicks = simulateMaxTicks
	}

	logger.Info("match starting",
		"p1", p1, "p2", p2, "stage", stageName,
		"seed", seed, "fps", match.TickRate())

	start := time.Now()
	prev := core.NewInputSet(match.Ports())
	snap := match.Snapshot()
	for tick := 0; tick < maxTicks && !snap.Finished; tick++ {
		inputs := core.NewInputSet(match.Ports())
		for port, cpu := range cpus {
			inputs.SetPort(port, cpu.Input(snap, prev.Port(port)))
		}
		if rec != nil {
			if err := rec.WriteTick(match.Tick(), inputs); err != nil {
				logger.Fatal("writing replay", "error", err)
			}
		}
		snap, err = match.Advance(inputs)
		if err != nil {
			logger.Fatal("simulation fault", "error", err)
		}
		prev = inputs
	}
	elapsed := time.Since(start)

	if rec != nil {
		if err := rec.Finish(snap.Digest()); err != nil {
			logger.Fatal("sealing replay", "error", err)
		}
		logger.Info("replay written", "path", flagSimRecord, "ticks", snap.Tick)
	}

	printOutcome(snap, elapsed)

	if !flagSimNoSave && snap.Finished {
		store, storeErr := storage.Open(flagDBPath)
		if storeErr != nil {
			logger.Warn("could not open results database", "error", storeErr)
			return
		}
		defer store.Close()
		if _, saveErr := store.SaveMatch(tui.MatchResult(match, snap, stageName, flagSimRecord)); saveErr != nil {
			logger.Warn("could not save result", "error", saveErr)
		}
	}
}

func printOutcome(snap *sim.Snapshot, elapsed time.Duration) {
	fmt.Println()
	if !snap.Finished {
		fmt.Printf("Match hit the tick cap at tick %d (no winner).\n", snap.Tick)
	} else if snap.Winner >= 0 {
		f := snap.Fighter(snap.Winner)
		fmt.Printf("P%d (%s) wins at tick %d.\n", snap.Winner+1, f.Character, snap.Tick)
	} else {
		fmt.Printf("Draw at tick %d.\n", snap.Tick)
	}

	fmt.Println()
	fmt.Printf("  %-5s %-12s %-7s %-8s\n", "Port", "Character", "Stocks", "Damage")
	fmt.Printf("  %-5s %-12s %-7s %-8s\n", "----", "---------", "------", "------")
	for i := range snap.Fighters {
		f := &snap.Fighters[i]
		fmt.Printf("  P%-4d %-12s %-7d %-8.1f\n", f.Port+1, f.Character, f.Stocks, f.Damage)
	}
	fmt.Println()
	fmt.Printf("Digest %016x, simulated %d ticks in %s.\n", snap.Digest(), snap.Tick, elapsed.Round(time.Millisecond))
}
