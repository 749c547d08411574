package tui

import (
	"testing"

	"github.com/vovakirdan/tui-brawler/internal/config"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
	"github.com/vovakirdan/tui-brawler/internal/sim"
)

func finishedMatch(t *testing.T) *sim.Match {
	t.Helper()
	match, err := sim.NewMatch(framedata.MustBuiltin(), testStage(t), config.DefaultMatchConfig(), 60, 7, []sim.Entrant{
		{Character: "ronin"},
		{Character: "golem", Team: 1},
	})
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return match
}

func TestMatchResultStockFinish(t *testing.T) {
	match := finishedMatch(t)
	snap := &sim.Snapshot{
		Tick:     4200,
		Finished: true,
		Winner:   0,
		Fighters: []sim.FighterState{
			{Port: 0, Character: "ronin", Stocks: 2, Damage: 61.5},
			{Port: 1, Character: "golem", Team: 1, Stocks: 0, Damage: 143},
		},
	}

	rec := MatchResult(match, snap, "courtyard", "match.brl")

	if rec.Stage != "courtyard" || rec.ReplayPath != "match.brl" {
		t.Errorf("stage/replay = %q/%q", rec.Stage, rec.ReplayPath)
	}
	if rec.Seed != 7 || rec.TickRate != 60 || rec.DurationTicks != 4200 {
		t.Errorf("seed/rate/duration = %d/%d/%d", rec.Seed, rec.TickRate, rec.DurationTicks)
	}
	if rec.WinnerPort != 0 {
		t.Errorf("WinnerPort = %d, expected 0", rec.WinnerPort)
	}
	if rec.EndReason != "stocks" {
		t.Errorf("EndReason = %q, expected stocks", rec.EndReason)
	}
	if rec.Digest == "" {
		t.Error("digest missing")
	}

	if len(rec.Players) != 2 {
		t.Fatalf("players = %d, expected 2", len(rec.Players))
	}
	if !rec.Players[0].Won || rec.Players[1].Won {
		t.Error("won flags do not match the winner port")
	}
	if rec.Players[1].Team != 1 || rec.Players[1].StocksLeft != 0 || rec.Players[1].Damage != 143 {
		t.Errorf("loser line = %+v", rec.Players[1])
	}
}

func TestMatchResultTimeFinish(t *testing.T) {
	match := finishedMatch(t)
	snap := &sim.Snapshot{
		Tick:     10800,
		Finished: true,
		Winner:   1,
		Fighters: []sim.FighterState{
			{Port: 0, Character: "ronin", Stocks: 3, Damage: 88},
			{Port: 1, Character: "golem", Team: 1, Stocks: 3, Damage: 12},
		},
	}

	rec := MatchResult(match, snap, "courtyard", "")

	if rec.EndReason != "time" {
		t.Errorf("EndReason = %q, expected time when everyone keeps a stock", rec.EndReason)
	}
	if rec.WinnerPort != 1 {
		t.Errorf("WinnerPort = %d, expected 1", rec.WinnerPort)
	}
}
