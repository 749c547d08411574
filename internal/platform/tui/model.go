package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-brawler/internal/config"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/replay"
	"github.com/vovakirdan/tui-brawler/internal/roster"
	"github.com/vovakirdan/tui-brawler/internal/sim"
	"github.com/vovakirdan/tui-brawler/internal/storage"
)

// MatchParams configures an interactive match. Port 0 is the human; every
// other port is driven by a CPU.
type MatchParams struct {
	Roster   *roster.Roster
	MatchCfg config.MatchConfig
	Stage    string
	Entrants []sim.Entrant

	TickRate int
	Seed     int64 // 0 = time-based

	RecordPath string         // if set, record a replay of the match
	Store      *storage.Store // if set, persist the result
}

// MatchModel is the Bubble Tea model for running one match.
type MatchModel struct {
	params MatchParams
	match  *sim.Match
	scene  Scene
	screen *core.Screen
	keys   *KeyMapper
	cpus   []*CPU
	prev   core.InputSet
	rec    *replay.Recorder

	snap     *sim.Snapshot
	saved    bool
	err      error
	quitting bool
	goBack   bool
}

// NewMatchModel builds the model and the underlying match.
func NewMatchModel(params MatchParams, width, height int) (*MatchModel, error) {
	if params.TickRate <= 0 {
		params.TickRate = 60
	}
	m := &MatchModel{
		params: params,
		screen: core.NewScreen(width, height),
		keys:   NewKeyMapper(),
	}
	if err := m.startMatch(params.Seed); err != nil {
		return nil, err
	}
	return m, nil
}

// startMatch creates a fresh match, CPUs and recorder from the params.
func (m *MatchModel) startMatch(seed int64) error {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	st := m.params.Roster.Stage(m.params.Stage)
	if st == nil {
		return fmt.Errorf("tui: unknown stage %q", m.params.Stage)
	}

	match, err := sim.NewMatch(m.params.Roster.Table(), st, m.params.MatchCfg,
		m.params.TickRate, seed, m.params.Entrants)
	if err != nil {
		return err
	}

	var cpus []*CPU
	for port := 1; port < match.Ports(); port++ {
		// Each CPU targets the human and gets its own rng stream.
		cpus = append(cpus, NewCPU(m.params.MatchCfg.CPU, st, port, 0, seed+int64(port)))
	}

	var rec *replay.Recorder
	if m.params.RecordPath != "" {
		h := replay.Header{
			Version:  replay.FormatVersion,
			Stage:    m.params.Stage,
			TickRate: m.params.TickRate,
			Seed:     seed,
			Stocks:   m.params.MatchCfg.Rules.Stocks,
			Entrants: replayEntrants(m.params.Entrants),
		}
		rec, err = replay.NewRecorder(m.params.RecordPath, h)
		if err != nil {
			return err
		}
	}

	timeLimit := 0
	if m.params.MatchCfg.Rules.TimeLimitSeconds > 0 {
		timeLimit = m.params.MatchCfg.Rules.TimeLimitSeconds * m.params.TickRate
	}

	m.match = match
	m.scene = NewScene(st, m.params.TickRate, timeLimit)
	m.cpus = cpus
	m.prev = core.NewInputSet(match.Ports())
	m.rec = rec
	m.snap = match.Snapshot()
	m.saved = false
	m.keys.Clear()
	return nil
}

func replayEntrants(in []sim.Entrant) []replay.Entrant {
	out := make([]replay.Entrant, len(in))
	for i, e := range in {
		out[i] = replay.Entrant{Character: e.Character, Team: e.Team}
	}
	return out
}

// Init starts the tick loop.
func (m *MatchModel) Init() tea.Cmd {
	return tickCmd(m.params.TickRate)
}

// Update handles messages and advances the simulation on ticks.
func (m *MatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

func (m *MatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.snap != nil && m.snap.Finished {
		switch msg.String() {
		case "r":
			// Rematch with a fresh seed unless one was pinned.
			if err := m.startMatch(m.params.Seed); err != nil {
				m.err = err
				m.quitting = true
				return m, tea.Quit
			}
			return m, tickCmd(m.params.TickRate)
		case "esc", "b":
			m.goBack = true
			return m, tea.Quit
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if msg.String() == "esc" {
		m.closeRecorder()
		m.goBack = true
		return m, tea.Quit
	}
	if m.keys.Press(msg) {
		m.closeRecorder()
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *MatchModel) handleTick() (tea.Model, tea.Cmd) {
	if m.snap != nil && m.snap.Finished {
		return m, nil
	}

	// CPUs read last tick's committed snapshot, like any external observer.
	prevSnap := m.match.Snapshot()
	inputs := core.NewInputSet(m.match.Ports())
	inputs.SetPort(0, m.keys.Sample(m.prev.Port(0)))
	for _, c := range m.cpus {
		inputs.SetPort(c.port, c.Input(prevSnap, m.prev.Port(c.port)))
	}

	if m.rec != nil {
		if err := m.rec.WriteTick(m.match.Tick(), inputs); err != nil {
			m.err = err
			m.closeRecorder()
			m.quitting = true
			return m, tea.Quit
		}
	}

	snap, err := m.match.Advance(inputs)
	if err != nil {
		m.err = err
		m.closeRecorder()
		m.quitting = true
		return m, tea.Quit
	}
	m.prev = inputs
	m.snap = snap

	if snap.Finished {
		m.finalize(snap)
		return m, nil
	}
	return m, tickCmd(m.params.TickRate)
}

// finalize persists the result and seals the replay once per match.
func (m *MatchModel) finalize(snap *sim.Snapshot) {
	if m.saved {
		return
	}
	m.saved = true

	if m.rec != nil {
		//nolint:errcheck // Best-effort seal, the match result still shows
		m.rec.Finish(snap.Digest())
		m.rec = nil
	}

	if m.params.Store != nil {
		//nolint:errcheck // Best-effort save, the session continues regardless
		m.params.Store.SaveMatch(MatchResult(m.match, snap, m.params.Stage, m.params.RecordPath))
	}
}

func (m *MatchModel) closeRecorder() {
	if m.rec != nil {
		//nolint:errcheck // Abandoned recording, nothing to report to
		m.rec.Close()
		m.rec = nil
	}
}

// View renders the current snapshot.
func (m *MatchModel) View() string {
	if m.quitting || m.goBack {
		return ""
	}
	if m.snap == nil {
		return ""
	}
	m.scene.Draw(m.screen, m.snap)
	return RenderScreen(m.screen)
}

// Err returns the simulation or recording error that ended the session.
func (m *MatchModel) Err() error { return m.err }

// BackToMenu reports whether the user left the match but not the program.
func (m *MatchModel) BackToMenu() bool { return m.goBack }

// MatchResult converts a finished match's snapshot into a storage record.
func MatchResult(match *sim.Match, snap *sim.Snapshot, stageName, replayPath string) storage.MatchRecord {
	players := make([]storage.PlayerResult, len(snap.Fighters))
	allStocks := true
	for i := range snap.Fighters {
		f := &snap.Fighters[i]
		players[i] = storage.PlayerResult{
			Port:       f.Port,
			Character:  f.Character,
			Team:       f.Team,
			StocksLeft: f.Stocks,
			Damage:     f.Damage,
			Won:        snap.Winner == f.Port,
		}
		if f.Stocks <= 0 {
			allStocks = false
		}
	}
	// Everyone keeping a stock means the clock, not a KO, ended the match.
	endReason := "stocks"
	if allStocks {
		endReason = "time"
	}

	return storage.MatchRecord{
		Stage:         stageName,
		Seed:          match.Seed(),
		TickRate:      match.TickRate(),
		DurationTicks: snap.Tick,
		WinnerPort:    snap.Winner,
		EndReason:     endReason,
		Digest:        fmt.Sprintf("%x", snap.Digest()),
		ReplayPath:    replayPath,
		Players:       players,
	}
}

// RunMatch runs a standalone interactive match outside an SSH session.
func RunMatch(params MatchParams, width, height int) error {
	model, err := NewMatchModel(params, width, height)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if mm, ok := final.(*MatchModel); ok && mm.Err() != nil {
		return mm.Err()
	}
	return nil
}
