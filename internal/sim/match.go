package sim

import (
	"fmt"
	"sync/atomic"

	"github.com/vovakirdan/tui-brawler/internal/arena"
	"github.com/vovakirdan/tui-brawler/internal/config"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
	"github.com/vovakirdan/tui-brawler/internal/stage"
)

// SimulationFault is a runtime invariant violation. The driver aborts the
// tick and refuses to advance further: silently skipping would break the
// determinism guarantee.
type SimulationFault struct {
	Tick   int
	Reason string
}

// Error implements the error interface.
func (e *SimulationFault) Error() string {
	return fmt.Sprintf("sim: tick %d: %s", e.Tick, e.Reason)
}

// Entrant describes one fighter joining a match.
type Entrant struct {
	Character string
	Team      int
}

// Match is the simulation driver: a fixed-timestep deterministic loop over
// the fighter arena. Advance is single-threaded; the published snapshot may
// be read concurrently.
type Match struct {
	cfg   config.MatchConfig
	st    *stage.Definition
	table *framedata.Table

	fighters *arena.Arena[Fighter]
	handles  []arena.Handle // port order, fixed for the whole match

	projectiles *arena.Arena[Projectile]
	projHandles []arena.Handle // spawn order

	tick      int
	tickRate  int
	timeLimit int // ticks, 0 = none
	seed      int64

	finished bool
	winner   int // winning port, -1 while running or on a draw

	events      []HitEvent
	stockEvents []StockEvent

	pending   atomic.Pointer[framedata.Table]
	published atomic.Pointer[Snapshot]
	fault     *SimulationFault
}

// NewMatch validates the lineup and creates a match with every fighter
// standing at its spawn point.
func NewMatch(table *framedata.Table, st *stage.Definition, cfg config.MatchConfig, tickRate int, seed int64, entrants []Entrant) (*Match, error) {
	if table == nil {
		return nil, fmt.Errorf("sim: nil frame data table")
	}
	if st == nil {
		return nil, fmt.Errorf("sim: nil stage")
	}
	if len(entrants) < 2 {
		return nil, fmt.Errorf("sim: a match needs at least 2 fighters, got %d", len(entrants))
	}
	if tickRate <= 0 {
		tickRate = 60
	}
	stocks := cfg.Rules.Stocks
	if stocks <= 0 {
		stocks = 3
	}

	m := &Match{
		cfg:         cfg,
		st:          st,
		table:       table,
		fighters:    arena.New[Fighter](),
		projectiles: arena.New[Projectile](),
		tickRate:    tickRate,
		seed:        seed,
		winner:      -1,
	}
	if cfg.Rules.TimeLimitSeconds > 0 {
		m.timeLimit = cfg.Rules.TimeLimitSeconds * tickRate
	}

	for port, e := range entrants {
		def := table.Character(e.Character)
		if def == nil {
			return nil, fmt.Errorf("sim: unknown character %q", e.Character)
		}
		spawn := st.Spawn(port)
		f := Fighter{
			Character:    e.Character,
			Port:         port,
			Team:         e.Team,
			Action:       framedata.ActionStand,
			Pos:          spawn,
			FaceRight:    spawn.X <= 0,
			Shield:       def.ShieldHP,
			Stocks:       stocks,
			AirJumpsLeft: def.AirJumps,
			LedgeIndex:   -1,
		}
		if y, ok := st.GroundAt(spawn.X, spawn.Y); ok {
			f.Pos.Y = y
			f.Grounded = true
		}
		m.handles = append(m.handles, m.fighters.Insert(f))
	}

	m.published.Store(m.buildSnapshot())
	return m, nil
}

// Advance runs one simulation tick: action state machine, frame-data
// lookup, physics, projectile flight, collision, hit resolution, commit.
// After the match ends
// it returns the frozen final snapshot.
func (m *Match) Advance(inputs core.InputSet) (*Snapshot, error) {
	if m.fault != nil {
		return nil, m.fault
	}
	if m.finished {
		return m.Snapshot(), nil
	}

	// Hot table swaps land exactly at a tick boundary.
	if t := m.pending.Swap(nil); t != nil {
		m.table = t
	}

	m.tick++
	m.events = m.events[:0]
	m.stockEvents = m.stockEvents[:0]

	for _, h := range m.handles {
		f := m.fighters.Get(h)
		if f == nil {
			return nil, m.abort("fighter handle went stale mid-match")
		}
		if err := m.stepAction(h, f, inputs.Port(f.Port)); err != nil {
			return nil, m.failWith(err)
		}
	}

	for _, h := range m.handles {
		f := m.fighters.Get(h)
		if err := m.stepPhysics(h, f, inputs.Port(f.Port)); err != nil {
			return nil, m.failWith(err)
		}
	}

	m.stepProjectiles()
	if err := m.spawnProjectiles(); err != nil {
		return nil, m.failWith(err)
	}

	boxes, err := m.collectBoxes()
	if err != nil {
		return nil, m.failWith(err)
	}
	m.resolveTick(detectOverlaps(boxes), inputs)

	m.checkEnd()

	snap := m.buildSnapshot()
	m.published.Store(snap)
	return snap, nil
}

func (m *Match) collectBoxes() ([]WorldBox, error) {
	var out []WorldBox
	for _, h := range m.handles {
		f := m.fighters.Get(h)
		if f == nil {
			return nil, m.abort("fighter handle went stale mid-match")
		}
		if f.KO() {
			continue
		}
		rec, err := m.table.Lookup(f.Character, f.Action, f.ActionFrame)
		if err != nil {
			return nil, &SimulationFault{Tick: m.tick, Reason: err.Error()}
		}
		def := m.table.Character(f.Character)
		out = append(out, resolveBoxes(h, f, def, rec)...)
	}
	for _, ph := range m.projHandles {
		p := m.projectiles.Get(ph)
		if p == nil {
			continue
		}
		out = append(out, projectileBox(ph, p))
	}
	return out, nil
}

func (m *Match) checkEnd() {
	aliveTeams := make(map[int]bool)
	for _, h := range m.handles {
		f := m.fighters.Get(h)
		if f.Stocks > 0 {
			aliveTeams[f.Team] = true
		}
	}

	timeUp := m.timeLimit > 0 && m.tick >= m.timeLimit
	if len(aliveTeams) > 1 && !timeUp {
		return
	}
	m.finished = true

	// Winner: most stocks, then least damage, then the lower port.
	best := -1
	var bestF *Fighter
	for _, h := range m.handles {
		f := m.fighters.Get(h)
		if f.Stocks == 0 {
			continue
		}
		if bestF == nil ||
			f.Stocks > bestF.Stocks ||
			(f.Stocks == bestF.Stocks && f.Damage < bestF.Damage) {
			best = f.Port
			bestF = f
		}
	}
	m.winner = best
}

func (m *Match) abort(reason string) *SimulationFault {
	m.fault = &SimulationFault{Tick: m.tick, Reason: reason}
	return m.fault
}

func (m *Match) failWith(err error) error {
	if sf, ok := err.(*SimulationFault); ok {
		m.fault = sf
		return sf
	}
	return m.abort(err.Error())
}

// RequestTableSwap schedules a hot reload of the frame data table. The new
// table must cover every character in the match; the swap itself happens at
// the start of the next Advance.
func (m *Match) RequestTableSwap(t *framedata.Table) error {
	if t == nil {
		return fmt.Errorf("sim: nil table")
	}
	for _, h := range m.handles {
		f := m.fighters.Get(h)
		if t.Character(f.Character) == nil {
			return fmt.Errorf("sim: new table is missing character %q", f.Character)
		}
	}
	m.pending.Store(t)
	return nil
}

// Snapshot returns the most recently committed snapshot. Safe to call from
// other goroutines while Advance runs.
func (m *Match) Snapshot() *Snapshot {
	return m.published.Load()
}

// Tick returns the number of committed ticks.
func (m *Match) Tick() int { return m.tick }

// TickRate returns the simulation rate in ticks per second.
func (m *Match) TickRate() int { return m.tickRate }

// Seed returns the match seed recorded for replays.
func (m *Match) Seed() int64 { return m.seed }

// Finished reports whether a terminal condition was reached.
func (m *Match) Finished() bool { return m.finished }

// Winner returns the winning port, or -1 while running or on a draw.
func (m *Match) Winner() int { return m.winner }

// Ports returns the number of fighters in the match.
func (m *Match) Ports() int { return len(m.handles) }
