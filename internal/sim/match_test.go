package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/vovakirdan/tui-brawler/internal/config"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
)

func fighterAt(m *Match, port int) *Fighter {
	return m.fighters.Get(m.handles[port])
}

func findEvent(snap *Snapshot, kind HitKind) *HitEvent {
	for i := range snap.Events {
		if snap.Events[i].Kind == kind {
			return &snap.Events[i]
		}
	}
	return nil
}

func TestBasicHit(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))
	m := testMatch(t, table,
		Entrant{Character: "striker", Team: 0},
		Entrant{Character: "dummy", Team: 1},
	)

	if _, err := m.Advance(pressOnce(2, 0, core.ButtonAttack)); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	snap := advanceUntil(t, m, 10, func(s *Snapshot) bool {
		return findEvent(s, HitLanded) != nil
	})

	ev := findEvent(snap, HitLanded)
	if ev.Damage != 8 {
		t.Errorf("event damage = %v, want 8", ev.Damage)
	}

	d := snap.Fighter(1)
	if d.Damage != 8 {
		t.Errorf("defender damage = %v, want 8", d.Damage)
	}
	if d.Action != framedata.ActionHitstun {
		t.Errorf("defender action = %v, want hitstun", d.Action)
	}
	// Knockback 6 at zero damage stays under the threshold, so the
	// trajectory flattens to horizontal, away from the attacker.
	wantVX := 6 * m.cfg.Knockback.UnitsPerKB
	if math.Abs(d.Vel.X-wantVX) > 1e-9 {
		t.Errorf("defender Vel.X = %v, want %v", d.Vel.X, wantVX)
	}
	if math.Abs(d.Vel.Y) > 1e-9 {
		t.Errorf("defender Vel.Y = %v, want 0", d.Vel.Y)
	}
	if d.Hitstun != 2 {
		t.Errorf("defender hitstun = %d, want 2", d.Hitstun)
	}
	a := snap.Fighter(0)
	if a.Damage != 0 || a.Action == framedata.ActionHitstun {
		t.Errorf("attacker was affected: damage=%v action=%v", a.Damage, a.Action)
	}
}

func TestHitstunRunsOutThenStands(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))
	m := testMatch(t, table,
		Entrant{Character: "striker", Team: 0},
		Entrant{Character: "dummy", Team: 1},
	)

	if _, err := m.Advance(pressOnce(2, 0, core.ButtonAttack)); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	advanceUntil(t, m, 10, func(s *Snapshot) bool {
		return s.Fighter(1).Action == framedata.ActionHitstun
	})
	snap := advanceUntil(t, m, 10, func(s *Snapshot) bool {
		return s.Fighter(1).Action != framedata.ActionHitstun
	})
	if got := snap.Fighter(1).Action; got != framedata.ActionStand {
		t.Errorf("post-hitstun action = %v, want stand", got)
	}
}

func TestSingleHitPerFrameAndTieBreak(t *testing.T) {
	cases := []struct {
		name       string
		rightPrio  int
		wantDamage float64
	}{
		// Equal priority falls back to the lower attacker handle, which
		// is the earlier-spawned left fighter.
		{name: "equal priority lower handle wins", rightPrio: 5, wantDamage: 7},
		{name: "higher priority wins", rightPrio: 6, wantDamage: 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := testTable(t,
				testChar("left", 7, 5),
				testChar("right", 9, tc.rightPrio),
				testChar("dummy", 1, 1),
			)
			m := testMatch(t, table,
				Entrant{Character: "left", Team: 0},
				Entrant{Character: "right", Team: 1},
				Entrant{Character: "dummy", Team: 2},
			)
			fighterAt(m, 0).Pos = core.Vec3{X: -11}
			fighterAt(m, 1).Pos = core.Vec3{X: 11}
			fighterAt(m, 2).Pos = core.Vec3{}

			in := core.NewInputSet(3)
			mask := core.Buttons(0).With(core.ButtonAttack)
			in.SetPort(0, core.InputSnapshot{Held: mask, Pressed: mask})
			in.SetPort(1, core.InputSnapshot{Held: mask, Pressed: mask})
			if _, err := m.Advance(in); err != nil {
				t.Fatalf("Advance() error: %v", err)
			}
			snap := advanceUntil(t, m, 10, func(s *Snapshot) bool {
				return findEvent(s, HitLanded) != nil
			})

			// Exactly one hit landed on the shared defender this frame.
			if n := len(snap.Events); n != 1 {
				t.Fatalf("got %d events on hit frame, want 1: %+v", n, snap.Events)
			}
			if got := snap.Fighter(2).Damage; got != tc.wantDamage {
				t.Errorf("defender damage = %v, want %v", got, tc.wantDamage)
			}
		})
	}
}

func TestTrade(t *testing.T) {
	table := testTable(t, testChar("left", 7, 5), testChar("right", 9, 8))
	m := testMatch(t, table,
		Entrant{Character: "left", Team: 0},
		Entrant{Character: "right", Team: 1},
	)
	// At this spacing only the hitboxes reach each other, not the bodies.
	fighterAt(m, 0).Pos = core.Vec3{X: -9}
	fighterAt(m, 1).Pos = core.Vec3{X: 9}

	in := core.NewInputSet(2)
	mask := core.Buttons(0).With(core.ButtonAttack)
	in.SetPort(0, core.InputSnapshot{Held: mask, Pressed: mask})
	in.SetPort(1, core.InputSnapshot{Held: mask, Pressed: mask})
	if _, err := m.Advance(in); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	snap := advanceUntil(t, m, 10, func(s *Snapshot) bool {
		return findEvent(s, HitTraded) != nil
	})

	// Both attacks land despite the clash; priority never cancels a trade.
	if got := snap.Fighter(0).Damage; got != 9 {
		t.Errorf("left damage = %v, want 9", got)
	}
	if got := snap.Fighter(1).Damage; got != 7 {
		t.Errorf("right damage = %v, want 7", got)
	}
	for port := 0; port < 2; port++ {
		if got := snap.Fighter(port).Action; got != framedata.ActionHitstun {
			t.Errorf("port %d action = %v, want hitstun", port, got)
		}
	}
}

func TestNoRehitWithinOneAction(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))
	m := testMatch(t, table,
		Entrant{Character: "striker", Team: 0},
		Entrant{Character: "dummy", Team: 1},
	)

	if _, err := m.Advance(pressOnce(2, 0, core.ButtonAttack)); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	// The jab hitbox is active for two frames; run the whole action out.
	var hits int
	for i := 0; i < 10; i++ {
		snap, err := m.Advance(neutral(2))
		if err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
		if findEvent(snap, HitLanded) != nil {
			hits++
		}
	}
	if hits != 1 {
		t.Errorf("jab connected %d times, want 1", hits)
	}
}

func TestShieldBlocksAndBreaks(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))

	hold := func(m *Match, first bool) core.InputSet {
		in := core.NewInputSet(2)
		atk := core.Buttons(0).With(core.ButtonAttack)
		shl := core.Buttons(0).With(core.ButtonShield)
		if first {
			in.SetPort(0, core.InputSnapshot{Held: atk, Pressed: atk})
		} else {
			in.SetPort(0, core.InputSnapshot{Held: atk})
		}
		in.SetPort(1, core.InputSnapshot{Held: shl})
		return in
	}

	t.Run("block", func(t *testing.T) {
		m := testMatch(t, table,
			Entrant{Character: "striker", Team: 0},
			Entrant{Character: "dummy", Team: 1},
		)
		if _, err := m.Advance(hold(m, true)); err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
		var snap *Snapshot
		for i := 0; i < 10; i++ {
			var err error
			if snap, err = m.Advance(hold(m, false)); err != nil {
				t.Fatalf("Advance() error: %v", err)
			}
			if findEvent(snap, HitShielded) != nil {
				break
			}
		}
		if findEvent(snap, HitShielded) == nil {
			t.Fatal("shielded hit never registered")
		}
		d := snap.Fighter(1)
		if d.Damage != 0 {
			t.Errorf("blocked hit dealt %v damage", d.Damage)
		}
		if d.Action != framedata.ActionShield {
			t.Errorf("defender action = %v, want shield", d.Action)
		}
		// Two ticks of passive drain plus the 8 the jab chewed off.
		if d.Shield <= 41 || d.Shield >= 42 {
			t.Errorf("shield integrity = %v, want just under 42", d.Shield)
		}
	})

	t.Run("break", func(t *testing.T) {
		m := testMatch(t, table,
			Entrant{Character: "striker", Team: 0},
			Entrant{Character: "dummy", Team: 1},
		)
		fighterAt(m, 1).Shield = 5
		if _, err := m.Advance(hold(m, true)); err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
		var snap *Snapshot
		for i := 0; i < 10; i++ {
			var err error
			if snap, err = m.Advance(hold(m, false)); err != nil {
				t.Fatalf("Advance() error: %v", err)
			}
			if findEvent(snap, ShieldBroken) != nil {
				break
			}
		}
		if findEvent(snap, ShieldBroken) == nil {
			t.Fatal("shield never broke")
		}
		d := snap.Fighter(1)
		if d.Action != framedata.ActionShieldBreak {
			t.Errorf("defender action = %v, want shield_break", d.Action)
		}
		if d.Shield != 0 {
			t.Errorf("shield integrity = %v, want 0", d.Shield)
		}
		if d.Vel.Y != 3 {
			t.Errorf("break pop Vel.Y = %v, want 3", d.Vel.Y)
		}
	})
}

func TestKnockbackGrowsWithDamage(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))

	hitWith := func(preDamage float64) *HitEvent {
		m := testMatch(t, table,
			Entrant{Character: "striker", Team: 0},
			Entrant{Character: "dummy", Team: 1},
		)
		fighterAt(m, 1).Damage = preDamage
		if _, err := m.Advance(pressOnce(2, 0, core.ButtonAttack)); err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
		snap := advanceUntil(t, m, 10, func(s *Snapshot) bool {
			return findEvent(s, HitLanded) != nil
		})
		return findEvent(snap, HitLanded)
	}

	fresh := hitWith(0)
	worn := hitWith(80)
	heavy := hitWith(300)

	if worn.Launch.Len() <= fresh.Launch.Len() {
		t.Errorf("launch speed did not grow: %v at 0%% vs %v at 80%%",
			fresh.Launch.Len(), worn.Launch.Len())
	}
	if worn.Hitstun <= fresh.Hitstun {
		t.Errorf("hitstun did not grow: %d vs %d", fresh.Hitstun, worn.Hitstun)
	}
	// Past the threshold the flat trajectory gives way to a rising one.
	if fresh.Launch.Y != 0 {
		t.Errorf("low-knockback launch should be flat, got Y=%v", fresh.Launch.Y)
	}
	if heavy.Launch.Y <= 0 {
		t.Errorf("high-knockback launch should rise, got Y=%v", heavy.Launch.Y)
	}
}

func TestGrabHoldAndTimeout(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))
	m := testMatch(t, table,
		Entrant{Character: "striker", Team: 0},
		Entrant{Character: "dummy", Team: 1},
	)

	if _, err := m.Advance(pressOnce(2, 0, core.ButtonGrab)); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	snap := advanceUntil(t, m, 10, func(s *Snapshot) bool {
		return findEvent(s, GrabStarted) != nil
	})
	if got := snap.Fighter(0).Action; got != framedata.ActionGrabHold {
		t.Errorf("grabber action = %v, want grab_hold", got)
	}
	if got := snap.Fighter(1).Action; got != framedata.ActionGrabbed {
		t.Errorf("victim action = %v, want grabbed", got)
	}

	heldAt := snap.Fighter(1).Pos
	snap = advanceUntil(t, m, 20, func(s *Snapshot) bool {
		return s.Fighter(1).Action != framedata.ActionGrabbed
	})
	if got := snap.Fighter(1).Action; got != framedata.ActionStand {
		t.Errorf("released action = %v, want stand", got)
	}
	if got := snap.Fighter(1).Pos; got != heldAt {
		t.Errorf("victim moved while held: %v -> %v", heldAt, got)
	}
	if got := snap.Fighter(0).Action; got != framedata.ActionStand {
		t.Errorf("grabber action after release = %v, want stand", got)
	}
}

func TestHitBreaksGrab(t *testing.T) {
	table := testTable(t,
		testChar("striker", 8, 5),
		testChar("dummy", 1, 1),
		testChar("third", 5, 5),
	)
	m := testMatch(t, table,
		Entrant{Character: "striker", Team: 0},
		Entrant{Character: "dummy", Team: 1},
		Entrant{Character: "third", Team: 2},
	)
	fighterAt(m, 2).Pos = core.Vec3{X: -12}
	fighterAt(m, 2).FaceRight = true

	if _, err := m.Advance(pressOnce(3, 0, core.ButtonGrab)); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	advanceUntil(t, m, 10, func(s *Snapshot) bool {
		return findEvent(s, GrabStarted) != nil
	})

	// The third fighter punishes the grabber; the hold must drop.
	if _, err := m.Advance(pressOnce(3, 2, core.ButtonAttack)); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	snap := advanceUntil(t, m, 10, func(s *Snapshot) bool {
		return findEvent(s, HitLanded) != nil
	})
	if got := snap.Fighter(0).Action; got != framedata.ActionHitstun {
		t.Errorf("grabber action = %v, want hitstun", got)
	}
	if got := snap.Fighter(1).Action; got == framedata.ActionGrabbed {
		t.Error("victim still grabbed after the hold was struck")
	}
	if !fighterAt(m, 0).GrabPartner.IsZero() || !fighterAt(m, 1).GrabPartner.IsZero() {
		t.Error("grab partners not cleared")
	}
}

func TestStageOutForcesRespawn(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))
	m := testMatch(t, table,
		Entrant{Character: "striker", Team: 0},
		Entrant{Character: "dummy", Team: 1},
	)

	// Even deep in hitstun, leaving the blast bounds costs the stock.
	f := fighterAt(m, 1)
	f.transition(framedata.ActionHitstun)
	f.HitstunLeft = 100
	f.Pos = core.Vec3{X: -150}
	f.Damage = 66

	snap, err := m.Advance(neutral(2))
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if len(snap.Stocks) != 1 || snap.Stocks[0].Port != 1 || snap.Stocks[0].StocksLeft != 2 {
		t.Fatalf("stock events = %+v, want one for port 1 at 2 stocks", snap.Stocks)
	}
	d := snap.Fighter(1)
	if d.Action != framedata.ActionRespawn {
		t.Errorf("action = %v, want respawn", d.Action)
	}
	if d.Pos != (core.Vec3{Y: 40}) {
		t.Errorf("pos = %v, want respawn point", d.Pos)
	}
	if d.Damage != 0 {
		t.Errorf("damage = %v, want reset to 0", d.Damage)
	}
	if !d.Intangible {
		t.Error("respawned fighter is not intangible")
	}
}

func TestLastStockEndsMatch(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))
	m := testMatch(t, table,
		Entrant{Character: "striker", Team: 0},
		Entrant{Character: "dummy", Team: 1},
	)
	f := fighterAt(m, 1)
	f.Stocks = 1
	f.Pos = core.Vec3{X: 150}

	snap, err := m.Advance(neutral(2))
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if !snap.Finished || snap.Winner != 0 {
		t.Fatalf("finished=%v winner=%d, want finished with winner 0", snap.Finished, snap.Winner)
	}
	if got := snap.Fighter(1).Action; got != framedata.ActionKO {
		t.Errorf("loser action = %v, want ko", got)
	}

	// A finished match freezes: no more ticks, same snapshot.
	tick := snap.Tick
	again, err := m.Advance(neutral(2))
	if err != nil {
		t.Fatalf("Advance() after finish error: %v", err)
	}
	if again.Tick != tick {
		t.Errorf("finished match advanced from tick %d to %d", tick, again.Tick)
	}
}

func TestTimeLimitWinnerByDamage(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))
	cfg := config.DefaultMatchConfig()
	cfg.Rules.TimeLimitSeconds = 1
	m, err := NewMatch(table, testStageDef(t), cfg, 60, 1, []Entrant{
		{Character: "striker", Team: 0},
		{Character: "dummy", Team: 1},
	})
	if err != nil {
		t.Fatalf("NewMatch() error: %v", err)
	}
	fighterAt(m, 0).Damage = 50

	snap := advanceUntil(t, m, 120, func(s *Snapshot) bool { return s.Finished })
	if snap.Tick != 60 {
		t.Errorf("match ended at tick %d, want 60", snap.Tick)
	}
	// Stocks are even, so the lower accumulated damage takes it.
	if snap.Winner != 1 {
		t.Errorf("winner = %d, want 1", snap.Winner)
	}
}

func TestDeterministicReplay(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))

	script := func(tick int, prev []core.InputSnapshot) core.InputSet {
		in := core.NewInputSet(2)
		var h0 core.Buttons
		if tick%37 < 2 {
			h0 = h0.With(core.ButtonAttack)
		}
		if tick%53 < 2 {
			h0 = h0.With(core.ButtonJump)
		}
		var h1 core.Buttons
		if tick%41 < 15 {
			h1 = h1.With(core.ButtonShield)
		}
		if tick%29 < 2 {
			h1 = h1.With(core.ButtonAttack)
		}
		in.SetPort(0, prev[0].NextFrom(h0, float64((tick*13)%21-10)/10, 0))
		in.SetPort(1, prev[1].NextFrom(h1, float64((tick*7)%21-10)/10, float64((tick*3)%15-7)/7))
		return in
	}

	run := func() []uint64 {
		m := testMatch(t, table,
			Entrant{Character: "striker", Team: 0},
			Entrant{Character: "dummy", Team: 1},
		)
		prev := make([]core.InputSnapshot, 2)
		digests := make([]uint64, 0, 400)
		for tick := 0; tick < 400; tick++ {
			in := script(tick, prev)
			prev[0], prev[1] = in.Port(0), in.Port(1)
			snap, err := m.Advance(in)
			if err != nil {
				t.Fatalf("Advance() error at tick %d: %v", tick, err)
			}
			digests = append(digests, snap.Digest())
		}
		return digests
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("digest diverged at tick %d: %#x vs %#x", i, first[i], second[i])
		}
	}

	distinct := make(map[uint64]bool, len(first))
	for _, d := range first {
		distinct[d] = true
	}
	if len(distinct) < 10 {
		t.Errorf("only %d distinct digests over 400 ticks, state barely moved", len(distinct))
	}
}

func TestTableHotSwap(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))
	m := testMatch(t, table,
		Entrant{Character: "striker", Team: 0},
		Entrant{Character: "dummy", Team: 1},
	)

	incomplete := testTable(t, testChar("striker", 8, 5))
	if err := m.RequestTableSwap(incomplete); err == nil {
		t.Error("swap missing a live character was accepted")
	}

	patched := testTable(t, testChar("striker", 12, 5), testChar("dummy", 1, 1))
	if err := m.RequestTableSwap(patched); err != nil {
		t.Fatalf("RequestTableSwap() error: %v", err)
	}
	if m.table != table {
		t.Fatal("table replaced before the tick boundary")
	}
	if _, err := m.Advance(neutral(2)); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if m.table != patched {
		t.Fatal("pending table not applied at the tick boundary")
	}

	// The patched numbers take effect for the next hit.
	if _, err := m.Advance(pressOnce(2, 0, core.ButtonAttack)); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	snap := advanceUntil(t, m, 10, func(s *Snapshot) bool {
		return findEvent(s, HitLanded) != nil
	})
	if got := findEvent(snap, HitLanded).Damage; got != 12 {
		t.Errorf("post-swap damage = %v, want 12", got)
	}
}

func TestSimulationFaultIsSticky(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5), testChar("dummy", 1, 1))
	m := testMatch(t, table,
		Entrant{Character: "striker", Team: 0},
		Entrant{Character: "dummy", Team: 1},
	)
	fighterAt(m, 0).Action = framedata.ActionID(200)

	_, err := m.Advance(neutral(2))
	var fault *SimulationFault
	if !errors.As(err, &fault) {
		t.Fatalf("Advance() error = %v, want a SimulationFault", err)
	}

	_, err2 := m.Advance(neutral(2))
	if !errors.As(err2, &fault) {
		t.Fatalf("second Advance() error = %v, want the sticky fault", err2)
	}
}

func TestNewMatchRejectsBadSetups(t *testing.T) {
	table := testTable(t, testChar("striker", 8, 5))
	st := testStageDef(t)
	cfg := config.DefaultMatchConfig()

	if _, err := NewMatch(table, st, cfg, 60, 1, []Entrant{{Character: "striker"}}); err == nil {
		t.Error("single entrant accepted")
	}
	entrants := []Entrant{
		{Character: "striker", Team: 0},
		{Character: "ghost", Team: 1},
	}
	if _, err := NewMatch(table, st, cfg, 60, 1, entrants); err == nil {
		t.Error("unknown character accepted")
	}
}
