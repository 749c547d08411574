package sim

import (
	"testing"

	"github.com/vovakirdan/tui-brawler/internal/config"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
	"github.com/vovakirdan/tui-brawler/internal/stage"
)

// testChar builds a fully authored character with predictable numbers: a
// single root bone, a large hurtbox, and a jab whose payload the caller
// controls. All distances are generous so placement in tests is forgiving.
func testChar(name string, damage float64, priority int) *framedata.CharacterDef {
	c := &framedata.CharacterDef{
		Name:            name,
		Weight:          1,
		Gravity:         0.5,
		MaxFallSpeed:    10,
		Friction:        0.8,
		WalkSpeed:       2,
		AirSpeed:        1.5,
		JumpVelocity:    10,
		AirJumpVelocity: 9,
		AirJumps:        1,
		ShieldHP:        50,
		ECB:             framedata.ECB{Left: 3, Right: 3, Top: 12},
		Skeleton:        []framedata.Bone{{Name: "root", Parent: -1}},
		Actions:         make(map[framedata.ActionID]*framedata.ActionDef),
	}

	hurt := framedata.BoxDef{Kind: framedata.Hurtbox, Bone: 0, P1: core.Vec3{Y: 6}, P2: core.Vec3{Y: 6}, Radius: 5}
	ledge := framedata.BoxDef{Kind: framedata.Ledgebox, Bone: 0, P1: core.Vec3{Y: 8}, P2: core.Vec3{Y: 8}, Radius: 5}
	shieldBox := framedata.BoxDef{Kind: framedata.Shieldbox, Bone: 0, P1: core.Vec3{Y: 6}, P2: core.Vec3{Y: 6}, Radius: 8}

	mk := func(id framedata.ActionID, dur int, next framedata.ActionID, cancel framedata.CancelFlags, boxes ...framedata.BoxDef) *framedata.ActionDef {
		def := &framedata.ActionDef{ID: id, Next: next, Frames: make([]framedata.FrameRecord, dur)}
		for i := range def.Frames {
			def.Frames[i].Cancel = cancel
			def.Frames[i].Boxes = boxes
		}
		return def
	}

	jab := framedata.BoxDef{
		Kind: framedata.Hitbox, Bone: 0,
		P1: core.Vec3{X: 2, Y: 6}, P2: core.Vec3{X: 7, Y: 6}, Radius: 3,
		Hit: &framedata.HitPayload{
			Damage: damage, BaseKB: 6, KBGrowth: 0.1,
			Angle: framedata.SakuraiAngle, Priority: priority, HitstunPerKB: 0.4,
		},
	}
	tilt := framedata.BoxDef{
		Kind: framedata.Hitbox, Bone: 0,
		P1: core.Vec3{X: 2, Y: 4}, P2: core.Vec3{X: 8, Y: 4}, Radius: 3,
		Hit: &framedata.HitPayload{
			Damage: damage + 3, BaseKB: 12, KBGrowth: 0.2,
			Angle: 45, Priority: priority + 1, HitstunPerKB: 0.4, ShieldDamage: 2,
		},
	}
	air := framedata.BoxDef{
		Kind: framedata.Hitbox, Bone: 0,
		P1: core.Vec3{X: 1, Y: 5}, P2: core.Vec3{X: 6, Y: 5}, Radius: 3,
		Hit: &framedata.HitPayload{
			Damage: damage, BaseKB: 9, KBGrowth: 0.15,
			Angle: 55, Priority: priority, HitstunPerKB: 0.4,
		},
	}
	grabBox := framedata.BoxDef{
		Kind: framedata.Grabbox, Bone: 0,
		P1: core.Vec3{X: 2, Y: 6}, P2: core.Vec3{X: 6, Y: 6}, Radius: 3,
	}

	a := c.Actions
	air2 := framedata.CancelJump | framedata.CancelAttack
	a[framedata.ActionStand] = mk(framedata.ActionStand, 1, framedata.ActionStand, framedata.CancelAll, hurt)
	a[framedata.ActionWalk] = mk(framedata.ActionWalk, 1, framedata.ActionWalk, framedata.CancelAll, hurt)
	a[framedata.ActionJumpSquat] = mk(framedata.ActionJumpSquat, 2, framedata.ActionJump, 0, hurt)
	a[framedata.ActionJump] = mk(framedata.ActionJump, 6, framedata.ActionFall, air2, hurt, ledge)
	a[framedata.ActionAirJump] = mk(framedata.ActionAirJump, 2, framedata.ActionFall, air2, hurt, ledge)
	a[framedata.ActionFall] = mk(framedata.ActionFall, 1, framedata.ActionFall, air2, hurt, ledge)
	a[framedata.ActionLand] = mk(framedata.ActionLand, 2, framedata.ActionStand, 0, hurt)
	a[framedata.ActionShield] = mk(framedata.ActionShield, 1, framedata.ActionShield, framedata.CancelJump|framedata.CancelGrab, hurt, shieldBox)
	a[framedata.ActionShieldBreak] = mk(framedata.ActionShieldBreak, 30, framedata.ActionStand, 0, hurt)
	a[framedata.ActionHitstun] = mk(framedata.ActionHitstun, 1, framedata.ActionHitstun, 0, hurt)
	a[framedata.ActionGrabHold] = mk(framedata.ActionGrabHold, 10, framedata.ActionStand, 0, hurt)
	a[framedata.ActionGrabbed] = mk(framedata.ActionGrabbed, 1, framedata.ActionGrabbed, 0, hurt)
	a[framedata.ActionLedgeHang] = mk(framedata.ActionLedgeHang, 1, framedata.ActionLedgeHang, 0, hurt)
	a[framedata.ActionLedgeClimb] = mk(framedata.ActionLedgeClimb, 4, framedata.ActionStand, 0, hurt)
	a[framedata.ActionRespawn] = mk(framedata.ActionRespawn, 10, framedata.ActionFall, 0)
	a[framedata.ActionKO] = mk(framedata.ActionKO, 1, framedata.ActionKO, 0)
	for i := range a[framedata.ActionRespawn].Frames {
		a[framedata.ActionRespawn].Frames[i].NoGravity = true
	}
	for i := range a[framedata.ActionKO].Frames {
		a[framedata.ActionKO].Frames[i].NoGravity = true
	}
	for i := range a[framedata.ActionLedgeHang].Frames {
		a[framedata.ActionLedgeHang].Frames[i].NoGravity = true
	}
	for i := range a[framedata.ActionLedgeClimb].Frames {
		a[framedata.ActionLedgeClimb].Frames[i].NoGravity = true
	}

	withWindow := func(id framedata.ActionID, dur int, next framedata.ActionID, box framedata.BoxDef, first, last int) *framedata.ActionDef {
		def := mk(id, dur, next, 0, hurt)
		for i := first; i <= last; i++ {
			def.Frames[i].Boxes = append([]framedata.BoxDef{hurt}, box)
		}
		return def
	}
	a[framedata.ActionAttackJab] = withWindow(framedata.ActionAttackJab, 6, framedata.ActionStand, jab, 2, 3)
	a[framedata.ActionAttackTilt] = withWindow(framedata.ActionAttackTilt, 8, framedata.ActionStand, tilt, 3, 5)
	a[framedata.ActionAttackAir] = withWindow(framedata.ActionAttackAir, 8, framedata.ActionFall, air, 2, 5)
	a[framedata.ActionGrab] = withWindow(framedata.ActionGrab, 6, framedata.ActionStand, grabBox, 2, 3)

	return c
}

func testTable(t *testing.T, chars ...*framedata.CharacterDef) *framedata.Table {
	t.Helper()
	table, err := framedata.NewTable(chars...)
	if err != nil {
		t.Fatalf("test table invalid: %v", err)
	}
	return table
}

func testStageDef(t *testing.T) *stage.Definition {
	t.Helper()
	d := &stage.Definition{
		Name: "flat",
		Platforms: []stage.Platform{
			{MinX: -50, MaxX: 50, Y: 0},
			{MinX: -30, MaxX: 30, Y: 20, PassThrough: true},
		},
		Ledges: []stage.Ledge{
			{Pos: core.Vec3{X: -50}, FaceRight: true},
			{Pos: core.Vec3{X: 50}, FaceRight: false},
		},
		Blast:   core.Rect{MinX: -100, MinY: -60, MaxX: 100, MaxY: 200},
		Spawns:  []core.Vec3{{X: -4}, {X: 4}, {X: 20}},
		Respawn: core.Vec3{Y: 40},
	}
	if _, err := stage.NewCatalog(d); err != nil {
		t.Fatalf("test stage invalid: %v", err)
	}
	return d
}

func testMatch(t *testing.T, table *framedata.Table, entrants ...Entrant) *Match {
	t.Helper()
	m, err := NewMatch(table, testStageDef(t), config.DefaultMatchConfig(), 60, 1, entrants)
	if err != nil {
		t.Fatalf("NewMatch() error: %v", err)
	}
	return m
}

// pressOnce returns an input set where one port has a fresh button press.
func pressOnce(ports, port int, b core.Button) core.InputSet {
	set := core.NewInputSet(ports)
	mask := core.Buttons(0).With(b)
	set.SetPort(port, core.InputSnapshot{Held: mask, Pressed: mask})
	return set
}

func neutral(ports int) core.InputSet {
	return core.NewInputSet(ports)
}

// advanceUntil steps the match with neutral input until pred or the tick
// budget runs out.
func advanceUntil(t *testing.T, m *Match, ticks int, pred func(*Snapshot) bool) *Snapshot {
	t.Helper()
	for i := 0; i < ticks; i++ {
		snap, err := m.Advance(neutral(m.Ports()))
		if err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
		if pred(snap) {
			return snap
		}
	}
	t.Fatalf("condition not reached within %d ticks", ticks)
	return nil
}
