package sim

import (
	"math"

	"github.com/vovakirdan/tui-brawler/internal/arena"
	"github.com/vovakirdan/tui-brawler/internal/config"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
)

// stickDeadzone is the axis magnitude below which a stick reads neutral.
const stickDeadzone = 0.3

// dropThreshold is how far down the stick must be held to drop through a
// pass-through platform.
const dropThreshold = 0.6

// stepAction runs one fighter through the three transition sources in
// fixed priority order: forced, frame-data auto, then input on cancelable
// frames.
func (m *Match) stepAction(h arena.Handle, f *Fighter, in core.InputSnapshot) error {
	def := m.table.Character(f.Character)
	act := def.Action(f.Action)
	if act == nil {
		return &SimulationFault{Tick: m.tick, Reason: "fighter " + f.Character + " has no definition for action " + f.Action.String()}
	}

	if f.IntangibleLeft > 0 {
		f.IntangibleLeft--
	}
	if f.LedgeLock > 0 {
		f.LedgeLock--
	}

	// Terminal: input ignored, physics still runs.
	if f.KO() {
		return nil
	}

	// Forced transitions come from timers set by hit resolution and from
	// the grab lock; they override everything below.
	switch f.Action {
	case framedata.ActionHitstun:
		if f.HitstunLeft > 0 {
			f.HitstunLeft--
			return nil
		}
		if f.Grounded {
			f.transition(framedata.ActionStand)
		} else {
			f.transition(framedata.ActionFall)
		}
		return nil

	case framedata.ActionGrabbed, framedata.ActionGrabHold:
		if f.GrabTicksLeft > 0 {
			f.GrabTicksLeft--
			if f.ActionFrame+1 < act.Duration() {
				f.ActionFrame++
			}
			return nil
		}
		m.breakGrabInvolving(h, f)
		if f.Grounded {
			f.transition(framedata.ActionStand)
		} else {
			f.transition(framedata.ActionFall)
		}
		return nil

	case framedata.ActionLedgeHang:
		return m.stepLedgeHang(f, def, in)
	}

	// Shield integrity drains while held and regrows otherwise; an empty
	// shield breaks even without being struck.
	if f.Action == framedata.ActionShield {
		f.Shield -= m.cfg.Shield.DecayPerTick
		if f.Shield <= 0 {
			f.Shield = 0
			f.Vel = core.Vec3{Y: 3}
			f.Grounded = false
			f.transition(framedata.ActionShieldBreak)
			return nil
		}
	} else if f.Shield < def.ShieldHP {
		f.Shield = math.Min(f.Shield+m.cfg.Shield.RegenPerTick, def.ShieldHP)
	}

	// Frame-data auto transition when the action runs out of frames.
	f.ActionFrame++
	if f.ActionFrame >= act.Duration() {
		f.transition(act.Next)
	}

	// Input transitions, gated by the current frame's cancel flags.
	cur := def.Action(f.Action)
	if cur == nil || f.ActionFrame >= cur.Duration() {
		return &SimulationFault{Tick: m.tick, Reason: "fighter " + f.Character + " ran past frame data for " + f.Action.String()}
	}
	m.inputTransitions(f, def, cur.Frames[f.ActionFrame].Cancel, in)
	return nil
}

func (m *Match) inputTransitions(f *Fighter, def *framedata.CharacterDef, flags framedata.CancelFlags, in core.InputSnapshot) {
	if f.Grounded {
		f.DropThrough = in.StickY < -dropThreshold

		// Releasing shield always stands back up.
		if f.Action == framedata.ActionShield && !in.HeldB(core.ButtonShield) {
			f.transition(framedata.ActionStand)
			return
		}

		switch {
		case in.PressedB(core.ButtonJump) && flags.Has(framedata.CancelJump):
			f.transition(framedata.ActionJumpSquat)
		case in.PressedB(core.ButtonAttack) && flags.Has(framedata.CancelAttack):
			if math.Abs(in.StickX) >= stickDeadzone {
				f.FaceRight = in.StickX > 0
				f.transition(framedata.ActionAttackTilt)
			} else {
				f.transition(framedata.ActionAttackJab)
			}
		case in.PressedB(core.ButtonGrab) && flags.Has(framedata.CancelGrab):
			f.transition(framedata.ActionGrab)
		case in.HeldB(core.ButtonShield) && flags.Has(framedata.CancelShield) && f.Action != framedata.ActionShield:
			f.transition(framedata.ActionShield)
		case flags.Has(framedata.CancelMove):
			if math.Abs(in.StickX) >= stickDeadzone {
				f.FaceRight = in.StickX > 0
				if f.Action != framedata.ActionWalk {
					f.transition(framedata.ActionWalk)
				}
			} else if f.Action == framedata.ActionWalk {
				f.transition(framedata.ActionStand)
			}
		}
		return
	}

	f.DropThrough = false
	switch {
	case in.PressedB(core.ButtonJump) && flags.Has(framedata.CancelJump) && f.AirJumpsLeft > 0:
		f.AirJumpsLeft--
		f.Vel.Y = def.AirJumpVelocity
		f.transition(framedata.ActionAirJump)
	case in.PressedB(core.ButtonAttack) && flags.Has(framedata.CancelAttack):
		f.transition(framedata.ActionAttackAir)
	}
}

// stepLedgeHang handles the hang sub-state: climb up, jump away, or let go.
func (m *Match) stepLedgeHang(f *Fighter, def *framedata.CharacterDef, in core.InputSnapshot) error {
	ledge := m.st.Ledges[f.LedgeIndex]
	intoStage := 1.0
	if !ledge.FaceRight {
		intoStage = -1
	}

	switch {
	case in.StickY > stickDeadzone || in.StickX*intoStage > stickDeadzone:
		// Climb: step up onto the stage edge.
		f.Pos = core.Vec3{X: ledge.Pos.X + intoStage*def.ECB.Right, Y: ledge.Pos.Y, Z: ledge.Pos.Z}
		f.Vel = core.Vec3{}
		f.Grounded = true
		f.releaseLedge()
		f.transition(framedata.ActionLedgeClimb)

	case in.PressedB(core.ButtonJump):
		// Jump off the ledge, refreshed like a ground jump.
		f.Vel = core.Vec3{Y: def.JumpVelocity}
		f.AirJumpsLeft = def.AirJumps
		f.releaseLedge()
		f.transition(framedata.ActionJump)

	case in.StickY < -dropThreshold || in.StickX*intoStage < -stickDeadzone:
		// Let go and fall.
		f.Vel = core.Vec3{}
		f.releaseLedge()
		f.transition(framedata.ActionFall)
	}
	return nil
}

func (f *Fighter) releaseLedge() {
	f.LedgeIndex = -1
	f.LedgeLock = config.LedgeIntangibleTicks
	f.IntangibleLeft = 0
}
