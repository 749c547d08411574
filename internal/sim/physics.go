package sim

import (
	"math"

	"github.com/vovakirdan/tui-brawler/internal/arena"
	"github.com/vovakirdan/tui-brawler/internal/config"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
)

// airDriftAccel is the fraction of a character's air speed gained per tick
// of full stick deflection.
const airDriftAccel = 0.15

// stepPhysics advances one fighter by a single fixed timestep and resolves
// the result against the stage.
func (m *Match) stepPhysics(h arena.Handle, f *Fighter, in core.InputSnapshot) error {
	def := m.table.Character(f.Character)
	act := def.Action(f.Action)
	if act == nil || f.ActionFrame >= act.Duration() {
		return &SimulationFault{Tick: m.tick, Reason: "fighter " + f.Character + " has no frame data at " + f.Action.String()}
	}
	rec := &act.Frames[f.ActionFrame]

	// Locked states: no movement at all.
	switch f.Action {
	case framedata.ActionGrabbed, framedata.ActionGrabHold, framedata.ActionLedgeHang:
		f.Vel = core.Vec3{}
		return nil
	case framedata.ActionRespawn:
		f.Pos = m.st.Respawn
		f.Vel = core.Vec3{}
		return nil
	}

	// Leaving jump squat launches.
	if f.Action == framedata.ActionJump && f.ActionFrame == 0 && f.Grounded {
		f.Vel.Y = def.JumpVelocity
		f.Grounded = false
	}

	if rec.Impulse != nil {
		v := rec.Impulse.Vel
		if !f.FaceRight {
			v = v.MirrorX()
		}
		if rec.Impulse.Mode == framedata.ImpulseSet {
			f.Vel = v
		} else {
			f.Vel = f.Vel.Add(v)
		}
	}

	// Steering.
	switch {
	case f.Grounded && f.Action == framedata.ActionWalk:
		f.Vel.X = in.StickX * def.WalkSpeed
	case f.Grounded:
		f.Vel.X *= def.Friction
		if math.Abs(f.Vel.X) < 1e-3 {
			f.Vel.X = 0
		}
	case f.HitstunLeft > 0:
		f.Vel.X *= m.cfg.Knockback.DecayPerTick
	default:
		// Air drift, capped at the character's air speed. Launch speeds
		// beyond the cap decay instead of clamping.
		if math.Abs(f.Vel.X) > def.AirSpeed {
			f.Vel.X *= m.cfg.Knockback.DecayPerTick
		} else {
			f.Vel.X = core.ClampF(f.Vel.X+in.StickX*airDriftAccel*def.AirSpeed, -def.AirSpeed, def.AirSpeed)
		}
	}

	if !f.Grounded && !rec.NoGravity {
		f.Vel.Y -= def.Gravity
		if f.Vel.Y < -def.MaxFallSpeed {
			f.Vel.Y = -def.MaxFallSpeed
		}
	}

	prevY := f.Pos.Y
	f.Pos = f.Pos.Add(f.Vel)

	if !f.Grounded && f.Vel.Y < 0 {
		if y, ok := m.st.Landing(f.Pos.X, prevY, f.Pos.Y, f.DropThrough); ok {
			m.land(f, def, y)
		}
	} else if f.Grounded {
		if f.DropThrough && m.st.OnPassThrough(f.Pos.X, f.Pos.Y) {
			f.Grounded = false
			f.Pos.Y -= 1e-3
			f.transition(framedata.ActionFall)
		} else if y, ok := m.st.GroundAt(f.Pos.X, f.Pos.Y); ok {
			f.Pos.Y = y
		} else {
			// Walked off an edge.
			f.Grounded = false
			switch f.Action {
			case framedata.ActionWalk, framedata.ActionStand:
				f.transition(framedata.ActionFall)
			}
		}
	}

	if f.Airborne() && f.Vel.Y <= 0 && f.HitstunLeft == 0 && f.LedgeLock == 0 && f.LedgeIndex < 0 && !f.KO() {
		m.tryLedgeGrab(f, def, rec)
	}

	if !m.st.InBounds(f.Pos) {
		m.fallOff(h, f, def)
	}
	return nil
}

// land clamps the fighter onto a surface and settles its state.
func (f *Fighter) landCommon(def *framedata.CharacterDef, y float64) {
	f.Pos.Y = y
	f.Vel.Y = 0
	f.Grounded = true
	f.AirJumpsLeft = def.AirJumps
}

func (m *Match) land(f *Fighter, def *framedata.CharacterDef, y float64) {
	f.landCommon(def, y)
	switch f.Action {
	case framedata.ActionHitstun, framedata.ActionKO, framedata.ActionRespawn,
		framedata.ActionShieldBreak, framedata.ActionGrabbed:
		// Keep the state; only the body settles.
	default:
		f.transition(framedata.ActionLand)
	}
}

// tryLedgeGrab snaps an airborne, falling fighter onto a ledge when one of
// its active ledge boxes reaches the ledge point and it faces the stage.
func (m *Match) tryLedgeGrab(f *Fighter, def *framedata.CharacterDef, rec *framedata.FrameRecord) {
	var boxes []WorldBox
	for i := range m.st.Ledges {
		ledge := m.st.Ledges[i]
		if f.FaceRight != ledge.FaceRight {
			continue
		}
		if boxes == nil {
			bones := def.BonePositions(f.Pos, f.FaceRight, rec.Pose)
			for j := range rec.Boxes {
				b := &rec.Boxes[j]
				if b.Kind != framedata.Ledgebox {
					continue
				}
				boxes = append(boxes, WorldBox{
					P1:     framedata.WorldPoint(bones, b.Bone, b.P1, f.FaceRight),
					P2:     framedata.WorldPoint(bones, b.Bone, b.P2, f.FaceRight),
					Radius: b.Radius,
				})
			}
			if len(boxes) == 0 {
				return
			}
		}
		for j := range boxes {
			if core.SegmentDistance(ledge.Pos, ledge.Pos, boxes[j].P1, boxes[j].P2) > boxes[j].Radius {
				continue
			}
			intoStage := 1.0
			if !ledge.FaceRight {
				intoStage = -1
			}
			f.Pos = core.Vec3{
				X: ledge.Pos.X - intoStage*def.ECB.Right,
				Y: ledge.Pos.Y - def.ECB.Top,
				Z: ledge.Pos.Z,
			}
			f.Vel = core.Vec3{}
			f.LedgeIndex = i
			f.IntangibleLeft = config.LedgeIntangibleTicks
			f.AirJumpsLeft = def.AirJumps
			f.transition(framedata.ActionLedgeHang)
			return
		}
	}
}

// fallOff handles a blast-zone exit: stock loss, then respawn or KO.
func (m *Match) fallOff(h arena.Handle, f *Fighter, def *framedata.CharacterDef) {
	m.breakGrabInvolving(h, f)
	f.Stocks--
	if f.Stocks < 0 {
		f.Stocks = 0
	}
	m.stockEvents = append(m.stockEvents, StockEvent{Fighter: h, Port: f.Port, StocksLeft: f.Stocks})

	f.Vel = core.Vec3{}
	f.Pos = m.st.Respawn
	f.Grounded = false
	f.LedgeIndex = -1
	f.HitstunLeft = 0
	f.DropThrough = false

	if f.Stocks > 0 {
		f.Damage = 0
		f.Shield = def.ShieldHP
		f.AirJumpsLeft = def.AirJumps
		f.IntangibleLeft = config.RespawnIntangibleTicks
		f.transition(framedata.ActionRespawn)
	} else {
		f.IntangibleLeft = 0
		f.transition(framedata.ActionKO)
	}
}
