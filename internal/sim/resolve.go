package sim

import (
	"math"
	"sort"

	"github.com/vovakirdan/tui-brawler/internal/arena"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
)

// weightScale maps a character's weight to a knockback multiplier. Weight 1
// is neutral; heavier characters are launched less.
func weightScale(w float64) float64 {
	return 2 - 2*w/(1+w)
}

// hitCandidate is one possible resolution against a defender, before the
// single-hit-per-defender rule picks a winner.
type hitCandidate struct {
	attacker arena.Handle
	defender arena.Handle
	source   arena.Handle // projectile the hit rides on; zero for melee
	payload  *framedata.HitPayload
	originX  float64 // world X the launch direction points away from
	trade    bool
}

// better is the stable tie-break: higher priority wins, equal priority goes
// to the lower attacker handle.
func (c hitCandidate) better(o hitCandidate) bool {
	if c.payload.Priority != o.payload.Priority {
		return c.payload.Priority > o.payload.Priority
	}
	return c.attacker.Less(o.attacker)
}

type grabCandidate struct {
	attacker arena.Handle
	defender arena.Handle
}

// preView captures the pre-frame defender/attacker state hit math reads, so
// the outcome cannot depend on the order fighters are processed in.
type preView struct {
	damage    float64
	weight    float64
	posX      float64
	faceRight bool
	shielding bool
	grounded  bool
}

// resolveTick converts the frame's overlaps into applied hit outcomes.
// All math reads the pre-frame views; mutations are applied per defender in
// ascending handle order.
func (m *Match) resolveTick(overlaps []Overlap, inputs core.InputSet) {
	views := make(map[arena.Handle]preView, len(m.handles))
	for _, h := range m.handles {
		f := m.fighters.Get(h)
		def := m.table.Character(f.Character)
		views[h] = preView{
			damage:    f.Damage,
			weight:    def.Weight,
			posX:      f.Pos.X,
			faceRight: f.FaceRight,
			shielding: f.Shielding(),
			grounded:  f.Grounded,
		}
	}

	origin := func(b *WorldBox) float64 {
		if !b.Source.IsZero() {
			return b.P1.X
		}
		return views[b.Owner].posX
	}

	var hits []hitCandidate
	var grabs []grabCandidate
	for _, ov := range overlaps {
		a, b := ov.A, ov.B
		switch {
		case a.Kind == framedata.Hitbox && b.Kind == framedata.Hitbox:
			// A projectile meeting an active attack is swatted out of the
			// air before it can land; two projectiles destroy each other.
			// Only a pure melee pair trades.
			switch {
			case !a.Source.IsZero() || !b.Source.IsZero():
				m.projectiles.Remove(a.Source)
				m.projectiles.Remove(b.Source)
			default:
				hits = append(hits,
					hitCandidate{attacker: a.Owner, defender: b.Owner, payload: a.Hit, originX: origin(a), trade: true},
					hitCandidate{attacker: b.Owner, defender: a.Owner, payload: b.Hit, originX: origin(b), trade: true},
				)
			}
		case a.Kind == framedata.Hitbox:
			hits = append(hits, hitCandidate{attacker: a.Owner, defender: b.Owner, source: a.Source, payload: a.Hit, originX: origin(a)})
		case b.Kind == framedata.Hitbox:
			hits = append(hits, hitCandidate{attacker: b.Owner, defender: a.Owner, source: b.Source, payload: b.Hit, originX: origin(b)})
		case a.Kind == framedata.Grabbox:
			grabs = append(grabs, grabCandidate{attacker: a.Owner, defender: b.Owner})
		case b.Kind == framedata.Grabbox:
			grabs = append(grabs, grabCandidate{attacker: b.Owner, defender: a.Owner})
		}
	}

	// One hit lands per defender per frame. A swatted projectile's
	// candidates are already dead; the melee re-hit rule does not apply to
	// projectiles, which are consumed on their first hit instead.
	best := make(map[arena.Handle]hitCandidate)
	for _, c := range hits {
		if m.fighters.Get(c.attacker) == nil {
			continue
		}
		if c.source.IsZero() {
			if m.fighters.Get(c.attacker).HasHit(c.defender) {
				continue
			}
		} else if m.projectiles.Get(c.source) == nil {
			continue
		}
		cur, ok := best[c.defender]
		if !ok || c.better(cur) {
			best[c.defender] = c
		}
	}

	defenders := make([]arena.Handle, 0, len(best))
	for h := range best {
		defenders = append(defenders, h)
	}
	sort.Slice(defenders, func(i, j int) bool { return defenders[i].Less(defenders[j]) })

	hitThisFrame := make(map[arena.Handle]bool)
	for _, dh := range defenders {
		c := best[dh]
		if !c.source.IsZero() && m.projectiles.Get(c.source) == nil {
			continue
		}
		m.applyHit(c, views, inputs)
		hitThisFrame[dh] = true
		hitThisFrame[c.attacker] = hitThisFrame[c.attacker] || c.trade
	}

	// Grabs resolve after hits: a party struck this frame drops the grab.
	grabbed := make(map[arena.Handle]bool)
	for _, g := range grabs {
		if hitThisFrame[g.attacker] || hitThisFrame[g.defender] || grabbed[g.defender] {
			continue
		}
		attacker := m.fighters.Get(g.attacker)
		defender := m.fighters.Get(g.defender)
		if attacker == nil || defender == nil {
			continue
		}
		if !attacker.GrabPartner.IsZero() || !defender.GrabPartner.IsZero() {
			continue
		}
		grabbed[g.defender] = true
		m.startGrab(g.attacker, attacker, g.defender, defender)
	}
}

func (m *Match) applyHit(c hitCandidate, views map[arena.Handle]preView, inputs core.InputSet) {
	attacker := m.fighters.Get(c.attacker)
	defender := m.fighters.Get(c.defender)
	if attacker == nil || defender == nil {
		return
	}
	if c.source.IsZero() {
		attacker.recordHit(c.defender)
	} else {
		m.projectiles.Remove(c.source)
	}

	av, dv := views[c.attacker], views[c.defender]

	// Shields absorb the hit no matter which box geometry touched first.
	if dv.shielding && !c.trade {
		m.applyShieldHit(c, attacker, defender)
		return
	}

	kb := (c.payload.BaseKB + c.payload.KBGrowth*dv.damage) * weightScale(dv.weight)
	if c.trade {
		kb *= m.cfg.Knockback.TradeScale
	}

	angle := c.payload.Angle
	if angle == framedata.SakuraiAngle {
		if kb < m.cfg.Knockback.SakuraiThreshold {
			angle = 0
		} else {
			angle = m.cfg.Knockback.SakuraiAngle
		}
	}

	// Launch away from the hit's origin, the attacker for melee and the
	// projectile itself otherwise; a dead-center overlap follows the
	// attacker's facing.
	sign := 1.0
	switch {
	case dv.posX < c.originX:
		sign = -1
	case dv.posX == c.originX && !av.faceRight:
		sign = -1
	}

	// DI: the defender's stick component perpendicular to the launch
	// direction bends the trajectory within the configured bound.
	rad := angle * math.Pi / 180
	if sign < 0 {
		rad = math.Pi - rad
	}
	dir := core.Vec3{X: math.Cos(rad), Y: math.Sin(rad)}
	perp := core.Vec3{X: -dir.Y, Y: dir.X}
	in := inputs.Port(defender.Port)
	di := core.ClampF(in.StickX*perp.X+in.StickY*perp.Y, -1, 1)
	rad += di * m.cfg.Knockback.MaxDIDegrees * math.Pi / 180

	speed := kb * m.cfg.Knockback.UnitsPerKB
	launch := core.Vec3{X: math.Cos(rad) * speed, Y: math.Sin(rad) * speed}

	hpkb := c.payload.HitstunPerKB
	if hpkb == 0 {
		hpkb = m.cfg.Knockback.HitstunPerKB
	}
	hitstun := int(math.Round(kb * hpkb))

	defender.Damage += c.payload.Damage
	defender.Vel = launch
	defender.HitstunLeft = hitstun
	defender.DropThrough = false
	if launch.Y > 0 {
		defender.Grounded = false
	}
	m.breakGrabInvolving(c.defender, defender)
	defender.transition(framedata.ActionHitstun)

	kind := HitLanded
	if c.trade {
		kind = HitTraded
	}
	m.events = append(m.events, HitEvent{
		Kind:     kind,
		Attacker: c.attacker,
		Defender: c.defender,
		Damage:   c.payload.Damage,
		Launch:   launch,
		Hitstun:  hitstun,
	})
}

func (m *Match) applyShieldHit(c hitCandidate, attacker, defender *Fighter) {
	drain := c.payload.Damage + c.payload.ShieldDamage
	defender.Shield -= drain

	ev := HitEvent{
		Kind:     HitShielded,
		Attacker: c.attacker,
		Defender: c.defender,
		Damage:   drain,
	}
	if defender.Shield <= 0 {
		defender.Shield = 0
		defender.Vel = core.Vec3{Y: 3}
		defender.Grounded = false
		defender.transition(framedata.ActionShieldBreak)
		ev.Kind = ShieldBroken
	}
	m.events = append(m.events, ev)
}

func (m *Match) startGrab(ah arena.Handle, attacker *Fighter, dh arena.Handle, defender *Fighter) {
	attacker.GrabPartner = dh
	defender.GrabPartner = ah
	attacker.transition(framedata.ActionGrabHold)
	defender.transition(framedata.ActionGrabbed)
	defender.Vel = core.Vec3{}
	attacker.Vel = core.Vec3{}
	defender.DropThrough = false
	attacker.DropThrough = false

	hold := m.table.Character(attacker.Character).Action(framedata.ActionGrabHold)
	attacker.GrabTicksLeft = hold.Duration()
	defender.GrabTicksLeft = hold.Duration()

	m.events = append(m.events, HitEvent{
		Kind:     GrabStarted,
		Attacker: ah,
		Defender: dh,
	})
}

// breakGrabInvolving severs a grab pair when one party is struck or leaves.
func (m *Match) breakGrabInvolving(h arena.Handle, f *Fighter) {
	if f.GrabPartner.IsZero() {
		return
	}
	if partner := m.fighters.Get(f.GrabPartner); partner != nil && partner.GrabPartner == h {
		partner.GrabPartner = arena.Handle{}
		partner.GrabTicksLeft = 0
		if partner.Action == framedata.ActionGrabHold || partner.Action == framedata.ActionGrabbed {
			if partner.Grounded {
				partner.transition(framedata.ActionStand)
			} else {
				partner.transition(framedata.ActionFall)
			}
		}
	}
	f.GrabPartner = arena.Handle{}
	f.GrabTicksLeft = 0
}
