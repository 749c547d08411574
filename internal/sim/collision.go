package sim

import (
	"github.com/vovakirdan/tui-brawler/internal/arena"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
)

// WorldBox is a collision box resolved to world space for one frame: the
// authored bone-local capsule mapped through the fighter's skeletal pose
// and facing.
type WorldBox struct {
	Owner      arena.Handle
	Source     arena.Handle // projectile that carries this box; zero for fighter boxes
	Team       int
	Kind       framedata.BoxKind
	P1, P2     core.Vec3
	Radius     float64
	Hit        *framedata.HitPayload
	Intangible bool // owner state, captured at resolve time
	Shielding  bool
}

// Overlap is one detected box pair. The pair is unordered; A always belongs
// to the lower owner handle so every overlap is reported exactly once.
type Overlap struct {
	A, B *WorldBox
}

// resolveBoxes maps the frame record's boxes to world space for a fighter.
func resolveBoxes(h arena.Handle, f *Fighter, def *framedata.CharacterDef, rec *framedata.FrameRecord) []WorldBox {
	if len(rec.Boxes) == 0 {
		return nil
	}
	bones := def.BonePositions(f.Pos, f.FaceRight, rec.Pose)
	out := make([]WorldBox, 0, len(rec.Boxes))
	for i := range rec.Boxes {
		b := &rec.Boxes[i]
		out = append(out, WorldBox{
			Owner:      h,
			Team:       f.Team,
			Kind:       b.Kind,
			P1:         framedata.WorldPoint(bones, b.Bone, b.P1, f.FaceRight),
			P2:         framedata.WorldPoint(bones, b.Bone, b.P2, f.FaceRight),
			Radius:     b.Radius,
			Hit:        b.Hit,
			Intangible: f.Intangible(),
			Shielding:  f.Shielding(),
		})
	}
	return out
}

// projectileBox maps a live projectile to its world-space hitbox. Ownership
// stays with the firing fighter, so a projectile never tests against its
// own fighter or team.
func projectileBox(ph arena.Handle, p *Projectile) WorldBox {
	return WorldBox{
		Owner:  p.Owner,
		Source: ph,
		Team:   p.Team,
		Kind:   framedata.Hitbox,
		P1:     p.Pos,
		P2:     p.Pos,
		Radius: p.Radius,
		Hit:    &p.Hit,
	}
}

// boxesOverlap is the exact, symmetric capsule/sphere proximity test.
func boxesOverlap(a, b *WorldBox) bool {
	return core.SegmentDistance(a.P1, a.P2, b.P1, b.P2) <= a.Radius+b.Radius
}

// compatible applies the semantic filter: which box kinds are worth testing
// against each other at all. Cross-entity and cross-team only.
func compatible(a, b *WorldBox) bool {
	if a.Owner == b.Owner || a.Team == b.Team {
		return false
	}
	switch {
	case a.Kind == framedata.Hitbox:
		switch b.Kind {
		case framedata.Hitbox:
			return true
		case framedata.Hurtbox:
			return !b.Intangible
		case framedata.Shieldbox:
			return b.Shielding
		}
	case a.Kind == framedata.Grabbox:
		return b.Kind == framedata.Hurtbox && !b.Intangible
	}
	return false
}

// detectOverlaps reports every semantically relevant overlapping pair, each
// exactly once, in a deterministic order (box list order, which follows
// ascending owner handles).
func detectOverlaps(boxes []WorldBox) []Overlap {
	var out []Overlap
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			a, b := &boxes[i], &boxes[j]
			if !compatible(a, b) && !compatible(b, a) {
				continue
			}
			if !boxesOverlap(a, b) {
				continue
			}
			if b.Owner.Less(a.Owner) {
				a, b = b, a
			}
			out = append(out, Overlap{A: a, B: b})
		}
	}
	return out
}
