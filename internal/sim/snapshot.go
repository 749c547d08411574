package sim

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/vovakirdan/tui-brawler/internal/arena"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
)

// BoxState is one active collision box in world space, published for debug
// visualization.
type BoxState struct {
	Kind   framedata.BoxKind
	P1, P2 core.Vec3
	Radius float64
}

// FighterState is the published view of one fighter.
type FighterState struct {
	Handle    arena.Handle
	Character string
	Port      int
	Team      int

	Action      framedata.ActionID
	ActionFrame int

	Pos       core.Vec3
	Vel       core.Vec3
	FaceRight bool
	Grounded  bool

	Damage     float64
	Shield     float64
	Stocks     int
	Intangible bool
	Hitstun    int

	Bones []core.Vec3
	Boxes []BoxState
}

// ProjectileState is the published view of one live projectile.
type ProjectileState struct {
	Handle arena.Handle
	Owner  arena.Handle
	Port   int
	Team   int

	Pos core.Vec3
	Vel core.Vec3

	TicksLeft int
	Radius    float64
}

// Snapshot is the immutable per-tick scene published for rendering and
// spectating. The simulation never reads it back; consumers never write it.
type Snapshot struct {
	Tick        int
	Fighters    []FighterState // port order
	Projectiles []ProjectileState
	Events      []HitEvent
	Stocks      []StockEvent
	Finished    bool
	Winner      int
}

// Fighter returns the state for the given port, or nil.
func (s *Snapshot) Fighter(port int) *FighterState {
	if port < 0 || port >= len(s.Fighters) {
		return nil
	}
	return &s.Fighters[port]
}

// Digest hashes the committed simulation state: everything that feeds the
// next tick, nothing derived. Two runs are bit-identical iff their digests
// agree every tick.
func (s *Snapshot) Digest() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	u64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	f64 := func(v float64) { u64(math.Float64bits(v)) }
	b := func(v bool) {
		if v {
			u64(1)
		} else {
			u64(0)
		}
	}

	u64(uint64(s.Tick))
	for i := range s.Fighters {
		f := &s.Fighters[i]
		u64(uint64(f.Handle.Index)<<32 | uint64(f.Handle.Gen))
		u64(uint64(f.Action))
		u64(uint64(f.ActionFrame))
		f64(f.Pos.X)
		f64(f.Pos.Y)
		f64(f.Pos.Z)
		f64(f.Vel.X)
		f64(f.Vel.Y)
		f64(f.Vel.Z)
		f64(f.Damage)
		f64(f.Shield)
		u64(uint64(f.Stocks))
		u64(uint64(f.Hitstun))
		b(f.FaceRight)
		b(f.Grounded)
		b(f.Intangible)
	}
	for i := range s.Projectiles {
		p := &s.Projectiles[i]
		u64(uint64(p.Handle.Index)<<32 | uint64(p.Handle.Gen))
		u64(uint64(p.TicksLeft))
		f64(p.Pos.X)
		f64(p.Pos.Y)
		f64(p.Vel.X)
		f64(p.Vel.Y)
	}
	return h.Sum64()
}

func (m *Match) buildSnapshot() *Snapshot {
	snap := &Snapshot{
		Tick:     m.tick,
		Fighters: make([]FighterState, 0, len(m.handles)),
		Events:   append([]HitEvent(nil), m.events...),
		Stocks:   append([]StockEvent(nil), m.stockEvents...),
		Finished: m.finished,
		Winner:   m.winner,
	}
	for _, h := range m.handles {
		f := m.fighters.Get(h)
		fs := FighterState{
			Handle:      h,
			Character:   f.Character,
			Port:        f.Port,
			Team:        f.Team,
			Action:      f.Action,
			ActionFrame: f.ActionFrame,
			Pos:         f.Pos,
			Vel:         f.Vel,
			FaceRight:   f.FaceRight,
			Grounded:    f.Grounded,
			Damage:      f.Damage,
			Shield:      f.Shield,
			Stocks:      f.Stocks,
			Intangible:  f.Intangible(),
			Hitstun:     f.HitstunLeft,
		}
		def := m.table.Character(f.Character)
		if rec, err := m.table.Lookup(f.Character, f.Action, f.ActionFrame); err == nil {
			fs.Bones = def.BonePositions(f.Pos, f.FaceRight, rec.Pose)
			for i := range rec.Boxes {
				bx := &rec.Boxes[i]
				fs.Boxes = append(fs.Boxes, BoxState{
					Kind:   bx.Kind,
					P1:     framedata.WorldPoint(fs.Bones, bx.Bone, bx.P1, f.FaceRight),
					P2:     framedata.WorldPoint(fs.Bones, bx.Bone, bx.P2, f.FaceRight),
					Radius: bx.Radius,
				})
			}
		}
		snap.Fighters = append(snap.Fighters, fs)
	}
	for _, ph := range m.projHandles {
		p := m.projectiles.Get(ph)
		if p == nil {
			continue
		}
		snap.Projectiles = append(snap.Projectiles, ProjectileState{
			Handle:    ph,
			Owner:     p.Owner,
			Port:      p.Port,
			Team:      p.Team,
			Pos:       p.Pos,
			Vel:       p.Vel,
			TicksLeft: p.TicksLeft,
			Radius:    p.Radius,
		})
	}
	return snap
}
