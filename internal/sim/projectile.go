package sim

import (
	"github.com/vovakirdan/tui-brawler/internal/arena"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
)

// Projectile is a live projectile entity. It contributes one hitbox to the
// collision pass each tick, attributed to the fighter that fired it, and is
// consumed by whatever resolves it: a landed hit, a shield, a swatting
// attack, the blast bounds or its own lifetime.
type Projectile struct {
	Owner arena.Handle // firing fighter
	Port  int
	Team  int

	Pos core.Vec3
	Vel core.Vec3

	TicksLeft int
	Gravity   float64
	Radius    float64
	Hit       framedata.HitPayload
}

// stepProjectiles advances every live projectile and culls the expired and
// out-of-bounds ones. Newly fired projectiles collide at their spawn point
// and start moving on the next tick.
func (m *Match) stepProjectiles() {
	kept := m.projHandles[:0]
	for _, ph := range m.projHandles {
		p := m.projectiles.Get(ph)
		if p == nil {
			continue
		}
		p.TicksLeft--
		p.Vel.Y -= p.Gravity
		p.Pos.X += p.Vel.X
		p.Pos.Y += p.Vel.Y
		if p.TicksLeft <= 0 || !m.st.Blast.Contains(p.Pos.X, p.Pos.Y) {
			m.projectiles.Remove(ph)
			continue
		}
		kept = append(kept, ph)
	}
	m.projHandles = kept
}

// spawnProjectiles fires whatever the current frame of each fighter's
// action authors. Spawning follows the action step, so a spawn on frame k
// fires on the tick the fighter reaches frame k.
func (m *Match) spawnProjectiles() error {
	for _, h := range m.handles {
		f := m.fighters.Get(h)
		if f.KO() {
			continue
		}
		rec, err := m.table.Lookup(f.Character, f.Action, f.ActionFrame)
		if err != nil {
			return &SimulationFault{Tick: m.tick, Reason: err.Error()}
		}
		sp := rec.Spawn
		if sp == nil {
			continue
		}
		dir := 1.0
		if !f.FaceRight {
			dir = -1
		}
		ph := m.projectiles.Insert(Projectile{
			Owner:     h,
			Port:      f.Port,
			Team:      f.Team,
			Pos:       core.Vec3{X: f.Pos.X + dir*sp.Offset.X, Y: f.Pos.Y + sp.Offset.Y, Z: f.Pos.Z},
			Vel:       core.Vec3{X: dir * sp.Speed},
			TicksLeft: sp.Lifetime,
			Gravity:   sp.Gravity,
			Radius:    sp.Radius,
			Hit:       sp.Hit,
		})
		m.projHandles = append(m.projHandles, ph)
	}
	return nil
}
