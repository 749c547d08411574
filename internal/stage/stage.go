// Package stage defines the static arenas a match is fought on: platform
// surfaces, grabbable ledges, blast-zone bounds and spawn points. Stages are
// loaded before a match starts and never change during one.
package stage

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-brawler/internal/core"
)

// Platform is one horizontal surface. Fighters stand on its top edge.
// A pass-through platform only collides when crossed from above and can be
// dropped through; the main ground is not pass-through and carries ledges.
type Platform struct {
	MinX, MaxX  float64
	Y           float64 // top surface height
	PassThrough bool
}

// Contains reports whether x lies within the platform's horizontal span.
func (p Platform) Contains(x float64) bool {
	return x >= p.MinX && x <= p.MaxX
}

// Ledge is a grabbable stage edge. FaceRight is the facing of a fighter
// hanging from it, which always points in toward the stage.
type Ledge struct {
	Pos       core.Vec3
	FaceRight bool
}

// Definition is a fully validated stage.
type Definition struct {
	Name      string
	Platforms []Platform
	Ledges    []Ledge
	Blast     core.Rect   // leaving this rect is a KO
	Spawns    []core.Vec3 // initial positions, assigned in port order
	Respawn   core.Vec3   // where KO'd fighters re-enter
}

// Landing returns the height of the surface a fighter's feet crossed while
// moving from fromY down to toY at horizontal position x. Pass-through
// platforms are skipped when dropThrough is set. The boolean reports whether
// any surface was crossed; when several were, the highest one wins.
func (d *Definition) Landing(x, fromY, toY float64, dropThrough bool) (float64, bool) {
	if toY >= fromY {
		return 0, false
	}
	best := 0.0
	found := false
	for _, p := range d.Platforms {
		if !p.Contains(x) {
			continue
		}
		if p.PassThrough && dropThrough {
			continue
		}
		if p.Y > fromY || p.Y < toY {
			continue
		}
		if !found || p.Y > best {
			best = p.Y
			found = true
		}
	}
	return best, found
}

// GroundAt returns the platform top at (x, y) if the point stands on one,
// within a small tolerance. Used to re-check footing when walking off an
// edge.
func (d *Definition) GroundAt(x, y float64) (float64, bool) {
	const tol = 1e-6
	for _, p := range d.Platforms {
		if p.Contains(x) && y >= p.Y-tol && y <= p.Y+tol {
			return p.Y, true
		}
	}
	return 0, false
}

// OnPassThrough reports whether the surface underfoot at (x, y) is a
// pass-through platform the fighter could drop through.
func (d *Definition) OnPassThrough(x, y float64) bool {
	const tol = 1e-6
	for _, p := range d.Platforms {
		if p.Contains(x) && y >= p.Y-tol && y <= p.Y+tol {
			return p.PassThrough
		}
	}
	return false
}

// InBounds reports whether a point is inside the blast zone.
func (d *Definition) InBounds(pos core.Vec3) bool {
	return d.Blast.Contains(pos.X, pos.Y)
}

// Spawn returns the spawn point for the given port, cycling when there are
// more fighters than authored spawns.
func (d *Definition) Spawn(port int) core.Vec3 {
	if len(d.Spawns) == 0 {
		return core.Vec3{}
	}
	return d.Spawns[port%len(d.Spawns)]
}

func (d *Definition) validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("stage: %s: %s", d.Name, fmt.Sprintf(format, args...))
	}
	if d.Name == "" {
		return fmt.Errorf("stage: missing name")
	}
	if len(d.Platforms) == 0 {
		return fail("no platforms")
	}
	grounded := false
	for i, p := range d.Platforms {
		if p.MinX >= p.MaxX {
			return fail("platform %d has inverted span [%v, %v]", i, p.MinX, p.MaxX)
		}
		if !d.Blast.Contains(p.MinX, p.Y) || !d.Blast.Contains(p.MaxX, p.Y) {
			return fail("platform %d extends outside the blast zone", i)
		}
		if !p.PassThrough {
			grounded = true
		}
	}
	if !grounded {
		return fail("no solid ground, every platform is pass-through")
	}
	if len(d.Spawns) == 0 {
		return fail("no spawn points")
	}
	for i, s := range d.Spawns {
		if !d.Blast.Contains(s.X, s.Y) {
			return fail("spawn %d outside the blast zone", i)
		}
	}
	if !d.Blast.Contains(d.Respawn.X, d.Respawn.Y) {
		return fail("respawn point outside the blast zone")
	}
	for i, l := range d.Ledges {
		if !d.Blast.Contains(l.Pos.X, l.Pos.Y) {
			return fail("ledge %d outside the blast zone", i)
		}
	}
	return nil
}

// Catalog is an immutable set of loaded stages.
type Catalog struct {
	stages map[string]*Definition
}

// NewCatalog builds a catalog, validating every definition.
func NewCatalog(defs ...*Definition) (*Catalog, error) {
	c := &Catalog{stages: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.stages[d.Name]; dup {
			return nil, fmt.Errorf("stage: duplicate stage name %q", d.Name)
		}
		c.stages[d.Name] = d
	}
	return c, nil
}

// Stage returns the named stage, or nil.
func (c *Catalog) Stage(name string) *Definition {
	return c.stages[name]
}

// Stages returns all stage names in sorted order.
func (c *Catalog) Stages() []string {
	out := make([]string, 0, len(c.stages))
	for name := range c.stages {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
