package tui

import (
	"math/rand"

	"github.com/vovakirdan/tui-brawler/internal/config"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/sim"
	"github.com/vovakirdan/tui-brawler/internal/stage"
)

// CPU is a snapshot-driven input provider for one port. It re-decides every
// ReactionTicks and holds its plan in between, so its inputs go through the
// same per-tick InputSnapshot path as a human player. Seeded, so a recorded
// match against it replays identically.
type CPU struct {
	cfg    config.CPUConfig
	st     *stage.Definition
	rng    *rand.Rand
	port   int
	target int

	cooldown int
	planHeld core.Buttons
	planX    float64
	planY    float64
}

// NewCPU creates a CPU driving the given port against the target port.
func NewCPU(cfg config.CPUConfig, st *stage.Definition, port, target int, seed int64) *CPU {
	if cfg.ReactionTicks < 1 {
		cfg.ReactionTicks = 1
	}
	return &CPU{
		cfg:    cfg,
		st:     st,
		rng:    rand.New(rand.NewSource(seed)),
		port:   port,
		target: target,
	}
}

// Input produces the CPU's input for the next tick. prev is last tick's
// input for the CPU's port.
func (c *CPU) Input(snap *sim.Snapshot, prev core.InputSnapshot) core.InputSnapshot {
	if c.cooldown > 0 {
		c.cooldown--
		return prev.NextFrom(c.planHeld, c.planX, c.planY)
	}
	c.cooldown = c.cfg.ReactionTicks - 1

	c.planHeld = 0
	c.planX, c.planY = 0, 0

	me := snap.Fighter(c.port)
	op := snap.Fighter(c.target)
	if me == nil || me.Stocks <= 0 {
		return prev.NextFrom(0, 0, 0)
	}

	if c.offStage(me) {
		c.recover(me)
		return prev.NextFrom(c.planHeld, c.planX, c.planY)
	}

	if op == nil || op.Stocks <= 0 {
		return prev.NextFrom(0, 0, 0)
	}

	dx := op.Pos.X - me.Pos.X
	switch {
	case dx < -1:
		c.planX = -1
	case dx > 1:
		c.planX = 1
	}

	inRange := dx >= -c.cfg.AttackRange && dx <= c.cfg.AttackRange
	if inRange {
		roll := c.rng.Float64()
		switch {
		case roll < c.cfg.Aggression:
			c.planHeld = c.planHeld.With(core.ButtonAttack)
			c.planX = 0
		case roll < c.cfg.Aggression+0.2:
			c.planHeld = c.planHeld.With(core.ButtonShield)
			c.planX = 0
		}
	}

	return prev.NextFrom(c.planHeld, c.planX, c.planY)
}

// offStage reports whether the fighter is past the main ground's edges.
func (c *CPU) offStage(me *sim.FighterState) bool {
	for _, p := range c.st.Platforms {
		if p.PassThrough {
			continue
		}
		if me.Pos.X >= p.MinX && me.Pos.X <= p.MaxX {
			return false
		}
	}
	return true
}

// recover steers back toward the stage center, jumping while falling.
func (c *CPU) recover(me *sim.FighterState) {
	if me.Pos.X < 0 {
		c.planX = 1
	} else {
		c.planX = -1
	}
	if !me.Grounded && me.Vel.Y < 0 {
		c.planHeld = c.planHeld.With(core.ButtonJump)
		c.planY = 1
	}
}
