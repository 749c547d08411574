// Package sim implements the deterministic fixed-timestep match core: the
// per-fighter action state machine, stage physics over ECB silhouettes,
// frame-indexed collision detection and hit resolution, and the driver that
// runs them in a fixed pipeline each tick.
package sim

import (
	"github.com/vovakirdan/tui-brawler/internal/arena"
	"github.com/vovakirdan/tui-brawler/internal/core"
)

// HitKind classifies a resolved collision event.
type HitKind uint8

const (
	HitLanded HitKind = iota
	HitTraded
	HitShielded
	ShieldBroken
	GrabStarted
)

// String returns a short name for the kind.
func (k HitKind) String() string {
	switch k {
	case HitLanded:
		return "hit"
	case HitTraded:
		return "trade"
	case HitShielded:
		return "shielded"
	case ShieldBroken:
		return "shield_break"
	case GrabStarted:
		return "grab"
	default:
		return "unknown"
	}
}

// HitEvent is the ephemeral record of one resolved hit. Events live in
// exactly one published snapshot and are never persisted by the core.
type HitEvent struct {
	Kind     HitKind
	Attacker arena.Handle
	Defender arena.Handle
	Damage   float64
	Launch   core.Vec3
	Hitstun  int
}

// StockEvent is emitted when a fighter crosses the blast zone.
type StockEvent struct {
	Fighter    arena.Handle
	Port       int
	StocksLeft int
}
