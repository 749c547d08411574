package sim

import (
	"github.com/vovakirdan/tui-brawler/internal/arena"
	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
)

// Fighter is the complete per-fighter simulation state. Everything here is
// plain value data so snapshots are simple copies.
type Fighter struct {
	Character string
	Port      int
	Team      int

	Action      framedata.ActionID
	ActionFrame int

	Pos      core.Vec3
	Vel      core.Vec3
	Grounded bool

	FaceRight bool
	Damage    float64
	Shield    float64
	Stocks    int

	AirJumpsLeft int

	// Countdown timers, in ticks.
	HitstunLeft    int
	IntangibleLeft int
	GrabTicksLeft  int

	GrabPartner arena.Handle // set while grabbing or being grabbed
	LedgeIndex  int          // held ledge, -1 when none
	LedgeLock   int          // ticks until the next ledge grab is allowed

	DropThrough bool // holding down through a pass-through platform

	// Defenders already struck by the current action. Cleared on every
	// action transition so one swing never re-hits the same target.
	hitList []arena.Handle
}

// Airborne reports whether the fighter is off the ground.
func (f *Fighter) Airborne() bool {
	return !f.Grounded
}

// Intangible reports whether incoming hits and grabs pass through.
func (f *Fighter) Intangible() bool {
	return f.IntangibleLeft > 0
}

// Shielding reports whether the fighter's shield absorbs hits this frame.
func (f *Fighter) Shielding() bool {
	return f.Action == framedata.ActionShield && f.Shield > 0
}

// KO reports whether the fighter is out of the match.
func (f *Fighter) KO() bool {
	return f.Action == framedata.ActionKO
}

// HasHit reports whether the current action already struck the target.
func (f *Fighter) HasHit(target arena.Handle) bool {
	for _, h := range f.hitList {
		if h == target {
			return true
		}
	}
	return false
}

func (f *Fighter) recordHit(target arena.Handle) {
	f.hitList = append(f.hitList, target)
}

// transition switches the fighter to a new action, resetting the frame
// counter and the per-action hit list.
func (f *Fighter) transition(to framedata.ActionID) {
	f.Action = to
	f.ActionFrame = 0
	f.hitList = f.hitList[:0]
}
