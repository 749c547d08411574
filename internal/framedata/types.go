// Package framedata holds the authored, per-character combat catalog: for
// every action and every frame, which collision boxes are active, which
// transitions are legal, and which movement modifiers apply. Tables are
// loaded before a match starts and are never mutated by the simulation.
package framedata

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-brawler/internal/core"
)

// ActionID enumerates the closed set of fighter actions. Every character
// shares the same set; character differences are expressed as data, never as
// per-character code.
type ActionID uint8

const (
	ActionStand ActionID = iota
	ActionWalk
	ActionJumpSquat
	ActionJump
	ActionAirJump
	ActionFall
	ActionLand
	ActionAttackJab
	ActionAttackTilt
	ActionAttackAir
	ActionShield
	ActionShieldBreak
	ActionHitstun
	ActionGrab
	ActionGrabHold
	ActionGrabbed
	ActionLedgeHang
	ActionLedgeClimb
	ActionRespawn
	ActionKO

	actionCount
)

var actionNames = [actionCount]string{
	ActionStand:       "stand",
	ActionWalk:        "walk",
	ActionJumpSquat:   "jump_squat",
	ActionJump:        "jump",
	ActionAirJump:     "air_jump",
	ActionFall:        "fall",
	ActionLand:        "land",
	ActionAttackJab:   "attack_jab",
	ActionAttackTilt:  "attack_tilt",
	ActionAttackAir:   "attack_air",
	ActionShield:      "shield",
	ActionShieldBreak: "shield_break",
	ActionHitstun:     "hitstun",
	ActionGrab:        "grab",
	ActionGrabHold:    "grab_hold",
	ActionGrabbed:     "grabbed",
	ActionLedgeHang:   "ledge_hang",
	ActionLedgeClimb:  "ledge_climb",
	ActionRespawn:     "respawn",
	ActionKO:          "ko",
}

// String returns the canonical (file format) name of the action.
func (a ActionID) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// ParseActionID maps a file-format action name back to its ActionID.
func ParseActionID(name string) (ActionID, error) {
	for id, n := range actionNames {
		if n == name {
			return ActionID(id), nil
		}
	}
	return 0, fmt.Errorf("framedata: unknown action %q", name)
}

// AllActions returns every ActionID in declaration order.
func AllActions() []ActionID {
	out := make([]ActionID, actionCount)
	for i := range out {
		out[i] = ActionID(i)
	}
	return out
}

// BoxKind classifies a collision box.
type BoxKind uint8

const (
	Hurtbox   BoxKind = iota // can receive incoming hits
	Hitbox                   // active attack volume
	Grabbox                  // initiates a grab instead of a hit
	Shieldbox                // absorbs hits into shield integrity
	Ledgebox                 // extends ledge-grab reach while airborne
	Telegraph                // cosmetic only, never collides
)

var boxKindNames = map[BoxKind]string{
	Hurtbox:   "hurtbox",
	Hitbox:    "hitbox",
	Grabbox:   "grabbox",
	Shieldbox: "shieldbox",
	Ledgebox:  "ledgebox",
	Telegraph: "telegraph",
}

// String returns the canonical name of the box kind.
func (k BoxKind) String() string {
	if n, ok := boxKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("boxkind(%d)", uint8(k))
}

// ParseBoxKind maps a file-format kind name back to its BoxKind.
func ParseBoxKind(name string) (BoxKind, error) {
	for k, n := range boxKindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("framedata: unknown box kind %q", name)
}

// SakuraiAngle is the sentinel launch angle: it resolves to a shallow or
// grounded trajectory depending on knockback strength at hit time.
const SakuraiAngle = 361.0

// HitPayload is the damage/knockback data carried by a Hitbox.
type HitPayload struct {
	Damage       float64 // percent added to the defender's accumulator
	BaseKB       float64 // base knockback
	KBGrowth     float64 // knockback growth per point of defender damage
	Angle        float64 // launch angle in degrees; SakuraiAngle is special
	Priority     int     // tie-break between simultaneous hits, higher wins
	HitstunPerKB float64 // hitstun frames per unit of knockback velocity
	ShieldDamage float64 // extra integrity drain when blocked
}

// ProjectileDef is an authored projectile launched on a specific frame of
// an action. The simulation owns the live entity; the definition only says
// where it appears, how it flies and what its hit carries. Offset and speed
// are mirrored by the owner's facing.
type ProjectileDef struct {
	Offset   core.Vec3 // spawn position relative to the owner
	Speed    float64   // horizontal velocity along the facing direction
	Gravity  float64   // per-tick drop; 0 flies straight
	Lifetime int       // ticks before it fizzles
	Radius   float64
	Hit      HitPayload
}

// BoxDef is an authored collision box in bone-local space. A capsule runs
// from P1 to P2 with the given radius; a sphere has P1 == P2.
type BoxDef struct {
	Kind   BoxKind
	Bone   int
	P1, P2 core.Vec3
	Radius float64
	Hit    *HitPayload // non-nil iff Kind == Hitbox
}

// CancelFlags marks which input-driven transitions a frame permits.
type CancelFlags uint8

const (
	CancelJump CancelFlags = 1 << iota
	CancelAttack
	CancelShield
	CancelMove
	CancelGrab

	// CancelAll permits every input transition; the idle loops use it.
	CancelAll = CancelJump | CancelAttack | CancelShield | CancelMove | CancelGrab
)

var cancelNames = map[string]CancelFlags{
	"jump":   CancelJump,
	"attack": CancelAttack,
	"shield": CancelShield,
	"move":   CancelMove,
	"grab":   CancelGrab,
	"all":    CancelAll,
}

// ParseCancel maps a file-format cancel name to its flag.
func ParseCancel(name string) (CancelFlags, error) {
	if f, ok := cancelNames[name]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("framedata: unknown cancel flag %q", name)
}

// Has reports whether all bits of f are set.
func (c CancelFlags) Has(f CancelFlags) bool {
	return c&f == f
}

// ImpulseMode says how a movement impulse combines with current velocity.
type ImpulseMode uint8

const (
	ImpulseAdd ImpulseMode = iota
	ImpulseSet
)

// Impulse is a fixed velocity modifier applied on a specific frame.
type Impulse struct {
	Mode ImpulseMode
	Vel  core.Vec3
}

// FrameRecord is the resolved per-frame data the simulation consumes.
type FrameRecord struct {
	Boxes     []BoxDef
	Cancel    CancelFlags
	Impulse   *Impulse
	Spawn     *ProjectileDef    // projectile fired when this frame is reached
	Pose      map[int]core.Vec3 // per-bone local offset overrides
	NoGravity bool              // gravity suppressed this frame
}

// ActionDef is the full authored definition of one action.
type ActionDef struct {
	ID     ActionID
	Next   ActionID // auto-transition target when the last frame elapses
	Frames []FrameRecord
}

// Duration returns the action length in frames.
func (a *ActionDef) Duration() int {
	return len(a.Frames)
}

// ECB is the environment collision box: a diamond silhouette used only for
// stage and platform collision, independent of hit/hurtboxes.
type ECB struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// Bone is one joint of the simplified skeleton. World positions are derived
// by walking parent chains and mirroring X by facing.
type Bone struct {
	Name   string
	Parent int // -1 for the root
	Offset core.Vec3
}

// CharacterDef is the complete authored definition of one character.
type CharacterDef struct {
	Name            string
	Weight          float64
	Gravity         float64 // downward acceleration per tick
	MaxFallSpeed    float64
	Friction        float64 // ground velocity decay per tick
	WalkSpeed       float64
	AirSpeed        float64
	JumpVelocity    float64
	AirJumpVelocity float64
	AirJumps        int
	ShieldHP        float64
	ECB             ECB
	Skeleton        []Bone
	Actions         map[ActionID]*ActionDef
}

// Action returns the definition for the given action, or nil.
func (c *CharacterDef) Action(id ActionID) *ActionDef {
	return c.Actions[id]
}

// Table is the immutable catalog of all loaded characters. The simulation
// driver swaps whole tables atomically at tick boundaries; individual
// entries never change.
type Table struct {
	chars map[string]*CharacterDef
}

// NewTable builds a table from character definitions. Every definition is
// validated; any violation aborts with a LoadError.
func NewTable(defs ...*CharacterDef) (*Table, error) {
	t := &Table{chars: make(map[string]*CharacterDef, len(defs))}
	for _, def := range defs {
		if err := validateCharacter(def); err != nil {
			return nil, err
		}
		if _, dup := t.chars[def.Name]; dup {
			return nil, &LoadError{Character: def.Name, Reason: "duplicate character name"}
		}
		t.chars[def.Name] = def
	}
	return t, nil
}

// Character returns the definition for the named character, or nil.
func (t *Table) Character(name string) *CharacterDef {
	return t.chars[name]
}

// Characters returns all character names in sorted order.
func (t *Table) Characters() []string {
	out := make([]string, 0, len(t.chars))
	for name := range t.chars {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves (character, action, frame) to its FrameRecord. An unknown
// character or action, or an out-of-range frame index, is an error: the
// caller treats it as malformed data, never as a fallback.
func (t *Table) Lookup(character string, action ActionID, frame int) (*FrameRecord, error) {
	c := t.chars[character]
	if c == nil {
		return nil, fmt.Errorf("framedata: unknown character %q", character)
	}
	a := c.Actions[action]
	if a == nil {
		return nil, fmt.Errorf("framedata: character %q has no action %s", character, action)
	}
	if frame < 0 || frame >= len(a.Frames) {
		return nil, fmt.Errorf("framedata: character %q action %s frame %d out of range [0,%d)",
			character, action, frame, len(a.Frames))
	}
	return &a.Frames[frame], nil
}
