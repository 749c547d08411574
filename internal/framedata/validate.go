package framedata

import "fmt"

// LoadError describes malformed or incomplete authored data. Any LoadError
// is fatal at load time: a match never starts with a character that fails
// validation.
type LoadError struct {
	Character string
	Action    string
	Frame     int // -1 when not frame-specific
	Reason    string
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	switch {
	case e.Action == "":
		return fmt.Sprintf("framedata: character %q: %s", e.Character, e.Reason)
	case e.Frame < 0:
		return fmt.Sprintf("framedata: character %q action %s: %s", e.Character, e.Action, e.Reason)
	default:
		return fmt.Sprintf("framedata: character %q action %s frame %d: %s",
			e.Character, e.Action, e.Frame, e.Reason)
	}
}

// requiredActions is the set the state machine can reach from stand, either
// by input, by auto-transition, or forced by hit resolution and physics.
// Every one of them must be fully authored. Since forced transitions (being
// hit, grabbed, broken, knocked off stage) can land a fighter in any of
// them from stand, the reachable set is the whole closed action set.
var requiredActions = AllActions()

func validateCharacter(c *CharacterDef) error {
	fail := func(action string, frame int, format string, args ...any) error {
		return &LoadError{Character: c.Name, Action: action, Frame: frame, Reason: fmt.Sprintf(format, args...)}
	}

	if c.Name == "" {
		return &LoadError{Character: "?", Frame: -1, Reason: "missing character name"}
	}
	if c.Weight <= 0 {
		return fail("", -1, "weight must be positive, got %v", c.Weight)
	}
	if c.Gravity <= 0 {
		return fail("", -1, "gravity must be positive, got %v", c.Gravity)
	}
	if c.MaxFallSpeed <= 0 {
		return fail("", -1, "max fall speed must be positive, got %v", c.MaxFallSpeed)
	}
	if c.ShieldHP <= 0 {
		return fail("", -1, "shield hp must be positive, got %v", c.ShieldHP)
	}
	if c.ECB.Top <= 0 || c.ECB.Left <= 0 || c.ECB.Right <= 0 {
		return fail("", -1, "ecb extents must be positive")
	}
	if len(c.Skeleton) == 0 {
		return fail("", -1, "skeleton must have at least one bone")
	}
	for i, b := range c.Skeleton {
		if b.Parent >= i || b.Parent < -1 {
			return fail("", -1, "bone %d (%s) has invalid parent %d; parents must precede children", i, b.Name, b.Parent)
		}
	}

	for _, id := range requiredActions {
		a := c.Actions[id]
		if a == nil {
			return fail(id.String(), -1, "action reachable from stand is missing")
		}
		if len(a.Frames) == 0 {
			return fail(id.String(), -1, "action has no frames")
		}
		if c.Actions[a.Next] == nil {
			return fail(id.String(), -1, "auto-transition target %s is not authored", a.Next)
		}
		for fi := range a.Frames {
			if err := validateFrame(c, id, fi, &a.Frames[fi], fail); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateFrame(c *CharacterDef, id ActionID, fi int, f *FrameRecord,
	fail func(string, int, string, ...any) error) error {

	for bi, box := range f.Boxes {
		if box.Bone < 0 || box.Bone >= len(c.Skeleton) {
			return fail(id.String(), fi, "box %d references bone %d, skeleton has %d bones", bi, box.Bone, len(c.Skeleton))
		}
		if box.Radius <= 0 {
			return fail(id.String(), fi, "box %d has non-positive radius %v", bi, box.Radius)
		}
		if box.Kind == Hitbox && box.Hit == nil {
			return fail(id.String(), fi, "box %d is a hitbox without a hit payload", bi)
		}
		if box.Kind != Hitbox && box.Hit != nil {
			return fail(id.String(), fi, "box %d is a %s carrying a hit payload", bi, box.Kind)
		}
		if box.Hit != nil && box.Hit.Damage < 0 {
			return fail(id.String(), fi, "box %d has negative damage", bi)
		}
	}
	if sp := f.Spawn; sp != nil {
		if sp.Lifetime <= 0 {
			return fail(id.String(), fi, "spawn has non-positive lifetime %d", sp.Lifetime)
		}
		if sp.Radius <= 0 {
			return fail(id.String(), fi, "spawn has non-positive radius %v", sp.Radius)
		}
		if sp.Hit.Damage < 0 {
			return fail(id.String(), fi, "spawn has negative damage")
		}
	}
	for bone := range f.Pose {
		if bone < 0 || bone >= len(c.Skeleton) {
			return fail(id.String(), fi, "pose references bone %d, skeleton has %d bones", bone, len(c.Skeleton))
		}
	}
	return nil
}
