package framedata

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tui-brawler/internal/core"
)

// testDef builds a minimal character that passes validation: every action
// authored as a one-frame self-loop with a hurtbox on the root bone.
func testDef(name string) *CharacterDef {
	c := &CharacterDef{
		Name:         name,
		Weight:       1,
		Gravity:      0.5,
		MaxFallSpeed: 10,
		ShieldHP:     50,
		ECB:          ECB{Left: 3, Right: 3, Top: 12, Bottom: 0},
		Skeleton:     []Bone{{Name: "root", Parent: -1}},
		Actions:      make(map[ActionID]*ActionDef),
	}
	for _, id := range AllActions() {
		c.Actions[id] = &ActionDef{
			ID:   id,
			Next: id,
			Frames: []FrameRecord{{
				Boxes: []BoxDef{{Kind: Hurtbox, Bone: 0, Radius: 3}},
			}},
		}
	}
	return c
}

func TestValidateAccepts(t *testing.T) {
	if _, err := NewTable(testDef("ok")); err != nil {
		t.Fatalf("NewTable() rejected a valid character: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		corrupt func(*CharacterDef)
		want  string
	}{
		{
			name:  "missing action",
			corrupt: func(c *CharacterDef) { delete(c.Actions, ActionHitstun) },
			want:  "missing",
		},
		{
			name:  "empty action",
			corrupt: func(c *CharacterDef) { c.Actions[ActionFall].Frames = nil },
			want:  "no frames",
		},
		{
			name:  "zero weight",
			corrupt: func(c *CharacterDef) { c.Weight = 0 },
			want:  "weight",
		},
		{
			name:  "zero gravity",
			corrupt: func(c *CharacterDef) { c.Gravity = 0 },
			want:  "gravity",
		},
		{
			name:  "degenerate ecb",
			corrupt: func(c *CharacterDef) { c.ECB.Top = 0 },
			want:  "ecb",
		},
		{
			name: "bone parent after child",
			corrupt: func(c *CharacterDef) {
				c.Skeleton = []Bone{{Name: "a", Parent: 1}, {Name: "b", Parent: -1}}
			},
			want: "parent",
		},
		{
			name: "box on missing bone",
			corrupt: func(c *CharacterDef) {
				c.Actions[ActionStand].Frames[0].Boxes[0].Bone = 5
			},
			want: "bone",
		},
		{
			name: "hitbox without payload",
			corrupt: func(c *CharacterDef) {
				c.Actions[ActionAttackJab].Frames[0].Boxes = []BoxDef{
					{Kind: Hitbox, Bone: 0, Radius: 2},
				}
			},
			want: "without a hit payload",
		},
		{
			name: "hurtbox with payload",
			corrupt: func(c *CharacterDef) {
				c.Actions[ActionStand].Frames[0].Boxes[0].Hit = &HitPayload{Damage: 5}
			},
			want: "carrying a hit payload",
		},
		{
			name: "negative damage",
			corrupt: func(c *CharacterDef) {
				c.Actions[ActionAttackJab].Frames[0].Boxes = []BoxDef{
					{Kind: Hitbox, Bone: 0, Radius: 2, Hit: &HitPayload{Damage: -1}},
				}
			},
			want: "negative damage",
		},
		{
			name: "pose on missing bone",
			corrupt: func(c *CharacterDef) {
				c.Actions[ActionWalk].Frames[0].Pose = map[int]core.Vec3{3: {}}
			},
			want: "bone",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := testDef("broken")
			tc.corrupt(def)
			_, err := NewTable(def)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			le, ok := err.(*LoadError)
			if !ok {
				t.Fatalf("error type %T, expected *LoadError", err)
			}
			if !strings.Contains(le.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", le, tc.want)
			}
		})
	}
}

func TestDuplicateCharacterName(t *testing.T) {
	_, err := NewTable(testDef("twin"), testDef("twin"))
	if err == nil {
		t.Fatalf("expected duplicate to be rejected")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error %q does not mention duplicate", err)
	}
}
