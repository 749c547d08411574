package framedata

import (
	"strings"
	"testing"
)

const miniYAML = `
name: mini
weight: 1.0
gravity: 0.5
max_fall_speed: 10
shield_hp: 50
ecb: [3, 3, 12, 0]
skeleton:
  - { name: root, parent: -1, offset: [0, 0, 0] }
  - { name: arm, parent: 0, offset: [1, 8, 0] }
actions:
  attack_jab:
    duration: 10
    next: stand
    cancel_from: 8
    cancel: [attack]
    boxes:
      - { kind: hurtbox, bone: 0, p1: [0, 6, 0], radius: 3 }
      - kind: hitbox
        bone: 1
        p1: [1, 0, 0]
        p2: [4, 0, 0]
        radius: 2
        frames: [3, 5]
        hit: { damage: 8, base_kb: 6, kb_growth: 0.1, angle: 361, priority: 5 }
    impulses:
      - { frame: 2, mode: set, vel: [1.5, 0, 0] }
`

func TestDecodeYAMLExpandsFrameRanges(t *testing.T) {
	def, err := DecodeCharacterYAML([]byte(miniYAML))
	if err != nil {
		t.Fatalf("DecodeCharacterYAML() error: %v", err)
	}
	jab := def.Action(ActionAttackJab)
	if jab == nil {
		t.Fatalf("attack_jab not decoded")
	}
	if jab.Duration() != 10 {
		t.Fatalf("Duration() = %d, expected 10", jab.Duration())
	}
	if jab.Next != ActionStand {
		t.Errorf("Next = %s, expected stand", jab.Next)
	}

	countHitboxes := func(fi int) int {
		n := 0
		for _, b := range jab.Frames[fi].Boxes {
			if b.Kind == Hitbox {
				n++
			}
		}
		return n
	}
	for _, fi := range []int{0, 2, 6, 9} {
		if countHitboxes(fi) != 0 {
			t.Errorf("frame %d has a hitbox outside its window", fi)
		}
	}
	for fi := 3; fi <= 5; fi++ {
		if countHitboxes(fi) != 1 {
			t.Errorf("frame %d missing its hitbox", fi)
		}
		if len(jab.Frames[fi].Boxes) != 2 {
			t.Errorf("frame %d has %d boxes, expected hurtbox+hitbox", fi, len(jab.Frames[fi].Boxes))
		}
	}

	// Hurtbox with no range covers the whole action.
	if len(jab.Frames[0].Boxes) != 1 || jab.Frames[0].Boxes[0].Kind != Hurtbox {
		t.Errorf("frame 0 boxes = %v, expected the always-on hurtbox", jab.Frames[0].Boxes)
	}

	// Cancel flags apply from cancel_from onward.
	if jab.Frames[7].Cancel.Has(CancelAttack) {
		t.Errorf("frame 7 cancelable before cancel_from")
	}
	if !jab.Frames[8].Cancel.Has(CancelAttack) {
		t.Errorf("frame 8 not cancelable at cancel_from")
	}

	// Impulse lands on its frame with the requested mode.
	imp := jab.Frames[2].Impulse
	if imp == nil || imp.Mode != ImpulseSet || imp.Vel.X != 1.5 {
		t.Errorf("frame 2 impulse = %+v, expected set [1.5 0 0]", imp)
	}
	if jab.Frames[3].Impulse != nil {
		t.Errorf("impulse leaked onto frame 3")
	}
}

const spawnYAML = miniYAML + `    spawns:
      - { frame: 4, offset: [5, 6, 0], speed: 3, lifetime: 30, radius: 1.5, hit: { damage: 4, base_kb: 5, kb_growth: 0.1, angle: 20, priority: 3 } }
`

func TestDecodeYAMLSpawns(t *testing.T) {
	def, err := DecodeCharacterYAML([]byte(spawnYAML))
	if err != nil {
		t.Fatalf("DecodeCharacterYAML() error: %v", err)
	}
	jab := def.Action(ActionAttackJab)
	sp := jab.Frames[4].Spawn
	if sp == nil {
		t.Fatalf("frame 4 has no spawn")
	}
	if sp.Offset.X != 5 || sp.Offset.Y != 6 {
		t.Errorf("spawn offset = %v, expected (5, 6)", sp.Offset)
	}
	if sp.Speed != 3 || sp.Lifetime != 30 || sp.Radius != 1.5 {
		t.Errorf("spawn = %+v, expected speed 3 lifetime 30 radius 1.5", sp)
	}
	if sp.Hit.Damage != 4 || sp.Hit.Priority != 3 {
		t.Errorf("spawn payload = %+v, expected damage 4 priority 3", sp.Hit)
	}
	for fi := range jab.Frames {
		if fi != 4 && jab.Frames[fi].Spawn != nil {
			t.Errorf("spawn leaked onto frame %d", fi)
		}
	}
}

func TestDecodeYAMLRejectsSpawnErrors(t *testing.T) {
	tests := []struct {
		name string
		edit func(string) string
		want string
	}{
		{
			name: "spawn frame out of range",
			edit: func(s string) string { return strings.Replace(s, "frame: 4,", "frame: 10,", 1) },
			want: "out of range",
		},
		{
			name: "spawn without hit",
			edit: func(s string) string {
				return strings.Replace(s, ", hit: { damage: 4, base_kb: 5, kb_growth: 0.1, angle: 20, priority: 3 }", "", 1)
			},
			want: "no hit payload",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCharacterYAML([]byte(tc.edit(spawnYAML)))
			if err == nil {
				t.Fatalf("expected decode error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDecodeYAMLRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		edit func(string) string
		want string
	}{
		{
			name: "unknown action name",
			edit: func(s string) string { return strings.Replace(s, "attack_jab:", "uppercut:", 1) },
			want: "unknown action",
		},
		{
			name: "frame range past duration",
			edit: func(s string) string { return strings.Replace(s, "frames: [3, 5]", "frames: [3, 12]", 1) },
			want: "out of action duration",
		},
		{
			name: "inverted frame range",
			edit: func(s string) string { return strings.Replace(s, "frames: [3, 5]", "frames: [5, 3]", 1) },
			want: "out of action duration",
		},
		{
			name: "impulse out of range",
			edit: func(s string) string { return strings.Replace(s, "frame: 2", "frame: 10", 1) },
			want: "out of range",
		},
		{
			name: "bad impulse mode",
			edit: func(s string) string { return strings.Replace(s, "mode: set", "mode: blend", 1) },
			want: "unknown mode",
		},
		{
			name: "bad ecb arity",
			edit: func(s string) string { return strings.Replace(s, "ecb: [3, 3, 12, 0]", "ecb: [3, 3]", 1) },
			want: "ecb",
		},
		{
			name: "unknown cancel flag",
			edit: func(s string) string { return strings.Replace(s, "cancel: [attack]", "cancel: [parry]", 1) },
			want: "unknown cancel",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCharacterYAML([]byte(tc.edit(miniYAML)))
			if err == nil {
				t.Fatalf("expected decode error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDecodeJSONSchemaRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"negative weight", `{"name": "x", "weight": -1, "gravity": 0.5, "max_fall_speed": 10, "shield_hp": 50, "ecb": [3,3,12,0], "skeleton": [{"name":"root","parent":-1,"offset":[0,0,0]}], "actions": {}}`},
		{"missing name", `{"weight": 1, "gravity": 0.5, "max_fall_speed": 10, "shield_hp": 50, "ecb": [3,3,12,0], "skeleton": [{"name":"root","parent":-1,"offset":[0,0,0]}], "actions": {}}`},
		{"ecb wrong arity", `{"name": "x", "weight": 1, "gravity": 0.5, "max_fall_speed": 10, "shield_hp": 50, "ecb": [3,3], "skeleton": [{"name":"root","parent":-1,"offset":[0,0,0]}], "actions": {}}`},
		{"not json", `not json at all`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeCharacterJSON([]byte(tc.data)); err == nil {
				t.Errorf("expected schema rejection")
			}
		})
	}
}

func TestBuiltinRoster(t *testing.T) {
	table, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin() error: %v", err)
	}
	names := table.Characters()
	if len(names) != 2 || names[0] != "golem" || names[1] != "ronin" {
		t.Fatalf("Characters() = %v, expected [golem ronin]", names)
	}

	// The jab window carries its payload; surrounding frames do not.
	rec, err := table.Lookup("ronin", ActionAttackJab, 4)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	var hit *HitPayload
	for _, b := range rec.Boxes {
		if b.Kind == Hitbox {
			hit = b.Hit
		}
	}
	if hit == nil {
		t.Fatalf("ronin jab frame 4 has no active hitbox")
	}
	if hit.Damage != 8 || hit.Priority != 5 || hit.Angle != SakuraiAngle {
		t.Errorf("jab payload = %+v, expected damage 8 priority 5 sakurai angle", hit)
	}

	rec, err = table.Lookup("ronin", ActionAttackJab, 0)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	for _, b := range rec.Boxes {
		if b.Kind == Hitbox {
			t.Errorf("jab startup frame has an active hitbox")
		}
	}

	// Every character authors the full action set; Builtin validated it.
	for _, name := range names {
		c := table.Character(name)
		for _, id := range AllActions() {
			if c.Action(id) == nil {
				t.Errorf("%s missing action %s", name, id)
			}
		}
	}
}

func TestBuiltinRoninThrowsOnTilt(t *testing.T) {
	table := MustBuiltin()
	rec, err := table.Lookup("ronin", ActionAttackTilt, 12)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	sp := rec.Spawn
	if sp == nil {
		t.Fatalf("ronin tilt frame 12 has no spawn")
	}
	if sp.Speed <= 0 || sp.Lifetime <= 0 || sp.Radius <= 0 {
		t.Errorf("spawn = %+v, expected positive speed, lifetime and radius", sp)
	}
	if sp.Hit.Damage <= 0 {
		t.Errorf("spawn payload damage = %v, expected positive", sp.Hit.Damage)
	}
}

func TestLookupErrors(t *testing.T) {
	table := MustBuiltin()

	if _, err := table.Lookup("nobody", ActionStand, 0); err == nil {
		t.Errorf("Lookup(unknown character) did not error")
	}
	if _, err := table.Lookup("ronin", ActionAttackJab, -1); err == nil {
		t.Errorf("Lookup(negative frame) did not error")
	}
	if _, err := table.Lookup("ronin", ActionAttackJab, 9999); err == nil {
		t.Errorf("Lookup(frame past duration) did not error")
	}
}
