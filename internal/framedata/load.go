package framedata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-brawler/internal/core"
)

// Wire format for character files. The authoring tool may emit YAML or
// JSON; both decode into these structs. Box activity is authored as frame
// ranges and expanded to per-frame records at load.

type charFile struct {
	Name            string                `yaml:"name" json:"name"`
	Weight          float64               `yaml:"weight" json:"weight"`
	Gravity         float64               `yaml:"gravity" json:"gravity"`
	MaxFallSpeed    float64               `yaml:"max_fall_speed" json:"max_fall_speed"`
	Friction        float64               `yaml:"friction" json:"friction"`
	WalkSpeed       float64               `yaml:"walk_speed" json:"walk_speed"`
	AirSpeed        float64               `yaml:"air_speed" json:"air_speed"`
	JumpVelocity    float64               `yaml:"jump_velocity" json:"jump_velocity"`
	AirJumpVelocity float64               `yaml:"air_jump_velocity" json:"air_jump_velocity"`
	AirJumps        int                   `yaml:"air_jumps" json:"air_jumps"`
	ShieldHP        float64               `yaml:"shield_hp" json:"shield_hp"`
	ECB             []float64             `yaml:"ecb" json:"ecb"` // [left, right, top, bottom]
	Skeleton        []boneFile            `yaml:"skeleton" json:"skeleton"`
	Actions         map[string]actionFile `yaml:"actions" json:"actions"`
}

type boneFile struct {
	Name   string    `yaml:"name" json:"name"`
	Parent int       `yaml:"parent" json:"parent"`
	Offset []float64 `yaml:"offset" json:"offset"`
}

type actionFile struct {
	Duration   int           `yaml:"duration" json:"duration"`
	Next       string        `yaml:"next" json:"next"`
	Cancel     []string      `yaml:"cancel" json:"cancel"`
	CancelFrom int           `yaml:"cancel_from" json:"cancel_from"`
	NoGravity  bool          `yaml:"no_gravity" json:"no_gravity"`
	Boxes      []boxFile     `yaml:"boxes" json:"boxes"`
	Impulses   []impulseFile `yaml:"impulses" json:"impulses"`
	Spawns     []spawnFile   `yaml:"spawns" json:"spawns"`
	Poses      []poseFile    `yaml:"poses" json:"poses"`
}

type spawnFile struct {
	Frame    int       `yaml:"frame" json:"frame"`
	Offset   []float64 `yaml:"offset" json:"offset"`
	Speed    float64   `yaml:"speed" json:"speed"`
	Gravity  float64   `yaml:"gravity" json:"gravity"`
	Lifetime int       `yaml:"lifetime" json:"lifetime"`
	Radius   float64   `yaml:"radius" json:"radius"`
	Hit      *hitFile  `yaml:"hit" json:"hit"`
}

type boxFile struct {
	Kind   string    `yaml:"kind" json:"kind"`
	Bone   int       `yaml:"bone" json:"bone"`
	P1     []float64 `yaml:"p1" json:"p1"`
	P2     []float64 `yaml:"p2" json:"p2"`
	Radius float64   `yaml:"radius" json:"radius"`
	Frames []int     `yaml:"frames" json:"frames"` // [first, last] inclusive; empty = whole action
	Hit    *hitFile  `yaml:"hit" json:"hit"`
}

type hitFile struct {
	Damage       float64 `yaml:"damage" json:"damage"`
	BaseKB       float64 `yaml:"base_kb" json:"base_kb"`
	KBGrowth     float64 `yaml:"kb_growth" json:"kb_growth"`
	Angle        float64 `yaml:"angle" json:"angle"`
	Priority     int     `yaml:"priority" json:"priority"`
	HitstunPerKB float64 `yaml:"hitstun_per_kb" json:"hitstun_per_kb"`
	ShieldDamage float64 `yaml:"shield_damage" json:"shield_damage"`
}

type impulseFile struct {
	Frame int       `yaml:"frame" json:"frame"`
	Mode  string    `yaml:"mode" json:"mode"` // "add" (default) or "set"
	Vel   []float64 `yaml:"vel" json:"vel"`
}

type poseFile struct {
	Frame  int       `yaml:"frame" json:"frame"`
	Bone   int       `yaml:"bone" json:"bone"`
	Offset []float64 `yaml:"offset" json:"offset"`
}

// DecodeCharacterYAML parses a YAML character file.
func DecodeCharacterYAML(data []byte) (*CharacterDef, error) {
	var cf charFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("framedata: parse yaml: %w", err)
	}
	return cf.expand()
}

// DecodeCharacterJSON parses a JSON character file, validating it against
// the embedded schema first so authoring mistakes surface with a precise
// location instead of a zero-valued struct.
func DecodeCharacterJSON(data []byte) (*CharacterDef, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("framedata: parse json: %w", err)
	}
	if err := characterSchema().Validate(raw); err != nil {
		return nil, fmt.Errorf("framedata: schema: %w", err)
	}
	var cf charFile
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("framedata: parse json: %w", err)
	}
	return cf.expand()
}

// LoadCharacterFile loads and validates a single character file. The format
// is chosen by extension (.yaml/.yml or .json).
func LoadCharacterFile(path string) (*CharacterDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("framedata: read %s: %w", path, err)
	}
	var def *CharacterDef
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		def, err = DecodeCharacterYAML(data)
	case ".json":
		def, err = DecodeCharacterJSON(data)
	default:
		return nil, fmt.Errorf("framedata: %s: unsupported extension", path)
	}
	if err != nil {
		return nil, fmt.Errorf("framedata: %s: %w", path, err)
	}
	if err := validateCharacter(def); err != nil {
		return nil, err
	}
	return def, nil
}

// LoadDir builds a Table from every character file in dir. Missing dir is
// an error; an empty dir yields an empty table.
func LoadDir(dir string) (*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("framedata: read dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := make([]*CharacterDef, 0, len(names))
	for _, name := range names {
		def, err := LoadCharacterFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return NewTable(defs...)
}

func (cf charFile) expand() (*CharacterDef, error) {
	c := &CharacterDef{
		Name:            cf.Name,
		Weight:          cf.Weight,
		Gravity:         cf.Gravity,
		MaxFallSpeed:    cf.MaxFallSpeed,
		Friction:        cf.Friction,
		WalkSpeed:       cf.WalkSpeed,
		AirSpeed:        cf.AirSpeed,
		JumpVelocity:    cf.JumpVelocity,
		AirJumpVelocity: cf.AirJumpVelocity,
		AirJumps:        cf.AirJumps,
		ShieldHP:        cf.ShieldHP,
		Actions:         make(map[ActionID]*ActionDef, len(cf.Actions)),
	}

	var err error
	if c.ECB, err = ecbFromSlice(cf.ECB); err != nil {
		return nil, fmt.Errorf("framedata: character %q: %w", cf.Name, err)
	}

	c.Skeleton = make([]Bone, len(cf.Skeleton))
	for i, b := range cf.Skeleton {
		off, err := vec3FromSlice(b.Offset)
		if err != nil {
			return nil, fmt.Errorf("framedata: character %q bone %s: %w", cf.Name, b.Name, err)
		}
		c.Skeleton[i] = Bone{Name: b.Name, Parent: b.Parent, Offset: off}
	}

	for name, af := range cf.Actions {
		id, err := ParseActionID(name)
		if err != nil {
			return nil, fmt.Errorf("framedata: character %q: %w", cf.Name, err)
		}
		def, err := af.expand(id)
		if err != nil {
			return nil, fmt.Errorf("framedata: character %q action %s: %w", cf.Name, name, err)
		}
		c.Actions[id] = def
	}
	return c, nil
}

func (af actionFile) expand(id ActionID) (*ActionDef, error) {
	if af.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", af.Duration)
	}
	next := id // default: loop
	if af.Next != "" {
		var err error
		if next, err = ParseActionID(af.Next); err != nil {
			return nil, err
		}
	}

	var cancel CancelFlags
	for _, name := range af.Cancel {
		f, err := ParseCancel(name)
		if err != nil {
			return nil, err
		}
		cancel |= f
	}

	def := &ActionDef{ID: id, Next: next, Frames: make([]FrameRecord, af.Duration)}
	for fi := range def.Frames {
		if fi >= af.CancelFrom {
			def.Frames[fi].Cancel = cancel
		}
		def.Frames[fi].NoGravity = af.NoGravity
	}

	for bi, bf := range af.Boxes {
		box, first, last, err := bf.expand(af.Duration)
		if err != nil {
			return nil, fmt.Errorf("box %d: %w", bi, err)
		}
		for fi := first; fi <= last; fi++ {
			def.Frames[fi].Boxes = append(def.Frames[fi].Boxes, box)
		}
	}

	for _, imp := range af.Impulses {
		if imp.Frame < 0 || imp.Frame >= af.Duration {
			return nil, fmt.Errorf("impulse frame %d out of range [0,%d)", imp.Frame, af.Duration)
		}
		vel, err := vec3FromSlice(imp.Vel)
		if err != nil {
			return nil, fmt.Errorf("impulse at frame %d: %w", imp.Frame, err)
		}
		mode := ImpulseAdd
		switch imp.Mode {
		case "", "add":
		case "set":
			mode = ImpulseSet
		default:
			return nil, fmt.Errorf("impulse at frame %d: unknown mode %q", imp.Frame, imp.Mode)
		}
		def.Frames[imp.Frame].Impulse = &Impulse{Mode: mode, Vel: vel}
	}

	for _, sp := range af.Spawns {
		if sp.Frame < 0 || sp.Frame >= af.Duration {
			return nil, fmt.Errorf("spawn frame %d out of range [0,%d)", sp.Frame, af.Duration)
		}
		if def.Frames[sp.Frame].Spawn != nil {
			return nil, fmt.Errorf("frame %d has more than one spawn", sp.Frame)
		}
		if sp.Hit == nil {
			return nil, fmt.Errorf("spawn at frame %d has no hit payload", sp.Frame)
		}
		offset := core.Vec3{}
		if len(sp.Offset) > 0 {
			var err error
			if offset, err = vec3FromSlice(sp.Offset); err != nil {
				return nil, fmt.Errorf("spawn at frame %d: %w", sp.Frame, err)
			}
		}
		def.Frames[sp.Frame].Spawn = &ProjectileDef{
			Offset:   offset,
			Speed:    sp.Speed,
			Gravity:  sp.Gravity,
			Lifetime: sp.Lifetime,
			Radius:   sp.Radius,
			Hit: HitPayload{
				Damage:       sp.Hit.Damage,
				BaseKB:       sp.Hit.BaseKB,
				KBGrowth:     sp.Hit.KBGrowth,
				Angle:        sp.Hit.Angle,
				Priority:     sp.Hit.Priority,
				HitstunPerKB: sp.Hit.HitstunPerKB,
				ShieldDamage: sp.Hit.ShieldDamage,
			},
		}
	}

	for _, p := range af.Poses {
		if p.Frame < 0 || p.Frame >= af.Duration {
			return nil, fmt.Errorf("pose frame %d out of range [0,%d)", p.Frame, af.Duration)
		}
		off, err := vec3FromSlice(p.Offset)
		if err != nil {
			return nil, fmt.Errorf("pose at frame %d: %w", p.Frame, err)
		}
		if def.Frames[p.Frame].Pose == nil {
			def.Frames[p.Frame].Pose = make(map[int]core.Vec3)
		}
		def.Frames[p.Frame].Pose[p.Bone] = off
	}

	return def, nil
}

func (bf boxFile) expand(duration int) (BoxDef, int, int, error) {
	kind, err := ParseBoxKind(bf.Kind)
	if err != nil {
		return BoxDef{}, 0, 0, err
	}
	p1, err := vec3FromSlice(bf.P1)
	if err != nil {
		return BoxDef{}, 0, 0, fmt.Errorf("p1: %w", err)
	}
	p2 := p1
	if len(bf.P2) > 0 {
		if p2, err = vec3FromSlice(bf.P2); err != nil {
			return BoxDef{}, 0, 0, fmt.Errorf("p2: %w", err)
		}
	}

	first, last := 0, duration-1
	switch len(bf.Frames) {
	case 0:
	case 2:
		first, last = bf.Frames[0], bf.Frames[1]
	default:
		return BoxDef{}, 0, 0, fmt.Errorf("frames must be [first, last], got %v", bf.Frames)
	}
	if first < 0 || last >= duration || first > last {
		return BoxDef{}, 0, 0, fmt.Errorf("frame range [%d,%d] out of action duration %d", first, last, duration)
	}

	box := BoxDef{Kind: kind, Bone: bf.Bone, P1: p1, P2: p2, Radius: bf.Radius}
	if bf.Hit != nil {
		box.Hit = &HitPayload{
			Damage:       bf.Hit.Damage,
			BaseKB:       bf.Hit.BaseKB,
			KBGrowth:     bf.Hit.KBGrowth,
			Angle:        bf.Hit.Angle,
			Priority:     bf.Hit.Priority,
			HitstunPerKB: bf.Hit.HitstunPerKB,
			ShieldDamage: bf.Hit.ShieldDamage,
		}
	}
	return box, first, last, nil
}

func vec3FromSlice(v []float64) (core.Vec3, error) {
	if len(v) != 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(v))
	}
	return core.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func ecbFromSlice(v []float64) (ECB, error) {
	if len(v) != 4 {
		return ECB{}, fmt.Errorf("ecb: expected [left, right, top, bottom], got %d components", len(v))
	}
	return ECB{Left: v[0], Right: v[1], Top: v[2], Bottom: v[3]}, nil
}

var compiledCharacterSchema *jsonschema.Schema

// characterSchema compiles the embedded JSON schema once.
func characterSchema() *jsonschema.Schema {
	if compiledCharacterSchema == nil {
		s, err := jsonschema.CompileString("character.schema.json", characterSchemaJSON)
		if err != nil {
			panic(fmt.Sprintf("framedata: embedded schema is invalid: %v", err))
		}
		compiledCharacterSchema = s
	}
	return compiledCharacterSchema
}
