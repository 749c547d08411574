package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-brawler/internal/core"
)

type stageFile struct {
	Name      string         `yaml:"name"`
	Platforms []platformFile `yaml:"platforms"`
	Ledges    []ledgeFile    `yaml:"ledges"`
	Blast     []float64      `yaml:"blast"` // [min_x, min_y, max_x, max_y]
	Spawns    [][]float64    `yaml:"spawns"`
	Respawn   []float64      `yaml:"respawn"`
}

type platformFile struct {
	Span        []float64 `yaml:"span"` // [min_x, max_x]
	Y           float64   `yaml:"y"`
	PassThrough bool      `yaml:"pass_through"`
}

type ledgeFile struct {
	Pos       []float64 `yaml:"pos"`
	FaceRight bool      `yaml:"face_right"`
}

// Decode parses a YAML stage file without validating it; NewCatalog does
// the validation.
func Decode(data []byte) (*Definition, error) {
	var sf stageFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("stage: parse yaml: %w", err)
	}

	d := &Definition{Name: sf.Name}

	for i, pf := range sf.Platforms {
		if len(pf.Span) != 2 {
			return nil, fmt.Errorf("stage: %s: platform %d span must be [min_x, max_x]", sf.Name, i)
		}
		d.Platforms = append(d.Platforms, Platform{
			MinX: pf.Span[0], MaxX: pf.Span[1], Y: pf.Y, PassThrough: pf.PassThrough,
		})
	}

	for i, lf := range sf.Ledges {
		pos, err := vec3(lf.Pos)
		if err != nil {
			return nil, fmt.Errorf("stage: %s: ledge %d: %w", sf.Name, i, err)
		}
		d.Ledges = append(d.Ledges, Ledge{Pos: pos, FaceRight: lf.FaceRight})
	}

	if len(sf.Blast) != 4 {
		return nil, fmt.Errorf("stage: %s: blast must be [min_x, min_y, max_x, max_y]", sf.Name)
	}
	d.Blast = core.Rect{MinX: sf.Blast[0], MinY: sf.Blast[1], MaxX: sf.Blast[2], MaxY: sf.Blast[3]}

	for i, s := range sf.Spawns {
		pos, err := vec3(s)
		if err != nil {
			return nil, fmt.Errorf("stage: %s: spawn %d: %w", sf.Name, i, err)
		}
		d.Spawns = append(d.Spawns, pos)
	}

	var err error
	if d.Respawn, err = vec3(sf.Respawn); err != nil {
		return nil, fmt.Errorf("stage: %s: respawn: %w", sf.Name, err)
	}
	return d, nil
}

// LoadFile loads a single stage file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stage: read %s: %w", path, err)
	}
	d, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("stage: %s: %w", path, err)
	}
	return d, nil
}

// LoadDir builds a catalog from every stage file in dir.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("stage: read dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := make([]*Definition, 0, len(names))
	for _, name := range names {
		d, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return NewCatalog(defs...)
}

func vec3(v []float64) (core.Vec3, error) {
	if len(v) != 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(v))
	}
	return core.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}
