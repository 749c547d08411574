// Package roster assembles the playable content for a session: the frame
// data table and the stage catalog, built from the embedded defaults and
// optionally overlaid with user files from a data directory.
//
// The data directory layout mirrors the embedded one:
//
//	<data>/characters/*.yaml    character frame data (yaml or json)
//	<data>/stages/*.yaml        stage definitions
//
// A user file with the same name as a built-in replaces it; new names are
// added alongside.
package roster

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vovakirdan/tui-brawler/internal/framedata"
	"github.com/vovakirdan/tui-brawler/internal/stage"
)

// Roster is the resolved content set for one session.
type Roster struct {
	table  *framedata.Table
	stages *stage.Catalog
}

// Load builds the roster. An empty dataDir yields the embedded defaults.
func Load(dataDir string) (*Roster, error) {
	table, err := framedata.Builtin()
	if err != nil {
		return nil, fmt.Errorf("roster: embedded characters: %w", err)
	}
	stages, err := stage.Builtin()
	if err != nil {
		return nil, fmt.Errorf("roster: embedded stages: %w", err)
	}
	if dataDir == "" {
		return &Roster{table: table, stages: stages}, nil
	}

	if dir := filepath.Join(dataDir, "characters"); dirExists(dir) {
		user, err := framedata.LoadDir(dir)
		if err != nil {
			return nil, err
		}
		if table, err = mergeTables(table, user); err != nil {
			return nil, err
		}
	}
	if dir := filepath.Join(dataDir, "stages"); dirExists(dir) {
		user, err := stage.LoadDir(dir)
		if err != nil {
			return nil, err
		}
		if stages, err = mergeCatalogs(stages, user); err != nil {
			return nil, err
		}
	}
	return &Roster{table: table, stages: stages}, nil
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

func mergeTables(base, over *framedata.Table) (*framedata.Table, error) {
	byName := make(map[string]*framedata.CharacterDef)
	for _, name := range base.Characters() {
		byName[name] = base.Character(name)
	}
	for _, name := range over.Characters() {
		byName[name] = over.Character(name)
	}
	defs := make([]*framedata.CharacterDef, 0, len(byName))
	for _, def := range byName {
		defs = append(defs, def)
	}
	return framedata.NewTable(defs...)
}

func mergeCatalogs(base, over *stage.Catalog) (*stage.Catalog, error) {
	byName := make(map[string]*stage.Definition)
	for _, name := range base.Stages() {
		byName[name] = base.Stage(name)
	}
	for _, name := range over.Stages() {
		byName[name] = over.Stage(name)
	}
	defs := make([]*stage.Definition, 0, len(byName))
	for _, def := range byName {
		defs = append(defs, def)
	}
	return stage.NewCatalog(defs...)
}

// Table returns the merged frame data table.
func (r *Roster) Table() *framedata.Table { return r.table }

// Stages returns the merged stage catalog.
func (r *Roster) Stages() *stage.Catalog { return r.stages }

// Characters returns all playable character names, sorted.
func (r *Roster) Characters() []string { return r.table.Characters() }

// StageNames returns all stage names, sorted.
func (r *Roster) StageNames() []string { return r.stages.Stages() }

// Character returns one character definition, or nil.
func (r *Roster) Character(name string) *framedata.CharacterDef {
	return r.table.Character(name)
}

// Stage returns one stage definition, or nil.
func (r *Roster) Stage(name string) *stage.Definition {
	return r.stages.Stage(name)
}
