package framedata

import (
	"fmt"
	"sort"

	"embed"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// Builtin returns the table of characters embedded in the binary. It is the
// roster used when no data directory overrides them.
func Builtin() (*Table, error) {
	entries, err := defaultsFS.ReadDir("defaults")
	if err != nil {
		return nil, fmt.Errorf("framedata: embedded defaults: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	defs := make([]*CharacterDef, 0, len(names))
	for _, name := range names {
		data, err := defaultsFS.ReadFile("defaults/" + name)
		if err != nil {
			return nil, fmt.Errorf("framedata: embedded defaults: %w", err)
		}
		def, err := DecodeCharacterYAML(data)
		if err != nil {
			return nil, fmt.Errorf("framedata: embedded %s: %w", name, err)
		}
		defs = append(defs, def)
	}
	return NewTable(defs...)
}

// MustBuiltin is Builtin for callers that treat a broken embedded roster as
// a build defect.
func MustBuiltin() *Table {
	t, err := Builtin()
	if err != nil {
		panic(err)
	}
	return t
}
