package stage

import (
	"fmt"
	"sort"

	"embed"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// Builtin returns the stages embedded in the binary.
func Builtin() (*Catalog, error) {
	entries, err := defaultsFS.ReadDir("defaults")
	if err != nil {
		return nil, fmt.Errorf("stage: embedded defaults: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	defs := make([]*Definition, 0, len(names))
	for _, name := range names {
		data, err := defaultsFS.ReadFile("defaults/" + name)
		if err != nil {
			return nil, fmt.Errorf("stage: embedded defaults: %w", err)
		}
		d, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("stage: embedded %s: %w", name, err)
		}
		defs = append(defs, d)
	}
	return NewCatalog(defs...)
}

// MustBuiltin is Builtin for callers that treat a broken embedded stage as
// a build defect.
func MustBuiltin() *Catalog {
	c, err := Builtin()
	if err != nil {
		panic(err)
	}
	return c
}
