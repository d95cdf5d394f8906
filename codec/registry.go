package codec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// registry mirrors pipelined-audio/file/file.go's formatByExtension
// table: a flat map built once from each codec's declared extensions,
// panicking on a collision rather than silently shadowing one codec
// with another.
var (
	byName      = map[string]Codec{}
	byExtension = map[string]Codec{}
)

// Register adds a codec to the built-in table, keyed by name and by
// every extension it declares. Panics if the name or any extension is
// already claimed.
func Register(c Codec) {
	name := c.Name()
	if _, exists := byName[name]; exists {
		panic(fmt.Sprintf("codec: duplicate registration for name %q", name))
	}
	byName[name] = c
	for _, ext := range c.Extensions() {
		ext = strings.ToLower(ext)
		if other, exists := byExtension[ext]; exists {
			panic(fmt.Sprintf("codec: extension %q claimed by both %q and %q", ext, other.Name(), name))
		}
		byExtension[ext] = c
	}
}

// ByName looks up a codec by its registered name (as given by a CLI
// type-hint flag, spec.md §6.3).
func ByName(name string) (Codec, bool) {
	c, ok := byName[name]
	return c, ok
}

// ByPath determines a codec from a file path's extension, mirroring
// file.FormatByPath's behavior exactly (including returning false for
// unrecognized or missing extensions).
func ByPath(path string) (Codec, bool) {
	c, ok := byExtension[strings.ToLower(filepath.Ext(path))]
	return c, ok
}

func init() {
	Register(NewWAV())
	Register(NewOpus())
	Register(NewDevice())
	Register(NewNull())
}
