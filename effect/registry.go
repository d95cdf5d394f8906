package effect

import "fmt"

// Factory builds a fresh Effect instance. Registered factories back the
// chain builder's lookups by name; dynamic plug-in discovery (loading
// factories from outside the binary) is explicitly out of scope (spec
// §1) — this is a closed, compiled-in table.
type Factory func() Effect

var registry = map[string]Factory{}

// Register adds a named effect factory to the built-in table. Intended
// to be called from package init of concrete effect files, mirroring
// pipelined-audio/source.go's per-kind dispatch (switch over a closed
// set of known shapes) generalized to a name-keyed table.
func Register(name string, f Factory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("effect: duplicate registration for %q", name))
	}
	registry[name] = f
}

// Lookup returns a fresh instance of the named effect, or false if no
// such effect is registered.
func Lookup(name string) (Effect, bool) {
	f, ok := registry[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

func init() {
	Register("resample", NewResample)
	Register("remix", NewRemix)
	Register("trim", NewTrim)
	Register("vol", NewVol)
}
