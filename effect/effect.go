// Package effect defines the plug-in contract individual sample
// transforms implement (spec §6.2), the capability flags the chain
// builder and scheduler use to reason about a given effect (spec §3),
// and the built-in effects (resample, remix, trim, vol), of which the
// chain builder inserts resample and remix itself when needed.
package effect

import (
	"errors"

	"github.com/pipelined/sox/pcm"
)

// Flags is a bitset over an effect's capabilities (spec §3).
type Flags uint8

const (
	// MultiChan marks an effect that handles interleaved multi-channel
	// audio directly. Effects without this flag are split by the chain's
	// stereo splitter into two instances, one for channel 0 and a twin
	// for channel 1, when driven on a multi-channel stream.
	MultiChan Flags = 1 << iota
	// Chan marks an effect that changes the channel count.
	Chan
	// Rate marks an effect that changes the sample rate.
	Rate
	// Length marks an effect that changes stream length.
	Length
	// Null marks an effect that is a no-op in its current configuration.
	// No built-in effect reports it from Flags; Start signals the no-op
	// case by returning StartNull instead.
	Null
	// Deprecated marks an effect kept only for compatibility.
	Deprecated
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// StartResult is the outcome of Effect.Start.
type StartResult int

const (
	// StartOK means the effect finalized its parameters normally.
	StartOK StartResult = iota
	// StartNull means the effect determined it is a no-op in this
	// configuration (e.g. "vol 1.0", "rate" when rates already match)
	// and should be removed from the chain by compaction.
	StartNull
	// StartEOF means the effect cannot run at all (fatal).
	StartEOF
)

// ErrEOF is returned by Flow/Drain to signal that the effect instance
// has reached the end of whatever it produces; the scheduler treats it
// as normal end-of-source for that stage (spec §7).
var ErrEOF = errors.New("effect: end of stream")

// Signal describes the effect's running (rate, channels) at one side of
// its boundary.
type Signal struct {
	Rate     int
	Channels int
}

// Effect is the plug-in contract (spec §6.2). All methods except Name,
// Usage and Flags are optional in spirit — a concrete effect only
// implements the behavior it needs — but this interface requires them
// all for simplicity of chain wiring; trivial effects implement them as
// no-ops by embedding Defaults.
type Effect interface {
	// Name is the registered effect name, e.g. "vol", "trim", "resample".
	Name() string
	// Usage is one-line help text describing the effect's arguments.
	Usage() string
	// Flags reports the effect's capability bitset.
	Flags() Flags

	// GetOpts parses effect-specific arguments at chain-build time.
	// Called with a nil/empty argv to adopt defaults.
	GetOpts(argv []string) error
	// Start finalizes parameters using the adjacent signal info now
	// that the chain's running (rate, channels) is known at this
	// position, and reports the output signal.
	Start(in Signal) (out Signal, result StartResult, err error)
	// Flow consumes up to len(in) wide samples from in, produces up to
	// len(out) wide samples into out, and reports both actual counts.
	Flow(in, out pcm.Buffer) (consumed, produced int, err error)
	// Drain emits any buffered residue after the input has ended.
	Drain(out pcm.Buffer) (produced int, err error)
	// Stop releases per-run state.
	Stop() error
	// Kill releases all state unconditionally (called on abort too).
	Kill()
	// ClipCount reports saturations this effect instance has caused so
	// far, 0 for effects that never saturate (spec §4.5).
	ClipCount() int
}

// Defaults implements the no-op version of every Effect method except
// Name/Usage/Flags/Flow, which concrete effects still must provide.
// Embed it to avoid repeating boilerplate for effects that need only
// one or two hooks — the same "implement what you need" shape
// pipelined-audio's Source/Sink allocators exhibit for optional Flush.
type Defaults struct{}

func (Defaults) GetOpts([]string) error                   { return nil }
func (Defaults) Start(in Signal) (Signal, StartResult, error) { return in, StartOK, nil }
func (Defaults) Drain(pcm.Buffer) (int, error)             { return 0, nil }
func (Defaults) Stop() error                               { return nil }
func (Defaults) Kill()                                     {}
func (Defaults) ClipCount() int                            { return 0 }
