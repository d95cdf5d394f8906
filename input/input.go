// Package input models one input file record of spec §3: the
// filename, its codec handle, the signal descriptor it opened with,
// the volume multiplier/replay-gain the combiner applies to it, and
// its own clip counter.
package input

import (
	"fmt"
	"math"

	"github.com/pipelined/sox/codec"
	"github.com/pipelined/sox/pcm"
)

// TypeHint optionally overrides autodetection of an input's codec,
// mirroring the CLI's "-t TYPE" flag (spec §6.3).
type TypeHint string

// Input is one file (or device) fed into the combiner. Mirrors
// pipelined-audio/track.go's link's style of a small struct whose
// invariants are enforced at construction rather than scattered across
// call sites.
type Input struct {
	Filename string
	Handle   codec.Handle
	Signal   pcm.Descriptor

	// Multiplier is the effective volume multiplier applied to every
	// sample, already folded with replay gain if Open was asked to
	// apply it. Defaults to 1.0.
	Multiplier float64

	// ReplayGainDB is the gain supplied in Options.ReplayGainDB, copied
	// whether or not ApplyReplayGain is set; Open does not read gain
	// from file metadata. Informational once folded into Multiplier.
	ReplayGainDB float64

	// Clipped counts saturations caused by Multiplier scaling on this
	// input alone, independent of the combiner's own mix-stage clip
	// counter.
	Clipped int
}

// Options configures how Open resolves an input's volume.
type Options struct {
	TypeHint        TypeHint
	SignalOverride  *pcm.Descriptor
	Volume          float64 // 0 means "use default (1.0, or 1/N for mix)"
	ApplyReplayGain bool
	ReplayGainDB    float64
}

// Open resolves a codec for filename (by type hint or extension),
// opens it for reading, and returns the Input record with Multiplier
// folded per spec §3: multiplier × 10^(gain/20) when replay gain is
// requested and present.
func Open(filename string, opts Options) (*Input, error) {
	var c codec.Codec
	var ok bool
	if opts.TypeHint != "" {
		c, ok = codec.ByName(string(opts.TypeHint))
	} else {
		c, ok = codec.ByPath(filename)
	}
	if !ok {
		return nil, fmt.Errorf("input: no codec for %q", filename)
	}

	h, err := c.OpenRead(filename, opts.SignalOverride)
	if err != nil {
		return nil, fmt.Errorf("input: opening %q: %w", filename, err)
	}

	mult := opts.Volume
	if mult == 0 {
		mult = 1.0
	}
	if opts.ApplyReplayGain && opts.ReplayGainDB != 0 {
		mult *= math.Pow(10, opts.ReplayGainDB/20)
	}

	return &Input{
		Filename:     filename,
		Handle:       h,
		Signal:       h.Signal(),
		Multiplier:   mult,
		ReplayGainDB: opts.ReplayGainDB,
	}, nil
}

// Read fills buf from the underlying handle and applies Multiplier in
// place, tallying clips on this input's own counter.
func (in *Input) Read(buf pcm.Buffer) (int, error) {
	n, err := in.Handle.Read(buf)
	if in.Multiplier != 1.0 {
		for i := 0; i < n; i++ {
			for c := 0; c < buf.Channels; c++ {
				scaled, clipped := buf.Sample(i, c).ScaleBy(in.Multiplier)
				if clipped {
					in.Clipped++
				}
				buf.SetSample(i, c, scaled)
			}
		}
	}
	return n, err
}

// Close releases the underlying codec handle.
func (in *Input) Close() error {
	return in.Handle.Close()
}

// DefaultMixVolume returns the default per-input multiplier mix
// combining uses to avoid clipping when the caller hasn't supplied an
// explicit volume: 1/n, per spec §3.
func DefaultMixVolume(n int) float64 {
	if n <= 0 {
		return 1.0
	}
	return 1.0 / float64(n)
}
