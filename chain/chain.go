// Package chain implements the chain builder (spec §4.2): it takes the
// combiner's signal, the output sink's signal, and the user's
// requested effects, and produces an ordered list of stages — default
// resampler/mixer inserted where needed, right-channel twins allocated
// for non-multichannel effects facing a stereo stream — ready for the
// scheduler to pull samples through.
package chain

import (
	"errors"
	"fmt"

	"github.com/pipelined/sox/effect"
	"github.com/pipelined/sox/pcm"
)

// DefaultCapacity is the default per-stage output buffer capacity in
// wide samples (spec §4.3's "B", default 8192).
const DefaultCapacity = 8192

// EffectSpec names one user-requested effect and its raw CLI argv, the
// input the chain builder accepts before any instance is constructed.
type EffectSpec struct {
	Name string
	Args []string
}

// Stage is one position in the chain: the sentinel (Primary == nil,
// index 0, filled directly by the combiner), or a real effect
// instance, optionally paired with a right-channel Twin when Primary
// lacks MultiChan and the incoming stream is stereo (spec §4.4).
type Stage struct {
	Name    string
	Primary effect.Effect
	Twin    effect.Effect

	In, Out effect.Signal

	// Buf is this stage's fixed-capacity output buffer. Odone/Olen mark
	// the consumed/produced watermarks within it (spec §4.3).
	Buf         pcm.Buffer
	Odone, Olen int
}

// IsSentinel reports whether this is the input stage (index 0).
func (s *Stage) IsSentinel() bool { return s.Primary == nil }

// Available returns the unconsumed window [odone, olen) ready for the
// next stage to pull from.
func (s *Stage) Available() pcm.Buffer { return s.Buf.Slice(s.Odone, s.Olen) }

// ResetIfDrained zeroes Odone/Olen back to 0 once everything produced
// has been consumed, reusing the buffer's capacity (spec §4.3).
func (s *Stage) ResetIfDrained() {
	if s.Odone == s.Olen {
		s.Odone, s.Olen = 0, 0
	}
}

// Chain is the ordered, built stage list for one run of the
// combiner's output through to the sink's expected signal.
type Chain struct {
	Stages   []*Stage
	Capacity int
}

// ErrMultipleChannelEffects is fatal: spec §4.2 step 2 allows at most
// one CHAN-capable user effect.
var ErrMultipleChannelEffects = errors.New("chain: more than one channel-changing effect")

// Build runs the chain builder algorithm of spec §4.2 and returns an
// unstarted Chain (buffers allocated, Start not yet called).
func Build(combinerSig, outputSig effect.Signal, specs []EffectSpec, capacity int) (*Chain, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	needRate := combinerSig.Rate != outputSig.Rate
	needChan := combinerSig.Channels != outputSig.Channels

	userEffects := make([]effect.Effect, len(specs))
	userNames := make([]string, len(specs))
	sawChan, sawRate := false, false
	for i, spec := range specs {
		e, ok := effect.Lookup(spec.Name)
		if !ok {
			return nil, fmt.Errorf("chain: unknown effect %q", spec.Name)
		}
		if err := e.GetOpts(spec.Args); err != nil {
			return nil, fmt.Errorf("chain: %s: %w", spec.Name, err)
		}
		flags := e.Flags()
		if flags.Has(effect.Chan) {
			if sawChan {
				return nil, ErrMultipleChannelEffects
			}
			sawChan = true
			needChan = false
		}
		if flags.Has(effect.Rate) {
			// More than one RATE effect is a warning in spec.md, not
			// fatal; we simply let the last one win structurally since
			// there is no logging channel at this layer to warn through.
			sawRate = true
			needRate = false
		}
		userEffects[i] = e
		userNames[i] = spec.Name
	}
	_ = sawRate

	type planned struct {
		name  string
		eff   effect.Effect
		clone func() (effect.Effect, error)
	}
	var plan []planned

	if needChan && combinerSig.Channels > outputSig.Channels {
		plan = append(plan, planned{"remix", newDefaultRemix(outputSig.Channels), func() (effect.Effect, error) {
			return newDefaultRemix(outputSig.Channels), nil
		}})
		needChan = false
	}
	if needRate && combinerSig.Rate > outputSig.Rate {
		plan = append(plan, planned{"resample", newDefaultResample(outputSig.Rate), func() (effect.Effect, error) {
			return newDefaultResample(outputSig.Rate), nil
		}})
		needRate = false
	}
	for i, e := range userEffects {
		name, args := userNames[i], specs[i].Args
		plan = append(plan, planned{name, e, func() (effect.Effect, error) {
			twin, ok := effect.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("chain: cannot build twin for %q", name)
			}
			if err := twin.GetOpts(args); err != nil {
				return nil, fmt.Errorf("chain: %s: %w", name, err)
			}
			return twin, nil
		}})
	}
	if needRate {
		plan = append(plan, planned{"resample", newDefaultResample(outputSig.Rate), func() (effect.Effect, error) {
			return newDefaultResample(outputSig.Rate), nil
		}})
	}
	if needChan {
		plan = append(plan, planned{"remix", newDefaultRemix(outputSig.Channels), func() (effect.Effect, error) {
			return newDefaultRemix(outputSig.Channels), nil
		}})
	}

	c := &Chain{Capacity: capacity}
	sentinel := &Stage{Name: "sentinel", Out: combinerSig, Buf: pcm.NewBuffer(combinerSig.Channels, capacity)}
	c.Stages = append(c.Stages, sentinel)

	running := combinerSig
	for _, p := range plan {
		in := running
		out := running
		flags := p.eff.Flags()
		if flags.Has(effect.Chan) {
			out.Channels = outputSig.Channels
		}
		if flags.Has(effect.Rate) {
			out.Rate = outputSig.Rate
		}

		stage := &Stage{
			Name:    p.name,
			Primary: p.eff,
			In:      in,
			Out:     out,
			Buf:     pcm.NewBuffer(out.Channels, capacity),
		}
		if in.Channels > 1 && !flags.Has(effect.MultiChan) {
			twin, err := p.clone()
			if err != nil {
				return nil, err
			}
			stage.Twin = twin
		}
		c.Stages = append(c.Stages, stage)
		running = out
	}

	return c, nil
}

func newDefaultRemix(target int) effect.Effect {
	r := effect.NewRemix()
	if rm, ok := r.(*effect.Remix); ok {
		rm.Target = target
	}
	return r
}

func newDefaultResample(target int) effect.Effect {
	r := effect.NewResample()
	if rs, ok := r.(*effect.Resample); ok {
		rs.TargetRate = target
	}
	return r
}
