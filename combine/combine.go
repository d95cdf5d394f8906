// Package combine implements the combiner component of spec §4.1: the
// four input-combining policies (sequence, concatenate, mix, merge)
// that sit upstream of the effect chain and produce the single stream
// the chain builder and scheduler operate on.
package combine

import (
	"errors"
	"fmt"

	"github.com/pipelined/sox/input"
	"github.com/pipelined/sox/pcm"
)

// Policy selects how multiple inputs are combined into one stream.
type Policy int

const (
	// Sequence processes inputs one after another through one effect
	// chain. The chain is not rebuilt between inputs: the scheduler
	// continues with the same chain when the next input's rate and
	// channels match it, and stops with an error when they do not.
	Sequence Policy = iota
	// Concatenate processes inputs end-to-end as a single stream;
	// requires identical rate and channel count across all inputs.
	Concatenate
	// Mix sums all inputs simultaneously, output channels = max over
	// inputs.
	Mix
	// Merge interleaves all inputs side by side, output channels = sum
	// over inputs.
	Merge
)

func (p Policy) String() string {
	switch p {
	case Sequence:
		return "sequence"
	case Concatenate:
		return "concatenate"
	case Mix:
		return "mix"
	case Merge:
		return "merge"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ErrRateMismatch is returned by New when concatenate/mix/merge inputs
// disagree on sample rate, a fatal condition per spec §4.1.
var ErrRateMismatch = errors.New("combine: inputs have different sample rates")

// ErrChannelMismatch is returned by New when concatenate inputs
// disagree on channel count.
var ErrChannelMismatch = errors.New("combine: inputs have different channel counts")

// ErrNoInputs is returned when a Combiner is constructed with no
// inputs at all.
var ErrNoInputs = errors.New("combine: no inputs")

// Combiner reads from a fixed set of inputs per Policy and exposes a
// single pull-style Read, matching the shape every downstream chain
// stage expects.
type Combiner struct {
	Policy Policy
	Inputs []*input.Input

	// Rate and Channels describe the stream the combiner emits for
	// Concatenate/Mix/Merge. Sequence instead reports the active
	// input's own signal via Current().
	Rate     int
	Channels int

	// Clipped counts saturations caused by the combiner's own summing
	// (Mix) or is always zero (Sequence, Concatenate, Merge never
	// saturate: they only interleave or pass through).
	Clipped int

	current int    // index into Inputs; meaningful for Sequence/Concatenate
	active  []bool // per-input liveness; meaningful for Mix/Merge
}

// ErrInputBoundary is returned by Sequence's Read when the active
// input has just been exhausted and the next input becomes current;
// the caller checks the next input's signal (via Current) against the
// chain it already has before reading again.
var ErrInputBoundary = errors.New("combine: input boundary reached, check next input's signal before continuing")

// New validates inputs against Policy's agreement rules and returns a
// ready-to-read Combiner.
func New(policy Policy, inputs []*input.Input) (*Combiner, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	c := &Combiner{Policy: policy, Inputs: inputs}

	switch policy {
	case Sequence:
		c.Rate = inputs[0].Signal.Rate
		c.Channels = inputs[0].Signal.Channels
	case Concatenate:
		first := inputs[0].Signal
		for _, in := range inputs[1:] {
			if in.Signal.Rate != first.Rate {
				return nil, ErrRateMismatch
			}
			if !first.SameRateAndChannels(in.Signal) {
				return nil, ErrChannelMismatch
			}
		}
		c.Rate, c.Channels = first.Rate, first.Channels
	case Mix:
		rate := inputs[0].Signal.Rate
		maxChan := 0
		for _, in := range inputs {
			if in.Signal.Rate != rate {
				return nil, ErrRateMismatch
			}
			if in.Signal.Channels > maxChan {
				maxChan = in.Signal.Channels
			}
		}
		c.Rate, c.Channels = rate, maxChan
	case Merge:
		rate := inputs[0].Signal.Rate
		sum := 0
		for _, in := range inputs {
			if in.Signal.Rate != rate {
				return nil, ErrRateMismatch
			}
			sum += in.Signal.Channels
		}
		c.Rate, c.Channels = rate, sum
	default:
		return nil, fmt.Errorf("combine: unknown policy %v", policy)
	}
	return c, nil
}

// Current reports the signal of the input presently being read. For
// Concatenate/Mix/Merge this always equals (Rate, Channels); for
// Sequence it is the active input's own native signal, which the
// scheduler compares against the existing chain at each input boundary.
func (c *Combiner) Current() pcm.Descriptor {
	if c.Policy == Sequence && c.current < len(c.Inputs) {
		return c.Inputs[c.current].Signal
	}
	return pcm.Descriptor{Rate: c.Rate, Channels: c.Channels}
}

// Read fills buf with combined samples, dispatching to the policy's
// own implementation.
func (c *Combiner) Read(buf pcm.Buffer) (int, error) {
	switch c.Policy {
	case Sequence:
		return c.readSequence(buf)
	case Concatenate:
		return c.readConcatenate(buf)
	case Mix:
		return c.readMix(buf)
	case Merge:
		return c.readMerge(buf)
	default:
		return 0, fmt.Errorf("combine: unknown policy %v", c.Policy)
	}
}

// PredictedLength returns the combiner's predicted output length in
// wide samples, or (0, false) if unknown (spec §4.1's length
// prediction rules). knownLengths must align positionally with Inputs;
// a zero entry means that input's length is itself unknown.
func PredictedLength(policy Policy, knownLengths []int64, anyLengthChangingEffect bool) (int64, bool) {
	if anyLengthChangingEffect {
		return 0, false
	}
	switch policy {
	case Sequence:
		return 0, false
	case Concatenate:
		var sum int64
		for _, l := range knownLengths {
			if l <= 0 {
				return 0, false
			}
			sum += l
		}
		return sum, true
	case Mix, Merge:
		var max int64
		for _, l := range knownLengths {
			if l <= 0 {
				return 0, false
			}
			if l > max {
				max = l
			}
		}
		return max, true
	default:
		return 0, false
	}
}

// SkipCurrent forces the active input to be treated as exhausted,
// advancing to the next one. Meaningful only for Sequence and
// Concatenate (spec §4.3's "skip current input" signal); a no-op
// otherwise, since Mix/Merge read all inputs simultaneously.
func (c *Combiner) SkipCurrent() {
	switch c.Policy {
	case Sequence, Concatenate:
		if c.current < len(c.Inputs) {
			c.Inputs[c.current].Close()
			c.current++
		}
	}
}

// Close closes every input's underlying handle.
func (c *Combiner) Close() error {
	var firstErr error
	for _, in := range c.Inputs {
		if err := in.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
