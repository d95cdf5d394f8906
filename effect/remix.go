package effect

import (
	"fmt"
	"strconv"

	"github.com/pipelined/sox/pcm"
)

// Remix is the default channel-count converter the chain builder
// inserts when the combiner's channel count and the output's disagree
// and no user effect claims the Chan capability (spec §4.2 steps 4/8).
//
// Downmixing averages input channels round-robin into the output
// channels; upmixing broadcasts each output channel from the
// corresponding input channel modulo the input count. This mirrors the
// stereo<->mono special case of haivivi-giztoy's resampler.go
// (stereoToMono averages L+R, monoToStereo duplicates), generalized to
// N channels since the chain builder must handle arbitrary combiner
// channel counts, not just stereo.
type Remix struct {
	Defaults

	// Target is the channel count to convert to. When zero, GetOpts or
	// the chain builder must set it before Start.
	Target int
}

// NewRemix returns a Remix effect with no target set; the chain builder
// sets Target directly when auto-inserting it (spec §4.2 step 9 calls
// GetOpts with empty args for auto-inserted effects, so Target must be
// assignable without argv too).
func NewRemix() Effect { return &Remix{} }

func (r *Remix) Name() string  { return "remix" }
func (r *Remix) Usage() string { return "remix CHANNELS" }
func (r *Remix) Flags() Flags  { return MultiChan | Chan }

func (r *Remix) GetOpts(argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	if len(argv) != 1 {
		return fmt.Errorf("remix: expected exactly one argument, got %d", len(argv))
	}
	n, err := strconv.Atoi(argv[0])
	if err != nil || n <= 0 {
		return fmt.Errorf("remix: invalid channel count %q", argv[0])
	}
	r.Target = n
	return nil
}

func (r *Remix) Start(in Signal) (Signal, StartResult, error) {
	if r.Target == 0 || r.Target == in.Channels {
		return in, StartNull, nil
	}
	return Signal{Rate: in.Rate, Channels: r.Target}, StartOK, nil
}

func (r *Remix) Flow(in, out pcm.Buffer) (int, int, error) {
	n := in.WideLen()
	if n > out.WideLen() {
		n = out.WideLen()
	}
	switch {
	case out.Channels < in.Channels:
		r.downmix(in, out, n)
	default:
		r.upmix(in, out, n)
	}
	return n, n, nil
}

func (r *Remix) downmix(in, out pcm.Buffer, n int) {
	assigned := make([]int, out.Channels)
	for c := 0; c < in.Channels; c++ {
		assigned[c%out.Channels]++
	}
	for i := 0; i < n; i++ {
		sums := make([]int64, out.Channels)
		for c := 0; c < in.Channels; c++ {
			sums[c%out.Channels] += int64(in.Sample(i, c))
		}
		for c := 0; c < out.Channels; c++ {
			avg := sums[c]
			if assigned[c] > 0 {
				avg /= int64(assigned[c])
			}
			s, _ := pcm.Saturate(avg)
			out.SetSample(i, c, s)
		}
	}
}

func (r *Remix) upmix(in, out pcm.Buffer, n int) {
	for i := 0; i < n; i++ {
		for c := 0; c < out.Channels; c++ {
			out.SetSample(i, c, in.Sample(i, c%in.Channels))
		}
	}
}
