package effect

import (
	"fmt"
	"math"
	"strconv"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/pipelined/sox/pcm"
)

// Resample is the default rate converter the chain builder inserts when
// the combiner's rate and the output's disagree and no user effect
// claims the Rate capability (spec §4.2 steps 5/7).
//
// It wraps github.com/tphakala/go-audio-resampling the same way
// haivivi-giztoy's resampler.Soxr does: canonical samples are
// normalized to float64 in [-1, 1], resampled, then re-quantized and
// saturated back to canonical form. Unlike Soxr (which resamples fixed
// 16-bit PCM bytes), we work directly against pcm.Buffer's int32
// canonical range.
type Resample struct {
	Defaults

	TargetRate int

	channels int
	engine   resampling.Resampler
	leftover []float64 // interleaved wide samples not yet emitted
}

// NewResample returns a Resample effect with no target rate set.
func NewResample() Effect { return &Resample{} }

func (r *Resample) Name() string  { return "resample" }
func (r *Resample) Usage() string { return "resample RATE" }
func (r *Resample) Flags() Flags  { return MultiChan | Rate }

func (r *Resample) GetOpts(argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	if len(argv) != 1 {
		return fmt.Errorf("resample: expected exactly one argument, got %d", len(argv))
	}
	rate, err := strconv.Atoi(argv[0])
	if err != nil || rate <= 0 {
		return fmt.Errorf("resample: invalid rate %q", argv[0])
	}
	r.TargetRate = rate
	return nil
}

func (r *Resample) Start(in Signal) (Signal, StartResult, error) {
	if r.TargetRate == 0 || r.TargetRate == in.Rate {
		return in, StartNull, nil
	}
	engine, err := resampling.New(&resampling.Config{
		InputRate:  float64(in.Rate),
		OutputRate: float64(r.TargetRate),
		Channels:   in.Channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return Signal{}, StartEOF, fmt.Errorf("resample: %w", err)
	}
	r.engine = engine
	r.channels = in.Channels
	return Signal{Rate: r.TargetRate, Channels: in.Channels}, StartOK, nil
}

const canonicalScale = float64(1 << 31)

func toFloat(s pcm.Sample) float64 { return float64(s) / canonicalScale }

func fromFloat(f float64) pcm.Sample {
	if f > 1.0 {
		f = 1.0
	} else if f < -1.0 {
		f = -1.0
	}
	s, _ := pcm.Saturate(int64(math.Round(f * canonicalScale)))
	return s
}

func (r *Resample) Flow(in, out pcm.Buffer) (int, int, error) {
	consumed := in.WideLen()
	if consumed > 0 {
		input := make([]float64, consumed*in.Channels)
		for i := 0; i < consumed; i++ {
			for c := 0; c < in.Channels; c++ {
				input[i*in.Channels+c] = toFloat(in.Sample(i, c))
			}
		}
		produced, err := r.engine.Process(input)
		if err != nil {
			return 0, 0, fmt.Errorf("resample: %w", err)
		}
		r.leftover = append(r.leftover, produced...)
	}
	return consumed, r.drainInto(out), nil
}

func (r *Resample) drainInto(out pcm.Buffer) int {
	wide := len(r.leftover) / r.channels
	if wide > out.WideLen() {
		wide = out.WideLen()
	}
	for i := 0; i < wide; i++ {
		for c := 0; c < r.channels; c++ {
			out.SetSample(i, c, fromFloat(r.leftover[i*r.channels+c]))
		}
	}
	r.leftover = r.leftover[wide*r.channels:]
	return wide
}

func (r *Resample) Drain(out pcm.Buffer) (int, error) {
	n := r.drainInto(out)
	if n == 0 {
		return 0, ErrEOF
	}
	return n, nil
}
