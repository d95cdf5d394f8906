package effect

import (
	"fmt"
	"strconv"

	"github.com/pipelined/sox/pcm"
)

// Vol scales every sample by a constant multiplier, saturating on
// overflow (spec §8 scenario 6). It is MultiChan since scaling is
// channel-independent.
type Vol struct {
	Defaults
	Multiplier float64
	Clipped    int
}

// NewVol returns a Vol effect defaulting to unity gain.
func NewVol() Effect { return &Vol{Multiplier: 1.0} }

func (v *Vol) Name() string  { return "vol" }
func (v *Vol) Usage() string { return "vol GAIN" }
func (v *Vol) Flags() Flags  { return MultiChan }

func (v *Vol) GetOpts(argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	if len(argv) != 1 {
		return fmt.Errorf("vol: expected exactly one argument, got %d", len(argv))
	}
	g, err := strconv.ParseFloat(argv[0], 64)
	if err != nil {
		return fmt.Errorf("vol: invalid gain %q: %w", argv[0], err)
	}
	v.Multiplier = g
	return nil
}

func (v *Vol) Start(in Signal) (Signal, StartResult, error) {
	if v.Multiplier == 1.0 {
		return in, StartNull, nil
	}
	return in, StartOK, nil
}

func (v *Vol) Flow(in, out pcm.Buffer) (int, int, error) {
	n := in.WideLen()
	if n > out.WideLen() {
		n = out.WideLen()
	}
	for i := 0; i < n; i++ {
		for c := 0; c < in.Channels; c++ {
			scaled, clipped := in.Sample(i, c).ScaleBy(v.Multiplier)
			if clipped {
				v.Clipped++
			}
			out.SetSample(i, c, scaled)
		}
	}
	return n, n, nil
}

// ClipCount reports saturations this Vol instance has caused so far.
func (v *Vol) ClipCount() int { return v.Clipped }
