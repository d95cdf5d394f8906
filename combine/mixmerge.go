package combine

import (
	"errors"
	"io"

	"github.com/pipelined/sox/codec"
	"github.com/pipelined/sox/pcm"
)

func (c *Combiner) ensureActive() {
	if c.active == nil {
		c.active = make([]bool, len(c.Inputs))
		for i := range c.active {
			c.active[i] = true
		}
	}
}

// readMix sums all active inputs into buf, saturating per spec §4.1:
// each output channel is the saturating sum of the corresponding input
// sample for every input that has that channel; an input that has
// already ended simply stops contributing (silent), which is what
// makes the combiner's overall length equal the longest input.
func (c *Combiner) readMix(buf pcm.Buffer) (int, error) {
	c.ensureActive()
	wide := buf.WideLen()
	buf.Zero()
	anyActive := false
	maxN := 0

	for idx, in := range c.Inputs {
		if !c.active[idx] {
			continue
		}
		scratch := pcm.NewBuffer(in.Signal.Channels, wide)
		n, err := in.Read(scratch)
		if n > 0 {
			anyActive = true
			if n > maxN {
				maxN = n
			}
			chans := in.Signal.Channels
			if buf.Channels < chans {
				chans = buf.Channels
			}
			for i := 0; i < n; i++ {
				for ch := 0; ch < chans; ch++ {
					sum, clipped := pcm.SaturatingAdd(buf.Sample(i, ch), scratch.Sample(i, ch))
					if clipped {
						c.Clipped++
					}
					buf.SetSample(i, ch, sum)
				}
			}
		}
		if errors.Is(err, codec.ErrEOF) {
			c.Inputs[idx].Close()
			c.active[idx] = false
		} else if err != nil {
			return 0, err
		}
	}

	if !anyActive {
		return 0, io.EOF
	}
	return maxN, nil
}

// readMerge interleaves every active input side by side into disjoint
// channel ranges of buf; an input shorter than the others pads its
// range with silence until all inputs end, per spec §4.1.
func (c *Combiner) readMerge(buf pcm.Buffer) (int, error) {
	c.ensureActive()
	wide := buf.WideLen()
	buf.Zero()
	anyActive := false
	maxN := 0
	chanOffset := 0

	for idx, in := range c.Inputs {
		inChans := in.Signal.Channels
		if c.active[idx] {
			scratch := pcm.NewBuffer(inChans, wide)
			n, err := in.Read(scratch)
			if n > 0 {
				anyActive = true
				if n > maxN {
					maxN = n
				}
				for i := 0; i < n; i++ {
					for ch := 0; ch < inChans; ch++ {
						buf.SetSample(i, chanOffset+ch, scratch.Sample(i, ch))
					}
				}
			}
			if errors.Is(err, codec.ErrEOF) {
				c.Inputs[idx].Close()
				c.active[idx] = false
			} else if err != nil {
				return 0, err
			}
		}
		chanOffset += inChans
	}

	if !anyActive {
		return 0, io.EOF
	}
	return maxN, nil
}
