package chain

import (
	"errors"
	"fmt"

	"github.com/pipelined/sox/effect"
	"github.com/pipelined/sox/pcm"
)

// Flow pulls in through this stage's effect (and twin, if stereo-split
// is active) and appends the result to the stage's own buffer at Olen,
// per spec §4.3's flow() and §4.4's stereo splitter.
func (s *Stage) Flow(in pcm.Buffer) (consumed, produced int, err error) {
	out := s.Buf.Slice(s.Olen, s.Buf.WideLen())
	if s.Twin == nil {
		consumed, produced, err = s.Primary.Flow(in, out)
		s.Olen += produced
		return consumed, produced, err
	}
	return s.flowSplit(in, out)
}

// flowSplit deinterleaves a stereo buffer into left/right mono scratch
// buffers, flows each half through Primary (left) and Twin (right)
// independently, and re-interleaves the results. The scheduler assumes
// (and this asserts) that both halves produce equal counts.
func (s *Stage) flowSplit(in, out pcm.Buffer) (consumed, produced int, err error) {
	wide := in.WideLen()
	l := pcm.NewBuffer(1, wide)
	r := pcm.NewBuffer(1, wide)
	for i := 0; i < wide; i++ {
		l.SetSample(i, 0, in.Sample(i, 0))
		r.SetSample(i, 0, in.Sample(i, 1))
	}

	outWide := out.WideLen()
	lOut := pcm.NewBuffer(1, outWide)
	rOut := pcm.NewBuffer(1, outWide)

	lc, lp, lerr := s.Primary.Flow(l, lOut)
	if lerr != nil && !errors.Is(lerr, effect.ErrEOF) {
		return lc, lp, lerr
	}
	rc, rp, rerr := s.Twin.Flow(r, rOut)
	if rerr != nil && !errors.Is(rerr, effect.ErrEOF) {
		return rc, rp, rerr
	}
	if lp != rp {
		return 0, 0, fmt.Errorf("chain: %s: stereo twin produced mismatched counts: left=%d right=%d", s.Name, lp, rp)
	}

	for i := 0; i < lp; i++ {
		out.SetSample(i, 0, lOut.Sample(i, 0))
		out.SetSample(i, 1, rOut.Sample(i, 0))
	}
	s.Olen += lp

	consumed = lc
	if rc < consumed {
		consumed = rc
	}
	if lerr != nil {
		return consumed, lp, lerr
	}
	if rerr != nil {
		return consumed, lp, rerr
	}
	return consumed, lp, nil
}

// Drain extracts buffered residue from this stage's effect (and twin)
// once its upstream input is exhausted (spec §4.3 "Drain phase").
func (s *Stage) Drain() (produced int, err error) {
	out := s.Buf.Slice(s.Olen, s.Buf.WideLen())
	if s.Twin == nil {
		produced, err = s.Primary.Drain(out)
		s.Olen += produced
		return produced, err
	}

	outWide := out.WideLen()
	lOut := pcm.NewBuffer(1, outWide)
	rOut := pcm.NewBuffer(1, outWide)
	lp, lerr := s.Primary.Drain(lOut)
	if lerr != nil && !errors.Is(lerr, effect.ErrEOF) {
		return lp, lerr
	}
	rp, rerr := s.Twin.Drain(rOut)
	if rerr != nil && !errors.Is(rerr, effect.ErrEOF) {
		return rp, rerr
	}
	if lp != rp {
		return 0, fmt.Errorf("chain: %s: stereo twin drained mismatched counts: left=%d right=%d", s.Name, lp, rp)
	}
	for i := 0; i < lp; i++ {
		out.SetSample(i, 0, lOut.Sample(i, 0))
		out.SetSample(i, 1, rOut.Sample(i, 0))
	}
	s.Olen += lp
	if lerr != nil {
		return lp, lerr
	}
	return lp, rerr
}
