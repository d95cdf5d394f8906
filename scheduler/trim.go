package scheduler

import (
	"github.com/pipelined/sox/chain"
	"github.com/pipelined/sox/codec"
	"github.com/pipelined/sox/combine"
	"github.com/pipelined/sox/effect"
)

// ApplyTrimFastPath implements spec §4.3's trim fast-path: when the
// combiner has exactly one input, that input's handle supports Seek,
// and the built chain's first real stage is a Trim effect with a
// pending start offset, skip straight to the seek point on the input
// handle instead of discarding samples one block at a time through
// Flow.
func ApplyTrimFastPath(c *chain.Chain, combiner *combine.Combiner) error {
	if len(combiner.Inputs) != 1 {
		return nil
	}
	if len(c.Stages) < 2 {
		return nil
	}
	trim, ok := c.Stages[1].Primary.(*effect.Trim)
	if !ok {
		return nil
	}
	offset := trim.StartOffset()
	if offset <= 0 {
		return nil
	}

	handle := combiner.Inputs[0].Handle
	if handle == nil || !handle.Flags().Has(codec.SupportsSeek) {
		return nil
	}
	if err := handle.Seek(offset); err != nil {
		return err
	}
	trim.ClearStart()
	return nil
}
