package chain

import (
	"fmt"

	"github.com/pipelined/sox/effect"
)

// Start invokes Start on every stage's Primary (and Twin, if any) in
// order, then compacts away any stage whose Start reported it is a
// no-op in this configuration — the scheduler never sees those (spec
// §4.2 "Start phase").
func (c *Chain) Start() error {
	kept := c.Stages[:1] // sentinel always survives
	running := c.Stages[0].Out

	for _, stage := range c.Stages[1:] {
		twinIn := running
		if stage.Twin != nil {
			twinIn.Channels = 1
		}

		out, result, err := stage.Primary.Start(running)
		if err != nil {
			return fmt.Errorf("chain: %s: start: %w", stage.Name, err)
		}
		if stage.Twin != nil {
			twinOut, twinResult, err := stage.Twin.Start(twinIn)
			if err != nil {
				return fmt.Errorf("chain: %s: twin start: %w", stage.Name, err)
			}
			if twinResult != result {
				return fmt.Errorf("chain: %s: primary and twin disagree on start result", stage.Name)
			}
			_ = twinOut
		}

		switch result {
		case effect.StartEOF:
			return fmt.Errorf("chain: %s: start reported immediate end of stream", stage.Name)
		case effect.StartNull:
			continue // no-op: compacted out, running signal passes through unchanged
		default:
			stage.In = running
			stage.Out = out
			kept = append(kept, stage)
			running = out
		}
	}

	c.Stages = kept
	return nil
}
