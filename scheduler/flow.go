package scheduler

import (
	"errors"
	"fmt"

	"github.com/pipelined/sox/effect"
)

// flowEffectOut implements spec §4.3's flow_effect_out(): sweep the
// chain left to right, pulling each stage's available input through
// its effect and appending whatever lands in the final stage to the
// sink. It runs repeatedly until a full sweep makes no progress at
// all, since a single pass may not drain every stage's full backlog
// (fixed per-stage buffer capacity can force partial flows).
func (s *Scheduler) flowEffectOut() error {
	stages := s.Chain.Stages
	last := len(stages) - 1

	for {
		progressed := false

		for idx := 1; idx <= last; idx++ {
			cur := stages[idx]
			upstream := stages[idx-1]
			cur.ResetIfDrained()

			in := upstream.Available()
			room := cur.Buf.WideLen() - cur.Olen
			if in.WideLen() > 0 && room > 0 {
				window := in.Slice(0, min(in.WideLen(), room))
				consumed, produced, err := cur.Flow(window)
				upstream.Odone += consumed
				if err != nil && !errors.Is(err, effect.ErrEOF) {
					return fmt.Errorf("scheduler: %s: %w", cur.Name, err)
				}
				if errors.Is(err, effect.ErrEOF) && (s.inputEff == 0 || idx < s.inputEff) {
					s.inputEff = idx
				}
				if consumed > 0 || produced > 0 {
					progressed = true
				}
			}
		}

		sink := stages[last]
		for sink.Odone < sink.Olen {
			if err := s.writeSink(sink); err != nil {
				return err
			}
			progressed = true
		}

		if !progressed {
			return nil
		}
	}
}

// writeSink flushes the final stage's available window to the output
// handle. A short write is allowed (the caller loops until the window
// is flushed), but a zero-width write with no error is treated as
// fatal (spec §4.3).
func (s *Scheduler) writeSink(sink *Stage) error {
	window := sink.Available()
	n, err := s.Sink.Write(window)
	if err != nil {
		return fmt.Errorf("scheduler: sink write: %w", err)
	}
	if n == 0 && window.WideLen() > 0 {
		return errors.New("scheduler: sink accepted zero samples")
	}
	sink.Odone += n
	s.outputWide += int64(n)
	return nil
}

// drainPhase runs once the sentinel is exhausted: repeatedly flow
// residual buffered samples through to the sink until a full sweep
// makes no progress anywhere (spec §4.3's drain phase), switching each
// stage from Flow to Drain once its upstream has nothing left at all.
func (s *Scheduler) drainPhase() error {
	stages := s.Chain.Stages
	last := len(stages) - 1

	for round := 0; ; round++ {
		progressed := false

		for idx := 1; idx <= last; idx++ {
			cur := stages[idx]
			upstream := stages[idx-1]
			cur.ResetIfDrained()

			in := upstream.Available()
			room := cur.Buf.WideLen() - cur.Olen
			if room <= 0 {
				continue
			}

			if in.WideLen() > 0 {
				window := in.Slice(0, min(in.WideLen(), room))
				consumed, produced, err := cur.Flow(window)
				upstream.Odone += consumed
				if err != nil && !errors.Is(err, effect.ErrEOF) {
					return fmt.Errorf("scheduler: %s: %w", cur.Name, err)
				}
				if consumed > 0 || produced > 0 {
					progressed = true
				}
				continue
			}

			produced, err := cur.Drain()
			if err != nil && !errors.Is(err, effect.ErrEOF) {
				return fmt.Errorf("scheduler: %s: drain: %w", cur.Name, err)
			}
			if produced > 0 {
				progressed = true
			}
		}

		sink := stages[last]
		for sink.Odone < sink.Olen {
			if err := s.writeSink(sink); err != nil {
				return err
			}
			progressed = true
		}

		if !progressed {
			return nil
		}
		if round > len(stages)*4+64 {
			return errors.New("scheduler: drain phase did not converge")
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
