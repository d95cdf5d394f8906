package scheduler

import "time"

// maybeEmitStatus calls Status at most once per StatusInterval, unless
// final is true in which case it always fires (spec §4.3's throttled
// progress reporting, "≈150 ms" with an unconditional final update).
func (s *Scheduler) maybeEmitStatus(final bool) {
	if s.Status == nil {
		return
	}
	interval := s.StatusInterval
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	now := time.Now()
	if !final && now.Sub(s.lastStatus) < interval {
		return
	}
	s.lastStatus = now
	s.emitStatus(final)
}

func (s *Scheduler) emitStatus(final bool) {
	if s.Status == nil {
		return
	}
	s.Status(Status{
		ReadWide:   s.readWide,
		TotalWide:  s.TotalWide,
		OutputWide: s.outputWide,
		Clipped:    s.Clip.Total(),
		Final:      final,
	})
}
