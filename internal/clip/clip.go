// Package clip aggregates saturation/clipping counters across a run:
// per-input, per-effect-stage, and the combiner's own mix-stage
// counter, rolled up into the totals the status emitter and shutdown
// summary report (spec §4.5).
package clip

// Counter tallies clip events for one source within the pipeline (an
// input, a chain stage, or the combiner).
type Counter struct {
	Name    string
	Clipped int
}

// Report is the aggregate clip accounting for one run.
type Report struct {
	Counters []Counter
}

// Add records n additional clip events against name, creating a new
// counter if this is the first event seen for it.
func (r *Report) Add(name string, n int) {
	if n == 0 {
		return
	}
	for i := range r.Counters {
		if r.Counters[i].Name == name {
			r.Counters[i].Clipped += n
			return
		}
	}
	r.Counters = append(r.Counters, Counter{Name: name, Clipped: n})
}

// Total sums clip events across every counter.
func (r *Report) Total() int {
	total := 0
	for _, c := range r.Counters {
		total += c.Clipped
	}
	return total
}

// Clipped reports whether any clipping occurred at all.
func (r *Report) Clipped() bool { return r.Total() > 0 }
