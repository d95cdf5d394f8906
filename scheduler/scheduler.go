// Package scheduler implements the pull scheduler of spec §4.3 — "the
// heart" of the engine: a single-threaded, cooperative main loop that
// refills the chain's sentinel stage from the combiner, sweeps the
// chain left to right (repeating the sweep until a full pass makes no
// progress) rather than pulling backwards from the sink, writes
// whatever reaches the sink, and drains buffered residue once input is
// exhausted.
//
// Grounded on pipelined-audio/mixer.go's mix() function: a plain,
// single-threaded accounting loop over per-input frame state,
// repurposed here from a goroutine pulling off channels into a
// function pulling from in-process chain.Stage buffers.
package scheduler

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pipelined/sox/chain"
	"github.com/pipelined/sox/codec"
	"github.com/pipelined/sox/combine"
	"github.com/pipelined/sox/internal/abortflag"
	"github.com/pipelined/sox/internal/clip"
)

// DefaultStatusInterval is how often the status emitter may be
// invoked during steady-state processing (spec §4.3, "≈150 ms").
const DefaultStatusInterval = 150 * time.Millisecond

// StatusFunc receives progress updates. The scheduler calls it at most
// once per StatusInterval, plus once unconditionally at end-of-stream
// or on a fatal error.
type StatusFunc func(Status)

// Status is one progress snapshot.
type Status struct {
	ReadWide   int64
	TotalWide  int64 // 0 if the combiner couldn't predict a length
	OutputWide int64
	Clipped    int
	Final      bool
}

// Scheduler drives one run: combiner -> chain -> sink.
type Scheduler struct {
	Chain    *chain.Chain
	Combiner *combine.Combiner
	Sink     codec.Handle
	// OutputPath, if non-empty, is deleted on abort without success
	// when it names a regular file (spec §4.3 "Abort and skip").
	OutputPath string

	Abort *abortflag.Flag
	Skip  *abortflag.Skip

	Status         StatusFunc
	StatusInterval time.Duration

	Clip clip.Report

	TotalWide int64 // predicted length, 0 if unknown

	inputEff         int
	readWide         int64
	outputWide       int64
	lastStatus       time.Time
	lastCombinerClip int
	success          bool
}

// New returns a Scheduler ready to Run, with abort/skip flags
// allocated and the default status interval.
func New(c *chain.Chain, combiner *combine.Combiner, sink codec.Handle) *Scheduler {
	return &Scheduler{
		Chain:          c,
		Combiner:       combiner,
		Sink:           sink,
		Abort:          abortflag.New(),
		Skip:           &abortflag.Skip{},
		StatusInterval: DefaultStatusInterval,
	}
}

// Run executes the main loop until the stream is exhausted, an abort
// is requested, or a fatal error occurs.
func (s *Scheduler) Run() error {
	for {
		if s.Abort.IsSet() {
			return s.abortCleanup()
		}

		n, err := s.refillSentinel()
		if err != nil && err != errEOF {
			return s.fail(err)
		}
		if n == 0 && err == errEOF {
			break
		}
		s.readWide += int64(n)

		if err := s.flowEffectOut(); err != nil {
			return s.fail(err)
		}
		s.maybeEmitStatus(false)

		if s.inputEff > 0 {
			// an effect stage reported EOF (e.g. trim reached its
			// length); no further reads are needed.
			break
		}
	}

	if err := s.drainPhase(); err != nil {
		return s.fail(err)
	}
	s.success = true
	s.foldClips()
	s.emitStatus(true)
	return nil
}

// foldClips rolls the combiner's per-input volume/replay-gain clips and
// every stage's per-effect saturation clips into s.Clip, alongside the
// combiner's own mix-stage counter already tallied by refillSentinel
// (spec §4.5: all three saturation sites reported at shutdown).
func (s *Scheduler) foldClips() {
	for _, in := range s.Combiner.Inputs {
		s.Clip.Add("input:"+in.Filename, in.Clipped)
	}
	for _, stage := range s.Chain.Stages[1:] {
		s.Clip.Add("effect:"+stage.Name, stage.Primary.ClipCount())
		if stage.Twin != nil {
			s.Clip.Add("effect:"+stage.Name+":twin", stage.Twin.ClipCount())
		}
	}
}

var errEOF = errors.New("scheduler: sentinel exhausted")

// refillSentinel reads one block from the combiner into the chain's
// sentinel stage, applying the sequence-policy splice rule: a signal
// change between successive inputs is fatal (spec §4.1 "otherwise
// stop"), matching combine's agreement is treated as a seamless
// continuation.
func (s *Scheduler) refillSentinel() (int, error) {
	sentinel := s.Chain.Stages[0]
	sentinel.ResetIfDrained()

	if s.Skip.Consume() {
		s.Combiner.SkipCurrent()
	}

	window := sentinel.Buf.Slice(sentinel.Olen, sentinel.Buf.WideLen())
	if window.WideLen() == 0 {
		return 0, nil // no room yet; caller will flow_effect_out to drain it first
	}

	n, err := s.Combiner.Read(window)
	if errors.Is(err, combine.ErrInputBoundary) {
		current := s.Combiner.Current()
		if current.Rate != sentinel.Out.Rate || current.Channels != sentinel.Out.Channels {
			return 0, fmt.Errorf("scheduler: successive inputs disagree on signal (chain built for %d Hz/%d ch, next input is %d Hz/%d ch)",
				sentinel.Out.Rate, sentinel.Out.Channels, current.Rate, current.Channels)
		}
		return s.refillSentinel()
	}
	if err != nil {
		if n == 0 {
			return 0, errEOF
		}
		return n, err
	}
	sentinel.Olen += n
	s.Clip.Add("combine", s.Combiner.Clipped-s.lastCombinerClip)
	s.lastCombinerClip = s.Combiner.Clipped
	return n, nil
}

func (s *Scheduler) fail(err error) error {
	s.foldClips()
	s.emitStatus(true)
	for _, stage := range s.Chain.Stages[1:] {
		stage.Primary.Stop()
		if stage.Twin != nil {
			stage.Twin.Stop()
		}
	}
	return err
}

// abortCleanup stops every effect and deletes the output file if it
// is a regular file and no success was ever signaled (spec §4.3).
func (s *Scheduler) abortCleanup() error {
	s.foldClips()
	for _, stage := range s.Chain.Stages[1:] {
		stage.Primary.Kill()
		if stage.Twin != nil {
			stage.Twin.Kill()
		}
	}
	if !s.success && s.OutputPath != "" {
		if info, err := os.Stat(s.OutputPath); err == nil && info.Mode().IsRegular() {
			os.Remove(s.OutputPath)
		}
	}
	return errAborted
}

// errAborted is returned by Run when the abort flag was raised.
var errAborted = errors.New("scheduler: aborted")
