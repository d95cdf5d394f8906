// Package engine wires an input → combine → chain → scheduler run
// together: the library-level entry point cmd/sox calls into, and the
// natural place for anything that needs to see the whole pipeline at
// once (startup diagnostics, clip-count warnings at shutdown).
package engine

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pipelined/sox/chain"
	"github.com/pipelined/sox/codec"
	"github.com/pipelined/sox/combine"
	"github.com/pipelined/sox/config"
	"github.com/pipelined/sox/effect"
	"github.com/pipelined/sox/input"
	"github.com/pipelined/sox/internal/abortflag"
	"github.com/pipelined/sox/pcm"
	"github.com/pipelined/sox/scheduler"
)

// InputSpec names one input file and the per-input options (type hint,
// volume, replay gain) the combiner should apply to it.
type InputSpec struct {
	Filename string
	Options  input.Options
}

// Run describes one end-to-end invocation: N inputs combined by Policy,
// flowed through EffectSpecs, written to Output.
type Run struct {
	Config  config.Config
	Inputs  []InputSpec
	Output  string
	Effects []chain.EffectSpec

	// OutputCodec resolves the codec to open Output against; if nil,
	// Execute resolves one from Output's extension via codec.ByPath.
	OutputCodec codec.Codec
	// OutputSignal, if non-zero, forces the output descriptor (used for
	// headerless/device sinks); otherwise Execute derives it from the
	// combiner's own signal.
	OutputSignal pcm.Descriptor

	Logger *log.Logger
	Status scheduler.StatusFunc

	// AbortFlag and SkipFlag, when set by the caller before Execute
	// runs, let another goroutine (e.g. a signal handler) reach the
	// running scheduler's abort/skip signals. Execute allocates its own
	// if left nil, but then nothing outside Execute can raise them.
	AbortFlag *abortflag.Flag
	SkipFlag  *abortflag.Skip
}

// Execute opens every input, builds the combiner and chain, and runs
// the scheduler to completion. It logs a warning with the total clip
// count when any clipping occurred and returns any fatal error.
func (r *Run) Execute() error {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	if len(r.Inputs) == 0 {
		return fmt.Errorf("engine: no inputs given")
	}

	policy, err := r.Config.Policy()
	if err != nil {
		return err
	}

	var ins []*input.Input
	for i, spec := range r.Inputs {
		opts := spec.Options
		if opts.Volume == 0 && policy == combine.Mix {
			opts.Volume = input.DefaultMixVolume(len(r.Inputs))
		}
		in, err := input.Open(spec.Filename, opts)
		if err != nil {
			for _, opened := range ins {
				opened.Close()
			}
			return fmt.Errorf("engine: input %d: %w", i, err)
		}
		ins = append(ins, in)
	}

	combiner, err := combine.New(policy, ins)
	if err != nil {
		closeAll(ins)
		return fmt.Errorf("engine: %w", err)
	}
	logger.Info("combiner ready", "policy", policy, "inputs", len(ins), "rate", combiner.Rate, "channels", combiner.Channels)

	outSig := r.OutputSignal
	if outSig.Rate == 0 {
		outSig.Rate = combiner.Rate
	}
	if outSig.Channels == 0 {
		outSig.Channels = combiner.Channels
	}
	if outSig.SampleSize == 0 {
		outSig.SampleSize = 2
	}

	oc := r.OutputCodec
	if oc == nil {
		var ok bool
		oc, ok = codec.ByPath(r.Output)
		if !ok {
			closeAll(ins)
			return fmt.Errorf("engine: no codec for output %q", r.Output)
		}
	}
	sink, err := oc.OpenWrite(r.Output, outSig)
	if err != nil {
		closeAll(ins)
		return fmt.Errorf("engine: opening output %q: %w", r.Output, err)
	}

	combinerSig := effect.Signal{Rate: combiner.Rate, Channels: combiner.Channels}
	outputEffSig := effect.Signal{Rate: outSig.Rate, Channels: outSig.Channels}

	capacity := r.Config.BufferCapacity
	c, err := chain.Build(combinerSig, outputEffSig, r.Effects, capacity)
	if err != nil {
		closeAll(ins)
		sink.Close()
		return fmt.Errorf("engine: building chain: %w", err)
	}
	if err := c.Start(); err != nil {
		closeAll(ins)
		sink.Close()
		return fmt.Errorf("engine: starting chain: %w", err)
	}

	if err := scheduler.ApplyTrimFastPath(c, combiner); err != nil {
		logger.Warn("trim fast-path seek failed, falling back to sample-by-sample skip", "err", err)
	}

	s := scheduler.New(c, combiner, sink)
	s.OutputPath = r.Output
	s.Status = r.Status
	if r.AbortFlag != nil {
		s.Abort = r.AbortFlag
	}
	if r.SkipFlag != nil {
		s.Skip = r.SkipFlag
	}
	if r.Config.StatusIntervalMS > 0 {
		s.StatusInterval = time.Duration(r.Config.StatusIntervalMS) * time.Millisecond
	}
	s.TotalWide = predictedLength(policy, ins, c)

	runErr := s.Run()

	closeAll(ins)
	if cerr := sink.Close(); cerr != nil && runErr == nil {
		runErr = fmt.Errorf("engine: closing output: %w", cerr)
	}

	if s.Clip.Clipped() {
		logger.Warn("clipping occurred", "total", s.Clip.Total())
	}
	if runErr != nil {
		logger.Error("run failed", "err", runErr)
	}
	return runErr
}

// predictedLength resolves each input's known length (if its codec
// handle implements codec.LengthReporter) and whether any built stage
// changes stream length, then defers to combine.PredictedLength for the
// policy-specific arithmetic (spec §4.1/§4.3's predictable-total cases).
func predictedLength(policy combine.Policy, ins []*input.Input, c *chain.Chain) int64 {
	known := make([]int64, len(ins))
	for i, in := range ins {
		if lr, ok := in.Handle.(codec.LengthReporter); ok {
			if l, ok := lr.Length(); ok {
				known[i] = l
			}
		}
	}
	anyLengthChanging := false
	for _, stage := range c.Stages[1:] {
		if stage.Primary.Flags().Has(effect.Length) {
			anyLengthChanging = true
			break
		}
	}
	total, ok := combine.PredictedLength(policy, known, anyLengthChanging)
	if !ok {
		return 0
	}
	return total
}

func closeAll(ins []*input.Input) {
	for _, in := range ins {
		in.Close()
	}
}
