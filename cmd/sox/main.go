// Command sox is a thin wiring entry point over the engine: global
// flags for buffer size/combine policy/config file, one or more input
// files, one output file, and a trailing effect chain expressed as
// "name:arg,arg" tokens. It is not the full CLI surface spec.md
// describes — no playlist expansion, no per-file option overrides —
// just enough to exercise the engine end to end.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/pipelined/sox/chain"
	"github.com/pipelined/sox/config"
	"github.com/pipelined/sox/engine"
	"github.com/pipelined/sox/input"
	"github.com/pipelined/sox/internal/abortflag"
	"github.com/pipelined/sox/scheduler"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	flags := pflag.NewFlagSet("sox", pflag.ContinueOnError)
	configFile := flags.StringP("config", "c", "", "path to a YAML config file of engine defaults")
	policy := flags.StringP("combine", "m", "", `combine policy for multiple inputs: sequence, concatenate, mix, merge (default "sequence")`)
	buffer := flags.IntP("buffer", "b", 0, "per-stage buffer capacity in samples (default 8192)")
	volume := flags.Float64P("volume", "v", 0, "volume multiplier applied to every input (default 1.0, or 1/N for mix)")
	replayGain := flags.Bool("replay-gain", false, "fold per-input replay gain into the volume (no codec reads replay-gain metadata, so no gain is supplied from here)")
	quiet := flags.BoolP("quiet", "q", false, "suppress status output")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: sox [options] input... output [effect:arg,arg...]...\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(argv); err != nil {
		return 1
	}

	args := flags.Args()
	if len(args) < 2 {
		flags.Usage()
		return 1
	}

	logger := log.Default()
	if *quiet {
		logger.SetLevel(log.WarnLevel)
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			logger.Error("loading config", "err", err)
			return 1
		}
		cfg = loaded
	}
	if *policy != "" {
		cfg.CombinePolicy = *policy
	}
	if *buffer > 0 {
		cfg.BufferCapacity = *buffer
	}
	if _, err := cfg.Policy(); err != nil {
		logger.Error("bad combine policy", "err", err)
		return 1
	}

	files, output, effectArgs := splitArgs(args)
	if output == "" {
		flags.Usage()
		return 1
	}

	specs := make([]engine.InputSpec, len(files))
	for i, f := range files {
		specs[i] = engine.InputSpec{
			Filename: f,
			Options: input.Options{
				Volume:          *volume,
				ApplyReplayGain: *replayGain,
			},
		}
	}

	effects, err := parseEffectChain(effectArgs)
	if err != nil {
		logger.Error("parsing effect chain", "err", err)
		return 1
	}

	abort := abortflag.New()
	skip := &abortflag.Skip{}
	ctrlc := abortflag.NewCtrlC(skip, abort)

	r := &engine.Run{
		Config:    cfg,
		Inputs:    specs,
		Output:    output,
		Effects:   effects,
		Logger:    logger,
		AbortFlag: abort,
		SkipFlag:  skip,
	}
	if !*quiet {
		r.Status = func(st scheduler.Status) {
			logger.Info("status", "read", st.ReadWide, "written", st.OutputWide, "clipped", st.Clipped, "final", st.Final)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	go func() {
		for range sig {
			ctrlc.Press()
		}
	}()

	if err := r.Execute(); err != nil {
		logger.Error("run failed", "err", err)
		return 2
	}
	return 0
}

// splitArgs separates positional input filenames, the single output
// filename, and the trailing effect-chain tokens: "name:arg,arg name2:".
// The first token containing ":" starts the effect chain; every token
// before it is plain, the last plain token is the output and the rest
// are inputs. A bare effect name without ":" is taken as a filename,
// since spec.md's thin wiring doesn't attempt to disambiguate further.
func splitArgs(args []string) (inputs []string, output string, effectTokens []string) {
	split := len(args)
	for i, a := range args {
		if strings.Contains(a, ":") {
			split = i
			break
		}
	}
	plain := args[:split]
	effectTokens = args[split:]
	if len(plain) < 2 {
		return nil, "", effectTokens
	}
	return plain[:len(plain)-1], plain[len(plain)-1], effectTokens
}

func parseEffectChain(tokens []string) ([]chain.EffectSpec, error) {
	var specs []chain.EffectSpec
	for _, tok := range tokens {
		name, rest, _ := strings.Cut(tok, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty effect name in token %q", tok)
		}
		var args []string
		if rest != "" {
			args = strings.Split(rest, ",")
		}
		specs = append(specs, chain.EffectSpec{Name: name, Args: args})
	}
	return specs, nil
}
