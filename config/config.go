// Package config loads engine-wide defaults from a YAML file: the
// per-stage buffer capacity, the default combine policy for multiple
// inputs, the status interval, and a replay-gain mode name. The CLI may
// override the buffer capacity and combine policy per run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pipelined/sox/chain"
	"github.com/pipelined/sox/combine"
)

// Config is the engine's tunable defaults, loadable from YAML and
// overridable by CLI flags at the call site.
type Config struct {
	// BufferCapacity is the per-stage output buffer size in wide
	// samples (spec §4.3's "B"). Zero means chain.DefaultCapacity.
	BufferCapacity int `yaml:"buffer_capacity"`

	// CombinePolicy names the default policy used when multiple inputs
	// are given without an explicit "--combine"/"-m" flag: one of
	// "sequence", "concatenate", "mix", "merge".
	CombinePolicy string `yaml:"combine_policy"`

	// ReplayGain names a replay-gain mode: "off", "track", or "album".
	// It is loaded and defaulted here, but the engine does not read it;
	// it has no effect on how inputs are scaled.
	ReplayGain string `yaml:"replay_gain"`

	// StatusIntervalMS overrides the scheduler's status-emit throttle,
	// in milliseconds. Zero means scheduler.DefaultStatusInterval.
	StatusIntervalMS int `yaml:"status_interval_ms"`
}

// Default returns the engine's built-in defaults, used when no config
// file is given.
func Default() Config {
	return Config{
		BufferCapacity:   chain.DefaultCapacity,
		CombinePolicy:    "sequence",
		ReplayGain:       "off",
		StatusIntervalMS: 150,
	}
}

// Load reads and parses a YAML config file, filling in Default()'s
// values for anything the file leaves unset.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	if c.BufferCapacity <= 0 {
		c.BufferCapacity = chain.DefaultCapacity
	}
	if c.CombinePolicy == "" {
		c.CombinePolicy = "sequence"
	}
	return c, nil
}

// Policy resolves CombinePolicy's string form to a combine.Policy
// value.
func (c Config) Policy() (combine.Policy, error) {
	switch c.CombinePolicy {
	case "sequence", "":
		return combine.Sequence, nil
	case "concatenate":
		return combine.Concatenate, nil
	case "mix":
		return combine.Mix, nil
	case "merge":
		return combine.Merge, nil
	default:
		return 0, fmt.Errorf("config: unknown combine policy %q", c.CombinePolicy)
	}
}
