// Package pcm defines the canonical sample representation that crosses
// every stage boundary in the engine: a signed fixed-point sample, the
// signal descriptor that names a concrete wire format, and the
// interleaved buffer type effects and codecs read and write.
package pcm

import "math"

// Sample is the canonical signed fixed-point representation used at
// every chain boundary. Effects consume and produce exclusively in this
// form; codecs convert on I/O.
type Sample int32

const (
	// MaxSample is the largest representable canonical sample value.
	MaxSample Sample = math.MaxInt32
	// MinSample is the smallest representable canonical sample value.
	MinSample Sample = math.MinInt32
)

// Saturate clamps v to the canonical sample range, reporting whether
// clamping occurred. This is the single saturation primitive used by
// volume balancing, mix summation and effect internals (spec §4.5).
func Saturate(v int64) (Sample, bool) {
	if v > int64(MaxSample) {
		return MaxSample, true
	}
	if v < int64(MinSample) {
		return MinSample, true
	}
	return Sample(v), false
}

// SaturatingAdd sums two canonical samples, clamping on overflow.
func SaturatingAdd(a, b Sample) (Sample, bool) {
	return Saturate(int64(a) + int64(b))
}

// ScaleBy multiplies a sample by a floating multiplier (volume, replay
// gain), clamping the result.
func (s Sample) ScaleBy(mult float64) (Sample, bool) {
	return Saturate(int64(math.Round(float64(s) * mult)))
}
