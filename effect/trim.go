package effect

import (
	"fmt"
	"strconv"

	"github.com/pipelined/sox/pcm"
)

// Trim skips a leading span of its input and optionally truncates to a
// fixed length, both expressed in seconds at GetOpts time and resolved
// to wide-sample counts at Start (spec §8 scenario 5, §4.3 "Trim
// fast-path").
type Trim struct {
	Defaults

	StartSeconds  float64
	LengthSeconds float64 // 0 means unlimited

	skipRemaining int64
	limitWide     int64 // 0 means unlimited
	emitted       int64
}

// NewTrim returns a Trim effect that by default passes everything
// through untouched (and is therefore removed as a no-op at Start).
func NewTrim() Effect { return &Trim{} }

func (t *Trim) Name() string  { return "trim" }
func (t *Trim) Usage() string { return "trim START [LENGTH]" }
func (t *Trim) Flags() Flags  { return MultiChan | Length }

func (t *Trim) GetOpts(argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	if len(argv) > 2 {
		return fmt.Errorf("trim: expected 1 or 2 arguments, got %d", len(argv))
	}
	start, err := strconv.ParseFloat(argv[0], 64)
	if err != nil {
		return fmt.Errorf("trim: invalid start %q: %w", argv[0], err)
	}
	t.StartSeconds = start
	if len(argv) == 2 {
		length, err := strconv.ParseFloat(argv[1], 64)
		if err != nil {
			return fmt.Errorf("trim: invalid length %q: %w", argv[1], err)
		}
		t.LengthSeconds = length
	}
	return nil
}

func (t *Trim) Start(in Signal) (Signal, StartResult, error) {
	t.skipRemaining = int64(t.StartSeconds * float64(in.Rate))
	if t.LengthSeconds > 0 {
		t.limitWide = int64(t.LengthSeconds * float64(in.Rate))
	}
	if t.skipRemaining == 0 && t.limitWide == 0 {
		return in, StartNull, nil
	}
	return in, StartOK, nil
}

// StartOffset reports the wide-sample count still to be skipped. The
// scheduler's trim fast-path reads this once, right after Start, to
// seek a seekable single input directly instead of skipping sample by
// sample.
func (t *Trim) StartOffset() int64 { return t.skipRemaining }

// ClearStart tells Trim that the caller has already performed the skip
// (e.g. via a codec seek), so Flow should stop discarding input.
func (t *Trim) ClearStart() { t.skipRemaining = 0 }

func (t *Trim) Flow(in, out pcm.Buffer) (int, int, error) {
	consumed := 0
	produced := 0
	n := in.WideLen()

	for consumed < n && t.skipRemaining > 0 {
		consumed++
		t.skipRemaining--
	}

	remaining := n - consumed
	capacity := out.WideLen()
	if capacity > remaining {
		capacity = remaining
	}
	if t.limitWide > 0 {
		if left := t.limitWide - t.emitted; capacity > int(left) {
			capacity = int(left)
		}
	}

	for produced < capacity {
		for c := 0; c < in.Channels; c++ {
			out.SetSample(produced, c, in.Sample(consumed, c))
		}
		consumed++
		produced++
	}
	t.emitted += int64(produced)

	var err error
	if t.limitWide > 0 && t.emitted >= t.limitWide {
		err = ErrEOF
	}
	return consumed, produced, err
}
