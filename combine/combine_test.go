package combine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/pipelined/sox/codec"
	"github.com/pipelined/sox/input"
	"github.com/pipelined/sox/pcm"
)

// memHandle is an in-memory codec.Handle backed by a fixed slice of
// samples, mirroring the generate-a-fixed-sequence-then-EOF shape of
// pipelined-audio/mixer_test.go's mock.Source{Limit, Value}, adapted
// to our own codec.Handle contract since the pack's mock package lives
// outside the retrieved source.
type memHandle struct {
	sig  pcm.Descriptor
	data []pcm.Sample // interleaved
	pos  int
}

func newMemHandle(channels, rate int, data []pcm.Sample) *memHandle {
	return &memHandle{sig: pcm.Descriptor{Rate: rate, Channels: channels, SampleSize: 4}, data: data}
}

func (h *memHandle) Signal() pcm.Descriptor { return h.sig }
func (h *memHandle) Flags() codec.Flags     { return 0 }

func (h *memHandle) Read(buf pcm.Buffer) (int, error) {
	remaining := (len(h.data) - h.pos) / h.sig.Channels
	if remaining <= 0 {
		return 0, codec.ErrEOF
	}
	wide := buf.WideLen()
	if wide > remaining {
		wide = remaining
	}
	for i := 0; i < wide; i++ {
		for c := 0; c < h.sig.Channels; c++ {
			buf.SetSample(i, c, h.data[h.pos+i*h.sig.Channels+c])
		}
	}
	h.pos += wide * h.sig.Channels
	return wide, nil
}

func (h *memHandle) Write(buf pcm.Buffer) (int, error) {
	for i := 0; i < buf.WideLen(); i++ {
		for c := 0; c < buf.Channels; c++ {
			h.data = append(h.data, buf.Sample(i, c))
		}
	}
	return buf.WideLen(), nil
}

func (h *memHandle) Seek(wide int64) error {
	h.pos = int(wide) * h.sig.Channels
	return nil
}

func (h *memHandle) Close() error { return nil }

func constInput(channels, rate int, v pcm.Sample, n int) *input.Input {
	data := make([]pcm.Sample, n*channels)
	for i := range data {
		data[i] = v
	}
	h := newMemHandle(channels, rate, data)
	return &input.Input{Handle: h, Signal: h.Signal(), Multiplier: 1.0}
}

func TestConcatenateRequiresAgreement(t *testing.T) {
	a := constInput(2, 44100, 1, 4)
	b := constInput(1, 44100, 1, 4)
	_, err := New(Concatenate, []*input.Input{a, b})
	assert.ErrorIs(t, err, ErrChannelMismatch)
}

func TestMixRequiresSameRate(t *testing.T) {
	a := constInput(1, 44100, 1, 4)
	b := constInput(1, 48000, 1, 4)
	_, err := New(Mix, []*input.Input{a, b})
	assert.ErrorIs(t, err, ErrRateMismatch)
}

func TestConcatenateSumsLengths(t *testing.T) {
	a := constInput(1, 8000, 10, 3)
	b := constInput(1, 8000, 20, 2)
	c, err := New(Concatenate, []*input.Input{a, b})
	require.NoError(t, err)

	buf := pcm.NewBuffer(1, 10)
	total := 0
	for {
		n, err := c.Read(buf)
		total += n
		if err != nil {
			break
		}
	}
	assert.Equal(t, 5, total)
}

func TestMixOutputChannelsIsMaxOverInputs(t *testing.T) {
	a := constInput(1, 8000, 100, 2)
	b := constInput(2, 8000, 200, 2)
	c, err := New(Mix, []*input.Input{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Channels)

	buf := pcm.NewBuffer(2, 2)
	n, err := c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	// channel 0 gets contributions from both inputs, channel 1 only from b.
	assert.Equal(t, pcm.Sample(300), buf.Sample(0, 0))
	assert.Equal(t, pcm.Sample(200), buf.Sample(0, 1))
}

func TestMergeChannelsIsSumOverInputs(t *testing.T) {
	a := constInput(1, 8000, 10, 2)
	b := constInput(2, 8000, 20, 2)
	c, err := New(Merge, []*input.Input{a, b})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Channels)

	buf := pcm.NewBuffer(3, 2)
	n, err := c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, pcm.Sample(10), buf.Sample(0, 0))
	assert.Equal(t, pcm.Sample(20), buf.Sample(0, 1))
	assert.Equal(t, pcm.Sample(20), buf.Sample(0, 2))
}

func TestMergePadsShorterInputWithSilence(t *testing.T) {
	a := constInput(1, 8000, 10, 1)
	b := constInput(1, 8000, 20, 3)
	c, err := New(Merge, []*input.Input{a, b})
	require.NoError(t, err)

	buf := pcm.NewBuffer(2, 3)
	n, err := c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, pcm.Sample(10), buf.Sample(0, 0))
	assert.Equal(t, pcm.Sample(0), buf.Sample(1, 0)) // a exhausted after 1 sample
	assert.Equal(t, pcm.Sample(20), buf.Sample(1, 1))
}

// TestMixOutputLengthMatchesLongestInput locks in the fix for readMix
// reporting a short final block (n < buf capacity, nil error) as a full
// buffer's worth of frames: a buffer capacity larger than the longer
// input's remaining tail must not pad the combiner's own output with
// trailing silence beyond that input's true length.
func TestMixOutputLengthMatchesLongestInput(t *testing.T) {
	a := constInput(1, 8000, 1, 12)
	b := constInput(1, 8000, 1, 4)
	c, err := New(Mix, []*input.Input{a, b})
	require.NoError(t, err)

	buf := pcm.NewBuffer(1, 8)
	total := 0
	for {
		n, err := c.Read(buf)
		total += n
		if err != nil {
			break
		}
	}
	assert.Equal(t, 12, total)
}

// TestMergeOutputLengthMatchesLongestInput is readMerge's counterpart
// to TestMixOutputLengthMatchesLongestInput.
func TestMergeOutputLengthMatchesLongestInput(t *testing.T) {
	a := constInput(1, 8000, 1, 12)
	b := constInput(1, 8000, 1, 4)
	c, err := New(Merge, []*input.Input{a, b})
	require.NoError(t, err)

	buf := pcm.NewBuffer(2, 8)
	total := 0
	for {
		n, err := c.Read(buf)
		total += n
		if err != nil {
			break
		}
	}
	assert.Equal(t, 12, total)
}

func TestPredictedLength(t *testing.T) {
	l, ok := PredictedLength(Concatenate, []int64{10, 20, 30}, false)
	assert.True(t, ok)
	assert.EqualValues(t, 60, l)

	_, ok = PredictedLength(Concatenate, []int64{10, 0}, false)
	assert.False(t, ok)

	l, ok = PredictedLength(Mix, []int64{10, 50, 30}, false)
	assert.True(t, ok)
	assert.EqualValues(t, 50, l)

	_, ok = PredictedLength(Sequence, []int64{10, 20}, false)
	assert.False(t, ok)

	_, ok = PredictedLength(Concatenate, []int64{10, 20}, true)
	assert.False(t, ok)
}

func TestMixSumNeverExceedsCanonicalRangeProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 4).Draw(rt, "n")
		var inputs []*input.Input
		for i := 0; i < n; i++ {
			v := pcm.Sample(rapid.Int32Range(int32(pcm.MinSample), int32(pcm.MaxSample)).Draw(rt, "v"))
			inputs = append(inputs, constInput(1, 8000, v, 1))
		}
		c, err := New(Mix, inputs)
		assert.NoError(rt, err)
		buf := pcm.NewBuffer(1, 1)
		_, err = c.Read(buf)
		assert.NoError(rt, err)
		assert.GreaterOrEqual(rt, int64(buf.Sample(0, 0)), int64(pcm.MinSample))
		assert.LessOrEqual(rt, int64(buf.Sample(0, 0)), int64(pcm.MaxSample))
	})
}
