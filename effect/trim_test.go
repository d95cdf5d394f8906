package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/sox/pcm"
)

func TestTrimGetOpts(t *testing.T) {
	tr := NewTrim().(*Trim)
	require.NoError(t, tr.GetOpts([]string{"1.5"}))
	assert.Equal(t, 1.5, tr.StartSeconds)
	assert.Zero(t, tr.LengthSeconds)

	tr = NewTrim().(*Trim)
	require.NoError(t, tr.GetOpts([]string{"1.5", "2.0"}))
	assert.Equal(t, 1.5, tr.StartSeconds)
	assert.Equal(t, 2.0, tr.LengthSeconds)

	assert.Error(t, tr.GetOpts([]string{"1", "2", "3"}))
}

func TestTrimStartNullWhenNoop(t *testing.T) {
	tr := NewTrim().(*Trim)
	_, result, err := tr.Start(Signal{Rate: 1000, Channels: 1})
	require.NoError(t, err)
	assert.Equal(t, StartNull, result)
}

func TestTrimStartOffsetMatchesSkip(t *testing.T) {
	tr := NewTrim().(*Trim)
	require.NoError(t, tr.GetOpts([]string{"0.01"}))
	_, result, err := tr.Start(Signal{Rate: 1000, Channels: 1})
	require.NoError(t, err)
	assert.Equal(t, StartOK, result)
	assert.EqualValues(t, 10, tr.StartOffset())
}

func TestTrimClearStartStopsDiscarding(t *testing.T) {
	tr := NewTrim().(*Trim)
	require.NoError(t, tr.GetOpts([]string{"0.01"}))
	_, _, err := tr.Start(Signal{Rate: 1000, Channels: 1})
	require.NoError(t, err)
	tr.ClearStart()

	in := pcm.NewBuffer(1, 4)
	for i := 0; i < 4; i++ {
		in.SetSample(i, 0, pcm.Sample(i+1))
	}
	out := pcm.NewBuffer(1, 4)
	consumed, produced, err := tr.Flow(in, out)
	require.NoError(t, err)
	assert.Equal(t, 4, consumed)
	assert.Equal(t, 4, produced)
	assert.Equal(t, pcm.Sample(1), out.Sample(0, 0))
}

func TestTrimFlowSkipsThenLimits(t *testing.T) {
	tr := NewTrim().(*Trim)
	require.NoError(t, tr.GetOpts([]string{"0.002", "0.002"})) // skip 2, keep 2, at rate 1000
	_, _, err := tr.Start(Signal{Rate: 1000, Channels: 1})
	require.NoError(t, err)

	in := pcm.NewBuffer(1, 6)
	for i := 0; i < 6; i++ {
		in.SetSample(i, 0, pcm.Sample(i+1))
	}
	out := pcm.NewBuffer(1, 6)

	consumed, produced, err := tr.Flow(in, out)
	assert.ErrorIs(t, err, ErrEOF)
	assert.Equal(t, 4, consumed) // 2 skipped + 2 emitted
	assert.Equal(t, 2, produced)
	assert.Equal(t, pcm.Sample(3), out.Sample(0, 0))
	assert.Equal(t, pcm.Sample(4), out.Sample(1, 0))
}
