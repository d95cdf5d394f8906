package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/sox/pcm"
)

func TestVolGetOpts(t *testing.T) {
	v := NewVol().(*Vol)
	require.NoError(t, v.GetOpts([]string{"0.5"}))
	assert.Equal(t, 0.5, v.Multiplier)

	assert.Error(t, v.GetOpts([]string{"0.5", "1.0"}))
	assert.Error(t, v.GetOpts([]string{"not-a-number"}))
}

func TestVolStartNullAtUnityGain(t *testing.T) {
	v := NewVol().(*Vol)
	_, result, err := v.Start(Signal{Rate: 44100, Channels: 2})
	require.NoError(t, err)
	assert.Equal(t, StartNull, result)
}

func TestVolStartOKWhenScaling(t *testing.T) {
	v := NewVol().(*Vol)
	require.NoError(t, v.GetOpts([]string{"2.0"}))
	_, result, err := v.Start(Signal{Rate: 44100, Channels: 2})
	require.NoError(t, err)
	assert.Equal(t, StartOK, result)
}

func TestVolFlowScalesAndSaturates(t *testing.T) {
	v := NewVol().(*Vol)
	require.NoError(t, v.GetOpts([]string{"2.0"}))
	_, _, err := v.Start(Signal{Rate: 44100, Channels: 1})
	require.NoError(t, err)

	in := pcm.NewBuffer(1, 2)
	in.SetSample(0, 0, pcm.MaxSample/2)
	in.SetSample(1, 0, pcm.MaxSample)
	out := pcm.NewBuffer(1, 2)

	consumed, produced, err := v.Flow(in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, consumed)
	assert.Equal(t, 2, produced)
	assert.Equal(t, pcm.MaxSample-1, out.Sample(0, 0)) // (MaxSample/2)*2 fits without clipping
	assert.Equal(t, pcm.MaxSample, out.Sample(1, 0))
	assert.Equal(t, 1, v.Clipped)
}
