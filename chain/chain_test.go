package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/sox/effect"
	"github.com/pipelined/sox/pcm"
)

func TestBuildInsertsDefaultRemixWhenReducingChannels(t *testing.T) {
	in := effect.Signal{Rate: 44100, Channels: 2}
	out := effect.Signal{Rate: 44100, Channels: 1}
	c, err := Build(in, out, nil, 256)
	require.NoError(t, err)

	require.Len(t, c.Stages, 2) // sentinel + default remix
	assert.Equal(t, "remix", c.Stages[1].Name)
	assert.Equal(t, 1, c.Stages[1].Out.Channels)
}

func TestBuildInsertsDefaultResampleWhenIncreasingRate(t *testing.T) {
	in := effect.Signal{Rate: 22050, Channels: 1}
	out := effect.Signal{Rate: 44100, Channels: 1}
	c, err := Build(in, out, nil, 256)
	require.NoError(t, err)

	require.Len(t, c.Stages, 2)
	assert.Equal(t, "resample", c.Stages[1].Name)
	assert.Equal(t, 44100, c.Stages[1].Out.Rate)
}

func TestBuildNoDefaultsWhenSignalsMatch(t *testing.T) {
	sig := effect.Signal{Rate: 44100, Channels: 2}
	c, err := Build(sig, sig, []EffectSpec{{Name: "vol", Args: []string{"0.5"}}}, 256)
	require.NoError(t, err)

	require.Len(t, c.Stages, 2)
	assert.Equal(t, "vol", c.Stages[1].Name)
}

func TestBuildRejectsMultipleChannelEffects(t *testing.T) {
	sig := effect.Signal{Rate: 44100, Channels: 2}
	specs := []EffectSpec{{Name: "remix", Args: []string{"1"}}, {Name: "remix", Args: []string{"2"}}}
	_, err := Build(sig, sig, specs, 256)
	assert.ErrorIs(t, err, ErrMultipleChannelEffects)
}

func TestBuildRejectsUnknownEffect(t *testing.T) {
	sig := effect.Signal{Rate: 44100, Channels: 1}
	_, err := Build(sig, sig, []EffectSpec{{Name: "nope"}}, 256)
	assert.Error(t, err)
}

func TestStartCompactsNoOpEffects(t *testing.T) {
	sig := effect.Signal{Rate: 44100, Channels: 1}
	// vol with unity gain (default) is a no-op and must be compacted
	// out of the chain once Start runs.
	c, err := Build(sig, sig, []EffectSpec{{Name: "vol"}}, 256)
	require.NoError(t, err)
	require.NoError(t, c.Start())
	assert.Len(t, c.Stages, 1) // only the sentinel remains
}

func TestStartKeepsActiveEffects(t *testing.T) {
	sig := effect.Signal{Rate: 44100, Channels: 1}
	c, err := Build(sig, sig, []EffectSpec{{Name: "vol", Args: []string{"2.0"}}}, 256)
	require.NoError(t, err)
	require.NoError(t, c.Start())
	require.Len(t, c.Stages, 2)
}

func TestStageFlowAppendsToBuffer(t *testing.T) {
	sig := effect.Signal{Rate: 44100, Channels: 1}
	c, err := Build(sig, sig, []EffectSpec{{Name: "vol", Args: []string{"2.0"}}}, 256)
	require.NoError(t, err)
	require.NoError(t, c.Start())

	stage := c.Stages[1]
	in := pcm.NewBuffer(1, 2)
	in.SetSample(0, 0, 10)
	in.SetSample(1, 0, 20)

	consumed, produced, err := stage.Flow(in)
	require.NoError(t, err)
	assert.Equal(t, 2, consumed)
	assert.Equal(t, 2, produced)
	assert.Equal(t, pcm.Sample(20), stage.Available().Sample(0, 0))
	assert.Equal(t, pcm.Sample(40), stage.Available().Sample(1, 0))
}

func TestStageResetIfDrained(t *testing.T) {
	s := &Stage{Buf: pcm.NewBuffer(1, 4)}
	s.Olen = 2
	s.Odone = 1
	s.ResetIfDrained()
	assert.Equal(t, 2, s.Olen)

	s.Odone = 2
	s.ResetIfDrained()
	assert.Equal(t, 0, s.Olen)
	assert.Equal(t, 0, s.Odone)
}
