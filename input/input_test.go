package input

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/sox/codec"
	"github.com/pipelined/sox/pcm"
)

func writeTestWAV(t *testing.T, path string, sig pcm.Descriptor, samples []pcm.Sample) {
	t.Helper()
	w := codec.NewWAV()
	h, err := w.OpenWrite(path, sig)
	require.NoError(t, err)
	buf := pcm.Buffer{Channels: sig.Channels, Data: samples}
	_, err = h.Write(buf)
	require.NoError(t, err)
	require.NoError(t, h.Close())
}

func TestOpenDefaultsToUnityVolume(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wav")
	sig := pcm.Descriptor{Rate: 8000, Channels: 1, SampleSize: 2}
	writeTestWAV(t, path, sig, []pcm.Sample{100, 200, 300})

	in, err := Open(path, Options{})
	require.NoError(t, err)
	defer in.Close()

	assert.Equal(t, 1.0, in.Multiplier)
}

func TestOpenFoldsReplayGain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.wav")
	sig := pcm.Descriptor{Rate: 8000, Channels: 1, SampleSize: 2}
	writeTestWAV(t, path, sig, []pcm.Sample{100})

	in, err := Open(path, Options{
		Volume:          2.0,
		ApplyReplayGain: true,
		ReplayGainDB:    20, // 10^(20/20) == 10
	})
	require.NoError(t, err)
	defer in.Close()

	assert.InDelta(t, 20.0, in.Multiplier, 1e-9)
}

func TestReadAppliesMultiplierAndCountsClips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.wav")
	sig := pcm.Descriptor{Rate: 8000, Channels: 1, SampleSize: 4}
	writeTestWAV(t, path, sig, []pcm.Sample{pcm.MaxSample / 2, pcm.MaxSample})

	in, err := Open(path, Options{Volume: 2.0})
	require.NoError(t, err)
	defer in.Close()

	buf := pcm.NewBuffer(1, 2)
	n, err := in.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, pcm.MaxSample-1, buf.Sample(0, 0)) // (MaxSample/2)*2 fits without clipping
	assert.Equal(t, pcm.MaxSample, buf.Sample(1, 0))
	assert.Equal(t, 1, in.Clipped)
}

func TestDefaultMixVolume(t *testing.T) {
	assert.Equal(t, 1.0, DefaultMixVolume(0))
	assert.Equal(t, 0.5, DefaultMixVolume(2))
	assert.Equal(t, 0.25, DefaultMixVolume(4))
}
