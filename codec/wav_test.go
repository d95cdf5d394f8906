package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/sox/pcm"
)

func TestWAVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	sig := pcm.Descriptor{Rate: 8000, Channels: 2, SampleSize: 2, Encoding: pcm.SignedPCM}

	w := NewWAV()
	wh, err := w.OpenWrite(path, sig)
	require.NoError(t, err)

	in := pcm.NewBuffer(2, 4)
	for i := 0; i < 4; i++ {
		in.SetSample(i, 0, pcm.Sample(i*1000)<<16)
		in.SetSample(i, 1, pcm.Sample(-i*1000)<<16)
	}
	n, err := wh.Write(in)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.NoError(t, wh.Close())

	rh, err := w.OpenRead(path, nil)
	require.NoError(t, err)
	defer rh.Close()

	assert.Equal(t, 8000, rh.Signal().Rate)
	assert.Equal(t, 2, rh.Signal().Channels)
	assert.True(t, rh.Flags().Has(SupportsSeek))

	out := pcm.NewBuffer(2, 4)
	read, err := rh.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 4, read)

	// 16-bit round trip keeps only the high 16 bits of each canonical
	// sample; values written as whole multiples of 1<<16 survive the
	// narrowing exactly once re-widened.
	for i := 0; i < 4; i++ {
		assert.Equal(t, pcm.Sample(i*1000)<<16, out.Sample(i, 0))
	}
}

func TestWAVReadReportsEOFOnExhaustion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.wav")
	sig := pcm.Descriptor{Rate: 8000, Channels: 1, SampleSize: 2, Encoding: pcm.SignedPCM}

	w := NewWAV()
	wh, err := w.OpenWrite(path, sig)
	require.NoError(t, err)
	in := pcm.NewBuffer(1, 1)
	_, err = wh.Write(in)
	require.NoError(t, err)
	require.NoError(t, wh.Close())

	rh, err := w.OpenRead(path, nil)
	require.NoError(t, err)
	defer rh.Close()

	out := pcm.NewBuffer(1, 1)
	_, err = rh.Read(out)
	require.NoError(t, err)

	_, err = rh.Read(out)
	assert.ErrorIs(t, err, ErrEOF)
}

func TestWAVRejectsNonRIFFFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notwav.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a riff file at all"), 0o644))

	_, err := NewWAV().OpenRead(path, nil)
	assert.Error(t, err)
}
