package pcm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/sox/pcm"
)

func TestBufferSliceSharesBackingArray(t *testing.T) {
	buf := pcm.NewBuffer(2, 8)
	window := buf.Slice(2, 5)
	assert.Equal(t, 3, window.WideLen())

	window.SetSample(0, 1, 42)
	assert.Equal(t, pcm.Sample(42), buf.Sample(2, 1))
}

func TestBufferCopyFromTruncatesToShorter(t *testing.T) {
	src := pcm.NewBuffer(1, 4)
	for i := 0; i < 4; i++ {
		src.SetSample(i, 0, pcm.Sample(i+1))
	}
	dst := pcm.NewBuffer(1, 2)
	n := dst.CopyFrom(src)
	assert.Equal(t, 2, n)
	assert.Equal(t, pcm.Sample(1), dst.Sample(0, 0))
	assert.Equal(t, pcm.Sample(2), dst.Sample(1, 0))
}

func TestBufferZero(t *testing.T) {
	buf := pcm.NewBuffer(2, 4)
	for i := range buf.Data {
		buf.Data[i] = 7
	}
	buf.Zero()
	for _, s := range buf.Data {
		assert.Equal(t, pcm.Sample(0), s)
	}
}
