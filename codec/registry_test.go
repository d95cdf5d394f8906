package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByPathMatchesKnownExtensions(t *testing.T) {
	c, ok := ByPath("song.WAV")
	assert.True(t, ok)
	assert.Equal(t, "wav", c.Name())

	c, ok = ByPath("song.opus")
	assert.True(t, ok)
	assert.Equal(t, "opus", c.Name())

	_, ok = ByPath("song.xyz")
	assert.False(t, ok)
}

func TestByNameFindsBuiltins(t *testing.T) {
	for _, name := range []string{"wav", "opus", "alsa", "null"} {
		c, ok := ByName(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}
}
