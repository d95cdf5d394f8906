package combine

import (
	"errors"
	"io"

	"github.com/pipelined/sox/codec"
	"github.com/pipelined/sox/pcm"
)

// readSequence reads from the currently active input until it is
// exhausted, then reports ErrInputBoundary so the caller can check the
// next input's signal against its chain. The chain itself is not
// rebuilt; effect state carries across the boundary.
func (c *Combiner) readSequence(buf pcm.Buffer) (int, error) {
	for {
		if c.current >= len(c.Inputs) {
			return 0, io.EOF
		}
		n, err := c.Inputs[c.current].Read(buf)
		if n > 0 {
			return n, nil
		}
		if errors.Is(err, codec.ErrEOF) {
			c.Inputs[c.current].Close()
			c.current++
			if c.current >= len(c.Inputs) {
				return 0, io.EOF
			}
			return 0, ErrInputBoundary
		}
		if err != nil {
			return 0, err
		}
	}
}
