package combine

import (
	"errors"
	"io"

	"github.com/pipelined/sox/codec"
	"github.com/pipelined/sox/pcm"
)

// readConcatenate reads inputs end-to-end as a single stream, crossing
// input boundaries within a single Read call since every input shares
// the same rate and channel count (enforced in New).
func (c *Combiner) readConcatenate(buf pcm.Buffer) (int, error) {
	total := 0
	for total < buf.WideLen() {
		if c.current >= len(c.Inputs) {
			break
		}
		window := buf.Slice(total, buf.WideLen())
		n, err := c.Inputs[c.current].Read(window)
		total += n
		if errors.Is(err, codec.ErrEOF) {
			c.Inputs[c.current].Close()
			c.current++
			continue
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}
	if total == 0 && c.current >= len(c.Inputs) {
		return 0, io.EOF
	}
	return total, nil
}
