package codec

import "github.com/pipelined/sox/pcm"

// Null implements Codec for the phony "-n" / "discard" pseudo-file:
// reading from it always reports EOF immediately, writing to it always
// succeeds and throws the samples away. Grounded on
// pipelined-audio/mixer_test.go's mock.Sink{Discard: true} idiom —
// same purpose, same "accept everything, keep nothing" shape.
type Null struct{}

// NewNull returns the built-in null codec.
func NewNull() Codec { return &Null{} }

func (Null) Name() string         { return "null" }
func (Null) Extensions() []string { return nil }

type nullHandle struct {
	sig pcm.Descriptor
}

func (Null) OpenRead(_ string, override *pcm.Descriptor) (Handle, error) {
	sig := pcm.Descriptor{Rate: 44100, Channels: 2, SampleSize: 4, Encoding: pcm.SignedPCM}
	if override != nil {
		sig = *override
	}
	return &nullHandle{sig: sig}, nil
}

func (Null) OpenWrite(_ string, sig pcm.Descriptor) (Handle, error) {
	return &nullHandle{sig: sig}, nil
}

func (h *nullHandle) Signal() pcm.Descriptor { return h.sig }
func (h *nullHandle) Flags() Flags           { return PhonyOutput | NoStandardIO }

func (h *nullHandle) Read(pcm.Buffer) (int, error) { return 0, ErrEOF }

func (h *nullHandle) Write(buf pcm.Buffer) (int, error) { return buf.WideLen(), nil }

func (h *nullHandle) Seek(int64) error { return nil }

func (h *nullHandle) Close() error { return nil }
