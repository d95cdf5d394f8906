package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/thesyncim/gopus"

	"github.com/pipelined/sox/pcm"
)

// Opus implements Codec for a minimal length-prefixed Opus packet
// stream: an 8-byte header (rate, channels) followed by a sequence of
// 4-byte big-endian packet lengths and gopus-encoded payloads. This is
// not the Ogg container (no Ogg demuxer is available anywhere in the
// retrieved pack), but it exercises the exact encoder/decoder API
// thesyncim-gopus exposes, which is the library this codec exists to
// wire in (see DESIGN.md).
type Opus struct{}

// NewOpus returns the built-in Opus codec.
func NewOpus() Codec { return &Opus{} }

func (Opus) Name() string         { return "opus" }
func (Opus) Extensions() []string { return []string{".opus"} }

const (
	opusFrameMillis = 20
	opusMagic       = "SOXOPUS1"
	canonicalScale  = float64(1 << 31)
)

type opusHandle struct {
	f          *os.File
	sig        pcm.Descriptor
	write      bool
	frameWide  int
	channels   int
	encoder    *gopus.Encoder
	decoder    *gopus.Decoder
	pending    []pcm.Sample // leftover decoded wide samples, interleaved
	readPacket []byte
}

func (Opus) OpenRead(path string, override *pcm.Descriptor) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opus: %w", err)
	}
	var header [8]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("opus: reading header: %w", err)
	}
	if string(header[:4]) != opusMagic[:4] {
		f.Close()
		return nil, fmt.Errorf("opus: bad magic")
	}
	rate := int(binary.BigEndian.Uint16(header[4:6])) * 100
	channels := int(header[6])
	sig := pcm.Descriptor{Rate: rate, Channels: channels, SampleSize: 4, Encoding: pcm.SignedPCM}
	if override != nil {
		sig = *override
	}
	dec, err := gopus.NewDecoder(sig.Rate, sig.Channels)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opus: %w", err)
	}
	return &opusHandle{
		f:        f,
		sig:      sig,
		channels: sig.Channels,
		decoder:  dec,
	}, nil
}

func (Opus) OpenWrite(path string, sig pcm.Descriptor) (Handle, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("opus: %w", err)
	}
	var header [8]byte
	copy(header[:4], opusMagic)
	binary.BigEndian.PutUint16(header[4:6], uint16(sig.Rate/100))
	header[6] = byte(sig.Channels)
	if _, err := f.Write(header[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("opus: %w", err)
	}
	enc, err := gopus.NewEncoder(sig.Rate, sig.Channels, gopus.ApplicationAudio)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opus: %w", err)
	}
	return &opusHandle{
		f:         f,
		sig:       sig,
		write:     true,
		channels:  sig.Channels,
		frameWide: sig.Rate * opusFrameMillis / 1000,
		encoder:   enc,
	}, nil
}

func (h *opusHandle) Signal() pcm.Descriptor { return h.sig }
func (h *opusHandle) Flags() Flags           { return 0 }

func (h *opusHandle) Read(buf pcm.Buffer) (int, error) {
	for len(h.pending) < buf.WideLen()*h.channels {
		packet, err := h.readNextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		floats, err := h.decoder.DecodeFloat32(packet)
		if err != nil {
			return 0, fmt.Errorf("opus: decode: %w", err)
		}
		for _, f := range floats {
			s, _ := pcm.Saturate(int64(f * canonicalScale))
			h.pending = append(h.pending, s)
		}
	}
	wide := len(h.pending) / h.channels
	if wide > buf.WideLen() {
		wide = buf.WideLen()
	}
	for i := 0; i < wide; i++ {
		for c := 0; c < h.channels; c++ {
			buf.SetSample(i, c, h.pending[i*h.channels+c])
		}
	}
	h.pending = h.pending[wide*h.channels:]
	if wide == 0 {
		return 0, ErrEOF
	}
	return wide, nil
}

func (h *opusHandle) readNextPacket() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(h.f, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	packet := make([]byte, n)
	if _, err := io.ReadFull(h.f, packet); err != nil {
		return nil, fmt.Errorf("opus: truncated packet: %w", err)
	}
	return packet, nil
}

func (h *opusHandle) Write(buf pcm.Buffer) (int, error) {
	written := 0
	for written < buf.WideLen() {
		n := h.frameWide
		if remaining := buf.WideLen() - written; n > remaining {
			n = remaining
		}
		floats := make([]float32, n*h.channels)
		for i := 0; i < n; i++ {
			for c := 0; c < h.channels; c++ {
				floats[i*h.channels+c] = float32(toFloatValue(buf.Sample(written+i, c)))
			}
		}
		packet, err := h.encoder.EncodeFloat32(floats)
		if err != nil {
			return written, fmt.Errorf("opus: encode: %w", err)
		}
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(packet)))
		if _, err := h.f.Write(lenBuf[:]); err != nil {
			return written, fmt.Errorf("opus: %w", err)
		}
		if _, err := h.f.Write(packet); err != nil {
			return written, fmt.Errorf("opus: %w", err)
		}
		written += n
	}
	return written, nil
}

func toFloatValue(s pcm.Sample) float64 { return float64(s) / canonicalScale }

func (h *opusHandle) Seek(wide int64) error {
	return fmt.Errorf("opus: seek is not supported")
}

func (h *opusHandle) Close() error { return h.f.Close() }
