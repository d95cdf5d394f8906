package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pipelined/sox/pcm"
)

// WAV implements Codec for the RIFF/WAVE container. Unlike opus and
// device, no third-party WAV library in the retrieved pack exposes a
// usable API surface (pipelined-audio/file/file.go only ever
// constructs "&wav.Pump{ReadSeeker: rs}" and never shows wav.Pump's
// method set), so this reads and writes the (fully specified, simple)
// RIFF container directly against encoding/binary — see DESIGN.md.
type WAV struct{}

// NewWAV returns the built-in WAV codec.
func NewWAV() Codec { return &WAV{} }

func (WAV) Name() string         { return "wav" }
func (WAV) Extensions() []string { return []string{".wav", ".wave"} }

const (
	riffID = "RIFF"
	waveID = "WAVE"
	fmtID  = "fmt "
	dataID = "data"

	wavFormatPCM = 1
)

type wavFmtChunk struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

type wavHandle struct {
	f       *os.File
	sig     pcm.Descriptor
	flags   Flags
	dataOff int64
	dataLen int64 // data chunk size in bytes: from the header in read mode, bytes written so far in write mode
	write   bool
}

func (WAV) OpenRead(path string, override *pcm.Descriptor) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	fmtChunk, dataOff, dataLen, err := readWAVHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	sig := pcm.Descriptor{
		Rate:       int(fmtChunk.SampleRate),
		Channels:   int(fmtChunk.NumChannels),
		SampleSize: int(fmtChunk.BitsPerSample) / 8,
		Encoding:   pcm.SignedPCM,
	}
	if override != nil {
		sig = *override
	}
	if err := sig.Valid(); err != nil {
		f.Close()
		return nil, fmt.Errorf("wav: %w", err)
	}
	return &wavHandle{f: f, sig: sig, flags: SupportsSeek, dataOff: dataOff, dataLen: dataLen}, nil
}

func (WAV) OpenWrite(path string, sig pcm.Descriptor) (Handle, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	if sig.SampleSize == 0 {
		sig.SampleSize = 2
	}
	if err := writeWAVHeader(f, sig); err != nil {
		f.Close()
		return nil, err
	}
	return &wavHandle{f: f, sig: sig, flags: SupportsSeek, write: true}, nil
}

func readWAVHeader(f *os.File) (wavFmtChunk, int64, int64, error) {
	var header [12]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return wavFmtChunk{}, 0, 0, fmt.Errorf("wav: reading RIFF header: %w", err)
	}
	if string(header[0:4]) != riffID || string(header[8:12]) != waveID {
		return wavFmtChunk{}, 0, 0, fmt.Errorf("wav: not a RIFF/WAVE file")
	}

	var fc wavFmtChunk
	var dataOff, dataLen int64
	haveFmt, haveData := false, false
	for !haveData {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(f, chunkHeader[:]); err != nil {
			return wavFmtChunk{}, 0, 0, fmt.Errorf("wav: reading chunk header: %w", err)
		}
		id := string(chunkHeader[0:4])
		size := int64(binary.LittleEndian.Uint32(chunkHeader[4:8]))
		switch id {
		case fmtID:
			if err := binary.Read(io.LimitReader(f, size), binary.LittleEndian, &fc); err != nil {
				return wavFmtChunk{}, 0, 0, fmt.Errorf("wav: reading fmt chunk: %w", err)
			}
			if size > 16 {
				if _, err := f.Seek(size-16, io.SeekCurrent); err != nil {
					return wavFmtChunk{}, 0, 0, err
				}
			}
			haveFmt = true
		case dataID:
			off, err := f.Seek(0, io.SeekCurrent)
			if err != nil {
				return wavFmtChunk{}, 0, 0, err
			}
			dataOff, dataLen = off, size
			haveData = true
		default:
			if _, err := f.Seek(size, io.SeekCurrent); err != nil {
				return wavFmtChunk{}, 0, 0, fmt.Errorf("wav: skipping chunk %q: %w", id, err)
			}
		}
	}
	if !haveFmt {
		return wavFmtChunk{}, 0, 0, fmt.Errorf("wav: missing fmt chunk")
	}
	if fc.AudioFormat != wavFormatPCM {
		return wavFmtChunk{}, 0, 0, fmt.Errorf("wav: unsupported audio format %d (only PCM is supported)", fc.AudioFormat)
	}
	return fc, dataOff, dataLen, nil
}

// writeWAVHeader writes a RIFF/WAVE header with a placeholder size of
// zero for both RIFF and data chunk lengths; Close patches them in,
// mirroring the conventional streaming-WAV-writer two-pass approach.
func writeWAVHeader(f *os.File, sig pcm.Descriptor) error {
	blockAlign := uint16(sig.Channels * sig.SampleSize)
	fc := wavFmtChunk{
		AudioFormat:   wavFormatPCM,
		NumChannels:   uint16(sig.Channels),
		SampleRate:    uint32(sig.Rate),
		ByteRate:      uint32(sig.Rate) * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: uint16(sig.SampleSize * 8),
	}
	if _, err := f.Write([]byte(riffID)); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(0)); err != nil {
		return err
	}
	if _, err := f.Write([]byte(waveID)); err != nil {
		return err
	}
	if _, err := f.Write([]byte(fmtID)); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, &fc); err != nil {
		return err
	}
	if _, err := f.Write([]byte(dataID)); err != nil {
		return err
	}
	return binary.Write(f, binary.LittleEndian, uint32(0))
}

func (h *wavHandle) Signal() pcm.Descriptor { return h.sig }
func (h *wavHandle) Flags() Flags           { return h.flags }

// Length reports the data chunk's size in wide samples, known exactly
// from the RIFF header read at open time (codec.LengthReporter).
func (h *wavHandle) Length() (int64, bool) {
	if h.write || h.sig.Channels == 0 || h.bytesPerSample() == 0 {
		return 0, false
	}
	return h.dataLen / int64(h.sig.Channels*h.bytesPerSample()), true
}

func (h *wavHandle) bytesPerSample() int { return h.sig.SampleSize }

func (h *wavHandle) Read(buf pcm.Buffer) (int, error) {
	bps := h.bytesPerSample()
	raw := make([]byte, buf.WideLen()*buf.Channels*bps)
	n, err := io.ReadFull(h.f, raw)
	wide := n / (buf.Channels * bps)
	for i := 0; i < wide; i++ {
		for c := 0; c < buf.Channels; c++ {
			off := (i*buf.Channels + c) * bps
			buf.SetSample(i, c, decodeWAVSample(raw[off:off+bps], bps))
		}
	}
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		if wide == 0 {
			return 0, ErrEOF
		}
		return wide, nil
	}
	if err != nil {
		return wide, fmt.Errorf("wav: %w", err)
	}
	return wide, nil
}

func (h *wavHandle) Write(buf pcm.Buffer) (int, error) {
	bps := h.bytesPerSample()
	raw := make([]byte, buf.WideLen()*buf.Channels*bps)
	for i := 0; i < buf.WideLen(); i++ {
		for c := 0; c < buf.Channels; c++ {
			off := (i*buf.Channels + c) * bps
			encodeWAVSample(raw[off:off+bps], buf.Sample(i, c), bps)
		}
	}
	n, err := h.f.Write(raw)
	if err != nil {
		return 0, fmt.Errorf("wav: %w", err)
	}
	h.dataLen += int64(n)
	return buf.WideLen(), nil
}

func (h *wavHandle) Seek(wide int64) error {
	bps := h.bytesPerSample()
	_, err := h.f.Seek(h.dataOff+wide*int64(h.sig.Channels*bps), io.SeekStart)
	return err
}

func (h *wavHandle) Close() error {
	if h.write {
		if _, err := h.f.Seek(4, io.SeekStart); err == nil {
			binary.Write(h.f, binary.LittleEndian, uint32(36+h.dataLen))
		}
		if _, err := h.f.Seek(40, io.SeekStart); err == nil {
			binary.Write(h.f, binary.LittleEndian, uint32(h.dataLen))
		}
	}
	return h.f.Close()
}

// decodeWAVSample widens a little-endian PCM sample of bps bytes to
// the full canonical int32 range by left-shifting into the high bits,
// the same scale-to-full-range approach any fixed-point resampler uses
// when normalizing between bit depths.
func decodeWAVSample(raw []byte, bps int) pcm.Sample {
	switch bps {
	case 1:
		return pcm.Sample((int32(raw[0]) - 128) << 24)
	case 2:
		v := int16(binary.LittleEndian.Uint16(raw))
		return pcm.Sample(int32(v) << 16)
	case 3:
		v := int32(raw[0]) | int32(raw[1])<<8 | int32(raw[2])<<16
		if v&0x800000 != 0 {
			v |= ^int32(0xFFFFFF)
		}
		return pcm.Sample(v << 8)
	case 4:
		return pcm.Sample(int32(binary.LittleEndian.Uint32(raw)))
	default:
		return 0
	}
}

func encodeWAVSample(raw []byte, s pcm.Sample, bps int) {
	switch bps {
	case 1:
		raw[0] = byte((int32(s)>>24)&0xFF + 128)
	case 2:
		binary.LittleEndian.PutUint16(raw, uint16(int16(int32(s)>>16)))
	case 3:
		v := int32(s) >> 8
		raw[0] = byte(v)
		raw[1] = byte(v >> 8)
		raw[2] = byte(v >> 16)
	case 4:
		binary.LittleEndian.PutUint32(raw, uint32(int32(s)))
	}
}
