package codec

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/pipelined/sox/pcm"
)

// Device implements Codec for the live default input/output device,
// the "alsa" type hint of spec.md §6.3. The teacher's own dependency
// tree never touches portaudio directly — doismellburning-samoyed's
// audio path is a locally vendored CGo wrapper around libasound — but
// portaudio is the portable, non-CGo-hand-rolled equivalent for "open
// the system's default device and stream int32 frames," so this codec
// wires it in rather than reimplementing libasound bindings.
type Device struct{}

// NewDevice returns the built-in device codec.
func NewDevice() Codec { return &Device{} }

func (Device) Name() string         { return "alsa" }
func (Device) Extensions() []string { return nil }

type deviceHandle struct {
	stream   *portaudio.Stream
	sig      pcm.Descriptor
	write    bool
	scratch  []int32
	channels int
}

func (Device) OpenRead(_ string, override *pcm.Descriptor) (Handle, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("alsa: %w", err)
	}
	sig := defaultDeviceSignal()
	if override != nil {
		sig = *override
	}
	const framesPerBuffer = 512
	scratch := make([]int32, framesPerBuffer*sig.Channels)
	stream, err := portaudio.OpenDefaultStream(sig.Channels, 0, float64(sig.Rate), framesPerBuffer, scratch)
	if err != nil {
		return nil, fmt.Errorf("alsa: opening input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("alsa: %w", err)
	}
	return &deviceHandle{stream: stream, sig: sig, scratch: scratch, channels: sig.Channels}, nil
}

func (Device) OpenWrite(_ string, sig pcm.Descriptor) (Handle, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("alsa: %w", err)
	}
	const framesPerBuffer = 512
	scratch := make([]int32, framesPerBuffer*sig.Channels)
	stream, err := portaudio.OpenDefaultStream(0, sig.Channels, float64(sig.Rate), framesPerBuffer, scratch)
	if err != nil {
		return nil, fmt.Errorf("alsa: opening output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("alsa: %w", err)
	}
	return &deviceHandle{stream: stream, sig: sig, write: true, scratch: scratch, channels: sig.Channels}, nil
}

// defaultDeviceSignal reports a reasonable default capture format;
// callers normally supply an explicit override descriptor instead.
func defaultDeviceSignal() pcm.Descriptor {
	return pcm.Descriptor{Rate: 44100, Channels: 2, SampleSize: 4, Encoding: pcm.SignedPCM}
}

func (h *deviceHandle) Signal() pcm.Descriptor { return h.sig }
func (h *deviceHandle) Flags() Flags           { return IsDevice }

func (h *deviceHandle) Read(buf pcm.Buffer) (int, error) {
	framesPerBuffer := len(h.scratch) / h.channels
	wide := buf.WideLen()
	if wide > framesPerBuffer {
		wide = framesPerBuffer
	}
	if err := h.stream.Read(); err != nil {
		return 0, fmt.Errorf("alsa: %w", err)
	}
	for i := 0; i < wide; i++ {
		for c := 0; c < h.channels; c++ {
			buf.SetSample(i, c, pcm.Sample(h.scratch[i*h.channels+c]))
		}
	}
	return wide, nil
}

func (h *deviceHandle) Write(buf pcm.Buffer) (int, error) {
	framesPerBuffer := len(h.scratch) / h.channels
	wide := buf.WideLen()
	if wide > framesPerBuffer {
		wide = framesPerBuffer
	}
	for i := 0; i < wide; i++ {
		for c := 0; c < h.channels; c++ {
			h.scratch[i*h.channels+c] = int32(buf.Sample(i, c))
		}
	}
	if wide < framesPerBuffer {
		for i := wide * h.channels; i < len(h.scratch); i++ {
			h.scratch[i] = 0
		}
	}
	if err := h.stream.Write(); err != nil {
		return 0, fmt.Errorf("alsa: %w", err)
	}
	return wide, nil
}

func (h *deviceHandle) Seek(int64) error {
	return fmt.Errorf("alsa: device streams are not seekable")
}

func (h *deviceHandle) Close() error {
	if err := h.stream.Stop(); err != nil {
		return err
	}
	return h.stream.Close()
}
