package pcm

// Buffer is an interleaved, fixed-layout window of canonical samples:
// "wide sample" i, channel c lives at Data[i*Channels+c]. It is the
// single type passed across every stage boundary in the chain — codecs
// fill one from wire bytes, effects read one and write another, the
// combiner assembles one from multiple inputs.
//
// Buffer never owns growth policy: callers that need a fixed-capacity,
// reusable backing array (every chain stage does, per spec §4.3) keep
// that array themselves and hand out Buffer windows via Slice.
type Buffer struct {
	Channels int
	Data     []Sample
}

// NewBuffer allocates a buffer with room for wideLen wide samples.
func NewBuffer(channels, wideLen int) Buffer {
	return Buffer{Channels: channels, Data: make([]Sample, wideLen*channels)}
}

// WideLen returns the number of wide samples (frames) the buffer holds.
func (b Buffer) WideLen() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Slice returns the wide-sample window [from, to) of b, sharing the
// underlying array (mutations are visible through either view).
func (b Buffer) Slice(from, to int) Buffer {
	return Buffer{Channels: b.Channels, Data: b.Data[from*b.Channels : to*b.Channels]}
}

// Sample returns the sample at wide index i, channel c.
func (b Buffer) Sample(i, c int) Sample {
	return b.Data[i*b.Channels+c]
}

// SetSample writes the sample at wide index i, channel c.
func (b Buffer) SetSample(i, c int, v Sample) {
	b.Data[i*b.Channels+c] = v
}

// Zero clears the buffer's contents to silence.
func (b Buffer) Zero() {
	for i := range b.Data {
		b.Data[i] = 0
	}
}

// CopyFrom copies min(b.WideLen(), src.WideLen()) wide samples from src
// into b, assuming matching channel counts, and returns the count
// copied. Use a remix effect first when channel counts differ.
func (b Buffer) CopyFrom(src Buffer) int {
	wide := b.WideLen()
	if n := src.WideLen(); n < wide {
		wide = n
	}
	copy(b.Data[:wide*b.Channels], src.Data[:wide*b.Channels])
	return wide
}
