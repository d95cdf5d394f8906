// Package codec defines the I/O collaborator contract between the
// scheduler and concrete wire formats (file containers and devices),
// plus the built-in codecs themselves.
package codec

import (
	"errors"

	"github.com/pipelined/sox/pcm"
)

// Flags describes capabilities and quirks a codec reports about itself,
// mirroring effect.Flags' bitset idiom but for the I/O side of the
// contract.
type Flags uint8

const (
	// IsDevice marks a codec as a live device stream rather than a
	// seekable file; Seek is never called on it.
	IsDevice Flags = 1 << iota
	// SupportsSeek marks a codec whose Seek is implemented and safe to
	// call, enabling the scheduler's trim fast-path.
	SupportsSeek
	// PhonyOutput marks a codec that discards everything written to it
	// (the "-n" null sink), used for dry runs and benchmarking.
	PhonyOutput
	// NoStandardIO marks a codec that cannot be opened against stdin or
	// stdout (most device and compressed formats).
	NoStandardIO
)

// Has reports whether f includes bit.
func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// ErrEOF signals a read codec has no more samples to provide.
var ErrEOF = errors.New("codec: end of stream")

// Handle is an opened codec instance bound to one signal and one
// direction (read or write). The chain builder and scheduler only ever
// see Handles, never Codec factories, once a run has started.
type Handle interface {
	// Signal reports the native rate/channel layout of the opened
	// stream, as determined at open time (from a file header, device
	// default, or explicit override).
	Signal() pcm.Descriptor
	// Flags reports this handle's capability bits.
	Flags() Flags
	// Read fills buf with up to buf.WideLen() wide samples, returning
	// the number actually filled. Returns ErrEOF once exhausted.
	Read(buf pcm.Buffer) (int, error)
	// Write emits up to buf.WideLen() wide samples and returns the
	// number actually accepted. A writer may accept fewer (the device
	// codec takes at most one device buffer per call); the scheduler
	// calls Write again for the rest and treats a zero count as fatal.
	Write(buf pcm.Buffer) (int, error)
	// Seek skips ahead wide samples worth of stream position. Only
	// called when Flags().Has(SupportsSeek); skipped samples are
	// never delivered to Read.
	Seek(wide int64) error
	// Close releases any underlying resource (file descriptor, device
	// stream). Only the first call is guaranteed to succeed: the
	// file-backed and device handles return an error when closed again.
	Close() error
}

// LengthReporter is an optional capability a read Handle may implement
// when its container exposes the stream's total length up front (a WAV
// data-chunk size, for instance). Handles that can't know their length
// in advance (devices, most compressed streams) simply don't implement
// it; callers type-assert for it.
type LengthReporter interface {
	// Length reports the handle's total length in wide samples, or
	// (0, false) if unknown.
	Length() (int64, bool)
}

// Codec names a concrete wire format and opens Handles against it.
type Codec interface {
	// Name is the short identifier used in registry lookups and CLI
	// type-hint flags (e.g. "wav", "opus", "alsa", "null").
	Name() string
	// Extensions lists the file extensions (including the leading dot)
	// this codec claims by default, lowercase.
	Extensions() []string
	// OpenRead opens path for reading, returning a Handle whose Signal
	// reflects what was actually found in the stream (or device
	// default). override, when non-nil, forces the descriptor instead
	// of relying on autodetection — used for headerless formats.
	OpenRead(path string, override *pcm.Descriptor) (Handle, error)
	// OpenWrite opens path for writing at the given descriptor.
	OpenWrite(path string, sig pcm.Descriptor) (Handle, error)
}
