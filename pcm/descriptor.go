package pcm

import "fmt"

// Encoding enumerates the wire-level sample encodings a codec may read
// or write. The canonical in-pipeline form is always signed PCM
// (Sample); other encodings only ever appear at a codec boundary.
type Encoding int

const (
	SignedPCM Encoding = iota
	UnsignedPCM
	Float
	MuLaw
	ALaw
	ADPCMIma
	ADPCMMS
	GSM
)

func (e Encoding) String() string {
	switch e {
	case SignedPCM:
		return "signed-pcm"
	case UnsignedPCM:
		return "unsigned-pcm"
	case Float:
		return "float"
	case MuLaw:
		return "mu-law"
	case ALaw:
		return "a-law"
	case ADPCMIma:
		return "adpcm-ima"
	case ADPCMMS:
		return "adpcm-ms"
	case GSM:
		return "gsm"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// Tri is a tri-state flag with an unset "inherit default" value, used
// for the reverse-bytes/nibbles/bits descriptor fields.
type Tri int

const (
	TriDefault Tri = iota
	TriYes
	TriNo
)

// Descriptor is the signal descriptor tuple of spec §3: it names both
// codec-level wire formats and the canonical stream format carried at
// chain boundaries.
type Descriptor struct {
	Rate         int // Hz, must be positive
	Channels     int // must be positive
	SampleSize   int // bytes: 1, 2, 3, 4 or 8
	Encoding     Encoding
	ReverseBytes Tri
	ReverseNibbles Tri
	ReverseBits  Tri
}

// Valid reports whether the descriptor satisfies the data model's basic
// shape constraints (positive rate/channels, a legal sample size).
func (d Descriptor) Valid() error {
	if d.Rate <= 0 {
		return fmt.Errorf("pcm: rate must be positive, got %d", d.Rate)
	}
	if d.Channels <= 0 {
		return fmt.Errorf("pcm: channels must be positive, got %d", d.Channels)
	}
	switch d.SampleSize {
	case 1, 2, 3, 4, 8:
	default:
		return fmt.Errorf("pcm: unsupported sample size %d bytes", d.SampleSize)
	}
	return nil
}

// SameRateAndChannels reports whether two descriptors agree on rate and
// channel count — the agreement the chain invariant (spec §3) requires
// between adjacent stages, and the fatal-mismatch check combine.New
// applies across concatenate inputs.
func (d Descriptor) SameRateAndChannels(o Descriptor) bool {
	return d.Rate == o.Rate && d.Channels == o.Channels
}
