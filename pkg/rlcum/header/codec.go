// Package header implements the UMD PDU header codec: a fixed 2-byte part
// (framing info, first extension bit, 10-bit sequence number) followed by a
// chain of (length indicator, extension bit) pairs, terminated by an
// extension bit of 0. This is the only package that knows the wire bit
// layout; every other component treats headers as opaque values built
// through Encoder/Decoder.
package header

import (
	"errors"
)

// LIBits is the width of one length indicator field.
const LIBits = 11

// MaxLengthIndicator is the largest value a length indicator can encode.
const MaxLengthIndicator = (1 << LIBits) - 1

// ErrTruncated is returned by the Decoder methods and by Unmarshal when the
// input is too short to contain a complete header or the fields it declares.
var ErrTruncated = errors.New("header: truncated PDU")

// ErrLengthIndicatorTooLarge is returned by PushLengthIndicatorPair (and so
// by Marshal) if a non-terminal field is longer than a length indicator can
// express.
var ErrLengthIndicatorTooLarge = errors.New("header: length indicator overflow")

// Encoder assembles a UMD header bit by bit, in the same order a decoder
// will pop them: framing info, first extension bit, sequence number, then
// (length indicator, extension bit) pairs for every field but the last.
type Encoder struct {
	w bitWriter
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// SetFramingInfo writes the 2-bit framing info (first_byte_flag,
// last_byte_flag).
func (e *Encoder) SetFramingInfo(firstByte, lastByte bool) {
	e.w.writeBit(boolBit(firstByte))
	e.w.writeBit(boolBit(lastByte))
}

// PushFirstExtensionBit writes the extension bit that immediately precedes
// the sequence number: 1 iff the PDU carries more than one data field.
func (e *Encoder) PushFirstExtensionBit(moreFields bool) {
	e.w.writeBit(boolBit(moreFields))
}

// SetSequenceNumber writes the 10-bit sequence number.
func (e *Encoder) SetSequenceNumber(sn uint16) {
	e.w.writeBits(uint32(sn), 10)
}

// PushLengthIndicatorPair writes one (length indicator, extension bit) pair:
// the length of a non-terminal data field, followed by whether another pair
// follows before the terminal field.
func (e *Encoder) PushLengthIndicatorPair(length int, moreAfter bool) error {
	if length < 0 || length > MaxLengthIndicator {
		return ErrLengthIndicatorTooLarge
	}
	e.w.writeBits(uint32(length), LIBits)
	e.w.writeBit(boolBit(moreAfter))
	return nil
}

// Bytes finalizes the header, padding the last byte with zero bits, and
// returns the encoded header bytes.
func (e *Encoder) Bytes() []byte {
	return e.w.bytes()
}

// Decoder walks a UMD header in the same field order Encoder wrote it.
type Decoder struct {
	r bitReader
}

// NewDecoder wraps data for decoding. data must start at the first header
// bit (framing info).
func NewDecoder(data []byte) *Decoder {
	return &Decoder{r: newBitReader(data)}
}

// FramingInfo reads the 2-bit framing info.
func (d *Decoder) FramingInfo() (firstByte, lastByte bool, err error) {
	b0, err := d.r.readBit()
	if err != nil {
		return false, false, err
	}
	b1, err := d.r.readBit()
	if err != nil {
		return false, false, err
	}
	return b0 == 1, b1 == 1, nil
}

// PeekSequenceNumber returns the sequence number without advancing past the
// first extension bit that precedes it. It assumes FramingInfo has already
// been consumed.
func (d *Decoder) PeekSequenceNumber() (uint16, error) {
	saved := d.r
	firstE, err := d.r.readBit()
	if err != nil {
		d.r = saved
		return 0, err
	}
	sn, err := d.r.readBits(10)
	d.r = saved
	_ = firstE
	if err != nil {
		return 0, err
	}
	return uint16(sn), nil
}

// SequenceNumber consumes the first extension bit and the 10-bit sequence
// number, returning the SN and whether the PDU has more than one field.
func (d *Decoder) SequenceNumber() (sn uint16, moreFields bool, err error) {
	firstE, err := d.r.readBit()
	if err != nil {
		return 0, false, err
	}
	v, err := d.r.readBits(10)
	if err != nil {
		return 0, false, err
	}
	return uint16(v), firstE == 1, nil
}

// PopLengthIndicatorPair reads one (length indicator, extension bit) pair.
func (d *Decoder) PopLengthIndicatorPair() (length int, moreAfter bool, err error) {
	v, err := d.r.readBits(LIBits)
	if err != nil {
		return 0, false, err
	}
	e, err := d.r.readBit()
	if err != nil {
		return 0, false, err
	}
	return int(v), e == 1, nil
}

// ByteOffset returns how many whole bytes of the input have been consumed,
// rounding up to the next byte boundary — the offset at which data fields
// begin.
func (d *Decoder) ByteOffset() int {
	return d.r.byteOffset()
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
