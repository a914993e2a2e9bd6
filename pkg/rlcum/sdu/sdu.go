// Package sdu defines the byte-buffer-plus-tag types exchanged between the
// UM-RLC entity and its upper layer (SDU) and lower layer (PDU).
package sdu

import "time"

// Status describes how much of an originating PDCP PDU a byte run
// represents, mirroring the per-SDU status tag of the data model.
type Status int

const (
	Full Status = iota
	FirstSegment
	MiddleSegment
	LastSegment
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case Full:
		return "FULL"
	case FirstSegment:
		return "FIRST_SEGMENT"
	case MiddleSegment:
		return "MIDDLE_SEGMENT"
	case LastSegment:
		return "LAST_SEGMENT"
	default:
		return "UNKNOWN"
	}
}

// SDU is a queued upper-layer payload together with its status tag and
// enqueue timestamp, used for head-of-line delay reporting.
type SDU struct {
	Bytes   []byte
	Status  Status
	Arrival time.Time
}

// Size returns the number of payload bytes.
func (s SDU) Size() int { return len(s.Bytes) }

// Split divides the SDU at offset n, returning the taken front part and the
// remaining tail, each retagged per the status-transition rule below. The
// taken front always becomes the terminal data field of the PDU under
// construction; the tail is reinserted at the head of the tx queue.
func (s SDU) Split(n int) (taken, remainder SDU) {
	front := make([]byte, n)
	copy(front, s.Bytes[:n])
	rest := make([]byte, len(s.Bytes)-n)
	copy(rest, s.Bytes[n:])

	taken = SDU{Bytes: front, Arrival: s.Arrival}
	remainder = SDU{Bytes: rest, Arrival: s.Arrival}

	switch s.Status {
	case Full:
		taken.Status = FirstSegment
		remainder.Status = LastSegment
	case LastSegment:
		taken.Status = MiddleSegment
		remainder.Status = LastSegment
	case FirstSegment:
		taken.Status = FirstSegment
		remainder.Status = MiddleSegment
	case MiddleSegment:
		taken.Status = MiddleSegment
		remainder.Status = MiddleSegment
	}
	return taken, remainder
}

// Field is one data field carried inside a PDU: the raw bytes plus whether
// this field was encoded with a length indicator (non-terminal) or not
// (terminal field, no LI).
type Field struct {
	Bytes     []byte
	HasLength bool
}

// PDU is a fully framed UM-RLC protocol data unit: a sequence number,
// framing info, and an ordered list of data fields.
type PDU struct {
	SeqNumber  uint16
	FirstByte  bool
	LastByte   bool
	Fields     []Field
	EgressTime time.Time
}

// TotalBytes returns the sum of all field payload sizes.
func (p PDU) TotalBytes() int {
	n := 0
	for _, f := range p.Fields {
		n += len(f.Bytes)
	}
	return n
}

// WirePdu is the concrete stand-in for the packet-container-plus-byte-tag
// abstraction the RLC entity's lower layer is assumed to provide: the
// serialized wire bytes plus the sender's egress timestamp, which rides
// alongside the bytes rather than inside them so it survives
// segmentation-unaware forwarding.
type WirePdu struct {
	Bytes      []byte
	EgressTime time.Time
}
