package rx

import "github.com/mteoli/rlcum/pkg/rlcum/sdu"

// State is the reassembler's two-state automaton position.
type State int

const (
	// WaitingFull is waiting for a PDU whose first data field opens a new
	// SDU (no partial fragment held).
	WaitingFull State = iota
	// WaitingTail is holding a partial SDU (keepS0) and waiting for its
	// continuation.
	WaitingTail
)

func (s State) String() string {
	if s == WaitingTail {
		return "WAITING_SI_SF"
	}
	return "WAITING_S0_FULL"
}

// Result summarizes the outcome of feeding one PDU to the reassembler, for
// callers that want to count discards and protocol violations.
type Result struct {
	Delivered     int
	Discarded     int
	ProtocolError bool
}

// Reassembler is the two-state automaton over (state, keepS0, PDU, lost).
// Process switches on (state, lost) and then on the framing bits, one case
// per transition; the cases are written as nested switch statements, not as
// a lookup table.
type Reassembler struct {
	state    State
	keep     []byte
	hasKeep  bool
	expected uint16
}

// NewReassembler creates a reassembler in WAITING_S0_FULL with no held
// fragment, expecting SN 0 first.
func NewReassembler() *Reassembler {
	return &Reassembler{state: WaitingFull, expected: 0}
}

// State returns the current automaton state (invariant I4: WaitingTail iff
// a fragment is held).
func (r *Reassembler) State() State { return r.state }

// HasKeep reports whether a partial SDU is currently held.
func (r *Reassembler) HasKeep() bool { return r.hasKeep }

// Abandon drops any held partial SDU without delivering it and returns the
// automaton to WAITING_S0_FULL, for use when the entity is shutting down.
func (r *Reassembler) Abandon() {
	r.clearKeep()
	r.state = WaitingFull
}

// Process feeds one PDU, delivered in ascending SN order by the caller, and
// invokes deliver once per completed SDU. PDUs must arrive pre-ordered;
// Process itself does not reorder.
func (r *Reassembler) Process(pdu sdu.PDU, deliver func([]byte)) Result {
	lost := pdu.SeqNumber != r.expected
	r.expected = pdu.SeqNumber + 1

	fields := pdu.Fields
	var res Result

	switch {
	case r.state == WaitingFull && !lost:
		switch {
		case pdu.FirstByte && pdu.LastByte:
			r.deliverAll(fields, deliver, &res)
		case pdu.FirstByte && !pdu.LastByte:
			r.deliverAllButLast(fields, deliver, &res)
			r.setKeep(lastBytes(fields))
			r.state = WaitingTail
		default:
			res.ProtocolError = true
		}

	case r.state == WaitingFull && lost:
		switch {
		case pdu.FirstByte && pdu.LastByte:
			r.deliverAll(fields, deliver, &res)
		case pdu.FirstByte && !pdu.LastByte:
			r.deliverAllButLast(fields, deliver, &res)
			r.setKeep(lastBytes(fields))
			r.state = WaitingTail
		case !pdu.FirstByte && pdu.LastByte:
			res.Discarded++
			rest := fields[1:]
			r.deliverAll(rest, deliver, &res)
		default: // !FirstByte && !LastByte
			res.Discarded++
			rest := fields[1:]
			if len(rest) == 0 {
				// only the orphaned field existed; nothing to keep
				break
			}
			r.deliverAllButLast(rest, deliver, &res)
			r.setKeep(lastBytes(rest))
			r.state = WaitingTail
		}

	case r.state == WaitingTail && !lost:
		switch {
		case !pdu.FirstByte && pdu.LastByte:
			merged := append(append([]byte{}, r.keep...), fields[0].Bytes...)
			deliver(merged)
			res.Delivered++
			r.clearKeep()
			r.deliverAll(fields[1:], deliver, &res)
			r.state = WaitingFull
		case !pdu.FirstByte && !pdu.LastByte:
			if len(fields) == 1 {
				r.keep = append(r.keep, fields[0].Bytes...)
				break
			}
			merged := append(append([]byte{}, r.keep...), fields[0].Bytes...)
			deliver(merged)
			res.Delivered++
			r.deliverAll(fields[1:len(fields)-1], deliver, &res)
			r.setKeep(fields[len(fields)-1].Bytes)
		default:
			res.ProtocolError = true
		}

	case r.state == WaitingTail && lost:
		switch {
		case pdu.FirstByte && pdu.LastByte:
			r.clearKeep()
			res.Discarded++
			r.deliverAll(fields, deliver, &res)
			r.state = WaitingFull
		case pdu.FirstByte && !pdu.LastByte:
			r.clearKeep()
			res.Discarded++
			r.deliverAllButLast(fields, deliver, &res)
			r.setKeep(lastBytes(fields))
		case !pdu.FirstByte && pdu.LastByte:
			r.clearKeep()
			res.Discarded += 2
			rest := fields[1:]
			r.deliverAll(rest, deliver, &res)
			r.state = WaitingFull
		default: // !FirstByte && !LastByte
			r.clearKeep()
			res.Discarded += 2
			rest := fields[1:]
			if len(rest) == 0 {
				r.state = WaitingFull
				break
			}
			r.deliverAll(rest[:len(rest)-1], deliver, &res)
			r.setKeep(rest[len(rest)-1].Bytes)
		}
	}

	return res
}

func (r *Reassembler) deliverAll(fields []sdu.Field, deliver func([]byte), res *Result) {
	for _, f := range fields {
		deliver(f.Bytes)
		res.Delivered++
	}
}

func (r *Reassembler) deliverAllButLast(fields []sdu.Field, deliver func([]byte), res *Result) {
	if len(fields) == 0 {
		return
	}
	r.deliverAll(fields[:len(fields)-1], deliver, res)
}

func lastBytes(fields []sdu.Field) []byte {
	if len(fields) == 0 {
		return nil
	}
	return fields[len(fields)-1].Bytes
}

func (r *Reassembler) setKeep(b []byte) {
	r.keep = append([]byte{}, b...)
	r.hasKeep = true
}

func (r *Reassembler) clearKeep() {
	r.keep = nil
	r.hasKeep = false
}
