// Package tx implements the transmit side of the UM-RLC entity: queuing
// SDUs from the upper layer and, on each MAC opportunity, building exactly
// one PDU that respects the offered byte budget, segmenting or
// concatenating SDUs as needed and advancing the sequence number once per
// PDU. The package takes no locks; the caller serializes access.
package tx

import (
	"time"

	"github.com/mteoli/rlcum/pkg/rlcum/sdu"
)

// BufferStatus mirrors the MAC SAP's ReportBufferStatus parameters.
type BufferStatus struct {
	TxQueueSize         uint32
	TxQueueHolDelayMs   int64
	RetxQueueSize       uint32
	RetxQueueHolDelayMs int64
	StatusPduSize       uint32
}

// FixedHeaderSize is the smallest possible UMD header: framing info, first
// extension bit, sequence number, no LI chain.
const FixedHeaderSize = 2

// Engine owns the tx queue and sequence counter. It is not safe for
// concurrent use by multiple goroutines; callers (Entity) serialize access.
type Engine struct {
	queue   *sduQueue
	nextSN  uint16
	modulus uint16
}

// New creates an Engine whose sequence numbers wrap at modulus.
func New(modulus uint16) *Engine {
	return &Engine{queue: newSduQueue(), modulus: modulus}
}

// Enqueue tags bytes as a FULL SDU, appends it to the tail of the tx queue,
// and returns the buffer status report to send to MAC.
func (e *Engine) Enqueue(data []byte, now time.Time) BufferStatus {
	cp := make([]byte, len(data))
	copy(cp, data)
	e.queue.PushBack(sdu.SDU{Bytes: cp, Status: sdu.Full, Arrival: now})
	return e.bufferStatus(now)
}

func (e *Engine) bufferStatus(now time.Time) BufferStatus {
	bs := BufferStatus{
		TxQueueSize: uint32(e.queue.ByteCount() + 2*e.queue.Len()),
	}
	if front, ok := e.queue.Front(); ok {
		bs.TxQueueHolDelayMs = now.Sub(front.Arrival).Milliseconds()
	}
	return bs
}

// EmptyBufferStatus returns the zero buffer status the entity reports once
// at construction time, before any SDU has been enqueued.
func EmptyBufferStatus() BufferStatus {
	return BufferStatus{}
}

// QueueBytes returns the current tx queue byte count (invariant I1).
func (e *Engine) QueueBytes() int { return e.queue.ByteCount() }

// QueueLen returns the number of queued SDUs/fragments.
func (e *Engine) QueueLen() int { return e.queue.Len() }

// BuildPDU attempts to build one PDU that fits within budget bytes. It
// returns ok=false if the budget is too small (<=2 bytes, a legal null
// response) or the queue is empty.
func (e *Engine) BuildPDU(budget int, now time.Time) (sdu.PDU, bool) {
	if budget <= FixedHeaderSize {
		return sdu.PDU{}, false
	}
	head, ok := e.queue.PopFront()
	if !ok {
		return sdu.PDU{}, false
	}

	remaining := budget - FixedHeaderSize
	var fields []sdu.Field
	fieldIndex := 0

	firstByte := head.Status == sdu.Full || head.Status == sdu.FirstSegment
	lastByte := false

	for {
		switch {
		case head.Size() > remaining:
			taken, remainder := head.Split(remaining)
			fields = append(fields, sdu.Field{Bytes: taken.Bytes})
			e.queue.PushFront(remainder)
			lastByte = false
			goto done

		case head.Size() == remaining || e.queue.Len() == 0:
			fields = append(fields, sdu.Field{Bytes: head.Bytes})
			lastByte = head.Status == sdu.Full || head.Status == sdu.LastSegment
			goto done

		default:
			// LI-pair byte cost: the fixed header's framing info, first
			// extension bit and SN already occupy 13 bits; each additional (LI,E) pair costs
			// 12 bits, so pairs at even 0-based field indices land astride
			// a byte boundary (2 header bytes) and odd indices complete the
			// triplet (1 more byte).
			liCost := 1
			if fieldIndex%2 == 0 {
				liCost = 2
			}
			if head.Size()+liCost >= remaining {
				// LI-tagging this field would leave no room for even one
				// byte of the next SDU's data, so it becomes the terminal
				// field instead of paying for an LI pair nothing follows.
				fields = append(fields, sdu.Field{Bytes: head.Bytes})
				lastByte = head.Status == sdu.Full || head.Status == sdu.LastSegment
				goto done
			}

			fields = append(fields, sdu.Field{Bytes: head.Bytes, HasLength: true})
			remaining -= head.Size() + liCost
			fieldIndex++

			head, _ = e.queue.PopFront() // queue.Len()==0 was ruled out above
		}
	}

done:
	sn := e.nextSN
	e.nextSN = (e.nextSN + 1) % e.modulus

	return sdu.PDU{
		SeqNumber:  sn,
		FirstByte:  firstByte,
		LastByte:   lastByte,
		Fields:     fields,
		EgressTime: now,
	}, true
}
