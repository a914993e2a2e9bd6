package rx

import (
	"sort"

	"github.com/mteoli/rlcum/pkg/rlcum/sdu"
	"github.com/mteoli/rlcum/pkg/rlcum/window"
)

// Buffer is the sparse SN-to-PDU map the controller holds PDUs in while
// they wait for reordering to resolve. There is no size bound beyond the
// 1024-entry key space.
type Buffer struct {
	pdus map[uint16]sdu.PDU
}

// NewBuffer creates an empty rx buffer.
func NewBuffer() *Buffer {
	return &Buffer{pdus: make(map[uint16]sdu.PDU)}
}

// Contains reports whether sn is currently held.
func (b *Buffer) Contains(sn uint16) bool {
	_, ok := b.pdus[sn]
	return ok
}

// Insert stores pdu at its own sequence number, replacing any entry already
// there. The admission rule upstream prevents this from ever firing in
// clean operation.
func (b *Buffer) Insert(pdu sdu.PDU) {
	b.pdus[pdu.SeqNumber] = pdu
}

// Remove deletes and returns the PDU at sn, if present.
func (b *Buffer) Remove(sn uint16) (sdu.PDU, bool) {
	pdu, ok := b.pdus[sn]
	if ok {
		delete(b.pdus, sn)
	}
	return pdu, ok
}

// Len returns the number of held PDUs.
func (b *Buffer) Len() int { return len(b.pdus) }

// KeysFrom returns a snapshot of held sequence numbers ordered by ascending
// modular distance from base, i.e. the true circular forward order
// starting at base itself. Draining must use this rather than plain
// numeric order near the SN-space wraparound point.
func (b *Buffer) KeysFrom(win window.SeqWindow, base uint16) []uint16 {
	keys := make([]uint16, 0, len(b.pdus))
	for sn := range b.pdus {
		keys = append(keys, sn)
	}
	sort.Slice(keys, func(i, j int) bool {
		di := win.Mod(int32(keys[i]) - int32(base))
		dj := win.Mod(int32(keys[j]) - int32(base))
		return di < dj
	})
	return keys
}
