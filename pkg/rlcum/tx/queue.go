package tx

import (
	"container/list"

	"github.com/mteoli/rlcum/pkg/rlcum/sdu"
)

// sduQueue is the tx-buffer FIFO: SDUs queued by the upper layer, plus any
// remainder fragment reinserted at the head after a partial pull.
type sduQueue struct {
	items     *list.List
	byteCount int
}

func newSduQueue() *sduQueue {
	return &sduQueue{items: list.New()}
}

// PushBack enqueues an SDU at the tail (upper-layer arrival order).
func (q *sduQueue) PushBack(s sdu.SDU) {
	q.items.PushBack(s)
	q.byteCount += s.Size()
}

// PushFront reinserts a remainder fragment at the head, ahead of whatever
// is already queued.
func (q *sduQueue) PushFront(s sdu.SDU) {
	q.items.PushFront(s)
	q.byteCount += s.Size()
}

// PopFront removes and returns the head SDU, if any.
func (q *sduQueue) PopFront() (sdu.SDU, bool) {
	front := q.items.Front()
	if front == nil {
		return sdu.SDU{}, false
	}
	q.items.Remove(front)
	s := front.Value.(sdu.SDU)
	q.byteCount -= s.Size()
	return s, true
}

// Front returns the head SDU without removing it, for HOL delay reporting.
func (q *sduQueue) Front() (sdu.SDU, bool) {
	front := q.items.Front()
	if front == nil {
		return sdu.SDU{}, false
	}
	return front.Value.(sdu.SDU), true
}

// Len returns the number of queued SDUs/fragments.
func (q *sduQueue) Len() int { return q.items.Len() }

// ByteCount returns the sum of sizes of everything queued (invariant I1).
func (q *sduQueue) ByteCount() int { return q.byteCount }
