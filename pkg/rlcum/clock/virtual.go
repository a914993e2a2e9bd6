package clock

import (
	"container/heap"
	"sync"
	"time"
)

// VirtualClock is a manually-advanced Clock for deterministic tests. Pending
// callbacks are kept in a min-heap ordered by fire time, specialized to a
// single field since the entity only ever has one outstanding timer.
type VirtualClock struct {
	mu   sync.Mutex
	now  time.Time
	heap pendingHeap
	seq  uint64
}

// NewVirtualClock creates a VirtualClock starting at the given time.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

// Now returns the clock's current virtual time.
func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run when the virtual clock reaches now+d. The
// callback only runs when the test calls Advance or AdvanceTo past that
// instant.
func (c *VirtualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	p := &pending{fireAt: c.now.Add(d), fn: f, id: c.seq}
	heap.Push(&c.heap, p)
	return virtualTimer{clock: c, id: p.id}
}

// Advance moves the virtual clock forward by d, running any callbacks whose
// fire time is now due, in fire-time order.
func (c *VirtualClock) Advance(d time.Duration) {
	c.AdvanceTo(c.Now().Add(d))
}

// AdvanceTo moves the virtual clock forward to t (a no-op if t is not after
// the current time), running any callbacks due by t in fire-time order.
func (c *VirtualClock) AdvanceTo(t time.Time) {
	for {
		c.mu.Lock()
		if c.now.Before(t) {
			c.now = t
		}
		if c.heap.Len() == 0 || c.heap[0].fireAt.After(c.now) {
			c.mu.Unlock()
			return
		}
		p := heap.Pop(&c.heap).(*pending)
		c.mu.Unlock()
		if !p.cancelled {
			p.fn()
		}
	}
}

func (c *VirtualClock) cancel(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.heap {
		if p.id == id {
			p.cancelled = true
			return
		}
	}
}

type pending struct {
	fireAt    time.Time
	fn        func()
	id        uint64
	cancelled bool
	index     int
}

type virtualTimer struct {
	clock *VirtualClock
	id    uint64
}

func (v virtualTimer) Cancel() { v.clock.cancel(v.id) }

// pendingHeap implements container/heap.Interface ordered by fire time.
type pendingHeap []*pending

func (h pendingHeap) Len() int            { return len(h) }
func (h pendingHeap) Less(i, j int) bool  { return h[i].fireAt.Before(h[j].fireAt) }
func (h pendingHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pendingHeap) Push(x interface{}) {
	p := x.(*pending)
	p.index = len(*h)
	*h = append(*h, p)
}

func (h *pendingHeap) Pop() interface{} {
	old := *h
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	p.index = -1
	*h = old[:n-1]
	return p
}
