package simlink

import "sync/atomic"

// Statistics tracks link-level counters for one Link direction.
type Statistics struct {
	numSent    uint64
	numDropped uint64
	numReorder uint64
}

// Sent increments the transmitted-PDU counter.
func (s *Statistics) Sent() { atomic.AddUint64(&s.numSent, 1) }

// Dropped increments the simulated-loss counter.
func (s *Statistics) Dropped() { atomic.AddUint64(&s.numDropped, 1) }

// Reordered increments the simulated-reorder counter.
func (s *Statistics) Reordered() { atomic.AddUint64(&s.numReorder, 1) }

// GetSent returns the transmitted-PDU count.
func (s *Statistics) GetSent() uint64 { return atomic.LoadUint64(&s.numSent) }

// GetDropped returns the simulated-loss count.
func (s *Statistics) GetDropped() uint64 { return atomic.LoadUint64(&s.numDropped) }

// GetReordered returns the simulated-reorder count.
func (s *Statistics) GetReordered() uint64 { return atomic.LoadUint64(&s.numReorder) }
