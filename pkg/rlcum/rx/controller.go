package rx

import (
	"time"

	"github.com/mteoli/rlcum/pkg/rlcum/clock"
	"github.com/mteoli/rlcum/pkg/rlcum/sdu"
	"github.com/mteoli/rlcum/pkg/rlcum/window"
)

// Controller owns VR(UR)/VR(UX)/VR(UH), the rx buffer, the reassembler, and
// the single outstanding reordering timer. It is the only component that
// decides when a buffered PDU is ready to be fed to the Reassembler.
type Controller struct {
	win window.SeqWindow

	vrUR uint16
	vrUX uint16
	vrUH uint16

	buf     *Buffer
	reasm   *Reassembler
	clk     clock.Clock
	timer   clock.Timer
	reorder time.Duration
	guard   func(func())

	deliver func([]byte)

	Discarded      int
	ProtocolErrors int
}

// NewController creates a controller over the given window and clock,
// delivering reassembled SDUs to deliver. The timer-expiry callback runs
// unguarded by default (fine for single-goroutine tests); production
// callers driving a real Clock must install a guard via SetTimerGuard that
// serializes it against whatever lock also protects ReceivePdu et al.
func NewController(win window.SeqWindow, clk clock.Clock, tReordering time.Duration, deliver func([]byte)) *Controller {
	return &Controller{
		win:     win,
		buf:     NewBuffer(),
		reasm:   NewReassembler(),
		clk:     clk,
		reorder: tReordering,
		deliver: deliver,
		guard:   func(f func()) { f() },
	}
}

// SetTimerGuard installs a wrapper that every timer-expiry callback runs
// inside. Entity uses this to take its own mutex before the callback
// touches vrUR/vrUX/vrUH/buf/reasm, since AfterFunc under SystemClock fires
// on its own goroutine.
func (c *Controller) SetTimerGuard(guard func(func())) {
	c.guard = guard
}

// Close cancels the outstanding reordering timer, if any, and drops any
// partially reassembled SDU still held by the reassembler.
func (c *Controller) Close() {
	if c.timer != nil {
		c.timer.Cancel()
		c.timer = nil
	}
	c.reasm.Abandon()
}

// VRState exposes the three receive state variables, mainly for tests and
// metrics (invariant I2: vrUR <= vrUX <= vrUH under modular interpretation).
func (c *Controller) VRState() (ur, ux, uh uint16) {
	return c.vrUR, c.vrUX, c.vrUH
}

// ReceivePdu admits or discards a freshly arrived PDU per the admission
// rule, then runs the window update, contiguous drain, and timer governance
// steps in sequence.
func (c *Controller) ReceivePdu(pdu sdu.PDU) {
	sn := pdu.SeqNumber

	if c.admissionDiscard(sn) {
		c.Discarded++
		return
	}
	c.buf.Insert(pdu)

	if !c.win.Inside(sn, c.vrUH) {
		c.vrUH = c.win.Add(sn, 1)
		c.drainOutsideWindow()
		if !c.win.Inside(c.vrUR, c.vrUH) {
			c.vrUR = c.win.Add(c.vrUH, -int32(c.win.Size()))
		}
	}

	c.contiguousDrain()
	c.governTimer()
}

// admissionDiscard implements §4.5's admission rule: reject a duplicate
// already inside the reordering window, or an SN that has already slid out
// the trailing edge of the window.
func (c *Controller) admissionDiscard(sn uint16) bool {
	if c.between(c.vrUR, sn, c.vrUH) && c.buf.Contains(sn) {
		return true
	}
	low := c.win.Add(c.vrUH, -int32(c.win.Size()))
	if c.between(low, sn, c.vrUR) || (sn == low && low != c.vrUR) {
		return true
	}
	return false
}

// between reports whether x lies strictly between lo and hi going forward
// modulo the window's modulus (lo < x < hi in wraparound terms).
func (c *Controller) between(lo, x, hi uint16) bool {
	span := c.win.Mod(int32(hi) - int32(lo))
	offset := c.win.Mod(int32(x) - int32(lo))
	return offset > 0 && offset < span
}

// drainOutsideWindow removes every buffered SN that now falls outside the
// (just slid) window and feeds it to the reassembler in ascending order, by
// key snapshot rather than by mutating the map mid-iteration.
func (c *Controller) drainOutsideWindow() {
	low := c.win.Add(c.vrUH, -int32(c.win.Size()))
	for _, sn := range c.buf.KeysFrom(c.win, low) {
		if c.win.Inside(sn, c.vrUH) {
			continue
		}
		c.drainOne(sn)
	}
}

// contiguousDrain implements §4.5's contiguous-drain step: if the buffer
// holds the entry at VR(UR), advance VR(UR) to the next gap and drain
// everything below the new VR(UR).
func (c *Controller) contiguousDrain() {
	if !c.buf.Contains(c.vrUR) {
		return
	}
	for c.buf.Contains(c.vrUR) {
		c.vrUR = c.win.Add(c.vrUR, 1)
	}
	c.drainBelow(c.vrUR)
}

// drainBelow removes and reassembles every buffered SN strictly less than
// (in modular distance from VR(UH)) the given boundary, in ascending order.
func (c *Controller) drainBelow(boundary uint16) {
	low := c.win.Add(c.vrUH, -int32(c.win.Size()))
	for _, sn := range c.buf.KeysFrom(c.win, low) {
		if sn == boundary {
			continue
		}
		if c.win.Mod(int32(boundary)-int32(sn)) > c.win.Size() {
			continue
		}
		c.drainOne(sn)
	}
}

func (c *Controller) drainOne(sn uint16) {
	pdu, ok := c.buf.Remove(sn)
	if !ok {
		return
	}
	res := c.reasm.Process(pdu, c.deliver)
	c.Discarded += res.Discarded
	if res.ProtocolError {
		c.ProtocolErrors++
	}
}

// governTimer implements §4.5's timer governance: cancel if the trigger SN
// has been passed or fallen outside the window (and isn't the current high
// mark); schedule if nothing is running and there's unresolved buffer ahead
// of VR(UR).
func (c *Controller) governTimer() {
	if c.timer != nil {
		// VR(UX) <= VR(UR): both are bounded by VR(UH) on the same side of
		// the window (invariant I2), so compare their modular distance back
		// from VR(UH) rather than raw SN values.
		distUR := c.win.Mod(int32(c.vrUH) - int32(c.vrUR))
		distUX := c.win.Mod(int32(c.vrUH) - int32(c.vrUX))
		uxPassedUR := distUR <= distUX
		if uxPassedUR || (!c.win.Inside(c.vrUX, c.vrUH) && c.vrUX != c.vrUH) {
			c.timer.Cancel()
			c.timer = nil
		}
	}
	if c.timer == nil && c.vrUH != c.vrUR {
		c.vrUX = c.vrUH
		c.scheduleTimer()
	}
}

func (c *Controller) scheduleTimer() {
	c.timer = c.clk.AfterFunc(c.reorder, func() { c.guard(c.onTimerExpiry) })
}

// onTimerExpiry implements §4.5's timer-expiry handler: advance VR(UR) to
// the first SN at or after VR(UX) not currently buffered, drain everything
// below it, and restart the timer if there's still unresolved buffer ahead.
func (c *Controller) onTimerExpiry() {
	c.timer = nil

	sn := c.vrUX
	for c.buf.Contains(sn) {
		sn = c.win.Add(sn, 1)
	}
	c.vrUR = sn
	c.drainBelow(c.vrUR)

	if c.vrUH != c.vrUR {
		c.vrUX = c.vrUH
		c.scheduleTimer()
	}
}
