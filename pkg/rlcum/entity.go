// Package rlcum implements the core of an LTE Radio Link Control entity
// operating in Unacknowledged Mode: segmentation/concatenation on transmit,
// reordering and reassembly on receive, sitting between an upper PDCP layer
// and a lower MAC layer.
package rlcum

import (
	"strconv"
	"sync"
	"time"

	"github.com/mteoli/rlcum/internal/logger"
	"github.com/mteoli/rlcum/pkg/rlcum/clock"
	"github.com/mteoli/rlcum/pkg/rlcum/header"
	"github.com/mteoli/rlcum/pkg/rlcum/metrics"
	"github.com/mteoli/rlcum/pkg/rlcum/rx"
	"github.com/mteoli/rlcum/pkg/rlcum/sdu"
	"github.com/mteoli/rlcum/pkg/rlcum/tx"
	"github.com/mteoli/rlcum/pkg/rlcum/window"
)

// MacTransmitPduFunc is called at most once per NotifyTxOpportunity with the
// PDU the entity wants sent over the air.
type MacTransmitPduFunc func(rnti uint16, lcid uint8, pdu sdu.WirePdu)

// ReportBufferStatusFunc mirrors the MAC SAP's buffer-status report.
type ReportBufferStatusFunc func(rnti uint16, lcid uint8, status tx.BufferStatus)

// DeliverSduFunc is called once per SDU the receive path reassembles.
type DeliverSduFunc func(bytes []byte)

// Entity is a single UM-RLC instance bound to one (rnti, lcid) radio bearer.
// It is driven by three event sources — upper-layer enqueue, MAC pull, and
// timer expiry — all of which are serialized behind mu, per the
// single-mutex concurrency model.
type Entity struct {
	mu sync.Mutex

	cfg Config
	win window.SeqWindow
	clk clock.Clock
	log logger.Logger
	met *metrics.Metrics

	tx *tx.Engine
	rx *rx.Controller

	macTransmitPdu     MacTransmitPduFunc
	reportBufferStatus ReportBufferStatusFunc
	deliverSdu         DeliverSduFunc
}

// Options configures optional collaborators; the zero value uses
// SystemClock, a no-op logger, and an unregistered metrics bundle.
type Options struct {
	Clock   clock.Clock
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// New creates an Entity bound to cfg's (rnti, lcid), wiring the given
// callbacks. A zero-size buffer-status report fires immediately at
// construction, before any SDU is ever enqueued.
func New(cfg Config, deliverSdu DeliverSduFunc, macTransmitPdu MacTransmitPduFunc, reportBufferStatus ReportBufferStatusFunc, opts Options) (*Entity, error) {
	if deliverSdu == nil {
		return nil, ErrNilUpperCallback
	}
	if macTransmitPdu == nil || reportBufferStatus == nil {
		return nil, ErrNilMacCallbacks
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	met := opts.Metrics
	if met == nil {
		met = metrics.NewUnregistered()
	}

	win := window.New(cfg.SNModulus, cfg.UMWindowSize)

	e := &Entity{
		cfg:                cfg,
		win:                win,
		clk:                clk,
		log:                log,
		met:                met,
		tx:                 tx.New(cfg.SNModulus),
		macTransmitPdu:     macTransmitPdu,
		reportBufferStatus: reportBufferStatus,
		deliverSdu:         deliverSdu,
	}
	e.rx = rx.NewController(win, clk, cfg.TReordering, e.onSduReassembled)
	e.rx.SetTimerGuard(func(f func()) {
		e.mu.Lock()
		defer e.mu.Unlock()
		f()
	})

	e.reportBufferStatus(cfg.RNTI, cfg.LCID, tx.EmptyBufferStatus())
	return e, nil
}

// Close cancels the outstanding reordering timer and drops any partially
// reassembled SDU still buffered in the rx path. Once closed the entity
// must not be driven further.
func (e *Entity) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rx.Close()
}

func (e *Entity) onSduReassembled(bytes []byte) {
	e.deliverSdu(bytes)
}

// TransmitSdu accepts one SDU from the upper layer and reports the updated
// tx buffer status.
func (e *Entity) TransmitSdu(bytes []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	status := e.tx.Enqueue(bytes, e.clk.Now())
	e.met.TxQueueBytes.WithLabelValues(e.rntiLabel(), e.lcidLabel()).Set(float64(status.TxQueueSize))
	e.met.TxQueueHOL.WithLabelValues(e.rntiLabel(), e.lcidLabel()).Set(float64(status.TxQueueHolDelayMs) / 1000)
	e.reportBufferStatus(e.cfg.RNTI, e.cfg.LCID, status)
}

// NotifyTxOpportunity gives the entity a MAC opportunity of byte_budget
// bytes. It calls macTransmitPdu at most once before returning.
func (e *Entity) NotifyTxOpportunity(byteBudget uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clk.Now()
	pdu, ok := e.tx.BuildPDU(int(byteBudget), now)
	if !ok {
		return
	}

	wire, err := header.Marshal(pdu)
	if err != nil {
		e.log.Error("failed to marshal outgoing PDU sn=%d: %v", pdu.SeqNumber, err)
		return
	}

	e.met.TxPduBytes.WithLabelValues(e.rntiLabel(), e.lcidLabel()).Observe(float64(len(wire)))
	e.macTransmitPdu(e.cfg.RNTI, e.cfg.LCID, sdu.WirePdu{Bytes: wire, EgressTime: now})
}

// NotifyHarqFailure is a no-op: UM-RLC does not react to HARQ outcomes.
func (e *Entity) NotifyHarqFailure() {}

// ReceivePdu delivers one PDU received from the air.
func (e *Entity) ReceivePdu(wire sdu.WirePdu) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pdu, err := header.Unmarshal(wire.Bytes)
	if err != nil {
		e.log.Warn("dropping malformed PDU: %v", err)
		e.met.ProtocolViolations.WithLabelValues(e.rntiLabel(), e.lcidLabel()).Inc()
		return
	}

	var delay time.Duration
	if !wire.EgressTime.IsZero() {
		delay = e.clk.Now().Sub(wire.EgressTime)
	}
	e.met.RxPduBytes.WithLabelValues(e.rntiLabel(), e.lcidLabel()).Observe(float64(len(wire.Bytes)))
	e.met.RxDelay.WithLabelValues(e.rntiLabel(), e.lcidLabel()).Observe(delay.Seconds())

	before := e.rx.Discarded
	beforeErr := e.rx.ProtocolErrors
	e.rx.ReceivePdu(pdu)
	if e.rx.Discarded > before {
		e.met.ReassemblyDiscards.WithLabelValues(e.rntiLabel(), e.lcidLabel()).Add(float64(e.rx.Discarded - before))
	}
	if e.rx.ProtocolErrors > beforeErr {
		e.log.Warn("dropping PDU sn=%d: protocol violation in reassembly", pdu.SeqNumber)
		e.met.ProtocolViolations.WithLabelValues(e.rntiLabel(), e.lcidLabel()).Add(float64(e.rx.ProtocolErrors - beforeErr))
	}
}

func (e *Entity) rntiLabel() string { return strconv.Itoa(int(e.cfg.RNTI)) }
func (e *Entity) lcidLabel() string { return strconv.Itoa(int(e.cfg.LCID)) }
