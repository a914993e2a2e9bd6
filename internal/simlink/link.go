// Package simlink implements a loss/reorder-injecting in-memory medium
// connecting two RLC entities, standing in for the real MAC/PHY path. No
// test or program in this module imports it.
package simlink

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/mteoli/rlcum/internal/logger"
	"github.com/mteoli/rlcum/pkg/rlcum/sdu"
)

// Config controls the channel impairments a Link injects.
type Config struct {
	// LossProbability is the chance, in [0,1), that a PDU is dropped.
	LossProbability float64
	// ReorderProbability is the chance, in [0,1), that a PDU is held back
	// one slot so the next PDU overtakes it.
	ReorderProbability float64
	// Latency delays delivery of every surviving PDU by a fixed amount.
	Latency time.Duration
	// Seed seeds the deterministic PRNG driving loss/reorder decisions.
	Seed int64
}

// Link is a one-way medium: PDUs handed to Send are queued, impaired
// according to Config, and eventually handed to deliver on a dedicated
// goroutine. Two Links (one per direction) connect a pair of entities.
type Link struct {
	deliver func(sdu.WirePdu)
	cfg     Config
	log     logger.Logger
	stats   Statistics
	rng     *rand.Rand
	rngMu   sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	queue  chan sdu.WirePdu

	holdMu sync.Mutex
	held   *sdu.WirePdu
}

// New creates and starts a Link that calls deliver for every PDU that
// survives the configured impairments.
func New(deliver func(sdu.WirePdu), cfg Config, log logger.Logger) *Link {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &Link{
		deliver: deliver,
		cfg:     cfg,
		log:     log,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		ctx:     ctx,
		cancel:  cancel,
		queue:   make(chan sdu.WirePdu, 128),
	}
	l.wg.Add(1)
	go l.loop()
	return l
}

// Send enqueues a PDU for delivery. If the internal queue is full the PDU
// is dropped and counted, mirroring a saturated physical link.
func (l *Link) Send(pdu sdu.WirePdu) {
	select {
	case l.queue <- pdu:
	default:
		l.stats.Dropped()
		l.log.Warn("simlink: queue full, dropping PDU")
	}
}

// Close stops the delivery goroutine and waits for it to exit.
func (l *Link) Close() {
	l.cancel()
	l.wg.Wait()
}

// Statistics returns the link's counters.
func (l *Link) Statistics() *Statistics { return &l.stats }

func (l *Link) loop() {
	defer l.wg.Done()
	for {
		select {
		case <-l.ctx.Done():
			return
		case pdu := <-l.queue:
			l.process(pdu)
		}
	}
}

func (l *Link) process(pdu sdu.WirePdu) {
	if l.chance(l.cfg.LossProbability) {
		l.stats.Dropped()
		return
	}

	if l.cfg.Latency > 0 {
		select {
		case <-time.After(l.cfg.Latency):
		case <-l.ctx.Done():
			return
		}
	}

	l.holdMu.Lock()
	if l.held == nil && l.chance(l.cfg.ReorderProbability) {
		held := pdu
		l.held = &held
		l.holdMu.Unlock()
		l.stats.Reordered()
		return
	}
	prev := l.held
	l.held = nil
	l.holdMu.Unlock()

	l.stats.Sent()
	l.deliver(pdu)
	if prev != nil {
		l.stats.Sent()
		l.deliver(*prev)
	}
}

func (l *Link) chance(p float64) bool {
	if p <= 0 {
		return false
	}
	l.rngMu.Lock()
	defer l.rngMu.Unlock()
	return l.rng.Float64() < p
}
