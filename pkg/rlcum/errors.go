package rlcum

import "errors"

var (
	// ErrNilUpperCallback is returned by New when no deliverSdu callback is
	// supplied; there is nothing sensible to do with a reassembled SDU
	// without one.
	ErrNilUpperCallback = errors.New("rlcum: deliverSdu callback must not be nil")

	// ErrNilMacCallbacks is returned by New when the MAC-facing callbacks
	// (macTransmitPdu, reportBufferStatus) are missing.
	ErrNilMacCallbacks = errors.New("rlcum: macTransmitPdu/reportBufferStatus callbacks must not be nil")
)
