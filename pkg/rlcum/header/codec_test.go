package header

import "testing"

func TestEncodeDecodeSingleField(t *testing.T) {
	e := NewEncoder()
	e.SetFramingInfo(true, true)
	e.PushFirstExtensionBit(false)
	e.SetSequenceNumber(513)
	data := e.Bytes()

	if len(data) != 2 {
		t.Fatalf("expected 2-byte fixed header, got %d bytes", len(data))
	}

	d := NewDecoder(data)
	fb, lb, err := d.FramingInfo()
	if err != nil || !fb || !lb {
		t.Fatalf("FramingInfo = (%v,%v,%v), want (true,true,nil)", fb, lb, err)
	}

	peeked, err := d.PeekSequenceNumber()
	if err != nil || peeked != 513 {
		t.Fatalf("PeekSequenceNumber = (%d, %v), want (513, nil)", peeked, err)
	}

	sn, more, err := d.SequenceNumber()
	if err != nil || sn != 513 || more {
		t.Fatalf("SequenceNumber = (%d, %v, %v), want (513, false, nil)", sn, more, err)
	}

	if got := d.ByteOffset(); got != 2 {
		t.Errorf("ByteOffset() = %d, want 2", got)
	}
}

func TestEncodeDecodeMultiField(t *testing.T) {
	e := NewEncoder()
	e.SetFramingInfo(true, true)
	e.PushFirstExtensionBit(true)
	e.SetSequenceNumber(0)
	if err := e.PushLengthIndicatorPair(10, true); err != nil {
		t.Fatalf("PushLengthIndicatorPair: %v", err)
	}
	if err := e.PushLengthIndicatorPair(10, false); err != nil {
		t.Fatalf("PushLengthIndicatorPair: %v", err)
	}
	data := e.Bytes()

	d := NewDecoder(data)
	if _, _, err := d.FramingInfo(); err != nil {
		t.Fatalf("FramingInfo: %v", err)
	}
	sn, more, err := d.SequenceNumber()
	if err != nil || sn != 0 || !more {
		t.Fatalf("SequenceNumber = (%d, %v, %v), want (0, true, nil)", sn, more, err)
	}

	li0, more0, err := d.PopLengthIndicatorPair()
	if err != nil || li0 != 10 || !more0 {
		t.Fatalf("first LI pair = (%d, %v, %v), want (10, true, nil)", li0, more0, err)
	}
	li1, more1, err := d.PopLengthIndicatorPair()
	if err != nil || li1 != 10 || more1 {
		t.Fatalf("second LI pair = (%d, %v, %v), want (10, false, nil)", li1, more1, err)
	}

	wantOffset := 5 // 13 fixed bits + 2*12 LI/E bits = 37 bits -> 5 bytes
	if got := d.ByteOffset(); got != wantOffset {
		t.Errorf("ByteOffset() = %d, want %d", got, wantOffset)
	}
}

func TestLengthIndicatorOverflow(t *testing.T) {
	e := NewEncoder()
	e.SetFramingInfo(false, false)
	e.PushFirstExtensionBit(true)
	e.SetSequenceNumber(1)
	if err := e.PushLengthIndicatorPair(MaxLengthIndicator+1, false); err != ErrLengthIndicatorTooLarge {
		t.Errorf("PushLengthIndicatorPair overflow = %v, want ErrLengthIndicatorTooLarge", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	d := NewDecoder([]byte{0xFF})
	if _, err := d.PeekSequenceNumber(); err != ErrTruncated {
		t.Errorf("PeekSequenceNumber on truncated input = %v, want ErrTruncated", err)
	}
}
