package rx

import (
	"bytes"
	"testing"

	"github.com/mteoli/rlcum/pkg/rlcum/sdu"
)

func field(b string) sdu.Field { return sdu.Field{Bytes: []byte(b)} }

func TestReassemblerFullSduPassthrough(t *testing.T) {
	r := NewReassembler()
	var got [][]byte
	res := r.Process(sdu.PDU{SeqNumber: 0, FirstByte: true, LastByte: true, Fields: []sdu.Field{field("hello")}}, func(b []byte) {
		got = append(got, b)
	})
	if res.Delivered != 1 {
		t.Fatalf("Delivered = %d, want 1", res.Delivered)
	}
	if string(got[0]) != "hello" {
		t.Errorf("got %q, want %q", got[0], "hello")
	}
	if r.State() != WaitingFull {
		t.Errorf("state = %v, want WaitingFull", r.State())
	}
}

func TestReassemblerSegmentAcrossTwoPdus(t *testing.T) {
	r := NewReassembler()
	var got [][]byte
	deliver := func(b []byte) { got = append(got, b) }

	r.Process(sdu.PDU{SeqNumber: 0, FirstByte: true, LastByte: false, Fields: []sdu.Field{field("hel")}}, deliver)
	if r.State() != WaitingTail || !r.HasKeep() {
		t.Fatalf("after first segment: state=%v hasKeep=%v, want WaitingTail/true", r.State(), r.HasKeep())
	}
	if len(got) != 0 {
		t.Fatalf("nothing should be delivered yet, got %v", got)
	}

	res := r.Process(sdu.PDU{SeqNumber: 1, FirstByte: false, LastByte: true, Fields: []sdu.Field{field("lo")}}, deliver)
	if res.Delivered != 1 || len(got) != 1 {
		t.Fatalf("expected one delivery, got %v", got)
	}
	if string(got[0]) != "hello" {
		t.Errorf("got %q, want %q", got[0], "hello")
	}
	if r.State() != WaitingFull {
		t.Errorf("state = %v, want WaitingFull", r.State())
	}
}

func TestReassemblerConcatenationInOnePdu(t *testing.T) {
	r := NewReassembler()
	var got [][]byte
	r.Process(sdu.PDU{
		SeqNumber: 0, FirstByte: true, LastByte: true,
		Fields: []sdu.Field{field("aaaaaaaaaa"), field("bbbbbbbbbb"), field("cccccccccc")},
	}, func(b []byte) { got = append(got, append([]byte{}, b...)) })

	if len(got) != 3 {
		t.Fatalf("got %d SDUs, want 3", len(got))
	}
	want := []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"}
	for i, w := range want {
		if string(got[i]) != w {
			t.Errorf("got[%d] = %q, want %q", i, got[i], w)
		}
	}
}

func TestReassemblerLossOrphansTailSegment(t *testing.T) {
	r := NewReassembler()
	var got [][]byte
	deliver := func(b []byte) { got = append(got, append([]byte{}, b...)) }

	// Prime expectation at SN 0.
	r.Process(sdu.PDU{SeqNumber: 0, FirstByte: true, LastByte: true, Fields: []sdu.Field{field("first")}}, deliver)

	// SN 1 is lost; SN 2 arrives with a PDU whose first field is an orphan
	// tail (no_first_byte) followed by a clean field.
	res := r.Process(sdu.PDU{
		SeqNumber: 2, FirstByte: false, LastByte: true,
		Fields: []sdu.Field{field("orphan"), field("clean")},
	}, deliver)

	if res.Discarded != 1 {
		t.Fatalf("Discarded = %d, want 1 (the orphan field)", res.Discarded)
	}
	if len(got) != 2 || string(got[1]) != "clean" {
		t.Fatalf("got %v, want [\"first\" \"clean\"]", got)
	}
}

func TestReassemblerProtocolErrorLeavesStateUntouched(t *testing.T) {
	r := NewReassembler()
	deliver := func([]byte) { t.Fatal("should not deliver on a protocol error") }
	r.Process(sdu.PDU{SeqNumber: 0, FirstByte: true, LastByte: true, Fields: []sdu.Field{field("x")}}, func([]byte) {})

	res := r.Process(sdu.PDU{SeqNumber: 1, FirstByte: false, LastByte: true, Fields: []sdu.Field{field("y")}}, deliver)
	// SN is contiguous (not lost) but the automaton is in WaitingFull with
	// first_byte_flag=0: impossible without held context.
	if !res.ProtocolError {
		t.Fatal("expected a protocol error")
	}
	if r.State() != WaitingFull {
		t.Errorf("state changed on protocol error: %v", r.State())
	}
}

func TestReassemblerDeliveredBytesAreIndependentCopies(t *testing.T) {
	r := NewReassembler()
	r.Process(sdu.PDU{SeqNumber: 0, FirstByte: true, LastByte: false, Fields: []sdu.Field{field("ab")}}, func([]byte) {})

	var got []byte
	r.Process(sdu.PDU{SeqNumber: 1, FirstByte: false, LastByte: true, Fields: []sdu.Field{field("cd")}}, func(b []byte) {
		got = b
	})
	if !bytes.Equal(got, []byte("abcd")) {
		t.Fatalf("got %q, want %q", got, "abcd")
	}
}
