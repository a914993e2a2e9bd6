package header

import "github.com/mteoli/rlcum/pkg/rlcum/sdu"

// Marshal serializes a PDU (header plus ordered data fields) to wire bytes.
func Marshal(p sdu.PDU) ([]byte, error) {
	e := NewEncoder()
	e.SetFramingInfo(p.FirstByte, p.LastByte)
	e.PushFirstExtensionBit(len(p.Fields) > 1)
	e.SetSequenceNumber(p.SeqNumber)

	for i := 0; i < len(p.Fields)-1; i++ {
		moreAfter := i < len(p.Fields)-2
		if err := e.PushLengthIndicatorPair(len(p.Fields[i].Bytes), moreAfter); err != nil {
			return nil, err
		}
	}

	header := e.Bytes()
	total := len(header)
	for _, f := range p.Fields {
		total += len(f.Bytes)
	}

	out := make([]byte, 0, total)
	out = append(out, header...)
	for _, f := range p.Fields {
		out = append(out, f.Bytes...)
	}
	return out, nil
}

// Unmarshal parses wire bytes into a PDU. It returns ErrTruncated if a
// length indicator would consume more than the remaining payload. The
// terminal field is whatever bytes remain after the LI-delimited fields and
// may be empty; its length is not checked further.
func Unmarshal(data []byte) (sdu.PDU, error) {
	d := NewDecoder(data)

	firstByte, lastByte, err := d.FramingInfo()
	if err != nil {
		return sdu.PDU{}, err
	}
	sn, moreFields, err := d.SequenceNumber()
	if err != nil {
		return sdu.PDU{}, err
	}

	p := sdu.PDU{SeqNumber: sn, FirstByte: firstByte, LastByte: lastByte}

	var lengths []int
	for moreFields {
		li, more, err := d.PopLengthIndicatorPair()
		if err != nil {
			return sdu.PDU{}, err
		}
		lengths = append(lengths, li)
		moreFields = more
	}

	offset := d.ByteOffset()
	for _, li := range lengths {
		if offset+li > len(data) {
			return sdu.PDU{}, ErrTruncated
		}
		p.Fields = append(p.Fields, sdu.Field{Bytes: data[offset : offset+li], HasLength: true})
		offset += li
	}
	// Terminal field: whatever bytes remain.
	p.Fields = append(p.Fields, sdu.Field{Bytes: data[offset:], HasLength: false})

	return p, nil
}
