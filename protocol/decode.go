package protocol

import (
	"encoding/binary"
	"math"

	"github.com/CK6170/ucio-go/transport"
)

// FieldType is the closed set of typed response fields a decoder schedule
// may be built from (spec.md §3 Response, §9 design note: a sum type plus a
// single interpreter is preferred over passing bound decoder function
// handles, which is what the source does).
type FieldType int

const (
	FieldByte FieldType = iota
	FieldBool
	FieldU16
	FieldF32
	FieldI32
)

func (t FieldType) width() int {
	switch t {
	case FieldByte, FieldBool:
		return 1
	case FieldU16:
		return 2
	case FieldF32, FieldI32:
		return 4
	default:
		return 0
	}
}

// DecodeField reads exactly the number of bytes FieldType dictates from tr,
// big-endian for multi-byte types, and returns the decoded value (as the Go
// type matching the table below) alongside the raw bytes consumed so the
// caller can accumulate them for CRC8 verification.
//
//	FieldByte -> uint8
//	FieldBool -> bool
//	FieldU16  -> uint16
//	FieldF32  -> float32
//	FieldI32  -> int32
//
// The byte decoder accepts any value (spec.md §4.3); the bool decoder
// rejects anything other than 0 or 1 with ErrUnexpectedByte. u16/f32/i32
// never validate range.
func DecodeField(tr transport.Transport, ft FieldType) (value interface{}, raw []byte, err error) {
	raw = make([]byte, ft.width())
	for i := range raw {
		b, rerr := tr.ReadByte()
		if rerr != nil {
			return nil, raw[:i], rerr
		}
		raw[i] = b
	}
	switch ft {
	case FieldByte:
		return raw[0], raw, nil
	case FieldBool:
		switch raw[0] {
		case 0:
			return false, raw, nil
		case 1:
			return true, raw, nil
		default:
			return nil, raw, ErrUnexpectedByte
		}
	case FieldU16:
		return binary.BigEndian.Uint16(raw), raw, nil
	case FieldF32:
		return math.Float32frombits(binary.BigEndian.Uint32(raw)), raw, nil
	case FieldI32:
		return int32(binary.BigEndian.Uint32(raw)), raw, nil
	default:
		return nil, raw, ErrUnexpectedByte
	}
}

// ReadAck consumes one byte expected to be the ACK (0x06) or NAK (0x15)
// preceding every response payload (spec.md §3 Acknowledgment). It returns
// ErrNakReceived on 0x15 and ErrUnexpectedByte on anything else; transport
// timeouts propagate unchanged so callers can distinguish them.
func ReadAck(tr transport.Transport) error {
	b, err := tr.ReadByte()
	if err != nil {
		return err
	}
	switch b {
	case 0x06:
		return nil
	case 0x15:
		return ErrNakReceived
	default:
		return ErrUnexpectedByte
	}
}
