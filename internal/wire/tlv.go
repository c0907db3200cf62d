// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire holds the binary framing primitives shared by every
// protocol codec: TLV encode/decode with verbatim capture of unknown
// types, internet and Fletcher checksums, and the cryptographic
// authentication trailer. The isis/packet and ospf/packet codecs build on
// top of this; bgp/packet and ldp/packet do their own framing.
package wire

import (
	"encoding/binary"
	"fmt"
)

// TLV is a single decoded type-length-value element. Value always holds the
// exact value bytes as they appeared on the wire (unpadded, per the
// declared Length), so an unknown TLV can be re-encoded byte-for-byte.
type TLV struct {
	Type   uint16
	Length uint16
	Value  []byte
	// SubTLVs holds any nested TLVs decoded from Value by the caller; the
	// wire package itself never recurses, since nesting rules are
	// protocol-specific (some protocols nest from byte 0 of Value, others
	// skip a fixed sub-header first).
	SubTLVs []TLV
}

// ErrInvalidTLVLength is returned when a declared TLV length would read
// past the end of the buffer.
var ErrInvalidTLVLength = fmt.Errorf("decode/invalid-tlv-length")

// Width selects whether a TLV's type and length fields are one or two
// octets wide. IS-IS TLVs are narrow (u8, u8); OSPF opaque sub-TLVs and
// BGP capability/path-attribute TLVs are wide (u16, u16).
type Width int

const (
	Narrow Width = iota // type: u8, length: u8
	Wide                // type: u16, length: u16
)

// align4 rounds n up to the next multiple of 4.
func align4(n int) int {
	return (n + 3) &^ 3
}

// DecodeTLV reads one TLV from buf at the given width and returns it along
// with the number of bytes consumed from the wire. For Wide TLVs the wire
// representation is padded to 4-byte alignment, but the returned TLV's
// Length field (and Value slice) reflect the unpadded, declared length —
// the padding bytes are consumed but not retained.
func DecodeTLV(buf []byte, width Width) (TLV, int, error) {
	switch width {
	case Narrow:
		if len(buf) < 2 {
			return TLV{}, 0, ErrInvalidTLVLength
		}
		typ := uint16(buf[0])
		length := uint16(buf[1])
		if len(buf) < 2+int(length) {
			return TLV{}, 0, ErrInvalidTLVLength
		}
		value := make([]byte, length)
		copy(value, buf[2:2+int(length)])
		return TLV{Type: typ, Length: length, Value: value}, 2 + int(length), nil
	case Wide:
		if len(buf) < 4 {
			return TLV{}, 0, ErrInvalidTLVLength
		}
		typ := binary.BigEndian.Uint16(buf[0:2])
		length := binary.BigEndian.Uint16(buf[2:4])
		if len(buf) < 4+int(length) {
			return TLV{}, 0, ErrInvalidTLVLength
		}
		value := make([]byte, length)
		copy(value, buf[4:4+int(length)])
		padded := align4(4 + int(length))
		consumed := padded
		if len(buf) < consumed {
			// Trailing padding was truncated (e.g. last TLV in the PDU);
			// accept what's declared rather than erroring on padding we
			// can't actually read.
			consumed = 4 + int(length)
		}
		return TLV{Type: typ, Length: length, Value: value}, consumed, nil
	default:
		return TLV{}, 0, fmt.Errorf("decode/invalid-tlv-length: unknown width %d", width)
	}
}

// DecodeAllTLVs decodes a flat sequence of TLVs filling buf exactly.
// Unknown types are returned like any other TLV — preservation is the
// caller's responsibility (the caller decides which Type values it
// recognizes; everything else passes through verbatim).
func DecodeAllTLVs(buf []byte, width Width) ([]TLV, error) {
	var tlvs []TLV
	for len(buf) > 0 {
		tlv, n, err := DecodeTLV(buf, width)
		if err != nil {
			return nil, err
		}
		tlvs = append(tlvs, tlv)
		buf = buf[n:]
	}
	return tlvs, nil
}

// EncodeTLV appends the wire representation of t to dst and returns the
// extended slice. For Wide TLVs the value is padded to 4-byte alignment
// with zero bytes on the wire, but the encoded Length field is the
// unpadded value length, per §4.4.
func EncodeTLV(dst []byte, t TLV, width Width) []byte {
	switch width {
	case Narrow:
		dst = append(dst, byte(t.Type), byte(len(t.Value)))
		dst = append(dst, t.Value...)
		return dst
	case Wide:
		var hdr [4]byte
		binary.BigEndian.PutUint16(hdr[0:2], t.Type)
		binary.BigEndian.PutUint16(hdr[2:4], uint16(len(t.Value)))
		dst = append(dst, hdr[:]...)
		dst = append(dst, t.Value...)
		padded := align4(4 + len(t.Value))
		for i := 4 + len(t.Value); i < padded; i++ {
			dst = append(dst, 0)
		}
		return dst
	default:
		return dst
	}
}
