// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import "encoding/binary"

// TLV type constants used by the message codecs below, per RFC 5036
// §3.4.1-§3.4.7.
const (
	TLVFEC                  uint16 = 0x0100
	TLVAddressList          uint16 = 0x0101
	TLVHopCount              uint16 = 0x0103
	TLVPathVector            uint16 = 0x0104
	TLVGenericLabel          uint16 = 0x0200
	TLVStatus                uint16 = 0x0300
	TLVCommonHelloParams     uint16 = 0x0400
	TLVIPv4TransportAddress  uint16 = 0x0401
	TLVConfigSequenceNumber  uint16 = 0x0402
	TLVCommonSessionParams   uint16 = 0x0500
)

// typeMask strips the U (unknown) and F (forward-if-unknown) bits LDP
// reserves in a TLV type field's top two bits, per §3.4.
const typeMask = 0x3fff

// TLV is one decoded LDP TLV. Unlike OSPF's opaque sub-TLVs, LDP TLVs are
// not 4-byte aligned on the wire, so this package keeps its own decoder
// rather than reusing internal/wire's Wide framing.
type TLV struct {
	Type   uint16
	Value  []byte
}

// DecodeAllTLVs decodes a flat sequence of TLVs filling buf exactly.
func DecodeAllTLVs(buf []byte) ([]TLV, error) {
	var tlvs []TLV
	for len(buf) > 0 {
		if len(buf) < 4 {
			return nil, ErrInvalidLength
		}
		typ := binary.BigEndian.Uint16(buf[0:2]) & typeMask
		length := binary.BigEndian.Uint16(buf[2:4])
		if len(buf) < 4+int(length) {
			return nil, ErrInvalidLength
		}
		value := make([]byte, length)
		copy(value, buf[4:4+int(length)])
		tlvs = append(tlvs, TLV{Type: typ, Value: value})
		buf = buf[4+int(length):]
	}
	return tlvs, nil
}

// EncodeTLV appends the wire representation of t to dst.
func EncodeTLV(dst []byte, t TLV) []byte {
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[0:2], t.Type&typeMask)
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(t.Value)))
	dst = append(dst, hdr[:]...)
	dst = append(dst, t.Value...)
	return dst
}

func findTLV(tlvs []TLV, typ uint16) (TLV, bool) {
	for _, t := range tlvs {
		if t.Type == typ {
			return t, true
		}
	}
	return TLV{}, false
}
