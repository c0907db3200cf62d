// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"encoding/binary"

	"github.com/polyd/polyd/internal/wire"
)

// OpaqueLSAID splits an opaque LSA's Link State ID into its opaque type
// (high octet) and opaque id (low three octets), per RFC 5250.
type OpaqueLSAID struct {
	OpaqueType uint8
	OpaqueID   uint32 // low 24 bits significant
}

// DecodeOpaqueLSAID extracts the opaque type/id split from a raw
// Link State ID.
func DecodeOpaqueLSAID(linkStateID [4]byte) OpaqueLSAID {
	return OpaqueLSAID{
		OpaqueType: linkStateID[0],
		OpaqueID:   uint32(linkStateID[1])<<16 | uint32(linkStateID[2])<<8 | uint32(linkStateID[3]),
	}
}

// EncodeOpaqueLSAID packs an opaque type/id pair back into a Link State ID.
func EncodeOpaqueLSAID(o OpaqueLSAID) [4]byte {
	return [4]byte{o.OpaqueType, byte(o.OpaqueID >> 16), byte(o.OpaqueID >> 8), byte(o.OpaqueID)}
}

// Opaque type codes (RFC 5250 IANA registry, the subset this daemon
// originates/parses).
const (
	OpaqueTypeRouterInformation uint8 = 4
	OpaqueTypeExtendedPrefix    uint8 = 7 // RFC 7684 OSPF segment routing
)

// Router-Information opaque LSA sub-TLV type codes (RFC 7770).
const (
	RITLVCapabilities uint16 = 1
	RITLVSRAlgorithm  uint16 = 8
	RITLVSRSIDLabelRange uint16 = 9
)

// RouterInformation is the decoded body of a Router-Information opaque
// LSA (opaque type 4): a flat sequence of wide TLVs, with the capability
// bitmask and the SR SID/Label range decoded explicitly and everything
// else preserved verbatim.
type RouterInformation struct {
	Capabilities uint32
	HasCapabilities bool
	SRAlgorithms []byte
	SRSIDRange   *SIDLabelRange
	Unknown      []wire.TLV
}

// SIDLabelRange is one SR SID/Label Range sub-TLV: a range size and a
// nested SID/Label sub-sub-TLV giving the first value of the range.
type SIDLabelRange struct {
	RangeSize uint32 // low 24 bits significant
	FirstSID  uint32
}

// DecodeRouterInformation parses a Router-Information opaque LSA body.
func DecodeRouterInformation(buf []byte) (RouterInformation, error) {
	tlvs, err := wire.DecodeAllTLVs(buf, wire.Wide)
	if err != nil {
		return RouterInformation{}, err
	}
	var ri RouterInformation
	for _, t := range tlvs {
		switch t.Type {
		case RITLVCapabilities:
			if len(t.Value) < 4 {
				return RouterInformation{}, wire.ErrInvalidTLVLength
			}
			ri.Capabilities = binary.BigEndian.Uint32(t.Value[0:4])
			ri.HasCapabilities = true
		case RITLVSRAlgorithm:
			ri.SRAlgorithms = append([]byte(nil), t.Value...)
		case RITLVSRSIDLabelRange:
			r, err := decodeSIDLabelRange(t.Value)
			if err != nil {
				return RouterInformation{}, err
			}
			ri.SRSIDRange = &r
		default:
			ri.Unknown = append(ri.Unknown, t)
		}
	}
	return ri, nil
}

func decodeSIDLabelRange(v []byte) (SIDLabelRange, error) {
	if len(v) < 4 {
		return SIDLabelRange{}, wire.ErrInvalidTLVLength
	}
	r := SIDLabelRange{
		RangeSize: uint32(v[1])<<16 | uint32(v[2])<<8 | uint32(v[3]),
	}
	sub, err := wire.DecodeAllTLVs(v[4:], wire.Wide)
	if err != nil {
		return SIDLabelRange{}, err
	}
	for _, s := range sub {
		if len(s.Value) >= 3 {
			r.FirstSID = uint32(s.Value[0])<<16 | uint32(s.Value[1])<<8 | uint32(s.Value[2])
		}
	}
	return r, nil
}

// EncodeRouterInformation serializes a Router-Information opaque LSA body.
func EncodeRouterInformation(ri RouterInformation) []byte {
	var dst []byte
	if ri.HasCapabilities {
		var v [4]byte
		binary.BigEndian.PutUint32(v[:], ri.Capabilities)
		dst = wire.EncodeTLV(dst, wire.TLV{Type: RITLVCapabilities, Value: v[:]}, wire.Wide)
	}
	if len(ri.SRAlgorithms) > 0 {
		dst = wire.EncodeTLV(dst, wire.TLV{Type: RITLVSRAlgorithm, Value: ri.SRAlgorithms}, wire.Wide)
	}
	if ri.SRSIDRange != nil {
		v := []byte{0, byte(ri.SRSIDRange.RangeSize >> 16), byte(ri.SRSIDRange.RangeSize >> 8), byte(ri.SRSIDRange.RangeSize)}
		v = wire.EncodeTLV(v, wire.TLV{Type: 1, Value: []byte{0, byte(ri.SRSIDRange.FirstSID >> 16), byte(ri.SRSIDRange.FirstSID >> 8), byte(ri.SRSIDRange.FirstSID)}}, wire.Wide)
		dst = wire.EncodeTLV(dst, wire.TLV{Type: RITLVSRSIDLabelRange, Value: v}, wire.Wide)
	}
	for _, u := range ri.Unknown {
		dst = wire.EncodeTLV(dst, u, wire.Wide)
	}
	return dst
}

// Extended Prefix opaque LSA sub-TLV codes (RFC 7684 OSPF segment
// routing): the prefix-SID sub-TLV attached to each advertised prefix.
const (
	EPTLVPrefix   uint16 = 1
	EPTLVPrefixSID uint16 = 2
)

// PrefixSID is a decoded OSPF Prefix-SID sub-TLV: flags and either an
// index (relative to the SRGB) or an absolute label, selected by the
// V-flag (value) / L-flag (local, i.e. label not index).
type PrefixSID struct {
	Flags     uint8
	Algorithm uint8
	Value     uint32
}

// DecodePrefixSID parses a Prefix-SID sub-TLV value.
func DecodePrefixSID(v []byte) (PrefixSID, error) {
	if len(v) < 8 {
		return PrefixSID{}, wire.ErrInvalidTLVLength
	}
	return PrefixSID{
		Flags:     v[0],
		Algorithm: v[1],
		Value:     binary.BigEndian.Uint32(v[4:8]),
	}, nil
}

// EncodePrefixSID serializes a Prefix-SID sub-TLV value.
func EncodePrefixSID(p PrefixSID) []byte {
	var v [8]byte
	v[0] = p.Flags
	v[1] = p.Algorithm
	binary.BigEndian.PutUint32(v[4:8], p.Value)
	return v[:]
}
