// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"encoding/binary"
	"net/netip"
)

// fecElementType constants, per RFC 5036 §3.4.1. Only the prefix element
// this daemon originates/consumes is implemented; wildcard and typed-wildcard
// elements (used only by withdraw/release messages this daemon doesn't yet
// originate) are left undecoded.
const fecElementPrefix = 2

// FEC is a single Prefix FEC element: an IPv4 or IPv6 prefix advertised
// for label binding.
type FEC struct {
	Prefix netip.Prefix
}

// DecodeFEC decodes a FEC TLV's value into its prefix elements. Only
// Prefix-type elements are returned; decoding stops at the first element
// of any other type, so that element and every element after it are
// dropped.
func DecodeFEC(value []byte) ([]FEC, error) {
	var fecs []FEC
	for len(value) > 0 {
		if len(value) < 3 {
			return nil, ErrInvalidLength
		}
		elemType := value[0]
		addrFamily := binary.BigEndian.Uint16(value[1:3])
		value = value[3:]
		if elemType != fecElementPrefix {
			// Without a declared length this daemon cannot safely skip an
			// unrecognized element and stay in sync with the rest of the
			// TLV, so stop decoding rather than misparse.
			break
		}
		if len(value) < 1 {
			return nil, ErrInvalidLength
		}
		prefixLen := int(value[0])
		value = value[1:]
		byteLen := (prefixLen + 7) / 8
		if len(value) < byteLen {
			return nil, ErrInvalidLength
		}
		switch addrFamily {
		case 1: // IPv4
			var b4 [4]byte
			copy(b4[:], value[:byteLen])
			fecs = append(fecs, FEC{Prefix: netip.PrefixFrom(netip.AddrFrom4(b4), prefixLen)})
		case 2: // IPv6
			var b16 [16]byte
			copy(b16[:], value[:byteLen])
			fecs = append(fecs, FEC{Prefix: netip.PrefixFrom(netip.AddrFrom16(b16), prefixLen)})
		}
		value = value[byteLen:]
	}
	return fecs, nil
}

// EncodeFEC appends a FEC TLV value containing the given prefix elements.
func EncodeFEC(dst []byte, fecs []FEC) []byte {
	var value []byte
	for _, f := range fecs {
		family := uint16(1)
		if f.Prefix.Addr().Is6() {
			family = 2
		}
		prefixLen := f.Prefix.Bits()
		var hdr [3]byte
		hdr[0] = fecElementPrefix
		binary.BigEndian.PutUint16(hdr[1:3], family)
		value = append(value, hdr[:]...)
		value = append(value, byte(prefixLen))
		byteLen := (prefixLen + 7) / 8
		addrBytes := f.Prefix.Addr().AsSlice()
		value = append(value, addrBytes[:byteLen]...)
	}
	return EncodeTLV(dst, TLV{Type: TLVFEC, Value: value})
}

// LabelMapping is an LDP Label Mapping message: a FEC TLV plus the
// Generic Label TLV bound to it, per RFC 5036 §3.5.7.
type LabelMapping struct {
	FECs  []FEC
	Label uint32
}

const genericLabelLen = 4

// DecodeLabelMapping decodes a Label Mapping message body.
func DecodeLabelMapping(buf []byte) (LabelMapping, error) {
	tlvs, err := DecodeAllTLVs(buf)
	if err != nil {
		return LabelMapping{}, err
	}
	fecTLV, ok := findTLV(tlvs, TLVFEC)
	if !ok {
		return LabelMapping{}, ErrInvalidLength
	}
	fecs, err := DecodeFEC(fecTLV.Value)
	if err != nil {
		return LabelMapping{}, err
	}
	labelTLV, ok := findTLV(tlvs, TLVGenericLabel)
	if !ok || len(labelTLV.Value) < genericLabelLen {
		return LabelMapping{}, ErrInvalidLength
	}
	label := binary.BigEndian.Uint32(labelTLV.Value[0:4]) &^ 0xf0000000
	return LabelMapping{FECs: fecs, Label: label}, nil
}

// EncodeLabelMapping appends the Label Mapping message's TLVs to dst.
func EncodeLabelMapping(dst []byte, m LabelMapping) []byte {
	dst = EncodeFEC(dst, m.FECs)
	var v [genericLabelLen]byte
	binary.BigEndian.PutUint32(v[0:4], m.Label&^0xf0000000)
	return EncodeTLV(dst, TLV{Type: TLVGenericLabel, Value: v[:]})
}
