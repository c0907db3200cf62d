// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"fmt"

	"github.com/polyd/polyd/internal/wire"
)

// TLV type codes used by Hello and LSP PDUs.
const (
	TLVAreaAddresses        = 1
	TLVISNeighbors          = 2
	TLVExtIsReachability    = 22
	TLVProtocolsSupported   = 129
	TLVIPInterfaceAddress   = 132
	TLVAuthentication       = 10
	TLVDynamicHostname      = 137
	TLVExtIPReachability    = 135
)

// DecodeTLVs decodes the narrow (u8, u8) TLV stream IS-IS uses for every
// PDU type.
func DecodeTLVs(buf []byte) ([]wire.TLV, error) {
	return wire.DecodeAllTLVs(buf, wire.Narrow)
}

// EncodeTLVs appends tlvs to dst in IS-IS's narrow TLV encoding.
func EncodeTLVs(dst []byte, tlvs []wire.TLV) []byte {
	for _, t := range tlvs {
		dst = wire.EncodeTLV(dst, t, wire.Narrow)
	}
	return dst
}

// AreaAddressesTLV (type 1): one or more variable-length area addresses,
// each itself length-prefixed within the TLV value.
type AreaAddressesTLV struct {
	Areas [][]byte
}

func DecodeAreaAddresses(v []byte) (AreaAddressesTLV, error) {
	var t AreaAddressesTLV
	for len(v) > 0 {
		n := int(v[0])
		if len(v) < 1+n {
			return t, wire.ErrInvalidTLVLength
		}
		area := make([]byte, n)
		copy(area, v[1:1+n])
		t.Areas = append(t.Areas, area)
		v = v[1+n:]
	}
	return t, nil
}

func (t AreaAddressesTLV) Encode() []byte {
	var v []byte
	for _, a := range t.Areas {
		v = append(v, byte(len(a)))
		v = append(v, a...)
	}
	return v
}

// ISNeighborsTLV (type 2, LAN Hello use): a list of 6-octet LAN addresses
// of neighbors heard on the circuit.
type ISNeighborsTLV struct {
	Neighbors [][6]byte
}

func DecodeISNeighbors(v []byte) (ISNeighborsTLV, error) {
	if len(v)%6 != 0 {
		return ISNeighborsTLV{}, wire.ErrInvalidTLVLength
	}
	var t ISNeighborsTLV
	for i := 0; i < len(v); i += 6 {
		var n [6]byte
		copy(n[:], v[i:i+6])
		t.Neighbors = append(t.Neighbors, n)
	}
	return t, nil
}

func (t ISNeighborsTLV) Encode() []byte {
	v := make([]byte, 0, 6*len(t.Neighbors))
	for _, n := range t.Neighbors {
		v = append(v, n[:]...)
	}
	return v
}

// ProtocolsSupportedTLV (type 129): NLPIDs the originator supports.
type ProtocolsSupportedTLV struct {
	NLPIDs []byte
}

func DecodeProtocolsSupported(v []byte) ProtocolsSupportedTLV {
	return ProtocolsSupportedTLV{NLPIDs: append([]byte(nil), v...)}
}

func (t ProtocolsSupportedTLV) Encode() []byte { return t.NLPIDs }

// IPInterfaceAddressTLV (type 132): one or more IPv4 interface addresses.
type IPInterfaceAddressTLV struct {
	Addresses [][4]byte
}

func DecodeIPInterfaceAddress(v []byte) (IPInterfaceAddressTLV, error) {
	if len(v)%4 != 0 {
		return IPInterfaceAddressTLV{}, wire.ErrInvalidTLVLength
	}
	var t IPInterfaceAddressTLV
	for i := 0; i < len(v); i += 4 {
		var a [4]byte
		copy(a[:], v[i:i+4])
		t.Addresses = append(t.Addresses, a)
	}
	return t, nil
}

func (t IPInterfaceAddressTLV) Encode() []byte {
	v := make([]byte, 0, 4*len(t.Addresses))
	for _, a := range t.Addresses {
		v = append(v, a[:]...)
	}
	return v
}

// ExtendedReachability is one neighbor entry within an Extended IS
// Reachability TLV (type 22): a 7-octet neighbor id (system-id +
// pseudonode), a 24-bit metric, and verbatim sub-TLVs (SR adjacency-SID
// among them, left undecoded here and passed through by whoever consumes
// the wider SPF computation).
type ExtendedReachability struct {
	NeighborID [7]byte
	Metric     uint32 // low 24 bits significant
	SubTLVs    []wire.TLV
}

func DecodeExtIsReachability(v []byte) ([]ExtendedReachability, error) {
	var out []ExtendedReachability
	for len(v) > 0 {
		if len(v) < 11 {
			return nil, wire.ErrInvalidTLVLength
		}
		var e ExtendedReachability
		copy(e.NeighborID[:], v[0:7])
		e.Metric = uint32(v[7])<<16 | uint32(v[8])<<8 | uint32(v[9])
		subLen := int(v[10])
		if len(v) < 11+subLen {
			return nil, wire.ErrInvalidTLVLength
		}
		subs, err := wire.DecodeAllTLVs(v[11:11+subLen], wire.Narrow)
		if err != nil {
			return nil, err
		}
		e.SubTLVs = subs
		out = append(out, e)
		v = v[11+subLen:]
	}
	return out, nil
}

func EncodeExtIsReachability(entries []ExtendedReachability) []byte {
	var v []byte
	for _, e := range entries {
		v = append(v, e.NeighborID[:]...)
		v = append(v, byte(e.Metric>>16), byte(e.Metric>>8), byte(e.Metric))
		var subs []byte
		subs = EncodeTLVs(subs, e.SubTLVs)
		v = append(v, byte(len(subs)))
		v = append(v, subs...)
	}
	return v
}

// AuthenticationTLV (type 10): the first octet selects the auth type
// (1=clear-text, 3=HMAC-MD5 per RFC 5304); the rest is the password or,
// for type 3, a wire.Trailer (key id, digest length, sequence, digest).
type AuthenticationTLV struct {
	Type  uint8
	Value []byte
}

// Auth type octets recognized within AuthenticationTLV.Value.
const (
	AuthTypeCleartext uint8 = 1
	AuthTypeHMACMD5   uint8 = 3
)

func DecodeAuthentication(v []byte) (AuthenticationTLV, error) {
	if len(v) < 1 {
		return AuthenticationTLV{}, wire.ErrInvalidTLVLength
	}
	return AuthenticationTLV{Type: v[0], Value: append([]byte(nil), v[1:]...)}, nil
}

func (t AuthenticationTLV) Encode() []byte {
	return append([]byte{t.Type}, t.Value...)
}

// CryptoTrailer decodes Value as a wire.Trailer; only meaningful when
// Type == AuthTypeHMACMD5.
func (t AuthenticationTLV) CryptoTrailer() (wire.Trailer, error) {
	return wire.DecodeTrailer(t.Value)
}

func hostnameTooLong(v []byte) error {
	if len(v) > 255 {
		return fmt.Errorf("decode/invalid-tlv-length: hostname %d bytes", len(v))
	}
	return nil
}

// DynamicHostnameTLV (type 137): the originator's configured hostname, an
// ASCII string with no terminating NUL.
type DynamicHostnameTLV struct {
	Hostname string
}

func DecodeDynamicHostname(v []byte) (DynamicHostnameTLV, error) {
	if err := hostnameTooLong(v); err != nil {
		return DynamicHostnameTLV{}, err
	}
	return DynamicHostnameTLV{Hostname: string(v)}, nil
}

func (t DynamicHostnameTLV) Encode() []byte { return []byte(t.Hostname) }
