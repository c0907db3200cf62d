// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import "encoding/binary"

// LSType identifies the body format of an LSA.
type LSType uint8

const (
	LSTypeRouter       LSType = 1
	LSTypeNetwork      LSType = 2
	LSTypeSummaryNet   LSType = 3
	LSTypeSummaryASBR  LSType = 4
	LSTypeASExternal   LSType = 5
	LSTypeOpaqueLink   LSType = 9  // RFC 5250, link-local flooding scope
	LSTypeOpaqueArea   LSType = 10
	LSTypeOpaqueAS     LSType = 11
)

// LSAHeader is the 20-byte fixed header preceding every LSA body.
type LSAHeader struct {
	Age          uint16
	Options      uint8
	Type         LSType
	LinkStateID  [4]byte
	AdvRouter    [4]byte
	SeqNumber    uint32
	Checksum     uint16
	Length       uint16
}

const lsaHeaderLen = 20

// DecodeLSAHeader parses the fixed LSA header.
func DecodeLSAHeader(buf []byte) (LSAHeader, int, error) {
	if len(buf) < lsaHeaderLen {
		return LSAHeader{}, 0, ErrInvalidLength
	}
	var h LSAHeader
	h.Age = binary.BigEndian.Uint16(buf[0:2])
	h.Options = buf[2]
	h.Type = LSType(buf[3])
	copy(h.LinkStateID[:], buf[4:8])
	copy(h.AdvRouter[:], buf[8:12])
	h.SeqNumber = binary.BigEndian.Uint32(buf[12:16])
	h.Checksum = binary.BigEndian.Uint16(buf[16:18])
	h.Length = binary.BigEndian.Uint16(buf[18:20])
	return h, lsaHeaderLen, nil
}

// EncodeLSAHeader appends the fixed LSA header to dst.
func EncodeLSAHeader(dst []byte, h LSAHeader) []byte {
	var buf [lsaHeaderLen]byte
	binary.BigEndian.PutUint16(buf[0:2], h.Age)
	buf[2] = h.Options
	buf[3] = byte(h.Type)
	copy(buf[4:8], h.LinkStateID[:])
	copy(buf[8:12], h.AdvRouter[:])
	binary.BigEndian.PutUint32(buf[12:16], h.SeqNumber)
	binary.BigEndian.PutUint16(buf[16:18], h.Checksum)
	binary.BigEndian.PutUint16(buf[18:20], h.Length)
	return append(dst, buf[:]...)
}

// RouterLSALinkType distinguishes the four link types a Router-LSA's link
// entries may describe.
type RouterLSALinkType uint8

const (
	LinkPointToPoint  RouterLSALinkType = 1
	LinkTransit       RouterLSALinkType = 2
	LinkStub          RouterLSALinkType = 3
	LinkVirtual       RouterLSALinkType = 4
)

// RouterLSALink is one link entry within a Router-LSA body.
type RouterLSALink struct {
	LinkID     [4]byte
	LinkData   [4]byte
	Type       RouterLSALinkType
	NumTOS     uint8
	Metric     uint16
}

const routerLinkLen = 12

// RouterLSA is the decoded body of a type-1 LSA.
type RouterLSA struct {
	Flags uint8
	Links []RouterLSALink
}

// DecodeRouterLSA parses a Router-LSA body (following the LSA header).
func DecodeRouterLSA(buf []byte) (RouterLSA, error) {
	if len(buf) < 4 {
		return RouterLSA{}, ErrInvalidLength
	}
	var r RouterLSA
	r.Flags = buf[0]
	numLinks := binary.BigEndian.Uint16(buf[2:4])
	rest := buf[4:]
	for i := 0; i < int(numLinks); i++ {
		if len(rest) < routerLinkLen {
			return RouterLSA{}, ErrInvalidLength
		}
		var l RouterLSALink
		copy(l.LinkID[:], rest[0:4])
		copy(l.LinkData[:], rest[4:8])
		l.Type = RouterLSALinkType(rest[8])
		l.NumTOS = rest[9]
		l.Metric = binary.BigEndian.Uint16(rest[10:12])
		r.Links = append(r.Links, l)
		// Skip per-TOS metric entries (4 bytes each): not modeled, since
		// TOS-based routing is obsolete and no example in the pack
		// exercises it.
		rest = rest[routerLinkLen+4*int(l.NumTOS):]
	}
	return r, nil
}

// EncodeRouterLSA appends a Router-LSA body to dst.
func EncodeRouterLSA(dst []byte, r RouterLSA) []byte {
	var fixed [4]byte
	fixed[0] = r.Flags
	binary.BigEndian.PutUint16(fixed[2:4], uint16(len(r.Links)))
	dst = append(dst, fixed[:]...)
	for _, l := range r.Links {
		var buf [routerLinkLen]byte
		copy(buf[0:4], l.LinkID[:])
		copy(buf[4:8], l.LinkData[:])
		buf[8] = byte(l.Type)
		buf[9] = l.NumTOS
		binary.BigEndian.PutUint16(buf[10:12], l.Metric)
		dst = append(dst, buf[:]...)
	}
	return dst
}

// ASExternalLSA is the decoded body of a type-5 (or type-7 NSSA) LSA.
type ASExternalLSA struct {
	NetworkMask  [4]byte
	EBit         bool // type-2 metric when set
	Metric       uint32 // low 24 bits significant
	ForwardAddr  [4]byte
	ExternalTag  uint32
}

const asExternalLen = 16

// DecodeASExternalLSA parses an AS-External-LSA body (one TOS=0 entry;
// the reimplementation does not model multiple TOS metrics per entry,
// matching RouterLSA's scope decision).
func DecodeASExternalLSA(buf []byte) (ASExternalLSA, error) {
	if len(buf) < asExternalLen {
		return ASExternalLSA{}, ErrInvalidLength
	}
	var a ASExternalLSA
	copy(a.NetworkMask[:], buf[0:4])
	a.EBit = buf[4]&0x80 != 0
	a.Metric = uint32(buf[5])<<16 | uint32(buf[6])<<8 | uint32(buf[7])
	copy(a.ForwardAddr[:], buf[8:12])
	a.ExternalTag = binary.BigEndian.Uint32(buf[12:16])
	return a, nil
}

// EncodeASExternalLSA appends an AS-External-LSA body to dst.
func EncodeASExternalLSA(dst []byte, a ASExternalLSA) []byte {
	var buf [asExternalLen]byte
	copy(buf[0:4], a.NetworkMask[:])
	if a.EBit {
		buf[4] = 0x80
	}
	buf[5], buf[6], buf[7] = byte(a.Metric>>16), byte(a.Metric>>8), byte(a.Metric)
	copy(buf[8:12], a.ForwardAddr[:])
	binary.BigEndian.PutUint32(buf[12:16], a.ExternalTag)
	return append(dst, buf[:]...)
}
