// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package packet implements OSPFv2 PDU decode/encode: the common header,
// the Hello body, the LSA header, and Router, AS-External and opaque LSA
// bodies (Router-Information and segment-routing Prefix-SID), built on
// internal/wire's checksum and TLV helpers. Database Description and LS
// Request/Update/Ack bodies, and the OSPFv3 header, are not decoded or
// encoded by this package.
package packet

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/polyd/polyd/internal/wire"
)

// MessageType identifies an OSPF packet.
type MessageType uint8

const (
	TypeHello              MessageType = 1
	TypeDatabaseDesc       MessageType = 2
	TypeLSRequest          MessageType = 3
	TypeLSUpdate           MessageType = 4
	TypeLSAck              MessageType = 5
)

var (
	ErrInvalidLength  = fmt.Errorf("decode/invalid-length")
	ErrInvalidVersion = fmt.Errorf("decode/invalid-version")
	ErrChecksum       = fmt.Errorf("decode/checksum")
)

// Header is the fixed 24-byte OSPFv2 packet header. OSPFv3's header, which
// swaps the authentication fields for an instance-id byte, has no type in
// this package.
type Header struct {
	Version  uint8
	Type     MessageType
	Length   uint16
	RouterID [4]byte
	AreaID   [4]byte
	Checksum uint16
	AuType   uint16
	// AuthData is the 8-byte authentication field at offset 16:24. Its
	// shape depends on AuType: for AuTypeCrypto it decodes via
	// DecodeCryptoAuth; for AuTypeSimple it is the clear-text password
	// itself; for AuTypeNull it is unused.
	AuthData [8]byte
}

const headerLen = 24

// AuType values, per RFC 2328 Appendix D.3.
const (
	AuTypeNull   uint16 = 0
	AuTypeSimple uint16 = 1
	AuTypeCrypto uint16 = 2
)

// DecodeHeader parses the fixed OSPFv2 header at the start of buf and
// validates the declared Length against the buffer.
func DecodeHeader(buf []byte) (Header, int, error) {
	if len(buf) < headerLen {
		return Header{}, 0, ErrInvalidLength
	}
	var h Header
	h.Version = buf[0]
	if h.Version != 2 {
		return Header{}, 0, ErrInvalidVersion
	}
	h.Type = MessageType(buf[1])
	h.Length = binary.BigEndian.Uint16(buf[2:4])
	copy(h.RouterID[:], buf[4:8])
	copy(h.AreaID[:], buf[8:12])
	h.Checksum = binary.BigEndian.Uint16(buf[12:14])
	h.AuType = binary.BigEndian.Uint16(buf[14:16])
	copy(h.AuthData[:], buf[16:24])
	if int(h.Length) > len(buf) {
		return Header{}, 0, ErrInvalidLength
	}
	return h, headerLen, nil
}

// DecodeCryptoAuth interprets h.AuthData as the AuTypeCrypto layout: 2
// reserved octets, a 1-octet key id, a 1-octet digest length, and a
// 4-octet big-endian crypto sequence number. The digest itself is not
// part of the header; it trails the packet body for DigestLen octets.
func DecodeCryptoAuth(h Header) (keyID uint8, digestLen uint8, sequence uint32) {
	keyID = h.AuthData[2]
	digestLen = h.AuthData[3]
	sequence = binary.BigEndian.Uint32(h.AuthData[4:8])
	return
}

// EncodeHeader appends the fixed header to dst with Length set to
// headerLen+bodyLen.
func EncodeHeader(dst []byte, h Header, bodyLen int) []byte {
	var buf [headerLen]byte
	buf[0] = 2
	buf[1] = byte(h.Type)
	binary.BigEndian.PutUint16(buf[2:4], uint16(headerLen+bodyLen))
	copy(buf[4:8], h.RouterID[:])
	copy(buf[8:12], h.AreaID[:])
	binary.BigEndian.PutUint16(buf[12:14], h.Checksum)
	binary.BigEndian.PutUint16(buf[14:16], h.AuType)
	copy(buf[16:24], h.AuthData[:])
	// For AuTypeCrypto the digest itself is not part of this fixed header;
	// it is appended after the packet body by the caller, which has the
	// assembled body bytes to sign via internal/wire.Compute.
	return append(dst, buf[:]...)
}

// ComputeChecksum returns the RFC 1071 internet checksum of an OSPFv2
// packet, with the 8-byte authentication field (offset 16:24) treated as
// zero per §4.4's "skipped bytes are zero" rule, and the checksum field
// itself (offset 12:14) also zeroed.
func ComputeChecksum(packet []byte) uint16 {
	scratch := append([]byte(nil), packet...)
	scratch[12], scratch[13] = 0, 0
	if len(scratch) >= 24 {
		for i := 16; i < 24; i++ {
			scratch[i] = 0
		}
	}
	return wire.InternetChecksum(scratch)
}

// VerifyChecksum reports whether a received packet's checksum field
// matches ComputeChecksum.
func VerifyChecksum(packet []byte, received uint16) bool {
	return ComputeChecksum(packet) == received
}

// RouterIDFromIP renders a 4-byte router-id as a net.IP for logging.
func RouterIDFromIP(id [4]byte) net.IP { return net.IP(id[:]) }
