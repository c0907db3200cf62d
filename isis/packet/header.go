// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package packet implements IS-IS PDU decode/encode: the common header,
// Hello bodies, and the fixed LSP header with its Fletcher checksum, built
// on internal/wire's TLV framing and Fletcher checksum. CSNP and PSNP
// bodies are not decoded or encoded by this package.
package packet

import (
	"encoding/binary"
	"fmt"

	"github.com/polyd/polyd/internal/wire"
)

// PDUType identifies an IS-IS PDU.
type PDUType uint8

const (
	PDUL1Hello    PDUType = 15
	PDUL2Hello    PDUType = 16
	PDUP2PHello   PDUType = 17
	PDUL1LSP      PDUType = 18
	PDUL2LSP      PDUType = 20
	PDUL1CSNP     PDUType = 24
	PDUL2CSNP     PDUType = 25
	PDUL1PSNP     PDUType = 26
	PDUL2PSNP     PDUType = 27
)

// ErrInvalidLength is returned when a PDU's declared length does not match
// the buffer it was decoded from, or when decoding would read past it.
var ErrInvalidLength = fmt.Errorf("decode/invalid-length")

// ErrInvalidVersion is returned when the fixed header's version/protocol-id
// fields do not match ISO 10589.
var ErrInvalidVersion = fmt.Errorf("decode/invalid-version")

// CommonHeader is the 8-byte IS-IS common header shared by every PDU type,
// preceding the PDU-specific fixed header.
type CommonHeader struct {
	IDLength     uint8 // 0 means the default 6-octet system-id
	PDUType      PDUType
	Version2     uint8
	MaxAreaAddrs uint8 // 0 means the default of 3
}

const commonHeaderLen = 8

// DecodeCommonHeader parses the 8-byte common header at the start of buf.
func DecodeCommonHeader(buf []byte) (CommonHeader, int, error) {
	if len(buf) < commonHeaderLen {
		return CommonHeader{}, 0, ErrInvalidLength
	}
	if buf[0] != 0x83 || buf[1] != 1 {
		return CommonHeader{}, 0, ErrInvalidVersion
	}
	return CommonHeader{
		IDLength:     buf[3],
		PDUType:      PDUType(buf[4] & 0x1f),
		Version2:     buf[5],
		MaxAreaAddrs: buf[7],
	}, commonHeaderLen, nil
}

// EncodeCommonHeader appends the 8-byte common header to dst.
func EncodeCommonHeader(dst []byte, h CommonHeader, headerLen uint8) []byte {
	return append(dst,
		0x83, 1, headerLen, h.IDLength,
		uint8(h.PDUType), h.Version2, 0, h.MaxAreaAddrs,
	)
}

// LSPID identifies an LSP: a 6-octet system-id, a 1-octet pseudonode
// number, and a 1-octet LSP fragment number.
type LSPID struct {
	SystemID     [6]byte
	PseudonodeID uint8
	FragmentID   uint8
}

func (id LSPID) String() string {
	return fmt.Sprintf("%x.%02x-%02x", id.SystemID, id.PseudonodeID, id.FragmentID)
}

// LSPHeader is the fixed portion of an LSP preceding its TLV stream.
type LSPHeader struct {
	PDULength  uint16
	RemLifetime uint16
	LSPID      LSPID
	SeqNumber  uint32
	Checksum   uint16
	// PartitionRepair, AttachedDefault/Delay/Expense/Error, Overload, IsType
	// are carried as a single flag octet per ISO 10589; decoded verbatim
	// since SPF only consults Overload and IsType.
	Flags uint8
}

const lspHeaderLen = 19

// Overload and level-type flag bits within LSPHeader.Flags.
const (
	FlagPartitionRepair = 1 << 7
	FlagOverload        = 1 << 3
	FlagIsType1         = 1 << 0
	FlagIsType2         = 1 << 1
)

// DecodeLSPHeader parses the fixed LSP header following the common header.
func DecodeLSPHeader(buf []byte) (LSPHeader, int, error) {
	if len(buf) < lspHeaderLen {
		return LSPHeader{}, 0, ErrInvalidLength
	}
	var h LSPHeader
	h.PDULength = binary.BigEndian.Uint16(buf[0:2])
	h.RemLifetime = binary.BigEndian.Uint16(buf[2:4])
	copy(h.LSPID.SystemID[:], buf[4:10])
	h.LSPID.PseudonodeID = buf[10]
	h.LSPID.FragmentID = buf[11]
	h.SeqNumber = binary.BigEndian.Uint32(buf[12:16])
	h.Checksum = binary.BigEndian.Uint16(buf[16:18])
	h.Flags = buf[18]
	return h, lspHeaderLen, nil
}

// EncodeLSPHeader appends the fixed LSP header to dst.
func EncodeLSPHeader(dst []byte, h LSPHeader) []byte {
	var buf [lspHeaderLen]byte
	binary.BigEndian.PutUint16(buf[0:2], h.PDULength)
	binary.BigEndian.PutUint16(buf[2:4], h.RemLifetime)
	copy(buf[4:10], h.LSPID.SystemID[:])
	buf[10] = h.LSPID.PseudonodeID
	buf[11] = h.LSPID.FragmentID
	binary.BigEndian.PutUint32(buf[12:16], h.SeqNumber)
	binary.BigEndian.PutUint16(buf[16:18], h.Checksum)
	buf[18] = h.Flags
	return append(dst, buf[:]...)
}

// lspChecksumOffset is the byte offset of the checksum field within the
// portion covered by the Fletcher checksum (the LSP body starting at
// LSPID, excluding RemainingLifetime per ISO 10589 §C.2.3).
const lspChecksumOffset = 12

// ComputeLSPChecksum computes the Fletcher checksum over an LSP body
// (everything from LSPID onward, i.e. body[4:] of a decoded LSPHeader
// region, or equivalently the buffer this function is handed with the
// checksum field already zeroed at lspChecksumOffset).
func ComputeLSPChecksum(bodyFromLSPID []byte) (c0, c1 byte) {
	return wire.FletcherChecksum(bodyFromLSPID, lspChecksumOffset)
}

// VerifyLSPChecksum checks a received LSP body (from LSPID onward, as
// received, checksum field included) against the Fletcher algorithm.
func VerifyLSPChecksum(bodyFromLSPID []byte) bool {
	return wire.VerifyFletcher(bodyFromLSPID)
}
