// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"encoding/binary"

	"github.com/polyd/polyd/internal/wire"
)

// HelloCircuitType values shared by LAN and P2P hellos.
const (
	CircuitTypeL1 uint8 = 1
	CircuitTypeL2 uint8 = 2
	CircuitTypeL1L2 uint8 = 3
)

// LANHelloHeader is the fixed portion of an L1/L2 LAN IIH preceding its
// TLVs.
type LANHelloHeader struct {
	CircuitType  uint8
	SourceID     [6]byte
	HoldTime     uint16
	PDULength    uint16
	Priority     uint8 // low 7 bits; high bit reserved
	LANID        [7]byte // DIS system-id + pseudonode id
}

const lanHelloHeaderLen = 19

func DecodeLANHelloHeader(buf []byte) (LANHelloHeader, int, error) {
	if len(buf) < lanHelloHeaderLen {
		return LANHelloHeader{}, 0, ErrInvalidLength
	}
	var h LANHelloHeader
	h.CircuitType = buf[0] & 0x3
	copy(h.SourceID[:], buf[1:7])
	h.HoldTime = binary.BigEndian.Uint16(buf[7:9])
	h.PDULength = binary.BigEndian.Uint16(buf[9:11])
	h.Priority = buf[11] & 0x7f
	copy(h.LANID[:], buf[12:19])
	return h, lanHelloHeaderLen, nil
}

func EncodeLANHelloHeader(dst []byte, h LANHelloHeader) []byte {
	var buf [lanHelloHeaderLen]byte
	buf[0] = h.CircuitType
	copy(buf[1:7], h.SourceID[:])
	binary.BigEndian.PutUint16(buf[7:9], h.HoldTime)
	binary.BigEndian.PutUint16(buf[9:11], h.PDULength)
	buf[11] = h.Priority & 0x7f
	copy(buf[12:19], h.LANID[:])
	return append(dst, buf[:]...)
}

// P2PHelloHeader is the fixed portion of a point-to-point IIH.
type P2PHelloHeader struct {
	CircuitType uint8
	SourceID    [6]byte
	HoldTime    uint16
	PDULength   uint16
	LocalCircuitID uint8
}

const p2pHelloHeaderLen = 13

func DecodeP2PHelloHeader(buf []byte) (P2PHelloHeader, int, error) {
	if len(buf) < p2pHelloHeaderLen {
		return P2PHelloHeader{}, 0, ErrInvalidLength
	}
	var h P2PHelloHeader
	h.CircuitType = buf[0] & 0x3
	copy(h.SourceID[:], buf[1:7])
	h.HoldTime = binary.BigEndian.Uint16(buf[7:9])
	h.PDULength = binary.BigEndian.Uint16(buf[9:11])
	h.LocalCircuitID = buf[12]
	return h, p2pHelloHeaderLen, nil
}

func EncodeP2PHelloHeader(dst []byte, h P2PHelloHeader) []byte {
	var buf [p2pHelloHeaderLen]byte
	buf[0] = h.CircuitType
	copy(buf[1:7], h.SourceID[:])
	binary.BigEndian.PutUint16(buf[7:9], h.HoldTime)
	binary.BigEndian.PutUint16(buf[9:11], h.PDULength)
	buf[12] = h.LocalCircuitID
	return append(dst, buf[:]...)
}

// Hello is a fully decoded IIH (LAN or P2P), common header plus fixed
// fields plus TLVs, enough for the adjacency layer to drive its FSM and
// for the codec round-trip property in §8.
type Hello struct {
	Common      CommonHeader
	LAN         *LANHelloHeader
	P2P         *P2PHelloHeader
	Areas       AreaAddressesTLV
	Neighbors   ISNeighborsTLV // LAN hellos only
	Protocols   ProtocolsSupportedTLV
	IPAddresses IPInterfaceAddressTLV
	Auth        *AuthenticationTLV
	Unknown     []wire.TLV
}

// DecodeHello parses a complete Hello PDU, dispatching on the common
// header's PDUType to the LAN or P2P fixed-field layout.
func DecodeHello(buf []byte) (Hello, error) {
	common, n, err := DecodeCommonHeader(buf)
	if err != nil {
		return Hello{}, err
	}
	rest := buf[n:]

	var h Hello
	h.Common = common
	switch common.PDUType {
	case PDUL1Hello, PDUL2Hello:
		lan, ln, err := DecodeLANHelloHeader(rest)
		if err != nil {
			return Hello{}, err
		}
		h.LAN = &lan
		rest = rest[ln:]
	case PDUP2PHello:
		p2p, pn, err := DecodeP2PHelloHeader(rest)
		if err != nil {
			return Hello{}, err
		}
		h.P2P = &p2p
		rest = rest[pn:]
	default:
		return Hello{}, ErrInvalidVersion
	}

	tlvs, err := DecodeTLVs(rest)
	if err != nil {
		return Hello{}, err
	}
	for _, t := range tlvs {
		switch t.Type {
		case TLVAreaAddresses:
			areas, err := DecodeAreaAddresses(t.Value)
			if err != nil {
				return Hello{}, err
			}
			h.Areas = areas
		case TLVISNeighbors:
			nbrs, err := DecodeISNeighbors(t.Value)
			if err != nil {
				return Hello{}, err
			}
			h.Neighbors = nbrs
		case TLVProtocolsSupported:
			h.Protocols = DecodeProtocolsSupported(t.Value)
		case TLVIPInterfaceAddress:
			addrs, err := DecodeIPInterfaceAddress(t.Value)
			if err != nil {
				return Hello{}, err
			}
			h.IPAddresses = addrs
		case TLVAuthentication:
			auth, err := DecodeAuthentication(t.Value)
			if err != nil {
				return Hello{}, err
			}
			h.Auth = &auth
		default:
			h.Unknown = append(h.Unknown, t)
		}
	}
	return h, nil
}

// EncodeHello serializes h into a complete Hello PDU, including the common
// header with PDULength computed from the assembled body.
func EncodeHello(h Hello) []byte {
	var body []byte
	if h.LAN != nil {
		body = EncodeLANHelloHeader(body, *h.LAN)
	} else if h.P2P != nil {
		body = EncodeP2PHelloHeader(body, *h.P2P)
	}

	var tlvs []wire.TLV
	if len(h.Areas.Areas) > 0 {
		tlvs = append(tlvs, wire.TLV{Type: TLVAreaAddresses, Value: h.Areas.Encode()})
	}
	if len(h.Neighbors.Neighbors) > 0 {
		tlvs = append(tlvs, wire.TLV{Type: TLVISNeighbors, Value: h.Neighbors.Encode()})
	}
	if len(h.Protocols.NLPIDs) > 0 {
		tlvs = append(tlvs, wire.TLV{Type: TLVProtocolsSupported, Value: h.Protocols.Encode()})
	}
	if len(h.IPAddresses.Addresses) > 0 {
		tlvs = append(tlvs, wire.TLV{Type: TLVIPInterfaceAddress, Value: h.IPAddresses.Encode()})
	}
	if h.Auth != nil {
		tlvs = append(tlvs, wire.TLV{Type: TLVAuthentication, Value: h.Auth.Encode()})
	}
	tlvs = append(tlvs, h.Unknown...)
	body = EncodeTLVs(body, tlvs)
	if h.LAN != nil || h.P2P != nil {
		binary.BigEndian.PutUint16(body[9:11], uint16(commonHeaderLen+len(body)))
	}

	headerLen := uint8(commonHeaderLen + lanHelloHeaderLen)
	if h.P2P != nil {
		headerLen = uint8(commonHeaderLen + p2pHelloHeaderLen)
	}
	dst := EncodeCommonHeader(nil, h.Common, headerLen)
	return append(dst, body...)
}
