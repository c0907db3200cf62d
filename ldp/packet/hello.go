// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"encoding/binary"
	"net/netip"
)

// Hello is an LDP Hello message: the Common Hello Parameters TLV plus an
// optional IPv4 Transport Address TLV used to override the source address
// a receiving peer should use to establish the LDP TCP session, per
// RFC 5036 §3.5.2.
type Hello struct {
	HoldTime        uint16
	TargetedFlag    bool
	RequestTargeted bool
	TransportAddr   netip.Addr // zero value: use the Hello's own source address
}

const commonHelloParamsLen = 4

const (
	helloTargetedBit = 0x8000
	helloRequestBit  = 0x4000
)

// DecodeHello decodes an LDP Hello message body (the TLVs following the
// message ID).
func DecodeHello(buf []byte) (Hello, error) {
	tlvs, err := DecodeAllTLVs(buf)
	if err != nil {
		return Hello{}, err
	}
	var h Hello
	chp, ok := findTLV(tlvs, TLVCommonHelloParams)
	if !ok || len(chp.Value) < commonHelloParamsLen {
		return Hello{}, ErrInvalidLength
	}
	h.HoldTime = binary.BigEndian.Uint16(chp.Value[0:2])
	flags := binary.BigEndian.Uint16(chp.Value[2:4])
	h.TargetedFlag = flags&helloTargetedBit != 0
	h.RequestTargeted = flags&helloRequestBit != 0

	if ta, ok := findTLV(tlvs, TLVIPv4TransportAddress); ok && len(ta.Value) >= 4 {
		var b4 [4]byte
		copy(b4[:], ta.Value[:4])
		h.TransportAddr = netip.AddrFrom4(b4)
	}
	return h, nil
}

// EncodeHello appends the Hello message's TLVs to dst.
func EncodeHello(dst []byte, h Hello) []byte {
	var chp [commonHelloParamsLen]byte
	binary.BigEndian.PutUint16(chp[0:2], h.HoldTime)
	var flags uint16
	if h.TargetedFlag {
		flags |= helloTargetedBit
	}
	if h.RequestTargeted {
		flags |= helloRequestBit
	}
	binary.BigEndian.PutUint16(chp[2:4], flags)
	dst = EncodeTLV(dst, TLV{Type: TLVCommonHelloParams, Value: chp[:]})

	if h.TransportAddr.IsValid() {
		a4 := h.TransportAddr.As4()
		dst = EncodeTLV(dst, TLV{Type: TLVIPv4TransportAddress, Value: a4[:]})
	}
	return dst
}
