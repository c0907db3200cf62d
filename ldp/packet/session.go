// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import "encoding/binary"

// Init is an LDP Initialization message: the Common Session Parameters
// TLV negotiated at session establishment, per RFC 5036 §3.5.3.
type Init struct {
	ProtocolVersion                uint16
	KeepaliveTime                  uint16
	LabelAdvDownstreamUnsolicited  bool
	LoopDetection                  bool
	PVLimit                        uint8
	MaxPDULength                   uint16
	ReceiverLSRID                  [4]byte
	ReceiverLabelSpace             uint16
}

// commonSessionParamsLen covers ProtocolVersion(2) + KeepaliveTime(2) +
// A/D-bit flags(2) + PVLimit(2) + MaxPDULength(2) + Receiver LDP
// Identifier (LSR-ID(4) + label space(2)), per RFC 5036 §3.5.3.
const commonSessionParamsLen = 16

const sessionAdvertisementBit = 0x8000

// DecodeInit decodes an LDP Initialization message body.
func DecodeInit(buf []byte) (Init, error) {
	tlvs, err := DecodeAllTLVs(buf)
	if err != nil {
		return Init{}, err
	}
	csp, ok := findTLV(tlvs, TLVCommonSessionParams)
	if !ok || len(csp.Value) < commonSessionParamsLen {
		return Init{}, ErrInvalidLength
	}
	v := csp.Value
	var i Init
	i.ProtocolVersion = binary.BigEndian.Uint16(v[0:2])
	i.KeepaliveTime = binary.BigEndian.Uint16(v[2:4])
	flags := binary.BigEndian.Uint16(v[4:6])
	i.LabelAdvDownstreamUnsolicited = flags&sessionAdvertisementBit != 0
	i.LoopDetection = flags&0x4000 != 0
	i.PVLimit = uint8(binary.BigEndian.Uint16(v[6:8]))
	i.MaxPDULength = binary.BigEndian.Uint16(v[8:10])
	copy(i.ReceiverLSRID[:], v[10:14])
	i.ReceiverLabelSpace = binary.BigEndian.Uint16(v[14:16])
	return i, nil
}

// EncodeInit appends the Initialization message's TLVs to dst.
func EncodeInit(dst []byte, i Init) []byte {
	var v [commonSessionParamsLen]byte
	binary.BigEndian.PutUint16(v[0:2], i.ProtocolVersion)
	binary.BigEndian.PutUint16(v[2:4], i.KeepaliveTime)
	var flags uint16
	if i.LabelAdvDownstreamUnsolicited {
		flags |= sessionAdvertisementBit
	}
	if i.LoopDetection {
		flags |= 0x4000
	}
	binary.BigEndian.PutUint16(v[4:6], flags)
	binary.BigEndian.PutUint16(v[6:8], uint16(i.PVLimit))
	binary.BigEndian.PutUint16(v[8:10], i.MaxPDULength)
	copy(v[10:14], i.ReceiverLSRID[:])
	binary.BigEndian.PutUint16(v[14:16], i.ReceiverLabelSpace)
	return EncodeTLV(dst, TLV{Type: TLVCommonSessionParams, Value: v[:]})
}

// Keepalive has no body beyond the message header.

// StatusCode is a Notification message's status field, per RFC 5036
// §3.5.1 / §3.4.6.1. Only the codes this daemon's own FSMs can emit or
// must recognize are named; everything else decodes into the raw value.
type StatusCode uint32

const (
	StatusSuccess            StatusCode = 0x00000000
	StatusSessionRejectedNoHello StatusCode = 0x00000002
	StatusSessionRejectedParams  StatusCode = 0x00000003
	StatusKeepAliveTimerExpired  StatusCode = 0x00000005
	StatusShutdown               StatusCode = 0x00000006
	StatusLoopDetected            StatusCode = 0x00000007
)

// Notification is an LDP Notification message, per RFC 5036 §3.5.1.
type Notification struct {
	Fatal     bool
	Status    StatusCode
	MessageID uint32
	MessageType MessageType
}

const statusTLVLen = 8

const fatalBit = 0x80000000

// DecodeNotification decodes a Notification message body.
func DecodeNotification(buf []byte) (Notification, error) {
	tlvs, err := DecodeAllTLVs(buf)
	if err != nil {
		return Notification{}, err
	}
	st, ok := findTLV(tlvs, TLVStatus)
	if !ok || len(st.Value) < statusTLVLen {
		return Notification{}, ErrInvalidLength
	}
	statusAndFlags := binary.BigEndian.Uint32(st.Value[0:4])
	var n Notification
	n.Fatal = statusAndFlags&fatalBit != 0
	n.Status = StatusCode(statusAndFlags &^ fatalBit)
	n.MessageID = binary.BigEndian.Uint32(st.Value[4:8])
	return n, nil
}

// EncodeNotification appends the Notification message's TLVs to dst.
func EncodeNotification(dst []byte, n Notification) []byte {
	var v [statusTLVLen]byte
	status := uint32(n.Status)
	if n.Fatal {
		status |= fatalBit
	}
	binary.BigEndian.PutUint32(v[0:4], status)
	binary.BigEndian.PutUint32(v[4:8], n.MessageID)
	return EncodeTLV(dst, TLV{Type: TLVStatus, Value: v[:]})
}
