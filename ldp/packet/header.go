// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package packet implements the LDP (RFC 5036) PDU and message codecs:
// the common PDU header, the per-message header shared by every message
// type, and TLV-bearing Hello/Init/Keepalive/Notification/Label messages.
// LDP's TLV type and length fields are both two octets, per §3.5; TLVs are
// framed by this package's own decoder (tlv.go), without the 4-byte
// padding internal/wire applies to its wide-width TLVs.
package packet

import (
	"encoding/binary"
	"fmt"
)

// ErrInvalidLength is returned when a buffer is too short for the field
// being decoded.
var ErrInvalidLength = fmt.Errorf("decode/invalid-length")

// ErrInvalidVersion is returned when a PDU's version field is not 1.
var ErrInvalidVersion = fmt.Errorf("decode/invalid-version")

const pduHeaderLen = 10

// Header is the common LDP PDU header prefixing every message sequence on
// the wire (RFC 5036 §3.4).
type Header struct {
	Version      uint16
	PDULength    uint16 // byte count following this field
	LSRID        [4]byte
	LabelSpaceID uint16
}

// DecodeHeader parses the 10-byte common PDU header from the front of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < pduHeaderLen {
		return Header{}, ErrInvalidLength
	}
	var h Header
	h.Version = binary.BigEndian.Uint16(buf[0:2])
	if h.Version != 1 {
		return Header{}, ErrInvalidVersion
	}
	h.PDULength = binary.BigEndian.Uint16(buf[2:4])
	copy(h.LSRID[:], buf[4:8])
	h.LabelSpaceID = binary.BigEndian.Uint16(buf[8:10])
	return h, nil
}

// EncodeHeader appends the common PDU header to buf.
func EncodeHeader(buf []byte, h Header) []byte {
	var tmp [pduHeaderLen]byte
	binary.BigEndian.PutUint16(tmp[0:2], 1)
	binary.BigEndian.PutUint16(tmp[2:4], h.PDULength)
	copy(tmp[4:8], h.LSRID[:])
	binary.BigEndian.PutUint16(tmp[8:10], h.LabelSpaceID)
	return append(buf, tmp[:]...)
}

// MessageType identifies an LDP message's content, per RFC 5036 §3.5.
type MessageType uint16

const (
	MsgNotification    MessageType = 0x0001
	MsgHello           MessageType = 0x0100
	MsgInit            MessageType = 0x0200
	MsgKeepalive       MessageType = 0x0201
	MsgAddress         MessageType = 0x0300
	MsgAddressWithdraw MessageType = 0x0301
	MsgLabelMapping    MessageType = 0x0400
	MsgLabelRequest    MessageType = 0x0401
	MsgLabelWithdraw   MessageType = 0x0402
	MsgLabelRelease    MessageType = 0x0403
	MsgLabelAbortReq   MessageType = 0x0404
)

const msgHeaderLen = 8

// unknownBit masks the high bit of the Type field: an implementation
// that doesn't recognize a message type forwards it unchanged if unset,
// or silently discards it if set (RFC 5036 §3.5).
const unknownBit = 0x8000

// MessageHeader is the fixed-format part common to every LDP message:
// message type, message length (bytes following this field), and a
// message ID used to correlate Notifications back to the message that
// provoked them.
type MessageHeader struct {
	Type      MessageType
	Length    uint16
	MessageID uint32
}

// DecodeMessageHeader parses the 8-byte message header from the front of
// buf.
func DecodeMessageHeader(buf []byte) (MessageHeader, error) {
	if len(buf) < msgHeaderLen {
		return MessageHeader{}, ErrInvalidLength
	}
	var h MessageHeader
	h.Type = MessageType(binary.BigEndian.Uint16(buf[0:2]) &^ unknownBit)
	h.Length = binary.BigEndian.Uint16(buf[2:4])
	h.MessageID = binary.BigEndian.Uint32(buf[4:8])
	return h, nil
}

// EncodeMessageHeader appends the 8-byte message header to buf.
func EncodeMessageHeader(buf []byte, h MessageHeader) []byte {
	var tmp [msgHeaderLen]byte
	binary.BigEndian.PutUint16(tmp[0:2], uint16(h.Type))
	binary.BigEndian.PutUint16(tmp[2:4], h.Length)
	binary.BigEndian.PutUint32(tmp[4:8], h.MessageID)
	return append(buf, tmp[:]...)
}
