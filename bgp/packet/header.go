// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package packet implements the BGP-4 (RFC 4271) message codec: the
// 19-byte common header (marker, length, type) and the OPEN, UPDATE,
// NOTIFICATION, and KEEPALIVE message bodies, following the same layout
// original_source `holo-bgp/src/packet/message.rs` documents.
package packet

import (
	"encoding/binary"
	"fmt"
)

// ErrInvalidLength is returned when a buffer is too short for the field
// being decoded.
var ErrInvalidLength = fmt.Errorf("decode/invalid-length")

// MinMessageLength and MaxMessageLength bound the Length header field,
// per RFC 4271 §4.1.
const (
	MinMessageLength = 19
	MaxMessageLength = 4096
)

const markerLen = 16
const headerLen = 19

// MessageType identifies a BGP message's body, per RFC 4271 §4.1.
type MessageType uint8

const (
	TypeOpen         MessageType = 1
	TypeUpdate       MessageType = 2
	TypeNotification MessageType = 3
	TypeKeepalive    MessageType = 4
	TypeRouteRefresh MessageType = 5
)

// Header is the common BGP message header.
type Header struct {
	Type   MessageType
	Length uint16 // total message length, header included
}

// marker is the all-ones 16-octet marker every unauthenticated BGP
// message carries, per RFC 4271 §4.1.
var marker = [markerLen]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// DecodeHeader parses the 19-byte common header from the front of buf and
// validates the marker and the declared length's bounds.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < headerLen {
		return Header{}, ErrInvalidLength
	}
	for i := 0; i < markerLen; i++ {
		if buf[i] != 0xff {
			return Header{}, fmt.Errorf("decode/bad-marker")
		}
	}
	length := binary.BigEndian.Uint16(buf[16:18])
	if length < MinMessageLength || length > MaxMessageLength {
		return Header{}, fmt.Errorf("decode/bad-length: %d", length)
	}
	return Header{Type: MessageType(buf[18]), Length: length}, nil
}

// EncodeHeader appends the 19-byte common header to dst.
func EncodeHeader(dst []byte, h Header) []byte {
	dst = append(dst, marker[:]...)
	var tmp [3]byte
	binary.BigEndian.PutUint16(tmp[0:2], h.Length)
	tmp[2] = byte(h.Type)
	return append(dst, tmp[:]...)
}
