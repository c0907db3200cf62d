// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

// Notification is a decoded NOTIFICATION message, per RFC 4271 §4.5. Data
// is decoded leniently: whatever bytes follow the error code/subcode are
// kept verbatim rather than parsed, since its format is error-specific
// and most subcodes carry none at all.
type Notification struct {
	Code    ErrorCode
	Subcode uint8
	Data    []byte
}

// DecodeNotification decodes a NOTIFICATION message body.
func DecodeNotification(buf []byte) (Notification, error) {
	if len(buf) < 2 {
		return Notification{}, ErrInvalidLength
	}
	data := make([]byte, len(buf)-2)
	copy(data, buf[2:])
	return Notification{Code: ErrorCode(buf[0]), Subcode: buf[1], Data: data}, nil
}

// EncodeNotification appends the NOTIFICATION message body to dst.
func EncodeNotification(dst []byte, n Notification) []byte {
	dst = append(dst, byte(n.Code), n.Subcode)
	return append(dst, n.Data...)
}

// FromError builds the NOTIFICATION body to send for a validation
// failure returned by ValidateOpen or a decode function.
func FromError(e *Error) Notification {
	return Notification{Code: e.Code, Subcode: e.Subcode}
}
