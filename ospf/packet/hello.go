// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import "encoding/binary"

// Hello is a decoded OSPFv2 Hello packet body (following the common
// header).
type Hello struct {
	NetworkMask    [4]byte
	HelloInterval  uint16
	Options        uint8
	RtrPriority    uint8
	RouterDeadInt  uint32
	DesignatedRtr  [4]byte
	BackupDesigRtr [4]byte
	Neighbors      [][4]byte
}

const helloFixedLen = 20

// DecodeHello parses an OSPFv2 Hello body.
func DecodeHello(buf []byte) (Hello, error) {
	if len(buf) < helloFixedLen {
		return Hello{}, ErrInvalidLength
	}
	var h Hello
	copy(h.NetworkMask[:], buf[0:4])
	h.HelloInterval = binary.BigEndian.Uint16(buf[4:6])
	h.Options = buf[6]
	h.RtrPriority = buf[7]
	h.RouterDeadInt = binary.BigEndian.Uint32(buf[8:12])
	copy(h.DesignatedRtr[:], buf[12:16])
	copy(h.BackupDesigRtr[:], buf[16:20])

	rest := buf[helloFixedLen:]
	if len(rest)%4 != 0 {
		return Hello{}, ErrInvalidLength
	}
	for i := 0; i < len(rest); i += 4 {
		var n [4]byte
		copy(n[:], rest[i:i+4])
		h.Neighbors = append(h.Neighbors, n)
	}
	return h, nil
}

// EncodeHello appends the Hello body to dst.
func EncodeHello(dst []byte, h Hello) []byte {
	var fixed [helloFixedLen]byte
	copy(fixed[0:4], h.NetworkMask[:])
	binary.BigEndian.PutUint16(fixed[4:6], h.HelloInterval)
	fixed[6] = h.Options
	fixed[7] = h.RtrPriority
	binary.BigEndian.PutUint32(fixed[8:12], h.RouterDeadInt)
	copy(fixed[12:16], h.DesignatedRtr[:])
	copy(fixed[16:20], h.BackupDesigRtr[:])
	dst = append(dst, fixed[:]...)
	for _, n := range h.Neighbors {
		dst = append(dst, n[:]...)
	}
	return dst
}

// OptionsBit names for the Hello/DD/LSA Options octet.
const (
	OptionE  uint8 = 1 << 1 // external-routing capable
	OptionMC uint8 = 1 << 2
	OptionNP uint8 = 1 << 3
	OptionDC uint8 = 1 << 5
	OptionO  uint8 = 1 << 6 // opaque LSA capable (RFC 5250)
)
