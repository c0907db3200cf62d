// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"encoding/binary"
	"net/netip"
)

// PathAttrType identifies a path attribute, per RFC 4271 §5 and the IANA
// registry.
type PathAttrType uint8

const (
	AttrOrigin         PathAttrType = 1
	AttrASPath         PathAttrType = 2
	AttrNextHop        PathAttrType = 3
	AttrMultiExitDisc  PathAttrType = 4
	AttrLocalPref      PathAttrType = 5
	AttrAtomicAggregate PathAttrType = 6
	AttrAggregator      PathAttrType = 7
)

const (
	attrFlagOptional   = 0x80
	attrFlagTransitive = 0x40
	attrFlagPartial    = 0x20
	attrFlagExtendedLen = 0x10
)

// PathAttr is one decoded path attribute; Value holds its raw body
// uninterpreted. The codec does not validate attribute bodies; only
// NEXT_HOP is decoded, on demand, by Update.NextHop.
type PathAttr struct {
	Flags uint8
	Type  PathAttrType
	Value []byte
}

// Update is a decoded UPDATE message, per RFC 4271 §4.3.
type Update struct {
	WithdrawnRoutes []netip.Prefix
	PathAttrs       []PathAttr
	NLRI            []netip.Prefix
}

// decodePrefixList decodes a sequence of RFC 4271 §4.3 length-prefixed
// IPv4 prefixes ("Withdrawn Routes" and NLRI share this encoding).
func decodePrefixList(buf []byte) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for len(buf) > 0 {
		prefixLen := int(buf[0])
		byteLen := (prefixLen + 7) / 8
		if prefixLen > 32 || len(buf) < 1+byteLen {
			return nil, newError(ErrUpdateMessage, uint8(SubcodeMalformedAttrList), "malformed prefix list")
		}
		var b4 [4]byte
		copy(b4[:], buf[1:1+byteLen])
		prefixes = append(prefixes, netip.PrefixFrom(netip.AddrFrom4(b4), prefixLen))
		buf = buf[1+byteLen:]
	}
	return prefixes, nil
}

func encodePrefixList(dst []byte, prefixes []netip.Prefix) []byte {
	for _, p := range prefixes {
		bits := p.Bits()
		byteLen := (bits + 7) / 8
		dst = append(dst, byte(bits))
		addrBytes := p.Addr().As4()
		dst = append(dst, addrBytes[:byteLen]...)
	}
	return dst
}

// DecodeUpdate decodes an UPDATE message body.
func DecodeUpdate(buf []byte) (Update, error) {
	if len(buf) < 2 {
		return Update{}, newError(ErrUpdateMessage, uint8(SubcodeMalformedAttrList), "update message too short")
	}
	withdrawnLen := int(binary.BigEndian.Uint16(buf[0:2]))
	buf = buf[2:]
	if len(buf) < withdrawnLen {
		return Update{}, newError(ErrUpdateMessage, uint8(SubcodeMalformedAttrList), "withdrawn routes truncated")
	}
	withdrawn, err := decodePrefixList(buf[:withdrawnLen])
	if err != nil {
		return Update{}, err
	}
	buf = buf[withdrawnLen:]

	if len(buf) < 2 {
		return Update{}, newError(ErrUpdateMessage, uint8(SubcodeMalformedAttrList), "missing path attribute length")
	}
	attrsLen := int(binary.BigEndian.Uint16(buf[0:2]))
	buf = buf[2:]
	if len(buf) < attrsLen {
		return Update{}, newError(ErrUpdateMessage, uint8(SubcodeMalformedAttrList), "path attributes truncated")
	}
	attrs, err := decodePathAttrs(buf[:attrsLen])
	if err != nil {
		return Update{}, err
	}
	buf = buf[attrsLen:]

	nlri, err := decodePrefixList(buf)
	if err != nil {
		return Update{}, err
	}
	return Update{WithdrawnRoutes: withdrawn, PathAttrs: attrs, NLRI: nlri}, nil
}

func decodePathAttrs(buf []byte) ([]PathAttr, error) {
	var attrs []PathAttr
	for len(buf) > 0 {
		if len(buf) < 3 {
			return nil, newError(ErrUpdateMessage, uint8(SubcodeAttrLengthError), "path attribute header truncated")
		}
		flags := buf[0]
		typ := PathAttrType(buf[1])
		var length int
		var consumed int
		if flags&attrFlagExtendedLen != 0 {
			if len(buf) < 4 {
				return nil, newError(ErrUpdateMessage, uint8(SubcodeAttrLengthError), "extended-length attribute header truncated")
			}
			length = int(binary.BigEndian.Uint16(buf[2:4]))
			consumed = 4
		} else {
			length = int(buf[2])
			consumed = 3
		}
		if len(buf) < consumed+length {
			return nil, newError(ErrUpdateMessage, uint8(SubcodeAttrLengthError), "attribute value truncated")
		}
		value := make([]byte, length)
		copy(value, buf[consumed:consumed+length])
		attrs = append(attrs, PathAttr{Flags: flags, Type: typ, Value: value})
		buf = buf[consumed+length:]
	}
	return attrs, nil
}

// EncodeUpdate appends the UPDATE message body to dst.
func EncodeUpdate(dst []byte, u Update) []byte {
	var withdrawn []byte
	withdrawn = encodePrefixList(withdrawn, u.WithdrawnRoutes)
	var wlen [2]byte
	binary.BigEndian.PutUint16(wlen[:], uint16(len(withdrawn)))
	dst = append(dst, wlen[:]...)
	dst = append(dst, withdrawn...)

	var attrs []byte
	for _, a := range u.PathAttrs {
		attrs = append(attrs, a.Flags, byte(a.Type))
		if a.Flags&attrFlagExtendedLen != 0 {
			var l [2]byte
			binary.BigEndian.PutUint16(l[:], uint16(len(a.Value)))
			attrs = append(attrs, l[:]...)
		} else {
			attrs = append(attrs, byte(len(a.Value)))
		}
		attrs = append(attrs, a.Value...)
	}
	var alen [2]byte
	binary.BigEndian.PutUint16(alen[:], uint16(len(attrs)))
	dst = append(dst, alen[:]...)
	dst = append(dst, attrs...)

	return encodePrefixList(dst, u.NLRI)
}

// FindAttr returns the first path attribute of the given type, if
// present.
func (u Update) FindAttr(typ PathAttrType) (PathAttr, bool) {
	for _, a := range u.PathAttrs {
		if a.Type == typ {
			return a, true
		}
	}
	return PathAttr{}, false
}

// NextHop decodes the NEXT_HOP attribute's IPv4 address, if present.
func (u Update) NextHop() (netip.Addr, bool) {
	a, ok := u.FindAttr(AttrNextHop)
	if !ok || len(a.Value) < 4 {
		return netip.Addr{}, false
	}
	var b4 [4]byte
	copy(b4[:], a.Value[:4])
	return netip.AddrFrom4(b4), true
}
