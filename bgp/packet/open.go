// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"encoding/binary"
	"net/netip"

	validator "github.com/go-playground/validator/v10"
)

// CapabilityCode identifies an OPEN message capability, per the optional
// parameter encoding of RFC 4271 §4.2 and RFC 5492.
type CapabilityCode uint8

const (
	CapMultiProtocol      CapabilityCode = 1
	CapRouteRefresh       CapabilityCode = 2
	CapFourOctetASNumber  CapabilityCode = 65
	CapAddPath            CapabilityCode = 69
	CapEnhancedRouteRefresh CapabilityCode = 70
)

// Capability is one decoded OPEN capability. Value holds the raw
// capability value for codes this codec doesn't interpret further (e.g.
// AddPath tuples); MultiProtocol's AFI/SAFI are parsed out since
// capability negotiation gates which NLRI an UPDATE may carry.
type Capability struct {
	Code  CapabilityCode
	AFI   uint16
	SAFI  uint8
	Value []byte
}

const optParamCapabilities = 2
const openParamHeaderLen = 2
const capHeaderLen = 2

// Open is a decoded OPEN message, per RFC 4271 §4.2.
type Open struct {
	Version      uint8
	MyAS         uint16
	HoldTime     uint16
	Identifier   netip.Addr
	Capabilities []Capability
}

const openFixedLen = 10 // version(1) + my_as(2) + holdtime(2) + identifier(4) + opt-parm-len(1)

// DecodeOpen decodes an OPEN message body (the bytes following the common
// header).
func DecodeOpen(buf []byte) (Open, error) {
	if len(buf) < openFixedLen {
		return Open{}, newError(ErrMessageHeader, uint8(SubcodeBadMessageLength), "open message too short")
	}
	var o Open
	o.Version = buf[0]
	o.MyAS = binary.BigEndian.Uint16(buf[1:3])
	o.HoldTime = binary.BigEndian.Uint16(buf[3:5])
	var id4 [4]byte
	copy(id4[:], buf[5:9])
	o.Identifier = netip.AddrFrom4(id4)
	optParamLen := int(buf[9])
	buf = buf[openFixedLen:]
	if len(buf) < optParamLen {
		return Open{}, newError(ErrMessageHeader, uint8(SubcodeBadMessageLength), "open optional parameters truncated")
	}
	buf = buf[:optParamLen]

	for len(buf) > 0 {
		if len(buf) < openParamHeaderLen {
			return Open{}, newError(ErrOpenMessage, 0, "open parameter header truncated")
		}
		paramType := buf[0]
		paramLen := int(buf[1])
		if len(buf) < openParamHeaderLen+paramLen {
			return Open{}, newError(ErrOpenMessage, 0, "open parameter value truncated")
		}
		value := buf[openParamHeaderLen : openParamHeaderLen+paramLen]
		buf = buf[openParamHeaderLen+paramLen:]

		if paramType != optParamCapabilities {
			continue
		}
		caps, err := decodeCapabilities(value)
		if err != nil {
			return Open{}, err
		}
		o.Capabilities = append(o.Capabilities, caps...)
	}
	return o, nil
}

func decodeCapabilities(buf []byte) ([]Capability, error) {
	var caps []Capability
	for len(buf) > 0 {
		if len(buf) < capHeaderLen {
			return nil, newError(ErrOpenMessage, uint8(SubcodeUnsupportedOptParam), "capability header truncated")
		}
		code := CapabilityCode(buf[0])
		length := int(buf[1])
		if len(buf) < capHeaderLen+length {
			return nil, newError(ErrOpenMessage, uint8(SubcodeUnsupportedOptParam), "capability value truncated")
		}
		value := buf[capHeaderLen : capHeaderLen+length]
		c := Capability{Code: code, Value: value}
		if code == CapMultiProtocol && length >= 4 {
			c.AFI = binary.BigEndian.Uint16(value[0:2])
			c.SAFI = value[3]
		}
		caps = append(caps, c)
		buf = buf[capHeaderLen+length:]
	}
	return caps, nil
}

// EncodeOpen appends the OPEN message body to dst.
func EncodeOpen(dst []byte, o Open) []byte {
	var capBuf []byte
	for _, c := range o.Capabilities {
		value := c.Value
		if c.Code == CapMultiProtocol && value == nil {
			value = []byte{byte(c.AFI >> 8), byte(c.AFI), 0, c.SAFI}
		}
		capBuf = append(capBuf, byte(c.Code), byte(len(value)))
		capBuf = append(capBuf, value...)
	}
	var optParams []byte
	if len(capBuf) > 0 {
		optParams = append(optParams, optParamCapabilities, byte(len(capBuf)))
		optParams = append(optParams, capBuf...)
	}

	var fixed [openFixedLen]byte
	fixed[0] = o.Version
	binary.BigEndian.PutUint16(fixed[1:3], o.MyAS)
	binary.BigEndian.PutUint16(fixed[3:5], o.HoldTime)
	id4 := o.Identifier.As4()
	copy(fixed[5:9], id4[:])
	fixed[9] = byte(len(optParams))

	dst = append(dst, fixed[:]...)
	return append(dst, optParams...)
}

// usableIdentifier reports whether id is a valid BGP identifier: a valid
// IPv4 host address (RFC 6286 relaxes RFC 4271's "must be a valid unicast
// IP host address owned by the sender" to allow any nonzero 32-bit value
// read as an unsigned integer, but the zero and broadcast addresses are
// still rejected since they can never identify a single router).
func usableIdentifier(id netip.Addr) bool {
	if !id.IsValid() || !id.Is4() {
		return false
	}
	if id.IsUnspecified() {
		return false
	}
	b := id.As4()
	return b != [4]byte{255, 255, 255, 255}
}

// ValidateOpen checks an OPEN message against the negotiation rules of
// RFC 4271 §6.2, returning the *Error to send back in a NOTIFICATION
// message if validation fails, or nil if the OPEN is acceptable.
// expectedPeerAS is the AS this daemon is configured to expect from the peer (0 means
// unconfigured / accept any), per §8 scenario 6: "OPEN with my_as = 0"
// must fail as BadPeerAS.
func ValidateOpen(o Open, expectedPeerAS uint32) *Error {
	if o.Version != 4 {
		return newError(ErrOpenMessage, uint8(SubcodeUnsupportedVersion), "unsupported bgp version")
	}
	if o.MyAS == 0 {
		return newError(ErrOpenMessage, uint8(SubcodeBadPeerAS), "peer advertised AS 0")
	}
	if expectedPeerAS != 0 && uint32(o.MyAS) != expectedPeerAS {
		return newError(ErrOpenMessage, uint8(SubcodeBadPeerAS), "peer AS does not match configured AS")
	}
	if o.HoldTime == 1 || o.HoldTime == 2 {
		return newError(ErrOpenMessage, uint8(SubcodeUnacceptableHoldTime), "hold time 1 or 2 is disallowed")
	}
	if !usableIdentifier(o.Identifier) {
		return newError(ErrOpenMessage, uint8(SubcodeBadBGPIdentifier), "unusable bgp identifier")
	}
	return nil
}

var capValidate = validator.New()

// capabilityShape is the struct-tag-validated view of a decoded
// Capability, admitted before the capability is allowed to influence
// session negotiation (e.g. before a MultiProtocol capability gates which
// NLRI an UPDATE may carry). It mirrors the admission internal/bootcfg
// applies to the process bootstrap config: the same *validator.Validate
// mechanism, a different struct.
type capabilityShape struct {
	AFI  uint16 `validate:"required_if=RequireAFI true"`
	SAFI uint8  `validate:"required_if=RequireAFI true"`

	RequireAFI bool `validate:"-"`
}

// ValidateCapabilities runs struct-tag validation over each decoded
// capability's parsed shape, rejecting a MultiProtocol capability whose
// AFI/SAFI didn't parse (RFC 5492's capability value is malformed in that
// case, not merely unrecognized).
func ValidateCapabilities(caps []Capability) *Error {
	for _, c := range caps {
		if c.Code != CapMultiProtocol {
			continue
		}
		shape := capabilityShape{AFI: c.AFI, SAFI: c.SAFI, RequireAFI: true}
		if err := capValidate.Struct(shape); err != nil {
			return newError(ErrOpenMessage, uint8(SubcodeUnsupportedOptParam), "malformed multiprotocol capability")
		}
	}
	return nil
}
