// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Type: TypeUpdate, Length: 42}
	buf := EncodeHeader(nil, h)
	require.Len(t, buf, headerLen)

	got, err := DecodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestHeaderRejectsBadMarker(t *testing.T) {
	buf := EncodeHeader(nil, Header{Type: TypeKeepalive, Length: 19})
	buf[0] = 0x00
	_, err := DecodeHeader(buf)
	require.Error(t, err)
}

func TestOpenRoundTripWithMultiProtocolCapability(t *testing.T) {
	o := Open{
		Version:    4,
		MyAS:       65001,
		HoldTime:   90,
		Identifier: netip.MustParseAddr("192.0.2.1"),
		Capabilities: []Capability{
			{Code: CapMultiProtocol, AFI: 1, SAFI: 1},
			{Code: CapFourOctetASNumber, Value: []byte{0, 1, 253, 233}},
		},
	}
	buf := EncodeOpen(nil, o)

	got, err := DecodeOpen(buf)
	require.NoError(t, err)
	require.Equal(t, o.Version, got.Version)
	require.Equal(t, o.MyAS, got.MyAS)
	require.Equal(t, o.HoldTime, got.HoldTime)
	require.Equal(t, o.Identifier, got.Identifier)
	require.Len(t, got.Capabilities, 2)
	require.Equal(t, CapMultiProtocol, got.Capabilities[0].Code)
	require.Equal(t, uint16(1), got.Capabilities[0].AFI)
	require.Equal(t, uint8(1), got.Capabilities[0].SAFI)
}

func TestValidateCapabilitiesRejectsZeroAFIMultiProtocol(t *testing.T) {
	caps := []Capability{{Code: CapMultiProtocol, AFI: 0, SAFI: 1}}
	err := ValidateCapabilities(caps)
	require.NotNil(t, err)
	require.Equal(t, ErrOpenMessage, err.Code)
	require.Equal(t, uint8(SubcodeUnsupportedOptParam), err.Subcode)
}

func TestValidateCapabilitiesAcceptsWellFormedMultiProtocol(t *testing.T) {
	caps := []Capability{{Code: CapMultiProtocol, AFI: 1, SAFI: 1}}
	require.Nil(t, ValidateCapabilities(caps))
}

// TestValidateOpenRejectsBadPeerAS implements §8 scenario 6: an OPEN
// message arrives with my_as = 0; validation must report
// open-message/bad-peer-as and the caller sends a NOTIFICATION with
// OPEN_MESSAGE_ERROR/BAD_PEER_AS before closing the TCP session.
func TestValidateOpenRejectsBadPeerAS(t *testing.T) {
	o := Open{
		Version:    4,
		MyAS:       0,
		HoldTime:   90,
		Identifier: netip.MustParseAddr("192.0.2.1"),
	}
	err := ValidateOpen(o, 0)
	require.NotNil(t, err)
	require.Equal(t, ErrOpenMessage, err.Code)
	require.Equal(t, uint8(SubcodeBadPeerAS), err.Subcode)

	n := FromError(err)
	buf := EncodeNotification(nil, n)
	got, decErr := DecodeNotification(buf)
	require.NoError(t, decErr)
	require.Equal(t, ErrOpenMessage, got.Code)
	require.Equal(t, uint8(SubcodeBadPeerAS), got.Subcode)
}

func TestValidateOpenRejectsMismatchedConfiguredAS(t *testing.T) {
	o := Open{Version: 4, MyAS: 65002, HoldTime: 90, Identifier: netip.MustParseAddr("192.0.2.1")}
	err := ValidateOpen(o, 65001)
	require.NotNil(t, err)
	require.Equal(t, uint8(SubcodeBadPeerAS), err.Subcode)
}

func TestValidateOpenRejectsUnacceptableHoldTime(t *testing.T) {
	o := Open{Version: 4, MyAS: 65001, HoldTime: 1, Identifier: netip.MustParseAddr("192.0.2.1")}
	err := ValidateOpen(o, 0)
	require.NotNil(t, err)
	require.Equal(t, uint8(SubcodeUnacceptableHoldTime), err.Subcode)
}

func TestValidateOpenAccepts(t *testing.T) {
	o := Open{Version: 4, MyAS: 65001, HoldTime: 90, Identifier: netip.MustParseAddr("192.0.2.1")}
	require.Nil(t, ValidateOpen(o, 65001))
}

func TestUpdateRoundTrip(t *testing.T) {
	u := Update{
		WithdrawnRoutes: []netip.Prefix{netip.MustParsePrefix("198.51.100.0/24")},
		PathAttrs: []PathAttr{
			{Flags: attrFlagTransitive, Type: AttrOrigin, Value: []byte{0}},
			{Flags: attrFlagTransitive, Type: AttrNextHop, Value: netip.MustParseAddr("192.0.2.1").AsSlice()},
		},
		NLRI: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/24"), netip.MustParsePrefix("10.0.1.0/25")},
	}
	buf := EncodeUpdate(nil, u)

	got, err := DecodeUpdate(buf)
	require.NoError(t, err)
	require.Equal(t, u.WithdrawnRoutes, got.WithdrawnRoutes)
	require.Equal(t, u.NLRI, got.NLRI)
	nh, ok := got.NextHop()
	require.True(t, ok)
	require.Equal(t, netip.MustParseAddr("192.0.2.1"), nh)
}

func TestNotificationRoundTrip(t *testing.T) {
	n := Notification{Code: ErrCease, Subcode: 2, Data: []byte{1, 2, 3}}
	buf := EncodeNotification(nil, n)

	got, err := DecodeNotification(buf)
	require.NoError(t, err)
	require.Equal(t, n, got)
}
