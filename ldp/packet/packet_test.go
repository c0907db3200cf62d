// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Version: 1, PDULength: 42, LSRID: [4]byte{10, 0, 0, 1}, LabelSpaceID: 0}
	buf := EncodeHeader(nil, h)
	require.Len(t, buf, pduHeaderLen)

	got, err := DecodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestHelloRoundTripWithTransportAddress(t *testing.T) {
	h := Hello{
		HoldTime:      15,
		TargetedFlag:  true,
		TransportAddr: netip.MustParseAddr("192.0.2.1"),
	}
	buf := EncodeHello(nil, h)

	got, err := DecodeHello(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestHelloRoundTripWithoutTransportAddress(t *testing.T) {
	h := Hello{HoldTime: 15}
	buf := EncodeHello(nil, h)

	got, err := DecodeHello(buf)
	require.NoError(t, err)
	require.Equal(t, h.HoldTime, got.HoldTime)
	require.False(t, got.TransportAddr.IsValid())
}

func TestInitRoundTrip(t *testing.T) {
	i := Init{
		ProtocolVersion:               1,
		KeepaliveTime:                 30,
		LabelAdvDownstreamUnsolicited: true,
		MaxPDULength:                  4096,
		ReceiverLSRID:                 [4]byte{10, 0, 0, 2},
	}
	buf := EncodeInit(nil, i)

	got, err := DecodeInit(buf)
	require.NoError(t, err)
	require.Equal(t, i, got)
}

func TestNotificationRoundTrip(t *testing.T) {
	n := Notification{Fatal: true, Status: StatusSessionRejectedParams, MessageID: 7}
	buf := EncodeNotification(nil, n)

	got, err := DecodeNotification(buf)
	require.NoError(t, err)
	require.Equal(t, n.Fatal, got.Fatal)
	require.Equal(t, n.Status, got.Status)
	require.Equal(t, n.MessageID, got.MessageID)
}

func TestLabelMappingRoundTrip(t *testing.T) {
	m := LabelMapping{
		FECs:  []FEC{{Prefix: netip.MustParsePrefix("10.0.0.0/24")}},
		Label: 100,
	}
	buf := EncodeLabelMapping(nil, m)

	got, err := DecodeLabelMapping(buf)
	require.NoError(t, err)
	require.Equal(t, m.FECs, got.FECs)
	require.Equal(t, m.Label, got.Label)
}

func TestMessageHeaderRoundTrip(t *testing.T) {
	h := MessageHeader{Type: MsgLabelMapping, Length: 20, MessageID: 99}
	buf := EncodeMessageHeader(nil, h)
	require.Len(t, buf, msgHeaderLen)

	got, err := DecodeMessageHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}
