// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package bgp

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyd/polyd/bgp/packet"
	"github.com/polyd/polyd/internal/instance"
	"github.com/polyd/polyd/internal/kvstore"
	"github.com/polyd/polyd/internal/log"
)

func TestNeighborFSMReachesEstablished(t *testing.T) {
	n := NewNeighbor(netip.MustParseAddr("192.0.2.2"), 65001)
	require.Equal(t, PeerIdle, n.State())

	require.NoError(t, n.Fire(EventTCPConnectionConfirmed))
	require.Equal(t, PeerOpenSent, n.State())

	require.NoError(t, n.Fire(EventOpenRcvd))
	require.Equal(t, PeerOpenConfirm, n.State())

	require.NoError(t, n.Fire(EventKeepaliveRcvd))
	require.Equal(t, PeerEstablished, n.State())
	require.Equal(t, 1, n.EstablishedCount)
}

func TestNeighborNotificationDropsToIdleFromAnyUpState(t *testing.T) {
	n := NewNeighbor(netip.MustParseAddr("192.0.2.2"), 65001)
	require.NoError(t, n.Fire(EventTCPConnectionConfirmed))
	require.NoError(t, n.Fire(EventOpenRcvd))
	require.NoError(t, n.Fire(EventNotifRcvd))
	require.Equal(t, PeerIdle, n.State())
}

func TestHandleOpenRejectsBadPeerAS(t *testing.T) {
	n := NewNeighbor(netip.MustParseAddr("192.0.2.2"), 65001)
	require.NoError(t, n.Fire(EventTCPConnectionConfirmed))

	err := n.HandleOpen(packet.Open{Version: 4, MyAS: 0, HoldTime: 90, Identifier: netip.MustParseAddr("192.0.2.2")})
	require.NotNil(t, err)
	require.Equal(t, packet.ErrOpenMessage, err.Code)
	require.Equal(t, uint8(packet.SubcodeBadPeerAS), err.Subcode)
	require.Equal(t, PeerIdle, n.State())
}

// TestInstanceClosesSessionOnBadPeerAS implements §8 scenario 6
// end-to-end through the instance dispatch path: a well-formed OPEN with
// my_as = 0 arrives; the instance sends a NOTIFICATION with
// OPEN_MESSAGE_ERROR/BAD_PEER_AS and closes the TCP session.
func TestInstanceClosesSessionOnBadPeerAS(t *testing.T) {
	var closedWith *packet.Notification
	var closedPeer netip.Addr
	inst := NewInstance("default", &instance.Shared{
		Store: kvstore.NewMemStore(),
		Log:   log.NewNoOp(),
	}, func(remote netip.Addr, n packet.Notification) {
		closedPeer = remote
		closedWith = &n
	})

	peer := netip.MustParseAddr("192.0.2.2")
	n := NewNeighbor(peer, 65001)
	require.NoError(t, n.Fire(EventTCPConnectionConfirmed))
	inst.Neighbors[peer] = n

	open := packet.Open{Version: 4, MyAS: 0, HoldTime: 90, Identifier: netip.MustParseAddr("192.0.2.2")}
	raw := packet.EncodeOpen(nil, open)

	inst.handlePacket(PacketMsg{RemoteAddr: peer, Type: packet.TypeOpen, Raw: raw})

	require.NotNil(t, closedWith, "instance must close the tcp session on a bad-peer-as open")
	require.Equal(t, peer, closedPeer)
	require.Equal(t, packet.ErrOpenMessage, closedWith.Code)
	require.Equal(t, uint8(packet.SubcodeBadPeerAS), closedWith.Subcode)
	require.Equal(t, PeerIdle, n.State())
}
