// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ldp

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveRolePicksHigherAddressAsActive(t *testing.T) {
	low := netip.MustParseAddr("10.0.0.1")
	high := netip.MustParseAddr("10.0.0.2")

	require.Equal(t, RoleActive, DeriveRole(high, low))
	require.Equal(t, RolePassive, DeriveRole(low, high))
}

func TestNeighborSessionReachesOperationalActiveRole(t *testing.T) {
	n := NewNeighbor(netip.MustParseAddr("10.0.0.2"), RoleActive)
	require.Equal(t, StateNonExistent, n.State())

	require.NoError(t, n.Fire(EventMatchedAdjacency))
	require.Equal(t, StateInitialized, n.State())

	// Active role: the local session initiates the TCP connection and
	// sends Init immediately, reaching OpenSent first.
	require.NoError(t, n.Fire(EventConnectionUp))
	require.Equal(t, StateOpenSent, n.State())

	require.NoError(t, n.Fire(EventInitRcvd))
	require.Equal(t, StateOpenRec, n.State())

	require.NoError(t, n.Fire(EventKeepaliveRcvd))
	require.Equal(t, StateOperational, n.State())
}

func TestNeighborSessionReachesOperationalPassiveRole(t *testing.T) {
	n := NewNeighbor(netip.MustParseAddr("10.0.0.1"), RolePassive)
	require.NoError(t, n.Fire(EventMatchedAdjacency))

	// Passive role: the peer's Init arrives before the local session has
	// sent its own, taking the OpenRec branch straight from Initialized.
	require.NoError(t, n.Fire(EventInitRcvd))
	require.Equal(t, StateOpenRec, n.State())

	require.NoError(t, n.Fire(EventInitSent))
	require.Equal(t, StateOpenSent, n.State())

	require.NoError(t, n.Fire(EventKeepaliveRcvd))
	require.Equal(t, StateOperational, n.State())
}

func TestNeighborSessionDropsToNonExistentFromAnyUpState(t *testing.T) {
	n := NewNeighbor(netip.MustParseAddr("10.0.0.2"), RoleActive)
	require.NoError(t, n.Fire(EventMatchedAdjacency))
	require.NoError(t, n.Fire(EventConnectionUp))
	require.NoError(t, n.Fire(EventInitRcvd))
	require.NoError(t, n.Fire(EventKeepaliveRcvd))
	require.Equal(t, StateOperational, n.State())

	require.NoError(t, n.Fire(EventConnectionDown))
	require.Equal(t, StateNonExistent, n.State())
}
