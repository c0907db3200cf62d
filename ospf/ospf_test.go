// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ospf

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyd/polyd/linkstate"
)

func TestNeighborFSMReachesFull(t *testing.T) {
	n := NewNeighbor(netip.MustParseAddr("10.0.0.2"))
	require.Equal(t, NbrDown, n.State())

	require.NoError(t, n.Fire(EventHelloRcvd))
	require.Equal(t, NbrInit, n.State())
	require.NoError(t, n.Fire(EventTwoWayRcvd))
	require.Equal(t, NbrTwoWay, n.State())
	require.NoError(t, n.Fire(EventAdjOK))
	require.Equal(t, NbrExStart, n.State())
	require.NoError(t, n.Fire(EventNegotiationDone))
	require.Equal(t, NbrExchange, n.State())
	require.NoError(t, n.Fire(EventExchangeDone))
	require.Equal(t, NbrLoading, n.State())
	require.NoError(t, n.Fire(EventLoadingDone))
	require.Equal(t, NbrFull, n.State())
	require.Equal(t, 1, n.FullCount)
}

func TestNeighborKillNbrDropsToDownFromAnyUpState(t *testing.T) {
	n := NewNeighbor(netip.MustParseAddr("10.0.0.2"))
	require.NoError(t, n.Fire(EventHelloRcvd))
	require.NoError(t, n.Fire(EventTwoWayRcvd))
	require.NoError(t, n.Fire(EventKillNbr))
	require.Equal(t, NbrDown, n.State())
}

func TestElectionDeterministicRegardlessOfArrivalOrder(t *testing.T) {
	self := netip.MustParseAddr("10.0.0.1")
	a := netip.MustParseAddr("10.0.0.2")
	b := netip.MustParseAddr("10.0.0.3")

	order1 := []linkstate.Candidate{
		{RouterID: self, Priority: 1, IsSelf: true, IfAddr: self},
		{RouterID: a, Priority: 2, IfAddr: a},
		{RouterID: b, Priority: 2, IfAddr: b},
	}
	order2 := []linkstate.Candidate{
		{RouterID: b, Priority: 2, IfAddr: b},
		{RouterID: self, Priority: 1, IsSelf: true, IfAddr: self},
		{RouterID: a, Priority: 2, IfAddr: a},
	}

	r1 := linkstate.RunElection(order1)
	r2 := linkstate.RunElection(order2)
	require.Equal(t, r1, r2)
}

// TestRouterLSAReoriginationOnCostChange implements §8 scenario 2: with
// one area containing one OSPFv2 router, change interface eth0's cost
// from 10 to 20. A new Router-LSA is originated with sequence = prev+1
// and the updated link cost; the LSDB's cksum_sum shifts by exactly the
// checksum delta.
func TestRouterLSAReoriginationOnCostChange(t *testing.T) {
	typeOf := func(key string) uint16 { return 1 }
	db := linkstate.NewLSDB[uint16](typeOf, 5)

	const key = "1-10.0.0.1-10.0.0.1"
	firstChecksum := uint16(1000)
	decision := db.Insert(key, linkstate.Header{Sequence: 1, Checksum: firstChecksum}, 10)
	require.Equal(t, linkstate.DecisionNewer, decision)
	require.Equal(t, uint32(firstChecksum), db.ChecksumSum())

	secondChecksum := uint16(1050)
	decision = db.Insert(key, linkstate.Header{Sequence: 2, Checksum: secondChecksum}, 20)
	require.Equal(t, linkstate.DecisionNewer, decision)
	require.Equal(t, uint32(secondChecksum), db.ChecksumSum(), "cksum_sum shifts by exactly the checksum delta")

	entry, ok := db.Get(key)
	require.True(t, ok)
	require.Equal(t, uint32(2), entry.Header.Sequence)
	require.Equal(t, uint16(20), entry.Body)
}

// TestPartialSPFOnExternalChange implements §8 scenario 3: a converged
// RIB contains 10.0.0.0/24 (type-2, metric2=100, ASBR=X); a new
// AS-External-LSA for the same prefix arrives with metric2=50 from the
// same ASBR. The only route that changes is 10.0.0.0/24; exactly one
// route-install is emitted and nothing else.
func TestPartialSPFOnExternalChange(t *testing.T) {
	rib := NewRIB()
	prefix := netip.MustParsePrefix("10.0.0.0/24")
	asbrNexthop := netip.MustParseAddr("192.0.2.1")

	install, uninstall := rib.ApplyExternal(ExternalCandidate{
		Prefix: prefix, Type2: true, Metric: 100, ASBRCost: 5, Nexthop: asbrNexthop,
	})
	require.NotNil(t, install)
	require.Nil(t, uninstall)

	install, uninstall = rib.ApplyExternal(ExternalCandidate{
		Prefix: prefix, Type2: true, Metric: 50, ASBRCost: 5, Nexthop: asbrNexthop,
	})
	require.NotNil(t, install, "the improved metric must trigger exactly one route-install")
	require.Nil(t, uninstall)
	require.Equal(t, uint32(50), install.Route.Type2Metric)

	route, _, ok := rib.Get(prefix)
	require.True(t, ok)
	require.Equal(t, uint32(50), route.Type2Metric)
}

func TestPartialSPFDoesNotReinstallWorseExternalCandidate(t *testing.T) {
	rib := NewRIB()
	prefix := netip.MustParsePrefix("10.0.0.0/24")
	nh := netip.MustParseAddr("192.0.2.1")

	rib.ApplyExternal(ExternalCandidate{Prefix: prefix, Type2: true, Metric: 50, ASBRCost: 5, Nexthop: nh})
	install, uninstall := rib.ApplyExternal(ExternalCandidate{Prefix: prefix, Type2: true, Metric: 100, ASBRCost: 5, Nexthop: nh})
	require.Nil(t, install)
	require.Nil(t, uninstall)
}
