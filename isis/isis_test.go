// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package isis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestHelloAdjacencyUpScenario implements §8 scenario 1: routers A
// (0100.0100.1001) and B (0100.0100.1002) on a P2P link with
// hello-interval=3s, holdtime=9s. After B receives three consecutive
// hellos from A, B's adjacency to A is Up, adjacency_changes == 1, and the
// hold timer remaining is in (6s, 9s].
func TestHelloAdjacencyUpScenario(t *testing.T) {
	systemIDA := [6]byte{0x01, 0x00, 0x01, 0x00, 0x10, 0x01}
	adj := NewAdjacency(systemIDA)
	require.Equal(t, AdjDown, adj.State())

	base := time.Unix(1_700_000_000, 0)
	holdTime := 9 * time.Second

	require.NoError(t, adj.ReceiveHello(base, holdTime))
	require.Equal(t, AdjInitializing, adj.State())

	require.NoError(t, adj.ReceiveHello(base.Add(3*time.Second), holdTime))
	require.Equal(t, AdjUp, adj.State())

	require.NoError(t, adj.ReceiveHello(base.Add(6*time.Second), holdTime))
	require.Equal(t, AdjUp, adj.State())

	require.Equal(t, 1, adj.AdjacencyChanges)

	remaining := adj.HoldRemaining(base.Add(6 * time.Second))
	require.Greater(t, remaining, 6*time.Second)
	require.LessOrEqual(t, remaining, 9*time.Second)
}

func TestAdjacencyDropsOnHoldTimerExpiry(t *testing.T) {
	adj := NewAdjacency([6]byte{1, 0, 1, 0, 16, 1})
	require.NoError(t, adj.ReceiveHello(time.Now(), 9*time.Second))
	require.NoError(t, adj.ReceiveHello(time.Now(), 9*time.Second))
	require.Equal(t, AdjUp, adj.State())
	require.Equal(t, 1, adj.AdjacencyChanges)

	require.NoError(t, adj.HoldTimerExpire())
	require.Equal(t, AdjDown, adj.State())
	require.Equal(t, 2, adj.AdjacencyChanges)
}

func TestInterfaceISMPointToPoint(t *testing.T) {
	iface := NewInterface("eth0", CircuitPointToPoint, [6]byte{1, 0, 1, 0, 16, 1})
	require.NoError(t, iface.Up())
	require.Equal(t, "point-to-point", iface.ISMState().String())
	require.NoError(t, iface.Down())
	require.Equal(t, "down", iface.ISMState().String())
}
