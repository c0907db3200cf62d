// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package instance

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/polyd/polyd/internal/kvstore"
)

func TestNextBootCountIncrementsAndPersists(t *testing.T) {
	store := kvstore.NewMemStore()

	first, err := NextBootCount(store, KindISIS, "core-1")
	require.NoError(t, err)
	require.Equal(t, uint64(1), first)

	second, err := NextBootCount(store, KindISIS, "core-1")
	require.NoError(t, err)
	require.Equal(t, uint64(2), second)

	// A different instance name has an independent counter.
	other, err := NextBootCount(store, KindISIS, "core-2")
	require.NoError(t, err)
	require.Equal(t, uint64(1), other)
}

func TestControllerUpdateIsIdempotent(t *testing.T) {
	starts, stops := 0, 0
	c := NewController(
		func() error { starts++; return nil },
		func(reason StopReason) { stops++ },
	)

	notReady := Readiness{Enabled: false}
	ready := Readiness{Enabled: true, RouterID: netip.MustParseAddr("10.0.0.1"), ProtocolReady: true}

	require.NoError(t, c.Update(notReady))
	require.False(t, c.Active())
	require.Equal(t, 0, starts)

	require.NoError(t, c.Update(ready))
	require.True(t, c.Active())
	require.Equal(t, 1, starts)

	// Repeated Update with the same readiness is a no-op.
	require.NoError(t, c.Update(ready))
	require.Equal(t, 1, starts)

	require.NoError(t, c.Update(notReady))
	require.False(t, c.Active())
	require.Equal(t, 1, stops)
}

func TestControllerRejectsUnusableRouterID(t *testing.T) {
	c := NewController(func() error { return nil }, func(StopReason) {})

	zero := Readiness{Enabled: true, RouterID: netip.Addr{}, ProtocolReady: true}
	require.NoError(t, c.Update(zero))
	require.False(t, c.Active())

	broadcast := Readiness{Enabled: true, RouterID: netip.MustParseAddr("255.255.255.255"), ProtocolReady: true}
	require.NoError(t, c.Update(broadcast))
	require.False(t, c.Active())
}

func TestControllerReset(t *testing.T) {
	stopped := []StopReason{}
	c := NewController(
		func() error { return nil },
		func(reason StopReason) { stopped = append(stopped, reason) },
	)
	ready := Readiness{Enabled: true, RouterID: netip.MustParseAddr("10.0.0.1"), ProtocolReady: true}
	require.NoError(t, c.Update(ready))
	require.True(t, c.Active())

	require.NoError(t, c.Reset(ready))
	require.True(t, c.Active())
	require.Equal(t, []StopReason{StopResetting}, stopped)
}

func TestMailboxServicesPacketsBeforeTimersBeforeInternal(t *testing.T) {
	mb := NewMailbox[int, int, int](4, 4, 4)
	mb.Internal <- 1
	mb.Timers <- 1
	mb.Packets <- 1

	var order []string
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	done := make(chan struct{})

	go func() {
		defer close(done)
		mb.Run(ctx,
			func(p int) { order = append(order, "packet") },
			func(t int) { order = append(order, "timer") },
			func(i int) { order = append(order, "internal"); cancel() },
		)
	}()

	<-done
	require.Equal(t, []string{"packet", "timer", "internal"}, order)
}
