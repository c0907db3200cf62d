// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package netio

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHandleSendDeliversOverLoopback(t *testing.T) {
	rx, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer rx.Close()
	rxAddr := rx.LocalAddr().(*net.UDPAddr)

	tx, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)

	h := NewHandle("lo", tx, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)
	defer h.Close()

	ok := h.Send(netip.MustParseAddr(rxAddr.IP.String()), []byte("hello"))
	require.True(t, ok)

	rx.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := rx.ReadFrom(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
}

func TestHandleSendDropsWhenQueueFull(t *testing.T) {
	tx, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer tx.Close()

	h := NewHandle("lo", tx, 1)
	// Run is never started, so nothing ever drains the queue.
	require.True(t, h.Send(netip.MustParseAddr("127.0.0.1"), []byte("a")))
	require.False(t, h.Send(netip.MustParseAddr("127.0.0.1"), []byte("b")), "a full queue must drop rather than block the caller")
}
