// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package southbound

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMailboxSendDropsWhenFull(t *testing.T) {
	m := NewMailbox(1, 1)
	msg := RouteInstall(ProtocolOSPFv2, netip.MustParsePrefix("10.0.0.0/24"), 10, nil)

	require.True(t, m.Send(msg))
	require.False(t, m.Send(msg), "a full outbound channel must drop rather than block the sender")

	got := <-m.Outbound
	require.Equal(t, msg, got)
}

func TestLabelInstallBuildsLDPMessage(t *testing.T) {
	msg := LabelInstall(netip.MustParsePrefix("10.0.0.0/24"), 100, []netip.Addr{netip.MustParseAddr("192.0.2.1")})
	require.Equal(t, KindLabelInstall, msg.Kind)
	require.Equal(t, ProtocolLDP, msg.Protocol)
	require.Equal(t, uint32(100), msg.Label)
}
