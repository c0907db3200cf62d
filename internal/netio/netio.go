// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package netio is the interface network I/O handle: raw-socket PDU
// transmission/reception and multicast group membership, the one part of
// the runtime that actually touches a kernel socket rather than an
// in-process channel. Everything above this package (isis/ospf/ldp/bgp
// instances) only ever sees Handle's typed Send/receive-channel surface,
// never a net.PacketConn directly, mirroring how the teacher's Sender
// interface (networking/sender) keeps transport detail behind a small
// typed-method surface instead of exposing the socket to callers.
package netio

import (
	"context"
	"net"
	"net/netip"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// AllSPFRouters and AllDRouters are OSPF's well-known multicast groups,
// per RFC 2328 Appendix A.3.
var (
	AllSPFRouters = netip.MustParseAddr("224.0.0.5")
	AllDRouters   = netip.MustParseAddr("224.0.0.6")
)

// AllISIS is the IS-IS "All Intermediate Systems" link-local group used
// by LAN Hellos, per ISO 10589 / RFC 1195.
var AllISIS = netip.MustParseAddr("224.0.0.19")

// Handle is one interface's raw-socket I/O handle: the listening
// PacketConn, its multicast membership, and the single detached
// transmit task every instance's packet emission funnels through so a
// slow or blocked socket write never stalls the protocol instance's
// event loop.
type Handle struct {
	IfName string

	pconn  *ipv4.PacketConn
	pconn6 *ipv6.PacketConn

	txQueue chan txRequest
	done    chan struct{}
}

type txRequest struct {
	dst netip.Addr
	raw []byte
}

// NewHandle wraps an already-bound net.PacketConn for the named
// interface. IPv4 callers (IS-IS, OSPFv2, LDP) get a non-nil pconn;
// OSPFv3 callers get pconn6. Exactly one of the two is set, selected by
// conn's underlying address family.
func NewHandle(ifName string, conn net.PacketConn, txQueueDepth int) *Handle {
	h := &Handle{
		IfName:  ifName,
		txQueue: make(chan txRequest, txQueueDepth),
		done:    make(chan struct{}),
	}
	if udp, ok := conn.LocalAddr().(*net.UDPAddr); ok && udp.IP.To4() == nil {
		h.pconn6 = ipv6.NewPacketConn(conn)
	} else {
		h.pconn = ipv4.NewPacketConn(conn)
	}
	return h
}

// JoinGroup joins the given multicast group on this interface, per §6's
// "AllSPFRouters/AllDRouters... multicast group join/leave" requirement.
func (h *Handle) JoinGroup(iface *net.Interface, group netip.Addr) error {
	if h.pconn6 != nil {
		return h.pconn6.JoinGroup(iface, &net.UDPAddr{IP: group.AsSlice()})
	}
	return h.pconn.JoinGroup(iface, &net.UDPAddr{IP: group.AsSlice()})
}

// LeaveGroup leaves a previously joined multicast group.
func (h *Handle) LeaveGroup(iface *net.Interface, group netip.Addr) error {
	if h.pconn6 != nil {
		return h.pconn6.LeaveGroup(iface, &net.UDPAddr{IP: group.AsSlice()})
	}
	return h.pconn.LeaveGroup(iface, &net.UDPAddr{IP: group.AsSlice()})
}

// SetMulticastTTL sets the outgoing multicast TTL (IPv4) or hop limit
// (IPv6). Link-state protocol multicasts are always single-hop.
func (h *Handle) SetMulticastTTL(ttl int) error {
	if h.pconn6 != nil {
		return h.pconn6.SetMulticastHopLimit(ttl)
	}
	return h.pconn.SetMulticastTTL(ttl)
}

// Send enqueues raw for transmission to dst on the detached tx task. It
// never blocks the protocol instance's event loop: a full queue drops
// the packet rather than backing up the caller.
func (h *Handle) Send(dst netip.Addr, raw []byte) bool {
	select {
	case h.txQueue <- txRequest{dst: dst, raw: raw}:
		return true
	default:
		return false
	}
}

// Run drains the transmit queue until ctx is cancelled or Close is
// called, writing each queued packet to the socket in order.
func (h *Handle) Run(ctx context.Context) {
	for {
		select {
		case req := <-h.txQueue:
			h.write(req)
		case <-h.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handle) write(req txRequest) {
	addr := &net.UDPAddr{IP: req.dst.AsSlice()}
	if h.pconn6 != nil {
		h.pconn6.WriteTo(req.raw, nil, addr)
		return
	}
	h.pconn.WriteTo(req.raw, nil, addr)
}

// Close stops the transmit task and drains any in-flight packets.
func (h *Handle) Close() error {
	close(h.done)
	for drained := false; !drained; {
		select {
		case req := <-h.txQueue:
			h.write(req)
		default:
			drained = true
		}
	}
	if h.pconn6 != nil {
		return h.pconn6.Close()
	}
	return h.pconn.Close()
}
