// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package southbound defines the single typed message set the core
// exchanges with the kernel/forwarder collaborator, which spec.md's §1
// Non-goals put out of scope: "concrete southbound kernel/forwarder
// bindings... treated as a mailbox with a typed message set." Each
// Message carries the Protocol that produced it. No protocol instance
// package (isis/ospf/ldp/bgp) sends on this mailbox.
package southbound

import "net/netip"

// Kind discriminates a Message's payload. Go has no sum types, so the
// sealed-union shape each protocol instance's own PacketMsg/TimerMsg/
// InternalMsg already use (a Kind enum alongside the fields relevant to
// it) is reused here at the cross-protocol boundary instead of an
// interface with type-switches, per the "sum-typed messages over dynamic
// dispatch" design note.
type Kind int

const (
	KindRouteInstall Kind = iota
	KindRouteUninstall
	KindLabelInstall
	KindLabelUninstall
	KindInterfaceSubscribe
	KindInterfaceUnsubscribe
)

// Protocol identifies which instance a message originated from or is
// addressed to, for southbound consumers that need to disambiguate
// owners of the same prefix (e.g. route preference between protocols).
type Protocol int

const (
	ProtocolISIS Protocol = iota
	ProtocolOSPFv2
	ProtocolOSPFv3
	ProtocolLDP
	ProtocolBGP
)

// Message is the single core-to-kernel message type. Only the fields
// relevant to Kind are populated; the rest are zero.
type Message struct {
	Kind     Kind
	Protocol Protocol

	Prefix   netip.Prefix
	Nexthops []netip.Addr
	Metric   uint32

	FEC      netip.Prefix
	Label    uint32

	IfName string
}

// RouteInstall builds a KindRouteInstall message.
func RouteInstall(proto Protocol, prefix netip.Prefix, metric uint32, nexthops []netip.Addr) Message {
	return Message{Kind: KindRouteInstall, Protocol: proto, Prefix: prefix, Metric: metric, Nexthops: nexthops}
}

// RouteUninstall builds a KindRouteUninstall message.
func RouteUninstall(proto Protocol, prefix netip.Prefix) Message {
	return Message{Kind: KindRouteUninstall, Protocol: proto, Prefix: prefix}
}

// LabelInstall builds a KindLabelInstall message (LDP's FEC-to-label
// binding, applied to the forwarder's label forwarding table).
func LabelInstall(fec netip.Prefix, label uint32, nexthops []netip.Addr) Message {
	return Message{Kind: KindLabelInstall, Protocol: ProtocolLDP, FEC: fec, Label: label, Nexthops: nexthops}
}

// LabelUninstall builds a KindLabelUninstall message.
func LabelUninstall(fec netip.Prefix) Message {
	return Message{Kind: KindLabelUninstall, Protocol: ProtocolLDP, FEC: fec}
}

// ConsumerKind discriminates a reverse (kernel/forwarder-to-core)
// message, the "consumer→core" half of §6's external interface.
type ConsumerKind int

const (
	ConsumerRouterIDUpdate ConsumerKind = iota
	ConsumerHostnameUpdate
	ConsumerInterfaceUp
	ConsumerInterfaceDown
	ConsumerInterfaceAddrAdd
	ConsumerInterfaceAddrDelete
)

// ConsumerMessage is the reverse direction: state the kernel/forwarder
// collaborator pushes back into the core (interface up/down, address
// changes, router-id/hostname learned from elsewhere in the system).
type ConsumerMessage struct {
	Kind   ConsumerKind
	IfName string

	RouterID netip.Addr
	Hostname string
	Addr     netip.Prefix
}

// Mailbox is the bounded channel pair every protocol instance's
// southbound-facing goroutine reads ConsumerMessage from and writes
// Message to, with the same non-blocking-send discipline as
// internal/netio.Handle: Send drops the message when the outbound channel
// is full rather than stalling the producer.
type Mailbox struct {
	Outbound chan Message
	Inbound  chan ConsumerMessage
}

// NewMailbox returns a Mailbox with the given channel capacities.
func NewMailbox(outboundCap, inboundCap int) *Mailbox {
	return &Mailbox{
		Outbound: make(chan Message, outboundCap),
		Inbound:  make(chan ConsumerMessage, inboundCap),
	}
}

// Send enqueues msg without blocking; it reports whether the message was
// accepted.
func (m *Mailbox) Send(msg Message) bool {
	select {
	case m.Outbound <- msg:
		return true
	default:
		return false
	}
}
