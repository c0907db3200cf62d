// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package instance

import "context"

// Mailbox is the generic three-tier channel bundle of §4.2: bounded
// channels for high-rate classes (received packets, adjacency/hold
// timers) and a larger-buffered channel for internal one-shot events
// whose production is naturally bounded by the state machines that emit
// them (reorigination, flooding, SPF delay transitions).
//
// P, T, and I are left as `any` rather than parameterized per-protocol
// message enums, since Go has no sum types; each protocol package defines
// its own concrete message types and instantiates Mailbox[ProtoPacket,
// ProtoTimer, ProtoInternal] for them.
type Mailbox[P, T, I any] struct {
	Packets  chan P
	Timers   chan T
	Internal chan I
}

// NewMailbox returns a Mailbox with the given channel capacities.
// packetCap and timerCap should be small and bounded (the instance must
// apply backpressure or drop under a receive storm); internalCap is
// sized generously since internal events are rate-limited by the FSMs
// that produce them, not by an external sender.
func NewMailbox[P, T, I any](packetCap, timerCap, internalCap int) *Mailbox[P, T, I] {
	return &Mailbox[P, T, I]{
		Packets:  make(chan P, packetCap),
		Timers:   make(chan T, timerCap),
		Internal: make(chan I, internalCap),
	}
}

// Run services the mailbox until ctx is cancelled, invoking exactly one
// of onPacket, onTimer, or onInternal per iteration. Channels are
// serviced with biased preference: a pending packet is always handled
// before a pending timer, and a pending timer before a pending internal
// event, so that packet reception stays live under bursty internal work.
// The bias is enforced with a non-blocking drain pass ahead of the
// blocking select, since Go's select has no native priority ordering.
func (m *Mailbox[P, T, I]) Run(ctx context.Context, onPacket func(P), onTimer func(T), onInternal func(I)) {
	for {
		select {
		case p := <-m.Packets:
			onPacket(p)
			continue
		default:
		}
		select {
		case p := <-m.Packets:
			onPacket(p)
			continue
		case t := <-m.Timers:
			onTimer(t)
			continue
		default:
		}
		select {
		case p := <-m.Packets:
			onPacket(p)
		case t := <-m.Timers:
			onTimer(t)
		case i := <-m.Internal:
			onInternal(i)
		case <-ctx.Done():
			return
		}
	}
}
