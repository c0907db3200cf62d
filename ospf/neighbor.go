// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ospf implements the OSPFv2/OSPFv3 protocol instance: the
// neighbor FSM, DR/BDR election wiring over linkstate's shared election
// algorithm, and the instance runtime template.
package ospf

import (
	"net/netip"

	"github.com/polyd/polyd/internal/wire"
	"github.com/polyd/polyd/linkstate"
)

// NeighborState is the OSPF neighbor FSM's state set, per §4.3.
type NeighborState int

const (
	NbrDown NeighborState = iota
	NbrAttempt
	NbrInit
	NbrTwoWay
	NbrExStart
	NbrExchange
	NbrLoading
	NbrFull
)

func (s NeighborState) String() string {
	switch s {
	case NbrDown:
		return "down"
	case NbrAttempt:
		return "attempt"
	case NbrInit:
		return "init"
	case NbrTwoWay:
		return "two-way"
	case NbrExStart:
		return "ex-start"
	case NbrExchange:
		return "exchange"
	case NbrLoading:
		return "loading"
	case NbrFull:
		return "full"
	default:
		return "unknown"
	}
}

// NeighborEvent is the OSPF neighbor FSM's event set.
type NeighborEvent int

const (
	EventHelloRcvd NeighborEvent = iota
	EventStart
	EventTwoWayRcvd
	EventNegotiationDone
	EventExchangeDone
	EventLoadingDone
	EventAdjOK
	EventSeqNumberMismatch
	EventBadLSReq
	EventKillNbr
	EventInactivityTimer
	EventOneWayRcvd
)

// Neighbor is one OSPF neighbor record per §4.3: FSM state, identity, DD
// sequencing state, and the master/slave role negotiated in ExStart.
type Neighbor struct {
	fsm *linkstate.FSM[NeighborState, NeighborEvent]

	RouterID   netip.Addr
	SourceAddr netip.Addr
	Priority   uint8
	DeclaredDR netip.Addr
	DeclaredBDR netip.Addr

	DDSequence uint32
	IsMaster   bool

	FullCount int // counts transitions into/out of Full, for AdjUp metrics

	// authSeq enforces strictly increasing crypto auth sequence numbers
	// per §4.4(d) across Hellos/LSAs received from this neighbor.
	authSeq wire.StrictChecker
}

// NewNeighbor builds the Down-state OSPF neighbor FSM of §4.3.
func NewNeighbor(routerID netip.Addr) *Neighbor {
	n := &Neighbor{RouterID: routerID}
	n.fsm = linkstate.NewFSM(NbrDown, []linkstate.Transition[NeighborState, NeighborEvent]{
		{From: NbrDown, Event: EventStart, To: NbrAttempt},
		{From: NbrDown, Event: EventHelloRcvd, To: NbrInit},
		{From: NbrAttempt, Event: EventHelloRcvd, To: NbrInit},
		{From: NbrInit, Event: EventHelloRcvd, To: NbrInit},
		{From: NbrInit, Event: EventTwoWayRcvd, To: NbrTwoWay},
		{From: NbrInit, Event: EventOneWayRcvd, To: NbrInit},
		{From: NbrTwoWay, Event: EventTwoWayRcvd, To: NbrTwoWay},
		{From: NbrTwoWay, Event: EventAdjOK, To: NbrExStart},
		{From: NbrTwoWay, Event: EventOneWayRcvd, To: NbrInit},
		{From: NbrExStart, Event: EventNegotiationDone, To: NbrExchange},
		{From: NbrExchange, Event: EventExchangeDone, To: NbrLoading},
		{From: NbrExchange, Event: EventSeqNumberMismatch, To: NbrExStart},
		{From: NbrExchange, Event: EventBadLSReq, To: NbrExStart},
		{From: NbrLoading, Event: EventLoadingDone, To: NbrFull, Action: n.countChange},
		{From: NbrLoading, Event: EventSeqNumberMismatch, To: NbrExStart},
		{From: NbrLoading, Event: EventBadLSReq, To: NbrExStart},
		{From: NbrFull, Event: EventAdjOK, To: NbrFull},
		{From: NbrFull, Event: EventSeqNumberMismatch, To: NbrExStart, Action: n.countChange},
		{From: NbrFull, Event: EventBadLSReq, To: NbrExStart, Action: n.countChange},
		{From: NbrFull, Event: EventOneWayRcvd, To: NbrInit, Action: n.countChange},
		// KillNbr and InactivityTimer drop straight to Down from any state;
		// registered in an init loop below since every up-state shares the
		// same target.
	})
	for _, s := range []NeighborState{NbrAttempt, NbrInit, NbrTwoWay, NbrExStart, NbrExchange, NbrLoading, NbrFull} {
		action := n.noop
		if s == NbrFull {
			action = n.countChange
		}
		n.addDownTransition(s, EventKillNbr, action)
		n.addDownTransition(s, EventInactivityTimer, action)
	}
	return n
}

// addDownTransition is a construction-time helper since NewFSM takes its
// whole table at once; called only from NewNeighbor before the FSM is
// exposed to callers, so mutating the table directly (rather than via
// Fire) cannot race.
func (n *Neighbor) addDownTransition(from NeighborState, event NeighborEvent, action func() error) {
	n.fsm.AddTransition(linkstate.Transition[NeighborState, NeighborEvent]{From: from, Event: event, To: NbrDown, Action: action})
}

func (n *Neighbor) countChange() error { n.FullCount++; return nil }
func (n *Neighbor) noop() error        { return nil }

// State returns the neighbor's current FSM state.
func (n *Neighbor) State() NeighborState { return n.fsm.State() }

// Fire applies event to the neighbor FSM.
func (n *Neighbor) Fire(event NeighborEvent) error { return n.fsm.Fire(event) }

// AsCandidate renders this neighbor as a linkstate.Candidate for DR
// election, eligible only when it has reached at least TwoWay and its
// priority is non-zero, per §4.3.
func (n *Neighbor) AsCandidate(ifAddr netip.Addr) (linkstate.Candidate, bool) {
	if n.Priority == 0 || n.fsm.State() < NbrTwoWay {
		return linkstate.Candidate{}, false
	}
	return linkstate.Candidate{
		RouterID:    n.RouterID,
		Priority:    n.Priority,
		IfAddr:      ifAddr,
		DeclaredDR:  n.DeclaredDR,
		DeclaredBDR: n.DeclaredBDR,
	}, true
}
