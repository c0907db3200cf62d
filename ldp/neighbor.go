// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ldp implements the LDP protocol instance's session
// initialization FSM, hosted on the same runtime template as isis/ospf
// (§4.2) even though LDP has no link-state core of its own.
package ldp

import (
	"net/netip"

	"github.com/polyd/polyd/linkstate"
)

// SessionState is the LDP session initialization FSM's state set, per
// §4.3.
type SessionState int

const (
	StateNonExistent SessionState = iota
	StateInitialized
	StateOpenRec
	StateOpenSent
	StateOperational
)

func (s SessionState) String() string {
	switch s {
	case StateNonExistent:
		return "non-existent"
	case StateInitialized:
		return "initialized"
	case StateOpenRec:
		return "open-rec"
	case StateOpenSent:
		return "open-sent"
	case StateOperational:
		return "operational"
	default:
		return "unknown"
	}
}

// SessionEvent is the LDP session initialization FSM's event set.
type SessionEvent int

const (
	EventMatchedAdjacency SessionEvent = iota
	EventConnectionUp
	EventInitRcvd
	EventInitSent
	EventKeepaliveRcvd
	EventConnectionDown
	EventErrorRcvd
	EventErrorSent
)

// Role is the passive/active role the session FSM derives by comparing
// transport addresses, per §4.3: the peer with the numerically higher
// transport address is active (it initiates the TCP connection and sends
// Init first); the other is passive.
type Role int

const (
	RolePassive Role = iota
	RoleActive
)

// DeriveRole compares local and remote LSR/transport addresses and
// returns which role the local session plays.
func DeriveRole(local, remote netip.Addr) Role {
	if compareAddr(local, remote) > 0 {
		return RoleActive
	}
	return RolePassive
}

func compareAddr(a, b netip.Addr) int {
	as, bs := a.As16(), b.As16()
	for i := range as {
		if as[i] != bs[i] {
			if as[i] < bs[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Neighbor is one LDP neighbor session, tracked from the moment its
// Hello-matched adjacency is discovered through Operational.
type Neighbor struct {
	fsm *linkstate.FSM[SessionState, SessionEvent]

	LSRID       netip.Addr
	Role        Role
	Transport   netip.Addr
	KeepaliveHoldTime uint16
}

// NewNeighbor builds a NonExistent-state LDP session FSM for a neighbor
// with the given role (already derived via DeriveRole by the caller once
// both transport addresses are known).
func NewNeighbor(lsrID netip.Addr, role Role) *Neighbor {
	n := &Neighbor{LSRID: lsrID, Role: role}
	n.fsm = linkstate.NewFSM(StateNonExistent, []linkstate.Transition[SessionState, SessionEvent]{
		{From: StateNonExistent, Event: EventMatchedAdjacency, To: StateInitialized},
		{From: StateInitialized, Event: EventConnectionUp, To: StateOpenSent},
		{From: StateInitialized, Event: EventInitRcvd, To: StateOpenRec},
		{From: StateOpenSent, Event: EventInitRcvd, To: StateOpenRec},
		{From: StateOpenRec, Event: EventInitSent, To: StateOpenSent},
		{From: StateOpenSent, Event: EventKeepaliveRcvd, To: StateOperational},
		{From: StateOpenRec, Event: EventKeepaliveRcvd, To: StateOperational},
	})
	for _, s := range []SessionState{StateInitialized, StateOpenRec, StateOpenSent, StateOperational} {
		n.fsm.AddTransition(linkstate.Transition[SessionState, SessionEvent]{From: s, Event: EventConnectionDown, To: StateNonExistent})
		n.fsm.AddTransition(linkstate.Transition[SessionState, SessionEvent]{From: s, Event: EventErrorRcvd, To: StateNonExistent})
		n.fsm.AddTransition(linkstate.Transition[SessionState, SessionEvent]{From: s, Event: EventErrorSent, To: StateNonExistent})
	}
	return n
}

// State returns the session's current FSM state.
func (n *Neighbor) State() SessionState { return n.fsm.State() }

// Fire applies event to the session FSM.
func (n *Neighbor) Fire(event SessionEvent) error { return n.fsm.Fire(event) }
