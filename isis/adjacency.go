// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package isis implements the IS-IS protocol instance: the adjacency FSM,
// the interface state machine (shared machinery from package linkstate),
// and the instance runtime template from internal/instance.
package isis

import (
	"net/netip"
	"time"

	"github.com/polyd/polyd/internal/wire"
	"github.com/polyd/polyd/linkstate"
)

// AdjState is the IS-IS adjacency FSM's state set, per §4.3: a reduced,
// three-state variant of the OSPF neighbor FSM (no ExStart/Exchange/
// Loading — LSDB synchronization on a running adjacency is driven by
// CSNP/PSNP, not by the adjacency FSM itself).
type AdjState int

const (
	AdjDown AdjState = iota
	AdjInitializing
	AdjUp
)

func (s AdjState) String() string {
	switch s {
	case AdjDown:
		return "down"
	case AdjInitializing:
		return "initializing"
	case AdjUp:
		return "up"
	default:
		return "unknown"
	}
}

// AdjEvent is the IS-IS adjacency FSM's event set.
type AdjEvent int

const (
	AdjEventHelloRcvd AdjEvent = iota
	AdjEventHoldTimer
	AdjEventLinkDown
	AdjEventKill
)

// LevelUsage is a bitset of which IS-IS levels an adjacency is used for
// (L1, L2, or both on a L1L2 circuit).
type LevelUsage uint8

const (
	LevelL1 LevelUsage = 1 << 0
	LevelL2 LevelUsage = 1 << 1
)

// Adjacency is one IS-IS neighbor relationship on a circuit: FSM state,
// identity, and the hold-timer bookkeeping the runtime's mailbox arms and
// cancels.
type Adjacency struct {
	fsm *linkstate.FSM[AdjState, AdjEvent]

	SystemID   [6]byte
	SourceAddr netip.Addr
	Levels     LevelUsage
	HoldTime   time.Duration
	Priority   uint8

	// lastHelloAt is used by the caller to compute "hold timer remaining"
	// for introspection/testing (§8 scenario 1); the actual hold-timer
	// expiry is owned by the instance's mailbox, not by Adjacency itself,
	// per §5's timer-ownership rule.
	lastHelloAt time.Time

	// AdjacencyChanges counts Down<->Up transitions, per §8 scenario 1's
	// adjacency_changes counter.
	AdjacencyChanges int

	// authSeq enforces strictly increasing authentication sequence
	// numbers per §4.4(d) across this adjacency's received Hellos.
	authSeq wire.StrictChecker
}

// NewAdjacency builds the Down-state adjacency FSM of §4.3: HelloRcvd
// advances Down->Initializing->Up; HoldTimer, LinkDown, and Kill all drop
// straight back to Down from any up-state.
func NewAdjacency(systemID [6]byte) *Adjacency {
	a := &Adjacency{SystemID: systemID}
	a.fsm = linkstate.NewFSM(AdjDown, []linkstate.Transition[AdjState, AdjEvent]{
		{From: AdjDown, Event: AdjEventHelloRcvd, To: AdjInitializing},
		{From: AdjInitializing, Event: AdjEventHelloRcvd, To: AdjUp, Action: a.countChange},
		{From: AdjUp, Event: AdjEventHelloRcvd, To: AdjUp},
		{From: AdjInitializing, Event: AdjEventHoldTimer, To: AdjDown},
		{From: AdjUp, Event: AdjEventHoldTimer, To: AdjDown, Action: a.countChange},
		{From: AdjInitializing, Event: AdjEventLinkDown, To: AdjDown},
		{From: AdjUp, Event: AdjEventLinkDown, To: AdjDown, Action: a.countChange},
		{From: AdjInitializing, Event: AdjEventKill, To: AdjDown},
		{From: AdjUp, Event: AdjEventKill, To: AdjDown, Action: a.countChange},
	})
	return a
}

// countChange increments AdjacencyChanges: only transitions into or out of
// Up count, per §8 scenario 1 ("adjacency_changes == 1" after a single
// Down->Initializing->Up climb, not 2).
func (a *Adjacency) countChange() error {
	a.AdjacencyChanges++
	return nil
}

// State returns the adjacency's current FSM state.
func (a *Adjacency) State() AdjState { return a.fsm.State() }

// ReceiveHello fires AdjEventHelloRcvd and records the receipt time for
// HoldRemaining.
func (a *Adjacency) ReceiveHello(now time.Time, holdTime time.Duration) error {
	a.HoldTime = holdTime
	a.lastHelloAt = now
	return a.fsm.Fire(AdjEventHelloRcvd)
}

// HoldTimerExpire fires AdjEventHoldTimer.
func (a *Adjacency) HoldTimerExpire() error { return a.fsm.Fire(AdjEventHoldTimer) }

// HoldRemaining returns the time remaining before the hold timer armed at
// the last received hello would expire, as of now.
func (a *Adjacency) HoldRemaining(now time.Time) time.Duration {
	deadline := a.lastHelloAt.Add(a.HoldTime)
	if now.After(deadline) {
		return 0
	}
	return deadline.Sub(now)
}
