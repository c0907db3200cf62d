// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package isis

import (
	"net/netip"

	"github.com/polyd/polyd/linkstate"
)

// CircuitType distinguishes broadcast (LAN) circuits, which elect a DIS,
// from point-to-point circuits, which do not.
type CircuitType int

const (
	CircuitBroadcast CircuitType = iota
	CircuitPointToPoint
)

// Interface is one IS-IS circuit: its ISM (reusing linkstate's generic
// table-driven FSM, instantiated as point-to-point or loopback per §4.3 —
// IS-IS's "reduced variant" drops the broadcast Waiting/Backup states,
// since LAN circuits elect only a DIS, never a backup), its adjacency
// table, and DIS election state.
type Interface struct {
	Name        string
	CircuitType CircuitType
	SystemID    [6]byte
	Priority    uint8
	IfAddr      netip.Addr

	// KeychainName names the keychain registered in the instance's
	// internal/instance.Shared.Keychains used to authenticate Hellos
	// received on this circuit. Empty means no authentication is
	// required, per §4.4's AuthNull default.
	KeychainName string

	ism *linkstate.FSM[linkstate.ISMState, linkstate.ISMEvent]

	Adjacencies map[[6]byte]*Adjacency

	// DIS is the interface address of the elected designated intermediate system
	// on a broadcast circuit; the zero Addr means none is yet elected.
	DIS netip.Addr
}

// NewInterface builds an Interface in ISM state Down. Broadcast circuits
// use linkstate's point-to-point table, without the Waiting wait-timer
// step (IS-IS DIS election is not gated on a wait timer the way OSPF's
// is), so every circuit moves between Down and PointToPoint.
// RunDISElection records the elected DIS in DIS and does not change the
// ISM state.
func NewInterface(name string, circuitType CircuitType, systemID [6]byte) *Interface {
	return &Interface{
		Name:        name,
		CircuitType: circuitType,
		SystemID:    systemID,
		Adjacencies: make(map[[6]byte]*Adjacency),
		ism:         linkstate.NewISM(linkstate.NetworkPointToPoint),
	}
}

// ISMState returns the interface's current ISM state.
func (i *Interface) ISMState() linkstate.ISMState { return i.ism.State() }

// Up fires InterfaceUp.
func (i *Interface) Up() error { return i.ism.Fire(linkstate.ISMEventInterfaceUp) }

// Down fires InterfaceDown.
func (i *Interface) Down() error { return i.ism.Fire(linkstate.ISMEventInterfaceDown) }

// Adjacency returns (creating if absent) the adjacency record for a
// neighbor system-id.
func (i *Interface) Adjacency(systemID [6]byte) *Adjacency {
	if a, ok := i.Adjacencies[systemID]; ok {
		return a
	}
	a := NewAdjacency(systemID)
	i.Adjacencies[systemID] = a
	return a
}

// RunDISElection runs the deterministic election of §4.3 over this
// circuit's up adjacencies plus self, and records the result in i.DIS. IS-IS
// has no backup DIS, so only the DR half of linkstate's result is used.
func (i *Interface) RunDISElection(self linkstate.Candidate, neighbors []linkstate.Candidate) netip.Addr {
	candidates := append([]linkstate.Candidate{self}, neighbors...)
	result := linkstate.RunElection(candidates)
	i.DIS = result.DR
	return i.DIS
}
