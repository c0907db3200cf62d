// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ospf

import (
	"net/netip"

	"github.com/polyd/polyd/linkstate"
)

// NetworkType distinguishes the OSPF interface network types that gate
// which ISM table and election behavior apply.
type NetworkType int

const (
	NetworkBroadcast NetworkType = iota
	NetworkPointToPoint
)

// Interface is one OSPF interface: ISM state, the neighbor table, and
// this segment's DR/BDR election state.
type Interface struct {
	Name        string
	Network     NetworkType
	RouterID    netip.Addr
	Priority    uint8
	IfAddr      netip.Addr
	Cost        uint16

	// KeychainName names the keychain registered in the instance's
	// internal/instance.Shared.Keychains used to authenticate Hellos and
	// LSAs received on this interface when AuType is AuTypeCrypto. Empty
	// means no crypto authentication is configured.
	KeychainName string

	ism *linkstate.FSM[linkstate.ISMState, linkstate.ISMEvent]

	Neighbors map[netip.Addr]*Neighbor

	DR  netip.Addr
	BDR netip.Addr
}

// NewInterface builds an Interface in ISM state Down.
func NewInterface(name string, network NetworkType, routerID netip.Addr) *Interface {
	netType := linkstate.NetworkBroadcast
	if network == NetworkPointToPoint {
		netType = linkstate.NetworkPointToPoint
	}
	return &Interface{
		Name:      name,
		Network:   network,
		RouterID:  routerID,
		Neighbors: make(map[netip.Addr]*Neighbor),
		ism:       linkstate.NewISM(netType),
	}
}

// ISMState returns the interface's current ISM state.
func (i *Interface) ISMState() linkstate.ISMState { return i.ism.State() }

// Up fires InterfaceUp; on broadcast networks this enters Waiting, which
// the caller must follow with a wait-timer and then RunElection.
func (i *Interface) Up() error { return i.ism.Fire(linkstate.ISMEventInterfaceUp) }

// Down fires InterfaceDown.
func (i *Interface) Down() error { return i.ism.Fire(linkstate.ISMEventInterfaceDown) }

// Neighbor returns (creating if absent) the neighbor record for a
// router-id.
func (i *Interface) Neighbor(routerID netip.Addr) *Neighbor {
	if n, ok := i.Neighbors[routerID]; ok {
		return n
	}
	n := NewNeighbor(routerID)
	i.Neighbors[routerID] = n
	return n
}

// RunElection runs DR/BDR election over this interface's eligible
// neighbors plus self (if this router's own priority is non-zero), per
// §4.3, and applies the result to the ISM via linkstate.ApplyElection.
// Returns whether the result differs from the interface's previously
// recorded DR/BDR (the caller uses this to decide whether to
// originate/flush a Network-LSA and re-examine adjacency need).
func (i *Interface) RunElection() (changed bool) {
	var candidates []linkstate.Candidate
	if i.Priority != 0 {
		candidates = append(candidates, linkstate.Candidate{
			RouterID: i.RouterID, Priority: i.Priority, IsSelf: true, IfAddr: i.IfAddr,
			DeclaredDR: i.DR, DeclaredBDR: i.BDR,
		})
	}
	for _, n := range i.Neighbors {
		if c, ok := n.AsCandidate(n.RouterID); ok {
			candidates = append(candidates, c)
		}
	}

	result := linkstate.RunElection(candidates)
	changed = result.DR != i.DR || result.BDR != i.BDR
	i.DR, i.BDR = result.DR, result.BDR

	selfIsDR := i.Priority != 0 && i.IfAddr == result.DR
	selfIsBDR := i.Priority != 0 && i.IfAddr == result.BDR
	if i.ism.State() >= linkstate.ISMWaiting {
		linkstate.ApplyElection(i.ism, selfIsDR, selfIsBDR)
	}
	return changed
}
