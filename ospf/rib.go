// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ospf

import (
	"net/netip"

	"github.com/polyd/polyd/linkstate"
)

// RouteInstall and RouteUninstall are the southbound route messages SPF
// emits at the end of a pass, per §4.3 ("route installation is deferred
// to the end of the SPF pass... emit install/uninstall only for changed
// tuples").
type RouteInstall struct {
	Prefix  netip.Prefix
	Route   linkstate.Route
	Nexthops []netip.Addr
}

type RouteUninstall struct {
	Prefix netip.Prefix
}

// RIB holds the instance's computed routing table, keyed by destination
// prefix. It is rebuilt side-by-side on every SPF pass (full or partial)
// and diffed against the previous RIB to produce the southbound
// install/uninstall messages, per §4.3.
type RIB struct {
	routes map[netip.Prefix]ribEntry
}

type ribEntry struct {
	route    linkstate.Route
	nexthops []netip.Addr
}

// NewRIB returns an empty RIB.
func NewRIB() *RIB { return &RIB{routes: make(map[netip.Prefix]ribEntry)} }

// ExternalCandidate is one AS-External-LSA's contribution to a
// destination prefix's route, after combining its advertised metric with
// the advertising ASBR's already-known intra/inter-area cost (a full SPF
// run computes asbrCost from the link-state graph; a partial run on an
// external-only change reuses the previously computed asbrCost, which is
// exactly what makes it partial).
type ExternalCandidate struct {
	Prefix          netip.Prefix
	Type2           bool
	Metric          uint32 // type-1: combined cost; type-2: the LSA's own metric
	ASBRCost        uint32
	NonBackboneASBR bool
	Nexthop         netip.Addr
}

// ApplyExternal recomputes the route for one external prefix and returns
// the southbound message to emit, if the best route changed. A nil,nil
// result means the existing route is unaffected (no southbound traffic),
// matching §8 scenario 3's "no other traffic" requirement for a partial
// SPF run that only touches one prefix.
func (r *RIB) ApplyExternal(c ExternalCandidate) (install *RouteInstall, uninstall *RouteUninstall) {
	route := linkstate.Route{
		Type:            linkstate.PathType1External,
		Metric:          c.Metric,
		ASBRCost:        c.ASBRCost,
		NonBackboneASBR: c.NonBackboneASBR,
	}
	if c.Type2 {
		route.Type = linkstate.PathType2External
		route.Type2Metric = c.Metric
	}

	existing, had := r.routes[c.Prefix]
	if had && existing.route.Tie(route) {
		// Equally preferred: ECMP-merge the nexthop if not already present.
		for _, nh := range existing.nexthops {
			if nh == c.Nexthop {
				return nil, nil
			}
		}
		existing.nexthops = append(existing.nexthops, c.Nexthop)
		r.routes[c.Prefix] = existing
		return &RouteInstall{Prefix: c.Prefix, Route: existing.route, Nexthops: existing.nexthops}, nil
	}
	if had && existing.route.Less(route) {
		// The stored route is strictly preferred; the arriving candidate
		// changes nothing.
		return nil, nil
	}

	r.routes[c.Prefix] = ribEntry{route: route, nexthops: []netip.Addr{c.Nexthop}}
	return &RouteInstall{Prefix: c.Prefix, Route: route, Nexthops: []netip.Addr{c.Nexthop}}, nil
}

// Get returns the currently installed route for a prefix, if any.
func (r *RIB) Get(prefix netip.Prefix) (linkstate.Route, []netip.Addr, bool) {
	e, ok := r.routes[prefix]
	return e.route, e.nexthops, ok
}
