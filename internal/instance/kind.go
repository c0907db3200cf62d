// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package instance provides the protocol-agnostic runtime template of
// §4.2: a biased multi-channel event loop, boot-counter persistence, the
// activation predicate, and the shared data every protocol instance
// (IS-IS, OSPFv2, OSPFv3, LDP, BGP) is constructed with.
package instance

// Kind identifies which routing protocol an instance runs.
type Kind int

const (
	KindISIS Kind = iota
	KindOSPFv2
	KindOSPFv3
	KindLDP
	KindBGP
)

func (k Kind) String() string {
	switch k {
	case KindISIS:
		return "isis"
	case KindOSPFv2:
		return "ospfv2"
	case KindOSPFv3:
		return "ospfv3"
	case KindLDP:
		return "ldp"
	case KindBGP:
		return "bgp"
	default:
		return "unknown"
	}
}
