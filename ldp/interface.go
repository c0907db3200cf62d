// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ldp

import "net/netip"

// Interface is one LDP-enabled link: it sends/receives link Hellos (the
// UDP multicast discovery mechanism of RFC 5036 §2.4.1) and, once a Hello
// is matched to a neighbor's LSR-ID, hands off to that neighbor's TCP
// session FSM.
type Interface struct {
	Name    string
	IfAddr  netip.Addr
	HelloInterval uint16
	HoldTime      uint16
}

// NewInterface returns an LDP interface with the given discovery timers.
func NewInterface(name string, ifAddr netip.Addr, helloInterval, holdTime uint16) *Interface {
	return &Interface{Name: name, IfAddr: ifAddr, HelloInterval: helloInterval, HoldTime: holdTime}
}
