// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package instance

import "net/netip"

// StopReason enumerates why Controller.Update stopped an active instance.
type StopReason int

const (
	StopDisabled StopReason = iota
	StopNoRouterID
	StopProtocolNotReady
	StopResetting
)

func (r StopReason) String() string {
	switch r {
	case StopDisabled:
		return "disabled"
	case StopNoRouterID:
		return "no-usable-router-id"
	case StopProtocolNotReady:
		return "protocol-not-ready"
	case StopResetting:
		return "resetting"
	default:
		return "unknown"
	}
}

// Readiness is the activation predicate's input, per §4.2: configuration
// enabled, a usable router-id, and a protocol-specific readiness gate
// (e.g. IS-IS's system-id being set).
type Readiness struct {
	Enabled        bool
	RouterID       netip.Addr
	ProtocolReady  bool
}

// usableRouterID reports whether addr can serve as a router identifier:
// present, and not the zero address, a multicast address, or the
// IPv4 broadcast address.
func usableRouterID(addr netip.Addr) bool {
	if !addr.IsValid() || addr.IsUnspecified() || addr.IsMulticast() {
		return false
	}
	if addr.Is4() && addr == netip.AddrFrom4([4]byte{255, 255, 255, 255}) {
		return false
	}
	return true
}

// reason returns the StopReason for the first failing readiness gate, or
// ok=true if every gate passes.
func (r Readiness) reason() (StopReason, bool) {
	if !r.Enabled {
		return StopDisabled, false
	}
	if !usableRouterID(r.RouterID) {
		return StopNoRouterID, false
	}
	if !r.ProtocolReady {
		return StopProtocolNotReady, false
	}
	return 0, true
}

// Controller tracks one instance's active/inactive state and drives
// Start/Stop idempotently from repeated Update calls, per §4.2: "if ready
// and currently inactive -> start; if unready and currently active ->
// stop; else no-op."
type Controller struct {
	active bool
	Start  func() error
	Stop   func(reason StopReason)
}

// NewController returns a Controller beginning inactive.
func NewController(start func() error, stop func(reason StopReason)) *Controller {
	return &Controller{Start: start, Stop: stop}
}

// Active reports the controller's current state.
func (c *Controller) Active() bool { return c.active }

// Update applies the activation predicate for ready and starts or stops
// the instance as needed. It is a no-op when the transition does not
// change the active/inactive state.
func (c *Controller) Update(ready Readiness) error {
	reason, ok := ready.reason()
	switch {
	case ok && !c.active:
		if err := c.Start(); err != nil {
			return err
		}
		c.active = true
	case !ok && c.active:
		c.Stop(reason)
		c.active = false
	}
	return nil
}

// Reset stops the instance (if active, with reason=resetting) and then
// re-runs Update, per §4.2's "reset is defined as stop(resetting); update".
func (c *Controller) Reset(ready Readiness) error {
	if c.active {
		c.Stop(StopResetting)
		c.active = false
	}
	return c.Update(ready)
}
