// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ldp

import (
	"context"
	"net/netip"

	"go.uber.org/zap"

	"github.com/polyd/polyd/internal/instance"
	"github.com/polyd/polyd/internal/log"
)

// PacketMsg is one received LDP PDU, either a link Hello (UDP) or a
// session message (TCP), handed to the instance mailbox by an
// interface's or neighbor's rx task.
type PacketMsg struct {
	IfName string
	LSRID  [4]byte // zero for link Hellos not yet matched to a neighbor
	Raw    []byte
}

// TimerMsg is a fired per-neighbor session or per-interface discovery
// timer.
type TimerMsg struct {
	IfName string
	LSRID  [4]byte
	Kind   TimerKind
}

// TimerKind distinguishes which LDP timer fired.
type TimerKind int

const (
	TimerHelloHold TimerKind = iota
	TimerKeepaliveHold
	TimerKeepaliveSend
)

// InternalMsg carries label-binding/FEC work generated by the instance's
// own label allocator rather than by the wire.
type InternalMsg struct {
	Kind InternalKind
}

// InternalKind distinguishes internal-bus message types.
type InternalKind int

const (
	InternalAdvertiseLabel InternalKind = iota
	InternalWithdrawLabel
)

// Config is the per-instance LDP configuration view.
type Config struct {
	Enabled bool
	LSRID   netip.Addr
}

// Instance is one LDP protocol instance, built on the generic runtime
// template of §4.2, analogous in shape to isis.Instance/ospf.Instance
// even though LDP has no link-state core: its "topology" is a flat set
// of independently established neighbor sessions.
type Instance struct {
	Name   string
	Shared *instance.Shared
	Config Config

	Interfaces map[string]*Interface
	Neighbors  map[[4]byte]*Neighbor

	mailbox    *instance.Mailbox[PacketMsg, TimerMsg, InternalMsg]
	controller *instance.Controller

	log log.Logger
}

// NewInstance constructs an LDP instance in the inactive state.
func NewInstance(name string, shared *instance.Shared) *Instance {
	inst := &Instance{
		Name:       name,
		Shared:     shared,
		Interfaces: make(map[string]*Interface),
		Neighbors:  make(map[[4]byte]*Neighbor),
		mailbox:    instance.NewMailbox[PacketMsg, TimerMsg, InternalMsg](256, 64, 16),
		log:        shared.Log,
	}
	inst.controller = instance.NewController(inst.start, inst.stop)
	return inst
}

func (inst *Instance) start() error {
	count, err := instance.NextBootCount(inst.Shared.Store, instance.KindLDP, inst.Name)
	if err != nil {
		inst.log.Error("boot count update failed", zap.Error(err))
	}
	inst.log.Info("ldp instance activated", zap.String("name", inst.Name), zap.Uint64("boot_count", count))
	return nil
}

func (inst *Instance) stop(reason instance.StopReason) {
	inst.log.Info("ldp instance deactivated", zap.String("name", inst.Name), zap.String("reason", reason.String()))
}

// Readiness derives the instance's activation predicate per §4.2: enabled
// and a usable LSR-ID (LDP has no separate protocol-readiness gate beyond
// that, unlike IS-IS's area-id or OSPF's area config).
func (inst *Instance) Readiness() instance.Readiness {
	return instance.Readiness{
		Enabled:       inst.Config.Enabled,
		RouterID:      inst.Config.LSRID,
		ProtocolReady: true,
	}
}

// Update runs the activation predicate's idempotent start/stop step.
func (inst *Instance) Update() error { return inst.controller.Update(inst.Readiness()) }

// Run drives the instance's biased-select event loop until ctx is
// cancelled.
func (inst *Instance) Run(ctx context.Context) {
	inst.mailbox.Run(ctx, inst.handlePacket, inst.handleTimer, inst.handleInternal)
}

func (inst *Instance) handlePacket(msg PacketMsg) {
	if msg.LSRID == ([4]byte{}) {
		// An unmatched link Hello: MatchedAdjacency fires once the Hello's
		// transport address and the interface it arrived on are resolved to
		// a neighbor, creating the Neighbor the first time through.
		return
	}
	n, ok := inst.Neighbors[msg.LSRID]
	if !ok {
		return
	}
	_ = n
	// Session messages (Init/Keepalive/Notification/Label Mapping) are not
	// decoded here and do not drive the neighbor FSM; the message codec is
	// ldp/packet and the FSM transitions are unit-tested in ldp_test.go.
}

func (inst *Instance) handleTimer(msg TimerMsg) {
	n, ok := inst.Neighbors[msg.LSRID]
	if !ok {
		return
	}
	switch msg.Kind {
	case TimerKeepaliveHold:
		if err := n.Fire(EventConnectionDown); err != nil {
			inst.log.Debug("neighbor keepalive hold timer fsm event ignored", zap.Error(err))
		}
	}
}

func (inst *Instance) handleInternal(msg InternalMsg) {
	switch msg.Kind {
	case InternalAdvertiseLabel, InternalWithdrawLabel:
		// Label-FEC binding advertisement dispatches into the session's
		// Label Mapping/Withdraw message encoder (ldp/packet) once a
		// neighbor reaches Operational.
	}
}

// PacketChan, TimerChan, InternalChan expose the mailbox's send sides.
func (inst *Instance) PacketChan() chan<- PacketMsg     { return inst.mailbox.Packets }
func (inst *Instance) TimerChan() chan<- TimerMsg       { return inst.mailbox.Timers }
func (inst *Instance) InternalChan() chan<- InternalMsg { return inst.mailbox.Internal }
