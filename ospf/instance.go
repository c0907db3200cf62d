// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ospf

import (
	"context"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"github.com/polyd/polyd/internal/instance"
	"github.com/polyd/polyd/internal/log"
	"github.com/polyd/polyd/linkstate"
	"github.com/polyd/polyd/ospf/packet"
)

// PacketMsg is one received OSPF packet.
type PacketMsg struct {
	IfName string
	Raw    []byte
}

// TimerMsg is a fired per-neighbor or per-interface timer.
type TimerMsg struct {
	IfName   string
	Neighbor netip.Addr
	Kind     TimerKind
}

// TimerKind distinguishes which OSPF timer fired.
type TimerKind int

const (
	TimerInactivity TimerKind = iota
	TimerHello
	TimerWait
	TimerRxmt
)

// InternalMsg carries LSDB/SPF-scheduler-originated work.
type InternalMsg struct {
	Kind InternalKind
}

// InternalKind distinguishes internal-bus message types.
type InternalKind int

const (
	InternalOriginate InternalKind = iota
	InternalRunSPF
)

// Config is the per-instance OSPF configuration view.
type Config struct {
	Enabled  bool
	RouterID netip.Addr
}

// Instance is one OSPFv2/OSPFv3 protocol instance, built on the generic
// runtime template of §4.2.
type Instance struct {
	Name   string
	Shared *instance.Shared
	Config Config

	Interfaces map[string]*Interface

	// spf schedules full/partial recomputation on topology change, shared
	// machinery from linkstate (§4.3).
	spf *linkstate.SPFScheduler

	mailbox    *instance.Mailbox[PacketMsg, TimerMsg, InternalMsg]
	controller *instance.Controller

	log log.Logger
}

// NewInstance constructs an OSPF instance in the inactive state.
func NewInstance(name string, shared *instance.Shared) *Instance {
	inst := &Instance{
		Name:       name,
		Shared:     shared,
		Interfaces: make(map[string]*Interface),
		spf: linkstate.NewSPFScheduler(linkstate.SPFDelayTimers{
			InitialDelay: 50 * time.Millisecond,
			ShortDelay:   200 * time.Millisecond,
			LongDelay:    5 * time.Second,
			HoldDown:     10 * time.Second,
			Learn:        60 * time.Second,
		}),
		mailbox: instance.NewMailbox[PacketMsg, TimerMsg, InternalMsg](256, 64, 16),
		log:     shared.Log,
	}
	inst.controller = instance.NewController(inst.start, inst.stop)
	return inst
}

func (inst *Instance) start() error {
	count, err := instance.NextBootCount(inst.Shared.Store, instance.KindOSPFv2, inst.Name)
	if err != nil {
		inst.log.Error("boot count update failed", zap.Error(err))
	}
	inst.log.Info("ospf instance activated", zap.String("name", inst.Name), zap.Uint64("boot_count", count))
	return nil
}

func (inst *Instance) stop(reason instance.StopReason) {
	inst.log.Info("ospf instance deactivated", zap.String("name", inst.Name), zap.String("reason", reason.String()))
}

// Readiness derives the instance's activation predicate per §4.2.
func (inst *Instance) Readiness() instance.Readiness {
	return instance.Readiness{
		Enabled:       inst.Config.Enabled,
		RouterID:      inst.Config.RouterID,
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
	iface, ok := inst.Interfaces[msg.IfName]
	if !ok {
		return
	}
	header, n, err := packet.DecodeHeader(msg.Raw)
	if err != nil {
		inst.log.Debug("dropping malformed packet", zap.String("if", msg.IfName), zap.Error(err))
		return
	}
	switch header.Type {
	case packet.TypeHello:
		inst.handleHello(iface, header, msg.Raw, n)
	default:
		// DD/LSRequest/LSUpdate/LSAck packets are not decoded and are
		// dropped here; they drive neither the neighbor FSM nor the LSDB.
	}
}

// handleHello decodes a Hello body, authenticates the packet against the
// interface's configured keychain when AuType is AuTypeCrypto, and on
// success drives the neighbor FSM. An authentication failure is logged
// and counted but never tears down the interface, per §7.
func (inst *Instance) handleHello(iface *Interface, header packet.Header, raw []byte, headerLen int) {
	hello, err := packet.DecodeHello(raw[headerLen:])
	if err != nil {
		inst.log.Debug("dropping malformed hello", zap.String("if", iface.Name), zap.Error(err))
		return
	}

	routerID := netip.AddrFrom4(header.RouterID)
	nbr := iface.Neighbor(routerID)
	nbr.Priority = hello.RtrPriority

	if iface.KeychainName != "" {
		kc, ok := inst.Shared.Keychains.Lookup(iface.KeychainName)
		if !ok {
			inst.log.Debug("hello rejected: keychain not found", zap.String("if", iface.Name), zap.String("keychain", iface.KeychainName))
			return
		}
		if err := nbr.VerifyPacketAuth(header, raw, kc); err != nil {
			inst.log.Debug("hello authentication failed", zap.String("if", iface.Name), zap.Error(err))
			return
		}
	}

	if err := nbr.Fire(EventHelloRcvd); err != nil {
		inst.log.Debug("neighbor hello fsm event ignored", zap.Error(err))
	}
}

func (inst *Instance) handleTimer(msg TimerMsg) {
	iface, ok := inst.Interfaces[msg.IfName]
	if !ok {
		return
	}
	switch msg.Kind {
	case TimerInactivity:
		if n, ok := iface.Neighbors[msg.Neighbor]; ok {
			if err := n.Fire(EventInactivityTimer); err != nil {
				inst.log.Debug("neighbor inactivity fsm event ignored", zap.Error(err))
			}
		}
	case TimerWait:
		iface.RunElection()
	}
}

func (inst *Instance) handleInternal(msg InternalMsg) {
	switch msg.Kind {
	case InternalOriginate:
	case InternalRunSPF:
		// Only the SPF delay-state transition runs here: no graph pass is
		// computed, the RIB (RIB.ApplyExternal) is not updated, and no
		// southbound message is emitted.
		inst.spf.Fire(linkstate.SPFEventDelayTimer)
	}
}

// PacketChan, TimerChan, InternalChan expose the mailbox's send sides.
func (inst *Instance) PacketChan() chan<- PacketMsg     { return inst.mailbox.Packets }
func (inst *Instance) TimerChan() chan<- TimerMsg       { return inst.mailbox.Timers }
func (inst *Instance) InternalChan() chan<- InternalMsg { return inst.mailbox.Internal }
