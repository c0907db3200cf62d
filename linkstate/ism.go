// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package linkstate

// ISMState is the interface state machine's state set, per §4.3. IS-IS
// uses the reduced subset {Down, Loopback, PointToPoint} (no
// DR/Backup waiting); OSPF broadcast/NBMA interfaces use the full set.
type ISMState int

const (
	ISMDown ISMState = iota
	ISMLoopback
	ISMWaiting
	ISMPointToPoint
	ISMDrOther
	ISMBackup
	ISMDr
)

func (s ISMState) String() string {
	switch s {
	case ISMDown:
		return "down"
	case ISMLoopback:
		return "loopback"
	case ISMWaiting:
		return "waiting"
	case ISMPointToPoint:
		return "point-to-point"
	case ISMDrOther:
		return "dr-other"
	case ISMBackup:
		return "backup"
	case ISMDr:
		return "dr"
	default:
		return "unknown"
	}
}

// ISMEvent is the interface state machine's event set.
type ISMEvent int

const (
	ISMEventInterfaceUp ISMEvent = iota
	ISMEventWaitTimer
	ISMEventBackupSeen
	ISMEventNbrChange
	ISMEventLoopInd
	ISMEventUnloopInd
	ISMEventInterfaceDown
)

// ISMNetworkType distinguishes broadcast/NBMA interfaces (which use DR
// election and the Waiting state) from point-to-point and loopback
// interfaces (which skip straight to PointToPoint/Loopback on
// InterfaceUp).
type ISMNetworkType int

const (
	NetworkBroadcast ISMNetworkType = iota
	NetworkPointToPoint
	NetworkLoopback
)

// NewISM builds the interface state machine for the given network type.
// Multicast group membership changes (join AllSpfRtrs on entry to
// Waiting or above; join AllDrRtrs on entry to Dr or Backup; leave
// symmetrically on exit) are the caller's responsibility, driven off
// State() before/after each Fire — the FSM only tracks state, since
// group membership is an internal/netio concern (§4.3, §9).
func NewISM(network ISMNetworkType) *FSM[ISMState, ISMEvent] {
	switch network {
	case NetworkPointToPoint:
		return NewFSM(ISMDown, []Transition[ISMState, ISMEvent]{
			{From: ISMDown, Event: ISMEventInterfaceUp, To: ISMPointToPoint},
			{From: ISMPointToPoint, Event: ISMEventLoopInd, To: ISMLoopback},
			{From: ISMLoopback, Event: ISMEventUnloopInd, To: ISMDown},
			{From: ISMPointToPoint, Event: ISMEventInterfaceDown, To: ISMDown},
			{From: ISMLoopback, Event: ISMEventInterfaceDown, To: ISMDown},
		})
	case NetworkLoopback:
		return NewFSM(ISMDown, []Transition[ISMState, ISMEvent]{
			{From: ISMDown, Event: ISMEventInterfaceUp, To: ISMLoopback},
			{From: ISMLoopback, Event: ISMEventInterfaceDown, To: ISMDown},
		})
	default: // NetworkBroadcast
		allDown := []Transition[ISMState, ISMEvent]{}
		for _, s := range []ISMState{ISMDown, ISMWaiting, ISMDrOther, ISMBackup, ISMDr} {
			allDown = append(allDown, Transition[ISMState, ISMEvent]{From: s, Event: ISMEventInterfaceDown, To: ISMDown})
			allDown = append(allDown, Transition[ISMState, ISMEvent]{From: s, Event: ISMEventLoopInd, To: ISMLoopback})
		}
		return NewFSM(ISMDown, append(allDown, []Transition[ISMState, ISMEvent]{
			{From: ISMDown, Event: ISMEventInterfaceUp, To: ISMWaiting},
			{From: ISMLoopback, Event: ISMEventUnloopInd, To: ISMDown},
			// Elected/DrOther is decided by RunElection and applied by
			// the caller via ApplyElection below, not by WaitTimer/
			// BackupSeen/NbrChange transitions directly: those events
			// trigger a re-election whose outcome determines the target
			// state, which a table-driven FSM without election context
			// cannot express. Callers fire these three as triggers, call
			// RunElection, then ApplyElection.
		}...))
	}
}

// ApplyElection transitions a broadcast-network ISM out of Waiting (or
// between DR/Backup/DrOther) once a DR election result is known. It is
// the broadcast-network counterpart to the table-driven transitions
// above, which cannot encode "the next state depends on election output"
// directly.
func ApplyElection(fsm *FSM[ISMState, ISMEvent], selfIsDR, selfIsBackup bool) {
	switch {
	case selfIsDR:
		fsm.state = ISMDr
	case selfIsBackup:
		fsm.state = ISMBackup
	default:
		fsm.state = ISMDrOther
	}
}

// MulticastGroups returns which all-routers/all-DR-routers multicast
// groups an interface in state s should have joined, per §4.3.
func MulticastGroups(s ISMState) (allSPFRouters, allDRouters bool) {
	allSPFRouters = s >= ISMWaiting
	allDRouters = s == ISMDr || s == ISMBackup
	return
}
