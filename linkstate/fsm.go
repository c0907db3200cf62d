// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package linkstate implements the link-state core shared by IS-IS and
// OSPF (§4.3): the interface state machine, a generic table-driven FSM
// engine reused by every neighbor/adjacency machine (OSPF, IS-IS, and
// LDP all instantiate it with their own state/event types), the LSDB with
// its flooding and aging discipline, and the SPF delay scheduler.
package linkstate

import "fmt"

// Transition describes one (from-state, event) -> to-state move, with an
// optional action run after the state changes.
type Transition[S comparable, E comparable] struct {
	From   S
	Event  E
	To     S
	Action func() error
}

type fsmKey[S comparable, E comparable] struct {
	state S
	event E
}

// FSM is a generic table-driven finite state machine. It is instantiated
// once per protocol's neighbor/adjacency/interface state machine (OSPF
// neighbor, IS-IS adjacency, LDP neighbor, and the shared ISM below),
// giving each a uniform Fire/State surface instead of a hand-rolled
// switch statement per protocol.
type FSM[S comparable, E comparable] struct {
	state S
	table map[fsmKey[S, E]]Transition[S, E]
}

// NewFSM returns an FSM starting in initial, with the given transition
// table. Duplicate (from, event) pairs in transitions is a programmer
// error and panics at construction time, not at Fire time.
func NewFSM[S comparable, E comparable](initial S, transitions []Transition[S, E]) *FSM[S, E] {
	table := make(map[fsmKey[S, E]]Transition[S, E], len(transitions))
	for _, t := range transitions {
		key := fsmKey[S, E]{state: t.From, event: t.Event}
		if _, dup := table[key]; dup {
			panic(fmt.Sprintf("linkstate: duplicate FSM transition for state=%v event=%v", t.From, t.Event))
		}
		table[key] = t
	}
	return &FSM[S, E]{state: initial, table: table}
}

// State returns the current state.
func (f *FSM[S, E]) State() S { return f.state }

// AddTransition registers one more (from, event) -> to transition after
// construction, for callers that need to register a shared target state
// (e.g. "kill from any up-state") in a loop rather than spelling out every
// (state, event) pair in the literal passed to NewFSM. Like NewFSM, a
// duplicate (from, event) pair is a programmer error and panics.
func (f *FSM[S, E]) AddTransition(t Transition[S, E]) {
	key := fsmKey[S, E]{state: t.From, event: t.Event}
	if _, dup := f.table[key]; dup {
		panic(fmt.Sprintf("linkstate: duplicate FSM transition for state=%v event=%v", t.From, t.Event))
	}
	f.table[key] = t
}

// ErrNoTransition is returned by Fire when no transition is defined for
// the current state and the given event; undefined (state, event) pairs
// are ignored by callers, not treated as protocol errors, matching how
// holo's FSMs silently drop irrelevant events.
type ErrNoTransition[S comparable, E comparable] struct {
	State S
	Event E
}

func (e ErrNoTransition[S, E]) Error() string {
	return fmt.Sprintf("linkstate: no transition for state=%v event=%v", e.State, e.Event)
}

// Fire applies event to the FSM. If a transition is defined for the
// current (state, event) pair, the state changes and the transition's
// Action (if any) runs after the state change; the Action's error is
// returned to the caller but does not roll back the state change, since
// FSM actions are side-effecting notifications (send a packet, arm a
// timer), not validations.
func (f *FSM[S, E]) Fire(event E) error {
	t, ok := f.table[fsmKey[S, E]{state: f.state, event: event}]
	if !ok {
		return ErrNoTransition[S, E]{State: f.state, Event: event}
	}
	f.state = t.To
	if t.Action != nil {
		return t.Action()
	}
	return nil
}
