// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package linkstate

import "time"

// SPFDelayState is the SPF scheduler's delay state machine, per §4.3.
type SPFDelayState int

const (
	SPFQuiet SPFDelayState = iota
	SPFShortWait
	SPFLongWait
)

func (s SPFDelayState) String() string {
	switch s {
	case SPFQuiet:
		return "quiet"
	case SPFShortWait:
		return "short-wait"
	case SPFLongWait:
		return "long-wait"
	default:
		return "unknown"
	}
}

// SPFEvent drives the delay state machine.
type SPFEvent int

const (
	SPFEventIgpEvent SPFEvent = iota
	SPFEventDelayTimer
	SPFEventHoldDownTimer
	SPFEventLearnTimer
)

// SPFDelayTimers holds the five configurable timers of the delay state
// machine.
type SPFDelayTimers struct {
	InitialDelay time.Duration
	ShortDelay   time.Duration
	LongDelay    time.Duration
	HoldDown     time.Duration
	Learn        time.Duration
}

// SPFAction is what the delay scheduler wants the caller to do after an
// event is processed: which timers to (re)arm and whether to run SPF now.
type SPFAction struct {
	RunSPF        bool
	ArmDelay      *time.Duration
	ArmLearn      *time.Duration
	ArmHoldDown   *time.Duration
	BackToQuiet   bool
}

// SPFScheduler implements the delay state machine transitions of §4.3.
// It does not run SPF itself or own any timers; it tells the caller what
// to do via the returned SPFAction, since timer ownership belongs to the
// protocol instance's mailbox/runtime, not to this shared package.
type SPFScheduler struct {
	state  SPFDelayState
	timers SPFDelayTimers
	// holdDownQuiet tracks whether any IgpEvent arrived during the
	// current hold-down window, to implement "on a quiet hold-down
	// period return to Quiet".
	holdDownQuiet bool
}

// NewSPFScheduler returns a scheduler starting in Quiet.
func NewSPFScheduler(timers SPFDelayTimers) *SPFScheduler {
	return &SPFScheduler{state: SPFQuiet, timers: timers, holdDownQuiet: true}
}

// State returns the current delay state.
func (s *SPFScheduler) State() SPFDelayState { return s.state }

// Fire processes event and returns the action the caller must take.
func (s *SPFScheduler) Fire(event SPFEvent) SPFAction {
	switch s.state {
	case SPFQuiet:
		if event == SPFEventIgpEvent {
			s.state = SPFShortWait
			s.holdDownQuiet = true
			return SPFAction{ArmDelay: dur(s.timers.InitialDelay), ArmLearn: dur(s.timers.Learn)}
		}

	case SPFShortWait:
		switch event {
		case SPFEventIgpEvent:
			// Timer not restarted.
			return SPFAction{}
		case SPFEventDelayTimer:
			return SPFAction{RunSPF: true, ArmHoldDown: dur(s.timers.HoldDown)}
		case SPFEventLearnTimer:
			s.state = SPFLongWait
			return SPFAction{}
		}

	case SPFLongWait:
		switch event {
		case SPFEventIgpEvent:
			s.holdDownQuiet = false
			return SPFAction{}
		case SPFEventHoldDownTimer:
			if s.holdDownQuiet {
				s.state = SPFQuiet
				return SPFAction{BackToQuiet: true}
			}
			s.holdDownQuiet = true
			return SPFAction{RunSPF: true, ArmHoldDown: dur(s.timers.HoldDown)}
		}
	}
	return SPFAction{}
}

func dur(d time.Duration) *time.Duration { return &d }

// PathType orders route preference per §4.3: intra-area < inter-area <
// type-1-external < type-2-external (smaller is better).
type PathType int

const (
	PathIntraArea PathType = iota
	PathInterArea
	PathType1External
	PathType2External
)

// Route is the comparison-relevant subset of a computed route, enough to
// implement §4.3's preference ordering without depending on the RIB's
// full nexthop-set representation.
type Route struct {
	Type           PathType
	Metric         uint32
	Type2Metric    uint32
	ASBRCost       uint32
	NonBackboneASBR bool
}

// Less reports whether a is strictly preferred over b, per §4.3: compare
// path type first; within type-2-external compare the type-2 metric
// before the advertising ASBR's cost; ties in external paths prefer
// non-backbone intra-area ASBR paths.
func (a Route) Less(b Route) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	switch a.Type {
	case PathType2External:
		if a.Type2Metric != b.Type2Metric {
			return a.Type2Metric < b.Type2Metric
		}
		if a.ASBRCost != b.ASBRCost {
			return a.ASBRCost < b.ASBRCost
		}
		return a.NonBackboneASBR && !b.NonBackboneASBR
	case PathType1External:
		if a.Metric != b.Metric {
			return a.Metric < b.Metric
		}
		return a.NonBackboneASBR && !b.NonBackboneASBR
	default:
		return a.Metric < b.Metric
	}
}

// Tie reports whether a and b are equally preferred, i.e. neither is
// Less than the other — callers ECMP-merge nexthops in that case for
// intra/inter-area routes (external ties are instead broken by
// NonBackboneASBR in Less, so Tie is false there unless every field
// matches).
func (a Route) Tie(b Route) bool {
	return !a.Less(b) && !b.Less(a)
}
