// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package linkstate

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompareNewerSequenceWins(t *testing.T) {
	stored := Header{Sequence: 5, Age: 100, Checksum: 10}
	arriving := Header{Sequence: 6, Age: 0, Checksum: 99}
	require.Equal(t, DecisionNewer, Compare(stored, arriving))
}

func TestCompareOlderSequenceSendsBack(t *testing.T) {
	stored := Header{Sequence: 6, Age: 100, Checksum: 10}
	arriving := Header{Sequence: 5, Age: 0, Checksum: 99}
	require.Equal(t, DecisionOlder, Compare(stored, arriving))
}

func TestCompareSameIsDelayedAck(t *testing.T) {
	stored := Header{Sequence: 6, Age: 100, Checksum: 10}
	arriving := Header{Sequence: 6, Age: 50, Checksum: 10}
	require.Equal(t, DecisionSame, Compare(stored, arriving))
}

// RFC 2328 §12.1.6 / ISO 10589 reserve these two values as the lowest and
// highest legal sequence numbers. A modular (circular) comparison wraps
// exactly here and reports Max as not-greater-than-Initial; the linear
// signed-int32 comparison this codebase uses must not.
const (
	initialSequenceNumber uint32 = 0x80000001
	maxSequenceNumber     uint32 = 0x7FFFFFFF
)

func TestSeqGreaterAtSignedBoundary(t *testing.T) {
	require.True(t, seqGreater(maxSequenceNumber, initialSequenceNumber),
		"MaxSequenceNumber must compare greater than InitialSequenceNumber")
	require.False(t, seqGreater(initialSequenceNumber, maxSequenceNumber))
	require.False(t, seqGreater(initialSequenceNumber, initialSequenceNumber))
}

func TestCompareAtSignedBoundary(t *testing.T) {
	stored := Header{Sequence: initialSequenceNumber, Age: 100, Checksum: 10}
	arriving := Header{Sequence: maxSequenceNumber, Age: 0, Checksum: 10}
	require.Equal(t, DecisionNewer, Compare(stored, arriving))
}

func TestLSDBInsertUpdatesCounters(t *testing.T) {
	typeOf := func(key string) uint16 { return 1 }
	db := NewLSDB[string](typeOf, time.Second)

	decision := db.Insert("lsa-a", Header{Sequence: 1, Checksum: 10}, "body-a")
	require.Equal(t, DecisionNewer, decision)
	require.Equal(t, 1, db.LSACount(1))
	require.Equal(t, uint32(10), db.ChecksumSum())

	decision = db.Insert("lsa-b", Header{Sequence: 1, Checksum: 20}, "body-b")
	require.Equal(t, DecisionNewer, decision)
	require.Equal(t, 2, db.LSACount(1))
	require.Equal(t, uint32(30), db.ChecksumSum())

	db.Remove("lsa-a")
	require.Equal(t, 1, db.LSACount(1))
	require.Equal(t, uint32(20), db.ChecksumSum())
}

func TestLSDBMaxAgeSetTracksSweeperNeed(t *testing.T) {
	typeOf := func(key string) uint16 { return 1 }
	db := NewLSDB[string](typeOf, time.Second)

	db.Insert("lsa-a", Header{Sequence: 1, Age: 100}, "x")
	require.False(t, db.NeedsSweeper())

	db.Insert("lsa-a", Header{Sequence: 2, Age: MaxAge}, "x")
	require.True(t, db.NeedsSweeper())
	require.Equal(t, []string{"lsa-a"}, db.MaxAgeKeys())

	db.Remove("lsa-a")
	require.False(t, db.NeedsSweeper())
}

func TestLSDBMinLSIntervalThrottles(t *testing.T) {
	typeOf := func(key string) uint16 { return 1 }
	db := NewLSDB[string](typeOf, 5*time.Second)

	now := time.Unix(1000, 0)
	require.True(t, db.CanOriginate("lsa-a", now))
	require.False(t, db.CanOriginate("lsa-a", now.Add(time.Second)))
	require.Equal(t, []string{"lsa-a"}, db.DelayedOriginations())
	require.True(t, db.CanOriginate("lsa-a", now.Add(6*time.Second)))
	require.Empty(t, db.DelayedOriginations())
}

func TestSPFSchedulerTransitions(t *testing.T) {
	timers := SPFDelayTimers{
		InitialDelay: 100 * time.Millisecond,
		ShortDelay:   100 * time.Millisecond,
		LongDelay:    time.Second,
		HoldDown:     200 * time.Millisecond,
		Learn:        300 * time.Millisecond,
	}
	s := NewSPFScheduler(timers)
	require.Equal(t, SPFQuiet, s.State())

	action := s.Fire(SPFEventIgpEvent)
	require.Equal(t, SPFShortWait, s.State())
	require.NotNil(t, action.ArmDelay)

	action = s.Fire(SPFEventIgpEvent)
	require.Equal(t, SPFShortWait, s.State(), "timer must not restart on repeat IgpEvent")

	action = s.Fire(SPFEventDelayTimer)
	require.True(t, action.RunSPF)
	require.Equal(t, SPFShortWait, s.State())

	action = s.Fire(SPFEventLearnTimer)
	require.Equal(t, SPFLongWait, s.State())

	action = s.Fire(SPFEventHoldDownTimer)
	require.True(t, action.BackToQuiet)
	require.Equal(t, SPFQuiet, s.State())
}

func TestSPFSchedulerLongWaitHoldDownExtendsOnActivity(t *testing.T) {
	timers := SPFDelayTimers{HoldDown: 200 * time.Millisecond}
	s := &SPFScheduler{state: SPFLongWait, timers: timers, holdDownQuiet: true}

	s.Fire(SPFEventIgpEvent)
	action := s.Fire(SPFEventHoldDownTimer)
	require.True(t, action.RunSPF)
	require.Equal(t, SPFLongWait, s.State())
}

func TestRoutePreferenceOrdering(t *testing.T) {
	intra := Route{Type: PathIntraArea, Metric: 100}
	inter := Route{Type: PathInterArea, Metric: 1}
	require.True(t, intra.Less(inter))

	ext1 := Route{Type: PathType1External, Metric: 10}
	ext2 := Route{Type: PathType2External, Type2Metric: 1}
	require.True(t, ext1.Less(ext2))

	a := Route{Type: PathType2External, Type2Metric: 5, ASBRCost: 10, NonBackboneASBR: true}
	b := Route{Type: PathType2External, Type2Metric: 5, ASBRCost: 10, NonBackboneASBR: false}
	require.True(t, a.Less(b), "non-backbone ASBR path wins external tie")
}

func TestDRElectionTieBreaksOnPriorityThenRouterID(t *testing.T) {
	self := netip.MustParseAddr("10.0.0.1")
	peer := netip.MustParseAddr("10.0.0.2")
	candidates := []Candidate{
		{RouterID: self, Priority: 1, IsSelf: true, IfAddr: self},
		{RouterID: peer, Priority: 1, IfAddr: peer},
	}
	result := RunElection(candidates)
	require.Equal(t, peer, result.DR, "higher router-id wins the priority tie")
}
