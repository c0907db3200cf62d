// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package linkstate

import "time"

// MaxAge is the protocol-independent "this LSA/LSP is flushed" age
// threshold; IS-IS and OSPF both define it as 3600 (seconds), though the
// unit is whatever the caller's Header.Age counts in.
const MaxAge uint16 = 3600

// Header is the protocol-independent subset of an LSA/LSP header the
// LSDB needs to make flooding and aging decisions: IS-IS and OSPF headers
// carry more fields (lifetime vs. age, checksum algorithm differs) but
// both reduce to sequence+age+checksum+length for comparison purposes.
type Header struct {
	Sequence uint32
	Age      uint16
	Checksum uint16
	Length   uint16
}

// FloodDecision is the outcome of comparing an arriving instance against
// the stored one, per §4.3's flooding discipline.
type FloodDecision int

const (
	// DecisionNewer: install, reflood to every interface but the
	// incoming one, clear pending acks.
	DecisionNewer FloodDecision = iota
	// DecisionSame: delayed-ack only.
	DecisionSame
	// DecisionOlder: send the stored instance back to the source.
	DecisionOlder
)

// Compare implements the (sequence, age, checksum) ordering used to
// decide whether an arriving LSA/LSP header is newer, the same, or older
// than the stored one. A MaxAge arrival or a stored MaxAge entry is
// always treated as newer/authoritative for flush purposes by the
// caller, which checks Age >= MaxAge before calling Compare.
func Compare(stored, arriving Header) FloodDecision {
	if arriving.Sequence != stored.Sequence {
		if seqGreater(arriving.Sequence, stored.Sequence) {
			return DecisionNewer
		}
		return DecisionOlder
	}
	if arriving.Checksum != stored.Checksum {
		if arriving.Checksum > stored.Checksum {
			return DecisionNewer
		}
		return DecisionOlder
	}
	// Same sequence and checksum: prefer the instance closer to MaxAge
	// (the one that has aged more) only when one side is already at
	// MaxAge; otherwise they are the same LSA observed twice.
	if arriving.Age == MaxAge && stored.Age != MaxAge {
		return DecisionNewer
	}
	if stored.Age == MaxAge && arriving.Age != MaxAge {
		return DecisionOlder
	}
	return DecisionSame
}

// seqGreater compares LSA/LSP sequence numbers as direct signed 32-bit
// integers, per RFC 2328 §12.1.6 / ISO 10589's linear (not circular)
// sequence space: InitialSequenceNumber is 0x80000001 (the most negative
// int32 plus one) and MaxSequenceNumber is 0x7FFFFFFF (the most positive
// int32), so the space counts up from Initial through -1, then 0, then up
// to Max before an LSA/LSP must be aged out and reoriginated with
// Initial. A modular/circular comparison (int32(a-b) > 0) gets this
// backwards exactly at that boundary.
func seqGreater(a, b uint32) bool {
	return int32(a) > int32(b)
}

// Entry is one stored LSA/LSP: a protocol-formatted key (callers render
// their own composite key — OSPF uses (type, id, adv-router); IS-IS uses
// the LSP ID — as a string so the LSDB stays protocol-agnostic), its
// comparison header, and the opaque body T.
type Entry[T any] struct {
	Key    string
	Header Header
	Body   T
}

// LSDB is the protocol-agnostic link-state database of §4.3: it tracks
// the (lsa_count, cksum_sum) additive counters, the MaxAge set, and the
// MinLSInterval origination throttle. Flooding and SPF-triggering are
// driven by the caller using Insert's returned FloodDecision and the
// Entry it stores; LSDB itself does no I/O.
type LSDB[T any] struct {
	typeOf func(key string) uint16

	entries  map[string]*Entry[T]
	lsaCount map[uint16]int
	cksumSum uint32

	maxAgeSet map[string]struct{}

	minLSInterval   time.Duration
	lastOrigination map[string]time.Time
	delayedOrigin   map[string]struct{}
}

// NewLSDB returns an empty LSDB. typeOf extracts the per-type bucket
// (OSPF's LS type, IS-IS's pseudonode-vs-non-pseudonode class) from a
// key, for the lsa_count accounting.
func NewLSDB[T any](typeOf func(key string) uint16, minLSInterval time.Duration) *LSDB[T] {
	return &LSDB[T]{
		typeOf:          typeOf,
		entries:         make(map[string]*Entry[T]),
		lsaCount:        make(map[uint16]int),
		maxAgeSet:       make(map[string]struct{}),
		lastOrigination: make(map[string]time.Time),
		delayedOrigin:   make(map[string]struct{}),
		minLSInterval:   minLSInterval,
	}
}

// Get returns the stored entry for key, if any.
func (l *LSDB[T]) Get(key string) (Entry[T], bool) {
	e, ok := l.entries[key]
	if !ok {
		return Entry[T]{}, false
	}
	return *e, true
}

// Insert installs (or replaces) the entry at key and returns the
// FloodDecision the caller should act on. Counters are updated on every
// insert/remove (§4.3's additive-invariant requirement): cksum_sum and
// per-type lsa_count are kept consistent so a periodic consistency check
// can compare them against a recomputed header-only sum.
func (l *LSDB[T]) Insert(key string, header Header, body T) FloodDecision {
	existing, had := l.entries[key]
	decision := DecisionNewer
	if had {
		decision = Compare(existing.Header, header)
		if decision != DecisionNewer {
			return decision
		}
		l.removeAccounting(key, existing.Header)
	}

	l.entries[key] = &Entry[T]{Key: key, Header: header, Body: body}
	l.lsaCount[l.typeOf(key)]++
	l.cksumSum += uint32(header.Checksum)

	if header.Age >= MaxAge {
		l.maxAgeSet[key] = struct{}{}
	} else {
		delete(l.maxAgeSet, key)
	}
	return decision
}

// Remove deletes key from the database entirely (used when a MaxAge
// entry is finally purged after every neighbor has acknowledged it).
func (l *LSDB[T]) Remove(key string) {
	existing, ok := l.entries[key]
	if !ok {
		return
	}
	l.removeAccounting(key, existing.Header)
	delete(l.entries, key)
	delete(l.maxAgeSet, key)
}

func (l *LSDB[T]) removeAccounting(key string, header Header) {
	l.lsaCount[l.typeOf(key)]--
	if l.lsaCount[l.typeOf(key)] <= 0 {
		delete(l.lsaCount, l.typeOf(key))
	}
	l.cksumSum -= uint32(header.Checksum)
}

// LSACount returns the current count of installed LSAs/LSPs of the given
// type bucket.
func (l *LSDB[T]) LSACount(typ uint16) int { return l.lsaCount[typ] }

// ChecksumSum returns the additive checksum accounting value.
func (l *LSDB[T]) ChecksumSum() uint32 { return l.cksumSum }

// NeedsSweeper reports whether the MaxAge set is non-empty, i.e. whether
// the caller must keep its periodic MaxAge sweeper task running. The
// caller is responsible for actually starting/stopping that task; LSDB
// only tracks membership.
func (l *LSDB[T]) NeedsSweeper() bool { return len(l.maxAgeSet) > 0 }

// MaxAgeKeys returns the keys currently in the MaxAge set, for the
// sweeper to iterate.
func (l *LSDB[T]) MaxAgeKeys() []string {
	keys := make([]string, 0, len(l.maxAgeSet))
	for k := range l.maxAgeSet {
		keys = append(keys, k)
	}
	return keys
}

// CanOriginate reports whether key may be (re)originated now without
// violating MinLSInterval, and records the attempt if so. If the window
// has not elapsed, the key is recorded in the delayed-origination map
// (the caller is expected to arm a single timer for the earliest legal
// moment) and CanOriginate returns false.
func (l *LSDB[T]) CanOriginate(key string, now time.Time) bool {
	last, ok := l.lastOrigination[key]
	if ok && now.Sub(last) < l.minLSInterval {
		l.delayedOrigin[key] = struct{}{}
		return false
	}
	l.lastOrigination[key] = now
	delete(l.delayedOrigin, key)
	return true
}

// DelayedOriginations returns the keys currently waiting on the
// MinLSInterval throttle.
func (l *LSDB[T]) DelayedOriginations() []string {
	keys := make([]string, 0, len(l.delayedOrigin))
	for k := range l.delayedOrigin {
		keys = append(keys, k)
	}
	return keys
}

// EarliestRetry returns the earliest time at which key may legally be
// reoriginated, for arming the single delayed-origination timer.
func (l *LSDB[T]) EarliestRetry(key string) time.Time {
	return l.lastOrigination[key].Add(l.minLSInterval)
}
