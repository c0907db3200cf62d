// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package linkstate

import "net/netip"

// Candidate is one DR-election participant: either the local router (if
// its interface priority is non-zero) or a neighbor in state >= TwoWay
// with non-zero priority, per §4.3.
type Candidate struct {
	RouterID    netip.Addr
	Priority    uint8
	IsSelf      bool
	// DR/BDR are the candidate's own view of who is DR/BDR, used on the
	// first pass exactly as received in its hello, per the classic OSPF
	// election algorithm.
	DeclaredDR  netip.Addr
	DeclaredBDR netip.Addr
	// IfAddr is this candidate's interface address on the segment (self's
	// declared DR/BDR compare against IfAddr, not RouterID).
	IfAddr netip.Addr
}

// ElectionResult names the elected DR and BDR by interface address
// (Candidate.IfAddr), or the zero Addr if none was elected (no eligible
// candidates).
type ElectionResult struct {
	DR  netip.Addr
	BDR netip.Addr
}

func higherPriority(a, b Candidate) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return compareAddr(a.RouterID, b.RouterID) > 0
}

func compareAddr(a, b netip.Addr) int {
	as, bs := a.As16(), b.As16()
	for i := range as {
		if as[i] != bs[i] {
			if as[i] < bs[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// electBDR runs one BDR-election pass over candidates, excluding any
// candidate whose IfAddr equals dr (it cannot simultaneously be BDR).
func electBDR(candidates []Candidate, dr netip.Addr) netip.Addr {
	// Candidates that declared themselves BDR get first priority; if none
	// did, fall back to every eligible candidate.
	declared := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.IfAddr == dr {
			continue
		}
		if c.DeclaredBDR == c.IfAddr {
			declared = append(declared, c)
		}
	}
	pool := declared
	if len(pool) == 0 {
		for _, c := range candidates {
			if c.IfAddr != dr {
				pool = append(pool, c)
			}
		}
	}
	return highestPriority(pool)
}

// electDR runs one DR-election pass: a candidate that declared itself DR
// wins outright (among those who did); otherwise the just-elected BDR
// becomes DR.
func electDR(candidates []Candidate, bdr netip.Addr) netip.Addr {
	var declared []Candidate
	for _, c := range candidates {
		if c.DeclaredDR == c.IfAddr {
			declared = append(declared, c)
		}
	}
	if len(declared) > 0 {
		return highestPriority(declared)
	}
	return bdr
}

func highestPriority(candidates []Candidate) netip.Addr {
	if len(candidates) == 0 {
		return netip.Addr{}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if higherPriority(c, best) {
			best = c
		}
	}
	return best.IfAddr
}

// RunElection runs a deterministic, order-independent DR election over
// the candidates' last-declared DR/BDR fields (as reported in their
// hellos): one BDR pass, then one DR pass, and, if the same candidate won
// both, one more BDR pass that excludes it. In each pass a candidate that
// declares itself BDR (or DR) is preferred over one that does not, ahead
// of the plain priority/router-id comparison. The calculation is not
// repeated when the calculating router's own DR/BDR status changes as a
// result; its new status only enters the next call, through the declared
// fields the caller supplies.
func RunElection(candidates []Candidate) ElectionResult {
	bdr := electBDR(candidates, netip.Addr{})
	dr := electDR(candidates, bdr)
	if dr == bdr && dr.IsValid() {
		// A router cannot be both; re-run BDR excluding the elected DR.
		bdr = electBDR(candidates, dr)
	}
	return ElectionResult{DR: dr, BDR: bdr}
}
