// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"errors"
	"hash"
)

// AuthType identifies the per-protocol authentication scheme carried in a
// PDU header, per §4.4.
type AuthType int

const (
	AuthNull AuthType = iota
	AuthClearText
	AuthCrypto
)

// Algorithm identifies the digest algorithm used by AuthCrypto.
type Algorithm int

const (
	AlgHMACMD5 Algorithm = iota
	AlgHMACSHA1
)

func newHash(alg Algorithm, key []byte) (hash.Hash, error) {
	switch alg {
	case AlgHMACMD5:
		return hmac.New(md5.New, key), nil
	case AlgHMACSHA1:
		return hmac.New(sha1.New, key), nil
	default:
		return nil, ErrUnknownAlgorithm
	}
}

// DigestLength returns the trailer length in octets for alg.
func DigestLength(alg Algorithm) int {
	switch alg {
	case AlgHMACMD5:
		return md5.Size
	case AlgHMACSHA1:
		return sha1.Size
	default:
		return 0
	}
}

var (
	ErrUnknownAlgorithm = errors.New("auth/unknown-algorithm")
	ErrTypeMismatch     = errors.New("auth/type-mismatch")
	ErrKeyNotFound      = errors.New("auth/key-not-found")
	ErrDigest           = errors.New("auth/digest")
	ErrTrailerTooShort  = errors.New("auth/trailer-too-short")
	ErrSequenceReplay   = errors.New("auth/sequence-replay")
)

// Key is a single configured authentication key, addressable by KeyID.
type Key struct {
	ID     uint8
	Alg    Algorithm
	Secret []byte
}

// Keychain resolves a KeyID to a Key. §9 design note: keychains are
// published as reference-counted immutable snapshots from the northbound
// side; this interface is what the wire codec and adjacency layers consume
// — they never mutate it.
type Keychain interface {
	Lookup(keyID uint8) (Key, bool)
}

// MapKeychain is the simplest Keychain implementation: an immutable
// snapshot built once and swapped atomically by its owner on update (the
// swap itself lives in internal/instance's shared data, not here).
type MapKeychain map[uint8]Key

func (k MapKeychain) Lookup(keyID uint8) (Key, bool) {
	key, ok := k[keyID]
	return key, ok
}

// Seq is a per-adjacency monotonic authentication sequence counter. §4.4:
// encoding increments it on every send; wrap-around is not specified by
// the protocol — callers must log and continue rather than treating
// overflow as fatal. §9 Open Question: the policy for what happens next
// (abort the session vs. silently wrap) is left to the adjacency layer;
// Seq itself only detects the wrap and reports it, it does not decide.
type Seq struct {
	value    uint32
	wrapped  bool
}

// Next returns the next sequence number to send and records whether this
// call wrapped past the u32 boundary. Once wrapped, Wrapped stays true —
// it is a sticky flag the adjacency layer inspects once per local policy,
// not a per-call alarm.
func (s *Seq) Next() (v uint32, wrapped bool) {
	v = s.value
	s.value++
	if s.value == 0 {
		s.wrapped = true
	}
	return v, s.wrapped
}

// Wrapped reports whether this counter has ever wrapped.
func (s *Seq) Wrapped() bool { return s.wrapped }

// StrictChecker enforces strictly increasing sequence numbers per peer,
// per §4.4(d) / §8 "Auth sequence monotonicity": a PDU whose sequence is
// less than or equal to the last accepted one is rejected without any
// adjacency state change.
type StrictChecker struct {
	lastAccepted uint32
	seen         bool
}

// Accept reports whether seq may be accepted, updating the high-water mark
// on acceptance. The very first sequence seen is always accepted.
func (c *StrictChecker) Accept(seq uint32) bool {
	if !c.seen {
		c.lastAccepted = seq
		c.seen = true
		return true
	}
	if seq <= c.lastAccepted {
		return false
	}
	c.lastAccepted = seq
	return true
}

// Trailer is a decoded or to-be-encoded cryptographic authentication
// trailer: key id, declared digest length, sequence number, and the
// digest bytes themselves.
type Trailer struct {
	KeyID      uint8
	DigestLen  uint8
	Sequence   uint32
	Digest     []byte
}

const trailerFixedLen = 6 // KeyID + DigestLen + Sequence

// DecodeTrailer parses a Trailer from its wire form: a 1-octet key id, a
// 1-octet digest length, a 4-octet big-endian sequence number, then
// DigestLen octets of digest. Every protocol-specific crypto auth
// TLV/field this codebase decodes (IS-IS type-10 authentication, OSPF's
// crypto auth field) carries exactly this shape.
func DecodeTrailer(b []byte) (Trailer, error) {
	if len(b) < trailerFixedLen {
		return Trailer{}, ErrTrailerTooShort
	}
	t := Trailer{
		KeyID:     b[0],
		DigestLen: b[1],
		Sequence:  uint32(b[2])<<24 | uint32(b[3])<<16 | uint32(b[4])<<8 | uint32(b[5]),
	}
	if len(b) < trailerFixedLen+int(t.DigestLen) {
		return Trailer{}, ErrTrailerTooShort
	}
	t.Digest = append([]byte(nil), b[trailerFixedLen:trailerFixedLen+int(t.DigestLen)]...)
	return t, nil
}

// Encode appends t's wire form to dst.
func (t Trailer) Encode(dst []byte) []byte {
	dst = append(dst, t.KeyID, t.DigestLen,
		byte(t.Sequence>>24), byte(t.Sequence>>16), byte(t.Sequence>>8), byte(t.Sequence))
	return append(dst, t.Digest...)
}

// Compute produces the digest over packetMinusTrailer (the full packet
// with the trailer field excluded, and any protocol-specific "skipped"
// fields such as LSA age already zeroed by the caller per §4.4).
func Compute(alg Algorithm, key []byte, packetMinusTrailer []byte) ([]byte, error) {
	h, err := newHash(alg, key)
	if err != nil {
		return nil, err
	}
	h.Write(packetMinusTrailer)
	return h.Sum(nil), nil
}

// Verify validates a received Trailer against local configuration: the
// key must resolve, the declared digest length must match the algorithm's
// digest length, and the recomputed digest over packetMinusTrailer must
// equal the received one. It does not touch adjacency state — per §7,
// isolated auth failures are counted, not fatal.
func Verify(kc Keychain, t Trailer, alg Algorithm, packetMinusTrailer []byte) error {
	key, ok := kc.Lookup(t.KeyID)
	if !ok {
		return ErrKeyNotFound
	}
	if int(t.DigestLen) != DigestLength(alg) {
		return ErrDigest
	}
	want, err := Compute(alg, key.Secret, packetMinusTrailer)
	if err != nil {
		return err
	}
	if !hmac.Equal(want, t.Digest) {
		return ErrDigest
	}
	return nil
}

// VerifyWithSequence runs Verify and, only once the digest itself checks
// out, enforces StrictChecker's strictly-increasing sequence rule via checker.
// A replayed or out-of-order sequence on an otherwise validly-signed PDU
// is reported as ErrSequenceReplay rather than ErrDigest, so callers can
// tell the two failure modes apart in logs and counters.
func VerifyWithSequence(kc Keychain, checker *StrictChecker, t Trailer, alg Algorithm, packetMinusTrailer []byte) error {
	if err := Verify(kc, t, alg, packetMinusTrailer); err != nil {
		return err
	}
	if checker != nil && !checker.Accept(t.Sequence) {
		return ErrSequenceReplay
	}
	return nil
}
