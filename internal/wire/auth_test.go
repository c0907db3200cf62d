// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeVerifyRoundTrip(t *testing.T) {
	kc := MapKeychain{1: {ID: 1, Alg: AlgHMACMD5, Secret: []byte("s3cr3t")}}
	body := []byte("the quick brown fox")

	digest, err := Compute(AlgHMACMD5, kc[1].Secret, body)
	require.NoError(t, err)

	trailer := Trailer{KeyID: 1, DigestLen: uint8(DigestLength(AlgHMACMD5)), Sequence: 1, Digest: digest}
	require.NoError(t, Verify(kc, trailer, AlgHMACMD5, body))
}

func TestVerifyRejectsBadDigest(t *testing.T) {
	kc := MapKeychain{1: {ID: 1, Alg: AlgHMACMD5, Secret: []byte("s3cr3t")}}
	body := []byte("the quick brown fox")

	trailer := Trailer{
		KeyID:     1,
		DigestLen: uint8(DigestLength(AlgHMACMD5)),
		Sequence:  1,
		Digest:    make([]byte, DigestLength(AlgHMACMD5)), // all-zero, not the real digest
	}
	require.ErrorIs(t, Verify(kc, trailer, AlgHMACMD5, body), ErrDigest)
}

func TestVerifyRejectsUnknownKeyID(t *testing.T) {
	kc := MapKeychain{1: {ID: 1, Alg: AlgHMACMD5, Secret: []byte("s3cr3t")}}
	trailer := Trailer{KeyID: 9, DigestLen: uint8(DigestLength(AlgHMACMD5)), Digest: []byte{}}
	require.ErrorIs(t, Verify(kc, trailer, AlgHMACMD5, nil), ErrKeyNotFound)
}

func TestVerifyWithSequenceRejectsNonIncreasing(t *testing.T) {
	kc := MapKeychain{1: {ID: 1, Alg: AlgHMACMD5, Secret: []byte("s3cr3t")}}
	body := []byte("payload")
	digest, err := Compute(AlgHMACMD5, kc[1].Secret, body)
	require.NoError(t, err)

	var checker StrictChecker
	trailer := Trailer{KeyID: 1, DigestLen: uint8(DigestLength(AlgHMACMD5)), Sequence: 5, Digest: digest}
	require.NoError(t, VerifyWithSequence(kc, &checker, trailer, AlgHMACMD5, body))

	// A replayed (non-increasing) sequence number on an otherwise
	// validly-signed PDU must be rejected as a replay, not accepted just
	// because the digest checks out.
	replay := trailer
	replay.Sequence = 5
	require.ErrorIs(t, VerifyWithSequence(kc, &checker, replay, AlgHMACMD5, body), ErrSequenceReplay)

	older := trailer
	older.Sequence = 4
	require.ErrorIs(t, VerifyWithSequence(kc, &checker, older, AlgHMACMD5, body), ErrSequenceReplay)
}

func TestTrailerEncodeDecodeRoundTrip(t *testing.T) {
	t1 := Trailer{KeyID: 3, DigestLen: 16, Sequence: 0x01020304, Digest: make([]byte, 16)}
	for i := range t1.Digest {
		t1.Digest[i] = byte(i)
	}
	buf := t1.Encode(nil)

	decoded, err := DecodeTrailer(buf)
	require.NoError(t, err)
	require.Equal(t, t1, decoded)
}

func TestDecodeTrailerTooShort(t *testing.T) {
	_, err := DecodeTrailer([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrTrailerTooShort)

	// Declares a 16-byte digest but only supplies 4.
	short := Trailer{KeyID: 1, DigestLen: 16, Sequence: 1, Digest: make([]byte, 4)}.Encode(nil)
	_, err = DecodeTrailer(short)
	require.ErrorIs(t, err, ErrTrailerTooShort)
}
