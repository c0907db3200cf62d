// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package isis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyd/polyd/internal/wire"
	"github.com/polyd/polyd/isis/packet"
)

// signedHello builds a P2P Hello carrying an HMAC-MD5 AuthenticationTLV
// whose digest is computed over the full PDU with the digest bytes
// zeroed, per RFC 5304's requirement that the authentication TLV be the
// last TLV.
func signedHello(t *testing.T, secret []byte, seq uint32) []byte {
	t.Helper()
	h := packet.Hello{
		Common: packet.CommonHeader{PDUType: packet.PDUP2PHello, MaxAreaAddrs: 3},
		P2P: &packet.P2PHelloHeader{
			CircuitType: packet.CircuitTypeL1,
			SourceID:    [6]byte{1, 0, 1, 0, 16, 1},
			HoldTime:    9,
		},
	}
	digestLen := uint8(wire.DigestLength(wire.AlgHMACMD5))
	placeholder := wire.Trailer{KeyID: 1, DigestLen: digestLen, Sequence: seq, Digest: make([]byte, digestLen)}
	h.Auth = &packet.AuthenticationTLV{Type: packet.AuthTypeHMACMD5, Value: append([]byte{}, placeholder.Encode(nil)...)}
	raw := packet.EncodeHello(h)

	digest, err := wire.Compute(wire.AlgHMACMD5, secret, raw)
	require.NoError(t, err)

	signed := wire.Trailer{KeyID: 1, DigestLen: digestLen, Sequence: seq, Digest: digest}
	h.Auth.Value = append([]byte{}, signed.Encode(nil)...)
	return packet.EncodeHello(h)
}

func TestVerifyHelloAuthAcceptsValidDigest(t *testing.T) {
	secret := []byte("area51")
	kc := wire.MapKeychain{1: {ID: 1, Alg: wire.AlgHMACMD5, Secret: secret}}
	raw := signedHello(t, secret, 1)

	hello, err := packet.DecodeHello(raw)
	require.NoError(t, err)
	require.NotNil(t, hello.Auth)

	adj := NewAdjacency(hello.P2P.SourceID)
	require.NoError(t, adj.VerifyHelloAuth(hello, raw, kc))
}

func TestVerifyHelloAuthRejectsBadDigest(t *testing.T) {
	secret := []byte("area51")
	wrongKC := wire.MapKeychain{1: {ID: 1, Alg: wire.AlgHMACMD5, Secret: []byte("wrong-secret")}}
	raw := signedHello(t, secret, 1)

	hello, err := packet.DecodeHello(raw)
	require.NoError(t, err)

	adj := NewAdjacency(hello.P2P.SourceID)
	require.ErrorIs(t, adj.VerifyHelloAuth(hello, raw, wrongKC), wire.ErrDigest)
}

func TestVerifyHelloAuthRejectsNonIncreasingSequence(t *testing.T) {
	secret := []byte("area51")
	kc := wire.MapKeychain{1: {ID: 1, Alg: wire.AlgHMACMD5, Secret: secret}}
	adj := NewAdjacency([6]byte{1, 0, 1, 0, 16, 1})

	first := signedHello(t, secret, 5)
	hello1, err := packet.DecodeHello(first)
	require.NoError(t, err)
	require.NoError(t, adj.VerifyHelloAuth(hello1, first, kc))

	replay := signedHello(t, secret, 5)
	hello2, err := packet.DecodeHello(replay)
	require.NoError(t, err)
	require.ErrorIs(t, adj.VerifyHelloAuth(hello2, replay, kc), wire.ErrSequenceReplay)
}
