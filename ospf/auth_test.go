// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ospf

import (
	"encoding/binary"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyd/polyd/internal/wire"
	"github.com/polyd/polyd/ospf/packet"
)

// signedHelloPacket builds a complete OSPFv2 Hello packet (header + body
// + trailing digest) authenticated with AuTypeCrypto, per RFC 2328
// Appendix D.3: the digest covers the packet up to Length with the
// checksum and 8-byte auth field zeroed, and trails the packet itself.
func signedHelloPacket(t *testing.T, secret []byte, seq uint32) []byte {
	t.Helper()
	body := packet.EncodeHello(nil, packet.Hello{HelloInterval: 10, RtrPriority: 1})

	h := packet.Header{
		Version: 2,
		Type:    packet.TypeHello,
		AuType:  packet.AuTypeCrypto,
	}
	h.RouterID = [4]byte{10, 0, 0, 2}
	digestLen := uint8(wire.DigestLength(wire.AlgHMACMD5))
	h.AuthData[2] = 1 // key id
	h.AuthData[3] = digestLen
	binary.BigEndian.PutUint32(h.AuthData[4:8], seq)

	raw := packet.EncodeHeader(nil, h, len(body))
	raw = append(raw, body...)

	scratch := append([]byte(nil), raw...)
	scratch[12], scratch[13] = 0, 0
	for i := 16; i < 24; i++ {
		scratch[i] = 0
	}
	digest, err := wire.Compute(wire.AlgHMACMD5, secret, scratch)
	require.NoError(t, err)
	return append(raw, digest...)
}

func TestVerifyPacketAuthAcceptsValidDigest(t *testing.T) {
	secret := []byte("backbone")
	kc := wire.MapKeychain{1: {ID: 1, Alg: wire.AlgHMACMD5, Secret: secret}}
	raw := signedHelloPacket(t, secret, 1)

	header, _, err := packet.DecodeHeader(raw)
	require.NoError(t, err)

	n := NewNeighbor(netip.MustParseAddr("10.0.0.2"))
	require.NoError(t, n.VerifyPacketAuth(header, raw, kc))
}

func TestVerifyPacketAuthRejectsBadDigest(t *testing.T) {
	secret := []byte("backbone")
	wrongKC := wire.MapKeychain{1: {ID: 1, Alg: wire.AlgHMACMD5, Secret: []byte("not-it")}}
	raw := signedHelloPacket(t, secret, 1)

	header, _, err := packet.DecodeHeader(raw)
	require.NoError(t, err)

	n := NewNeighbor(netip.MustParseAddr("10.0.0.2"))
	require.ErrorIs(t, n.VerifyPacketAuth(header, raw, wrongKC), wire.ErrDigest)
}

func TestVerifyPacketAuthRejectsNonIncreasingSequence(t *testing.T) {
	secret := []byte("backbone")
	kc := wire.MapKeychain{1: {ID: 1, Alg: wire.AlgHMACMD5, Secret: secret}}
	n := NewNeighbor(netip.MustParseAddr("10.0.0.2"))

	first := signedHelloPacket(t, secret, 9)
	header1, _, err := packet.DecodeHeader(first)
	require.NoError(t, err)
	require.NoError(t, n.VerifyPacketAuth(header1, first, kc))

	replay := signedHelloPacket(t, secret, 9)
	header2, _, err := packet.DecodeHeader(replay)
	require.NoError(t, err)
	require.ErrorIs(t, n.VerifyPacketAuth(header2, replay, kc), wire.ErrSequenceReplay)
}
