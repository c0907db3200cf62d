// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ospf

import (
	"github.com/polyd/polyd/internal/wire"
	"github.com/polyd/polyd/ospf/packet"
)

// ErrNoAuth is returned when an interface requires crypto authentication
// but the received header is not AuTypeCrypto.
var ErrNoAuth = wire.ErrKeyNotFound

// VerifyPacketAuth checks a received OSPF packet's crypto authentication
// field (RFC 2328 Appendix D.3) against kc using n.authSeq for replay
// protection. raw is the complete packet as received, header included;
// the digest trails the packet body for DigestLen octets and is not part
// of raw's declared Length.
func (n *Neighbor) VerifyPacketAuth(h packet.Header, raw []byte, kc wire.Keychain) error {
	if h.AuType != packet.AuTypeCrypto {
		return ErrNoAuth
	}
	keyID, digestLen, sequence := packet.DecodeCryptoAuth(h)
	if int(digestLen) == 0 || len(raw) < int(h.Length)+int(digestLen) {
		return wire.ErrDigest
	}
	digest := raw[h.Length : int(h.Length)+int(digestLen)]
	trailer := wire.Trailer{KeyID: keyID, DigestLen: digestLen, Sequence: sequence, Digest: digest}

	alg := wire.AlgHMACMD5
	if digestLen == uint8(wire.DigestLength(wire.AlgHMACSHA1)) {
		alg = wire.AlgHMACSHA1
	}
	// The digest covers the packet (header plus body) up to Length, with
	// the checksum and authentication fields treated as zero, the same
	// convention packet.ComputeChecksum uses for the RFC 1071 checksum.
	scratch := append([]byte(nil), raw[:h.Length]...)
	if len(scratch) >= 24 {
		scratch[12], scratch[13] = 0, 0
		for i := 16; i < 24; i++ {
			scratch[i] = 0
		}
	}
	return wire.VerifyWithSequence(kc, &n.authSeq, trailer, alg, scratch)
}
