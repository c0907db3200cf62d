// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package isis

import (
	"github.com/polyd/polyd/internal/wire"
	"github.com/polyd/polyd/isis/packet"
)

// ErrNoAuth is returned when an interface requires authentication but the
// received Hello carried no AuthenticationTLV.
var ErrNoAuth = wire.ErrKeyNotFound

// VerifyHelloAuth checks hello's AuthenticationTLV (if of crypto type)
// against kc using a.authSeq for replay protection, per §4.4. raw is the
// complete PDU as received. RFC 5304 requires the authentication TLV to
// be the last TLV in a crypto-authenticated PDU, so the digest itself
// occupies the trailing DigestLen octets of raw; VerifyHelloAuth zeroes
// those before recomputing, same as the originator did before signing.
func (a *Adjacency) VerifyHelloAuth(hello packet.Hello, raw []byte, kc wire.Keychain) error {
	if hello.Auth == nil || hello.Auth.Type != packet.AuthTypeHMACMD5 {
		return ErrNoAuth
	}
	trailer, err := hello.Auth.CryptoTrailer()
	if err != nil {
		return err
	}
	alg := wire.AlgHMACMD5
	if trailer.DigestLen == wire.DigestLength(wire.AlgHMACSHA1) {
		alg = wire.AlgHMACSHA1
	}
	n := int(trailer.DigestLen)
	if n == 0 || n > len(raw) {
		return wire.ErrDigest
	}
	zeroed := append([]byte(nil), raw...)
	for i := len(zeroed) - n; i < len(zeroed); i++ {
		zeroed[i] = 0
	}
	return wire.VerifyWithSequence(kc, &a.authSeq, trailer, alg, zeroed)
}
