// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import "errors"

// Decode error sentinels, per §7. Every one of these is non-fatal at the
// interface: the receive task increments a counter and drops the packet;
// none of them ever unwind past the per-interface receive task.
var (
	ErrInvalidLength    = errors.New("decode/invalid-length")
	ErrInvalidVersion   = errors.New("decode/invalid-version")
	ErrInvalidTLVLen    = ErrInvalidTLVLength
	ErrUnknownType      = errors.New("decode/unknown-type")
	ErrChecksum         = errors.New("decode/checksum")
)
