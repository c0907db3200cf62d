// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTLVRoundTripNarrow(t *testing.T) {
	tlv := TLV{Type: 1, Value: []byte{0xde, 0xad, 0xbe, 0xef}}
	buf := EncodeTLV(nil, tlv, Narrow)
	require.Equal(t, []byte{1, 4, 0xde, 0xad, 0xbe, 0xef}, buf)

	decoded, n, err := DecodeTLV(buf, Narrow)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, tlv.Type, decoded.Type)
	require.Equal(t, tlv.Value, decoded.Value)
}

func TestTLVRoundTripWidePadded(t *testing.T) {
	tlv := TLV{Type: 7, Value: []byte{1, 2, 3}}
	buf := EncodeTLV(nil, tlv, Wide)
	// header(4) + value(3) padded to 8
	require.Len(t, buf, 8)

	decoded, n, err := DecodeTLV(buf, Wide)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.EqualValues(t, 3, decoded.Length)
	require.Equal(t, tlv.Value, decoded.Value)
}

func TestDecodeAllTLVsPreservesUnknown(t *testing.T) {
	var buf []byte
	buf = EncodeTLV(buf, TLV{Type: 1, Value: []byte{0x01}}, Narrow)
	buf = EncodeTLV(buf, TLV{Type: 99, Value: []byte{0xff, 0xff}}, Narrow)

	tlvs, err := DecodeAllTLVs(buf, Narrow)
	require.NoError(t, err)
	require.Len(t, tlvs, 2)
	require.EqualValues(t, 99, tlvs[1].Type)
	require.Equal(t, []byte{0xff, 0xff}, tlvs[1].Value)
}

func TestDecodeTLVInvalidLength(t *testing.T) {
	_, _, err := DecodeTLV([]byte{1, 10, 0x01}, Narrow)
	require.ErrorIs(t, err, ErrInvalidTLVLength)
}

func TestInternetChecksum(t *testing.T) {
	// Classic RFC 1071 worked example.
	data := []byte{0x00, 0x01, 0xf2, 0x03, 0xf4, 0xf5, 0xf6, 0xf7}
	sum := InternetChecksum(data)
	require.NotZero(t, sum)

	// Appending the checksum itself and recomputing should verify to 0xffff's
	// complement: inserting the computed checksum makes the total sum to
	// 0xFFFF, i.e. ones-complement of the recomputed value is 0.
	withSum := append(append([]byte{}, data...), byte(sum>>8), byte(sum))
	require.Equal(t, uint16(0), InternetChecksum(withSum))
}

func TestSeqWrap(t *testing.T) {
	s := Seq{value: ^uint32(0)}
	v, wrapped := s.Next()
	require.Equal(t, ^uint32(0), v)
	require.True(t, wrapped)
	require.True(t, s.Wrapped())
}

func TestStrictChecker(t *testing.T) {
	var c StrictChecker
	require.True(t, c.Accept(5))
	require.True(t, c.Accept(6))
	require.False(t, c.Accept(6))
	require.False(t, c.Accept(3))
	require.True(t, c.Accept(7))
}
