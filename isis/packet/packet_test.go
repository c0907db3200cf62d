// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"testing"

	"github.com/polyd/polyd/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestP2PHelloRoundTrip(t *testing.T) {
	h := Hello{
		Common: CommonHeader{PDUType: PDUP2PHello, MaxAreaAddrs: 3},
		P2P: &P2PHelloHeader{
			CircuitType:    CircuitTypeL2,
			SourceID:       [6]byte{0x01, 0x00, 0x01, 0x00, 0x10, 0x01},
			HoldTime:       9,
			LocalCircuitID: 1,
		},
		Areas:     AreaAddressesTLV{Areas: [][]byte{{0x49, 0x00, 0x01}}},
		Protocols: ProtocolsSupportedTLV{NLPIDs: []byte{0xcc}},
	}
	encoded := EncodeHello(h)

	decoded, err := DecodeHello(encoded)
	require.NoError(t, err)
	require.Equal(t, PDUP2PHello, decoded.Common.PDUType)
	require.Equal(t, h.P2P.SourceID, decoded.P2P.SourceID)
	require.Equal(t, h.P2P.HoldTime, decoded.P2P.HoldTime)
	require.Equal(t, h.Areas, decoded.Areas)
	require.Equal(t, h.Protocols, decoded.Protocols)

	reencoded := EncodeHello(decoded)
	require.Equal(t, encoded, reencoded)
}

func TestLANHelloRoundTripPreservesUnknownTLV(t *testing.T) {
	h := Hello{
		Common: CommonHeader{PDUType: PDUL1Hello, MaxAreaAddrs: 3},
		LAN: &LANHelloHeader{
			CircuitType: CircuitTypeL1,
			SourceID:    [6]byte{0x01, 0x00, 0x01, 0x00, 0x10, 0x02},
			HoldTime:    27,
			Priority:    64,
			LANID:       [7]byte{0x01, 0x00, 0x01, 0x00, 0x10, 0x01, 0x01},
		},
		Neighbors: ISNeighborsTLV{Neighbors: [][6]byte{{0x01, 0x00, 0x01, 0x00, 0x10, 0x01}}},
		Unknown:   []wire.TLV{{Type: 250, Value: []byte{0xde, 0xad}}},
	}
	encoded := EncodeHello(h)
	decoded, err := DecodeHello(encoded)
	require.NoError(t, err)
	require.Equal(t, h.Neighbors, decoded.Neighbors)
	require.Len(t, decoded.Unknown, 1)
	require.Equal(t, uint16(250), decoded.Unknown[0].Type)
	require.Equal(t, []byte{0xde, 0xad}, decoded.Unknown[0].Value)
}

func TestExtIsReachabilityRoundTrip(t *testing.T) {
	entries := []ExtendedReachability{
		{NeighborID: [7]byte{1, 2, 3, 4, 5, 6, 0}, Metric: 1000},
	}
	encoded := EncodeExtIsReachability(entries)
	decoded, err := DecodeExtIsReachability(encoded)
	require.NoError(t, err)
	require.Equal(t, entries, decoded)
}

func TestLSPChecksumValidatesOnVerify(t *testing.T) {
	header := LSPHeader{
		PDULength: lspHeaderLen,
		LSPID:     LSPID{SystemID: [6]byte{1, 0, 1, 0, 16, 1}},
		SeqNumber: 1,
	}
	body := EncodeLSPHeader(nil, header)
	fromID := body[4:]
	c0, c1 := ComputeLSPChecksum(fromID)
	fromID[12] = c0
	fromID[13] = c1
	require.True(t, VerifyLSPChecksum(fromID))

	fromID[12] ^= 0xff
	require.False(t, VerifyLSPChecksum(fromID))
}
