package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{CID: 42, Size: 300}
	enc := h.Encode()
	got := DecodeHeader(enc[:])
	assert.Equal(t, h, got)
}

// TestPacketRoundTripLaw checks the round-trip law: sending a packet
// and reassembling it on the peer yields byte-identical CID, SIZE, and
// payload, for any CID in [0,127] and SIZE in [0,512].
func TestPacketRoundTripLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cid := uint8(rapid.IntRange(0, 127).Draw(t, "cid"))
		payload := rapid.SliceOfN(rapid.Byte(), 0, MaxPayload).Draw(t, "payload")

		framed, err := EncodePacket(cid, payload)
		require.NoError(t, err)

		h := DecodeHeader(framed[:HeaderSize])
		require.Equal(t, cid, h.CID)
		require.Equal(t, len(payload), int(h.Size))
		require.Equal(t, payload, framed[HeaderSize:])
	})
}

func TestEncodePacketRejectsOversizePayload(t *testing.T) {
	_, err := EncodePacket(1, make([]byte, MaxPayload+1))
	require.Error(t, err)
}
