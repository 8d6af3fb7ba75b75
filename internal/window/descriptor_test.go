package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDescriptorRoundTrip(t *testing.T) {
	cases := []Descriptor{
		{Ready: false, CID: 0, Size: 0, Addr: 0},
		{Ready: true, CID: 1, Size: 0, Addr: 0},
		{Ready: true, CID: 127, Size: 512, Addr: 0},
		{Ready: true, CID: 2, Size: 20, Addr: 500},
		{Ready: false, CID: 63, Size: 300, Addr: 100},
	}
	for _, d := range cases {
		got := DecodeDescriptor(d.Encode())
		assert.Equal(t, d, got)
	}
}

// TestDescriptorEncodeDecodeIsIdentity checks the round-trip law:
// descriptor_encode . descriptor_decode = id on the 32-bit word, for every
// arbitrary descriptor, not just hand-picked cases.
func TestDescriptorEncodeDecodeIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := Descriptor{
			Ready: rapid.Bool().Draw(t, "ready"),
			CID:   uint8(rapid.IntRange(0, 127).Draw(t, "cid")),
			Size:  uint16(rapid.IntRange(0, 4095).Draw(t, "size")),
			Addr:  uint16(rapid.IntRange(0, 4095).Draw(t, "addr")),
		}
		got := DecodeDescriptor(d.Encode())
		require.Equal(t, d, got)
	})
}

func TestDescriptorValid(t *testing.T) {
	assert.True(t, Descriptor{Addr: 0, Size: 512}.Valid())
	assert.True(t, Descriptor{Addr: 500, Size: 12}.Valid())
	assert.False(t, Descriptor{Addr: 500, Size: 20}.Valid())
	assert.False(t, Descriptor{Addr: 1, Size: 512}.Valid())
}
