package hostinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubcommandZeroRepliesWithIdentification(t *testing.T) {
	var got []byte
	h := Handler{}
	err := h.HandlePacket(1, []byte{0}, func(b []byte) { got = b })
	require.NoError(t, err)
	require.Len(t, got, responseSize)

	version := uint32(got[0]) | uint32(got[1])<<8 | uint32(got[2])<<16 | uint32(got[3])<<24
	assert.Equal(t, ProtocolVersion, version)

	assert.Equal(t, productString, string(got[4:4+len(productString)]))
	for _, b := range got[4+len(productString) : 32] {
		assert.Equal(t, byte(0), b)
	}
	for _, b := range got[32:36] {
		assert.Equal(t, byte(0), b)
	}
}

func TestUnknownSubcommandProducesNoReply(t *testing.T) {
	h := Handler{}
	called := false
	err := h.HandlePacket(1, []byte{7}, func(b []byte) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}

func TestEmptyPayloadProducesNoReply(t *testing.T) {
	h := Handler{}
	called := false
	err := h.HandlePacket(1, nil, func(b []byte) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}
