package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcpipe/podule/internal/wire"
)

func TestFeedDispatchesCompletePacket(t *testing.T) {
	s := New()
	var got []byte
	s.Register(5, ChannelFunc(func(cid uint8, payload []byte, reply func([]byte)) error {
		got = append([]byte(nil), payload...)
		return nil
	}))

	pkt, err := wire.EncodePacket(5, []byte("hello"))
	require.NoError(t, err)

	s.Feed(pkt)

	assert.Equal(t, []byte("hello"), got)
}

func TestFeedHandlesPartialThenCompletingWrites(t *testing.T) {
	s := New()
	var calls int
	s.Register(1, ChannelFunc(func(cid uint8, payload []byte, reply func([]byte)) error {
		calls++
		return nil
	}))

	pkt, err := wire.EncodePacket(1, []byte("abcdef"))
	require.NoError(t, err)

	s.Feed(pkt[:2])
	assert.Equal(t, 0, calls)
	s.Feed(pkt[2:])
	assert.Equal(t, 1, calls)
}

func TestFeedReentersFramingLoopForBackToBackPackets(t *testing.T) {
	s := New()
	var seen []string
	s.Register(2, ChannelFunc(func(cid uint8, payload []byte, reply func([]byte)) error {
		seen = append(seen, string(payload))
		return nil
	}))

	a, err := wire.EncodePacket(2, []byte("first"))
	require.NoError(t, err)
	b, err := wire.EncodePacket(2, []byte("second"))
	require.NoError(t, err)

	s.Feed(append(a, b...))

	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestIgnoreChannelDropsSilently(t *testing.T) {
	s := New()
	pkt, err := wire.EncodePacket(0, []byte("whatever"))
	require.NoError(t, err)

	assert.NotPanics(t, func() { s.Feed(pkt) })
}

func TestUnknownChannelIsDroppedNotFatal(t *testing.T) {
	s := New()
	pkt, err := wire.EncodePacket(99, []byte("x"))
	require.NoError(t, err)

	assert.NotPanics(t, func() { s.Feed(pkt) })
}

func TestReplyEnqueuesOutboundPacket(t *testing.T) {
	s := New()
	s.Register(3, ChannelFunc(func(cid uint8, payload []byte, reply func([]byte)) error {
		reply([]byte("pong"))
		return nil
	}))

	pkt, err := wire.EncodePacket(3, []byte("ping"))
	require.NoError(t, err)
	s.Feed(pkt)

	var out []byte
	busy, err := s.PumpTX(func(b []byte) (int, error) {
		out = append(out, b...)
		return len(b), nil
	})
	require.NoError(t, err)
	assert.False(t, busy)

	expect, err := wire.EncodePacket(3, []byte("pong"))
	require.NoError(t, err)
	assert.Equal(t, expect, out)
}

func TestPumpTXStaysBusyOnPartialWrite(t *testing.T) {
	s := New()
	s.Register(4, ChannelFunc(func(cid uint8, payload []byte, reply func([]byte)) error {
		reply([]byte("0123456789"))
		return nil
	}))
	pkt, err := wire.EncodePacket(4, []byte("go"))
	require.NoError(t, err)
	s.Feed(pkt)

	busy, err := s.PumpTX(func(b []byte) (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.True(t, busy)
	assert.True(t, s.TXBusy())
}

func TestPumpTXPropagatesWriteError(t *testing.T) {
	s := New()
	s.Register(4, ChannelFunc(func(cid uint8, payload []byte, reply func([]byte)) error {
		reply([]byte("x"))
		return nil
	}))
	pkt, err := wire.EncodePacket(4, []byte("go"))
	require.NoError(t, err)
	s.Feed(pkt)

	boom := errors.New("boom")
	_, err = s.PumpTX(func(b []byte) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestResetDrainsQueueAndFraming(t *testing.T) {
	s := New()
	s.Register(1, ChannelFunc(func(cid uint8, payload []byte, reply func([]byte)) error {
		reply([]byte("resp"))
		return nil
	}))
	pkt, err := wire.EncodePacket(1, []byte("x"))
	require.NoError(t, err)
	s.Feed(pkt)

	s.Reset()

	assert.False(t, s.TXBusy())
	busy, err := s.PumpTX(func(b []byte) (int, error) { return len(b), nil })
	require.NoError(t, err)
	assert.False(t, busy)
}

func TestPacketTraceTapSeesInboundPackets(t *testing.T) {
	var traced []uint8
	s := New(WithPacketTrace(func(cid uint8, payload []byte) {
		traced = append(traced, cid)
	}))

	pkt, err := wire.EncodePacket(0, []byte("x"))
	require.NoError(t, err)
	s.Feed(pkt)

	assert.Equal(t, []uint8{0}, traced)
}

func TestFeedOverflowResyncsBuffer(t *testing.T) {
	s := New()
	huge := make([]byte, rxBufSize+1)
	assert.NotPanics(t, func() { s.Feed(huge) })
}
