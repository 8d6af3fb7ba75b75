// Package hostinfo implements channel 1: host identification.
package hostinfo

// ProtocolVersion is reported in every HOSTINFO reply.
const ProtocolVersion uint32 = 1

// productString is zero-padded out to 28 bytes in the reply.
const productString = "ArcPipePodule host server"

// responseSize is the fixed HOSTINFO reply width: 4-byte version, 28-byte
// product string, 4 bytes of trailing padding.
const responseSize = 36

// Handler answers HOSTINFO subcommand 0 with the protocol version and
// product identification string.
type Handler struct{}

// HandlePacket implements dispatch.Channel. Any payload with subcommand
// byte 0 gets the identification reply; other subcommands are ignored, as
// no other HOSTINFO subcommand is currently defined.
func (Handler) HandlePacket(_ uint8, payload []byte, reply func([]byte)) error {
	if len(payload) == 0 || payload[0] != 0 {
		return nil
	}

	resp := make([]byte, responseSize)
	resp[0] = byte(ProtocolVersion)
	resp[1] = byte(ProtocolVersion >> 8)
	resp[2] = byte(ProtocolVersion >> 16)
	resp[3] = byte(ProtocolVersion >> 24)
	copy(resp[4:4+len(productString)], productString)
	// resp[4+len(productString):32] stays zero (NUL pad to 28 bytes)
	// resp[32:36] stays zero (trailing padding)

	reply(resp)
	return nil
}
