// Package wire implements the byte-stream framing shared, in spirit, by
// both the podule's USB CDC transport and the host dispatcher: a 3-byte
// header (channel identifier, little-endian size) followed by the payload.
package wire

import "fmt"

// MaxPayload is the largest payload a single packet may carry.
const MaxPayload = 512

// HeaderSize is the width of the framing header.
const HeaderSize = 3

// Header is the decoded form of a packet's 3-byte framing header.
type Header struct {
	CID  uint8
	Size uint16
}

// Encode writes the header's wire form: {CID, SIZE&0xFF, SIZE>>8}.
func (h Header) Encode() [HeaderSize]byte {
	return [HeaderSize]byte{h.CID, byte(h.Size), byte(h.Size >> 8)}
}

// DecodeHeader reads a header from the first HeaderSize bytes of buf. buf
// must be at least HeaderSize bytes long.
func DecodeHeader(buf []byte) Header {
	return Header{
		CID:  buf[0],
		Size: uint16(buf[1]) | uint16(buf[2])<<8,
	}
}

// EncodePacket returns the full wire representation of a packet: header
// followed by payload. It returns an error if payload exceeds MaxPayload,
// since SIZE must fit the protocol's 512-byte ceiling.
func EncodePacket(cid uint8, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("wire: payload size %d exceeds max %d", len(payload), MaxPayload)
	}
	h := Header{CID: cid, Size: uint16(len(payload))}
	enc := h.Encode()
	out := make([]byte, 0, HeaderSize+len(payload))
	out = append(out, enc[:]...)
	out = append(out, payload...)
	return out, nil
}
