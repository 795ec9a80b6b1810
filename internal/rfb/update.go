package rfb

import (
	"encoding/binary"
	"fmt"
)

// Server-to-client message and encoding identifiers.
const (
	msgFramebufferUpdate byte   = 0
	encodingRaw          uint32 = 0
)

// updateHeaderLen is the FramebufferUpdate message header plus the single
// rectangle header: 4 + 12 bytes.
const updateHeaderLen = 16

// writeUpdate sends one full-frame FramebufferUpdate: a single RAW rectangle
// covering the whole source, copied row by row through row so that stride
// padding never reaches the wire. It returns the bytes written before any
// failure; a partially sent frame is never resumed - the caller tears the
// session down.
func writeUpdate(ch *Channel, src FrameSource, row []byte) (int, error) {
	g := src.Geometry()

	var hdr [updateHeaderLen]byte
	hdr[0] = msgFramebufferUpdate
	// hdr[1] is padding.
	binary.BigEndian.PutUint16(hdr[2:4], 1) // one rectangle
	// Rectangle x=0, y=0 already zeroed.
	binary.BigEndian.PutUint16(hdr[8:10], uint16(g.Width))
	binary.BigEndian.PutUint16(hdr[10:12], uint16(g.Height))
	binary.BigEndian.PutUint32(hdr[12:16], encodingRaw)

	if err := ch.WriteFull(hdr[:]); err != nil {
		return 0, fmt.Errorf("rfb: send update header: %w", err)
	}
	sent := len(hdr)

	for y := 0; y < g.Height; y++ {
		src.ReadRow(y, row)
		if err := ch.WriteFull(row); err != nil {
			return sent, fmt.Errorf("rfb: send scanline %d: %w", y, err)
		}
		sent += len(row)
	}
	return sent, nil
}
