package rfb

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Client-to-server message types (RFC 6143 section 7.5).
const (
	msgSetPixelFormat           byte = 0
	msgSetEncodings             byte = 2
	msgFramebufferUpdateRequest byte = 3
	msgKeyEvent                 byte = 4
	msgPointerEvent             byte = 5
	msgClientCutText            byte = 6
)

// cutTextChunk bounds memory while draining ClientCutText payloads.
const cutTextChunk = 256

// ErrUnknownMessage reports a client message type outside the supported
// subset. The session cannot resynchronize, so it must close.
var ErrUnknownMessage = errors.New("rfb: unknown client message type")

// readClientMessage consumes exactly one client message, leaving the channel
// positioned at the next message boundary, and reports whether the message
// was a FramebufferUpdateRequest. Every payload is discarded: the server
// format and encoding are fixed and input injection is unsupported. A short
// read mid-payload is fatal.
func readClientMessage(ch *Channel) (updateRequested bool, err error) {
	t, err := ch.ReadByte()
	if err != nil {
		return false, err
	}

	switch t {
	case msgSetPixelFormat:
		// 3 padding bytes + 16-byte format.
		var rest [3 + FormatLen]byte
		return false, ch.ReadFull(rest[:])
	case msgSetEncodings:
		return false, drainSetEncodings(ch)
	case msgFramebufferUpdateRequest:
		// Incremental flag + requested rectangle. Every update is full-frame,
		// so the fields are irrelevant; receipt alone flags readiness.
		var rest [9]byte
		return true, ch.ReadFull(rest[:])
	case msgKeyEvent:
		var rest [7]byte
		return false, ch.ReadFull(rest[:])
	case msgPointerEvent:
		var rest [5]byte
		return false, ch.ReadFull(rest[:])
	case msgClientCutText:
		return false, drainCutText(ch)
	default:
		return false, fmt.Errorf("%w: %d", ErrUnknownMessage, t)
	}
}

func drainSetEncodings(ch *Channel) error {
	// Padding byte + 2-byte encoding count, then 4 bytes per encoding.
	var head [3]byte
	if err := ch.ReadFull(head[:]); err != nil {
		return err
	}
	count := int(binary.BigEndian.Uint16(head[1:3]))
	var enc [4]byte
	for i := 0; i < count; i++ {
		if err := ch.ReadFull(enc[:]); err != nil {
			return err
		}
	}
	return nil
}

func drainCutText(ch *Channel) error {
	// 3 padding bytes + 4-byte text length, then the text itself, consumed
	// in bounded chunks so a hostile length cannot balloon memory.
	var head [7]byte
	if err := ch.ReadFull(head[:]); err != nil {
		return err
	}
	remaining := int64(binary.BigEndian.Uint32(head[3:7]))
	buf := make([]byte, cutTextChunk)
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		if err := ch.ReadFull(buf[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}
