package rfb

import (
	"errors"
	"io"
)

// ErrChannelClosed reports that the peer closed the stream mid-read.
var ErrChannelClosed = errors.New("rfb: channel closed by peer")

// Channel wraps a bidirectional byte stream with all-or-nothing read and
// write semantics. Callers never see a short read or write, so the framing
// code above it can treat every field as either fully present or fatal.
type Channel struct {
	rw io.ReadWriter
}

func NewChannel(rw io.ReadWriter) *Channel {
	return &Channel{rw: rw}
}

// ReadFull reads exactly len(buf) bytes. End-of-stream at any point,
// including mid-buffer, is reported as ErrChannelClosed.
func (c *Channel) ReadFull(buf []byte) error {
	if _, err := io.ReadFull(c.rw, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrChannelClosed
		}
		return err
	}
	return nil
}

// ReadByte reads a single byte.
func (c *Channel) ReadByte() (byte, error) {
	var b [1]byte
	if err := c.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteFull writes all of buf or fails. A write that makes zero progress
// without an error surfaces as io.ErrShortWrite.
func (c *Channel) WriteFull(buf []byte) error {
	n, err := c.rw.Write(buf)
	if err != nil {
		return err
	}
	if n < len(buf) {
		return io.ErrShortWrite
	}
	return nil
}
