// Package rfbtest implements a minimal scripted viewer for exercising the
// streaming server in tests. It speaks just enough of the protocol to walk
// the handshake, send client messages, and decode full-frame updates.
package rfbtest

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ServerInfo is the decoded ServerInit message.
type ServerInfo struct {
	Width   uint16
	Height  uint16
	Format  [16]byte
	Version string
	Name    string
}

// Update is one decoded FramebufferUpdate carrying a single rectangle.
type Update struct {
	X, Y          uint16
	Width, Height uint16
	Encoding      uint32
	Pixels        []byte
}

// Client drives the viewer side of a connection. Methods fail fast; tests
// treat any error as fatal.
type Client struct {
	rw io.ReadWriter
}

func NewClient(rw io.ReadWriter) *Client {
	return &Client{rw: rw}
}

// Handshake walks the viewer half of the fixed handshake: version exchange,
// security type None, shared flag, ServerInit.
func (c *Client) Handshake() (*ServerInfo, error) {
	var version [12]byte
	if _, err := io.ReadFull(c.rw, version[:]); err != nil {
		return nil, fmt.Errorf("read server version: %w", err)
	}
	if _, err := c.rw.Write(version[:]); err != nil {
		return nil, fmt.Errorf("echo version: %w", err)
	}

	count, err := c.readByte()
	if err != nil {
		return nil, fmt.Errorf("read security count: %w", err)
	}
	types := make([]byte, count)
	if _, err := io.ReadFull(c.rw, types); err != nil {
		return nil, fmt.Errorf("read security types: %w", err)
	}
	if _, err := c.rw.Write([]byte{1}); err != nil { // None
		return nil, fmt.Errorf("choose security type: %w", err)
	}

	var result [4]byte
	if _, err := io.ReadFull(c.rw, result[:]); err != nil {
		return nil, fmt.Errorf("read security result: %w", err)
	}
	if r := binary.BigEndian.Uint32(result[:]); r != 0 {
		return nil, fmt.Errorf("security refused: result %d", r)
	}

	if _, err := c.rw.Write([]byte{1}); err != nil { // shared flag
		return nil, fmt.Errorf("send client init: %w", err)
	}

	var head [2 + 2 + 16 + 4]byte
	if _, err := io.ReadFull(c.rw, head[:]); err != nil {
		return nil, fmt.Errorf("read server init: %w", err)
	}
	info := &ServerInfo{
		Width:   binary.BigEndian.Uint16(head[0:2]),
		Height:  binary.BigEndian.Uint16(head[2:4]),
		Version: string(version[:]),
	}
	copy(info.Format[:], head[4:20])
	nameLen := binary.BigEndian.Uint32(head[20:24])
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(c.rw, name); err != nil {
		return nil, fmt.Errorf("read server name: %w", err)
	}
	info.Name = string(name)
	return info, nil
}

// RequestUpdate sends a FramebufferUpdateRequest for the full screen.
func (c *Client) RequestUpdate(w, h uint16) error {
	msg := make([]byte, 10)
	msg[0] = 3
	msg[1] = 1 // incremental
	binary.BigEndian.PutUint16(msg[6:8], w)
	binary.BigEndian.PutUint16(msg[8:10], h)
	_, err := c.rw.Write(msg)
	return err
}

// SetEncodings sends a SetEncodings message with the given encoding list.
func (c *Client) SetEncodings(encodings ...int32) error {
	msg := make([]byte, 4, 4+4*len(encodings))
	msg[0] = 2
	binary.BigEndian.PutUint16(msg[2:4], uint16(len(encodings)))
	for _, e := range encodings {
		msg = binary.BigEndian.AppendUint32(msg, uint32(e))
	}
	_, err := c.rw.Write(msg)
	return err
}

// SendKeyEvent sends a KeyEvent message.
func (c *Client) SendKeyEvent(down bool, keysym uint32) error {
	msg := make([]byte, 8)
	msg[0] = 4
	if down {
		msg[1] = 1
	}
	binary.BigEndian.PutUint32(msg[4:8], keysym)
	_, err := c.rw.Write(msg)
	return err
}

// SendPointerEvent sends a PointerEvent message.
func (c *Client) SendPointerEvent(buttons byte, x, y uint16) error {
	msg := make([]byte, 6)
	msg[0] = 5
	msg[1] = buttons
	binary.BigEndian.PutUint16(msg[2:4], x)
	binary.BigEndian.PutUint16(msg[4:6], y)
	_, err := c.rw.Write(msg)
	return err
}

// SendCutText sends a ClientCutText message carrying text.
func (c *Client) SendCutText(text string) error {
	msg := make([]byte, 8, 8+len(text))
	msg[0] = 6
	binary.BigEndian.PutUint32(msg[4:8], uint32(len(text)))
	msg = append(msg, text...)
	_, err := c.rw.Write(msg)
	return err
}

// SendRaw writes bytes verbatim, for malformed-input tests.
func (c *Client) SendRaw(b []byte) error {
	_, err := c.rw.Write(b)
	return err
}

// ReadUpdate decodes one FramebufferUpdate with exactly one rectangle and
// its raw pixel payload.
func (c *Client) ReadUpdate() (*Update, error) {
	var head [4]byte
	if _, err := io.ReadFull(c.rw, head[:]); err != nil {
		return nil, fmt.Errorf("read update header: %w", err)
	}
	if head[0] != 0 {
		return nil, fmt.Errorf("unexpected server message type %d", head[0])
	}
	rects := binary.BigEndian.Uint16(head[2:4])
	if rects != 1 {
		return nil, fmt.Errorf("expected 1 rectangle, got %d", rects)
	}

	var rect [12]byte
	if _, err := io.ReadFull(c.rw, rect[:]); err != nil {
		return nil, fmt.Errorf("read rectangle header: %w", err)
	}
	u := &Update{
		X:        binary.BigEndian.Uint16(rect[0:2]),
		Y:        binary.BigEndian.Uint16(rect[2:4]),
		Width:    binary.BigEndian.Uint16(rect[4:6]),
		Height:   binary.BigEndian.Uint16(rect[6:8]),
		Encoding: binary.BigEndian.Uint32(rect[8:12]),
	}
	u.Pixels = make([]byte, int(u.Width)*int(u.Height)*4)
	if _, err := io.ReadFull(c.rw, u.Pixels); err != nil {
		return nil, fmt.Errorf("read pixels: %w", err)
	}
	return u, nil
}

func (c *Client) readByte() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(c.rw, b[:])
	return b[0], err
}
