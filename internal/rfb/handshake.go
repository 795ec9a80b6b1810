package rfb

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ProtocolVersion is the only version string the server speaks. The client
// reply is read but deliberately not validated so other RFB 3.x viewers
// still connect.
const ProtocolVersion = "RFB 003.008\n"

const (
	versionLen  = 12
	secTypeNone = 1
)

// ErrSecurityRefused reports that the client chose a security type other
// than None. The session is dropped silently.
var ErrSecurityRefused = errors.New("rfb: client refused security type None")

// ServerInit carries the fields of the ServerInit message.
type ServerInit struct {
	Width  uint16
	Height uint16
	Format PixelFormat
	Name   string
}

// Handshake drives the fixed RFB 3.8 sequence: version exchange, security
// negotiation (None only), security result, client init, server init.
// Any I/O failure at any step is fatal to the session; nothing is retried.
func Handshake(ch *Channel, init ServerInit) error {
	if err := ch.WriteFull([]byte(ProtocolVersion)); err != nil {
		return fmt.Errorf("rfb: send version: %w", err)
	}

	var clientVersion [versionLen]byte
	if err := ch.ReadFull(clientVersion[:]); err != nil {
		return fmt.Errorf("rfb: read client version: %w", err)
	}

	// One security type on offer: None.
	if err := ch.WriteFull([]byte{1, secTypeNone}); err != nil {
		return fmt.Errorf("rfb: send security types: %w", err)
	}

	choice, err := ch.ReadByte()
	if err != nil {
		return fmt.Errorf("rfb: read security choice: %w", err)
	}
	if choice != secTypeNone {
		return fmt.Errorf("%w: got type %d", ErrSecurityRefused, choice)
	}

	// SecurityResult: 4-byte big-endian 0 (success). No failure path exists
	// because the choice is already validated.
	var result [4]byte
	if err := ch.WriteFull(result[:]); err != nil {
		return fmt.Errorf("rfb: send security result: %w", err)
	}

	// ClientInit shared flag. Ignored: there is never more than one client.
	if _, err := ch.ReadByte(); err != nil {
		return fmt.Errorf("rfb: read client init: %w", err)
	}

	name := []byte(init.Name)
	buf := make([]byte, 0, 2+2+FormatLen+4+len(name))
	buf = binary.BigEndian.AppendUint16(buf, init.Width)
	buf = binary.BigEndian.AppendUint16(buf, init.Height)
	buf = append(buf, init.Format.Encode()...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(name)))
	buf = append(buf, name...)
	if err := ch.WriteFull(buf); err != nil {
		return fmt.Errorf("rfb: send server init: %w", err)
	}
	return nil
}
