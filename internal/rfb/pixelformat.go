package rfb

import (
	"encoding/binary"
	"errors"
)

// FormatLen is the wire size of the PixelFormat block (RFC 6143 section 7.4).
const FormatLen = 16

var ErrShortFormat = errors.New("rfb: short pixel format block")

// PixelFormat is the 16-byte RFB pixel format description.
type PixelFormat struct {
	BitsPerPixel uint8
	Depth        uint8
	BigEndian    bool
	TrueColor    bool
	RedMax       uint16
	GreenMax     uint16
	BlueMax      uint16
	RedShift     uint8
	GreenShift   uint8
	BlueShift    uint8
}

// ServerFormat is the only format this server ever sends: 32bpp
// little-endian XRGB with 24 meaningful color bits, 8 bits per channel,
// red in bits 16-23. Clients asking for anything else are ignored.
func ServerFormat() PixelFormat {
	return PixelFormat{
		BitsPerPixel: 32,
		Depth:        24,
		TrueColor:    true,
		RedMax:       255,
		GreenMax:     255,
		BlueMax:      255,
		RedShift:     16,
		GreenShift:   8,
		BlueShift:    0,
	}
}

// Encode serializes the format field by field into the fixed wire layout.
// The last three bytes are padding.
func (pf PixelFormat) Encode() []byte {
	buf := make([]byte, FormatLen)
	buf[0] = pf.BitsPerPixel
	buf[1] = pf.Depth
	if pf.BigEndian {
		buf[2] = 1
	}
	if pf.TrueColor {
		buf[3] = 1
	}
	binary.BigEndian.PutUint16(buf[4:6], pf.RedMax)
	binary.BigEndian.PutUint16(buf[6:8], pf.GreenMax)
	binary.BigEndian.PutUint16(buf[8:10], pf.BlueMax)
	buf[10] = pf.RedShift
	buf[11] = pf.GreenShift
	buf[12] = pf.BlueShift
	return buf
}

// DecodePixelFormat parses a 16-byte PixelFormat block.
func DecodePixelFormat(b []byte) (PixelFormat, error) {
	if len(b) != FormatLen {
		return PixelFormat{}, ErrShortFormat
	}
	return PixelFormat{
		BitsPerPixel: b[0],
		Depth:        b[1],
		BigEndian:    b[2] != 0,
		TrueColor:    b[3] != 0,
		RedMax:       binary.BigEndian.Uint16(b[4:6]),
		GreenMax:     binary.BigEndian.Uint16(b[6:8]),
		BlueMax:      binary.BigEndian.Uint16(b[8:10]),
		RedShift:     b[10],
		GreenShift:   b[11],
		BlueShift:    b[12],
	}, nil
}
