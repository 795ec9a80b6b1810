// Package fbdev provides frame sources for the streaming engine: a
// read-only mapping of a Linux framebuffer device and an in-memory source
// used for tests, non-Linux development, and the "test" device.
package fbdev

import (
	"fmt"

	"github.com/adamdewolf/OpenCentauri-VNC/internal/rfb"
)

// Memory is a frame source backed by an in-process buffer. The buffer is
// borrowed, not copied; a concurrent writer produces torn frames, same as
// the real device.
type Memory struct {
	geo rfb.Geometry
	pix []byte
}

func NewMemory(geo rfb.Geometry, pix []byte) (*Memory, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	if need := geo.Stride * geo.Height; len(pix) < need {
		return nil, fmt.Errorf("fbdev: buffer too small: have %d, need %d", len(pix), need)
	}
	return &Memory{geo: geo, pix: pix}, nil
}

func (m *Memory) Geometry() rfb.Geometry {
	return m.geo
}

func (m *Memory) ReadRow(y int, dst []byte) {
	off := y * m.geo.Stride
	copy(dst, m.pix[off:off+m.geo.RowBytes()])
}

// NewTestPattern builds a synthetic gradient-and-grid source in the server
// pixel layout (little-endian XRGB). Handy when no framebuffer is present.
func NewTestPattern(width, height int) *Memory {
	geo := rfb.Geometry{
		Width:         width,
		Height:        height,
		Stride:        width * 4,
		BytesPerPixel: 4,
	}
	pix := make([]byte, geo.Stride*geo.Height)

	for y := 0; y < height; y++ {
		off := y * geo.Stride
		g := uint8(50 + (y * 150 / height))
		for x := 0; x < width; x++ {
			i := off + x*4
			pix[i+0] = 100                             // B
			pix[i+1] = g                               // G
			pix[i+2] = uint8(50 + (x * 150 / width))   // R
			pix[i+3] = 0                               // X
		}
	}

	// Grid lines every 50 pixels.
	for x := 0; x < width; x += 50 {
		for y := 0; y < height; y++ {
			i := y*geo.Stride + x*4
			pix[i], pix[i+1], pix[i+2] = 255, 255, 255
		}
	}
	for y := 0; y < height; y += 50 {
		off := y * geo.Stride
		for x := 0; x < width; x++ {
			i := off + x*4
			pix[i], pix[i+1], pix[i+2] = 255, 255, 255
		}
	}

	m, err := NewMemory(geo, pix)
	if err != nil {
		// Geometry is constructed above; this cannot fail.
		panic(err)
	}
	return m
}
