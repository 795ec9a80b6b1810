package rfb

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// memSource is a minimal in-test frame source with stride padding filled
// with 0xEE so leaks onto the wire are detectable.
type memSource struct {
	geo Geometry
	pix []byte
}

func newMemSource(width, height, stride int) *memSource {
	geo := Geometry{Width: width, Height: height, Stride: stride, BytesPerPixel: 4}
	pix := make([]byte, stride*height)
	for i := range pix {
		pix[i] = 0xEE
	}
	for y := 0; y < height; y++ {
		for i := 0; i < geo.RowBytes(); i++ {
			pix[y*stride+i] = byte(y + i)
		}
	}
	return &memSource{geo: geo, pix: pix}
}

func (m *memSource) Geometry() Geometry {
	return m.geo
}

func (m *memSource) ReadRow(y int, dst []byte) {
	off := y * m.geo.Stride
	copy(dst, m.pix[off:off+m.geo.RowBytes()])
}

func TestWriteUpdateLayout(t *testing.T) {
	src := newMemSource(4, 3, 24)
	var out bytes.Buffer
	ch := NewChannel(&out)
	row := make([]byte, src.Geometry().RowBytes())

	sent, err := writeUpdate(ch, src, row)
	if err != nil {
		t.Fatalf("write update: %v", err)
	}
	wantLen := 16 + 3*16
	if sent != wantLen || out.Len() != wantLen {
		t.Fatalf("sent %d bytes (buffer %d), want %d", sent, out.Len(), wantLen)
	}

	b := out.Bytes()
	if b[0] != 0 || b[1] != 0 {
		t.Fatalf("bad message header: % x", b[:2])
	}
	if binary.BigEndian.Uint16(b[2:4]) != 1 {
		t.Fatalf("rectangle count: % x", b[2:4])
	}
	if binary.BigEndian.Uint16(b[4:6]) != 0 || binary.BigEndian.Uint16(b[6:8]) != 0 {
		t.Fatalf("rectangle origin: % x", b[4:8])
	}
	if binary.BigEndian.Uint16(b[8:10]) != 4 || binary.BigEndian.Uint16(b[10:12]) != 3 {
		t.Fatalf("rectangle size: % x", b[8:12])
	}
	if binary.BigEndian.Uint32(b[12:16]) != 0 {
		t.Fatalf("encoding: % x", b[12:16])
	}

	pixels := b[16:]
	if bytes.IndexByte(pixels, 0xEE) != -1 {
		t.Fatalf("stride padding leaked onto the wire")
	}
	for y := 0; y < 3; y++ {
		rowBytes := pixels[y*16 : (y+1)*16]
		for i, v := range rowBytes {
			if v != byte(y+i) {
				t.Fatalf("row %d byte %d: got %#x", y, i, v)
			}
		}
	}
}

func TestWriteUpdateFullFrameSize(t *testing.T) {
	// Portrait panel layout: visible rows narrower than the stride.
	src := newMemSource(480, 544, 1920)
	var out bytes.Buffer
	row := make([]byte, src.Geometry().RowBytes())

	sent, err := writeUpdate(NewChannel(&out), src, row)
	if err != nil {
		t.Fatalf("write update: %v", err)
	}
	if want := 16 + 480*544*4; sent != want {
		t.Fatalf("sent %d bytes, want %d", sent, want)
	}
}
